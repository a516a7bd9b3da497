package analysis_test

import (
	"testing"

	"cooklang/internal/analysis"
	"cooklang/internal/ast"
	"cooklang/internal/diag"
	"cooklang/internal/model"
	"cooklang/internal/parser"
	"cooklang/internal/source"
	"cooklang/internal/units"
)

func analyze(t *testing.T, src string) (*model.Recipe, *diag.Bag) {
	t.Helper()
	return analyzeExt(t, src, parser.AllExtensions())
}

func analyzeExt(t *testing.T, src string, ext parser.Extensions) (*model.Recipe, *diag.Bag) {
	t.Helper()
	fileSet := source.NewFileSet()
	id := fileSet.AddVirtual("test.cook", []byte(src))
	file := fileSet.Get(id)
	bag := diag.NewBag(128)
	rep := diag.BagReporter{Bag: bag}
	a := parser.ParseFile(file, parser.Options{Extensions: ext, Reporter: rep})
	r := analysis.Build(file, a, nil, "test", analysis.Options{
		Extensions: ext,
		Converter:  units.Bundled(),
		Reporter:   rep,
	})
	return r, bag
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestBasicRecipe(t *testing.T) {
	r, bag := analyze(t, "Mix @flour{200%g} and @water{100%ml}.\n\nKnead with #hands for ~{10%min}.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(r.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(r.Sections))
	}
	steps := r.Sections[0].Steps
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	if steps[0].Number != 1 || steps[1].Number != 2 {
		t.Errorf("step numbers = %d, %d", steps[0].Number, steps[1].Number)
	}
	if len(r.Ingredients) != 2 || len(r.Cookware) != 1 || len(r.Timers) != 1 {
		t.Errorf("components = %d/%d/%d", len(r.Ingredients), len(r.Cookware), len(r.Timers))
	}
	if r.Ingredients[0].Name != "flour" || r.Ingredients[0].Quantity.Unit != "g" {
		t.Errorf("first ingredient = %+v", r.Ingredients[0])
	}
}

func TestSectionsResetStepNumbers(t *testing.T) {
	r, _ := analyze(t, "== Dough ==\n\nstep one\n\nstep two\n\n== Filling ==\n\nstep three")
	if len(r.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(r.Sections))
	}
	if r.Sections[0].Name != "Dough" || r.Sections[1].Name != "Filling" {
		t.Errorf("section names = %q, %q", r.Sections[0].Name, r.Sections[1].Name)
	}
	if n := r.Sections[1].Steps[0].Number; n != 1 {
		t.Errorf("first step of second section = %d, want 1", n)
	}
}

func TestTextStepsNotNumbered(t *testing.T) {
	r, _ := analyze(t, "> A note about the dish.\n\nDo the thing.")
	steps := r.Sections[0].Steps
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	if !steps[0].IsText() {
		t.Error("first step should be text")
	}
	if steps[1].Number != 1 {
		t.Errorf("numbered step = %d, want 1", steps[1].Number)
	}
}

func TestReference(t *testing.T) {
	r, bag := analyze(t, "Add @flour{200%g}.\n\nAdd more @&flour{50%g}.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(r.Ingredients) != 2 {
		t.Fatalf("ingredients = %d, want 2", len(r.Ingredients))
	}
	ref := r.Ingredients[1]
	if !ref.Relation.IsReference || ref.Relation.ReferencesTo != 0 {
		t.Errorf("relation = %+v", ref.Relation)
	}
	def := r.Ingredients[0]
	if len(def.Relation.ReferencedFrom) != 1 || def.Relation.ReferencedFrom[0] != 1 {
		t.Errorf("referenced from = %v", def.Relation.ReferencedFrom)
	}
	qs := r.AllIngredientQuantities(0)
	if len(qs) != 2 {
		t.Errorf("quantities = %d, want 2", len(qs))
	}
}

func TestReferenceCaseInsensitive(t *testing.T) {
	r, bag := analyze(t, "Add @Flour{}.\n\nAdd @&flour{}.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if !r.Ingredients[1].Relation.IsReference {
		t.Error("case-insensitive reference not resolved")
	}
}

func TestReferenceNotFound(t *testing.T) {
	r, bag := analyze(t, "Add @&salt{}.")
	if !hasCode(bag, diag.AnaRefNotFound) {
		t.Fatalf("expected reference error, got: %v", bag.Items())
	}
	if r.Ingredients[0].Relation.IsReference {
		t.Error("unresolved reference kept as reference")
	}
}

func TestReferenceInheritsModifiers(t *testing.T) {
	r, bag := analyze(t, "Add @?-salt{}.\n\nMore @&salt{}.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	ref := r.Ingredients[1]
	if !ref.Modifiers.Contains(ast.ModHidden | ast.ModOpt | ast.ModRef) {
		t.Errorf("modifiers = %v", ref.Modifiers)
	}
}

func TestReferenceConflictingModifiers(t *testing.T) {
	_, bag := analyze(t, "Add @salt{}.\n\nMore @&-salt{}.")
	if !hasCode(bag, diag.AnaConflictingRef) {
		t.Errorf("expected conflict error, got: %v", bag.Items())
	}
}

func TestRefAndNewConflict(t *testing.T) {
	r, bag := analyze(t, "Add @&+salt{}.")
	if !hasCode(bag, diag.AnaConflictingRef) {
		t.Fatalf("expected conflict error, got: %v", bag.Items())
	}
	if r.Ingredients[0].Relation.IsReference {
		t.Error("conflicting component kept as reference")
	}
}

func TestReferenceNoteRejected(t *testing.T) {
	r, bag := analyze(t, "Add @salt{}.\n\nMore @&salt{}(to taste).")
	if !hasCode(bag, diag.AnaConflictingRef) {
		t.Fatalf("expected note error, got: %v", bag.Items())
	}
	if r.Ingredients[1].Note != "" {
		t.Errorf("note kept on reference: %q", r.Ingredients[1].Note)
	}
}

func TestDuplicateReferenceMode(t *testing.T) {
	r, bag := analyze(t, ">> [duplicate]: reference\n\nAdd @salt{}.\n\nMore @salt{}.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if !r.Ingredients[1].Relation.IsReference {
		t.Error("duplicate not turned into a reference")
	}
}

func TestDuplicateNewModifier(t *testing.T) {
	r, bag := analyze(t, ">> [duplicate]: reference\n\nAdd @salt{}.\n\nMore @+salt{}.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if r.Ingredients[1].Relation.IsReference {
		t.Error("'+' component still resolved as reference")
	}
}

func TestDefineComponentsMode(t *testing.T) {
	r, bag := analyze(t, ">> [mode]: components\n@flour{500%g}\n@salt{}")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(r.Ingredients) != 2 {
		t.Fatalf("ingredients = %d, want 2", len(r.Ingredients))
	}
	if len(r.Sections) != 0 {
		t.Errorf("components mode kept steps: %+v", r.Sections)
	}
	if r.Ingredients[0].DefinedInStep {
		t.Error("components mode ingredient marked as defined in step")
	}
}

func TestTextInComponentsModeWarns(t *testing.T) {
	_, bag := analyze(t, ">> [mode]: components\nchop the @flour{}")
	if !hasCode(bag, diag.AnaTextInComponents) {
		t.Errorf("expected text warning, got: %v", bag.Items())
	}
}

func TestDefineTextMode(t *testing.T) {
	r, bag := analyze(t, ">> [mode]: text\n\nThis is plain @salt{} text.")
	if !hasCode(bag, diag.AnaComponentInText) {
		t.Errorf("expected component warning, got: %v", bag.Items())
	}
	if len(r.Ingredients) != 0 {
		t.Errorf("text mode collected ingredients: %+v", r.Ingredients)
	}
	steps := r.Sections[0].Steps
	if len(steps) != 1 || !steps[0].IsText() {
		t.Fatalf("steps = %+v", steps)
	}
}

func TestStepsModeReferences(t *testing.T) {
	src := ">> [mode]: components\n@flour{500%g}\n\n>> [mode]: steps\n\nMix the @flour{100%g}."
	r, bag := analyze(t, src)
	if !r.Ingredients[1].Relation.IsReference {
		t.Fatal("steps mode component not a reference")
	}
	if !hasCode(bag, diag.AnaRefQuantityClash) {
		t.Errorf("expected quantity clash, got: %v", bag.Items())
	}
}

func TestBadModeValue(t *testing.T) {
	_, bag := analyze(t, ">> [mode]: banana")
	if !hasCode(bag, diag.AnaBadModeValue) || !bag.HasErrors() {
		t.Errorf("expected mode error, got: %v", bag.Items())
	}
}

func TestUnknownConfigKey(t *testing.T) {
	_, bag := analyze(t, ">> [banana]: yes")
	if !hasCode(bag, diag.AnaBadModeValue) || bag.HasErrors() {
		t.Errorf("expected warning only, got: %v", bag.Items())
	}
}

func TestModesDisabledKeepsBracketKeys(t *testing.T) {
	ext := parser.AllExtensions() &^ parser.Modes
	r, _ := analyzeExt(t, ">> [mode]: text", ext)
	if _, ok := r.Metadata.Get("[mode]"); !ok {
		t.Error("bracketed key not stored as plain metadata")
	}
}

func TestIntermediateStepRef(t *testing.T) {
	r, bag := analyze(t, "Make the dough.\n\nRest it.\n\nRoll the @&(~1)dough{}.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	rel := r.Ingredients[0].Relation
	if !rel.IsReference || rel.Target != model.TargetStep || rel.ReferencesTo != 1 {
		t.Errorf("relation = %+v", rel)
	}
}

func TestIntermediateStepByNumber(t *testing.T) {
	r, bag := analyze(t, "Make the dough.\n\nUse the @&(1)dough{}.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	rel := r.Ingredients[0].Relation
	if rel.Target != model.TargetStep || rel.ReferencesTo != 0 {
		t.Errorf("relation = %+v", rel)
	}
}

func TestIntermediateSectionRef(t *testing.T) {
	src := "== Dough ==\n\nMake it.\n\n== Assembly ==\n\nUse the @&(=1)dough{}."
	r, bag := analyze(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	rel := r.Ingredients[0].Relation
	if rel.Target != model.TargetSection || rel.ReferencesTo != 0 {
		t.Errorf("relation = %+v", rel)
	}
}

func TestIntermediateRefBounds(t *testing.T) {
	tests := []string{
		"Use @&(1)thing{}.",
		"Use @&(0)thing{}.",
		"Use @&(~0)thing{}.",
		"first\n\nUse @&(~2)thing{}.",
		"Use @&(=1)thing{}.",
	}
	for _, src := range tests {
		r, bag := analyze(t, src)
		if !hasCode(bag, diag.AnaRefToFuture) {
			t.Errorf("%q: expected bounds error, got: %v", src, bag.Items())
		}
		for _, igr := range r.Ingredients {
			if igr.Relation.IsReference {
				t.Errorf("%q: bad intermediate kept as reference", src)
			}
		}
	}
}

func TestIntermediateRefBadModifiers(t *testing.T) {
	_, bag := analyze(t, "first\n\nUse @&-(~1)thing{}.")
	if !hasCode(bag, diag.AnaConflictingRef) {
		t.Errorf("expected modifier error, got: %v", bag.Items())
	}
}

func TestCookwareReference(t *testing.T) {
	r, bag := analyze(t, "Grab a #pan{}.\n\nReuse the #&pan{}.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if !r.Cookware[1].Relation.IsReference || r.Cookware[1].Relation.ReferencesTo != 0 {
		t.Errorf("relation = %+v", r.Cookware[1].Relation)
	}
}

func TestTimerUnitChecks(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
	}{
		{src: "Wait ~{5%bananas}.", code: diag.UnitUnknown},
		{src: "Wait ~{5%g}.", code: diag.UnitBadConvert},
		{src: "Wait ~{a while%min}.", code: diag.UnitBadConvert},
	}
	for _, tt := range tests {
		_, bag := analyze(t, tt.src)
		if !hasCode(bag, tt.code) {
			t.Errorf("%q: expected %v, got: %v", tt.src, tt.code, bag.Items())
		}
	}
}

func TestTimerUnitNoteSpan(t *testing.T) {
	_, bag := analyze(t, "Wait ~{5%g}.")
	for _, d := range bag.Items() {
		if d.Code != diag.UnitBadConvert {
			continue
		}
		if len(d.Notes) == 0 {
			t.Fatalf("diagnostic has no note: %+v", d)
		}
		if n := d.Notes[0]; n.Span.End <= n.Span.Start {
			t.Errorf("note span is empty: %+v", n)
		}
		return
	}
	t.Fatalf("no %v diagnostic: %v", diag.UnitBadConvert, bag.Items())
}

func TestTimerUnitOK(t *testing.T) {
	_, bag := analyze(t, "Wait ~{5%minutes}.")
	if bag.HasErrors() {
		t.Errorf("unexpected errors: %v", bag.Items())
	}
}

func TestInlineQuantities(t *testing.T) {
	r, bag := analyze(t, "Preheat the oven to 180°C and wait.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(r.InlineQuantities) != 1 {
		t.Fatalf("inline quantities = %d, want 1", len(r.InlineQuantities))
	}
	q := r.InlineQuantities[0]
	if q.Unit != "°C" || q.Value.Value().Number.Value != 180 {
		t.Errorf("inline quantity = %+v", q)
	}
	items := r.Sections[0].Steps[0].Items
	var kinds []model.ItemKind
	for _, it := range items {
		kinds = append(kinds, it.Kind)
	}
	want := []model.ItemKind{model.ItemText, model.ItemInlineQuantity, model.ItemText}
	if len(kinds) != len(want) {
		t.Fatalf("items = %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("item %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestInlineQuantitiesDisabled(t *testing.T) {
	ext := parser.AllExtensions() &^ parser.InlineQuantities
	r, _ := analyzeExt(t, "Preheat to 180°C.", ext)
	if len(r.InlineQuantities) != 0 {
		t.Errorf("inline quantities = %+v", r.InlineQuantities)
	}
}

func TestMetadataCollected(t *testing.T) {
	r, bag := analyze(t, ">> servings: 2|4\n>> author: Imaginary Chef\n\nCook.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(r.Metadata.Servings) != 2 || r.Metadata.Servings[0] != 2 {
		t.Errorf("servings = %v", r.Metadata.Servings)
	}
	if r.Metadata.Author == nil || r.Metadata.Author.Name != "Imaginary Chef" {
		t.Errorf("author = %+v", r.Metadata.Author)
	}
}
