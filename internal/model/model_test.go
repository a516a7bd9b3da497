package model

import (
	"testing"

	"cooklang/internal/ast"
	"cooklang/internal/metadata"
	"cooklang/internal/source"
	"cooklang/internal/units"
)

func num(v float64) ast.Value {
	return ast.NumberValue(ast.Regular(v), source.Span{})
}

func TestScaleLinear(t *testing.T) {
	r := &Recipe{
		Ingredients: []Ingredient{{
			Name: "flour",
			Quantity: &Quantity{
				Value: ScalableValue{Kind: Linear, Values: []ast.Value{num(100)}},
				Unit:  "g",
			},
		}},
	}
	r.Scale(2, units.Empty())
	got := r.Ingredients[0].Quantity.Value.Value()
	if got.Number.Value != 200 {
		t.Errorf("scaled value = %v, want 200", got.Number.Value)
	}
	if r.Ingredients[0].Quantity.Value.Kind != Fixed {
		t.Error("scaled value still scalable")
	}
}

func TestScaleFixedUnchanged(t *testing.T) {
	r := &Recipe{
		Ingredients: []Ingredient{{
			Quantity: &Quantity{Value: FixedValue(num(3))},
		}},
	}
	r.Scale(4, units.Empty())
	if got := r.Ingredients[0].Quantity.Value.Value().Number.Value; got != 3 {
		t.Errorf("fixed value = %v, want 3", got)
	}
}

func TestScaleByServings(t *testing.T) {
	meta := metadata.New()
	meta.Servings = []uint32{2, 4, 8}
	r := &Recipe{
		Metadata: meta,
		Ingredients: []Ingredient{{
			Quantity: &Quantity{
				Value: ScalableValue{
					Kind:   ByServings,
					Values: []ast.Value{num(1), num(2), num(4)},
				},
			},
		}},
	}
	r.ScaleToServings(4, units.Empty())
	if got := r.Ingredients[0].Quantity.Value.Value().Number.Value; got != 2 {
		t.Errorf("servings value = %v, want 2", got)
	}
}

func TestScaleFractionKeepsForm(t *testing.T) {
	frac := ast.NumberValue(ast.Fraction(0, 1, 2), source.Span{})
	r := &Recipe{
		Ingredients: []Ingredient{{
			Quantity: &Quantity{
				Value: ScalableValue{Kind: Linear, Values: []ast.Value{frac}},
			},
		}},
	}
	r.Scale(3, units.Empty())
	got := r.Ingredients[0].Quantity.Value.Value().Number
	if !got.IsFraction() || got.String() != "3/2" {
		t.Errorf("scaled fraction = %v", got)
	}
}

func TestScaleFitsUnit(t *testing.T) {
	r := &Recipe{
		Ingredients: []Ingredient{{
			Quantity: &Quantity{
				Value: ScalableValue{Kind: Linear, Values: []ast.Value{num(500)}},
				Unit:  "g",
			},
		}},
	}
	r.Scale(5, units.Bundled())
	q := r.Ingredients[0].Quantity
	if q.Unit != "kg" {
		t.Errorf("unit = %q, want kg", q.Unit)
	}
	if got := q.Value.Value().Number.Value; got != 2.5 {
		t.Errorf("value = %v, want 2.5", got)
	}
}

func TestDisplayName(t *testing.T) {
	igr := Ingredient{Name: "salt"}
	if igr.DisplayName() != "salt" {
		t.Errorf("name = %q", igr.DisplayName())
	}
	igr = Ingredient{Name: "sauces/pesto.cook", Modifiers: ast.ModRecipe}
	if igr.DisplayName() != "pesto" {
		t.Errorf("recipe name = %q", igr.DisplayName())
	}
	igr = Ingredient{Name: "garlic", Alias: "cloves"}
	if igr.DisplayName() != "cloves" {
		t.Errorf("alias name = %q", igr.DisplayName())
	}
}

func TestAllIngredientQuantities(t *testing.T) {
	r := &Recipe{
		Ingredients: []Ingredient{
			{
				Name:     "flour",
				Quantity: &Quantity{Value: FixedValue(num(1000)), Unit: "g"},
				Relation: Relation{ReferencesTo: -1, ReferencedFrom: []int{1}},
			},
			{
				Name:      "flour",
				Quantity:  &Quantity{Value: FixedValue(num(100)), Unit: "g"},
				Modifiers: ast.ModRef,
				Relation:  ReferenceRelation(TargetComponent, 0),
			},
		},
	}
	qs := r.AllIngredientQuantities(0)
	if len(qs) != 2 {
		t.Fatalf("quantities = %d, want 2", len(qs))
	}
	total := qs[0].Value.Value().Number.Value + qs[1].Value.Value().Number.Value
	if total != 1100 {
		t.Errorf("total = %v, want 1100", total)
	}
}

func TestScaleToZeroServingsBase(t *testing.T) {
	meta := metadata.New()
	meta.Servings = []uint32{0}
	r := &Recipe{
		Metadata: meta,
		Ingredients: []Ingredient{{
			Quantity: &Quantity{
				Value: ScalableValue{Kind: Linear, Values: []ast.Value{num(100)}},
			},
		}},
	}
	r.ScaleToServings(3, units.Empty())
	if got := r.Ingredients[0].Quantity.Value.Value().Number.Value; got != 300 {
		t.Errorf("value = %v, want 300", got)
	}
}

func TestGroupedQuantitySameUnit(t *testing.T) {
	g := NewGroupedQuantity(nil)
	g.Add(&Quantity{Value: FixedValue(num(100)), Unit: "g"})
	g.Add(&Quantity{Value: FixedValue(num(50)), Unit: "g"})
	all := g.All()
	if len(all) != 1 {
		t.Fatalf("entries = %d, want 1", len(all))
	}
	if got := all[0].Value.Value().Number.Value; got != 150 || all[0].Unit != "g" {
		t.Errorf("sum = %v %s, want 150 g", got, all[0].Unit)
	}
}

func TestGroupedQuantityConverts(t *testing.T) {
	g := NewGroupedQuantity(units.Bundled())
	g.Add(&Quantity{Value: FixedValue(num(500)), Unit: "g"})
	g.Add(&Quantity{Value: FixedValue(num(1)), Unit: "kg"})
	all := g.All()
	if len(all) != 1 {
		t.Fatalf("entries = %d, want 1", len(all))
	}
	if got := all[0].Value.Value().Number.Value; got != 1500 || all[0].Unit != "g" {
		t.Errorf("sum = %v %s, want 1500 g", got, all[0].Unit)
	}
}

func TestGroupedQuantityKeepsIncompatible(t *testing.T) {
	text := ast.TextValue("a pinch", source.Span{})
	g := NewGroupedQuantity(units.Bundled())
	g.Add(&Quantity{Value: FixedValue(num(2)), Unit: "tbsp"})
	g.Add(&Quantity{Value: FixedValue(text)})
	g.Add(&Quantity{Value: FixedValue(num(3)), Unit: "minutes"})
	if got := len(g.All()); got != 3 {
		t.Errorf("entries = %d, want 3", got)
	}
}

func TestGroupedQuantityRange(t *testing.T) {
	rng := ast.RangeValue(ast.Regular(2), ast.Regular(3), source.Span{})
	g := NewGroupedQuantity(nil)
	g.Add(&Quantity{Value: FixedValue(rng), Unit: "l"})
	g.Add(&Quantity{Value: FixedValue(num(1)), Unit: "l"})
	all := g.All()
	if len(all) != 1 {
		t.Fatalf("entries = %d, want 1", len(all))
	}
	v := all[0].Value.Value()
	if v.Kind != ast.ValueRange || v.Number.Value != 3 || v.RangeEnd.Value != 4 {
		t.Errorf("sum = %+v, want range 3-4", v)
	}
}

func TestIngredientList(t *testing.T) {
	r := &Recipe{
		Ingredients: []Ingredient{
			{
				Name:     "flour",
				Quantity: &Quantity{Value: FixedValue(num(1000)), Unit: "g"},
				Relation: Relation{ReferencesTo: -1, ReferencedFrom: []int{1}},
			},
			{
				Name:      "flour",
				Quantity:  &Quantity{Value: FixedValue(num(200)), Unit: "g"},
				Modifiers: ast.ModRef,
				Relation:  ReferenceRelation(TargetComponent, 0),
			},
			{
				Name:      "anchovies",
				Modifiers: ast.ModHidden,
				Relation:  Relation{ReferencesTo: -1},
			},
		},
	}
	list := r.IngredientList(units.Bundled())
	if len(list) != 1 {
		t.Fatalf("entries = %d, want 1 (references and hidden excluded)", len(list))
	}
	entry := list[0]
	if entry.Index != 0 || len(entry.Quantities) != 1 {
		t.Fatalf("entry = %+v", entry)
	}
	if got := entry.Quantities[0].Value.Value().Number.Value; got != 1200 {
		t.Errorf("grouped total = %v, want 1200", got)
	}
}
