package analysis

import (
	"strconv"

	"cooklang/internal/ast"
	"cooklang/internal/diag"
	"cooklang/internal/model"
	"cooklang/internal/parser"
	"cooklang/internal/source"
	"cooklang/internal/units"

	"golang.org/x/text/cases"
)

// sameName compares component names with unicode case folding.
func sameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

func (w *walker) ingredient(item *ast.Ingredient) int {
	mods := item.Modifiers
	igr := model.Ingredient{
		Name:          item.Name.Trimmed(),
		Alias:         textOrEmpty(item.Alias),
		Quantity:      w.quantity(item.Quantity),
		Note:          textOrEmpty(item.Note),
		Relation:      model.DefinitionRelation(),
		DefinedInStep: w.defineMode != DefineComponents,
	}

	if item.Intermediate != nil {
		if mods.Intersects(ast.ModRecipe | ast.ModHidden | ast.ModNew) {
			diag.ReportError(w.rep, diag.AnaConflictingRef, item.ModifiersSpan,
				"invalid modifiers for an intermediate preparation reference: '"+mods.String()+"'").
				WithHelp("only '&' and '?' are allowed").
				Emit()
			mods &^= ast.ModRecipe | ast.ModHidden | ast.ModNew
		} else if target, ref, ok := w.resolveIntermediate(item.Intermediate); ok {
			igr.Relation = model.ReferenceRelation(target, ref)
		}
	} else {
		defIdx, isRef := w.resolveReference("ingredient", igr.Name, &mods,
			item.ModifiersSpan, func() (int, ast.Modifiers) {
				for i := len(w.recipe.Ingredients) - 1; i >= 0; i-- {
					other := &w.recipe.Ingredients[i]
					if !other.Relation.IsReference && sameName(other.Name, igr.Name) {
						return i, other.Modifiers
					}
				}
				return -1, 0
			})
		if isRef {
			igr.Relation = model.ReferenceRelation(model.TargetComponent, defIdx)
			w.checkReferenceQuantity(&igr, defIdx, item)
			if igr.Note != "" {
				diag.ReportError(w.rep, diag.AnaConflictingRef, item.Note.Span(),
					"a reference cannot carry a note").
					WithHelp("add the note to the definition of '"+igr.Name+"'").
					Emit()
				igr.Note = ""
			}
		}
	}

	igr.Modifiers = mods
	idx := len(w.recipe.Ingredients)
	if igr.Relation.IsReference && igr.Relation.Target == model.TargetComponent {
		def := &w.recipe.Ingredients[igr.Relation.ReferencesTo]
		def.Relation.ReferencedFrom = append(def.Relation.ReferencedFrom, idx)
	}
	w.recipe.Ingredients = append(w.recipe.Ingredients, igr)
	return idx
}

// checkReferenceQuantity flags quantities on a reference that cannot be
// combined with the definition.
func (w *walker) checkReferenceQuantity(igr *model.Ingredient, defIdx int, item *ast.Ingredient) {
	if igr.Quantity == nil {
		return
	}
	def := &w.recipe.Ingredients[defIdx]
	if def.Quantity == nil {
		return
	}
	if !def.DefinedInStep {
		diag.ReportError(w.rep, diag.AnaRefQuantityClash, item.Quantity.Span,
			"the quantity of '"+igr.Name+"' conflicts with its definition").
			WithHelp("remove the quantity from the definition outside the steps").
			Emit()
		return
	}
	refText := igr.Quantity.Value.Value().Kind == ast.ValueText
	defText := def.Quantity.Value.Value().Kind == ast.ValueText
	if refText != defText {
		diag.ReportWarning(w.rep, diag.AnaRefQuantityClash, item.Quantity.Span,
			"text and numeric quantities of '"+igr.Name+"' cannot be added together").
			Emit()
		return
	}
	if w.ext.Contains(parser.AdvancedUnits) {
		w.checkUnitsCompatible(igr, def, item.Quantity.Span)
	}
}

func (w *walker) checkUnitsCompatible(ref, def *model.Ingredient, sp source.Span) {
	ru, ok := ref.Quantity.UnitInfo(w.conv)
	if !ok {
		return
	}
	du, ok := def.Quantity.UnitInfo(w.conv)
	if !ok {
		return
	}
	if ru.Quantity != du.Quantity {
		diag.ReportWarning(w.rep, diag.UnitBadConvert, sp,
			"the units of '"+ref.Name+"' and its definition are incompatible").
			WithNote(sp, "'"+ref.Quantity.Unit+"' is "+ru.Quantity.String()+
				", '"+def.Quantity.Unit+"' is "+du.Quantity.String()).
			Emit()
	}
}

func (w *walker) cookware(item *ast.Cookware) int {
	mods := item.Modifiers
	cw := model.Cookware{
		Name:     item.Name.Trimmed(),
		Alias:    textOrEmpty(item.Alias),
		Note:     textOrEmpty(item.Note),
		Relation: model.DefinitionRelation(),
	}
	if item.Quantity != nil {
		v := w.value(*item.Quantity)
		cw.Quantity = &v
	}

	defIdx, isRef := w.resolveReference("cookware", cw.Name, &mods,
		item.ModifiersSpan, func() (int, ast.Modifiers) {
			for i := len(w.recipe.Cookware) - 1; i >= 0; i-- {
				other := &w.recipe.Cookware[i]
				if !other.Relation.IsReference && sameName(other.Name, cw.Name) {
					return i, other.Modifiers
				}
			}
			return -1, 0
		})
	if isRef {
		cw.Relation = model.ReferenceRelation(model.TargetComponent, defIdx)
		if cw.Quantity != nil && w.recipe.Cookware[defIdx].Quantity != nil {
			diag.ReportError(w.rep, diag.AnaRefQuantityClash, item.Quantity.Span(),
				"the quantity of '"+cw.Name+"' conflicts with its definition").
				Emit()
		}
		if cw.Note != "" {
			diag.ReportError(w.rep, diag.AnaConflictingRef, item.Note.Span(),
				"a reference cannot carry a note").
				Emit()
			cw.Note = ""
		}
	}

	cw.Modifiers = mods
	idx := len(w.recipe.Cookware)
	if isRef {
		def := &w.recipe.Cookware[defIdx]
		def.Relation.ReferencedFrom = append(def.Relation.ReferencedFrom, idx)
	}
	w.recipe.Cookware = append(w.recipe.Cookware, cw)
	return idx
}

// resolveReference decides whether a component is a reference or a new
// definition. lastSame returns the index and modifiers of the last matching
// definition, -1 when there is none. On a resolved reference the definition's
// hidden and optional flags are inherited into mods.
func (w *walker) resolveReference(kind, name string, mods *ast.Modifiers,
	modsSpan source.Span, lastSame func() (int, ast.Modifiers)) (int, bool) {

	explicitRef := mods.Contains(ast.ModRef)
	explicitNew := mods.Contains(ast.ModNew)
	if explicitRef && explicitNew {
		diag.ReportError(w.rep, diag.AnaConflictingRef, modsSpan,
			"conflicting modifiers: '&' and '+' cannot be combined").
			WithHelp("the "+kind+" is treated as a new definition").
			Emit()
		*mods &^= ast.ModRef | ast.ModNew
		return -1, false
	}

	defIdx, defMods := lastSame()

	treatAsRef := explicitRef || w.defineMode == DefineSteps
	if !treatAsRef && w.duplicateMode == DuplicateReference && !explicitNew && defIdx >= 0 {
		treatAsRef = true
	}

	if explicitNew && w.duplicateMode == DuplicateNew && w.defineMode != DefineSteps {
		diag.ReportWarning(w.rep, diag.AnaRedundantModifier, modsSpan,
			"redundant '+' modifier").
			WithNote(modsSpan, "every "+kind+" is a new definition here").
			Emit()
	}
	if explicitRef && (w.duplicateMode == DuplicateReference || w.defineMode == DefineSteps) {
		diag.ReportWarning(w.rep, diag.AnaRedundantModifier, modsSpan,
			"redundant '&' modifier").
			WithNote(modsSpan, "every repeated "+kind+" is a reference here").
			Emit()
	}

	if !treatAsRef {
		return -1, false
	}
	if defIdx < 0 {
		diag.ReportError(w.rep, diag.AnaRefNotFound, modsSpan,
			"reference to unknown "+kind+": '"+name+"'").
			WithHelp("a reference must follow a definition with the same name").
			Emit()
		*mods &^= ast.ModRef
		return -1, false
	}

	inherited := defMods & (ast.ModHidden | ast.ModOpt)
	conflict := (*mods &^ inherited) &^ ast.ModRef
	if conflict != 0 {
		diag.ReportError(w.rep, diag.AnaConflictingRef, modsSpan,
			"conflicting modifiers on a reference to '"+name+"': '"+conflict.String()+"'").
			WithHelp("these modifiers belong on the definition").
			Emit()
	}
	*mods |= inherited | ast.ModRef
	return defIdx, true
}

// resolveIntermediate maps an `(...)` reference to a past step or section
// index. Only already seen steps and sections can be referenced.
func (w *walker) resolveIntermediate(ref *ast.IntermediateRef) (model.RefTarget, int, bool) {
	fail := func(msg, help string) (model.RefTarget, int, bool) {
		b := diag.ReportError(w.rep, diag.AnaRefToFuture, ref.Span, msg)
		if help != "" {
			b.WithHelp(help)
		}
		b.Emit()
		return 0, 0, false
	}
	val := int(ref.Val)

	if val == 0 {
		if ref.Mode == ast.RefModeRelative {
			return fail("a relative reference cannot point to itself", "")
		}
		return fail("step and section numbers start at 1", "")
	}

	switch ref.Target {
	case ast.RefTargetStep:
		var numbered []int
		for i, s := range w.current.Steps {
			if !s.IsText() {
				numbered = append(numbered, i)
			}
		}
		if ref.Mode == ast.RefModeRelative {
			if val > len(numbered) {
				return fail("relative reference to a step before the section start",
					"only "+strconv.Itoa(len(numbered))+" steps come before this one")
			}
			return model.TargetStep, numbered[len(numbered)-val], true
		}
		if val > len(numbered) {
			return fail("reference to step "+strconv.Itoa(val)+" that does not exist yet",
				"only earlier steps of the current section can be referenced")
		}
		return model.TargetStep, numbered[val-1], true

	case ast.RefTargetSection:
		past := len(w.recipe.Sections)
		if ref.Mode == ast.RefModeRelative {
			if val > past {
				return fail("relative reference to a section before the recipe start",
					"only "+strconv.Itoa(past)+" sections come before this one")
			}
			return model.TargetSection, past - val, true
		}
		if val > past {
			return fail("reference to section "+strconv.Itoa(val)+" that does not exist yet",
				"only earlier sections can be referenced")
		}
		return model.TargetSection, val - 1, true
	}
	return 0, 0, false
}

func (w *walker) timer(item *ast.Timer) int {
	tm := model.Timer{
		Name:     textOrEmpty(item.Name),
		Quantity: w.quantity(item.Quantity),
	}

	if w.ext.Contains(parser.AdvancedUnits) && tm.Quantity != nil && tm.Quantity.Unit != "" {
		sp := spanOf(item.Quantity.Unit, item.Sp)
		if tm.Quantity.Value.Value().Kind == ast.ValueText {
			diag.ReportError(w.rep, diag.UnitBadConvert, item.Quantity.Value.Span(),
				"a timer cannot have a text duration").
				Emit()
		} else if u, ok := w.conv.FindUnit(tm.Quantity.Unit); !ok {
			diag.ReportError(w.rep, diag.UnitUnknown, sp,
				"unknown timer unit: '"+tm.Quantity.Unit+"'").
				Emit()
		} else if u.Quantity != units.Time {
			diag.ReportError(w.rep, diag.UnitBadConvert, sp,
				"the unit of a timer must be a time unit").
				WithNote(sp, "'"+tm.Quantity.Unit+"' is "+u.Quantity.String()).
				Emit()
		}
	}

	idx := len(w.recipe.Timers)
	w.recipe.Timers = append(w.recipe.Timers, tm)
	return idx
}
