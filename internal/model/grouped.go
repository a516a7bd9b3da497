package model

import (
	"cooklang/internal/ast"
	"cooklang/internal/units"
)

// GroupedQuantity adds quantities together for ingredient lists. Two
// quantities merge when their numeric values can be added: same unit, no
// unit at all, or units sharing a physical quantity (the later one is
// converted into the first one's unit). Everything else stays a separate
// entry, so text amounts and odd units are never lost.
type GroupedQuantity struct {
	conv    *units.Converter
	entries []Quantity
}

// NewGroupedQuantity builds an empty group. conv may be nil, which limits
// merging to exactly matching units.
func NewGroupedQuantity(conv *units.Converter) *GroupedQuantity {
	return &GroupedQuantity{conv: conv}
}

// Add merges q into the group, or appends it when nothing is compatible.
func (g *GroupedQuantity) Add(q *Quantity) {
	if q == nil {
		return
	}
	for i := range g.entries {
		if merged, ok := addQuantities(&g.entries[i], q, g.conv); ok {
			g.entries[i] = merged
			return
		}
	}
	g.entries = append(g.entries, *q)
}

// All returns the grouped quantities in insertion order.
func (g *GroupedQuantity) All() []Quantity { return g.entries }

// IsEmpty reports whether nothing was added.
func (g *GroupedQuantity) IsEmpty() bool { return len(g.entries) == 0 }

// addQuantities returns a+b when the two can be added. Only collapsed
// single values add; auto scale and per-servings values keep their own
// entries until the recipe is scaled.
func addQuantities(a, b *Quantity, conv *units.Converter) (Quantity, bool) {
	if a.Value.Kind != Fixed || b.Value.Kind != Fixed {
		return Quantity{}, false
	}
	va, vb := a.Value.Value(), b.Value.Value()
	if va.Kind == ast.ValueText || vb.Kind == ast.ValueText {
		return Quantity{}, false
	}

	if a.Unit == b.Unit {
		return Quantity{Value: FixedValue(addValues(va, vb)), Unit: a.Unit}, true
	}

	if conv == nil || a.Unit == "" || b.Unit == "" {
		return Quantity{}, false
	}
	ua, ok := conv.FindUnit(a.Unit)
	if !ok {
		return Quantity{}, false
	}
	ub, ok := conv.FindUnit(b.Unit)
	if !ok || ua.Quantity != ub.Quantity {
		return Quantity{}, false
	}
	converted, ok := convertValue(vb, ub, ua, conv)
	if !ok {
		return Quantity{}, false
	}
	return Quantity{Value: FixedValue(addValues(va, converted)), Unit: a.Unit}, true
}

func convertValue(v ast.Value, from, to *units.Unit, conv *units.Converter) (ast.Value, bool) {
	switch v.Kind {
	case ast.ValueNumber:
		out, err := conv.ConvertUnits(v.Number.Value, from, to)
		if err != nil {
			return ast.Value{}, false
		}
		return ast.NumberValue(ast.Regular(out), v.Span), true
	case ast.ValueRange:
		start, err := conv.ConvertUnits(v.Number.Value, from, to)
		if err != nil {
			return ast.Value{}, false
		}
		end, err := conv.ConvertUnits(v.RangeEnd.Value, from, to)
		if err != nil {
			return ast.Value{}, false
		}
		return ast.RangeValue(ast.Regular(start), ast.Regular(end), v.Span), true
	}
	return ast.Value{}, false
}

// addValues adds two numeric values. A range absorbs a plain number into
// both of its ends. Fraction form is kept only when both sides share a
// denominator.
func addValues(a, b ast.Value) ast.Value {
	if a.Kind == ast.ValueNumber && b.Kind == ast.ValueNumber {
		return ast.NumberValue(addNumbers(a.Number, b.Number), a.Span)
	}
	aStart, aEnd := valueEnds(a)
	bStart, bEnd := valueEnds(b)
	return ast.RangeValue(
		ast.Regular(aStart+bStart),
		ast.Regular(aEnd+bEnd),
		a.Span,
	)
}

func valueEnds(v ast.Value) (float64, float64) {
	if v.Kind == ast.ValueRange {
		return v.Number.Value, v.RangeEnd.Value
	}
	return v.Number.Value, v.Number.Value
}

func addNumbers(a, b ast.Number) ast.Number {
	if a.IsFraction() && b.IsFraction() && a.Den == b.Den {
		whole := a.Whole + b.Whole
		num := a.Num + b.Num
		for a.Den > 0 && num >= a.Den {
			num -= a.Den
			whole++
		}
		return ast.Fraction(whole, num, a.Den)
	}
	return ast.Regular(a.Value + b.Value)
}

// IngredientListEntry is one line of an ingredient list: a definition and
// every quantity attached to it or its references, added together.
type IngredientListEntry struct {
	// Index points at the definition in Recipe.Ingredients.
	Index      int
	Quantities []Quantity
}

// IngredientList projects the recipe's listed ingredient definitions with
// their grouped quantities. Reference quantities count toward their
// definition's entry; hidden ingredients are left out entirely.
func (r *Recipe) IngredientList(conv *units.Converter) []IngredientListEntry {
	var out []IngredientListEntry
	for i := range r.Ingredients {
		igr := &r.Ingredients[i]
		if igr.Relation.IsReference || !igr.ShouldBeListed() {
			continue
		}
		g := NewGroupedQuantity(conv)
		for _, q := range r.AllIngredientQuantities(i) {
			g.Add(q)
		}
		out = append(out, IngredientListEntry{Index: i, Quantities: g.All()})
	}
	return out
}
