package model

import (
	"cooklang/internal/ast"
	"cooklang/internal/source"
	"cooklang/internal/units"
)

// ScalingKind says how a value reacts to scaling.
type ScalingKind uint8

const (
	// Fixed values ignore scaling.
	Fixed ScalingKind = iota
	// Linear values multiply by the scaling factor (`{1*}`).
	Linear
	// ByServings values carry one value per servings option (`{1|2|3}`).
	ByServings
)

// ScalableValue is a quantity value before scaling.
type ScalableValue struct {
	Kind ScalingKind
	// Values has one element except for ByServings.
	Values []ast.Value
}

// FixedValue wraps a single non-scaling value.
func FixedValue(v ast.Value) ScalableValue {
	return ScalableValue{Kind: Fixed, Values: []ast.Value{v}}
}

// Value returns the effective single value: the first one.
func (sv ScalableValue) Value() ast.Value {
	if len(sv.Values) == 0 {
		return ast.RecoverValue(source.Span{})
	}
	return sv.Values[0]
}

// Quantity is a component quantity: a scalable value and an optional unit.
type Quantity struct {
	Value ScalableValue
	Unit  string
}

// UnitInfo resolves the unit against a converter.
func (q *Quantity) UnitInfo(conv *units.Converter) (*units.Unit, bool) {
	if q.Unit == "" {
		return nil, false
	}
	return conv.FindUnit(q.Unit)
}

// scale collapses the value according to its kind. index selects the
// ByServings option, -1 when unknown.
func (sv *ScalableValue) scale(factor float64, index int) {
	switch sv.Kind {
	case Fixed:
	case Linear:
		v := scaleValue(sv.Value(), factor)
		sv.Values = []ast.Value{v}
	case ByServings:
		if index >= 0 && index < len(sv.Values) {
			sv.Values = []ast.Value{sv.Values[index]}
		} else {
			v := scaleValue(sv.Value(), factor)
			sv.Values = []ast.Value{v}
		}
	}
	sv.Kind = Fixed
}

func scaleValue(v ast.Value, factor float64) ast.Value {
	switch v.Kind {
	case ast.ValueNumber:
		return ast.NumberValue(scaleNumber(v.Number, factor), v.Span)
	case ast.ValueRange:
		return ast.RangeValue(scaleNumber(v.Number, factor), scaleNumber(v.RangeEnd, factor), v.Span)
	default:
		return v
	}
}

// scaleNumber keeps the fraction form when the scaled numerator stays
// whole, otherwise the result is a plain number.
func scaleNumber(n ast.Number, factor float64) ast.Number {
	if n.IsFraction() {
		num := n.Num * factor
		if num == float64(int64(num)) {
			whole := n.Whole * factor
			if whole == float64(int64(whole)) {
				return ast.Fraction(whole, num, n.Den)
			}
		}
		return ast.Regular(n.Value * factor)
	}
	return ast.Regular(n.Value * factor)
}

// Scale scales every scalable quantity by factor. ByServings values
// without a matching servings option scale linearly.
func (r *Recipe) Scale(factor float64, conv *units.Converter) {
	r.scaleAll(factor, -1, conv)
}

// ScaleToServings scales the recipe to the target servings. The base is
// the first servings metadata value, or 1. When the target matches one of
// the declared servings options, ByServings values pick that option.
func (r *Recipe) ScaleToServings(target uint32, conv *units.Converter) {
	base := uint32(1)
	index := -1
	if r.Metadata != nil && len(r.Metadata.Servings) > 0 {
		base = r.Metadata.Servings[0]
		for i, s := range r.Metadata.Servings {
			if s == target {
				index = i
				break
			}
		}
	}
	// `servings: 0` must not turn the factor into +Inf
	if base == 0 {
		base = 1
	}
	factor := float64(target) / float64(base)
	r.scaleAll(factor, index, conv)
}

// DefaultScale collapses all values without scaling: factor one, first
// servings option.
func (r *Recipe) DefaultScale() {
	r.scaleAll(1, 0, nil)
}

func (r *Recipe) scaleAll(factor float64, index int, conv *units.Converter) {
	for i := range r.Ingredients {
		if q := r.Ingredients[i].Quantity; q != nil {
			q.Value.scale(factor, index)
			q.fit(conv)
		}
	}
	for i := range r.Cookware {
		if v := r.Cookware[i].Quantity; v != nil {
			v.scale(factor, index)
		}
	}
	for i := range r.Timers {
		if q := r.Timers[i].Quantity; q != nil {
			q.Value.scale(factor, index)
			q.fit(conv)
		}
	}
}

// fit converts the quantity to the unit that best fits its value, staying
// inside the unit's own system.
func (q *Quantity) fit(conv *units.Converter) {
	if conv == nil || q.Unit == "" {
		return
	}
	u, ok := conv.FindUnit(q.Unit)
	if !ok {
		return
	}
	v := q.Value.Value()
	if v.Kind != ast.ValueNumber || v.Number.IsFraction() {
		return
	}
	fitted, bestUnit, err := conv.BestFit(v.Number.Value, u, units.SystemNone)
	if err != nil || bestUnit == nil {
		return
	}
	q.Value.Values = []ast.Value{ast.NumberValue(ast.Regular(fitted), v.Span)}
	q.Unit = bestUnit.Symbol()
}
