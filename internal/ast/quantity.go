package ast

import (
	"fmt"
	"strconv"

	"cooklang/internal/source"
)

// Number is a numeric literal, kept in fraction form when written as one so
// "1/2 cup" survives scaling and display.
type Number struct {
	// Value is the computed numeric value.
	Value float64
	// Fraction form: set when Den != 0.
	Whole float64
	Num   float64
	Den   float64
}

// Regular builds a plain number.
func Regular(v float64) Number {
	return Number{Value: v}
}

// Fraction builds a mixed number like "2 1/2". Den must not be zero.
func Fraction(whole, num, den float64) Number {
	return Number{
		Value: whole + num/den,
		Whole: whole,
		Num:   num,
		Den:   den,
	}
}

// IsFraction reports whether the number keeps a fraction form.
func (n Number) IsFraction() bool { return n.Den != 0 }

func (n Number) String() string {
	if n.IsFraction() {
		if n.Whole != 0 {
			return fmt.Sprintf("%s %s/%s",
				formatFloat(n.Whole), formatFloat(n.Num), formatFloat(n.Den))
		}
		return fmt.Sprintf("%s/%s", formatFloat(n.Num), formatFloat(n.Den))
	}
	return formatFloat(n.Value)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ValueKind tags the variants of Value.
type ValueKind uint8

const (
	// ValueNumber is a single numeric value.
	ValueNumber ValueKind = iota
	// ValueRange is a numeric range like "2-3".
	ValueRange
	// ValueText is a free-form textual value like "a pinch".
	ValueText
)

// Value is one quantity value.
type Value struct {
	Kind ValueKind
	// Number is the value (ValueNumber) or the range start (ValueRange).
	Number Number
	// RangeEnd is the range end for ValueRange.
	RangeEnd Number
	// Text is set for ValueText.
	Text string
	Span source.Span
}

func NumberValue(n Number, span source.Span) Value {
	return Value{Kind: ValueNumber, Number: n, Span: span}
}

func RangeValue(start, end Number, span source.Span) Value {
	return Value{Kind: ValueRange, Number: start, RangeEnd: end, Span: span}
}

func TextValue(text string, span source.Span) Value {
	return Value{Kind: ValueText, Text: text, Span: span}
}

// RecoverValue is the placeholder used after a reported quantity error so
// parsing can continue.
func RecoverValue(span source.Span) Value {
	return NumberValue(Regular(1), span)
}

func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return v.Number.String()
	case ValueRange:
		return v.Number.String() + "-" + v.RangeEnd.String()
	default:
		return v.Text
	}
}

// QuantityValue is the value part of a quantity: one or more values
// separated by `|` (scaling steps), or a single value with the `*`
// auto-scale marker.
type QuantityValue struct {
	// Values holds at least one value. More than one means the recipe
	// author wrote explicit per-serving scaling steps.
	Values []Value
	// AutoScale is the span of the `*` marker, when present.
	AutoScale *source.Span
}

// IsScalable reports whether scaling changes this value.
func (qv QuantityValue) IsScalable() bool {
	return qv.AutoScale != nil || len(qv.Values) > 1
}

// Span covers all values.
func (qv QuantityValue) Span() source.Span {
	if len(qv.Values) == 0 {
		return source.Span{}
	}
	sp := qv.Values[0].Span
	for _, v := range qv.Values[1:] {
		sp = sp.Cover(v.Span)
	}
	if qv.AutoScale != nil {
		sp = sp.Cover(*qv.AutoScale)
	}
	return sp
}

// Quantity is the braced part of a component: value(s) and an optional
// unit after `%`.
type Quantity struct {
	Value QuantityValue
	Unit  *Text
	// UnitSeparator is the span of the `%`, when present.
	UnitSeparator *source.Span
	Span          source.Span
}

// UnitText returns the trimmed unit, or "".
func (q Quantity) UnitText() string {
	if q.Unit == nil {
		return ""
	}
	return q.Unit.Trimmed()
}
