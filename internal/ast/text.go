package ast

import (
	"strings"

	"cooklang/internal/source"
)

// FragmentKind distinguishes literal text from soft line breaks.
type FragmentKind uint8

const (
	// FragLiteral is a run of text copied from the source.
	FragLiteral FragmentKind = iota
	// FragSoftBreak is a line break inside a multiline step.
	FragSoftBreak
)

// Fragment is a piece of a Text value.
type Fragment struct {
	Kind FragmentKind
	// Value is the fragment content with escapes resolved. Soft breaks
	// render as a single space.
	Value string
	Span  source.Span
}

// Text is a located string assembled from fragments. An empty Text still
// knows where it would have been.
type Text struct {
	Frags []Fragment
	// emptySpan anchors the position when there are no fragments.
	emptySpan source.Span
}

// EmptyText returns a Text anchored at the given position.
func EmptyText(at source.Span) Text {
	return Text{emptySpan: source.Pos(at.File, at.Start)}
}

// AppendLiteral adds a literal fragment. Empty values are dropped.
func (t *Text) AppendLiteral(value string, span source.Span) {
	if value == "" {
		return
	}
	t.Frags = append(t.Frags, Fragment{Kind: FragLiteral, Value: value, Span: span})
}

// AppendSoftBreak adds a line-break fragment.
func (t *Text) AppendSoftBreak(span source.Span) {
	t.Frags = append(t.Frags, Fragment{Kind: FragSoftBreak, Value: " ", Span: span})
}

// Span covers all fragments, or the anchor position when empty.
func (t Text) Span() source.Span {
	if len(t.Frags) == 0 {
		return t.emptySpan
	}
	sp := t.Frags[0].Span
	for _, f := range t.Frags[1:] {
		sp = sp.Cover(f.Span)
	}
	return sp
}

// String joins the fragments, soft breaks becoming single spaces.
func (t Text) String() string {
	var b strings.Builder
	for _, f := range t.Frags {
		b.WriteString(f.Value)
	}
	return b.String()
}

// Trimmed returns the joined text without surrounding whitespace.
func (t Text) Trimmed() string {
	return strings.TrimSpace(t.String())
}

// IsEmpty reports whether the text is empty after trimming.
func (t Text) IsEmpty() bool {
	return t.Trimmed() == ""
}

// TrimStart drops leading fragments that contain only whitespace and trims
// the first remaining literal.
func (t *Text) TrimStart() {
	for len(t.Frags) > 0 {
		f := &t.Frags[0]
		if f.Kind == FragSoftBreak || strings.TrimSpace(f.Value) == "" {
			t.emptySpan = source.Pos(f.Span.File, f.Span.End)
			t.Frags = t.Frags[1:]
			continue
		}
		trimmed := strings.TrimLeft(f.Value, " \t")
		cut := uint32(len(f.Value) - len(trimmed))
		f.Value = trimmed
		f.Span.Start += cut
		break
	}
}

// TrimEnd drops trailing whitespace-only fragments and trims the last
// remaining literal.
func (t *Text) TrimEnd() {
	for len(t.Frags) > 0 {
		f := &t.Frags[len(t.Frags)-1]
		if f.Kind == FragSoftBreak || strings.TrimSpace(f.Value) == "" {
			t.emptySpan = source.Pos(f.Span.File, f.Span.Start)
			t.Frags = t.Frags[:len(t.Frags)-1]
			continue
		}
		trimmed := strings.TrimRight(f.Value, " \t")
		f.Span.End -= uint32(len(f.Value) - len(trimmed))
		f.Value = trimmed
		break
	}
}
