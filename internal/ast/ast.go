package ast

import (
	"cooklang/internal/source"
)

// Ast is a parsed recipe body: an ordered list of blocks.
type Ast struct {
	Blocks []Block
}

// Block is one logical line group of a recipe.
type Block interface {
	Span() source.Span
	block()
}

// Metadata is a `>> key: value` entry.
type Metadata struct {
	Key   Text
	Value Text
}

func (m *Metadata) Span() source.Span { return m.Key.Span().Cover(m.Value.Span()) }
func (*Metadata) block()              {}

// Section is a `== name ==` divider. Sections do not own steps in the ast,
// they just sit between them.
type Section struct {
	// Name is nil for an anonymous divider like `====`.
	Name *Text
	Sp   source.Span
}

func (s *Section) Span() source.Span { return s.Sp }
func (*Section) block()              {}

// Step is a group of items forming one instruction. A text step (`>` prefix
// or text mode) has only TextItem items and no step number.
type Step struct {
	IsText bool
	Items  []Item
}

func (s *Step) Span() source.Span {
	if len(s.Items) == 0 {
		return source.Span{}
	}
	sp := s.Items[0].Span()
	for _, it := range s.Items[1:] {
		sp = sp.Cover(it.Span())
	}
	return sp
}
func (*Step) block() {}

// Item is one element of a step.
type Item interface {
	Span() source.Span
	item()
}

// TextItem is plain step text.
type TextItem struct {
	Text Text
}

func (t *TextItem) Span() source.Span { return t.Text.Span() }
func (*TextItem) item()               {}

// Ingredient is an `@name{quantity}` component.
type Ingredient struct {
	Modifiers     Modifiers
	ModifiersSpan source.Span
	// Intermediate is set when the modifiers carried an `(...)` reference.
	Intermediate *IntermediateRef
	Name         Text
	Alias        *Text
	Quantity     *Quantity
	Note         *Text
	Sp           source.Span
}

func (i *Ingredient) Span() source.Span { return i.Sp }
func (*Ingredient) item()               {}

// Cookware is a `#name{quantity}` component. Its quantity has no unit.
type Cookware struct {
	Modifiers     Modifiers
	ModifiersSpan source.Span
	Name          Text
	Alias         *Text
	Quantity      *QuantityValue
	Note          *Text
	Sp            source.Span
}

func (c *Cookware) Span() source.Span { return c.Sp }
func (*Cookware) item()               {}

// Timer is a `~name{duration}` component. At least one of Name and
// Quantity is set.
type Timer struct {
	Name     *Text
	Quantity *Quantity
	Sp       source.Span
}

func (t *Timer) Span() source.Span { return t.Sp }
func (*Timer) item()               {}
