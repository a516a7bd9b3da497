package ast

import (
	"strings"

	"cooklang/internal/source"
)

// Modifiers are the component modifier flags written between the component
// marker and its name, like `@@recipe{}` or `@&salt{}`.
type Modifiers uint8

const (
	// ModRecipe marks an ingredient that references another recipe (`@`).
	ModRecipe Modifiers = 1 << iota
	// ModRef references an earlier component with the same name (`&`).
	ModRef
	// ModHidden hides the component from ingredient lists (`-`).
	ModHidden
	// ModOpt marks the component optional (`?`).
	ModOpt
	// ModNew forces a new component even with a duplicate name (`+`).
	ModNew
)

// Contains reports whether all flags in m2 are set.
func (m Modifiers) Contains(m2 Modifiers) bool {
	return m&m2 == m2
}

// Intersects reports whether any flag in m2 is set.
func (m Modifiers) Intersects(m2 Modifiers) bool {
	return m&m2 != 0
}

// ShouldBeListed reports whether the component belongs in a component list.
func (m Modifiers) ShouldBeListed() bool {
	return !m.Intersects(ModHidden | ModRef)
}

func (m Modifiers) String() string {
	if m == 0 {
		return ""
	}
	var b strings.Builder
	if m.Contains(ModRecipe) {
		b.WriteByte('@')
	}
	if m.Contains(ModRef) {
		b.WriteByte('&')
	}
	if m.Contains(ModHidden) {
		b.WriteByte('-')
	}
	if m.Contains(ModOpt) {
		b.WriteByte('?')
	}
	if m.Contains(ModNew) {
		b.WriteByte('+')
	}
	return b.String()
}

// RefMode says how an intermediate reference value is interpreted.
type RefMode uint8

const (
	// RefModeIndex is a step or section number.
	RefModeIndex RefMode = iota
	// RefModeRelative counts backwards from the current position.
	RefModeRelative
)

// RefTarget says what an intermediate reference points at.
type RefTarget uint8

const (
	// RefTargetStep is a step in the current section.
	RefTargetStep RefTarget = iota
	// RefTargetSection is a section of the recipe.
	RefTargetSection
)

// IntermediateRef is the payload of an `@&(...)` intermediate preparation
// reference. It is not validated here: it may point to a step or section
// that does not exist, which analysis reports.
type IntermediateRef struct {
	Mode   RefMode
	Target RefTarget
	Val    int16
	Span   source.Span
}
