// Package model is the recipe representation after analysis: sections and
// steps referencing flat component lists, with scalable quantities.
package model

import (
	"path"
	"strings"

	"cooklang/internal/ast"
	"cooklang/internal/metadata"
)

// Recipe is a complete analyzed recipe. Step items reference the flat
// Ingredients/Cookware/Timers lists by index.
type Recipe struct {
	Name     string
	Metadata *metadata.Metadata
	// Sections hold the steps. A recipe without section headers has one
	// anonymous section.
	Sections    []Section
	Ingredients []Ingredient
	Cookware    []Cookware
	Timers      []Timer
	// InlineQuantities are quantities detected inside step text, like
	// temperatures.
	InlineQuantities []Quantity
}

// Section is a named group of steps.
type Section struct {
	Name  string
	Steps []Step
}

// IsEmpty reports whether the section has no name and no steps.
func (s *Section) IsEmpty() bool {
	return s.Name == "" && len(s.Steps) == 0
}

// Step is one instruction. Text steps have Number zero.
type Step struct {
	Items []Item
	// Number starts at 1 per section and only counts non-text steps.
	Number uint32
}

// IsText reports whether this is a text step.
func (s *Step) IsText() bool { return s.Number == 0 }

// ItemKind tags a step item.
type ItemKind uint8

const (
	ItemText ItemKind = iota
	ItemIngredient
	ItemCookware
	ItemTimer
	ItemInlineQuantity
)

// Item is one element of a step. Index points into the recipe list
// matching Kind; Text is set for ItemText.
type Item struct {
	Kind  ItemKind
	Text  string
	Index int
}

// RefTarget says what a component reference points at.
type RefTarget uint8

const (
	// TargetComponent references another component in the same list.
	TargetComponent RefTarget = iota
	// TargetStep is an intermediate reference to a step's output.
	TargetStep
	// TargetSection is an intermediate reference to a section's output.
	TargetSection
)

// Relation links a component to its definition and back.
type Relation struct {
	// IsReference is set on `&` components.
	IsReference bool
	// ReferencesTo is the index of the definition, -1 when not a
	// reference. For TargetStep and TargetSection it is the step or
	// section index instead.
	ReferencesTo int
	Target       RefTarget
	// ReferencedFrom lists the components referencing this one.
	ReferencedFrom []int
}

// DefinitionRelation is the relation of a component that stands alone.
func DefinitionRelation() Relation {
	return Relation{ReferencesTo: -1}
}

// ReferenceRelation links to a definition.
func ReferenceRelation(target RefTarget, to int) Relation {
	return Relation{IsReference: true, Target: target, ReferencesTo: to}
}

// Ingredient is one recipe ingredient.
type Ingredient struct {
	// Name may be a path when the ingredient references a recipe.
	Name      string
	Alias     string
	Quantity  *Quantity
	Note      string
	Modifiers ast.Modifiers
	Relation  Relation
	// DefinedInStep is false when the ingredient was defined in components
	// mode, outside any step.
	DefinedInStep bool
}

// DisplayName is the name to show in lists: the alias if present, or the
// file stem when the ingredient references a recipe.
func (i *Ingredient) DisplayName() string {
	if i.Alias != "" {
		return i.Alias
	}
	if i.Modifiers.Contains(ast.ModRecipe) {
		stem := path.Base(i.Name)
		if ext := path.Ext(stem); ext != "" {
			stem = strings.TrimSuffix(stem, ext)
		}
		if stem != "" && stem != "." {
			return stem
		}
	}
	return i.Name
}

// ShouldBeListed reports whether the ingredient belongs in an ingredient
// list.
func (i *Ingredient) ShouldBeListed() bool {
	return i.Modifiers.ShouldBeListed()
}

// Cookware is one cookware item. Its quantity has no unit.
type Cookware struct {
	Name      string
	Alias     string
	Quantity  *ScalableValue
	Note      string
	Modifiers ast.Modifiers
	Relation  Relation
}

// DisplayName is the alias if present, else the name.
func (c *Cookware) DisplayName() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Name
}

// Timer is one timer. At least one of Name and Quantity is set.
type Timer struct {
	Name     string
	Quantity *Quantity
}

// AllIngredientQuantities returns the quantities of an ingredient and all
// components referencing it.
func (r *Recipe) AllIngredientQuantities(idx int) []*Quantity {
	var out []*Quantity
	igr := &r.Ingredients[idx]
	if igr.Quantity != nil {
		out = append(out, igr.Quantity)
	}
	for _, ref := range igr.Relation.ReferencedFrom {
		if q := r.Ingredients[ref].Quantity; q != nil {
			out = append(out, q)
		}
	}
	return out
}
