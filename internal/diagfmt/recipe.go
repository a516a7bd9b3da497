package diagfmt

import (
	"encoding/json"
	"io"

	"cooklang/internal/metadata"
	"cooklang/internal/model"
	"cooklang/internal/units"
)

// The JSON shapes below are the stable output of `cook parse`. Index
// fields point into the top-level component lists, mirroring the model.

type MetaEntryJSON struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type QuantityJSON struct {
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

type RelationJSON struct {
	Type string `json:"type"`
	// References is the index of the definition, step or section.
	References int `json:"references"`
}

type IngredientJSON struct {
	Name      string        `json:"name"`
	Alias     string        `json:"alias,omitempty"`
	Quantity  *QuantityJSON `json:"quantity,omitempty"`
	Note      string        `json:"note,omitempty"`
	Modifiers string        `json:"modifiers,omitempty"`
	Reference *RelationJSON `json:"reference,omitempty"`
}

type CookwareJSON struct {
	Name      string        `json:"name"`
	Alias     string        `json:"alias,omitempty"`
	Quantity  *QuantityJSON `json:"quantity,omitempty"`
	Note      string        `json:"note,omitempty"`
	Modifiers string        `json:"modifiers,omitempty"`
	Reference *RelationJSON `json:"reference,omitempty"`
}

type TimerJSON struct {
	Name     string        `json:"name,omitempty"`
	Quantity *QuantityJSON `json:"quantity,omitempty"`
}

type ItemJSON struct {
	Type string `json:"type"`
	// Text is set for text items.
	Text string `json:"text,omitempty"`
	// Index points into the matching component list.
	Index *int `json:"index,omitempty"`
}

type StepJSON struct {
	Number uint32     `json:"number,omitempty"`
	Items  []ItemJSON `json:"items"`
}

type SectionJSON struct {
	Name  string     `json:"name,omitempty"`
	Steps []StepJSON `json:"steps"`
}

// IngredientListEntryJSON is one shopping-list line: a listed definition
// with the quantities of all its references added in.
type IngredientListEntryJSON struct {
	Name       string         `json:"name"`
	Index      int            `json:"index"`
	Quantities []QuantityJSON `json:"quantities,omitempty"`
}

type RecipeJSON struct {
	Name             string                    `json:"name"`
	Metadata         []MetaEntryJSON           `json:"metadata,omitempty"`
	Sections         []SectionJSON             `json:"sections"`
	Ingredients      []IngredientJSON          `json:"ingredients"`
	Cookware         []CookwareJSON            `json:"cookware"`
	Timers           []TimerJSON               `json:"timers"`
	IngredientList   []IngredientListEntryJSON `json:"ingredient_list,omitempty"`
	InlineQuantities []QuantityJSON            `json:"inline_quantities,omitempty"`
}

func quantityJSON(q *model.Quantity) *QuantityJSON {
	if q == nil {
		return nil
	}
	return &QuantityJSON{Value: q.Value.Value().String(), Unit: q.Unit}
}

func relationJSON(rel model.Relation) *RelationJSON {
	if !rel.IsReference {
		return nil
	}
	kind := "component"
	switch rel.Target {
	case model.TargetStep:
		kind = "step"
	case model.TargetSection:
		kind = "section"
	}
	return &RelationJSON{Type: kind, References: rel.ReferencesTo}
}

func metaJSON(m *metadata.Metadata) []MetaEntryJSON {
	if m == nil {
		return nil
	}
	var out []MetaEntryJSON
	for _, pair := range m.All() {
		out = append(out, MetaEntryJSON{Key: pair.Key, Value: pair.Value})
	}
	return out
}

// BuildRecipeOutput shapes a recipe for machine-readable output. conv
// drives quantity grouping in the ingredient list; nil only groups
// exactly matching units.
func BuildRecipeOutput(r *model.Recipe, conv *units.Converter) RecipeJSON {
	out := RecipeJSON{
		Name:        r.Name,
		Metadata:    metaJSON(r.Metadata),
		Sections:    make([]SectionJSON, 0, len(r.Sections)),
		Ingredients: make([]IngredientJSON, 0, len(r.Ingredients)),
		Cookware:    make([]CookwareJSON, 0, len(r.Cookware)),
		Timers:      make([]TimerJSON, 0, len(r.Timers)),
	}

	for _, sec := range r.Sections {
		sj := SectionJSON{Name: sec.Name, Steps: make([]StepJSON, 0, len(sec.Steps))}
		for _, step := range sec.Steps {
			stj := StepJSON{Number: step.Number, Items: make([]ItemJSON, 0, len(step.Items))}
			for _, it := range step.Items {
				stj.Items = append(stj.Items, itemJSON(it))
			}
			sj.Steps = append(sj.Steps, stj)
		}
		out.Sections = append(out.Sections, sj)
	}

	for i := range r.Ingredients {
		igr := &r.Ingredients[i]
		out.Ingredients = append(out.Ingredients, IngredientJSON{
			Name:      igr.Name,
			Alias:     igr.Alias,
			Quantity:  quantityJSON(igr.Quantity),
			Note:      igr.Note,
			Modifiers: igr.Modifiers.String(),
			Reference: relationJSON(igr.Relation),
		})
	}
	for i := range r.Cookware {
		cw := &r.Cookware[i]
		cj := CookwareJSON{
			Name:      cw.Name,
			Alias:     cw.Alias,
			Note:      cw.Note,
			Modifiers: cw.Modifiers.String(),
			Reference: relationJSON(cw.Relation),
		}
		if cw.Quantity != nil {
			cj.Quantity = &QuantityJSON{Value: cw.Quantity.Value().String()}
		}
		out.Cookware = append(out.Cookware, cj)
	}
	for i := range r.Timers {
		tm := &r.Timers[i]
		out.Timers = append(out.Timers, TimerJSON{
			Name:     tm.Name,
			Quantity: quantityJSON(tm.Quantity),
		})
	}
	for _, entry := range r.IngredientList(conv) {
		ej := IngredientListEntryJSON{
			Name:  r.Ingredients[entry.Index].DisplayName(),
			Index: entry.Index,
		}
		for i := range entry.Quantities {
			ej.Quantities = append(ej.Quantities, *quantityJSON(&entry.Quantities[i]))
		}
		out.IngredientList = append(out.IngredientList, ej)
	}
	for i := range r.InlineQuantities {
		out.InlineQuantities = append(out.InlineQuantities, *quantityJSON(&r.InlineQuantities[i]))
	}
	return out
}

func itemJSON(it model.Item) ItemJSON {
	switch it.Kind {
	case model.ItemText:
		return ItemJSON{Type: "text", Text: it.Text}
	case model.ItemIngredient:
		idx := it.Index
		return ItemJSON{Type: "ingredient", Index: &idx}
	case model.ItemCookware:
		idx := it.Index
		return ItemJSON{Type: "cookware", Index: &idx}
	case model.ItemTimer:
		idx := it.Index
		return ItemJSON{Type: "timer", Index: &idx}
	default:
		idx := it.Index
		return ItemJSON{Type: "inline_quantity", Index: &idx}
	}
}

// RecipeJSONTo writes a recipe as indented JSON.
func RecipeJSONTo(w io.Writer, r *model.Recipe, conv *units.Converter) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildRecipeOutput(r, conv))
}
