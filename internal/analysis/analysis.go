// Package analysis turns a parsed ast into a recipe model: it collects
// metadata, groups steps into sections, resolves component references and
// checks everything the grammar alone cannot.
package analysis

import (
	"regexp"
	"strings"

	"cooklang/internal/ast"
	"cooklang/internal/diag"
	"cooklang/internal/metadata"
	"cooklang/internal/model"
	"cooklang/internal/parser"
	"cooklang/internal/source"
	"cooklang/internal/units"
)

// DefineMode controls what components in a step mean, switched with the
// `>> [mode]:` config metadata.
type DefineMode uint8

const (
	// DefineAll is the default: steps and components.
	DefineAll DefineMode = iota
	// DefineComponents keeps components but drops the steps.
	DefineComponents
	// DefineSteps treats every component as a reference.
	DefineSteps
	// DefineText treats whole blocks as text.
	DefineText
)

// DuplicateMode controls what a repeated component name means.
type DuplicateMode uint8

const (
	// DuplicateNew makes every component a new definition.
	DuplicateNew DuplicateMode = iota
	// DuplicateReference makes repeated names references.
	DuplicateReference
)

// Options configures the analysis pass.
type Options struct {
	Extensions parser.Extensions
	// Converter resolves units; nil behaves like an empty converter.
	Converter *units.Converter
	Reporter  diag.Reporter
}

// Build analyzes the ast of one recipe. meta carries frontmatter metadata
// already parsed, nil starts fresh. The `>>` entries of the ast are merged
// into it.
func Build(file *source.File, a *ast.Ast, meta *metadata.Metadata, name string, opts Options) *model.Recipe {
	if meta == nil {
		meta = metadata.New()
	}
	conv := opts.Converter
	if conv == nil {
		conv = units.Empty()
	}
	rep := opts.Reporter
	if rep == nil {
		rep = diag.NopReporter{}
	}

	w := &walker{
		file: file,
		ext:  opts.Extensions,
		conv: conv,
		rep:  rep,
		recipe: &model.Recipe{
			Name:     name,
			Metadata: meta,
		},
		stepCounter: 1,
	}
	w.walk(a)
	return w.recipe
}

type walker struct {
	file *source.File
	ext  parser.Extensions
	conv *units.Converter
	rep  diag.Reporter

	recipe      *model.Recipe
	current     model.Section
	stepCounter uint32

	defineMode    DefineMode
	duplicateMode DuplicateMode

	tempRe      *regexp.Regexp
	tempReBuilt bool
}

func (w *walker) walk(a *ast.Ast) {
	for _, block := range a.Blocks {
		switch b := block.(type) {
		case *ast.Metadata:
			w.metadata(b)
		case *ast.Section:
			w.section(b)
		case *ast.Step:
			w.step(b)
		}
	}
	w.flushSection()
}

func (w *walker) flushSection() {
	if !w.current.IsEmpty() {
		w.recipe.Sections = append(w.recipe.Sections, w.current)
	}
	w.current = model.Section{}
	w.stepCounter = 1
}

func (w *walker) section(s *ast.Section) {
	w.flushSection()
	if s.Name != nil {
		w.current.Name = s.Name.Trimmed()
	}
}

// metadata handles one `>>` entry: config keys like `[mode]` switch parse
// modes, everything else goes into the recipe metadata.
func (w *walker) metadata(m *ast.Metadata) {
	key := m.Key.Trimmed()
	value := m.Value.Trimmed()

	if w.ext.Contains(parser.Modes) &&
		strings.HasPrefix(key, "[") && strings.HasSuffix(key, "]") {
		w.configKey(key[1:len(key)-1], value, m)
		return
	}

	w.recipe.Metadata.Insert(key, value, m.Span(), w.rep)
}

func (w *walker) configKey(key, value string, m *ast.Metadata) {
	badValue := func(possible string) {
		diag.ReportError(w.rep, diag.AnaBadModeValue, m.Value.Span(),
			"invalid value for config key '["+key+"]': "+value).
			WithHelp("possible values are: "+possible).
			Emit()
	}
	switch key {
	case "define", "mode":
		switch value {
		case "all", "default":
			w.defineMode = DefineAll
		case "components", "ingredients":
			w.defineMode = DefineComponents
		case "steps":
			w.defineMode = DefineSteps
		case "text":
			w.defineMode = DefineText
		default:
			badValue("all, components, steps, text")
		}
	case "duplicate":
		switch value {
		case "new", "default":
			w.duplicateMode = DuplicateNew
		case "reference", "ref":
			w.duplicateMode = DuplicateReference
		default:
			badValue("new, reference")
		}
	default:
		diag.ReportWarning(w.rep, diag.AnaBadModeValue, m.Key.Span(),
			"unknown config metadata key: ["+key+"]").
			WithHelp("possible config keys are '[mode]' and '[duplicate]'").
			Emit()
	}
}

func (w *walker) step(s *ast.Step) {
	if s.IsText || w.defineMode == DefineText {
		w.textStep(s)
		return
	}

	var items []model.Item
	for _, it := range s.Items {
		switch item := it.(type) {
		case *ast.TextItem:
			w.stepText(item.Text, &items)
		case *ast.Ingredient:
			idx := w.ingredient(item)
			items = append(items, model.Item{Kind: model.ItemIngredient, Index: idx})
		case *ast.Cookware:
			idx := w.cookware(item)
			items = append(items, model.Item{Kind: model.ItemCookware, Index: idx})
		case *ast.Timer:
			idx := w.timer(item)
			items = append(items, model.Item{Kind: model.ItemTimer, Index: idx})
		}
	}

	// in components mode the step itself is dropped
	if w.defineMode == DefineComponents {
		return
	}
	if len(items) == 0 {
		return
	}
	w.current.Steps = append(w.current.Steps, model.Step{
		Items:  items,
		Number: w.stepCounter,
	})
	w.stepCounter++
}

// textStep flattens a block to plain text. Components inside are ignored
// with a warning, their source text stays in place.
func (w *walker) textStep(s *ast.Step) {
	var b strings.Builder
	for _, it := range s.Items {
		switch item := it.(type) {
		case *ast.TextItem:
			b.WriteString(item.Text.String())
		default:
			what := "component"
			switch it.(type) {
			case *ast.Ingredient:
				what = "ingredient"
			case *ast.Cookware:
				what = "cookware"
			case *ast.Timer:
				what = "timer"
			}
			diag.ReportWarning(w.rep, diag.AnaComponentInText, item.Span(),
				"ignoring "+what+" in text mode").
				Emit()
			b.WriteString(w.file.Slice(item.Span()))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return
	}
	w.current.Steps = append(w.current.Steps, model.Step{
		Items: []model.Item{{Kind: model.ItemText, Text: text}},
	})
}

// stepText adds a text item, splitting out inline quantities when the
// extension is enabled. In components mode text is dropped with a warning
// when it carries words.
func (w *walker) stepText(t ast.Text, items *[]model.Item) {
	text := t.String()
	if w.defineMode == DefineComponents {
		if strings.ContainsFunc(text, isAlphanumeric) {
			diag.ReportWarning(w.rep, diag.AnaTextInComponents, t.Span(),
				"ignoring text in define components mode").
				Emit()
		}
		return
	}

	if w.ext.Contains(parser.InlineQuantities) {
		for {
			before, q, after, found := w.findInlineQuantity(text)
			if !found {
				break
			}
			if before != "" {
				*items = append(*items, model.Item{Kind: model.ItemText, Text: before})
			}
			*items = append(*items, model.Item{
				Kind:  model.ItemInlineQuantity,
				Index: len(w.recipe.InlineQuantities),
			})
			w.recipe.InlineQuantities = append(w.recipe.InlineQuantities, q)
			text = after
		}
	}
	if text != "" {
		*items = append(*items, model.Item{Kind: model.ItemText, Text: text})
	}
}

func isAlphanumeric(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

// value converts a parsed quantity value into its scaling behavior:
// `|` separated values scale by servings, `*` scales linearly, everything
// else is fixed.
func (w *walker) value(qv ast.QuantityValue) model.ScalableValue {
	switch {
	case len(qv.Values) > 1:
		return model.ScalableValue{Kind: model.ByServings, Values: qv.Values}
	case qv.AutoScale != nil:
		return model.ScalableValue{Kind: model.Linear, Values: qv.Values}
	default:
		return model.ScalableValue{Kind: model.Fixed, Values: qv.Values}
	}
}

func (w *walker) quantity(q *ast.Quantity) *model.Quantity {
	if q == nil {
		return nil
	}
	return &model.Quantity{
		Value: w.value(q.Value),
		Unit:  q.UnitText(),
	}
}

func textOrEmpty(t *ast.Text) string {
	if t == nil {
		return ""
	}
	return t.Trimmed()
}

func spanOf(t *ast.Text, fallback source.Span) source.Span {
	if t == nil {
		return fallback
	}
	return t.Span()
}
