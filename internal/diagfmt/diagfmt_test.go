package diagfmt_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"cooklang/internal/diagfmt"
	"cooklang/internal/driver"
)

func TestPrettyOutput(t *testing.T) {
	p := driver.NewDefault()
	r := p.Parse("bad.cook", []byte("Add @{} to the bowl."))
	if !r.HasErrors() {
		t.Fatal("expected errors")
	}

	var buf bytes.Buffer
	diagfmt.Pretty(&buf, r.Bag, r.FileSet, diagfmt.PrettyOpts{
		ShowNotes: true,
		ShowHelp:  true,
	})
	out := buf.String()
	if !strings.Contains(out, "bad.cook:1:") {
		t.Errorf("missing location in output:\n%s", out)
	}
	if !strings.Contains(out, "ERROR") || !strings.Contains(out, "COOK") {
		t.Errorf("missing severity or code:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("missing caret line:\n%s", out)
	}
	// no color escapes without Color
	if strings.Contains(out, "\x1b[") {
		t.Errorf("unexpected color escapes:\n%s", out)
	}
}

func TestPrettyWideRunes(t *testing.T) {
	p := driver.NewDefault()
	r := p.Parse("wide.cook", []byte("添加 @{} 到碗里"))
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, r.Bag, r.FileSet, diagfmt.PrettyOpts{})
	if !strings.Contains(buf.String(), "^") {
		t.Errorf("missing caret:\n%s", buf.String())
	}
}

func TestJSONOutput(t *testing.T) {
	p := driver.NewDefault()
	r := p.Parse("bad.cook", []byte("Wait ~{}."))

	var buf bytes.Buffer
	err := diagfmt.JSON(&buf, r.Bag, r.FileSet, diagfmt.JSONOpts{
		IncludePositions: true,
		IncludeNotes:     true,
	})
	if err != nil {
		t.Fatal(err)
	}

	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != len(out.Diagnostics) || out.Count == 0 {
		t.Errorf("count = %d, diagnostics = %d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if !strings.HasPrefix(d.Code, "COOK") || d.Location == nil || d.Location.StartLine == 0 {
		t.Errorf("diagnostic = %+v", d)
	}
}

func TestJSONMax(t *testing.T) {
	p := driver.NewDefault()
	r := p.Parse("bad.cook", []byte("@{} and @{} and @{}"))
	var buf bytes.Buffer
	if err := diagfmt.JSON(&buf, r.Bag, r.FileSet, diagfmt.JSONOpts{Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 {
		t.Errorf("count = %d, want 1", out.Count)
	}
}

func TestRecipeJSON(t *testing.T) {
	p := driver.NewDefault()
	r := p.Parse("pasta.cook", []byte(">> servings: 2\n\nBoil @pasta{200%g} in a #pot for ~{8%min}."))
	if r.HasErrors() {
		t.Fatalf("unexpected errors: %v", r.Bag.Items())
	}

	var buf bytes.Buffer
	if err := diagfmt.RecipeJSONTo(&buf, r.Recipe, p.Converter()); err != nil {
		t.Fatal(err)
	}
	var out diagfmt.RecipeJSON
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Name != "pasta" || len(out.Ingredients) != 1 || len(out.Cookware) != 1 {
		t.Errorf("recipe = %+v", out)
	}
	if out.Ingredients[0].Quantity == nil || out.Ingredients[0].Quantity.Value != "200" {
		t.Errorf("quantity = %+v", out.Ingredients[0].Quantity)
	}
	if len(out.IngredientList) != 1 || out.IngredientList[0].Name != "pasta" {
		t.Errorf("ingredient list = %+v", out.IngredientList)
	}
	if len(out.Sections) != 1 || len(out.Sections[0].Steps) != 1 {
		t.Fatalf("sections = %+v", out.Sections)
	}
	items := out.Sections[0].Steps[0].Items
	var types []string
	for _, it := range items {
		types = append(types, it.Type)
	}
	joined := strings.Join(types, ",")
	if !strings.Contains(joined, "ingredient") || !strings.Contains(joined, "timer") {
		t.Errorf("item types = %v", types)
	}
}
