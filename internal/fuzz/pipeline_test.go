package fuzztests

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"cooklang/internal/diag"
	"cooklang/internal/driver"
	"cooklang/internal/parser"
	"cooklang/internal/units"
)

func TestParseEmptyInput(t *testing.T) {
	res := fuzzParser.Parse("empty.cook", nil)
	if res.Recipe == nil {
		t.Fatal("nil recipe for empty input")
	}
	if len(res.Recipe.Sections) != 0 {
		t.Errorf("empty input produced %d sections", len(res.Recipe.Sections))
	}
	if res.HasErrors() {
		t.Errorf("empty input produced errors: %v", res.Bag.Items())
	}
}

func TestParseSingleBracket(t *testing.T) {
	res := fuzzParser.Parse("bracket.cook", []byte("["))
	if res.Recipe == nil {
		t.Fatal("nil recipe")
	}
	if res.HasErrors() {
		t.Errorf("lone bracket should be plain text, got errors: %v", res.Bag.Items())
	}
}

// TestParseRepeatedDelimiters feeds a megabyte of component markers and
// requires the parse to finish inside the hang budget.
func TestParseRepeatedDelimiters(t *testing.T) {
	inputs := map[string][]byte{
		"at":     []byte(strings.Repeat("@", 1_000_000)),
		"braces": []byte(strings.Repeat("{}", 500_000)),
		"pipes":  []byte("@a{" + strings.Repeat("1|", 500_000) + "}"),
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			done := make(chan struct{})
			go func() {
				defer close(done)
				_ = fuzzParser.Parse("repeat.cook", input)
			}()
			select {
			case <-done:
			case <-time.After(parseTimeout):
				t.Fatalf("parsing %d bytes of repeated delimiters exceeded %v", len(input), parseTimeout)
			}
		})
	}
}

// TestParseDeterministicFreshParsers builds a new pipeline per run to
// show determinism does not depend on shared state.
func TestParseDeterministicFreshParsers(t *testing.T) {
	input := []byte(">> servings: 2\nMix @flour{200%g} with @{} in a #bowl for ~{5%minutes}.\n")

	var first []string
	for run := 0; run < 3; run++ {
		p := driver.New(driver.Options{
			Extensions: parser.AllExtensions(),
			Converter:  units.Bundled(),
		})
		got := diagKeys(p.Parse("fresh.cook", input).Bag)
		if run == 0 {
			first = got
			continue
		}
		if strings.Join(got, ";") != strings.Join(first, ";") {
			t.Fatalf("run %d diagnostics differ:\n%v\nvs\n%v", run, got, first)
		}
	}
}

// TestParseOrderIndependence parses a fixed corpus in natural and in
// shuffled order and requires identical per-input outcomes.
func TestParseOrderIndependence(t *testing.T) {
	corpus := [][]byte{
		[]byte(""),
		[]byte("@{}\n"),
		[]byte(">> [mode]: steps\n@ghost{}\n"),
		[]byte("== A ==\n@flour{1%kg}\n"),
		[]byte("@&flour{}\n"),
		[]byte("~t{1%bananas}\n"),
		[]byte("[- open comment\n"),
	}

	baseline := make([]string, len(corpus))
	for i, input := range corpus {
		baseline[i] = strings.Join(diagKeys(fuzzParser.Parse("order.cook", input).Bag), ";")
	}

	order := rand.New(rand.NewSource(42)).Perm(len(corpus))
	for _, i := range order {
		got := strings.Join(diagKeys(fuzzParser.Parse("order.cook", corpus[i]).Bag), ";")
		if got != baseline[i] {
			t.Errorf("input %d outcome changed under shuffled order:\n%s\nvs\n%s", i, got, baseline[i])
		}
	}
}

func diagKeys(bag *diag.Bag) []string {
	keys := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		keys = append(keys, fmt.Sprintf("%s@%d-%d", d.Code.ID(), d.Primary.Start, d.Primary.End))
	}
	return keys
}
