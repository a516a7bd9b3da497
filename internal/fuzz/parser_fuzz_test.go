package fuzztests

import (
	"context"
	"testing"
	"time"

	"cooklang/internal/driver"
	"cooklang/internal/parser"
	"cooklang/internal/units"
)

const (
	maxFuzzInput = 1 << 16 // 64 KiB
	parseTimeout = 5 * time.Second
)

// fuzzParser is built once and shared: it is immutable and safe for
// concurrent use, so every iteration sees the same configuration.
var fuzzParser = driver.New(driver.Options{
	Extensions: parser.AllExtensions(),
	Converter:  units.Bundled(),
})

// FuzzParse runs the whole pipeline on arbitrary bytes. It checks that
// parsing never panics, that diagnostics stay inside the input and that
// the same input always produces the same result.
func FuzzParse(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampFuzzInput(input)

		res := fuzzParser.Parse("fuzz.cook", input)
		if res.Recipe == nil {
			t.Fatalf("nil recipe for input (%d bytes): %q", len(input), truncateForLog(input, 200))
		}
		for _, d := range res.Bag.Items() {
			if int(d.Primary.End) > len(input) || d.Primary.Start > d.Primary.End {
				t.Fatalf("diagnostic %s has span [%d,%d) outside input of %d bytes",
					d.Code.ID(), d.Primary.Start, d.Primary.End, len(input))
			}
		}

		again := fuzzParser.Parse("fuzz.cook", input)
		if res.Bag.Len() != again.Bag.Len() {
			t.Fatalf("diagnostics differ between runs: %d vs %d for input %q",
				res.Bag.Len(), again.Bag.Len(), truncateForLog(input, 200))
		}
		for i, d := range res.Bag.Items() {
			e := again.Bag.Items()[i]
			if d.Code != e.Code || d.Primary != e.Primary {
				t.Fatalf("diagnostic %d differs between runs: %s at %v vs %s at %v",
					i, d.Code.ID(), d.Primary, e.Code.ID(), e.Primary)
			}
		}
		if len(res.Recipe.Sections) != len(again.Recipe.Sections) ||
			len(res.Recipe.Ingredients) != len(again.Recipe.Ingredients) {
			t.Fatalf("recipe shape differs between runs for input %q", truncateForLog(input, 200))
		}
	})
}

// FuzzParseNoHang guards against pathological inputs that make the
// parser loop or backtrack without bound.
func FuzzParseNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampFuzzInput(input)

		ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = fuzzParser.Parse("fuzz.cook", input)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

func clampFuzzInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func truncateForLog(b []byte, max int) []byte {
	if len(b) <= max {
		return b
	}
	return b[:max]
}
