package fuzztests

import (
	"testing"

	"cooklang/internal/lexer"
	"cooklang/internal/source"
)

// FuzzLexerTokens lexes arbitrary bytes to EOF and checks that token
// spans stay inside the input and never move backwards.
func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampFuzzInput(input)

		fs := source.NewFileSet()
		id := fs.AddVirtual("fuzz.cook", input)
		file := fs.Get(id)

		lx := lexer.New(file)
		var prevEnd uint32
		for {
			tok := lx.Next()
			if tok.Span.Start > tok.Span.End || int(tok.Span.End) > len(input) {
				t.Fatalf("token %s has span [%d,%d) outside input of %d bytes",
					tok.Kind, tok.Span.Start, tok.Span.End, len(input))
			}
			if tok.Span.Start < prevEnd {
				t.Fatalf("token %s at offset %d starts before previous token end %d",
					tok.Kind, tok.Span.Start, prevEnd)
			}
			prevEnd = tok.Span.End
			if tok.Kind.IsEOF() {
				break
			}
		}
	})
}
