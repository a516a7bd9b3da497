package lexer_test

import (
	"testing"

	"cooklang/internal/lexer"
	"cooklang/internal/source"
	"cooklang/internal/token"
)

func kinds(t *testing.T, input string) []token.Kind {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.cook", []byte(input))
	lx := lexer.New(fs.Get(id))

	var out []token.Kind
	for _, tok := range lx.All() {
		out = append(out, tok.Kind)
	}
	return out
}

func expect(t *testing.T, input string, want ...token.Kind) {
	t.Helper()
	got := kinds(t, input)
	if len(got) != len(want) {
		t.Fatalf("input %q: got %v, want %v", input, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("input %q: token %d = %v, want %v (full: %v)", input, i, got[i], want[i], got)
		}
	}
}

func TestWords(t *testing.T) {
	expect(t, "basic", token.Word)
	expect(t, "word.word", token.Word, token.Punct, token.Word)
	expect(t, "two words", token.Word, token.Whitespace, token.Word)
	expect(t, "word\nanother", token.Word, token.Newline, token.Word)
	expect(t, "👀", token.Word)
	expect(t, "👀more", token.Word)
	expect(t, "thing👀more", token.Word)
	// unicode whitespace U+2009
	expect(t, "two words", token.Word, token.Whitespace, token.Word)
}

func TestNumbers(t *testing.T) {
	expect(t, "1", token.Int)
	expect(t, "0", token.Int)
	expect(t, "01", token.ZeroInt)
	expect(t, "1.3", token.Float)
	expect(t, "0.3", token.Float)
	expect(t, ".3", token.Punct, token.Int)
	expect(t, "14.", token.Int, token.Punct)
	expect(t, "word3.", token.Word, token.Punct)
	expect(t, "{3}", token.LBrace, token.Int, token.RBrace)
}

func TestComments(t *testing.T) {
	expect(t, "-- a line comment", token.LineComment)
	expect(t, "[- a block comment -]", token.BlockComment)
	expect(t, "word -- comment\nmore",
		token.Word, token.Whitespace, token.LineComment, token.Newline, token.Word)
	// unterminated block comment runs to EOF
	expect(t, "word [- non closed\ncomment",
		token.Word, token.Whitespace, token.BlockComment)
}

func TestComponents(t *testing.T) {
	expect(t, "@basic", token.At, token.Word)
	expect(t, "#basic", token.Hash, token.Word)
	expect(t, "~basic", token.Tilde, token.Word)
	expect(t, "@qty{3}", token.At, token.Word, token.LBrace, token.Int, token.RBrace)
	expect(t, "@qty{3}(note)",
		token.At, token.Word, token.LBrace, token.Int, token.RBrace,
		token.LParen, token.Word, token.RParen)
}

func TestMetadataMarker(t *testing.T) {
	expect(t, ">> key: value",
		token.MetaStart, token.Whitespace, token.Word, token.Colon,
		token.Whitespace, token.Word)
	expect(t, "> text step", token.TextStep, token.Whitespace, token.Word,
		token.Whitespace, token.Word)
}

func TestEscapes(t *testing.T) {
	expect(t, `\@word`, token.Escaped, token.Word)
	expect(t, `\`, token.Escaped)
}

func TestInvalidUTF8MakesProgress(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.cook", []byte{0xFF, 0xFE, '@', 0xFF})
	lx := lexer.New(fs.Get(id))

	total := 0
	for i := 0; i < 100; i++ {
		tok := lx.Next()
		if tok.Kind.IsEOF() {
			total = i
			break
		}
	}
	if total == 0 {
		t.Fatal("lexer did not reach EOF on invalid UTF-8")
	}
}

func TestSpansCoverInput(t *testing.T) {
	input := "Add @salt{1%tsp} now"
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.cook", []byte(input))
	lx := lexer.New(fs.Get(id))

	var pos uint32
	for _, tok := range lx.All() {
		if tok.Span.Start != pos {
			t.Fatalf("token %v starts at %d, want %d", tok.Kind, tok.Span.Start, pos)
		}
		if tok.Span.End <= tok.Span.Start {
			t.Fatalf("token %v has empty span", tok.Kind)
		}
		pos = tok.Span.End
	}
	if pos != uint32(len(input)) {
		t.Fatalf("tokens cover %d bytes, want %d", pos, len(input))
	}
}
