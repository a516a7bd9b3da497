// Package lexer turns recipe text into cooklang tokens.
//
// The scanner is total: any byte sequence, valid UTF-8 or not, lexes into a
// finite token stream ending in EOF. There are no lexical errors, which is
// one half of the parser's never-fail contract.
package lexer

import (
	"unicode"

	"cooklang/internal/source"
	"cooklang/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
}

// New creates a lexer over the whole file.
func New(file *source.File) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
	}
}

// NewAt creates a lexer starting at a byte offset, used to lex the recipe
// body after a YAML frontmatter block.
func NewAt(file *source.File, off uint32) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursorAt(file, off),
	}
}

// Next returns the next token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	mark := lx.cursor.Mark()

	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.cursor.SpanFrom(mark)}
	}

	first := lx.cursor.Bump()
	var kind token.Kind

	switch {
	case first == '\\':
		// escape the next rune, whatever it is
		lx.cursor.Bump()
		kind = token.Escaped

	case first == '>' && lx.peekIs('>'):
		lx.cursor.Bump()
		kind = token.MetaStart

	case first == '-' && lx.peekIs('-'):
		kind = lx.lineComment()

	case first == '[' && lx.peekIs('-'):
		kind = lx.blockComment()

	case isWhitespace(first):
		lx.cursor.EatWhile(isWhitespace)
		kind = token.Whitespace

	case first == '\n':
		kind = token.Newline

	case first == '\r' && lx.peekIs('\n'):
		lx.cursor.Bump()
		kind = token.Newline

	case first >= '0' && first <= '9':
		kind = lx.number(first)

	default:
		kind = singleCharKind(first)
		if kind == token.Invalid {
			switch {
			case unicode.IsPunct(first):
				kind = token.Punct
			default:
				lx.cursor.EatWhile(isWordRune)
				kind = token.Word
			}
		}
	}

	return token.Token{Kind: kind, Span: lx.cursor.SpanFrom(mark)}
}

// All lexes the remaining input into a slice, EOF excluded.
func (lx *Lexer) All() []token.Token {
	var out []token.Token
	for {
		t := lx.Next()
		if t.Kind.IsEOF() {
			return out
		}
		out = append(out, t)
	}
}

func (lx *Lexer) peekIs(r rune) bool {
	got, _ := lx.cursor.Peek()
	return got == r
}

func (lx *Lexer) lineComment() token.Kind {
	lx.cursor.EatWhile(func(r rune) bool { return r != '\n' })
	return token.LineComment
}

func (lx *Lexer) blockComment() token.Kind {
	lx.cursor.Bump() // '-'
	for !lx.cursor.EOF() {
		r := lx.cursor.Bump()
		if r == '-' && lx.peekIs(']') {
			lx.cursor.Bump()
			break
		}
	}
	// an unterminated block comment runs to EOF
	return token.BlockComment
}

// number scans an integer or a decimal. A leading zero on a bare integer
// yields ZeroInt, which quantity parsing rejects as a numeric value.
func (lx *Lexer) number(first rune) token.Kind {
	digits := 1
	lx.cursor.EatWhile(func(r rune) bool {
		ok := r >= '0' && r <= '9'
		if ok {
			digits++
		}
		return ok
	})

	// "1.5" is one Float token, "14." is Int followed by Punct
	if r, _ := lx.cursor.Peek(); r == '.' {
		if next := lx.cursor.Peek2(); next >= '0' && next <= '9' {
			lx.cursor.Bump() // '.'
			lx.cursor.EatWhile(func(r rune) bool { return r >= '0' && r <= '9' })
			return token.Float
		}
	}

	if first == '0' && digits > 1 {
		return token.ZeroInt
	}
	return token.Int
}

func singleCharKind(r rune) token.Kind {
	switch r {
	case '>':
		return token.TextStep
	case ':':
		return token.Colon
	case '@':
		return token.At
	case '#':
		return token.Hash
	case '~':
		return token.Tilde
	case '?':
		return token.Question
	case '+':
		return token.Plus
	case '-':
		return token.Minus
	case '/':
		return token.Slash
	case '*':
		return token.Star
	case '&':
		return token.Amp
	case '|':
		return token.Pipe
	case '=':
		return token.Eq
	case '%':
		return token.Percent
	case '{':
		return token.LBrace
	case '}':
		return token.RBrace
	case '(':
		return token.LParen
	case ')':
		return token.RParen
	default:
		return token.Invalid
	}
}

func isWhitespace(r rune) bool {
	return r == '\t' || unicode.Is(unicode.Zs, r)
}

func isSpecial(r rune) bool {
	return singleCharKind(r) != token.Invalid
}

func isWordRune(r rune) bool {
	return !isWhitespace(r) && r != '\n' && r != '\r' && r != '\\' &&
		!isSpecial(r) && !unicode.IsPunct(r)
}
