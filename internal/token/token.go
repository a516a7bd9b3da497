package token

import (
	"cooklang/internal/source"
)

// Token is a single lexed token with its location.
// The text is not stored: slice the file content with Span when needed.
type Token struct {
	Kind Kind
	Span source.Span
}

// Len returns the byte length of the token.
func (t Token) Len() uint32 {
	return t.Span.Len()
}
