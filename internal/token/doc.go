// Package token defines the cooklang token vocabulary shared by the lexer
// and parser. Cooklang has no keywords: everything that is not one of the
// special marker characters is a Word, a number, punctuation or whitespace.
package token
