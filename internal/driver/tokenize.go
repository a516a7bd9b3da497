package driver

import (
	"cooklang/internal/lexer"
	"cooklang/internal/source"
	"cooklang/internal/token"
)

// TokenizeResult holds the raw token stream of one file.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
}

// Tokenize lexes content held in memory without parsing it.
func Tokenize(name string, content []byte) *TokenizeResult {
	fileSet := source.NewFileSet()
	id := fileSet.AddVirtual(name, content)
	return tokenize(fileSet, id)
}

// TokenizeFile lexes a file from disk without parsing it.
func TokenizeFile(path string) (*TokenizeResult, error) {
	fileSet := source.NewFileSet()
	id, err := fileSet.Load(path)
	if err != nil {
		return nil, err
	}
	return tokenize(fileSet, id), nil
}

func tokenize(fileSet *source.FileSet, id source.FileID) *TokenizeResult {
	file := fileSet.Get(id)
	lx := lexer.New(file)
	// the stream keeps the trailing EOF so dumps show where the input ends
	tokens := append(lx.All(), lx.Next())
	return &TokenizeResult{
		FileSet: fileSet,
		File:    file,
		Tokens:  tokens,
	}
}
