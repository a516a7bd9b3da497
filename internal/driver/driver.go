// Package driver ties the pipeline together: frontmatter splitting,
// parsing, analysis and batch operations over recipe directories.
package driver

import (
	"path/filepath"
	"strings"

	"cooklang/internal/analysis"
	"cooklang/internal/diag"
	"cooklang/internal/metadata"
	"cooklang/internal/model"
	"cooklang/internal/parser"
	"cooklang/internal/source"
	"cooklang/internal/units"
)

const defaultMaxDiagnostics = 256

// Options configures a Parser.
type Options struct {
	Extensions parser.Extensions
	// Converter resolves units. nil disables unit-aware checks.
	Converter *units.Converter
	// MaxDiagnostics caps the diagnostics per file, <= 0 means the default.
	MaxDiagnostics int
}

// Parser is the reusable pipeline front end. It is safe for concurrent use.
type Parser struct {
	ext     parser.Extensions
	conv    *units.Converter
	maxDiag int
}

// New builds a Parser from options.
func New(opts Options) *Parser {
	conv := opts.Converter
	if conv == nil {
		conv = units.Empty()
	}
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = defaultMaxDiagnostics
	}
	return &Parser{ext: opts.Extensions, conv: conv, maxDiag: maxDiag}
}

// NewDefault builds a Parser with every extension and the bundled units.
func NewDefault() *Parser {
	return New(Options{
		Extensions: parser.AllExtensions(),
		Converter:  units.Bundled(),
	})
}

// Extensions returns the extension set the parser was built with.
func (p *Parser) Extensions() parser.Extensions { return p.ext }

// Converter returns the unit converter the parser was built with.
func (p *Parser) Converter() *units.Converter { return p.conv }

// Result is one parsed recipe with everything needed to render its
// diagnostics.
type Result struct {
	Recipe  *model.Recipe
	Bag     *diag.Bag
	FileSet *source.FileSet
	File    *source.File
}

// HasErrors reports whether the parse produced error diagnostics.
func (r *Result) HasErrors() bool { return r.Bag.HasErrors() }

// Parse parses one recipe held in memory. name is used for display and for
// the recipe name.
func (p *Parser) Parse(name string, content []byte) *Result {
	fileSet := source.NewFileSet()
	id := fileSet.AddVirtual(name, content)
	return p.parse(fileSet, id)
}

// ParseFile loads and parses a recipe from disk.
func (p *Parser) ParseFile(path string) (*Result, error) {
	fileSet := source.NewFileSet()
	id, err := fileSet.Load(path)
	if err != nil {
		return nil, err
	}
	return p.parse(fileSet, id), nil
}

func (p *Parser) parse(fileSet *source.FileSet, id source.FileID) *Result {
	file := fileSet.Get(id)
	bag := diag.NewBag(p.maxDiag)
	rep := diag.BagReporter{Bag: bag}

	meta, bodyOffset := p.frontmatter(file, rep)
	a := parser.ParseFile(file, parser.Options{
		Extensions: p.ext,
		Reporter:   rep,
		BodyOffset: bodyOffset,
	})
	recipe := analysis.Build(file, a, meta, RecipeName(file.Path), analysis.Options{
		Extensions: p.ext,
		Converter:  p.conv,
		Reporter:   rep,
	})

	bag.Sort()
	return &Result{Recipe: recipe, Bag: bag, FileSet: fileSet, File: file}
}

// ParseMetadata extracts only the metadata of a recipe: the YAML
// frontmatter plus the `>>` entries, skipping the rest of the body.
func (p *Parser) ParseMetadata(name string, content []byte) (*metadata.Metadata, *diag.Bag) {
	fileSet := source.NewFileSet()
	id := fileSet.AddVirtual(name, content)
	file := fileSet.Get(id)
	bag := diag.NewBag(p.maxDiag)
	rep := diag.BagReporter{Bag: bag}

	meta, bodyOffset := p.frontmatter(file, rep)
	a := parser.ParseMetadata(file, parser.Options{
		Extensions: p.ext,
		Reporter:   rep,
		BodyOffset: bodyOffset,
	})
	recipe := analysis.Build(file, a, meta, RecipeName(file.Path), analysis.Options{
		Extensions: p.ext,
		Converter:  p.conv,
		Reporter:   rep,
	})

	bag.Sort()
	return recipe.Metadata, bag
}

// frontmatter splits and parses the YAML header, if any. Returns the byte
// offset where the recipe body starts.
func (p *Parser) frontmatter(file *source.File, rep diag.Reporter) (*metadata.Metadata, uint32) {
	split, ok := metadata.SplitFrontmatter(string(file.Content))
	if !ok {
		return nil, 0
	}
	sp := source.Span{
		File:  file.ID,
		Start: split.YAMLOffset,
		End:   split.YAMLOffset + uint32(len(split.YAML)),
	}
	meta := metadata.ParseYAML(split.YAML, sp, rep)
	return meta, split.BodyOffset
}

// RecipeName derives the recipe name from a file path: the base name
// without the .cook extension.
func RecipeName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." {
		return path
	}
	return name
}
