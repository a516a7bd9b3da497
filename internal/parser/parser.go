// Package parser builds a cooklang ast from tokens.
//
// The parser never fails: any input produces an ast plus diagnostics.
// Malformed constructs degrade to plain step text with an error or warning
// attached, so the caller always has something to show.
package parser

import (
	"cooklang/internal/ast"
	"cooklang/internal/diag"
	"cooklang/internal/lexer"
	"cooklang/internal/source"
	"cooklang/internal/token"
)

// Options configures a parse.
type Options struct {
	Extensions Extensions
	// Reporter receives diagnostics. Nil drops them.
	Reporter diag.Reporter
	// BodyOffset is the byte offset where the recipe body starts, used to
	// skip a YAML frontmatter block.
	BodyOffset uint32
}

func (o *Options) reporter() diag.Reporter {
	if o.Reporter == nil {
		return diag.NopReporter{}
	}
	return o.Reporter
}

// ParseFile parses the whole recipe body of file.
func ParseFile(file *source.File, opts Options) *ast.Ast {
	p := newParser(file, opts)
	out := &ast.Ast{}
	for {
		blk, ok := p.nextBlockTokens()
		if !ok {
			break
		}
		if b := p.parseBlock(blk); b != nil {
			out.Blocks = append(out.Blocks, b)
		}
	}
	return out
}

// ParseMetadata parses only the `>>` metadata entries of file, skipping
// everything else without building steps. Used for fast recipe indexing.
func ParseMetadata(file *source.File, opts Options) *ast.Ast {
	p := newParser(file, opts)
	out := &ast.Ast{}
	for {
		blk, ok := p.nextBlockTokens()
		if !ok {
			break
		}
		if first := firstMeaningful(blk); first == nil || first.Kind != token.MetaStart {
			continue
		}
		if b := p.parseBlock(blk); b != nil {
			if _, isMeta := b.(*ast.Metadata); isMeta {
				out.Blocks = append(out.Blocks, b)
			}
		}
	}
	return out
}

type parser struct {
	file *source.File
	toks []token.Token
	pos  int
	opts Options
}

func newParser(file *source.File, opts Options) *parser {
	var lx *lexer.Lexer
	if opts.BodyOffset > 0 {
		lx = lexer.NewAt(file, opts.BodyOffset)
	} else {
		lx = lexer.New(file)
	}
	return &parser{file: file, toks: lx.All(), opts: opts}
}

// nextBlockTokens returns the token run of the next non-empty block. With
// MultilineSteps, consecutive non-blank lines group into one block unless a
// line starts a single-line construct (metadata or section).
func (p *parser) nextBlockTokens() ([]token.Token, bool) {
	multiline := p.opts.Extensions.Contains(MultilineSteps)

	for p.pos < len(p.toks) {
		start := p.pos
		line := p.nextLine()
		if lineIsBlank(line) {
			continue
		}

		if multiline && !startsSingleLine(line) {
			for p.pos < len(p.toks) {
				save := p.pos
				next := p.nextLine()
				if lineIsBlank(next) || startsSingleLine(next) {
					p.pos = save
					break
				}
			}
		}

		return trimBlankTail(p.toks[start:p.pos]), true
	}
	return nil, false
}

// nextLine consumes tokens up to and including the next newline.
func (p *parser) nextLine() []token.Token {
	start := p.pos
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		p.pos++
		if t.Kind == token.Newline {
			break
		}
	}
	return p.toks[start:p.pos]
}

func lineIsBlank(line []token.Token) bool {
	for _, t := range line {
		if !t.Kind.IsBlank() {
			return false
		}
	}
	return true
}

// startsSingleLine reports whether the line opens a construct that never
// spans lines: a metadata entry or a section header.
func startsSingleLine(line []token.Token) bool {
	t := firstMeaningful(line)
	if t == nil {
		return false
	}
	return t.Kind == token.MetaStart || t.Kind == token.Eq
}

func firstMeaningful(line []token.Token) *token.Token {
	for i := range line {
		if !line[i].Kind.IsBlank() {
			return &line[i]
		}
	}
	return nil
}

func trimBlankTail(block []token.Token) []token.Token {
	for len(block) > 0 && block[len(block)-1].Kind.IsBlank() {
		block = block[:len(block)-1]
	}
	return block
}

// parseBlock dispatches on the first meaningful token. Returns nil when the
// block parses to nothing, which only happens for empty text steps.
func (p *parser) parseBlock(toks []token.Token) ast.Block {
	bp := newBlockParser(p.file, toks, p.opts.Extensions)
	defer bp.flush(p.opts.reporter())

	bp.wsComments()
	var b ast.Block
	switch bp.peek() {
	case token.MetaStart:
		b = p.metadataBlock(bp)
	case token.Eq:
		b = p.sectionBlock(bp)
	case token.TextStep:
		b = p.textBlock(bp)
	default:
		b = p.stepBlock(bp, false)
	}
	return b
}
