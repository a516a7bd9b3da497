package parser

import (
	"cooklang/internal/ast"
	"cooklang/internal/diag"
	"cooklang/internal/source"
	"cooklang/internal/token"
)

// blockParser walks the tokens of one block. Diagnostics are buffered so a
// failed speculative parse can be rolled back together with everything it
// reported.
type blockParser struct {
	file    *source.File
	toks    []token.Token
	pos     int
	ext     Extensions
	pending []diag.Diagnostic
	// sticky diagnostics survive speculative rollback.
	sticky []diag.Diagnostic
}

func newBlockParser(file *source.File, toks []token.Token, ext Extensions) *blockParser {
	return &blockParser{file: file, toks: toks, ext: ext}
}

// Report implements diag.Reporter so ReportBuilder can emit into the buffer.
func (bp *blockParser) Report(d diag.Diagnostic) {
	bp.pending = append(bp.pending, d)
}

// flush hands the buffered diagnostics to the real reporter.
func (bp *blockParser) flush(r diag.Reporter) {
	for _, d := range bp.sticky {
		r.Report(d)
	}
	for _, d := range bp.pending {
		r.Report(d)
	}
	bp.sticky = bp.sticky[:0]
	bp.pending = bp.pending[:0]
}

// stickyReporter routes a diagnostic past the rollback buffer.
type stickyReporter struct{ bp *blockParser }

func (r stickyReporter) Report(d diag.Diagnostic) {
	r.bp.sticky = append(r.bp.sticky, d)
}

func (bp *blockParser) atEnd() bool { return bp.pos >= len(bp.toks) }

// peek returns the kind of the current token, EOF at the end of the block.
func (bp *blockParser) peek() token.Kind {
	if bp.atEnd() {
		return token.EOF
	}
	return bp.toks[bp.pos].Kind
}

func (bp *blockParser) current() token.Token {
	if bp.atEnd() {
		return token.Token{Kind: token.EOF, Span: bp.endSpan()}
	}
	return bp.toks[bp.pos]
}

func (bp *blockParser) bump() token.Token {
	t := bp.current()
	if !bp.atEnd() {
		bp.pos++
	}
	return t
}

// consume advances past a token of the given kind, or fails without moving.
func (bp *blockParser) consume(k token.Kind) (token.Token, bool) {
	if bp.peek() != k {
		return token.Token{}, false
	}
	return bp.bump(), true
}

// consumeWhile collects consecutive tokens matching pred.
func (bp *blockParser) consumeWhile(pred func(token.Kind) bool) []token.Token {
	start := bp.pos
	for !bp.atEnd() && pred(bp.toks[bp.pos].Kind) {
		bp.pos++
	}
	return bp.toks[start:bp.pos]
}

// wsComments skips whitespace and comments, but not newlines.
func (bp *blockParser) wsComments() []token.Token {
	return bp.consumeWhile(func(k token.Kind) bool {
		return k == token.Whitespace || k == token.LineComment || k == token.BlockComment
	})
}

// until collects tokens up to the first one matching pred, leaving the
// position on the match. Reports not found when the block ends first.
func (bp *blockParser) until(pred func(token.Kind) bool) ([]token.Token, bool) {
	start := bp.pos
	for !bp.atEnd() {
		if pred(bp.toks[bp.pos].Kind) {
			return bp.toks[start:bp.pos], true
		}
		bp.pos++
	}
	bp.pos = start
	return nil, false
}

// rest consumes everything left in the block.
func (bp *blockParser) rest() []token.Token {
	out := bp.toks[bp.pos:]
	bp.pos = len(bp.toks)
	return out
}

// endSpan is the empty span just past the last token.
func (bp *blockParser) endSpan() source.Span {
	if len(bp.toks) == 0 {
		return source.Span{File: bp.file.ID}
	}
	last := bp.toks[len(bp.toks)-1].Span
	return source.Pos(last.File, last.End)
}

// currentSpan anchors diagnostics at the current position.
func (bp *blockParser) currentSpan() source.Span {
	if bp.atEnd() {
		return bp.endSpan()
	}
	return bp.toks[bp.pos].Span
}

// slice returns the source text of a token.
func (bp *blockParser) slice(t token.Token) string {
	return bp.file.Slice(t.Span)
}

// tokensSpan covers a token run, or anchors at the current position when
// the run is empty.
func (bp *blockParser) tokensSpan(toks []token.Token) source.Span {
	if len(toks) == 0 {
		return bp.currentSpan()
	}
	sp := toks[0].Span
	for _, t := range toks[1:] {
		sp = sp.Cover(t.Span)
	}
	return sp
}

// text assembles an ast.Text from a token run: comments vanish, newlines
// become soft breaks and escaped characters lose their backslash.
func (bp *blockParser) text(toks []token.Token) ast.Text {
	t := ast.EmptyText(bp.tokensSpan(toks))
	for _, tk := range toks {
		switch tk.Kind {
		case token.LineComment, token.BlockComment:
			// comments never reach the output
		case token.Newline:
			t.AppendSoftBreak(tk.Span)
		case token.Escaped:
			raw := bp.slice(tk)
			if len(raw) > 1 {
				t.AppendLiteral(raw[1:], tk.Span)
			}
		default:
			t.AppendLiteral(bp.slice(tk), tk.Span)
		}
	}
	return t
}

// checkpoint captures the parser state for speculative parsing.
type checkpoint struct {
	pos     int
	pending int
}

func (bp *blockParser) mark() checkpoint {
	return checkpoint{pos: bp.pos, pending: len(bp.pending)}
}

func (bp *blockParser) restore(cp checkpoint) {
	bp.pos = cp.pos
	bp.pending = bp.pending[:cp.pending]
}

// recoverWith runs a speculative parse. On failure the position and any
// diagnostics reported during the attempt are rolled back.
func recoverWith[T any](bp *blockParser, f func() (T, bool)) (T, bool) {
	cp := bp.mark()
	v, ok := f()
	if !ok {
		bp.restore(cp)
	}
	return v, ok
}

func (bp *blockParser) error(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportError(bp, code, sp, msg)
}

func (bp *blockParser) warn(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportWarning(bp, code, sp, msg)
}

// errorKeep reports an error that stays even if the surrounding speculative
// parse is rolled back.
func (bp *blockParser) errorKeep(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportError(stickyReporter{bp}, code, sp, msg)
}

// warnKeep is errorKeep at warning severity.
func (bp *blockParser) warnKeep(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportWarning(stickyReporter{bp}, code, sp, msg)
}
