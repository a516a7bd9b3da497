package parser

import (
	"cooklang/internal/ast"
	"cooklang/internal/token"
)

// sectionBlock parses a `== name ==` divider. The trailing `=` run is
// optional and the name may be empty. Anything after a trailing `=` run
// makes the line a regular step instead.
func (p *parser) sectionBlock(bp *blockParser) ast.Block {
	sec, ok := recoverWith(bp, func() (*ast.Section, bool) {
		return p.sectionHeader(bp)
	})
	if ok {
		return sec
	}
	return p.stepBlock(bp, false)
}

func (p *parser) sectionHeader(bp *blockParser) (*ast.Section, bool) {
	isEq := func(k token.Kind) bool { return k == token.Eq }

	open := bp.consumeWhile(isEq)
	if len(open) == 0 {
		return nil, false
	}
	sp := bp.tokensSpan(open)

	nameToks := bp.consumeWhile(func(k token.Kind) bool { return k != token.Eq })
	close := bp.consumeWhile(isEq)
	bp.wsComments()
	if !bp.atEnd() {
		return nil, false
	}
	if len(close) > 0 {
		sp = sp.Cover(bp.tokensSpan(close))
	}

	name := bp.text(nameToks)
	name.TrimStart()
	name.TrimEnd()
	sp = sp.Cover(name.Span())

	sec := &ast.Section{Sp: sp}
	if !name.IsEmpty() {
		sec.Name = &name
	}
	return sec, true
}
