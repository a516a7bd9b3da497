package parser

import (
	"cooklang/internal/ast"
	"cooklang/internal/diag"
	"cooklang/internal/token"
)

// metadataBlock parses a `>> key: value` line. A malformed entry degrades
// to a regular step with a warning, the line is never lost.
func (p *parser) metadataBlock(bp *blockParser) ast.Block {
	m, ok := recoverWith(bp, func() (*ast.Metadata, bool) {
		return p.metadataEntry(bp)
	})
	if ok {
		return m
	}
	return p.stepBlock(bp, false)
}

func (p *parser) metadataEntry(bp *blockParser) (*ast.Metadata, bool) {
	marker, _ := bp.consume(token.MetaStart)

	keyToks, found := bp.until(func(k token.Kind) bool { return k == token.Colon })
	if !found {
		bp.warnKeep(diag.ParseEmptyMetadataKey, marker.Span,
			"metadata entry is missing ':'").
			WithHelp("the line is kept as a step").
			Emit()
		return nil, false
	}
	key := bp.text(keyToks)
	key.TrimStart()
	key.TrimEnd()
	if key.IsEmpty() {
		bp.warnKeep(diag.ParseEmptyMetadataKey, key.Span(),
			"metadata key is empty").
			WithHelp("the line is kept as a step").
			Emit()
		return nil, false
	}

	bp.consume(token.Colon)
	value := bp.text(bp.rest())
	value.TrimStart()
	value.TrimEnd()
	if value.IsEmpty() {
		bp.warn(diag.ParseEmptyMetadataVal, value.Span(),
			"metadata value is empty").
			WithNote(key.Span(), "key defined here").
			Emit()
	}

	return &ast.Metadata{Key: key, Value: value}, true
}
