package parser

import (
	"strconv"

	"cooklang/internal/ast"
	"cooklang/internal/diag"
	"cooklang/internal/source"
	"cooklang/internal/token"
)

// quantity parses the tokens between `{` and `}`. Returns nil when the
// braces are empty. Numbers parse into fraction-preserving values, anything
// non-numeric stays a text value, so this never fails.
func (p *parser) quantity(bp *blockParser, inner []token.Token) *ast.Quantity {
	if allBlank(inner) {
		return nil
	}

	qb := newBlockParser(bp.file, inner, p.opts.Extensions)
	defer func() { bp.pending = append(bp.pending, qb.pending...) }()

	q := &ast.Quantity{Span: qb.tokensSpan(inner)}

	// an explicit `%` always splits value and unit
	if valueToks, found := qb.until(func(k token.Kind) bool { return k == token.Percent }); found {
		sep, _ := qb.consume(token.Percent)
		q.UnitSeparator = &sep.Span
		q.Value = p.quantityValue(qb, valueToks)

		unit := qb.text(qb.rest())
		unit.TrimStart()
		unit.TrimEnd()
		if unit.IsEmpty() {
			qb.error(diag.ParseEmptyUnit, sep.Span,
				"unit is empty").
				WithHelp("remove the '%' or write a unit after it").
				Emit()
		} else {
			q.Unit = &unit
		}
		return q
	}

	// advanced units: `{10 kg}` splits a leading numeric value from a
	// trailing unit without a separator
	if p.opts.Extensions.Contains(AdvancedUnits) {
		if split, ok := recoverWith(qb, func() (*ast.Quantity, bool) {
			return p.advancedUnits(qb, q.Span)
		}); ok {
			return split
		}
	}

	q.Value = p.quantityValue(qb, qb.rest())
	return q
}

// advancedUnits tries `number unit` without a `%`. The value must be fully
// numeric, separated from the unit by whitespace, and the unit non-empty.
// Otherwise everything between the braces is one value.
func (p *parser) advancedUnits(qb *blockParser, span source.Span) (*ast.Quantity, bool) {
	qb.wsComments()
	numToks := qb.consumeWhile(func(k token.Kind) bool {
		switch k {
		case token.Int, token.Float, token.Slash, token.Whitespace, token.Minus, token.Star:
			return true
		default:
			return false
		}
	})
	if qb.atEnd() || len(numToks) == 0 ||
		numToks[len(numToks)-1].Kind != token.Whitespace {
		return nil, false
	}
	numToks = trimBlankTail(numToks)

	var autoScale *source.Span
	if len(numToks) > 0 && numToks[len(numToks)-1].Kind == token.Star {
		sp := numToks[len(numToks)-1].Span
		autoScale = &sp
		numToks = trimBlankTail(numToks[:len(numToks)-1])
	}

	nb := newBlockParser(qb.file, numToks, p.opts.Extensions)
	val, ok := p.numericValue(nb, numToks)
	if !ok {
		return nil, false
	}
	qb.pending = append(qb.pending, nb.pending...)

	unitToks := qb.rest()
	for _, t := range unitToks {
		if t.Kind == token.Pipe {
			return nil, false
		}
	}
	unit := qb.text(unitToks)
	unit.TrimStart()
	unit.TrimEnd()
	if unit.IsEmpty() {
		return nil, false
	}

	return &ast.Quantity{
		Value: ast.QuantityValue{Values: []ast.Value{val}, AutoScale: autoScale},
		Unit:  &unit,
		Span:  span,
	}, true
}

// quantityValue parses one or more `|` separated values with an optional
// trailing `*` auto scale marker.
func (p *parser) quantityValue(bp *blockParser, toks []token.Token) ast.QuantityValue {
	vb := newBlockParser(bp.file, toks, p.opts.Extensions)
	defer func() { bp.pending = append(bp.pending, vb.pending...) }()

	var qv ast.QuantityValue
	for {
		part, found := vb.until(func(k token.Kind) bool { return k == token.Pipe })
		if !found {
			part = vb.rest()
		}
		qv.Values = append(qv.Values, p.oneValue(vb, part, &qv))
		if !found {
			break
		}
		vb.consume(token.Pipe)
	}

	if qv.AutoScale != nil && len(qv.Values) > 1 {
		vb.error(diag.ParseScalingConflict, *qv.AutoScale,
			"auto scaling cannot be combined with scaling steps").
			WithHelp("use either '*' or '|' separated values, not both").
			Emit()
		qv.AutoScale = nil
	}
	return qv
}

// oneValue parses a single value's tokens. A trailing `*` marks auto
// scaling. Non-numeric content becomes a text value.
func (p *parser) oneValue(bp *blockParser, toks []token.Token, qv *ast.QuantityValue) ast.Value {
	toks = trimBlank(toks)

	star := -1
	if len(toks) > 0 && toks[len(toks)-1].Kind == token.Star {
		star = len(toks) - 1
	}
	numToks := toks
	if star >= 0 {
		numToks = trimBlankTail(toks[:star])
	}

	vb := newBlockParser(bp.file, numToks, p.opts.Extensions)
	val, numeric := p.numericValue(vb, numToks)
	bp.pending = append(bp.pending, vb.pending...)

	if star >= 0 {
		starSpan := toks[star].Span
		if numeric {
			qv.AutoScale = &starSpan
		} else {
			bp.error(diag.ParseScaleNotAllowed, starSpan,
				"only numeric values can auto scale").
				Emit()
		}
	}
	if numeric {
		return val
	}

	text := bp.text(toks)
	text.TrimStart()
	text.TrimEnd()
	if text.IsEmpty() {
		bp.error(diag.ParseEmptyQuantityVal, bp.tokensSpan(toks),
			"quantity value is empty").
			Emit()
		return ast.RecoverValue(bp.tokensSpan(toks))
	}
	return ast.TextValue(text.Trimmed(), text.Span())
}

// numericValue matches the numeric value grammar over the whole token run:
// `3`, `1.5`, `1/2`, `2 1/2` and, with ranges enabled, `2-3`. Anything else
// is not numeric. Errors like division by zero still count as numeric and
// yield a recovery value.
func (p *parser) numericValue(vb *blockParser, toks []token.Token) (ast.Value, bool) {
	if len(toks) == 0 {
		return ast.Value{}, false
	}
	sp := vb.tokensSpan(toks)

	start, ok := p.number(vb)
	if !ok {
		return ast.Value{}, false
	}
	vb.wsComments()

	if vb.atEnd() {
		return ast.NumberValue(start, sp), true
	}

	if p.opts.Extensions.Contains(RangeValues) && vb.peek() == token.Minus {
		vb.consume(token.Minus)
		vb.wsComments()
		end, ok := p.number(vb)
		if !ok {
			return ast.Value{}, false
		}
		vb.wsComments()
		if !vb.atEnd() {
			return ast.Value{}, false
		}
		return ast.RangeValue(start, end, sp), true
	}

	return ast.Value{}, false
}

// number parses one number at the current position: an integer, a float, a
// fraction or a mixed number.
func (p *parser) number(vb *blockParser) (ast.Number, bool) {
	first := vb.current()
	switch first.Kind {
	case token.Float:
		vb.bump()
		return ast.Regular(p.parseFloat(vb, first)), true
	case token.Int:
	default:
		return ast.Number{}, false
	}
	vb.bump()
	whole := p.parseFloat(vb, first)

	cp := vb.mark()
	vb.wsComments()

	// `1/2` or `2 1/2`
	num, den := first, first
	haveWhole := false
	if n, ok := vb.consume(token.Int); ok {
		// mixed number: the fraction follows the whole part
		vb.wsComments()
		if _, ok := vb.consume(token.Slash); !ok {
			vb.restore(cp)
			return ast.Regular(whole), true
		}
		vb.wsComments()
		d, ok := vb.consume(token.Int)
		if !ok {
			vb.restore(cp)
			return ast.Regular(whole), true
		}
		num, den = n, d
		haveWhole = true
	} else if _, ok := vb.consume(token.Slash); ok {
		vb.wsComments()
		d, ok := vb.consume(token.Int)
		if !ok {
			vb.restore(cp)
			return ast.Regular(whole), true
		}
		num, den = first, d
	} else {
		vb.restore(cp)
		return ast.Regular(whole), true
	}

	numV := p.parseFloat(vb, num)
	denV := p.parseFloat(vb, den)
	if denV == 0 {
		vb.error(diag.ParseDivisionByZero, den.Span,
			"division by zero").
			WithHelp("the fraction denominator cannot be zero").
			Emit()
		return ast.Regular(1), true
	}
	if haveWhole {
		return ast.Fraction(whole, numV, denV), true
	}
	return ast.Fraction(0, numV, denV), true
}

func (p *parser) parseFloat(vb *blockParser, t token.Token) float64 {
	v, err := strconv.ParseFloat(vb.slice(t), 64)
	if err != nil {
		vb.error(diag.ParseBadNumber, t.Span,
			"number is out of range").
			Emit()
		return 1
	}
	return v
}

func allBlank(toks []token.Token) bool {
	for _, t := range toks {
		if !t.Kind.IsBlank() {
			return false
		}
	}
	return true
}

func trimBlank(toks []token.Token) []token.Token {
	for len(toks) > 0 && toks[0].Kind.IsBlank() {
		toks = toks[1:]
	}
	return trimBlankTail(toks)
}
