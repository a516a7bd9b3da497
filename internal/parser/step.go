package parser

import (
	"strconv"
	"unicode/utf8"

	"cooklang/internal/ast"
	"cooklang/internal/diag"
	"cooklang/internal/source"
	"cooklang/internal/token"
)

// stepBlock parses a step: a run of text items and components. A component
// marker that does not form a valid component stays in the text, usually
// with a diagnostic explaining what was expected.
func (p *parser) stepBlock(bp *blockParser, isText bool) ast.Block {
	step := &ast.Step{IsText: isText}

	text := ast.EmptyText(bp.currentSpan())
	flushText := func() {
		if len(text.Frags) > 0 {
			step.Items = append(step.Items, &ast.TextItem{Text: text})
		}
		text = ast.EmptyText(bp.currentSpan())
	}

	for !bp.atEnd() {
		t := bp.current()
		if t.Kind.IsComponentMarker() {
			item, ok := recoverWith(bp, func() (ast.Item, bool) {
				return p.component(bp)
			})
			if ok {
				flushText()
				step.Items = append(step.Items, item)
				continue
			}
			// the marker is plain text after all
			bp.bump()
			text.AppendLiteral(bp.slice(t), t.Span)
			continue
		}
		bp.bump()
		appendTextToken(bp, &text, t)
	}
	flushText()

	if len(step.Items) == 0 {
		return nil
	}
	return step
}

// textBlock parses a `>` paragraph. Each line may carry its own `>` marker,
// which is stripped together with one following space.
func (p *parser) textBlock(bp *blockParser) ast.Block {
	text := ast.EmptyText(bp.currentSpan())
	lineStart := true

	for !bp.atEnd() {
		t := bp.bump()
		if lineStart && t.Kind == token.TextStep {
			// drop the marker and at most one space after it
			if bp.peek() == token.Whitespace {
				ws := bp.current()
				raw := bp.slice(ws)
				if len(raw) > 0 {
					bp.bump()
					_, size := utf8.DecodeRuneInString(raw)
					if size < len(raw) {
						text.AppendLiteral(raw[size:], source.Span{
							File:  ws.Span.File,
							Start: ws.Span.Start + uint32(size),
							End:   ws.Span.End,
						})
					}
				}
			}
			lineStart = false
			continue
		}
		lineStart = t.Kind == token.Newline
		appendTextToken(bp, &text, t)
	}

	text.TrimStart()
	text.TrimEnd()
	if text.IsEmpty() {
		return nil
	}
	return &ast.Step{
		IsText: true,
		Items:  []ast.Item{&ast.TextItem{Text: text}},
	}
}

func appendTextToken(bp *blockParser, text *ast.Text, t token.Token) {
	switch t.Kind {
	case token.LineComment, token.BlockComment:
	case token.Newline:
		text.AppendSoftBreak(t.Span)
	case token.Escaped:
		raw := bp.slice(t)
		if len(raw) > 1 {
			text.AppendLiteral(raw[1:], t.Span)
		}
	default:
		text.AppendLiteral(bp.slice(t), t.Span)
	}
}

// compBody is the shared name/alias/quantity part of a component.
type compBody struct {
	name     ast.Text
	alias    *ast.Text
	quantity *ast.Quantity
	// close is the span of the `}`, or the end of the name in short form.
	close source.Span
}

// component parses one `@`, `#` or `~` component starting at the marker.
func (p *parser) component(bp *blockParser) (ast.Item, bool) {
	marker := bp.bump()

	mods, modsSpan, inter := p.modifiers(bp, marker)
	body, ok := p.componentBody(bp)
	if !ok {
		return nil, false
	}

	sp := marker.Span.Cover(body.close)

	switch marker.Kind {
	case token.At:
		return p.ingredient(bp, marker, mods, modsSpan, inter, body, sp)
	case token.Hash:
		return p.cookware(bp, marker, mods, modsSpan, body, sp)
	case token.Tilde:
		return p.timer(bp, marker, mods, modsSpan, body, sp)
	}
	return nil, false
}

func (p *parser) ingredient(
	bp *blockParser, marker token.Token,
	mods ast.Modifiers, modsSpan source.Span, inter *ast.IntermediateRef,
	body compBody, sp source.Span,
) (ast.Item, bool) {
	if body.name.IsEmpty() {
		bp.errorKeep(diag.ParseEmptyName, marker.Span.Cover(body.close),
			"ingredient is missing a name").
			WithHelp("write a name after '@', like '@salt'").
			Emit()
		return nil, false
	}

	note := p.note(bp)
	if note != nil {
		sp = sp.Cover(note.Span())
	}

	return &ast.Ingredient{
		Modifiers:     mods,
		ModifiersSpan: modsSpan,
		Intermediate:  inter,
		Name:          body.name,
		Alias:         body.alias,
		Quantity:      body.quantity,
		Note:          note,
		Sp:            sp,
	}, true
}

func (p *parser) cookware(
	bp *blockParser, marker token.Token,
	mods ast.Modifiers, modsSpan source.Span,
	body compBody, sp source.Span,
) (ast.Item, bool) {
	if body.name.IsEmpty() {
		bp.errorKeep(diag.ParseEmptyName, marker.Span.Cover(body.close),
			"cookware is missing a name").
			WithHelp("write a name after '#', like '#pan'").
			Emit()
		return nil, false
	}
	if mods.Contains(ast.ModRecipe) {
		bp.error(diag.ParseDuplicateModifier, modsSpan,
			"cookware cannot reference a recipe").
			WithHelp("the '@' modifier only applies to ingredients").
			Emit()
		mods &^= ast.ModRecipe
	}

	var qv *ast.QuantityValue
	if q := body.quantity; q != nil {
		if q.Unit != nil {
			bp.error(diag.ParseUnitNotAllowed, q.Unit.Span(),
				"cookware cannot have a unit").
				WithNote(q.Span, "quantity defined here").
				Emit()
		}
		if q.Value.AutoScale != nil {
			bp.error(diag.ParseScaleNotAllowed, *q.Value.AutoScale,
				"cookware cannot auto scale").
				Emit()
			q.Value.AutoScale = nil
		}
		qv = &q.Value
	}

	note := p.note(bp)
	if note != nil {
		sp = sp.Cover(note.Span())
	}

	return &ast.Cookware{
		Modifiers:     mods,
		ModifiersSpan: modsSpan,
		Name:          body.name,
		Alias:         body.alias,
		Quantity:      qv,
		Note:          note,
		Sp:            sp,
	}, true
}

func (p *parser) timer(
	bp *blockParser, marker token.Token,
	mods ast.Modifiers, modsSpan source.Span,
	body compBody, sp source.Span,
) (ast.Item, bool) {
	if mods != 0 {
		bp.error(diag.ParseDuplicateModifier, modsSpan,
			"timers cannot have modifiers").
			Emit()
	}

	var name *ast.Text
	if !body.name.IsEmpty() {
		n := body.name
		name = &n
	}
	q := body.quantity

	if q != nil {
		if q.Value.AutoScale != nil {
			bp.error(diag.ParseScaleNotAllowed, *q.Value.AutoScale,
				"timers cannot auto scale").
				Emit()
			q.Value.AutoScale = nil
		}
		if q.Unit == nil {
			bp.error(diag.ParseTimerInvalid, q.Span,
				"timer is missing a time unit").
				WithHelp("write the unit after '%', like '~{5%minutes}'").
				Emit()
		}
	} else if p.opts.Extensions.Contains(TimerRequiresTime) {
		bp.errorKeep(diag.ParseTimerMissingTime, marker.Span.Cover(body.close),
			"timer is missing a time").
			WithHelp("write the time in braces, like '~rest{10%minutes}'").
			Emit()
		return nil, false
	}

	if name == nil && q == nil {
		bp.errorKeep(diag.ParseTimerInvalid, marker.Span.Cover(body.close),
			"timer needs a name or a time").
			Emit()
		return nil, false
	}

	p.checkIgnoredNote(bp, "timer")

	return &ast.Timer{Name: name, Quantity: q, Sp: sp}, true
}

// modifiers parses the flag characters after an `@` or `#` marker. Timers
// take no modifiers but the flags still lex as their own tokens, so the
// caller reports them. Returns the parsed intermediate reference, if any.
func (p *parser) modifiers(bp *blockParser, marker token.Token) (ast.Modifiers, source.Span, *ast.IntermediateRef) {
	modsSpan := source.Pos(marker.Span.File, marker.Span.End)
	if !p.opts.Extensions.Contains(ComponentModifiers) {
		return 0, modsSpan, nil
	}

	var mods ast.Modifiers
	var inter *ast.IntermediateRef
	repeated := false
	for {
		var m ast.Modifiers
		switch bp.peek() {
		case token.At:
			m = ast.ModRecipe
		case token.Amp:
			m = ast.ModRef
		case token.Minus:
			m = ast.ModHidden
		case token.Question:
			m = ast.ModOpt
		case token.Plus:
			m = ast.ModNew
		default:
			inter = p.intermediateGroup(bp, mods, inter)
			return mods, modsSpan, inter
		}
		if mods.Contains(m) {
			// the first repeated flag is an error, a longer run means this
			// is not a modifier sequence at all, so the scan stays bounded
			if repeated {
				return mods, modsSpan, inter
			}
			repeated = true
			t := bp.bump()
			modsSpan = modsSpan.Cover(t.Span)
			bp.error(diag.ParseDuplicateModifier, t.Span,
				"duplicate modifier '"+bp.slice(t)+"'").
				Emit()
			continue
		}
		t := bp.bump()
		if mods == 0 {
			modsSpan = t.Span
		} else {
			modsSpan = modsSpan.Cover(t.Span)
		}
		mods |= m

		if m == ast.ModRef {
			inter = p.intermediateGroup(bp, mods, inter)
		}
	}
}

// intermediateGroup tries the `(...)` payload of an `&` modifier. It is
// attempted right after the `&` and again after the whole modifier run, so
// the group parses no matter where `&` sits among the flags.
func (p *parser) intermediateGroup(bp *blockParser, mods ast.Modifiers, inter *ast.IntermediateRef) *ast.IntermediateRef {
	if inter != nil || !mods.Contains(ast.ModRef) ||
		!p.opts.Extensions.Contains(IntermediatePreparations) ||
		bp.peek() != token.LParen {
		return inter
	}
	if ref, ok := recoverWith(bp, func() (*ast.IntermediateRef, bool) {
		return p.intermediateRef(bp)
	}); ok {
		return ref
	}
	return inter
}

// intermediateRef parses the `(...)` payload of an `&` modifier:
// `(1)` step index, `(~1)` steps back, `(=1)` section index, `(=~1)`
// sections back. Malformed content inside the parens is an error but still
// consumes the group, so the rest of the component parses normally.
func (p *parser) intermediateRef(bp *blockParser) (*ast.IntermediateRef, bool) {
	open, _ := bp.consume(token.LParen)
	inner, found := bp.until(func(k token.Kind) bool { return k == token.RParen })
	if !found {
		return nil, false
	}
	close, _ := bp.consume(token.RParen)
	sp := open.Span.Cover(close.Span)

	ref := &ast.IntermediateRef{Span: sp}
	ib := newBlockParser(bp.file, inner, p.opts.Extensions)
	defer func() { bp.pending = append(bp.pending, ib.pending...) }()

	ib.wsComments()
	if _, ok := ib.consume(token.Eq); ok {
		ref.Target = ast.RefTargetSection
	}
	if _, ok := ib.consume(token.Tilde); ok {
		ref.Mode = ast.RefModeRelative
	}
	numTok, ok := ib.consume(token.Int)
	if !ok {
		ib.error(diag.ParseBadIntermediate, sp,
			"invalid intermediate preparation reference").
			WithHelp("write a step number like '(1)' or a relative one like '(~1)'").
			Emit()
		return nil, true
	}
	ib.wsComments()
	if !ib.atEnd() {
		ib.error(diag.ParseBadIntermediate, sp,
			"invalid intermediate preparation reference").
			WithNote(ib.currentSpan(), "unexpected content").
			Emit()
		return nil, true
	}

	v, err := strconv.ParseInt(ib.slice(numTok), 10, 16)
	if err != nil {
		ib.error(diag.ParseBadIntermediate, numTok.Span,
			"reference number is too large").
			Emit()
		return nil, true
	}
	ref.Val = int16(v)
	return ref, true
}

// componentBody parses the name, optional alias and optional braced
// quantity. The long form needs a `{`; without one the component falls back
// to a short single-word name.
func (p *parser) componentBody(bp *blockParser) (compBody, bool) {
	if body, ok := recoverWith(bp, func() (compBody, bool) {
		return p.longComponentBody(bp)
	}); ok {
		return body, true
	}
	return p.shortComponentBody(bp)
}

func (p *parser) longComponentBody(bp *blockParser) (compBody, bool) {
	nameToks, found := bp.until(func(k token.Kind) bool {
		return k == token.LBrace || k.IsComponentMarker() || k == token.Newline
	})
	if !found || bp.peek() != token.LBrace {
		return compBody{}, false
	}

	var body compBody
	body.name, body.alias = p.splitAlias(bp, nameToks)

	bp.consume(token.LBrace)
	inner, found := bp.until(func(k token.Kind) bool { return k == token.RBrace })
	if !found {
		return compBody{}, false
	}
	close, _ := bp.consume(token.RBrace)
	body.close = close.Span
	body.quantity = p.quantity(bp, inner)

	body.name.TrimStart()
	body.name.TrimEnd()
	return body, true
}

func (p *parser) shortComponentBody(bp *blockParser) (compBody, bool) {
	nameToks := bp.consumeWhile(func(k token.Kind) bool {
		switch k {
		case token.Word, token.Int, token.Float:
			return true
		default:
			return false
		}
	})
	if len(nameToks) == 0 {
		return compBody{}, false
	}
	name := bp.text(nameToks)
	return compBody{name: name, close: name.Span()}, true
}

// splitAlias separates `name|alias` inside a long-form name.
func (p *parser) splitAlias(bp *blockParser, nameToks []token.Token) (ast.Text, *ast.Text) {
	pipe := -1
	if p.opts.Extensions.Contains(ComponentAlias) {
		for i, t := range nameToks {
			if t.Kind == token.Pipe {
				pipe = i
				break
			}
		}
	}
	if pipe < 0 {
		return bp.text(nameToks), nil
	}

	name := bp.text(nameToks[:pipe])
	alias := bp.text(nameToks[pipe+1:])
	alias.TrimStart()
	alias.TrimEnd()
	if alias.IsEmpty() {
		bp.error(diag.ParseEmptyName, nameToks[pipe].Span,
			"component alias is empty").
			WithHelp("remove the '|' or write the alias after it").
			Emit()
		return name, nil
	}
	for _, t := range nameToks[pipe+1:] {
		if t.Kind == token.Pipe {
			bp.error(diag.ParseEmptyName, t.Span,
				"component can only have one alias").
				Emit()
			break
		}
	}
	return name, &alias
}

// note parses a trailing `(...)` note when the extension is enabled.
func (p *parser) note(bp *blockParser) *ast.Text {
	if !p.opts.Extensions.Contains(ComponentNote) || bp.peek() != token.LParen {
		return nil
	}
	note, ok := recoverWith(bp, func() (ast.Text, bool) {
		return p.parenNote(bp)
	})
	if !ok {
		return nil
	}
	return &note
}

func (p *parser) parenNote(bp *blockParser) (ast.Text, bool) {
	open, _ := bp.consume(token.LParen)
	inner, found := bp.until(func(k token.Kind) bool { return k == token.RParen })
	if !found {
		return ast.Text{}, false
	}
	close, _ := bp.consume(token.RParen)

	note := bp.text(inner)
	if len(note.Frags) == 0 {
		note = ast.EmptyText(open.Span.Cover(close.Span))
	}
	return note, true
}

// checkIgnoredNote warns when a note follows a component kind that does not
// take one. The note text stays in the step as plain text.
func (p *parser) checkIgnoredNote(bp *blockParser, what string) {
	if !p.opts.Extensions.Contains(ComponentNote) || bp.peek() != token.LParen {
		return
	}
	cp := bp.mark()
	note, ok := p.parenNote(bp)
	bp.restore(cp)
	if ok {
		bp.warn(diag.ParseNoteIgnored, note.Span(),
			"notes cannot be attached to a "+what).
			WithHelp("the text is kept as part of the step").
			Emit()
	}
}

