package parser

import (
	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/token"
)

// parseParamList parses the shared def/lambda parameter grammar up to the
// stop token: positional-only section, '/', ordinary args, '*'/*args,
// keyword-only args, '**kwargs'. Ordering violations are reported but
// parsing continues so later parameters still land in the tree.
func (p *Parser) parseParamList(stop token.Kind, allowAnn bool) ast.Params {
	var ps ast.Params
	seenSlash := false
	seenStar := false
	seenDefault := false
	starSpan := p.getDiagnosticSpan()

	for !p.atOr(stop, token.Newline, token.EOF) {
		switch {
		case p.at(token.Slash):
			tok := p.advance()
			switch {
			case seenSlash:
				p.errAt(diag.SynParamOrder, tok.Span, "'/' may appear only once in a parameter list")
			case seenStar:
				p.errAt(diag.SynParamOrder, tok.Span, "'/' must be ahead of '*'")
			case len(ps.Args) == 0:
				p.errAt(diag.SynParamOrder, tok.Span, "At least one parameter must precede '/'")
			default:
				ps.PosOnly = ps.Args
				ps.Args = nil
				seenSlash = true
			}

		case p.at(token.Star):
			tok := p.advance()
			if seenStar {
				p.errAt(diag.SynParamOrder, tok.Span, "'*' may appear only once in a parameter list")
			}
			seenStar = true
			starSpan = tok.Span
			if p.at(token.Ident) {
				id, hasDefault := p.parseOneParam(allowAnn)
				ps.VarArg = id
				if hasDefault {
					p.errAt(diag.SynParamOrder, p.arenas.Param(id).Span, "Variadic parameter cannot have a default value")
				}
			}

		case p.at(token.DoubleStar):
			tok := p.advance()
			if ps.KwArg.IsValid() {
				p.errAt(diag.SynParamOrder, tok.Span, "'**' may appear only once in a parameter list")
			}
			if !p.at(token.Ident) {
				p.err(diag.SynExpectedIdentifier, "Expected a parameter name after '**'")
				break
			}
			id, hasDefault := p.parseOneParam(allowAnn)
			ps.KwArg = id
			if hasDefault {
				p.errAt(diag.SynParamOrder, p.arenas.Param(id).Span, "Variadic parameter cannot have a default value")
			}

		case p.at(token.Ident):
			id, hasDefault := p.parseOneParam(allowAnn)
			if ps.KwArg.IsValid() {
				p.errAt(diag.SynParamOrder, p.arenas.Param(id).Span, "Parameter cannot follow '**' parameter")
			}
			switch {
			case hasDefault:
				seenDefault = true
			case seenDefault && !seenStar:
				p.errAt(diag.SynParamOrder, p.arenas.Param(id).Span,
					"Parameter without a default cannot follow a parameter with a default")
			}
			if seenStar {
				ps.KwOnly = append(ps.KwOnly, id)
			} else {
				ps.Args = append(ps.Args, id)
			}

		default:
			p.err(diag.SynExpectedIdentifier, "Expected a parameter name")
			return ps
		}

		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}

	if seenStar && !ps.VarArg.IsValid() && len(ps.KwOnly) == 0 {
		p.errAt(diag.SynParamOrder, starSpan, "Named parameters must follow bare '*'")
	}
	return ps
}

// parseOneParam parses `name [":" annotation] ["=" default]` and reports
// whether a default was present.
func (p *Parser) parseOneParam(allowAnn bool) (ast.ParamID, bool) {
	nameTok := p.advance()
	param := ast.Param{
		Name: p.arenas.Intern(nameTok.Text),
		Span: nameTok.Span,
	}

	if p.at(token.Colon) && allowAnn {
		p.advance()
		param.Annotation = p.parseTest()
	}

	hasDefault := false
	if p.at(token.Assign) {
		p.advance()
		param.Default = p.parseTest()
		hasDefault = true
	}
	return p.arenas.NewParam(param), hasDefault
}

func (p *Parser) parseLambdaParams() ast.Params {
	return p.parseParamList(token.Colon, false)
}

// parseTypeParams parses a PEP 695 `[T, *Ts, **P]` list; the caller sits
// at the opening bracket.
func (p *Parser) parseTypeParams() []ast.TypeParam {
	p.advance() // '['

	var out []ast.TypeParam
	for !p.atOr(token.RBracket, token.Newline, token.EOF) {
		tp := ast.TypeParam{Kind: ast.TypeParamPlain}
		switch p.peek().Kind {
		case token.Star:
			p.advance()
			tp.Kind = ast.TypeParamStar
		case token.DoubleStar:
			p.advance()
			tp.Kind = ast.TypeParamDoubleStar
		}

		name, nameSpan, ok := p.parseIdent()
		if !ok {
			p.resyncUntil(token.Comma, token.RBracket, token.Newline)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
			continue
		}
		tp.Name = name
		tp.Span = nameSpan

		if p.at(token.Colon) {
			p.advance()
			if tp.Kind != ast.TypeParamPlain {
				p.err(diag.SynParamOrder, "Only plain type parameters may have a bound")
			}
			tp.Bound = p.parseTest()
		}
		if p.at(token.Assign) {
			tok := p.advance()
			if !p.opts.Target.AtLeast(3, 13) {
				p.errAt(diag.SynVersionGated, tok.Span,
					"Type parameter defaults require Python 3.13 or newer")
			}
			tp.Default = p.parseTest()
		}
		out = append(out, tp)

		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}

	p.expect(token.RBracket, diag.SynUnclosedDelimiter, "Expected ']' to close type parameters")
	return out
}
