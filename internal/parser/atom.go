package parser

import (
	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/source"
	"krait/internal/token"
)

// parseAtom parses the leaves of the expression grammar: names, literals,
// and the three display forms.
func (p *Parser) parseAtom() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.arenas.Exprs.NewName(tok.Span, p.arenas.Intern(tok.Text), ast.CtxLoad)

	case token.Int:
		p.advance()
		return p.arenas.Exprs.NewNumber(tok.Span, ast.NumInt, p.arenas.Intern(tok.Text))
	case token.Float:
		p.advance()
		return p.arenas.Exprs.NewNumber(tok.Span, ast.NumFloat, p.arenas.Intern(tok.Text))
	case token.Complex:
		p.advance()
		return p.arenas.Exprs.NewNumber(tok.Span, ast.NumComplex, p.arenas.Intern(tok.Text))

	case token.String, token.FString:
		return p.parseStrings()

	case token.KwNone:
		p.advance()
		return p.arenas.Exprs.NewConst(tok.Span, ast.ConstNone)
	case token.KwTrue:
		p.advance()
		return p.arenas.Exprs.NewConst(tok.Span, ast.ConstTrue)
	case token.KwFalse:
		p.advance()
		return p.arenas.Exprs.NewConst(tok.Span, ast.ConstFalse)
	case token.Ellipsis:
		p.advance()
		return p.arenas.Exprs.NewConst(tok.Span, ast.ConstEllipsis)

	case token.LParen:
		return p.parseParenAtom()
	case token.LBracket:
		return p.parseListAtom()
	case token.LBrace:
		return p.parseBraceAtom()

	case token.KwYield:
		// Yield is not an ordinary operand; build the node, diagnose the
		// position, and keep going.
		expr := p.parseYieldExpr()
		p.errAt(diag.SynYieldExpression, p.spanOfExpr(expr), "Yield expression cannot be used here")
		return expr

	case token.Invalid:
		// The lexer already reported this token.
		p.advance()
		return p.arenas.Exprs.NewError(tok.Span)

	default:
		p.err(diag.SynExpectedExpression, "Expected an expression")
		return p.errorExpr()
	}
}

// parseElement parses one element of a parenthesized or bracketed
// display, where both walrus and star are in the grammar.
func (p *Parser) parseElement() ast.ExprID {
	if p.at(token.Star) {
		star := p.advance()
		value := p.parseBitOr()
		span := star.Span.Cover(p.spanOfExpr(value))
		return p.arenas.Exprs.NewStarred(span, value, ast.CtxLoad)
	}
	return p.parseNamedExpr()
}

// parseParenAtom parses `( ... )`: the empty tuple, a grouped expression,
// a tuple display, a generator expression, or a parenthesized yield.
func (p *Parser) parseParenAtom() ast.ExprID {
	open := p.advance() // '('

	if p.at(token.RParen) {
		closeTok := p.advance()
		return p.arenas.Exprs.NewTuple(open.Span.Cover(closeTok.Span), nil)
	}

	if p.at(token.KwYield) {
		inner := p.parseYieldExpr()
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "Expected ')'")
		return inner
	}

	first := p.parseElement()

	if p.atOr(token.KwFor, token.KwAsync) {
		comp := p.parseCompSuffix(ast.ExprGenerator, first, ast.NoExprID, open.Span)
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "Expected ')'")
		return comp
	}

	if p.at(token.Comma) {
		elems := []ast.ExprID{first}
		for p.at(token.Comma) {
			p.advance()
			if p.at(token.RParen) {
				break
			}
			elems = append(elems, p.parseElement())
		}
		closeTok, _ := p.expect(token.RParen, diag.SynUnclosedDelimiter, "Expected ')'")
		return p.arenas.Exprs.NewTuple(open.Span.Cover(closeTok.Span), elems)
	}

	p.expect(token.RParen, diag.SynUnclosedDelimiter, "Expected ')'")
	// Plain grouping; parentheses leave no node behind.
	return first
}

// parseListAtom parses `[ ... ]`: a list display or list comprehension.
func (p *Parser) parseListAtom() ast.ExprID {
	open := p.advance() // '['

	if p.at(token.RBracket) {
		closeTok := p.advance()
		return p.arenas.Exprs.NewList(open.Span.Cover(closeTok.Span), nil)
	}

	first := p.parseElement()

	if p.atOr(token.KwFor, token.KwAsync) {
		comp := p.parseCompSuffix(ast.ExprListComp, first, ast.NoExprID, open.Span)
		p.expect(token.RBracket, diag.SynUnclosedDelimiter, "Expected ']'")
		return comp
	}

	elems := []ast.ExprID{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RBracket) {
			break
		}
		elems = append(elems, p.parseElement())
	}
	closeTok, _ := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "Expected ']'")
	return p.arenas.Exprs.NewList(open.Span.Cover(closeTok.Span), elems)
}

// parseBraceAtom parses `{ ... }`: dict or set displays and their
// comprehension forms. `{}` is the empty dict.
func (p *Parser) parseBraceAtom() ast.ExprID {
	open := p.advance() // '{'

	if p.at(token.RBrace) {
		closeTok := p.advance()
		return p.arenas.Exprs.NewDict(open.Span.Cover(closeTok.Span), nil)
	}

	// `**value` can only begin a dict display.
	if p.at(token.DoubleStar) {
		p.advance()
		value := p.parseBitOr()
		return p.parseDictRest(open, ast.DictItem{Key: ast.NoExprID, Value: value})
	}

	first := p.parseElement()

	if p.at(token.Colon) {
		p.advance()
		if fe := p.arenas.Exprs.Get(first); fe != nil && fe.Kind == ast.ExprStarred {
			p.errAt(diag.SynStarredExpression, fe.Span, "Starred expression cannot be used here")
		}
		value := p.parseTest()

		if p.atOr(token.KwFor, token.KwAsync) {
			comp := p.parseCompSuffix(ast.ExprDictComp, first, value, open.Span)
			p.expect(token.RBrace, diag.SynUnclosedDelimiter, "Expected '}'")
			return comp
		}
		return p.parseDictRest(open, ast.DictItem{Key: first, Value: value})
	}

	if p.atOr(token.KwFor, token.KwAsync) {
		comp := p.parseCompSuffix(ast.ExprSetComp, first, ast.NoExprID, open.Span)
		p.expect(token.RBrace, diag.SynUnclosedDelimiter, "Expected '}'")
		return comp
	}

	// Set display.
	elems := []ast.ExprID{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RBrace) {
			break
		}
		elems = append(elems, p.parseElement())
	}
	closeTok, _ := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "Expected '}'")
	return p.arenas.Exprs.NewSet(open.Span.Cover(closeTok.Span), elems)
}

// parseDictRest finishes a dict display after its first item.
func (p *Parser) parseDictRest(open token.Token, first ast.DictItem) ast.ExprID {
	items := []ast.DictItem{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RBrace) {
			break
		}
		if p.at(token.DoubleStar) {
			p.advance()
			value := p.parseBitOr()
			items = append(items, ast.DictItem{Key: ast.NoExprID, Value: value})
			continue
		}
		key := p.parseTest()
		p.expect(token.Colon, diag.SynExpectedColon, "Expected ':' between dict key and value")
		value := p.parseTest()
		items = append(items, ast.DictItem{Key: key, Value: value})
	}
	closeTok, _ := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "Expected '}'")
	return p.arenas.Exprs.NewDict(open.Span.Cover(closeTok.Span), items)
}

// parseCompSuffix parses one or more `for ... in ... [if ...]*` clauses
// after the element of a comprehension.
func (p *Parser) parseCompSuffix(kind ast.ExprKind, elt, value ast.ExprID, startSpan source.Span) ast.ExprID {
	var clauses []ast.CompClause
	for {
		isAsync := false
		if p.at(token.KwAsync) && p.peekAt(1).Kind == token.KwFor {
			p.advance()
			isAsync = true
		}
		if !p.at(token.KwFor) {
			break
		}
		p.advance()
		target := p.parseTargetList(targetFor)
		p.expect(token.KwIn, diag.SynUnexpectedToken, "Expected 'in' in comprehension")
		iter := p.parseOrTest()

		var ifs []ast.ExprID
		for p.at(token.KwIf) {
			p.advance()
			ifs = append(ifs, p.parseOrTest())
		}
		clauses = append(clauses, ast.CompClause{
			Target:  target,
			Iter:    iter,
			Ifs:     ifs,
			IsAsync: isAsync,
		})
	}
	span := startSpan.Cover(p.lastSpan)
	return p.arenas.Exprs.NewComp(kind, span, elt, value, clauses)
}
