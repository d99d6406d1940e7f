package parser

import (
	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/source"
	"krait/internal/token"
)

// parseCompound parses a compound statement; the caller already checked
// that the current token begins one.
func (p *Parser) parseCompound() (ast.StmtID, bool) {
	switch p.peek().Kind {
	case token.KwIf:
		return p.parseIfStmt(false), true
	case token.KwWhile:
		return p.parseWhileStmt(), true
	case token.KwFor:
		kw := p.peek()
		return p.parseForStmt(kw.Span, false), true
	case token.KwTry:
		return p.parseTryStmt(), true
	case token.KwWith:
		kw := p.peek()
		return p.parseWithStmt(kw.Span, false), true
	case token.KwDef:
		kw := p.peek()
		return p.parseFuncDef(nil, kw.Span, false), true
	case token.KwClass:
		kw := p.peek()
		return p.parseClassDef(nil, kw.Span), true
	case token.At:
		return p.parseDecorated()
	case token.KwAsync:
		return p.parseAsyncStmt()
	default:
		return ast.NoStmtID, false
	}
}

// parseBlock parses the suite after a compound statement header: a colon,
// then either an indented block or simple statements on the same line.
func (p *Parser) parseBlock(what string) []ast.StmtID {
	p.expectColon(what)

	if !p.at(token.Newline) {
		// Same-line suite: `if x: pass` or `if x: a; b`.
		return p.parseSimpleStmtLine()
	}
	p.advance()

	if !p.at(token.Indent) {
		p.err(diag.SynExpectedIndent, "Expected an indented block")
		return nil
	}
	p.advance()

	var body []ast.StmtID
	for !p.atOr(token.Dedent, token.EOF) {
		if p.at(token.Newline) {
			p.advance()
			continue
		}
		if p.opts.Enough() {
			break
		}
		body = append(body, p.parseStatement()...)
	}
	if p.at(token.Dedent) {
		p.advance()
	}
	return body
}

func (p *Parser) parseIfStmt(isElif bool) ast.StmtID {
	kw := p.advance() // 'if' or 'elif'
	cond := p.parseNamedExpr()
	body := p.parseBlock("condition")

	var orelse []ast.StmtID
	switch p.peek().Kind {
	case token.KwElif:
		orelse = []ast.StmtID{p.parseIfStmt(true)}
	case token.KwElse:
		p.advance()
		orelse = p.parseBlock("'else'")
	}

	span := kw.Span.Cover(p.lastSpan)
	return p.arenas.Stmts.NewIf(span, cond, body, orelse, isElif)
}

func (p *Parser) parseWhileStmt() ast.StmtID {
	kw := p.advance()
	cond := p.parseNamedExpr()
	body := p.parseBlock("condition")

	var orelse []ast.StmtID
	if p.at(token.KwElse) {
		p.advance()
		orelse = p.parseBlock("'else'")
	}

	span := kw.Span.Cover(p.lastSpan)
	return p.arenas.Stmts.NewWhile(span, cond, body, orelse)
}

func (p *Parser) parseForStmt(startSpan source.Span, isAsync bool) ast.StmtID {
	p.advance() // 'for'
	target := p.parseTargetList(targetFor)
	p.expect(token.KwIn, diag.SynUnexpectedToken, "Expected 'in' in for statement")
	iter := p.parseTestListStar(starContextFor)
	body := p.parseBlock("for statement header")

	var orelse []ast.StmtID
	if p.at(token.KwElse) {
		p.advance()
		orelse = p.parseBlock("'else'")
	}

	span := startSpan.Cover(p.lastSpan)
	return p.arenas.Stmts.NewFor(span, target, iter, body, orelse, isAsync)
}

// parseWithStmt parses `with item (, item)* : suite`. Parenthesized item
// lists are recognized by scanning ahead for an `as` inside the parens;
// otherwise the parentheses belong to an ordinary expression.
func (p *Parser) parseWithStmt(startSpan source.Span, isAsync bool) ast.StmtID {
	p.advance() // 'with'

	var items []ast.WithItem
	if p.at(token.LParen) && p.parenWrapsWithItems() {
		p.advance()
		for !p.atOr(token.RParen, token.Newline, token.EOF) {
			items = append(items, p.parseWithItem())
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "Expected ')' to close with items")
	} else {
		for {
			items = append(items, p.parseWithItem())
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}

	body := p.parseBlock("with statement header")
	span := startSpan.Cover(p.lastSpan)
	return p.arenas.Stmts.NewWith(span, items, body, isAsync)
}

// parenWrapsWithItems looks ahead from an opening parenthesis for an `as`
// at nesting depth one before the matching close.
func (p *Parser) parenWrapsWithItems() bool {
	depth := 0
	for n := 0; ; n++ {
		tok := p.peekAt(n)
		switch tok.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
			if depth == 0 {
				return false
			}
		case token.KwAs:
			if depth == 1 {
				return true
			}
		case token.EOF:
			return false
		}
	}
}

func (p *Parser) parseWithItem() ast.WithItem {
	item := ast.WithItem{Ctx: p.parseTest()}
	if p.at(token.KwAs) {
		p.advance()
		vars := p.parseTargetElement(targetAssign)
		p.validateTarget(vars, ast.CtxStore)
		item.Vars = vars
	}
	return item
}

func (p *Parser) parseTryStmt() ast.StmtID {
	kw := p.advance()
	body := p.parseBlock("'try'")

	var handlers []ast.ExceptHandler
	sawBare := false
	for p.at(token.KwExcept) {
		exceptTok := p.advance()
		handler := ast.ExceptHandler{Span: exceptTok.Span}

		if p.at(token.Star) {
			starTok := p.advance()
			handler.IsStar = true
			if !p.opts.Target.AtLeast(3, 11) {
				p.errAt(diag.SynVersionGated, exceptTok.Span.Cover(starTok.Span),
					"Exception groups require Python 3.11 or newer")
			}
		}

		if p.canStartExpression() {
			handler.Type = p.parseTest()
			if p.at(token.KwAs) {
				p.advance()
				name, _, ok := p.parseIdent()
				if ok {
					handler.Name = name
				}
			}
		} else if handler.IsStar {
			p.err(diag.SynExpectedExpression, "Expected an exception type after 'except*'")
		} else {
			if sawBare {
				p.errAt(diag.SynUnexpectedToken, exceptTok.Span,
					"Default 'except' clause must be last")
			}
			sawBare = true
		}

		handler.Body = p.parseBlock("'except' clause")
		handler.Span = handler.Span.Cover(p.lastSpan)
		handlers = append(handlers, handler)
	}

	var orelse []ast.StmtID
	if p.at(token.KwElse) {
		elseTok := p.advance()
		if len(handlers) == 0 {
			p.errAt(diag.SynUnexpectedToken, elseTok.Span,
				"'else' clause requires at least one 'except' clause")
		}
		orelse = p.parseBlock("'else'")
	}

	var finally []ast.StmtID
	hasFinally := false
	if p.at(token.KwFinally) {
		p.advance()
		hasFinally = true
		finally = p.parseBlock("'finally'")
	}

	if len(handlers) == 0 && !hasFinally {
		p.errAt(diag.SynUnexpectedToken, kw.Span,
			"Expected 'except' or 'finally' clause")
	}

	span := kw.Span.Cover(p.lastSpan)
	return p.arenas.Stmts.NewTry(span, body, handlers, orelse, finally)
}

// parseDecorated parses decorator lines and the def/class they apply to.
func (p *Parser) parseDecorated() (ast.StmtID, bool) {
	first := p.peek()
	var decorators []ast.ExprID
	for p.at(token.At) {
		p.advance()
		decorators = append(decorators, p.parseNamedExpr())
		if !p.at(token.Newline) {
			p.err(diag.SynUnexpectedToken, "Expected a newline after decorator")
			p.resyncStmt()
		} else {
			p.advance()
		}
	}

	switch p.peek().Kind {
	case token.KwDef:
		return p.parseFuncDef(decorators, first.Span, false), true
	case token.KwClass:
		return p.parseClassDef(decorators, first.Span), true
	case token.KwAsync:
		if p.peekAt(1).Kind == token.KwDef {
			p.advance()
			return p.parseFuncDef(decorators, first.Span, true), true
		}
	}
	p.err(diag.SynExpectedStatement, "Expected a function or class definition after decorators")
	return ast.NoStmtID, false
}

func (p *Parser) parseAsyncStmt() (ast.StmtID, bool) {
	kw := p.advance() // 'async'
	switch p.peek().Kind {
	case token.KwDef:
		return p.parseFuncDef(nil, kw.Span, true), true
	case token.KwFor:
		return p.parseForStmt(kw.Span, true), true
	case token.KwWith:
		return p.parseWithStmt(kw.Span, true), true
	default:
		p.err(diag.SynUnexpectedToken, "Expected 'def', 'for', or 'with' after 'async'")
		return ast.NoStmtID, false
	}
}

func (p *Parser) parseFuncDef(decorators []ast.ExprID, startSpan source.Span, isAsync bool) ast.StmtID {
	p.advance() // 'def'
	data := ast.StmtFunctionDefData{
		Decorators: decorators,
		IsAsync:    isAsync,
	}
	data.Name, data.NameSpan, _ = p.parseIdent()

	if p.at(token.LBracket) {
		data.TypeParams = p.parseTypeParams()
	}

	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "Expected '(' after function name"); ok {
		data.Params = p.parseParamList(token.RParen, true)
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "Expected ')' to close parameters")
	}

	if p.at(token.Arrow) {
		p.advance()
		data.Returns = p.parseTest()
	}

	p.funcDepth++
	data.Body = p.parseBlock("function header")
	p.funcDepth--

	span := startSpan.Cover(p.lastSpan)
	return p.arenas.Stmts.NewFunctionDef(span, data)
}

func (p *Parser) parseClassDef(decorators []ast.ExprID, startSpan source.Span) ast.StmtID {
	p.advance() // 'class'
	data := ast.StmtClassDefData{Decorators: decorators}
	data.Name, data.NameSpan, _ = p.parseIdent()

	if p.at(token.LBracket) {
		data.TypeParams = p.parseTypeParams()
	}

	if p.at(token.LParen) {
		p.advance()
		for !p.atOr(token.RParen, token.Newline, token.EOF) {
			p.parseClassArg(&data)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "Expected ')' to close class bases")
	}

	data.Body = p.parseBlock("class header")
	span := startSpan.Cover(p.lastSpan)
	return p.arenas.Stmts.NewClassDef(span, data)
}

// parseClassArg parses one item of the class argument list: a base, a
// starred base, a keyword, or a `**` keyword splat.
func (p *Parser) parseClassArg(data *ast.StmtClassDefData) {
	switch {
	case p.at(token.Star):
		star := p.advance()
		value := p.parseBitOr()
		span := star.Span.Cover(p.spanOfExpr(value))
		data.Bases = append(data.Bases, p.arenas.Exprs.NewStarred(span, value, ast.CtxLoad))

	case p.at(token.DoubleStar):
		p.advance()
		value := p.parseTest()
		data.Keywords = append(data.Keywords, ast.Keyword{Value: value})

	case p.at(token.Ident) && p.peekAt(1).Kind == token.Assign:
		nameTok := p.advance()
		p.advance() // '='
		value := p.parseTest()
		data.Keywords = append(data.Keywords, ast.Keyword{
			Name:     p.arenas.Intern(nameTok.Text),
			NameSpan: nameTok.Span,
			Value:    value,
		})

	default:
		data.Bases = append(data.Bases, p.parseTest())
	}
}
