package parser

import (
	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/source"
	"krait/internal/token"
)

// parseStatement parses one logical line: either a compound statement or
// a run of simple statements separated by semicolons.
func (p *Parser) parseStatement() []ast.StmtID {
	switch p.peek().Kind {
	case token.KwIf, token.KwWhile, token.KwFor, token.KwTry, token.KwWith,
		token.KwDef, token.KwClass, token.At, token.KwAsync:
		if id, ok := p.parseCompound(); ok {
			return []ast.StmtID{id}
		}
		p.resyncStmt()
		return nil
	}
	return p.parseSimpleStmtLine()
}

// parseSimpleStmtLine parses `stmt (";" stmt)* [";"] NEWLINE`. A token
// that cannot begin a statement after one finished is the anchor for
// "Expected a statement"; a statement starter in that position means the
// separator went missing.
func (p *Parser) parseSimpleStmtLine() []ast.StmtID {
	var out []ast.StmtID
	for {
		id, ok := p.parseSimpleStmt()
		if !ok {
			p.resyncStmt()
			return out
		}
		out = append(out, id)

		switch p.peek().Kind {
		case token.Semicolon:
			p.advance()
			if p.at(token.Newline) {
				p.advance()
				return out
			}
			if p.atOr(token.EOF, token.Dedent) {
				return out
			}
			continue
		case token.Newline:
			p.advance()
			return out
		case token.EOF, token.Dedent:
			return out
		default:
			tok := p.peek()
			if canStartStatement(tok.Kind) {
				p.errAt(diag.SynSimpleStmtSeparator, tok.Span,
					"Simple statements must be separated by newlines or semicolons")
			} else {
				p.errAt(diag.SynExpectedStatement, tok.Span, "Expected a statement")
			}
			p.resyncStmt()
			return out
		}
	}
}

func canStartStatement(k token.Kind) bool {
	if canStartExpression(k) {
		return true
	}
	switch k {
	case token.Star, token.KwPass, token.KwBreak, token.KwContinue,
		token.KwReturn, token.KwDel, token.KwImport, token.KwFrom,
		token.KwGlobal, token.KwNonlocal, token.KwAssert, token.KwRaise,
		token.KwYield, token.KwIf, token.KwWhile, token.KwFor, token.KwTry,
		token.KwWith, token.KwDef, token.KwClass, token.KwAsync, token.At:
		return true
	default:
		return false
	}
}

func (p *Parser) parseSimpleStmt() (ast.StmtID, bool) {
	switch p.peek().Kind {
	case token.KwPass:
		tok := p.advance()
		return p.arenas.Stmts.NewSimple(ast.StmtPass, tok.Span), true
	case token.KwBreak:
		tok := p.advance()
		return p.arenas.Stmts.NewSimple(ast.StmtBreak, tok.Span), true
	case token.KwContinue:
		tok := p.advance()
		return p.arenas.Stmts.NewSimple(ast.StmtContinue, tok.Span), true

	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwDel:
		return p.parseDeleteStmt()
	case token.KwImport:
		return p.parseImportStmt()
	case token.KwFrom:
		return p.parseImportFromStmt()
	case token.KwGlobal:
		return p.parseNamesStmt(ast.StmtGlobal, "global")
	case token.KwNonlocal:
		return p.parseNamesStmt(ast.StmtNonlocal, "nonlocal")
	case token.KwAssert:
		return p.parseAssertStmt()
	case token.KwRaise:
		return p.parseRaiseStmt()

	case token.KwYield:
		expr := p.parseYieldExpr()
		return p.arenas.Stmts.NewExprStmt(p.spanOfExpr(expr), expr), true

	default:
		if p.atTypeAliasStmt() {
			return p.parseTypeAliasStmt()
		}
		if !p.canStartExpressionOrStar() {
			p.errAt(diag.SynExpectedStatement, p.getDiagnosticSpan(), "Expected a statement")
			return ast.NoStmtID, false
		}
		return p.parseExprLikeStmt()
	}
}

var augOps = map[token.Kind]ast.BinOp{
	token.PlusEq:        ast.BinAdd,
	token.MinusEq:       ast.BinSub,
	token.StarEq:        ast.BinMul,
	token.AtEq:          ast.BinMatMul,
	token.SlashEq:       ast.BinDiv,
	token.DoubleSlashEq: ast.BinFloorDiv,
	token.PercentEq:     ast.BinMod,
	token.DoubleStarEq:  ast.BinPow,
	token.LeftShiftEq:   ast.BinLShift,
	token.RightShiftEq:  ast.BinRShift,
	token.AmpEq:         ast.BinBitAnd,
	token.PipeEq:        ast.BinBitOr,
	token.CaretEq:       ast.BinBitXor,
}

// parseExprLikeStmt parses the statement forms that begin with an
// expression: plain expression statements, assignment chains, augmented
// and annotated assignments.
func (p *Parser) parseExprLikeStmt() (ast.StmtID, bool) {
	first := p.parseTestListStar(starContextAssignTarget)
	startSpan := p.spanOfExpr(first)

	if op, ok := augOps[p.peek().Kind]; ok {
		p.advance()
		p.validateSimpleTarget(first, "augmented assignment")
		value := p.parseAssignValue()
		span := startSpan.Cover(p.spanOfExpr(value))
		return p.arenas.Stmts.NewAugAssign(span, first, op, value), true
	}

	if p.at(token.Colon) {
		p.advance()
		if e := p.arenas.Exprs.Get(first); e != nil && e.Kind == ast.ExprTuple {
			p.errAt(diag.SynInvalidTarget, e.Span, "Only a single target can be annotated")
		} else {
			p.validateSimpleTarget(first, "annotated assignment")
		}
		annotation := p.parseTest()
		value := ast.NoExprID
		if p.at(token.Assign) {
			p.advance()
			value = p.parseAssignValue()
		}
		end := annotation
		if value.IsValid() {
			end = value
		}
		span := startSpan.Cover(p.spanOfExpr(end))
		return p.arenas.Stmts.NewAnnAssign(span, first, annotation, value), true
	}

	if p.at(token.Assign) {
		targets := []ast.ExprID{first}
		var value ast.ExprID
		for p.at(token.Assign) {
			p.advance()
			if p.at(token.KwYield) {
				value = p.parseYieldExpr()
			} else {
				value = p.parseTestListStar(starContextAssignTarget)
			}
			if p.at(token.Assign) {
				targets = append(targets, value)
			}
		}
		for _, t := range targets {
			p.validateTarget(t, ast.CtxStore)
		}
		if e := p.arenas.Exprs.Get(value); e != nil && e.Kind == ast.ExprStarred {
			p.errAt(diag.SynStarredExpression, e.Span, "Starred expression cannot be used here")
		}
		span := startSpan.Cover(p.spanOfExpr(value))
		return p.arenas.Stmts.NewAssign(span, targets, value), true
	}

	// Plain expression statement; a lone star expression has no meaning
	// on its own.
	if e := p.arenas.Exprs.Get(first); e != nil && e.Kind == ast.ExprStarred {
		p.errAt(diag.SynStarredExpression, e.Span, "Starred expression cannot be used here")
	}
	return p.arenas.Stmts.NewExprStmt(startSpan, first), true
}

// parseAssignValue parses the right side of an assignment: a yield
// expression or a testlist.
func (p *Parser) parseAssignValue() ast.ExprID {
	if p.at(token.KwYield) {
		return p.parseYieldExpr()
	}
	return p.parseTestListStar(starContextValue)
}

func (p *Parser) parseReturnStmt() (ast.StmtID, bool) {
	kw := p.advance()
	value := ast.NoExprID
	if p.canStartExpressionOrStar() {
		value = p.parseTestListStar(starContextValue)
	}
	span := kw.Span
	if value.IsValid() {
		span = span.Cover(p.spanOfExpr(value))
	}
	return p.arenas.Stmts.NewReturn(span, value), true
}

func (p *Parser) parseDeleteStmt() (ast.StmtID, bool) {
	kw := p.advance()
	var targets []ast.ExprID
	for {
		t := p.parseTargetElement(targetDel)
		p.validateTarget(t, ast.CtxDel)
		targets = append(targets, t)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
		if !p.canStartExpressionOrStar() {
			break
		}
	}
	span := kw.Span.Cover(p.lastSpan)
	return p.arenas.Stmts.NewDelete(span, targets), true
}

func (p *Parser) parseNamesStmt(kind ast.StmtKind, what string) (ast.StmtID, bool) {
	kw := p.advance()
	var names []source.StringID
	for {
		if !p.at(token.Ident) {
			p.err(diag.SynExpectedIdentifier, "Expected a name after '"+what+"'")
			return p.arenas.Stmts.NewNames(kind, kw.Span.Cover(p.lastSpan), names), true
		}
		name, _, _ := p.parseIdent()
		names = append(names, name)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	span := kw.Span.Cover(p.lastSpan)
	return p.arenas.Stmts.NewNames(kind, span, names), true
}

func (p *Parser) parseAssertStmt() (ast.StmtID, bool) {
	kw := p.advance()
	test := p.parseTest()
	msg := ast.NoExprID
	if p.at(token.Comma) {
		p.advance()
		msg = p.parseTest()
	}
	span := kw.Span.Cover(p.lastSpan)
	return p.arenas.Stmts.NewAssert(span, test, msg), true
}

func (p *Parser) parseRaiseStmt() (ast.StmtID, bool) {
	kw := p.advance()
	exc := ast.NoExprID
	cause := ast.NoExprID
	if p.canStartExpression() {
		exc = p.parseTest()
		if p.at(token.KwFrom) {
			p.advance()
			cause = p.parseTest()
		}
	}
	span := kw.Span.Cover(p.lastSpan)
	return p.arenas.Stmts.NewRaise(span, exc, cause), true
}

// atTypeAliasStmt recognizes the soft-keyword statement
// `type NAME [typeparams] = value` without stealing `type` as a name
// anywhere else.
func (p *Parser) atTypeAliasStmt() bool {
	if !p.opts.Target.AtLeast(3, 12) {
		return false
	}
	if !p.atSoftKeyword("type") || p.peekAt(1).Kind != token.Ident {
		return false
	}
	k := p.peekAt(2).Kind
	return k == token.Assign || k == token.LBracket
}

func (p *Parser) parseTypeAliasStmt() (ast.StmtID, bool) {
	kw := p.advance() // soft keyword `type`

	nameTok := p.advance()
	name := p.arenas.Exprs.NewName(nameTok.Span, p.arenas.Intern(nameTok.Text), ast.CtxStore)

	var typeParams []ast.TypeParam
	if p.at(token.LBracket) {
		typeParams = p.parseTypeParams()
	}

	p.expect(token.Assign, diag.SynUnexpectedToken, "Expected '=' in type alias")

	// The value is a single expression. A starred value still parses so
	// the node survives, but it is diagnosed in place.
	var value ast.ExprID
	if p.at(token.Star) {
		value = p.parseTestOrStar()
		if e := p.arenas.Exprs.Get(value); e != nil && e.Kind == ast.ExprStarred {
			p.errAt(diag.SynStarredExpression, e.Span, "Starred expression cannot be used here")
		}
	} else {
		value = p.parseTest()
	}

	span := kw.Span.Cover(p.spanOfExpr(value))
	return p.arenas.Stmts.NewTypeAlias(span, name, typeParams, value), true
}

// parseImportStmt parses `import a.b [as c], d [as e]`.
func (p *Parser) parseImportStmt() (ast.StmtID, bool) {
	kw := p.advance()
	var names []ast.ImportAlias
	for {
		alias, ok := p.parseImportAlias(true)
		if !ok {
			break
		}
		names = append(names, alias)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	span := kw.Span.Cover(p.lastSpan)
	return p.arenas.Stmts.NewImport(span, names), true
}

// parseImportFromStmt parses `from [dots] [module] import targets`.
func (p *Parser) parseImportFromStmt() (ast.StmtID, bool) {
	kw := p.advance()

	level := uint32(0)
	for {
		if p.at(token.Dot) {
			p.advance()
			level++
			continue
		}
		if p.at(token.Ellipsis) {
			p.advance()
			level += 3
			continue
		}
		break
	}

	module := source.NoStringID
	if p.at(token.Ident) {
		module = p.parseDottedName()
	} else if level == 0 {
		p.err(diag.SynExpectedIdentifier, "Expected a module name after 'from'")
	}

	p.expect(token.KwImport, diag.SynUnexpectedToken, "Expected 'import' in from-import")

	star := false
	var names []ast.ImportAlias
	switch {
	case p.at(token.Star):
		p.advance()
		star = true
	case p.at(token.LParen):
		p.advance()
		for !p.atOr(token.RParen, token.EOF) {
			alias, ok := p.parseImportAlias(false)
			if !ok {
				break
			}
			names = append(names, alias)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "Expected ')' to close import list")
	default:
		for {
			alias, ok := p.parseImportAlias(false)
			if !ok {
				break
			}
			names = append(names, alias)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}

	span := kw.Span.Cover(p.lastSpan)
	return p.arenas.Stmts.NewImportFrom(span, module, level, names, star), true
}

// parseImportAlias parses `name ["as" alias]`; dotted names are allowed
// only for plain imports.
func (p *Parser) parseImportAlias(dotted bool) (ast.ImportAlias, bool) {
	if !p.at(token.Ident) {
		p.err(diag.SynExpectedIdentifier, "Expected a name to import")
		return ast.ImportAlias{}, false
	}

	startSpan := p.peek().Span
	var name source.StringID
	if dotted {
		name = p.parseDottedName()
	} else {
		tok := p.advance()
		name = p.arenas.Intern(tok.Text)
	}
	alias := ast.ImportAlias{
		Name:     name,
		NameSpan: startSpan.Cover(p.lastSpan),
	}

	if p.at(token.KwAs) {
		p.advance()
		asName, _, ok := p.parseIdent()
		if ok {
			alias.AsName = asName
		}
	}
	return alias, true
}

// parseDottedName consumes `a.b.c` and interns the joined text.
func (p *Parser) parseDottedName() source.StringID {
	tok := p.advance()
	text := tok.Text
	for p.at(token.Dot) && p.peekAt(1).Kind == token.Ident {
		p.advance()
		part := p.advance()
		text += "." + part.Text
	}
	return p.arenas.Intern(text)
}
