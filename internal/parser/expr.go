package parser

import (
	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/token"
)

// The expression grammar follows the reference precedence ladder, one
// function per level. Every level returns a node even after an error so
// statements above always have something to hang on to.

// parseNamedExpr parses `test [":=" test]`. Walrus targets must be plain
// names.
func (p *Parser) parseNamedExpr() ast.ExprID {
	first := p.parseTest()
	if !p.at(token.ColonEq) {
		return first
	}
	p.advance()
	if e := p.arenas.Exprs.Get(first); e != nil && e.Kind != ast.ExprName {
		p.errAt(diag.SynInvalidTarget, e.Span, "Cannot use assignment expression with this target")
	} else if nd, ok := p.arenas.Exprs.Name(first); ok {
		nd.Ctx = ast.CtxStore
	}
	value := p.parseTest()
	span := p.spanOfExpr(first).Cover(p.spanOfExpr(value))
	return p.arenas.Exprs.NewNamed(span, first, value)
}

// parseTest parses a conditional expression or lambda.
func (p *Parser) parseTest() ast.ExprID {
	if !p.enterExpr() {
		return p.errorExpr()
	}
	defer p.leaveExpr()

	if p.at(token.KwLambda) {
		return p.parseLambda()
	}
	body := p.parseOrTest()
	if !p.at(token.KwIf) {
		return body
	}
	p.advance()
	cond := p.parseOrTest()
	p.expect(token.KwElse, diag.SynUnexpectedToken, "Expected 'else' in conditional expression")
	orelse := p.parseTest()
	span := p.spanOfExpr(body).Cover(p.spanOfExpr(orelse))
	return p.arenas.Exprs.NewIfExp(span, body, cond, orelse)
}

func (p *Parser) parseOrTest() ast.ExprID {
	first := p.parseAndTest()
	if !p.at(token.KwOr) {
		return first
	}
	values := []ast.ExprID{first}
	for p.at(token.KwOr) {
		p.advance()
		values = append(values, p.parseAndTest())
	}
	span := p.spanOfExpr(first).Cover(p.spanOfExpr(values[len(values)-1]))
	return p.arenas.Exprs.NewBool(span, ast.BoolOr, values)
}

func (p *Parser) parseAndTest() ast.ExprID {
	first := p.parseNotTest()
	if !p.at(token.KwAnd) {
		return first
	}
	values := []ast.ExprID{first}
	for p.at(token.KwAnd) {
		p.advance()
		values = append(values, p.parseNotTest())
	}
	span := p.spanOfExpr(first).Cover(p.spanOfExpr(values[len(values)-1]))
	return p.arenas.Exprs.NewBool(span, ast.BoolAnd, values)
}

func (p *Parser) parseNotTest() ast.ExprID {
	if !p.at(token.KwNot) {
		return p.parseComparison()
	}
	tok := p.advance()
	operand := p.parseNotTest()
	span := tok.Span.Cover(p.spanOfExpr(operand))
	return p.arenas.Exprs.NewUnary(span, ast.UnaryNot, operand)
}

// parseComparison parses chained comparisons: a < b <= c.
func (p *Parser) parseComparison() ast.ExprID {
	left := p.parseBitOr()

	var ops []ast.CmpOp
	var comparators []ast.ExprID
	for {
		op, width, ok := p.peekCmpOp()
		if !ok {
			break
		}
		for i := 0; i < width; i++ {
			p.advance()
		}
		ops = append(ops, op)
		comparators = append(comparators, p.parseBitOr())
	}
	if len(ops) == 0 {
		return left
	}
	span := p.spanOfExpr(left).Cover(p.spanOfExpr(comparators[len(comparators)-1]))
	return p.arenas.Exprs.NewCompare(span, left, ops, comparators)
}

// peekCmpOp recognizes a comparison operator, including the two-keyword
// forms `is not` and `not in`. Returns the operator and how many tokens
// it spans.
func (p *Parser) peekCmpOp() (ast.CmpOp, int, bool) {
	switch p.peek().Kind {
	case token.Lt:
		return ast.CmpLt, 1, true
	case token.LtEq:
		return ast.CmpLtE, 1, true
	case token.Gt:
		return ast.CmpGt, 1, true
	case token.GtEq:
		return ast.CmpGtE, 1, true
	case token.EqEq:
		return ast.CmpEq, 1, true
	case token.NotEq:
		return ast.CmpNotEq, 1, true
	case token.KwIn:
		return ast.CmpIn, 1, true
	case token.KwIs:
		if p.peekAt(1).Kind == token.KwNot {
			return ast.CmpIsNot, 2, true
		}
		return ast.CmpIs, 1, true
	case token.KwNot:
		if p.peekAt(1).Kind == token.KwIn {
			return ast.CmpNotIn, 2, true
		}
		return 0, 0, false
	default:
		return 0, 0, false
	}
}

// binaryLevel parses one left-associative binary precedence level.
func (p *Parser) binaryLevel(next func() ast.ExprID, table map[token.Kind]ast.BinOp) ast.ExprID {
	left := next()
	for {
		op, ok := table[p.peek().Kind]
		if !ok {
			return left
		}
		p.advance()
		right := next()
		span := p.spanOfExpr(left).Cover(p.spanOfExpr(right))
		left = p.arenas.Exprs.NewBinary(span, op, left, right)
	}
}

var (
	bitOrOps  = map[token.Kind]ast.BinOp{token.Pipe: ast.BinBitOr}
	bitXorOps = map[token.Kind]ast.BinOp{token.Caret: ast.BinBitXor}
	bitAndOps = map[token.Kind]ast.BinOp{token.Amp: ast.BinBitAnd}
	shiftOps  = map[token.Kind]ast.BinOp{
		token.LeftShift:  ast.BinLShift,
		token.RightShift: ast.BinRShift,
	}
	arithOps = map[token.Kind]ast.BinOp{
		token.Plus:  ast.BinAdd,
		token.Minus: ast.BinSub,
	}
	termOps = map[token.Kind]ast.BinOp{
		token.Star:        ast.BinMul,
		token.Slash:       ast.BinDiv,
		token.DoubleSlash: ast.BinFloorDiv,
		token.Percent:     ast.BinMod,
		token.At:          ast.BinMatMul,
	}
)

func (p *Parser) parseBitOr() ast.ExprID {
	return p.binaryLevel(p.parseBitXor, bitOrOps)
}

func (p *Parser) parseBitXor() ast.ExprID {
	return p.binaryLevel(p.parseBitAnd, bitXorOps)
}

func (p *Parser) parseBitAnd() ast.ExprID {
	return p.binaryLevel(p.parseShift, bitAndOps)
}

func (p *Parser) parseShift() ast.ExprID {
	return p.binaryLevel(p.parseArith, shiftOps)
}

func (p *Parser) parseArith() ast.ExprID {
	return p.binaryLevel(p.parseTerm, arithOps)
}

func (p *Parser) parseTerm() ast.ExprID {
	return p.binaryLevel(p.parseFactor, termOps)
}

// parseFactor parses unary +, -, ~.
func (p *Parser) parseFactor() ast.ExprID {
	var op ast.UnaryOp
	switch p.peek().Kind {
	case token.Plus:
		op = ast.UnaryPlus
	case token.Minus:
		op = ast.UnaryMinus
	case token.Tilde:
		op = ast.UnaryInvert
	default:
		return p.parsePower()
	}
	if !p.enterExpr() {
		return p.errorExpr()
	}
	defer p.leaveExpr()

	tok := p.advance()
	operand := p.parseFactor()
	span := tok.Span.Cover(p.spanOfExpr(operand))
	return p.arenas.Exprs.NewUnary(span, op, operand)
}

// parsePower parses `await_primary ["**" factor]`. The right operand is a
// factor, so -x binds tighter there: a ** -b.
func (p *Parser) parsePower() ast.ExprID {
	base := p.parseAwaitPrimary()
	if !p.at(token.DoubleStar) {
		return base
	}
	p.advance()
	right := p.parseFactor()
	span := p.spanOfExpr(base).Cover(p.spanOfExpr(right))
	return p.arenas.Exprs.NewBinary(span, ast.BinPow, base, right)
}

func (p *Parser) parseAwaitPrimary() ast.ExprID {
	if !p.at(token.KwAwait) {
		return p.parsePrimary()
	}
	tok := p.advance()
	value := p.parsePrimary()
	span := tok.Span.Cover(p.spanOfExpr(value))
	return p.arenas.Exprs.NewAwait(span, value)
}

// parsePrimary parses an atom followed by any number of call, subscript,
// and attribute suffixes.
func (p *Parser) parsePrimary() ast.ExprID {
	expr := p.parseAtom()
	for {
		switch p.peek().Kind {
		case token.LParen:
			expr = p.parseCallSuffix(expr)
		case token.LBracket:
			expr = p.parseSubscriptSuffix(expr)
		case token.Dot:
			p.advance()
			name, nameSpan, ok := p.parseIdent()
			span := p.spanOfExpr(expr).Cover(nameSpan)
			expr = p.arenas.Exprs.NewAttribute(span, expr, name, nameSpan)
			if !ok {
				return expr
			}
		default:
			return expr
		}
	}
}

// parseCallSuffix parses `(args)` after a primary.
func (p *Parser) parseCallSuffix(fn ast.ExprID) ast.ExprID {
	open := p.advance() // '('

	var args []ast.ExprID
	var keywords []ast.Keyword
	sawKeyword := false

	for !p.atOr(token.RParen, token.EOF) {
		switch {
		case p.at(token.Star):
			star := p.advance()
			value := p.parseTest()
			span := star.Span.Cover(p.spanOfExpr(value))
			args = append(args, p.arenas.Exprs.NewStarred(span, value, ast.CtxLoad))

		case p.at(token.DoubleStar):
			p.advance()
			value := p.parseTest()
			keywords = append(keywords, ast.Keyword{Value: value})
			sawKeyword = true

		case p.at(token.Ident) && p.peekAt(1).Kind == token.Assign:
			nameTok := p.advance()
			p.advance() // '='
			value := p.parseTest()
			keywords = append(keywords, ast.Keyword{
				Name:     p.arenas.Intern(nameTok.Text),
				NameSpan: nameTok.Span,
				Value:    value,
			})
			sawKeyword = true

		default:
			value := p.parseNamedExpr()
			if p.at(token.KwFor) && len(args) == 0 && len(keywords) == 0 {
				// Sole-argument generator expression: f(x for x in xs).
				value = p.parseCompSuffix(ast.ExprGenerator, value, ast.NoExprID, p.spanOfExpr(value))
			} else if sawKeyword {
				p.errAt(diag.SynUnexpectedToken, p.spanOfExpr(value),
					"Positional argument follows keyword argument")
			}
			args = append(args, value)
		}

		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}

	closeTok, _ := p.expect(token.RParen, diag.SynUnclosedDelimiter, "Expected ')' to close call arguments")
	span := p.spanOfExpr(fn).Cover(open.Span).Cover(closeTok.Span)
	return p.arenas.Exprs.NewCall(span, fn, args, keywords)
}

// parseSubscriptSuffix parses `[index]` after a primary; the index may be
// a slice or a tuple of slices.
func (p *Parser) parseSubscriptSuffix(value ast.ExprID) ast.ExprID {
	open := p.advance() // '['

	var elems []ast.ExprID
	trailingComma := false
	for !p.atOr(token.RBracket, token.EOF) {
		elems = append(elems, p.parseSubscriptItem())
		if !p.at(token.Comma) {
			break
		}
		p.advance()
		trailingComma = true
		if !p.atOr(token.RBracket, token.EOF) {
			trailingComma = false
		}
	}

	closeTok, _ := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "Expected ']' to close subscript")
	span := p.spanOfExpr(value).Cover(open.Span).Cover(closeTok.Span)

	var index ast.ExprID
	switch {
	case len(elems) == 0:
		p.errAt(diag.SynExpectedExpression, open.Span.Cover(closeTok.Span), "Expected an expression in subscript")
		index = p.arenas.Exprs.NewError(open.Span.Cover(closeTok.Span))
	case len(elems) == 1 && !trailingComma:
		index = elems[0]
	default:
		first := p.spanOfExpr(elems[0])
		last := p.spanOfExpr(elems[len(elems)-1])
		index = p.arenas.Exprs.NewTuple(first.Cover(last), elems)
	}
	return p.arenas.Exprs.NewSubscript(span, value, index)
}

// parseSubscriptItem parses one comma-separated element inside [].
func (p *Parser) parseSubscriptItem() ast.ExprID {
	startSpan := p.peek().Span

	if p.at(token.Star) {
		star := p.advance()
		value := p.parseTest()
		span := star.Span.Cover(p.spanOfExpr(value))
		return p.arenas.Exprs.NewStarred(span, value, ast.CtxLoad)
	}

	var lower ast.ExprID
	if !p.at(token.Colon) {
		lower = p.parseNamedExpr()
		if !p.at(token.Colon) {
			return lower
		}
	}

	// Slice form.
	p.advance() // first ':'
	var upper, step ast.ExprID
	if !p.atOr(token.Colon, token.Comma, token.RBracket, token.EOF) {
		upper = p.parseTest()
	}
	if p.at(token.Colon) {
		p.advance()
		if !p.atOr(token.Comma, token.RBracket, token.EOF) {
			step = p.parseTest()
		}
	}

	end := p.lastSpan
	return p.arenas.Exprs.NewSlice(startSpan.Cover(end), lower, upper, step)
}

// parseLambda parses `lambda params: body`. The body counts as function
// scope for yield checking.
func (p *Parser) parseLambda() ast.ExprID {
	kw := p.advance() // 'lambda'
	params := p.parseLambdaParams()
	p.expectColon("lambda parameters")

	p.funcDepth++
	body := p.parseTest()
	p.funcDepth--

	span := kw.Span.Cover(p.spanOfExpr(body))
	return p.arenas.Exprs.NewLambda(span, params, body)
}

// parseYieldExpr parses `yield [value]` or `yield from value`. The caller
// has checked the slot is one where a yield may appear; using yield
// outside a function body is still diagnosed here.
func (p *Parser) parseYieldExpr() ast.ExprID {
	kw := p.advance() // 'yield'

	var id ast.ExprID
	switch {
	case p.at(token.KwFrom):
		p.advance()
		value := p.parseTest()
		span := kw.Span.Cover(p.spanOfExpr(value))
		id = p.arenas.Exprs.NewYieldFrom(span, value)
	case p.canStartExpression():
		value := p.parseTestListStar(starContextYield)
		span := kw.Span.Cover(p.spanOfExpr(value))
		id = p.arenas.Exprs.NewYield(span, value)
	default:
		id = p.arenas.Exprs.NewYield(kw.Span, ast.NoExprID)
	}

	// The anchor covers the whole expression, not just the keyword.
	if p.funcDepth == 0 {
		p.errAt(diag.SynYieldExpression, p.spanOfExpr(id), "Yield expression cannot be used here")
	}
	return id
}

// starContext names the slot a testlist is parsed for, which decides
// whether a lone trailing star is legal.
type starContext uint8

const (
	starContextAssignTarget starContext = iota
	starContextValue
	starContextYield
	starContextFor
	starContextDel
)

// parseTestListStar parses `(test|star_expr) ("," (test|star_expr))* [","]`
// and wraps multiple elements into a tuple. A single starred element with
// no comma is not a valid expression on its own; that is diagnosed for
// value-like contexts.
func (p *Parser) parseTestListStar(ctx starContext) ast.ExprID {
	first := p.parseTestOrStar()
	if !p.at(token.Comma) {
		if expr := p.arenas.Exprs.Get(first); expr != nil && expr.Kind == ast.ExprStarred {
			switch ctx {
			case starContextValue, starContextYield:
				p.errAt(diag.SynStarredExpression, expr.Span, "Starred expression cannot be used here")
			}
		}
		return first
	}

	elems := []ast.ExprID{first}
	for p.at(token.Comma) {
		p.advance()
		if !p.canStartExpressionOrStar() {
			break
		}
		elems = append(elems, p.parseTestOrStar())
	}

	span := p.spanOfExpr(elems[0]).Cover(p.lastSpan)
	return p.arenas.Exprs.NewTuple(span, elems)
}

func (p *Parser) parseTestOrStar() ast.ExprID {
	if p.at(token.Star) {
		star := p.advance()
		value := p.parseBitOr()
		span := star.Span.Cover(p.spanOfExpr(value))
		return p.arenas.Exprs.NewStarred(span, value, ast.CtxLoad)
	}
	return p.parseTest()
}

// canStartExpression reports whether the next token can begin an
// expression.
func (p *Parser) canStartExpression() bool {
	return canStartExpression(p.peek().Kind)
}

func (p *Parser) canStartExpressionOrStar() bool {
	return p.at(token.Star) || p.canStartExpression()
}

func canStartExpression(k token.Kind) bool {
	switch k {
	case token.Ident, token.Int, token.Float, token.Complex,
		token.String, token.FString,
		token.KwNone, token.KwTrue, token.KwFalse,
		token.KwNot, token.KwLambda, token.KwAwait,
		token.LParen, token.LBracket, token.LBrace,
		token.Plus, token.Minus, token.Tilde, token.Ellipsis:
		return true
	default:
		return false
	}
}
