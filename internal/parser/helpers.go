package parser

import (
	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/source"
	"krait/internal/token"
)

// advance consumes the next token, updates lastSpan, and files away its
// comment trivia for the formatter.
func (p *Parser) advance() token.Token {
	var tok token.Token
	if len(p.buf) > 0 {
		tok = p.buf[0]
		p.buf = p.buf[1:]
	} else {
		tok = p.lx.Next()
	}
	for _, c := range tok.Comments() {
		p.arenas.PushComment(p.file, ast.Comment{Span: c.Span, Text: c.Text})
	}
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan picks the best span to anchor a diagnostic: the next
// token, or the position right after the last consumed token at EOF.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if (peek.Kind == token.EOF || peek.Kind == token.Invalid) && peek.Span.Empty() {
		if p.lastSpan.End > 0 {
			return source.Span{
				File:  p.lastSpan.File,
				Start: p.lastSpan.End,
				End:   p.lastSpan.End,
			}
		}
	}
	return peek.Span
}

// expect consumes the wanted token or reports and returns an invalid one.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	p.report(code, diag.SevError, diagSpan, msg)
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.peek().Text}, false
}

// expectColon is the most common expect: the ':' that opens a suite.
func (p *Parser) expectColon(what string) bool {
	_, ok := p.expect(token.Colon, diag.SynExpectedColon, "Expected ':' after "+what)
	return ok
}

func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) bool {
	return p.report(code, diag.SevError, sp, msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if p.opts.Reporter == nil || p.opts.Enough() {
		return false
	}
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil)
	return true
}

// resyncUntil skips tokens until one of the stop kinds or EOF. The stop
// token itself is left in the stream.
func (p *Parser) resyncUntil(stops ...token.Kind) {
	for !p.at(token.EOF) && !p.atOr(stops...) {
		p.advance()
	}
}

// resyncStmt recovers to the start of the next statement: past the next
// Newline at this suite level, or stopping before a Dedent so the caller
// can close its block.
func (p *Parser) resyncStmt() {
	depth := 0
	for {
		switch p.peek().Kind {
		case token.EOF:
			return
		case token.Dedent:
			if depth == 0 {
				return
			}
			depth--
			p.advance()
		case token.Indent:
			depth++
			p.advance()
		case token.Newline:
			p.advance()
			if depth == 0 {
				return
			}
		default:
			p.advance()
		}
	}
}

// enterExpr guards expression recursion depth. When the guard trips, the
// caller must produce an error node without descending further.
func (p *Parser) enterExpr() bool {
	if p.depth >= maxExprDepth {
		if !p.depthHit {
			p.depthHit = true
			p.err(diag.SynNestedTooDeep, "Expressions nested too deeply")
		}
		return false
	}
	p.depth++
	return true
}

func (p *Parser) leaveExpr() {
	p.depth--
}

// parseIdent expects an identifier and interns it.
func (p *Parser) parseIdent() (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.arenas.Intern(tok.Text), tok.Span, true
	}
	p.err(diag.SynExpectedIdentifier, "Expected an identifier, got \""+p.peek().Text+"\"")
	return source.NoStringID, p.getDiagnosticSpan(), false
}

// errorExpr allocates an error placeholder at the current position.
func (p *Parser) errorExpr() ast.ExprID {
	return p.arenas.Exprs.NewError(p.getDiagnosticSpan())
}

// spanOfExpr returns the span of an already-built expression.
func (p *Parser) spanOfExpr(id ast.ExprID) source.Span {
	if e := p.arenas.Exprs.Get(id); e != nil {
		return e.Span
	}
	return p.getDiagnosticSpan()
}

// spanOfStmt returns the span of an already-built statement.
func (p *Parser) spanOfStmt(id ast.StmtID) source.Span {
	if s := p.arenas.Stmts.Get(id); s != nil {
		return s.Span
	}
	return p.getDiagnosticSpan()
}
