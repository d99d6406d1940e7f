package parser

import (
	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/token"
)

// targetKind names the construct a target list belongs to; del targets
// get CtxDel and reject stars.
type targetKind uint8

const (
	targetAssign targetKind = iota
	targetFor
	targetDel
)

// parseTargetList parses the target of a for loop, del statement, or
// comprehension clause. Elements stay at primary level so a following
// `in` keyword is never swallowed as a comparison.
func (p *Parser) parseTargetList(kind targetKind) ast.ExprID {
	first := p.parseTargetElement(kind)
	if p.at(token.Comma) {
		elems := []ast.ExprID{first}
		for p.at(token.Comma) {
			p.advance()
			if !p.canStartExpressionOrStar() {
				break
			}
			elems = append(elems, p.parseTargetElement(kind))
		}
		span := p.spanOfExpr(elems[0]).Cover(p.lastSpan)
		first = p.arenas.Exprs.NewTuple(span, elems)
	}

	ctx := ast.CtxStore
	if kind == targetDel {
		ctx = ast.CtxDel
	}
	p.validateTarget(first, ctx)
	return first
}

func (p *Parser) parseTargetElement(kind targetKind) ast.ExprID {
	if p.at(token.Star) {
		star := p.advance()
		value := p.parsePrimary()
		span := star.Span.Cover(p.spanOfExpr(value))
		if kind == targetDel {
			p.errAt(diag.SynInvalidTarget, span, "Cannot delete starred expression")
		}
		return p.arenas.Exprs.NewStarred(span, value, ast.CtxStore)
	}
	return p.parsePrimary()
}

// validateTarget checks that an expression can be assigned to (or
// deleted) and stamps the store context onto its names.
func (p *Parser) validateTarget(id ast.ExprID, ctx ast.ExprCtx) bool {
	e := p.arenas.Exprs.Get(id)
	if e == nil {
		return false
	}
	switch e.Kind {
	case ast.ExprName:
		if d, ok := p.arenas.Exprs.Name(id); ok {
			d.Ctx = ctx
		}
		return true

	case ast.ExprAttribute, ast.ExprSubscript:
		return true

	case ast.ExprStarred:
		d, _ := p.arenas.Exprs.Starred(id)
		d.Ctx = ctx
		if ctx == ast.CtxDel {
			p.errAt(diag.SynInvalidTarget, e.Span, "Cannot delete starred expression")
			return false
		}
		return p.validateTarget(d.Value, ctx)

	case ast.ExprTuple, ast.ExprList:
		d, _ := p.arenas.Exprs.Seq(id)
		ok := true
		stars := 0
		for _, el := range d.Elems {
			if sub := p.arenas.Exprs.Get(el); sub != nil && sub.Kind == ast.ExprStarred {
				stars++
				if stars > 1 {
					p.errAt(diag.SynInvalidTarget, sub.Span,
						"Multiple starred expressions in assignment")
					ok = false
					continue
				}
			}
			if !p.validateTarget(el, ctx) {
				ok = false
			}
		}
		return ok

	case ast.ExprError:
		// Already diagnosed upstream.
		return true

	default:
		p.errAt(diag.SynInvalidTarget, e.Span, "Invalid assignment target")
		return false
	}
}

// validateSimpleTarget enforces the augmented/annotated assignment rule:
// a single name, attribute, or subscript.
func (p *Parser) validateSimpleTarget(id ast.ExprID, what string) bool {
	e := p.arenas.Exprs.Get(id)
	if e == nil {
		return false
	}
	switch e.Kind {
	case ast.ExprName:
		if d, ok := p.arenas.Exprs.Name(id); ok {
			d.Ctx = ast.CtxStore
		}
		return true
	case ast.ExprAttribute, ast.ExprSubscript, ast.ExprError:
		return true
	default:
		p.errAt(diag.SynInvalidTarget, e.Span, "Invalid target for "+what)
		return false
	}
}
