package format

import (
	"krait/internal/ast"
)

// Binding strength, loosest first, mirroring the grammar ladder. A node
// whose own level is below the level its context requires gets wrapped in
// parentheses.
const (
	precLowest = iota
	precLambda
	precTernary
	precOr
	precAnd
	precNot
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdd
	precMul
	precUnary
	precPower
	precAwait
	precPostfix
	precAtom
)

func binPrec(op ast.BinOp) int {
	switch op {
	case ast.BinAdd, ast.BinSub:
		return precAdd
	case ast.BinMul, ast.BinDiv, ast.BinFloorDiv, ast.BinMod, ast.BinMatMul:
		return precMul
	case ast.BinPow:
		return precPower
	case ast.BinLShift, ast.BinRShift:
		return precShift
	case ast.BinBitOr:
		return precBitOr
	case ast.BinBitXor:
		return precBitXor
	case ast.BinBitAnd:
		return precBitAnd
	default:
		return precAtom
	}
}

// exprList renders an expression in a position where a bare tuple is
// legal, so `x = 1, 2` keeps its shape.
func (fb *fileBuilder) exprList(id ast.ExprID) DocID {
	e := fb.builder.Exprs.Get(id)
	if e != nil && e.Kind == ast.ExprTuple {
		d, _ := fb.builder.Exprs.Seq(id)
		// One-element tuples always get parentheses; longer bare tuples
		// keep their shape.
		if len(d.Elems) == 1 {
			return fb.docs.Concat(
				fb.docs.Text("("),
				fb.expr(d.Elems[0], precLambda),
				fb.docs.Text(",)"),
			)
		}
		if len(d.Elems) > 1 {
			var kids []DocID
			for i, el := range d.Elems {
				if i > 0 {
					kids = append(kids, fb.docs.Text(", "))
				}
				kids = append(kids, fb.expr(el, precLambda))
			}
			return fb.docs.ConcatList(kids)
		}
	}
	return fb.expr(id, precLowest)
}

func (fb *fileBuilder) expr(id ast.ExprID, minPrec int) DocID {
	e := fb.builder.Exprs.Get(id)
	if e == nil {
		return fb.docs.Text("")
	}
	doc, prec := fb.exprInner(id, e)
	if prec < minPrec {
		return fb.docs.Concat(fb.docs.Text("("), doc, fb.docs.Text(")"))
	}
	return doc
}

func (fb *fileBuilder) exprInner(id ast.ExprID, e *ast.Expr) (DocID, int) {
	x := fb.builder.Exprs
	switch e.Kind {
	case ast.ExprName:
		d, _ := x.Name(id)
		return fb.docs.Text(fb.lookup(d.Name)), precAtom

	case ast.ExprNumber:
		d, _ := x.Number(id)
		return fb.docs.Text(normalizeNumber(fb.lookup(d.Text))), precAtom

	case ast.ExprString:
		return fb.stringExpr(id), precAtom

	case ast.ExprConst:
		d, _ := x.Const(id)
		switch d.Kind {
		case ast.ConstNone:
			return fb.docs.Text("None"), precAtom
		case ast.ConstTrue:
			return fb.docs.Text("True"), precAtom
		case ast.ConstFalse:
			return fb.docs.Text("False"), precAtom
		default:
			return fb.docs.Text("..."), precAtom
		}

	case ast.ExprTuple:
		d, _ := x.Seq(id)
		if len(d.Elems) == 0 {
			return fb.docs.Text("()"), precAtom
		}
		if len(d.Elems) == 1 {
			return fb.docs.Concat(
				fb.docs.Text("("),
				fb.expr(d.Elems[0], precLambda),
				fb.docs.Text(",)"),
			), precAtom
		}
		return fb.seqDoc("(", d.Elems, ")"), precAtom

	case ast.ExprList:
		d, _ := x.Seq(id)
		return fb.seqDoc("[", d.Elems, "]"), precAtom

	case ast.ExprSet:
		d, _ := x.Seq(id)
		return fb.seqDoc("{", d.Elems, "}"), precAtom

	case ast.ExprDict:
		d, _ := x.Dict(id)
		if len(d.Items) == 0 {
			return fb.docs.Text("{}"), precAtom
		}
		var items []DocID
		for _, it := range d.Items {
			if !it.Key.IsValid() {
				items = append(items, fb.docs.Concat(
					fb.docs.Text("**"), fb.expr(it.Value, precBitOr)))
				continue
			}
			items = append(items, fb.docs.Concat(
				fb.expr(it.Key, precLambda),
				fb.docs.Text(": "),
				fb.expr(it.Value, precLambda),
			))
		}
		return fb.wrapList("{", items, "}"), precAtom

	case ast.ExprStarred:
		d, _ := x.Starred(id)
		return fb.docs.Concat(fb.docs.Text("*"), fb.expr(d.Value, precBitOr)), precAtom

	case ast.ExprUnary:
		d, _ := x.Unary(id)
		if d.Op == ast.UnaryNot {
			return fb.docs.Concat(fb.docs.Text("not "), fb.expr(d.Operand, precNot)), precNot
		}
		return fb.docs.Concat(fb.docs.Text(d.Op.String()), fb.expr(d.Operand, precUnary)), precUnary

	case ast.ExprBinary:
		d, _ := x.Binary(id)
		prec := binPrec(d.Op)
		lp, rp := prec, prec+1
		if d.Op == ast.BinPow {
			lp, rp = prec+1, prec
		}
		return fb.docs.Concat(
			fb.expr(d.Left, lp),
			fb.docs.Text(" "+d.Op.String()+" "),
			fb.expr(d.Right, rp),
		), prec

	case ast.ExprBool:
		d, _ := x.Bool(id)
		prec := precOr
		if d.Op == ast.BoolAnd {
			prec = precAnd
		}
		var kids []DocID
		for i, v := range d.Values {
			if i > 0 {
				kids = append(kids, fb.docs.Text(" "+d.Op.String()+" "))
			}
			kids = append(kids, fb.expr(v, prec+1))
		}
		return fb.docs.ConcatList(kids), prec

	case ast.ExprCompare:
		d, _ := x.Compare(id)
		kids := []DocID{fb.expr(d.Left, precCompare + 1)}
		for i, op := range d.Ops {
			kids = append(kids, fb.docs.Text(" "+op.String()+" "))
			kids = append(kids, fb.expr(d.Comparators[i], precCompare+1))
		}
		return fb.docs.ConcatList(kids), precCompare

	case ast.ExprCall:
		return fb.callExpr(id), precPostfix

	case ast.ExprAttribute:
		d, _ := x.Attribute(id)
		return fb.docs.Concat(
			fb.expr(d.Value, precPostfix),
			fb.docs.Text("."+fb.lookup(d.Attr)),
		), precPostfix

	case ast.ExprSubscript:
		d, _ := x.Subscript(id)
		return fb.docs.Concat(
			fb.expr(d.Value, precPostfix),
			fb.docs.Text("["),
			fb.exprList(d.Index),
			fb.docs.Text("]"),
		), precPostfix

	case ast.ExprSlice:
		d, _ := x.Slice(id)
		var kids []DocID
		if d.Lower.IsValid() {
			kids = append(kids, fb.expr(d.Lower, precLambda))
		}
		kids = append(kids, fb.docs.Text(":"))
		if d.Upper.IsValid() {
			kids = append(kids, fb.expr(d.Upper, precLambda))
		}
		if d.Step.IsValid() {
			kids = append(kids, fb.docs.Text(":"), fb.expr(d.Step, precLambda))
		}
		return fb.docs.ConcatList(kids), precAtom

	case ast.ExprLambda:
		d, _ := x.Lambda(id)
		if d.Params.Empty() {
			return fb.docs.Concat(
				fb.docs.Text("lambda: "),
				fb.expr(d.Body, precLambda),
			), precLambda
		}
		items := fb.paramItems(d.Params, false)
		kids := []DocID{fb.docs.Text("lambda ")}
		for i, it := range items {
			if i > 0 {
				kids = append(kids, fb.docs.Text(", "))
			}
			kids = append(kids, it)
		}
		kids = append(kids, fb.docs.Text(": "), fb.expr(d.Body, precLambda))
		return fb.docs.ConcatList(kids), precLambda

	case ast.ExprIfExp:
		d, _ := x.IfExp(id)
		return fb.docs.Concat(
			fb.expr(d.Body, precOr),
			fb.docs.Text(" if "),
			fb.expr(d.Cond, precOr),
			fb.docs.Text(" else "),
			fb.expr(d.Else, precTernary),
		), precTernary

	case ast.ExprYield:
		d, _ := x.Yield(id)
		if !d.Value.IsValid() {
			return fb.docs.Text("yield"), precLowest
		}
		return fb.docs.Concat(fb.docs.Text("yield "), fb.exprList(d.Value)), precLowest

	case ast.ExprYieldFrom:
		d, _ := x.Yield(id)
		return fb.docs.Concat(fb.docs.Text("yield from "), fb.expr(d.Value, precLambda)), precLowest

	case ast.ExprAwait:
		d, _ := x.Yield(id)
		return fb.docs.Concat(fb.docs.Text("await "), fb.expr(d.Value, precAwait)), precAwait

	case ast.ExprNamed:
		// Always parenthesized: the bare form is only grammatical in a
		// handful of slots, and the parens are canonical everywhere.
		d, _ := x.Named(id)
		return fb.docs.Concat(
			fb.docs.Text("("),
			fb.expr(d.Target, precAtom),
			fb.docs.Text(" := "),
			fb.expr(d.Value, precLambda),
			fb.docs.Text(")"),
		), precAtom

	case ast.ExprListComp:
		return fb.compExpr(id, "[", "]"), precAtom
	case ast.ExprSetComp:
		return fb.compExpr(id, "{", "}"), precAtom
	case ast.ExprDictComp:
		return fb.compExpr(id, "{", "}"), precAtom
	case ast.ExprGenerator:
		// Standalone generators always carry parentheses; the sole-argument
		// call form is handled by callExpr.
		return fb.compExpr(id, "(", ")"), precAtom

	default:
		return fb.docs.Text(fb.sourceSlice(e.Span.Start, e.Span.End)), precAtom
	}
}

func (fb *fileBuilder) callExpr(id ast.ExprID) DocID {
	d, _ := fb.builder.Exprs.Call(id)
	fn := fb.expr(d.Func, precPostfix)

	// f(x for x in xs) keeps the bare generator.
	if len(d.Args) == 1 && len(d.Keywords) == 0 {
		if arg := fb.builder.Exprs.Get(d.Args[0]); arg != nil && arg.Kind == ast.ExprGenerator {
			return fb.docs.Concat(fn, fb.compExpr(d.Args[0], "(", ")"))
		}
	}

	var items []DocID
	for _, a := range d.Args {
		items = append(items, fb.expr(a, precLowest))
	}
	for _, kw := range d.Keywords {
		items = append(items, fb.keyword(kw))
	}
	return fb.docs.Concat(fn, fb.wrapList("(", items, ")"))
}

func (fb *fileBuilder) compExpr(id ast.ExprID, open, close string) DocID {
	d, _ := fb.builder.Exprs.Comp(id)
	e := fb.builder.Exprs.Get(id)

	kids := []DocID{fb.docs.Text(open)}
	if e.Kind == ast.ExprDictComp {
		kids = append(kids,
			fb.expr(d.Elt, precLambda),
			fb.docs.Text(": "),
			fb.expr(d.Value, precLambda),
		)
	} else {
		kids = append(kids, fb.expr(d.Elt, precLambda))
	}
	for _, cl := range d.Clauses {
		kw := " for "
		if cl.IsAsync {
			kw = " async for "
		}
		kids = append(kids,
			fb.docs.Text(kw),
			fb.exprList(cl.Target),
			fb.docs.Text(" in "),
			fb.expr(cl.Iter, precOr),
		)
		for _, cond := range cl.Ifs {
			kids = append(kids, fb.docs.Text(" if "), fb.expr(cond, precOr))
		}
	}
	kids = append(kids, fb.docs.Text(close))
	return fb.docs.ConcatList(kids)
}

func (fb *fileBuilder) seqDoc(open string, elems []ast.ExprID, close string) DocID {
	var items []DocID
	for _, el := range elems {
		items = append(items, fb.expr(el, precLambda))
	}
	return fb.wrapList(open, items, close)
}

// wrapList lays out a bracketed, comma-separated list: flat on one line
// when it fits, otherwise one item per line with a trailing comma.
func (fb *fileBuilder) wrapList(open string, items []DocID, close string) DocID {
	if len(items) == 0 {
		return fb.docs.Text(open + close)
	}
	var inner []DocID
	inner = append(inner, fb.docs.SoftBreak())
	for i, it := range items {
		if i > 0 {
			inner = append(inner, fb.docs.Text(","), fb.docs.Space())
		}
		inner = append(inner, it)
	}
	inner = append(inner, fb.docs.IfBroken([]DocID{fb.docs.Text(",")}, nil))
	return fb.docs.Group(
		fb.docs.Text(open),
		fb.docs.Indent(inner...),
		fb.docs.SoftBreak(),
		fb.docs.Text(close),
	)
}
