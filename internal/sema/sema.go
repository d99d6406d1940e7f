// Package sema runs the semantic syntax pass: rules that need the shape
// of the finished tree rather than local token context. It never mutates
// the tree and it runs even when the parser already reported errors, so a
// span can carry both a syntax and a semantic finding.
package sema

import (
	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/source"
)

// Checker walks one file with an explicit context stack.
type Checker struct {
	arenas   *ast.Builder
	reporter diag.Reporter

	inTypeAlias bool
	compDepth   int
}

// Check runs the semantic syntax pass over a parsed file.
func Check(arenas *ast.Builder, fileID ast.FileID, reporter diag.Reporter) {
	file := arenas.Files.Get(fileID)
	if file == nil {
		return
	}
	c := Checker{arenas: arenas, reporter: reporter}
	for _, id := range file.Body {
		c.walkStmt(id)
	}
}

func (c *Checker) emit(code diag.Code, sp source.Span, msg string) {
	if c.reporter == nil {
		return
	}
	c.reporter.Report(code, diag.SevError, sp, msg, nil)
}

func (c *Checker) walkStmt(id ast.StmtID) {
	stmt := c.arenas.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtExpr:
		d, _ := c.arenas.Stmts.ExprStmt(id)
		c.walkExpr(d.Value)

	case ast.StmtAssign:
		d, _ := c.arenas.Stmts.Assign(id)
		for _, t := range d.Targets {
			c.walkExpr(t)
		}
		c.walkExpr(d.Value)

	case ast.StmtAugAssign:
		d, _ := c.arenas.Stmts.AugAssign(id)
		c.walkExpr(d.Target)
		c.walkExpr(d.Value)

	case ast.StmtAnnAssign:
		d, _ := c.arenas.Stmts.AnnAssign(id)
		c.walkExpr(d.Target)
		c.walkExpr(d.Annotation)
		c.walkExpr(d.Value)

	case ast.StmtTypeAlias:
		d, _ := c.arenas.Stmts.TypeAlias(id)
		for _, tp := range d.TypeParams {
			c.walkTypeAliasValue(tp.Bound)
			c.walkTypeAliasValue(tp.Default)
		}
		c.walkTypeAliasValue(d.Value)

	case ast.StmtReturn:
		d, _ := c.arenas.Stmts.Return(id)
		c.walkExpr(d.Value)

	case ast.StmtDelete:
		d, _ := c.arenas.Stmts.Delete(id)
		for _, t := range d.Targets {
			c.walkExpr(t)
		}

	case ast.StmtAssert:
		d, _ := c.arenas.Stmts.Assert(id)
		c.walkExpr(d.Test)
		c.walkExpr(d.Msg)

	case ast.StmtRaise:
		d, _ := c.arenas.Stmts.Raise(id)
		c.walkExpr(d.Exc)
		c.walkExpr(d.Cause)

	case ast.StmtIf:
		d, _ := c.arenas.Stmts.If(id)
		c.walkExpr(d.Cond)
		c.walkBody(d.Body)
		c.walkBody(d.Else)

	case ast.StmtWhile:
		d, _ := c.arenas.Stmts.While(id)
		c.walkExpr(d.Cond)
		c.walkBody(d.Body)
		c.walkBody(d.Else)

	case ast.StmtFor:
		d, _ := c.arenas.Stmts.For(id)
		c.walkExpr(d.Target)
		c.walkExpr(d.Iter)
		c.walkBody(d.Body)
		c.walkBody(d.Else)

	case ast.StmtWith:
		d, _ := c.arenas.Stmts.With(id)
		for _, item := range d.Items {
			c.walkExpr(item.Ctx)
			c.walkExpr(item.Vars)
		}
		c.walkBody(d.Body)

	case ast.StmtTry:
		d, _ := c.arenas.Stmts.Try(id)
		c.walkBody(d.Body)
		for _, h := range d.Handlers {
			c.walkExpr(h.Type)
			c.walkBody(h.Body)
		}
		c.walkBody(d.Else)
		c.walkBody(d.Finally)

	case ast.StmtFunctionDef:
		d, _ := c.arenas.Stmts.FunctionDef(id)
		for _, dec := range d.Decorators {
			c.walkExpr(dec)
		}
		c.walkParams(d.Params)
		c.walkExpr(d.Returns)
		c.walkBody(d.Body)

	case ast.StmtClassDef:
		d, _ := c.arenas.Stmts.ClassDef(id)
		for _, dec := range d.Decorators {
			c.walkExpr(dec)
		}
		for _, b := range d.Bases {
			c.walkExpr(b)
		}
		for _, kw := range d.Keywords {
			c.walkExpr(kw.Value)
		}
		c.walkBody(d.Body)
	}
}

func (c *Checker) walkBody(body []ast.StmtID) {
	for _, id := range body {
		c.walkStmt(id)
	}
}

func (c *Checker) walkParams(ps ast.Params) {
	walkOne := func(id ast.ParamID) {
		if !id.IsValid() {
			return
		}
		param := c.arenas.Param(id)
		c.walkExpr(param.Annotation)
		c.walkExpr(param.Default)
	}
	for _, id := range ps.PosOnly {
		walkOne(id)
	}
	for _, id := range ps.Args {
		walkOne(id)
	}
	walkOne(ps.VarArg)
	for _, id := range ps.KwOnly {
		walkOne(id)
	}
	walkOne(ps.KwArg)
}

// walkTypeAliasValue enters type-alias context for one subexpression.
func (c *Checker) walkTypeAliasValue(id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	saved := c.inTypeAlias
	c.inTypeAlias = true
	c.walkExpr(id)
	c.inTypeAlias = saved
}

func (c *Checker) walkExpr(id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	e := c.arenas.Exprs.Get(id)
	if e == nil {
		return
	}

	switch e.Kind {
	case ast.ExprYield, ast.ExprYieldFrom:
		if c.inTypeAlias {
			c.emit(diag.SemYieldInTypeAlias, e.Span,
				"yield expression cannot be used within a type alias")
		}
		if c.compDepth > 0 {
			c.emit(diag.SemYieldInComprehension, e.Span,
				"yield expression cannot be used within a comprehension")
		}
		d, _ := c.arenas.Exprs.Yield(id)
		c.walkExpr(d.Value)

	case ast.ExprAwait:
		if c.inTypeAlias {
			c.emit(diag.SemAwaitInTypeAlias, e.Span,
				"await expression cannot be used within a type alias")
		}
		d, _ := c.arenas.Exprs.Yield(id)
		c.walkExpr(d.Value)

	case ast.ExprNamed:
		if c.inTypeAlias {
			c.emit(diag.SemNamedExprInTypeAlias, e.Span,
				"named expression cannot be used within a type alias")
		}
		d, _ := c.arenas.Exprs.Named(id)
		c.walkExpr(d.Target)
		c.walkExpr(d.Value)

	case ast.ExprListComp, ast.ExprSetComp, ast.ExprDictComp, ast.ExprGenerator:
		d, _ := c.arenas.Exprs.Comp(id)
		c.compDepth++
		c.walkExpr(d.Elt)
		c.walkExpr(d.Value)
		for _, cl := range d.Clauses {
			c.walkExpr(cl.Target)
			c.walkExpr(cl.Iter)
			for _, cond := range cl.Ifs {
				c.walkExpr(cond)
			}
		}
		c.compDepth--

	case ast.ExprLambda:
		d, _ := c.arenas.Exprs.Lambda(id)
		c.walkParams(d.Params)
		// The lambda body is a new function scope; comprehension context
		// does not cross it.
		saved := c.compDepth
		c.compDepth = 0
		c.walkExpr(d.Body)
		c.compDepth = saved

	case ast.ExprTuple, ast.ExprList, ast.ExprSet:
		d, _ := c.arenas.Exprs.Seq(id)
		for _, el := range d.Elems {
			c.walkExpr(el)
		}

	case ast.ExprDict:
		d, _ := c.arenas.Exprs.Dict(id)
		for _, item := range d.Items {
			c.walkExpr(item.Key)
			c.walkExpr(item.Value)
		}

	case ast.ExprStarred:
		d, _ := c.arenas.Exprs.Starred(id)
		c.walkExpr(d.Value)

	case ast.ExprUnary:
		d, _ := c.arenas.Exprs.Unary(id)
		c.walkExpr(d.Operand)

	case ast.ExprBinary:
		d, _ := c.arenas.Exprs.Binary(id)
		c.walkExpr(d.Left)
		c.walkExpr(d.Right)

	case ast.ExprBool:
		d, _ := c.arenas.Exprs.Bool(id)
		for _, v := range d.Values {
			c.walkExpr(v)
		}

	case ast.ExprCompare:
		d, _ := c.arenas.Exprs.Compare(id)
		c.walkExpr(d.Left)
		for _, cmp := range d.Comparators {
			c.walkExpr(cmp)
		}

	case ast.ExprCall:
		d, _ := c.arenas.Exprs.Call(id)
		c.walkExpr(d.Func)
		for _, a := range d.Args {
			c.walkExpr(a)
		}
		for _, kw := range d.Keywords {
			c.walkExpr(kw.Value)
		}

	case ast.ExprAttribute:
		d, _ := c.arenas.Exprs.Attribute(id)
		c.walkExpr(d.Value)

	case ast.ExprSubscript:
		d, _ := c.arenas.Exprs.Subscript(id)
		c.walkExpr(d.Value)
		c.walkExpr(d.Index)

	case ast.ExprSlice:
		d, _ := c.arenas.Exprs.Slice(id)
		c.walkExpr(d.Lower)
		c.walkExpr(d.Upper)
		c.walkExpr(d.Step)

	case ast.ExprIfExp:
		d, _ := c.arenas.Exprs.IfExp(id)
		c.walkExpr(d.Body)
		c.walkExpr(d.Cond)
		c.walkExpr(d.Else)

	case ast.ExprString:
		d, _ := c.arenas.Exprs.String(id)
		for _, part := range d.Parts {
			c.walkFStringElems(part.Elems)
		}
	}
}

func (c *Checker) walkFStringElems(elems []ast.FStringElem) {
	for _, el := range elems {
		if el.Kind != ast.FStringExpr {
			continue
		}
		c.walkExpr(el.Value)
		c.walkFStringElems(el.FormatSpec)
	}
}
