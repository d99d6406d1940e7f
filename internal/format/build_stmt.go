package format

import (
	"strings"

	"krait/internal/ast"
	"krait/internal/source"
)

func (fb *fileBuilder) stmt(id ast.StmtID) DocID {
	st := fb.builder.Stmts.Get(id)
	if st == nil {
		return fb.docs.Text("")
	}
	s := fb.builder.Stmts
	switch st.Kind {
	case ast.StmtPass:
		return fb.docs.Text("pass")
	case ast.StmtBreak:
		return fb.docs.Text("break")
	case ast.StmtContinue:
		return fb.docs.Text("continue")

	case ast.StmtExpr:
		d, _ := s.ExprStmt(id)
		return fb.exprList(d.Value)

	case ast.StmtAssign:
		d, _ := s.Assign(id)
		var kids []DocID
		for _, t := range d.Targets {
			kids = append(kids, fb.exprList(t), fb.docs.Text(" = "))
		}
		kids = append(kids, fb.exprList(d.Value))
		return fb.docs.ConcatList(kids)

	case ast.StmtAugAssign:
		d, _ := s.AugAssign(id)
		return fb.docs.Concat(
			fb.expr(d.Target, precLowest),
			fb.docs.Text(" "+d.Op.String()+"= "),
			fb.exprList(d.Value),
		)

	case ast.StmtAnnAssign:
		d, _ := s.AnnAssign(id)
		kids := []DocID{
			fb.expr(d.Target, precLowest),
			fb.docs.Text(": "),
			fb.expr(d.Annotation, precLowest),
		}
		if d.Value.IsValid() {
			kids = append(kids, fb.docs.Text(" = "), fb.exprList(d.Value))
		}
		return fb.docs.ConcatList(kids)

	case ast.StmtTypeAlias:
		d, _ := s.TypeAlias(id)
		kids := []DocID{fb.docs.Text("type "), fb.expr(d.Name, precLowest)}
		if len(d.TypeParams) > 0 {
			kids = append(kids, fb.typeParams(d.TypeParams))
		}
		kids = append(kids, fb.docs.Text(" = "), fb.expr(d.Value, precLowest))
		return fb.docs.ConcatList(kids)

	case ast.StmtReturn:
		d, _ := s.Return(id)
		if !d.Value.IsValid() {
			return fb.docs.Text("return")
		}
		return fb.docs.Concat(fb.docs.Text("return "), fb.exprList(d.Value))

	case ast.StmtDelete:
		d, _ := s.Delete(id)
		kids := []DocID{fb.docs.Text("del ")}
		for i, t := range d.Targets {
			if i > 0 {
				kids = append(kids, fb.docs.Text(", "))
			}
			kids = append(kids, fb.expr(t, precLowest))
		}
		return fb.docs.ConcatList(kids)

	case ast.StmtImport:
		// Plain imports never wrap; a long line stays long.
		d, _ := s.Import(id)
		names := make([]string, len(d.Names))
		for i, a := range d.Names {
			names[i] = fb.aliasText(a)
		}
		return fb.docs.Text("import " + strings.Join(names, ", "))

	case ast.StmtImportFrom:
		return fb.importFrom(id)

	case ast.StmtGlobal, ast.StmtNonlocal:
		d, _ := s.Names(id)
		kw := "global "
		if st.Kind == ast.StmtNonlocal {
			kw = "nonlocal "
		}
		names := make([]string, len(d.Names))
		for i, n := range d.Names {
			names[i] = fb.lookup(n)
		}
		return fb.docs.Text(kw + strings.Join(names, ", "))

	case ast.StmtAssert:
		d, _ := s.Assert(id)
		kids := []DocID{fb.docs.Text("assert "), fb.expr(d.Test, precLambda)}
		if d.Msg.IsValid() {
			kids = append(kids, fb.docs.Text(", "), fb.expr(d.Msg, precLambda))
		}
		return fb.docs.ConcatList(kids)

	case ast.StmtRaise:
		d, _ := s.Raise(id)
		if !d.Exc.IsValid() {
			return fb.docs.Text("raise")
		}
		kids := []DocID{fb.docs.Text("raise "), fb.expr(d.Exc, precLambda)}
		if d.Cause.IsValid() {
			kids = append(kids, fb.docs.Text(" from "), fb.expr(d.Cause, precLambda))
		}
		return fb.docs.ConcatList(kids)

	case ast.StmtIf:
		return fb.ifStmt(id, false)

	case ast.StmtWhile:
		d, _ := s.While(id)
		header := fb.docs.Concat(fb.docs.Text("while "), fb.expr(d.Cond, precLowest))
		kids := []DocID{fb.suite(header, fb.exprEnd(d.Cond), d.Body)}
		if len(d.Else) > 0 {
			kids = append(kids, fb.docs.HardBreak(), fb.suite(fb.docs.Text("else"), 0, d.Else))
		}
		return fb.docs.ConcatList(kids)

	case ast.StmtFor:
		d, _ := s.For(id)
		kw := "for "
		if d.IsAsync {
			kw = "async for "
		}
		header := fb.docs.Concat(
			fb.docs.Text(kw),
			fb.exprList(d.Target),
			fb.docs.Text(" in "),
			fb.exprList(d.Iter),
		)
		kids := []DocID{fb.suite(header, fb.exprEnd(d.Iter), d.Body)}
		if len(d.Else) > 0 {
			kids = append(kids, fb.docs.HardBreak(), fb.suite(fb.docs.Text("else"), 0, d.Else))
		}
		return fb.docs.ConcatList(kids)

	case ast.StmtWith:
		d, _ := s.With(id)
		kw := "with "
		if d.IsAsync {
			kw = "async with "
		}
		hk := []DocID{fb.docs.Text(kw)}
		var lastEnd uint32
		for i, item := range d.Items {
			if i > 0 {
				hk = append(hk, fb.docs.Text(", "))
			}
			hk = append(hk, fb.expr(item.Ctx, precLambda))
			lastEnd = fb.exprEnd(item.Ctx)
			if item.Vars.IsValid() {
				hk = append(hk, fb.docs.Text(" as "), fb.expr(item.Vars, precPostfix))
				lastEnd = fb.exprEnd(item.Vars)
			}
		}
		return fb.suite(fb.docs.ConcatList(hk), lastEnd, d.Body)

	case ast.StmtTry:
		return fb.tryStmt(id)

	case ast.StmtFunctionDef:
		return fb.funcDef(id)

	case ast.StmtClassDef:
		return fb.classDef(id)

	default:
		// Recovery placeholder: reproduce the source slice verbatim.
		return fb.docs.Text(fb.sourceSlice(st.Span.Start, st.Span.End))
	}
}

// ifStmt flattens the nested elif representation back into an
// if/elif/else chain at one indent level.
func (fb *fileBuilder) ifStmt(id ast.StmtID, asElif bool) DocID {
	d, _ := fb.builder.Stmts.If(id)
	kw := "if "
	if asElif {
		kw = "elif "
	}
	header := fb.docs.Concat(fb.docs.Text(kw), fb.expr(d.Cond, precLowest))
	kids := []DocID{fb.suite(header, fb.exprEnd(d.Cond), d.Body)}

	if len(d.Else) == 1 {
		if elif, ok := fb.builder.Stmts.If(d.Else[0]); ok && elif.IsElif {
			kids = append(kids, fb.docs.HardBreak(), fb.ifStmt(d.Else[0], true))
			return fb.docs.ConcatList(kids)
		}
	}
	if len(d.Else) > 0 {
		kids = append(kids, fb.docs.HardBreak(), fb.suite(fb.docs.Text("else"), 0, d.Else))
	}
	return fb.docs.ConcatList(kids)
}

func (fb *fileBuilder) tryStmt(id ast.StmtID) DocID {
	d, _ := fb.builder.Stmts.Try(id)
	kids := []DocID{fb.suite(fb.docs.Text("try"), 0, d.Body)}
	for _, h := range d.Handlers {
		kw := "except"
		if h.IsStar {
			kw = "except*"
		}
		hk := []DocID{fb.docs.Text(kw)}
		var end uint32
		if h.Type.IsValid() {
			hk = append(hk, fb.docs.Text(" "), fb.expr(h.Type, precLambda))
			end = fb.exprEnd(h.Type)
		}
		if h.Name != source.NoStringID {
			hk = append(hk, fb.docs.Text(" as "+fb.lookup(h.Name)))
		}
		kids = append(kids, fb.docs.HardBreak(), fb.suite(fb.docs.ConcatList(hk), end, h.Body))
	}
	if len(d.Else) > 0 {
		kids = append(kids, fb.docs.HardBreak(), fb.suite(fb.docs.Text("else"), 0, d.Else))
	}
	if len(d.Finally) > 0 {
		kids = append(kids, fb.docs.HardBreak(), fb.suite(fb.docs.Text("finally"), 0, d.Finally))
	}
	return fb.docs.ConcatList(kids)
}

func (fb *fileBuilder) funcDef(id ast.StmtID) DocID {
	d, _ := fb.builder.Stmts.FunctionDef(id)
	var kids []DocID
	for _, dec := range d.Decorators {
		kids = append(kids, fb.docs.Text("@"), fb.expr(dec, precLowest), fb.docs.HardBreak())
	}
	kw := "def "
	if d.IsAsync {
		kw = "async def "
	}
	hk := []DocID{fb.docs.Text(kw + fb.lookup(d.Name))}
	if len(d.TypeParams) > 0 {
		hk = append(hk, fb.typeParams(d.TypeParams))
	}
	hk = append(hk, fb.paramList(d.Params))
	if d.Returns.IsValid() {
		hk = append(hk, fb.docs.Text(" -> "), fb.expr(d.Returns, precLowest))
	}
	kids = append(kids, fb.suite(fb.docs.ConcatList(hk), fb.funcHeaderEnd(d), d.Body))
	return fb.docs.ConcatList(kids)
}

// funcHeaderEnd locates the end of the header colon so a trailing
// comment on the def line stays on it.
func (fb *fileBuilder) funcHeaderEnd(d *ast.StmtFunctionDefData) uint32 {
	anchor := d.NameSpan.End
	if n := len(d.TypeParams); n > 0 {
		anchor = fb.typeParamEnd(d.TypeParams[n-1])
	}
	if end := fb.paramsEnd(d.Params); end > anchor {
		anchor = end
	}
	if d.Returns.IsValid() {
		anchor = fb.exprEnd(d.Returns)
	}
	return fb.colonEnd(anchor)
}

func (fb *fileBuilder) classHeaderEnd(d *ast.StmtClassDefData) uint32 {
	anchor := d.NameSpan.End
	if n := len(d.TypeParams); n > 0 {
		anchor = fb.typeParamEnd(d.TypeParams[n-1])
	}
	if n := len(d.Bases); n > 0 {
		anchor = fb.exprEnd(d.Bases[n-1])
	}
	if n := len(d.Keywords); n > 0 {
		anchor = fb.exprEnd(d.Keywords[n-1].Value)
	}
	return fb.colonEnd(anchor)
}

// colonEnd scans forward from the last header element to the suite
// colon. When a comment interrupts the header the resulting offset sits
// past that comment's start, so the trailing check declines it.
func (fb *fileBuilder) colonEnd(from uint32) uint32 {
	content := fb.sf.Content
	for i := int(from); i < len(content); i++ {
		if content[i] == ':' {
			return uint32(i) + 1
		}
	}
	return from
}

func (fb *fileBuilder) paramsEnd(p ast.Params) uint32 {
	if p.KwArg.IsValid() {
		return fb.paramEnd(p.KwArg)
	}
	if n := len(p.KwOnly); n > 0 {
		return fb.paramEnd(p.KwOnly[n-1])
	}
	if p.VarArg.IsValid() {
		return fb.paramEnd(p.VarArg)
	}
	if n := len(p.Args); n > 0 {
		return fb.paramEnd(p.Args[n-1])
	}
	if n := len(p.PosOnly); n > 0 {
		return fb.paramEnd(p.PosOnly[n-1])
	}
	return 0
}

func (fb *fileBuilder) paramEnd(id ast.ParamID) uint32 {
	p := fb.builder.Param(id)
	end := p.Span.End
	if p.Annotation.IsValid() && fb.exprEnd(p.Annotation) > end {
		end = fb.exprEnd(p.Annotation)
	}
	if p.Default.IsValid() && fb.exprEnd(p.Default) > end {
		end = fb.exprEnd(p.Default)
	}
	return end
}

func (fb *fileBuilder) typeParamEnd(tp ast.TypeParam) uint32 {
	end := tp.Span.End
	if tp.Bound.IsValid() && fb.exprEnd(tp.Bound) > end {
		end = fb.exprEnd(tp.Bound)
	}
	if tp.Default.IsValid() && fb.exprEnd(tp.Default) > end {
		end = fb.exprEnd(tp.Default)
	}
	return end
}

func (fb *fileBuilder) classDef(id ast.StmtID) DocID {
	d, _ := fb.builder.Stmts.ClassDef(id)
	var kids []DocID
	for _, dec := range d.Decorators {
		kids = append(kids, fb.docs.Text("@"), fb.expr(dec, precLowest), fb.docs.HardBreak())
	}
	hk := []DocID{fb.docs.Text("class " + fb.lookup(d.Name))}
	if len(d.TypeParams) > 0 {
		hk = append(hk, fb.typeParams(d.TypeParams))
	}
	// An empty argument list is dropped: `class Foo():` prints as
	// `class Foo:`.
	if len(d.Bases) > 0 || len(d.Keywords) > 0 {
		var items []DocID
		for _, b := range d.Bases {
			items = append(items, fb.expr(b, precLambda))
		}
		for _, kw := range d.Keywords {
			items = append(items, fb.keyword(kw))
		}
		hk = append(hk, fb.wrapList("(", items, ")"))
	}
	kids = append(kids, fb.suite(fb.docs.ConcatList(hk), fb.classHeaderEnd(d), d.Body))
	return fb.docs.ConcatList(kids)
}

// importFrom renders a from-import. The alias list gains parentheses only
// when it has to break.
func (fb *fileBuilder) importFrom(id ast.StmtID) DocID {
	d, _ := fb.builder.Stmts.ImportFrom(id)
	head := "from " + strings.Repeat(".", int(d.Level)) + fb.lookup(d.Module) + " import "
	if d.Star {
		return fb.docs.Text(head + "*")
	}
	aliases := fb.importAliases(d.Names)
	indented := append([]DocID{fb.docs.SoftBreak()}, aliases...)
	indented = append(indented, fb.docs.IfBroken([]DocID{fb.docs.Text(",")}, nil))
	inner := []DocID{
		fb.docs.IfBroken([]DocID{fb.docs.Text("(")}, nil),
		fb.docs.Indent(indented...),
		fb.docs.SoftBreak(),
		fb.docs.IfBroken([]DocID{fb.docs.Text(")")}, nil),
	}
	return fb.docs.Concat(fb.docs.Text(head), fb.docs.Group(inner...))
}

func (fb *fileBuilder) importAliases(names []ast.ImportAlias) []DocID {
	var kids []DocID
	for i, a := range names {
		if i > 0 {
			kids = append(kids, fb.docs.Text(","), fb.docs.Space())
		}
		kids = append(kids, fb.docs.Text(fb.aliasText(a)))
	}
	return kids
}

func (fb *fileBuilder) aliasText(a ast.ImportAlias) string {
	text := fb.lookup(a.Name)
	if a.AsName != source.NoStringID {
		text += " as " + fb.lookup(a.AsName)
	}
	return text
}

func (fb *fileBuilder) typeParams(params []ast.TypeParam) DocID {
	var items []DocID
	for _, tp := range params {
		var kids []DocID
		switch tp.Kind {
		case ast.TypeParamStar:
			kids = append(kids, fb.docs.Text("*"))
		case ast.TypeParamDoubleStar:
			kids = append(kids, fb.docs.Text("**"))
		}
		kids = append(kids, fb.docs.Text(fb.lookup(tp.Name)))
		if tp.Bound.IsValid() {
			kids = append(kids, fb.docs.Text(": "), fb.expr(tp.Bound, precLambda))
		}
		if tp.Default.IsValid() {
			kids = append(kids, fb.docs.Text(" = "), fb.expr(tp.Default, precLambda))
		}
		items = append(items, fb.docs.ConcatList(kids))
	}
	return fb.wrapList("[", items, "]")
}

// paramList renders a def parameter list with section markers.
func (fb *fileBuilder) paramList(params ast.Params) DocID {
	items := fb.paramItems(params, true)
	return fb.wrapList("(", items, ")")
}

func (fb *fileBuilder) paramItems(params ast.Params, annotated bool) []DocID {
	var items []DocID
	for _, pid := range params.PosOnly {
		items = append(items, fb.param(pid, annotated))
	}
	if len(params.PosOnly) > 0 {
		items = append(items, fb.docs.Text("/"))
	}
	for _, pid := range params.Args {
		items = append(items, fb.param(pid, annotated))
	}
	switch {
	case params.VarArg.IsValid():
		items = append(items, fb.docs.Concat(fb.docs.Text("*"), fb.param(params.VarArg, annotated)))
	case len(params.KwOnly) > 0:
		items = append(items, fb.docs.Text("*"))
	}
	for _, pid := range params.KwOnly {
		items = append(items, fb.param(pid, annotated))
	}
	if params.KwArg.IsValid() {
		items = append(items, fb.docs.Concat(fb.docs.Text("**"), fb.param(params.KwArg, annotated)))
	}
	return items
}

// param renders one parameter. Defaults get spaces around '=' only when
// an annotation is present.
func (fb *fileBuilder) param(id ast.ParamID, annotated bool) DocID {
	p := fb.builder.Param(id)
	kids := []DocID{fb.docs.Text(fb.lookup(p.Name))}
	eq := "="
	if annotated && p.Annotation.IsValid() {
		kids = append(kids, fb.docs.Text(": "), fb.expr(p.Annotation, precLambda))
		eq = " = "
	}
	if p.Default.IsValid() {
		kids = append(kids, fb.docs.Text(eq), fb.expr(p.Default, precLambda))
	}
	return fb.docs.ConcatList(kids)
}

func (fb *fileBuilder) keyword(kw ast.Keyword) DocID {
	if kw.Name == source.NoStringID {
		return fb.docs.Concat(fb.docs.Text("**"), fb.expr(kw.Value, precLambda))
	}
	return fb.docs.Concat(fb.docs.Text(fb.lookup(kw.Name)+"="), fb.expr(kw.Value, precLambda))
}

func (fb *fileBuilder) exprEnd(id ast.ExprID) uint32 {
	e := fb.builder.Exprs.Get(id)
	if e == nil {
		return 0
	}
	return e.Span.End
}

func (fb *fileBuilder) sourceSlice(start, end uint32) string {
	if int(end) > len(fb.sf.Content) || start > end {
		return ""
	}
	return strings.TrimRight(string(fb.sf.Content[start:end]), " \t\r\n")
}
