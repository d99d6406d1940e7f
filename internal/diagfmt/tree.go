package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"krait/internal/ast"
	"krait/internal/source"
)

// DumpTree renders the syntax tree of one file as a deterministic
// indented dump. The span-free form is the structural equality oracle
// used by tests: two trees are equal iff their dumps match byte for byte.
func DumpTree(builder *ast.Builder, fileID ast.FileID, opts TreeOpts) string {
	var sb strings.Builder
	_ = WriteTree(&sb, builder, fileID, opts)
	return sb.String()
}

// WriteTree writes the tree dump of one file to w.
func WriteTree(w io.Writer, builder *ast.Builder, fileID ast.FileID, opts TreeOpts) error {
	file := builder.Files.Get(fileID)
	if file == nil {
		_, err := fmt.Fprintf(w, "File[%d]: <nil>\n", fileID)
		return err
	}
	t := treePrinter{w: w, arenas: builder, opts: opts}
	t.line("File%s", t.span(file.Span))
	t.depth++
	for _, id := range file.Body {
		t.stmt(id)
	}
	t.depth--
	return t.err
}

type treePrinter struct {
	w      io.Writer
	arenas *ast.Builder
	opts   TreeOpts
	depth  int
	err    error
}

func (t *treePrinter) line(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "%s%s\n", strings.Repeat("  ", t.depth), fmt.Sprintf(format, args...))
}

func (t *treePrinter) span(sp source.Span) string {
	if !t.opts.WithSpans {
		return ""
	}
	return fmt.Sprintf(" @%d..%d", sp.Start, sp.End)
}

func (t *treePrinter) name(id source.StringID) string {
	return t.arenas.Lookup(id)
}

// field prints `label:` and renders the expression under it. A missing
// expression prints nothing so optional fields stay stable.
func (t *treePrinter) field(label string, id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	t.line("%s:", label)
	t.depth++
	t.expr(id)
	t.depth--
}

func (t *treePrinter) body(label string, stmts []ast.StmtID) {
	if len(stmts) == 0 {
		return
	}
	t.line("%s:", label)
	t.depth++
	for _, id := range stmts {
		t.stmt(id)
	}
	t.depth--
}

func (t *treePrinter) stmt(id ast.StmtID) {
	stmt := t.arenas.Stmts.Get(id)
	if stmt == nil {
		t.line("<nil stmt>")
		return
	}
	sp := t.span(stmt.Span)

	switch stmt.Kind {
	case ast.StmtError:
		t.line("ErrorStmt%s", sp)

	case ast.StmtPass:
		t.line("Pass%s", sp)
	case ast.StmtBreak:
		t.line("Break%s", sp)
	case ast.StmtContinue:
		t.line("Continue%s", sp)

	case ast.StmtExpr:
		d, _ := t.arenas.Stmts.ExprStmt(id)
		t.line("ExprStmt%s", sp)
		t.depth++
		t.expr(d.Value)
		t.depth--

	case ast.StmtAssign:
		d, _ := t.arenas.Stmts.Assign(id)
		t.line("Assign%s", sp)
		t.depth++
		for _, target := range d.Targets {
			t.field("Target", target)
		}
		t.field("Value", d.Value)
		t.depth--

	case ast.StmtAugAssign:
		d, _ := t.arenas.Stmts.AugAssign(id)
		t.line("AugAssign(%s)%s", d.Op, sp)
		t.depth++
		t.field("Target", d.Target)
		t.field("Value", d.Value)
		t.depth--

	case ast.StmtAnnAssign:
		d, _ := t.arenas.Stmts.AnnAssign(id)
		t.line("AnnAssign%s", sp)
		t.depth++
		t.field("Target", d.Target)
		t.field("Annotation", d.Annotation)
		t.field("Value", d.Value)
		t.depth--

	case ast.StmtTypeAlias:
		d, _ := t.arenas.Stmts.TypeAlias(id)
		t.line("TypeAlias%s", sp)
		t.depth++
		t.field("Name", d.Name)
		t.typeParams(d.TypeParams)
		t.field("Value", d.Value)
		t.depth--

	case ast.StmtReturn:
		d, _ := t.arenas.Stmts.Return(id)
		t.line("Return%s", sp)
		t.depth++
		t.field("Value", d.Value)
		t.depth--

	case ast.StmtDelete:
		d, _ := t.arenas.Stmts.Delete(id)
		t.line("Delete%s", sp)
		t.depth++
		for _, target := range d.Targets {
			t.field("Target", target)
		}
		t.depth--

	case ast.StmtImport:
		d, _ := t.arenas.Stmts.Import(id)
		t.line("Import%s", sp)
		t.depth++
		for _, alias := range d.Names {
			t.importAlias(alias)
		}
		t.depth--

	case ast.StmtImportFrom:
		d, _ := t.arenas.Stmts.ImportFrom(id)
		label := fmt.Sprintf("ImportFrom(module=%s, level=%d", t.name(d.Module), d.Level)
		if d.Star {
			label += ", star"
		}
		t.line("%s)%s", label, sp)
		t.depth++
		for _, alias := range d.Names {
			t.importAlias(alias)
		}
		t.depth--

	case ast.StmtGlobal, ast.StmtNonlocal:
		d, _ := t.arenas.Stmts.Names(id)
		kind := "Global"
		if stmt.Kind == ast.StmtNonlocal {
			kind = "Nonlocal"
		}
		names := make([]string, len(d.Names))
		for i, n := range d.Names {
			names[i] = t.name(n)
		}
		t.line("%s(%s)%s", kind, strings.Join(names, ", "), sp)

	case ast.StmtAssert:
		d, _ := t.arenas.Stmts.Assert(id)
		t.line("Assert%s", sp)
		t.depth++
		t.field("Test", d.Test)
		t.field("Msg", d.Msg)
		t.depth--

	case ast.StmtRaise:
		d, _ := t.arenas.Stmts.Raise(id)
		t.line("Raise%s", sp)
		t.depth++
		t.field("Exc", d.Exc)
		t.field("Cause", d.Cause)
		t.depth--

	case ast.StmtIf:
		d, _ := t.arenas.Stmts.If(id)
		kind := "If"
		if d.IsElif {
			kind = "Elif"
		}
		t.line("%s%s", kind, sp)
		t.depth++
		t.field("Cond", d.Cond)
		t.body("Body", d.Body)
		t.body("Else", d.Else)
		t.depth--

	case ast.StmtWhile:
		d, _ := t.arenas.Stmts.While(id)
		t.line("While%s", sp)
		t.depth++
		t.field("Cond", d.Cond)
		t.body("Body", d.Body)
		t.body("Else", d.Else)
		t.depth--

	case ast.StmtFor:
		d, _ := t.arenas.Stmts.For(id)
		kind := "For"
		if d.IsAsync {
			kind = "AsyncFor"
		}
		t.line("%s%s", kind, sp)
		t.depth++
		t.field("Target", d.Target)
		t.field("Iter", d.Iter)
		t.body("Body", d.Body)
		t.body("Else", d.Else)
		t.depth--

	case ast.StmtWith:
		d, _ := t.arenas.Stmts.With(id)
		kind := "With"
		if d.IsAsync {
			kind = "AsyncWith"
		}
		t.line("%s%s", kind, sp)
		t.depth++
		for _, item := range d.Items {
			t.line("Item:")
			t.depth++
			t.field("Ctx", item.Ctx)
			t.field("Vars", item.Vars)
			t.depth--
		}
		t.body("Body", d.Body)
		t.depth--

	case ast.StmtTry:
		d, _ := t.arenas.Stmts.Try(id)
		t.line("Try%s", sp)
		t.depth++
		t.body("Body", d.Body)
		for _, h := range d.Handlers {
			kind := "Except"
			if h.IsStar {
				kind = "ExceptStar"
			}
			label := kind
			if h.Name != source.NoStringID {
				label = fmt.Sprintf("%s(as %s)", kind, t.name(h.Name))
			}
			t.line("%s%s", label, t.span(h.Span))
			t.depth++
			t.field("Type", h.Type)
			t.body("Body", h.Body)
			t.depth--
		}
		t.body("Else", d.Else)
		t.body("Finally", d.Finally)
		t.depth--

	case ast.StmtFunctionDef:
		d, _ := t.arenas.Stmts.FunctionDef(id)
		kind := "FunctionDef"
		if d.IsAsync {
			kind = "AsyncFunctionDef"
		}
		t.line("%s(%s)%s", kind, t.name(d.Name), sp)
		t.depth++
		for _, dec := range d.Decorators {
			t.field("Decorator", dec)
		}
		t.typeParams(d.TypeParams)
		t.params(d.Params)
		t.field("Returns", d.Returns)
		t.body("Body", d.Body)
		t.depth--

	case ast.StmtClassDef:
		d, _ := t.arenas.Stmts.ClassDef(id)
		t.line("ClassDef(%s)%s", t.name(d.Name), sp)
		t.depth++
		for _, dec := range d.Decorators {
			t.field("Decorator", dec)
		}
		t.typeParams(d.TypeParams)
		for _, base := range d.Bases {
			t.field("Base", base)
		}
		for _, kw := range d.Keywords {
			t.keyword(kw)
		}
		t.body("Body", d.Body)
		t.depth--

	default:
		t.line("Stmt(%d)%s", stmt.Kind, sp)
	}
}

func (t *treePrinter) importAlias(alias ast.ImportAlias) {
	label := t.name(alias.Name)
	if alias.AsName != source.NoStringID {
		label += " as " + t.name(alias.AsName)
	}
	t.line("Alias(%s)%s", label, t.span(alias.NameSpan))
}

func (t *treePrinter) typeParams(tps []ast.TypeParam) {
	if len(tps) == 0 {
		return
	}
	t.line("TypeParams:")
	t.depth++
	for _, tp := range tps {
		prefix := ""
		switch tp.Kind {
		case ast.TypeParamStar:
			prefix = "*"
		case ast.TypeParamDoubleStar:
			prefix = "**"
		}
		t.line("TypeParam(%s%s)%s", prefix, t.name(tp.Name), t.span(tp.Span))
		t.depth++
		t.field("Bound", tp.Bound)
		t.field("Default", tp.Default)
		t.depth--
	}
	t.depth--
}

func (t *treePrinter) params(ps ast.Params) {
	if len(ps.PosOnly) == 0 && len(ps.Args) == 0 && !ps.VarArg.IsValid() &&
		len(ps.KwOnly) == 0 && !ps.KwArg.IsValid() {
		return
	}
	t.line("Params:")
	t.depth++
	for _, id := range ps.PosOnly {
		t.param("PosOnly", id)
	}
	for _, id := range ps.Args {
		t.param("Arg", id)
	}
	if ps.VarArg.IsValid() {
		t.param("VarArg", ps.VarArg)
	}
	for _, id := range ps.KwOnly {
		t.param("KwOnly", id)
	}
	if ps.KwArg.IsValid() {
		t.param("KwArg", ps.KwArg)
	}
	t.depth--
}

func (t *treePrinter) param(label string, id ast.ParamID) {
	p := t.arenas.Param(id)
	if p == nil {
		return
	}
	t.line("%s(%s)%s", label, t.name(p.Name), t.span(p.Span))
	t.depth++
	t.field("Annotation", p.Annotation)
	t.field("Default", p.Default)
	t.depth--
}

func (t *treePrinter) keyword(kw ast.Keyword) {
	if kw.Name == source.NoStringID {
		t.field("KeywordStarStar", kw.Value)
		return
	}
	t.line("Keyword(%s):", t.name(kw.Name))
	t.depth++
	t.expr(kw.Value)
	t.depth--
}

func (t *treePrinter) expr(id ast.ExprID) {
	e := t.arenas.Exprs.Get(id)
	if e == nil {
		t.line("<nil expr>")
		return
	}
	sp := t.span(e.Span)

	switch e.Kind {
	case ast.ExprError:
		t.line("Error%s", sp)

	case ast.ExprName:
		d, _ := t.arenas.Exprs.Name(id)
		t.line("Name(%s, %s)%s", t.name(d.Name), ctxString(d.Ctx), sp)

	case ast.ExprNumber:
		d, _ := t.arenas.Exprs.Number(id)
		t.line("Number(%s, %s)%s", numberKindString(d.Kind), t.name(d.Text), sp)

	case ast.ExprConst:
		d, _ := t.arenas.Exprs.Const(id)
		t.line("Const(%s)%s", constKindString(d.Kind), sp)

	case ast.ExprString:
		d, _ := t.arenas.Exprs.String(id)
		t.line("String%s", sp)
		t.depth++
		for _, part := range d.Parts {
			t.stringPart(part)
		}
		t.depth--

	case ast.ExprTuple, ast.ExprList, ast.ExprSet:
		d, _ := t.arenas.Exprs.Seq(id)
		t.line("%s%s", seqKindString(e.Kind), sp)
		t.depth++
		for _, el := range d.Elems {
			t.expr(el)
		}
		t.depth--

	case ast.ExprDict:
		d, _ := t.arenas.Exprs.Dict(id)
		t.line("Dict%s", sp)
		t.depth++
		for _, item := range d.Items {
			if item.Key.IsValid() {
				t.field("Key", item.Key)
			} else {
				t.line("Key: **")
			}
			t.field("Value", item.Value)
		}
		t.depth--

	case ast.ExprStarred:
		d, _ := t.arenas.Exprs.Starred(id)
		t.line("Starred(%s)%s", ctxString(d.Ctx), sp)
		t.depth++
		t.expr(d.Value)
		t.depth--

	case ast.ExprUnary:
		d, _ := t.arenas.Exprs.Unary(id)
		t.line("Unary(%s)%s", d.Op, sp)
		t.depth++
		t.expr(d.Operand)
		t.depth--

	case ast.ExprBinary:
		d, _ := t.arenas.Exprs.Binary(id)
		t.line("Binary(%s)%s", d.Op, sp)
		t.depth++
		t.expr(d.Left)
		t.expr(d.Right)
		t.depth--

	case ast.ExprBool:
		d, _ := t.arenas.Exprs.Bool(id)
		t.line("Bool(%s)%s", d.Op, sp)
		t.depth++
		for _, v := range d.Values {
			t.expr(v)
		}
		t.depth--

	case ast.ExprCompare:
		d, _ := t.arenas.Exprs.Compare(id)
		ops := make([]string, len(d.Ops))
		for i, op := range d.Ops {
			ops[i] = op.String()
		}
		t.line("Compare(%s)%s", strings.Join(ops, ", "), sp)
		t.depth++
		t.expr(d.Left)
		for _, c := range d.Comparators {
			t.expr(c)
		}
		t.depth--

	case ast.ExprCall:
		d, _ := t.arenas.Exprs.Call(id)
		t.line("Call%s", sp)
		t.depth++
		t.field("Func", d.Func)
		for _, a := range d.Args {
			t.field("Arg", a)
		}
		for _, kw := range d.Keywords {
			t.keyword(kw)
		}
		t.depth--

	case ast.ExprAttribute:
		d, _ := t.arenas.Exprs.Attribute(id)
		t.line("Attribute(%s)%s", t.name(d.Attr), sp)
		t.depth++
		t.expr(d.Value)
		t.depth--

	case ast.ExprSubscript:
		d, _ := t.arenas.Exprs.Subscript(id)
		t.line("Subscript%s", sp)
		t.depth++
		t.field("Value", d.Value)
		t.field("Index", d.Index)
		t.depth--

	case ast.ExprSlice:
		d, _ := t.arenas.Exprs.Slice(id)
		t.line("Slice%s", sp)
		t.depth++
		t.field("Lower", d.Lower)
		t.field("Upper", d.Upper)
		t.field("Step", d.Step)
		t.depth--

	case ast.ExprLambda:
		d, _ := t.arenas.Exprs.Lambda(id)
		t.line("Lambda%s", sp)
		t.depth++
		t.params(d.Params)
		t.field("Body", d.Body)
		t.depth--

	case ast.ExprIfExp:
		d, _ := t.arenas.Exprs.IfExp(id)
		t.line("IfExp%s", sp)
		t.depth++
		t.field("Body", d.Body)
		t.field("Cond", d.Cond)
		t.field("Else", d.Else)
		t.depth--

	case ast.ExprYield, ast.ExprYieldFrom, ast.ExprAwait:
		d, _ := t.arenas.Exprs.Yield(id)
		kind := "Yield"
		switch e.Kind {
		case ast.ExprYieldFrom:
			kind = "YieldFrom"
		case ast.ExprAwait:
			kind = "Await"
		}
		t.line("%s%s", kind, sp)
		t.depth++
		if d.Value.IsValid() {
			t.expr(d.Value)
		}
		t.depth--

	case ast.ExprNamed:
		d, _ := t.arenas.Exprs.Named(id)
		t.line("Named%s", sp)
		t.depth++
		t.field("Target", d.Target)
		t.field("Value", d.Value)
		t.depth--

	case ast.ExprListComp, ast.ExprSetComp, ast.ExprDictComp, ast.ExprGenerator:
		d, _ := t.arenas.Exprs.Comp(id)
		t.line("%s%s", compKindString(e.Kind), sp)
		t.depth++
		t.field("Elt", d.Elt)
		t.field("Value", d.Value)
		for _, cl := range d.Clauses {
			kind := "For"
			if cl.IsAsync {
				kind = "AsyncFor"
			}
			t.line("%s:", kind)
			t.depth++
			t.field("Target", cl.Target)
			t.field("Iter", cl.Iter)
			for _, cond := range cl.Ifs {
				t.field("If", cond)
			}
			t.depth--
		}
		t.depth--

	default:
		t.line("Expr(%d)%s", e.Kind, sp)
	}
}

func (t *treePrinter) stringPart(part ast.StringPart) {
	var flags []string
	if part.Flags&ast.StringRaw != 0 {
		flags = append(flags, "raw")
	}
	if part.Flags&ast.StringBytes != 0 {
		flags = append(flags, "bytes")
	}
	if part.Flags&ast.StringFString != 0 {
		flags = append(flags, "fstring")
	}
	label := "Part"
	if len(flags) > 0 {
		label = fmt.Sprintf("Part(%s)", strings.Join(flags, ","))
	}
	t.line("%s %s%s", label, t.name(part.Text), t.span(part.Span))
	t.depth++
	t.fstringElems(part.Elems)
	t.depth--
}

func (t *treePrinter) fstringElems(elems []ast.FStringElem) {
	for _, el := range elems {
		switch el.Kind {
		case ast.FStringText:
			t.line("Text %q%s", t.name(el.Text), t.span(el.Span))
		case ast.FStringExpr:
			label := "Field"
			var mods []string
			if el.SelfDoc {
				mods = append(mods, "selfdoc")
			}
			if el.Conversion != 0 {
				mods = append(mods, "conv="+string(el.Conversion))
			}
			if len(mods) > 0 {
				label = fmt.Sprintf("Field(%s)", strings.Join(mods, ","))
			}
			t.line("%s%s", label, t.span(el.Span))
			t.depth++
			t.field("Value", el.Value)
			if len(el.FormatSpec) > 0 {
				t.line("FormatSpec:")
				t.depth++
				t.fstringElems(el.FormatSpec)
				t.depth--
			}
			t.depth--
		}
	}
}

func ctxString(ctx ast.ExprCtx) string {
	switch ctx {
	case ast.CtxStore:
		return "store"
	case ast.CtxDel:
		return "del"
	default:
		return "load"
	}
}

func numberKindString(k ast.NumberKind) string {
	switch k {
	case ast.NumFloat:
		return "float"
	case ast.NumComplex:
		return "complex"
	default:
		return "int"
	}
}

func constKindString(k ast.ConstKind) string {
	switch k {
	case ast.ConstNone:
		return "None"
	case ast.ConstTrue:
		return "True"
	case ast.ConstFalse:
		return "False"
	case ast.ConstEllipsis:
		return "..."
	default:
		return "?"
	}
}

func seqKindString(k ast.ExprKind) string {
	switch k {
	case ast.ExprList:
		return "List"
	case ast.ExprSet:
		return "Set"
	default:
		return "Tuple"
	}
}

func compKindString(k ast.ExprKind) string {
	switch k {
	case ast.ExprListComp:
		return "ListComp"
	case ast.ExprSetComp:
		return "SetComp"
	case ast.ExprDictComp:
		return "DictComp"
	default:
		return "Generator"
	}
}
