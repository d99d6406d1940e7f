package parser_test

import (
	"strings"
	"testing"

	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/lexer"
	"krait/internal/parser"
	"krait/internal/source"
)

// parseWith runs the lexer and parser over one virtual file.
func parseWith(t *testing.T, src string, opts parser.Options) (*ast.Builder, *ast.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.py", []byte(src))
	file := fs.Get(fileID)

	bag := diag.NewBag(64)
	reporter := &diag.BagReporter{Bag: bag}
	opts.Reporter = reporter

	lx := lexer.New(file, lexer.Options{Reporter: lexer.DiagAdapter{Next: reporter}})
	builder := ast.NewBuilder(ast.Hints{})
	result := parser.ParseFile(fs, lx, builder, opts)
	return builder, builder.Files.Get(result.File), bag
}

func parse(t *testing.T, src string) (*ast.Builder, *ast.File, *diag.Bag) {
	t.Helper()
	return parseWith(t, src, parser.Options{})
}

func diagMessages(bag *diag.Bag) []string {
	out := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID()+": "+d.Message)
	}
	return out
}

// spanOf locates needle in src and returns its byte range.
func spanOf(t *testing.T, src, needle string) (uint32, uint32) {
	t.Helper()
	idx := strings.Index(src, needle)
	if idx < 0 {
		t.Fatalf("needle %q not in source", needle)
	}
	return uint32(idx), uint32(idx + len(needle))
}

func expectClean(t *testing.T, src string, kinds ...ast.StmtKind) *ast.Builder {
	t.Helper()
	builder, file, bag := parse(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics for %q: %v", src, diagMessages(bag))
	}
	if len(file.Body) != len(kinds) {
		t.Fatalf("expected %d statements, got %d", len(kinds), len(file.Body))
	}
	for i, id := range file.Body {
		if got := builder.Stmts.Get(id).Kind; got != kinds[i] {
			t.Errorf("statement %d: expected kind %d, got %d", i, kinds[i], got)
		}
	}
	return builder
}

func TestSimpleStatements(t *testing.T) {
	tests := []struct {
		src  string
		kind ast.StmtKind
	}{
		{"x = 1\n", ast.StmtAssign},
		{"a = b = c\n", ast.StmtAssign},
		{"x += 1\n", ast.StmtAugAssign},
		{"x: int = 1\n", ast.StmtAnnAssign},
		{"x: int\n", ast.StmtAnnAssign},
		{"type Vec = list[float]\n", ast.StmtTypeAlias},
		{"f(1, 2)\n", ast.StmtExpr},
		{"pass\n", ast.StmtPass},
		{"del x, y\n", ast.StmtDelete},
		{"import os.path as p, sys\n", ast.StmtImport},
		{"from . import a, b\n", ast.StmtImportFrom},
		{"from ...pkg import (x as y,)\n", ast.StmtImportFrom},
		{"from m import *\n", ast.StmtImportFrom},
		{"global a, b\n", ast.StmtGlobal},
		{"nonlocal c\n", ast.StmtNonlocal},
		{"assert x, \"boom\"\n", ast.StmtAssert},
		{"raise ValueError(x) from err\n", ast.StmtRaise},
	}
	for _, tt := range tests {
		expectClean(t, tt.src, tt.kind)
	}
}

func TestSemicolonSeparatedStatements(t *testing.T) {
	expectClean(t, "a = 1; b = 2; pass\n",
		ast.StmtAssign, ast.StmtAssign, ast.StmtPass)
}

func TestCompoundStatements(t *testing.T) {
	tests := []struct {
		src  string
		kind ast.StmtKind
	}{
		{"if x:\n    pass\nelif y:\n    pass\nelse:\n    pass\n", ast.StmtIf},
		{"while x:\n    break\nelse:\n    pass\n", ast.StmtWhile},
		{"for i in xs:\n    continue\n", ast.StmtFor},
		{"async for i in xs:\n    pass\n", ast.StmtFor},
		{"with open(p) as f, lock:\n    pass\n", ast.StmtWith},
		{"try:\n    pass\nexcept ValueError as e:\n    pass\nfinally:\n    pass\n", ast.StmtTry},
		{"@dec\ndef f(a, b=1, *args, c, **kw):\n    return a\n", ast.StmtFunctionDef},
		{"async def g():\n    await h()\n", ast.StmtFunctionDef},
		{"class C(Base, metaclass=Meta):\n    pass\n", ast.StmtClassDef},
	}
	for _, tt := range tests {
		expectClean(t, tt.src, tt.kind)
	}
}

func TestElifChainNesting(t *testing.T) {
	src := "if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n"
	builder, file, bag := parse(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagMessages(bag))
	}
	d, ok := builder.Stmts.If(file.Body[0])
	if !ok {
		t.Fatal("expected an if payload")
	}
	if len(d.Else) != 1 {
		t.Fatalf("expected the elif as a single else statement, got %d", len(d.Else))
	}
	elif, ok := builder.Stmts.If(d.Else[0])
	if !ok {
		t.Fatal("expected the else branch to hold a nested if")
	}
	if !elif.IsElif {
		t.Error("nested if should be marked as elif")
	}
	if len(elif.Else) != 1 {
		t.Errorf("expected the final else body on the elif node, got %d statements", len(elif.Else))
	}
}

func TestStatementSpanIsExact(t *testing.T) {
	src := "  \nx = 1 + 2\n"
	builder, file, bag := parse(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagMessages(bag))
	}
	start, end := spanOf(t, src, "x = 1 + 2")
	sp := builder.Stmts.Get(file.Body[0]).Span
	if sp.Start != start || sp.End != end {
		t.Errorf("expected span %d..%d, got %d..%d", start, end, sp.Start, sp.End)
	}
}

func TestStarredTypeAliasValue(t *testing.T) {
	src := "type x = *y\n"
	_, file, bag := parse(t, src)

	if bag.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", diagMessages(bag))
	}
	d := bag.Items()[0]
	if d.Code != diag.SynStarredExpression {
		t.Errorf("expected SynStarredExpression, got %v", d.Code)
	}
	if d.Message != "Starred expression cannot be used here" {
		t.Errorf("unexpected message %q", d.Message)
	}
	start, end := spanOf(t, src, "*y")
	if d.Primary.Start != start || d.Primary.End != end {
		t.Errorf("expected anchor %d..%d, got %d..%d", start, end, d.Primary.Start, d.Primary.End)
	}
	// The alias still lands in the tree for later passes.
	if len(file.Body) != 1 {
		t.Fatalf("expected one statement, got %d", len(file.Body))
	}
}

func TestYieldTypeAliasValue(t *testing.T) {
	src := "type x = yield y\n"
	_, _, bag := parse(t, src)

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SynYieldExpression {
			found = true
			start, end := spanOf(t, src, "yield y")
			if d.Primary.Start != start || d.Primary.End != end {
				t.Errorf("expected anchor %d..%d, got %d..%d",
					start, end, d.Primary.Start, d.Primary.End)
			}
		}
	}
	if !found {
		t.Errorf("expected SynYieldExpression, got %v", diagMessages(bag))
	}
}

func TestWalrusAfterTypeAlias(t *testing.T) {
	src := "type x = x := 1\n"
	builder, file, bag := parse(t, src)

	if bag.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", diagMessages(bag))
	}
	d := bag.Items()[0]
	if d.Code != diag.SynExpectedStatement {
		t.Errorf("expected SynExpectedStatement, got %v", d.Code)
	}
	if d.Message != "Expected a statement" {
		t.Errorf("unexpected message %q", d.Message)
	}
	start, end := spanOf(t, src, ":=")
	if d.Primary.Start != start || d.Primary.End != end {
		t.Errorf("expected anchor %d..%d, got %d..%d", start, end, d.Primary.Start, d.Primary.End)
	}
	// The alias up to `x` survives.
	if len(file.Body) != 1 || builder.Stmts.Get(file.Body[0]).Kind != ast.StmtTypeAlias {
		t.Errorf("expected the type alias statement to survive recovery")
	}
}

func TestRecoveryResumesOnNextLine(t *testing.T) {
	src := "1 +\nx = 2\n"
	builder, file, bag := parse(t, src)

	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic for the dangling operator")
	}
	if len(file.Body) != 2 {
		t.Fatalf("expected both lines to produce statements, got %d", len(file.Body))
	}
	if got := builder.Stmts.Get(file.Body[1]).Kind; got != ast.StmtAssign {
		t.Errorf("second line should recover to an assignment, got kind %d", got)
	}
}

func TestRecoverySkipsBrokenSuite(t *testing.T) {
	src := "if x:\n    1 +\n    2 +\ny = 1\n"
	builder, file, bag := parse(t, src)

	if !bag.HasErrors() {
		t.Fatal("expected diagnostics inside the suite")
	}
	last := file.Body[len(file.Body)-1]
	if got := builder.Stmts.Get(last).Kind; got != ast.StmtAssign {
		t.Errorf("trailing assignment should parse after recovery, got kind %d", got)
	}
}

func TestMaxErrorsBudget(t *testing.T) {
	src := "= 1\n= 2\n= 3\n"
	_, _, bag := parseWith(t, src, parser.Options{MaxErrors: 2})
	if bag.Len() != 2 {
		t.Errorf("expected the budget to cap at 2 diagnostics, got %v", diagMessages(bag))
	}
}

func TestMissingSeparator(t *testing.T) {
	src := "x = 1 y = 2\n"
	_, _, bag := parse(t, src)
	if bag.Len() == 0 || bag.Items()[0].Code != diag.SynSimpleStmtSeparator {
		t.Errorf("expected SynSimpleStmtSeparator, got %v", diagMessages(bag))
	}
}

func TestExceptStarVersionGate(t *testing.T) {
	src := "try:\n    pass\nexcept* ValueError:\n    pass\n"

	_, _, bag := parseWith(t, src, parser.Options{Target: parser.Version{Major: 3, Minor: 11}})
	if bag.Len() != 0 {
		t.Errorf("3.11 should accept except*: %v", diagMessages(bag))
	}

	_, _, bag = parseWith(t, src, parser.Options{Target: parser.Version{Major: 3, Minor: 10}})
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SynVersionGated {
			found = true
		}
	}
	if !found {
		t.Errorf("3.10 should gate except*: %v", diagMessages(bag))
	}
}

func TestTypeParamDefaultVersionGate(t *testing.T) {
	src := "type x[T = int] = T\n"

	_, _, bag := parseWith(t, src, parser.Options{Target: parser.Version{Major: 3, Minor: 13}})
	if bag.Len() != 0 {
		t.Errorf("3.13 should accept type parameter defaults: %v", diagMessages(bag))
	}

	_, _, bag = parse(t, src)
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SynVersionGated {
			found = true
		}
	}
	if !found {
		t.Errorf("3.12 should gate type parameter defaults: %v", diagMessages(bag))
	}
}

func TestTypeIsAnIdentBelow312(t *testing.T) {
	// Below 3.12 `type` never starts a statement, so the second name is a
	// missing separator.
	src := "type x = int\n"
	_, _, bag := parseWith(t, src, parser.Options{Target: parser.Version{Major: 3, Minor: 11}})
	if bag.Len() == 0 || bag.Items()[0].Code != diag.SynSimpleStmtSeparator {
		t.Errorf("expected SynSimpleStmtSeparator, got %v", diagMessages(bag))
	}
}

func TestTypeAsPlainName(t *testing.T) {
	// Even at 3.12 `type` stays usable as a regular identifier.
	expectClean(t, "type = 1\nprint(type)\n", ast.StmtAssign, ast.StmtExpr)
}

func TestDeepNestingDegradesGracefully(t *testing.T) {
	src := strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300) + "\n"
	_, _, bag := parse(t, src)

	count := 0
	for _, d := range bag.Items() {
		if d.Code == diag.SynNestedTooDeep {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one SynNestedTooDeep, got %d (%v)", count, diagMessages(bag))
	}
}

func TestExpressionForms(t *testing.T) {
	srcs := []string{
		"x = a if b else c\n",
		"x = lambda a, *, b=1: a + b\n",
		"x = [i * 2 for i in xs if i]\n",
		"x = {k: v for k, v in items}\n",
		"x = {i async for i in gen()}\n",
		"x = (i for i in xs)\n",
		"x = a.b.c[1:2:3]\n",
		"x = f(*args, **kw)\n",
		"def f():\n    x = yield 1\n    y = yield from g()\n",
		"x = a @ b | c ** -d\n",
		"x = not a in b is not c\n",
		"x = f\"{a!r:>{width}}\"\n",
		"x = b\"raw\" b\"parts\"\n",
		"(a := 1)\n",
	}
	for _, src := range srcs {
		_, _, bag := parse(t, src)
		if bag.Len() != 0 {
			t.Errorf("unexpected diagnostics for %q: %v", src, diagMessages(bag))
		}
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	src := "f(x) = 1\n"
	_, _, bag := parse(t, src)
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SynInvalidTarget {
			found = true
		}
	}
	if !found {
		t.Errorf("expected SynInvalidTarget, got %v", diagMessages(bag))
	}
}

func TestCommentsCollectedOnFile(t *testing.T) {
	src := "# header\nx = 1  # trailing\n# footer\n"
	_, file, bag := parse(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagMessages(bag))
	}
	if len(file.Comments) != 3 {
		texts := make([]string, 0, len(file.Comments))
		for _, c := range file.Comments {
			texts = append(texts, c.Text)
		}
		t.Fatalf("expected 3 comments, got %v", texts)
	}
	if file.Comments[0].Text != "# header" {
		t.Errorf("unexpected first comment %q", file.Comments[0].Text)
	}
}
