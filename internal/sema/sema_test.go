package sema_test

import (
	"strings"
	"testing"

	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/lexer"
	"krait/internal/parser"
	"krait/internal/sema"
	"krait/internal/source"
)

// check parses src, then runs only the semantic pass into a fresh bag so
// parser diagnostics never leak into the assertions.
func check(t *testing.T, src string) *diag.Bag {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.py", []byte(src))
	file := fs.Get(fileID)

	parseBag := diag.NewBag(64)
	lx := lexer.New(file, lexer.Options{Reporter: &lexer.ReporterAdapter{Bag: parseBag}})
	builder := ast.NewBuilder(ast.Hints{})
	result := parser.ParseFile(fs, lx, builder, parser.Options{
		Reporter: &diag.BagReporter{Bag: parseBag},
	})

	semaBag := diag.NewBag(64)
	sema.Check(builder, result.File, &diag.BagReporter{Bag: semaBag})
	return semaBag
}

func codes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func expectCode(t *testing.T, src string, want diag.Code) diag.Diagnostic {
	t.Helper()
	bag := check(t, src)
	for _, d := range bag.Items() {
		if d.Code == want {
			return d
		}
	}
	t.Fatalf("source %q: expected %v, got %v", src, want, codes(bag))
	return diag.Diagnostic{}
}

func expectNone(t *testing.T, src string) {
	t.Helper()
	bag := check(t, src)
	if bag.Len() != 0 {
		t.Errorf("source %q: expected no semantic findings, got %v", src, codes(bag))
	}
}

func TestYieldInTypeAlias(t *testing.T) {
	src := "type x = yield y\n"
	d := expectCode(t, src, diag.SemYieldInTypeAlias)
	if d.Message != "yield expression cannot be used within a type alias" {
		t.Errorf("unexpected message %q", d.Message)
	}
	idx := strings.Index(src, "yield y")
	if d.Primary.Start != uint32(idx) || d.Primary.End != uint32(idx+len("yield y")) {
		t.Errorf("expected anchor on %q, got %d..%d", "yield y", d.Primary.Start, d.Primary.End)
	}
}

func TestYieldFromInTypeAlias(t *testing.T) {
	expectCode(t, "type x = yield from y\n", diag.SemYieldInTypeAlias)
}

func TestAwaitInTypeAlias(t *testing.T) {
	expectCode(t, "type x = await y\n", diag.SemAwaitInTypeAlias)
}

func TestNamedExprInTypeAlias(t *testing.T) {
	expectCode(t, "type x = (y := 1)\n", diag.SemNamedExprInTypeAlias)
}

func TestTypeAliasBoundAndDefault(t *testing.T) {
	// Bounds and defaults of type parameters live in alias context too.
	expectCode(t, "type x[T: (y := int)] = T\n", diag.SemNamedExprInTypeAlias)
}

func TestYieldInComprehension(t *testing.T) {
	src := "def f():\n    return [(yield i) for i in xs]\n"
	d := expectCode(t, src, diag.SemYieldInComprehension)
	if d.Message != "yield expression cannot be used within a comprehension" {
		t.Errorf("unexpected message %q", d.Message)
	}
}

func TestYieldInGenerator(t *testing.T) {
	expectCode(t, "def f():\n    return ((yield i) for i in xs)\n",
		diag.SemYieldInComprehension)
}

func TestYieldInNestedComprehensionIterable(t *testing.T) {
	expectCode(t, "def f():\n    return [i for i in [(yield j) for j in xs]]\n",
		diag.SemYieldInComprehension)
}

func TestLambdaBodyIsANewScope(t *testing.T) {
	// A lambda inside a comprehension opens a fresh function scope, so a
	// yield in its body is not "inside the comprehension".
	expectNone(t, "def f():\n    return [lambda: (yield) for i in xs]\n")
}

func TestOrdinaryCodeIsClean(t *testing.T) {
	expectNone(t, "def f():\n    x = yield 1\n    return [i for i in xs]\n")
	expectNone(t, "type x = list[int]\n")
	expectNone(t, "async def g():\n    return await h()\n")
}

func TestFindingsInsideFStrings(t *testing.T) {
	expectCode(t, "type x = f\"{(y := 1)}\"\n", diag.SemNamedExprInTypeAlias)
}

func TestDeepStatementNesting(t *testing.T) {
	// The walker must reach findings buried under compound statements.
	src := "def f():\n" +
		"    with a as b:\n" +
		"        try:\n" +
		"            for i in xs:\n" +
		"                type t = (q := 1)\n" +
		"        except Exception:\n" +
		"            pass\n"
	expectCode(t, src, diag.SemNamedExprInTypeAlias)
}
