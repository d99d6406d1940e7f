package format_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/format"
	"krait/internal/lexer"
	"krait/internal/parser"
	"krait/internal/source"
)

// render parses and formats one source text. The source must be valid;
// formatting broken trees is the driver's job to avoid.
func render(t *testing.T, src string, opt format.Options) string {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.py", []byte(src))
	file := fs.Get(fileID)

	bag := diag.NewBag(64)
	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: lexer.DiagAdapter{Next: reporter}})
	builder := ast.NewBuilder(ast.Hints{})
	result := parser.ParseFile(fs, lx, builder, parser.Options{Reporter: reporter})
	if bag.HasErrors() {
		msgs := make([]string, 0, bag.Len())
		for _, d := range bag.Items() {
			msgs = append(msgs, d.Code.ID()+": "+d.Message)
		}
		t.Fatalf("source %q does not parse: %v", src, msgs)
	}

	out, err := format.FormatFile(file, builder, result.File, opt)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	return string(out)
}

func expectFormat(t *testing.T, src, want string) {
	t.Helper()
	got := render(t, src, format.Options{})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("formatting mismatch (-want +got):\n%s", diff)
	}
}

// unchanged asserts src is already in canonical form.
func unchanged(t *testing.T, src string) {
	t.Helper()
	expectFormat(t, src, src)
}

func TestStableForms(t *testing.T) {
	srcs := []string{
		"x = 1\n",
		"x = 1, 2\n",
		"x, y = y, x\n",
		"a = b = c\n",
		"x += 1\n",
		"x: int = 1\n",
		"x: dict[str, int]\n",
		"type Vec = list[float]\n",
		"del x, y\n",
		"import os.path as p, sys\n",
		"from m import a, b\n",
		"from . import thing\n",
		"from m import *\n",
		"global a, b\n",
		"assert x, \"boom\"\n",
		"raise ValueError(x) from err\n",
		"return_value = f(a, b, *rest, key=1, **kw)\n",
		"x = a.b.c[1:2:3]\n",
		"x = a if b else c\n",
		"x = lambda a, b=1: a + b\n",
		"x = [i * 2 for i in xs if i]\n",
		"x = {k: v for k, v in items}\n",
		"x = {i for i in xs}\n",
		"x = (i for i in xs)\n",
		"x = sum(i for i in xs)\n",
		"x = -y + ~z\n",
		"x = not a or b and c\n",
		"x = a is not b != c not in d\n",
		"x = []\n",
		"x = {}\n",
		"x = ()\n",
		"x = {**base, \"k\": 1}\n",
		"x = [*xs, *ys]\n",
		"print(*args, sep=\", \")\n",
	}
	for _, src := range srcs {
		unchanged(t, src)
	}
}

func TestStableCompoundForms(t *testing.T) {
	srcs := []string{
		"if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n",
		"while x:\n    break\nelse:\n    pass\n",
		"for i in xs:\n    continue\n",
		"async for i in xs:\n    pass\n",
		"with open(p) as f, lock:\n    pass\n",
		"try:\n    pass\nexcept ValueError as e:\n    pass\nexcept* OSError:\n    pass\nfinally:\n    pass\n",
		"def f(a, b=1, *args, c, **kw):\n    return a\n",
		"def g(a, /, b, *, c):\n    pass\n",
		"async def h() -> int:\n    return await g()\n",
		"def ident[T](x: T) -> T:\n    return x\n",
		"class C(Base, metaclass=Meta):\n    pass\n",
		"@dec\n@other(arg)\ndef f():\n    pass\n",
	}
	for _, src := range srcs {
		unchanged(t, src)
	}
}

func TestClassEmptyParensDropped(t *testing.T) {
	expectFormat(t,
		"class Foo():\n    pass\n",
		"class Foo:\n    pass\n")
}

func TestBlankLineAfterClassHeaderRemoved(t *testing.T) {
	expectFormat(t,
		"class A:\n\n    def m(self):\n        pass\n",
		"class A:\n    def m(self):\n        pass\n")
}

func TestTopLevelDefinitionPadding(t *testing.T) {
	expectFormat(t,
		"x = 1\ndef f():\n    pass\ny = 2\n",
		"x = 1\n\n\ndef f():\n    pass\n\n\ny = 2\n")
}

func TestNestedDefinitionPadding(t *testing.T) {
	expectFormat(t,
		"class A:\n    def a(self):\n        pass\n    def b(self):\n        pass\n",
		"class A:\n    def a(self):\n        pass\n\n    def b(self):\n        pass\n")
}

func TestAuthorBlankLinesClamped(t *testing.T) {
	expectFormat(t,
		"a = 1\n\n\n\n\n\nb = 2\n",
		"a = 1\n\n\nb = 2\n")
	expectFormat(t,
		"def f():\n    a = 1\n\n\n\n    b = 2\n",
		"def f():\n    a = 1\n\n    b = 2\n")
}

func TestExcessDefinitionPaddingClamped(t *testing.T) {
	expectFormat(t,
		"x = 1\n\n\n\n\n\ndef f():\n    pass\n",
		"x = 1\n\n\ndef f():\n    pass\n")
}

func TestSingleElementTupleParenthesized(t *testing.T) {
	expectFormat(t, "x = a,\n", "x = (a,)\n")
	unchanged(t, "x = (a,)\n")
}

func TestNamedExprParenthesized(t *testing.T) {
	unchanged(t, "(a := 1)\n")
	expectFormat(t, "if x := f():\n    pass\n", "if (x := f()):\n    pass\n")
}

func TestRedundantParensDropped(t *testing.T) {
	expectFormat(t, "x = (1 + 2)\n", "x = 1 + 2\n")
	expectFormat(t, "x = ((a))\n", "x = a\n")
}

func TestNecessaryParensKept(t *testing.T) {
	unchanged(t, "x = (a + b) * c\n")
	expectFormat(t, "x = (2**3)**4\n", "x = (2 ** 3) ** 4\n")
	unchanged(t, "x = -(a + b)\n")
	unchanged(t, "x = (a if b else c) + 1\n")
	unchanged(t, "x = (lambda: 1)()\n")
}

func TestPowerRightAssociative(t *testing.T) {
	unchanged(t, "x = 2 ** 3 ** 4\n")
	expectFormat(t, "x = 2**3\n", "x = 2 ** 3\n")
}

func TestOperatorSpacing(t *testing.T) {
	expectFormat(t, "x=a+b*c\n", "x = a + b * c\n")
	expectFormat(t, "x  =  1\n", "x = 1\n")
	expectFormat(t, "def f(a: int=1, b=2):\n    pass\n",
		"def f(a: int = 1, b=2):\n    pass\n")
}

func TestQuoteNormalization(t *testing.T) {
	tests := []struct{ src, want string }{
		{"x = 'hello'\n", "x = \"hello\"\n"},
		{"x = \"hello\"\n", "x = \"hello\"\n"},
		{"x = 'it\\'s'\n", "x = \"it's\"\n"},
		{"x = \"it's\"\n", "x = \"it's\"\n"},
		{"x = 'say \"hi\"'\n", "x = 'say \"hi\"'\n"},
		{"x = 'both \\' and \"'\n", "x = \"both ' and \\\"\"\n"},
		{"x = U'legacy'\n", "x = \"legacy\"\n"},
		{"x = B'abc'\n", "x = b\"abc\"\n"},
		{"x = R'\\d+'\n", "x = r\"\\d+\"\n"},
		{"x = r'has \"quote\"'\n", "x = r'has \"quote\"'\n"},
		{"x = '''doc'''\n", "x = \"\"\"doc\"\"\"\n"},
	}
	for _, tt := range tests {
		expectFormat(t, tt.src, tt.want)
	}
}

func TestQuoteSingleOption(t *testing.T) {
	got := render(t, "x = \"hello\"\n", format.Options{Quote: format.QuoteSingle})
	if got != "x = 'hello'\n" {
		t.Errorf("expected single quotes, got %q", got)
	}
}

func TestNumberNormalization(t *testing.T) {
	tests := []struct{ src, want string }{
		{"x = 0XFF\n", "x = 0xFF\n"},
		{"x = 0xabcdef\n", "x = 0xABCDEF\n"},
		{"x = 0B1010\n", "x = 0b1010\n"},
		{"x = 0O777\n", "x = 0o777\n"},
		{"x = 1E5\n", "x = 1e5\n"},
		{"x = 1_000J\n", "x = 1_000j\n"},
		{"x = 3.14\n", "x = 3.14\n"},
	}
	for _, tt := range tests {
		expectFormat(t, tt.src, tt.want)
	}
}

func TestFStringInnerQuoteFlipped(t *testing.T) {
	expectFormat(t,
		"x = f\"{d[\"key\"]}\"\n",
		"x = f\"{d['key']}\"\n")
}

func TestFStringQuotesAlternatePerLevel(t *testing.T) {
	// Each nesting level independently picks the quote that avoids
	// escaping: canonical outside, alternate one level in, and so on.
	expectFormat(t,
		"x = f'{f\"{x}\"}'\n",
		"x = f\"{f'{x}'}\"\n")
	unchanged(t, "x = f\"{f'{d[\"k\"]}'}\"\n")
}

func TestFStringSelfDocumenting(t *testing.T) {
	unchanged(t, "print(f\"{x=}\")\n")
}

func TestFStringConversionAndSpec(t *testing.T) {
	unchanged(t, "x = f\"{a!r:>{width}}\"\n")
}

func TestImplicitStringConcat(t *testing.T) {
	unchanged(t, "x = \"one\" \"two\"\n")
}

func TestLongCallBreaksWithTrailingComma(t *testing.T) {
	got := render(t, "result = some_function(aaaa, bbbb, cccc)\n",
		format.Options{LineWidth: 20})
	want := "result = some_function(\n    aaaa,\n    bbbb,\n    cccc,\n)\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("broken call mismatch (-want +got):\n%s", diff)
	}
}

func TestShortCallStaysFlat(t *testing.T) {
	unchanged(t, "f(a, b)\n")
}

func TestLongFromImportGainsParens(t *testing.T) {
	got := render(t, "from m import aaaa, bbbb\n", format.Options{LineWidth: 16})
	want := "from m import (\n    aaaa,\n    bbbb,\n)\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("broken import mismatch (-want +got):\n%s", diff)
	}
}

func TestShortFromImportKeepsNoParens(t *testing.T) {
	unchanged(t, "from m import aaaa, bbbb\n")
}

func TestMultiNameImport(t *testing.T) {
	unchanged(t, "import os, sys\n")
	unchanged(t, "import collections.abc as abc, sys\n")
	expectFormat(t, "import os,sys\n", "import os, sys\n")

	// Plain imports never wrap, whatever the width.
	got := render(t, "import aaaaaaaa, bbbbbbbb, cccccccc\n", format.Options{LineWidth: 10})
	if got != "import aaaaaaaa, bbbbbbbb, cccccccc\n" {
		t.Errorf("plain import must stay on one line, got %q", got)
	}
}

func TestNestedCollectionBreaking(t *testing.T) {
	got := render(t, "x = [aaaaaaaa, [bbbbbbbb, cccccccc], dddddddd]\n",
		format.Options{LineWidth: 25})
	want := "x = [\n    aaaaaaaa,\n    [bbbbbbbb, cccccccc],\n    dddddddd,\n]\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("nested list mismatch (-want +got):\n%s", diff)
	}
}

func TestIndentWidthOption(t *testing.T) {
	got := render(t, "if x:\n    pass\n", format.Options{IndentWidth: 2})
	if got != "if x:\n  pass\n" {
		t.Errorf("expected two-space indent, got %q", got)
	}
}

func TestCommentsPreserved(t *testing.T) {
	unchanged(t, "# lead\nx = 1  # trail\n")
	unchanged(t, "if x:  # note\n    pass\n")
}

func TestDefHeaderTrailingComment(t *testing.T) {
	unchanged(t, "def m():  # tail\n    pass\n")
	unchanged(t, "def f(a, b=1) -> int:  # tail\n    return a\n")
	expectFormat(t, "def m(): # tail\n    pass\n", "def m():  # tail\n    pass\n")
}

func TestClassHeaderTrailingComment(t *testing.T) {
	unchanged(t, "class C:  # note\n    pass\n")
	unchanged(t, "class C(Base, metaclass=Meta):  # note\n    pass\n")
}

func TestCommentNormalization(t *testing.T) {
	expectFormat(t, "#tight\nx = 1\n", "# tight\nx = 1\n")
	unchanged(t, "#!/usr/bin/env python\nx = 1\n")
}

func TestCommentOnlyFile(t *testing.T) {
	expectFormat(t, "# alone\n", "# alone\n")
}

func TestTrailingFileComment(t *testing.T) {
	unchanged(t, "x = 1\n# done\n")
	unchanged(t, "x = 1\n\n# done\n")
}

func TestCommentBeforeDefinitionStaysAttached(t *testing.T) {
	// The two padding lines land before the comment, not between the
	// comment and its definition.
	expectFormat(t,
		"x = 1\n# docs\ndef f():\n    pass\n",
		"x = 1\n\n\n# docs\ndef f():\n    pass\n")
}

func TestElideEmptyLinesAtBlockStart(t *testing.T) {
	expectFormat(t,
		"def f():\n\n    return 1\n",
		"def f():\n    return 1\n")
}

func TestIdempotent(t *testing.T) {
	src := "import os\n" +
		"#config\n" +
		"WIDTH=80\n" +
		"class Point():\n" +
		"\n" +
		"    def __init__(self,x,y):\n" +
		"        self.x=x\n" +
		"        self.y=y\n" +
		"    def norm(self):\n" +
		"        return (self.x**2+self.y**2)**0.5\n" +
		"def main():\n" +
		"    p=Point(1,2)\n" +
		"    print(f'norm={p.norm()}')\n"

	once := render(t, src, format.Options{})
	twice := render(t, once, format.Options{})
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("formatting is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestRoundTripGuard(t *testing.T) {
	src := "import os, sys\n\n\nclass A:\n    def m(self, *args):\n        return [x for x in args if x]\n"
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.py", []byte(src))
	file := fs.Get(fileID)

	bag := diag.NewBag(64)
	lx := lexer.New(file, lexer.Options{Reporter: lexer.DiagAdapter{Next: &diag.BagReporter{Bag: bag}}})
	builder := ast.NewBuilder(ast.Hints{})
	result := parser.ParseFile(fs, lx, builder, parser.Options{Reporter: &diag.BagReporter{Bag: bag}})
	if bag.HasErrors() {
		t.Fatal("fixture must parse")
	}

	out, err := format.FormatFile(file, builder, result.File, format.Options{})
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if err := format.CheckRoundTrip(builder, result.File, out); err != nil {
		t.Errorf("round trip failed: %v\noutput:\n%s", err, out)
	}
}
