package lexer_test

import (
	"fmt"
	"testing"

	"krait/internal/diag"
	"krait/internal/lexer"
	"krait/internal/source"
	"krait/internal/token"
)

// testReporter collects every diagnostic the lexer reports.
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, span source.Span, msg string) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: diag.SevError,
		Code:     code,
		Message:  msg,
		Primary:  span,
	})
}

func (r *testReporter) ErrorCount() int {
	return len(r.diagnostics)
}

func (r *testReporter) ErrorMessages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message))
	}
	return messages
}

func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.py", []byte(input))
	file := fs.Get(fileID)

	reporter := &testReporter{}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	return lx, reporter
}

func collectAllTokens(lx *lexer.Lexer) []token.Token {
	tokens := make([]token.Token, 0)
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens
}

func tokensToString(tokens []token.Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, fmt.Sprintf("%s(%q)", tok.Kind, tok.Text))
	}
	return out
}

// expectTokens checks the token kind sequence, EOF excluded.
func expectTokens(t *testing.T, input string, expected []token.Kind) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := collectAllTokens(lx)

	if len(tokens) > 0 && tokens[len(tokens)-1].Kind == token.EOF {
		tokens = tokens[:len(tokens)-1]
	}

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d\ninput: %q\ntokens: %v\nerrors: %v",
			len(expected), len(tokens), input, tokensToString(tokens), reporter.ErrorMessages())
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("token %d: expected %v, got %v (text %q)",
				i, expected[i], tok.Kind, tok.Text)
		}
	}
}

func expectSingleToken(t *testing.T, input string, kind token.Kind, text string) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tok := lx.Next()

	if tok.Kind != kind {
		t.Errorf("input %q: expected kind %v, got %v (errors: %v)",
			input, kind, tok.Kind, reporter.ErrorMessages())
	}
	if tok.Text != text {
		t.Errorf("input %q: expected text %q, got %q", input, text, tok.Text)
	}
}

func TestSimpleAssignment(t *testing.T) {
	expectTokens(t, "x = 1\n", []token.Kind{
		token.Ident, token.Assign, token.Int, token.Newline,
	})
}

func TestKeywords(t *testing.T) {
	expectTokens(t, "def return if elif else None True False lambda\n", []token.Kind{
		token.KwDef, token.KwReturn, token.KwIf, token.KwElif, token.KwElse,
		token.KwNone, token.KwTrue, token.KwFalse, token.KwLambda, token.Newline,
	})
}

func TestSoftKeywordsAreIdents(t *testing.T) {
	// type and match are contextual; the lexer always yields Ident.
	expectTokens(t, "type match case\n", []token.Kind{
		token.Ident, token.Ident, token.Ident, token.Newline,
	})
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"+", token.Plus},
		{"-", token.Minus},
		{"**", token.DoubleStar},
		{"//", token.DoubleSlash},
		{"**=", token.DoubleStarEq},
		{"//=", token.DoubleSlashEq},
		{"<<=", token.LeftShiftEq},
		{">>=", token.RightShiftEq},
		{":=", token.ColonEq},
		{"->", token.Arrow},
		{"...", token.Ellipsis},
		{"!=", token.NotEq},
		{"==", token.EqEq},
		{"@", token.At},
		{"@=", token.AtEq},
		{"~", token.Tilde},
	}
	for _, tt := range tests {
		expectSingleToken(t, tt.input, tt.kind, tt.input)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"0", token.Int},
		{"42", token.Int},
		{"1_000_000", token.Int},
		{"0xFF", token.Int},
		{"0o777", token.Int},
		{"0b1010", token.Int},
		{"3.14", token.Float},
		{"1.", token.Float},
		{".5", token.Float},
		{"1e10", token.Float},
		{"1E-5", token.Float},
		{"1_0.0_1e1_0", token.Float},
		{"2j", token.Complex},
		{"3.5J", token.Complex},
	}
	for _, tt := range tests {
		expectSingleToken(t, tt.input, tt.kind, tt.input)
	}
}

func TestBadNumbers(t *testing.T) {
	for _, input := range []string{"1_", "1__0", "0x", "0b2", "1abc"} {
		lx, reporter := makeTestLexer(input)
		tok := lx.Next()
		if tok.Kind != token.Invalid {
			t.Errorf("input %q: expected Invalid, got %v", input, tok.Kind)
		}
		if reporter.ErrorCount() == 0 {
			t.Errorf("input %q: expected a diagnostic", input)
		}
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{`"hello"`, token.String},
		{`'hello'`, token.String},
		{`""`, token.String},
		{`"it\"s"`, token.String},
		{`'''multi
line'''`, token.String},
		{`"""doc"""`, token.String},
		{`r"\d+"`, token.String},
		{`b"bytes"`, token.String},
		{`rb"raw bytes"`, token.String},
		{`u"legacy"`, token.String},
		{`f"x={x}"`, token.FString},
		{`F"{a!r:>{w}}"`, token.FString},
		{`rf"\{x}"`, token.FString},
	}
	for _, tt := range tests {
		expectSingleToken(t, tt.input, tt.kind, tt.input)
	}
}

func TestFStringNestedQuotes(t *testing.T) {
	// Since 3.12 the inner string may reuse the outer quote.
	input := `f"{d["key"]}"`
	expectSingleToken(t, input, token.FString, input)
}

func TestFStringDoubledBraces(t *testing.T) {
	input := `f"{{literal}} {x}"`
	expectSingleToken(t, input, token.FString, input)
}

func TestUnterminatedString(t *testing.T) {
	lx, reporter := makeTestLexer("\"abc\ny = 1\n")
	tok := lx.Next()
	if tok.Kind != token.Invalid {
		t.Fatalf("expected Invalid, got %v", tok.Kind)
	}
	if tok.Text != `"abc` {
		t.Errorf("token should stop before the newline, got %q", tok.Text)
	}
	if reporter.ErrorCount() != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", reporter.ErrorMessages())
	}
	if reporter.diagnostics[0].Code != diag.LexUnterminatedString {
		t.Errorf("expected LexUnterminatedString, got %v", reporter.diagnostics[0].Code)
	}
	// The next line still lexes normally.
	if tok := lx.Next(); tok.Kind != token.Newline {
		t.Errorf("expected Newline after recovery, got %v", tok.Kind)
	}
	if tok := lx.Next(); tok.Kind != token.Ident || tok.Text != "y" {
		t.Errorf("expected Ident y, got %v %q", tok.Kind, tok.Text)
	}
}

func TestIndentation(t *testing.T) {
	input := "if x:\n    pass\n"
	expectTokens(t, input, []token.Kind{
		token.KwIf, token.Ident, token.Colon, token.Newline,
		token.Indent, token.KwPass, token.Newline,
		token.Dedent,
	})
}

func TestNestedDedents(t *testing.T) {
	input := "if a:\n    if b:\n        pass\nx = 1\n"
	expectTokens(t, input, []token.Kind{
		token.KwIf, token.Ident, token.Colon, token.Newline,
		token.Indent, token.KwIf, token.Ident, token.Colon, token.Newline,
		token.Indent, token.KwPass, token.Newline,
		token.Dedent, token.Dedent,
		token.Ident, token.Assign, token.Int, token.Newline,
	})
}

func TestDedentsAtEOF(t *testing.T) {
	// All open blocks close at end of file.
	input := "if a:\n    if b:\n        pass\n"
	lx, _ := makeTestLexer(input)
	tokens := collectAllTokens(lx)

	dedents := 0
	for _, tok := range tokens {
		if tok.Kind == token.Dedent {
			dedents++
		}
	}
	if dedents != 2 {
		t.Errorf("expected 2 dedents, got %d: %v", dedents, tokensToString(tokens))
	}
}

func TestBlankAndCommentLinesKeepIndent(t *testing.T) {
	input := "if x:\n    a = 1\n\n    # comment\n    b = 2\n"
	expectTokens(t, input, []token.Kind{
		token.KwIf, token.Ident, token.Colon, token.Newline,
		token.Indent, token.Ident, token.Assign, token.Int, token.Newline,
		token.Ident, token.Assign, token.Int, token.Newline,
		token.Dedent,
	})
}

func TestMismatchedDedent(t *testing.T) {
	input := "if x:\n        pass\n    y\n"
	lx, reporter := makeTestLexer(input)
	collectAllTokens(lx)

	found := false
	for _, d := range reporter.diagnostics {
		if d.Code == diag.LexBadIndent {
			found = true
		}
	}
	if !found {
		t.Errorf("expected LexBadIndent, got %v", reporter.ErrorMessages())
	}
}

func TestTabsAfterSpaces(t *testing.T) {
	input := "if x:\n  \tpass\n"
	lx, reporter := makeTestLexer(input)
	collectAllTokens(lx)

	found := false
	for _, d := range reporter.diagnostics {
		if d.Code == diag.LexTabError {
			found = true
		}
	}
	if !found {
		t.Errorf("expected LexTabError, got %v", reporter.ErrorMessages())
	}
}

func TestParenSuppressesNewline(t *testing.T) {
	input := "x = (1 +\n     2)\n"
	expectTokens(t, input, []token.Kind{
		token.Ident, token.Assign, token.LParen, token.Int, token.Plus,
		token.Int, token.RParen, token.Newline,
	})
}

func TestBracketsSuppressIndentTracking(t *testing.T) {
	input := "x = [\n    1,\n  2,\n]\n"
	lx, reporter := makeTestLexer(input)
	tokens := collectAllTokens(lx)

	for _, tok := range tokens {
		if tok.Kind == token.Indent || tok.Kind == token.Dedent {
			t.Fatalf("no structural tokens expected inside brackets: %v", tokensToString(tokens))
		}
	}
	if reporter.ErrorCount() != 0 {
		t.Errorf("unexpected errors: %v", reporter.ErrorMessages())
	}
}

func TestExplicitLineJoin(t *testing.T) {
	input := "x = 1 + \\\n    2\n"
	expectTokens(t, input, []token.Kind{
		token.Ident, token.Assign, token.Int, token.Plus, token.Int, token.Newline,
	})
}

func TestStrayBackslash(t *testing.T) {
	lx, reporter := makeTestLexer("x = \\y\n")
	collectAllTokens(lx)

	found := false
	for _, d := range reporter.diagnostics {
		if d.Code == diag.LexStrayBackslash {
			found = true
		}
	}
	if !found {
		t.Errorf("expected LexStrayBackslash, got %v", reporter.ErrorMessages())
	}
}

func TestMissingFinalNewline(t *testing.T) {
	// A Newline is synthesized before EOF for an unterminated last line.
	expectTokens(t, "x = 1", []token.Kind{
		token.Ident, token.Assign, token.Int, token.Newline,
	})
}

func TestUnicodeIdentifierNFKC(t *testing.T) {
	// PEP 3131: identifiers are NFKC-normalized, so U+FB01 becomes "fi".
	lx, _ := makeTestLexer("\ufb01 = 1\n")
	tok := lx.Next()
	if tok.Kind != token.Ident {
		t.Fatalf("expected Ident, got %v", tok.Kind)
	}
	if tok.Text != "fi" {
		t.Errorf("expected normalized text %q, got %q", "fi", tok.Text)
	}
}

func TestCommentTrivia(t *testing.T) {
	lx, _ := makeTestLexer("# leading\nx = 1\n")
	tok := lx.Next()
	if tok.Kind != token.Ident {
		t.Fatalf("expected Ident, got %v", tok.Kind)
	}
	comments := tok.Comments()
	if len(comments) != 1 || comments[0].Text != "# leading" {
		t.Errorf("expected one leading comment, got %v", comments)
	}
}

func TestTrailingCommentTrivia(t *testing.T) {
	lx, _ := makeTestLexer("x = 1  # note\n")
	var nl token.Token
	for {
		tok := lx.Next()
		if tok.Kind == token.Newline {
			nl = tok
			break
		}
		if tok.Kind == token.EOF {
			t.Fatal("no Newline produced")
		}
	}
	comments := nl.Comments()
	if len(comments) != 1 || comments[0].Text != "# note" {
		t.Errorf("expected the trailing comment on the Newline token, got %v", comments)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("a b\n")
	p := lx.Peek()
	n := lx.Next()
	if p.Kind != n.Kind || p.Text != n.Text {
		t.Errorf("Peek/Next mismatch: %v %q vs %v %q", p.Kind, p.Text, n.Kind, n.Text)
	}
	if tok := lx.Next(); tok.Text != "b" {
		t.Errorf("expected b after consuming a, got %q", tok.Text)
	}
}

func TestSetRangeExprMode(t *testing.T) {
	// Re-lexing a sub-range yields plain expression tokens without any
	// line structure, as used for f-string interpolations.
	input := `f"{a + b}"`
	lx, _ := makeTestLexer(input)
	if tok := lx.Next(); tok.Kind != token.FString {
		t.Fatalf("expected FString, got %v", tok.Kind)
	}

	sub, _ := makeTestLexer(input)
	sub.SetRange(3, 8) // the `a + b` range
	var kinds []token.Kind
	for {
		tok := sub.Next()
		if tok.Kind == token.EOF {
			break
		}
		kinds = append(kinds, tok.Kind)
	}
	want := []token.Kind{token.Ident, token.Plus, token.Ident}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], kinds[i])
		}
	}
}

func TestEOFIsStable(t *testing.T) {
	lx, _ := makeTestLexer("x\n")
	for {
		if tok := lx.Next(); tok.Kind == token.EOF {
			break
		}
	}
	for i := 0; i < 3; i++ {
		if tok := lx.Next(); tok.Kind != token.EOF {
			t.Fatalf("EOF must repeat, got %v", tok.Kind)
		}
	}
}
