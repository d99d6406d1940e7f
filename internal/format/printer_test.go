package format_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"krait/internal/format"
)

func printDoc(t *testing.T, docs *format.DocBuilder, root format.DocID, opt format.Options) string {
	t.Helper()
	out, err := format.Print(docs, root, opt)
	if err != nil {
		t.Fatalf("print failed: %v", err)
	}
	return string(out)
}

func TestPrintEndsWithOneNewline(t *testing.T) {
	docs := format.NewDocBuilder(0)
	root := docs.Concat(docs.Text("x"), docs.HardBreak(), docs.HardBreak())
	got := printDoc(t, docs, root, format.Options{})
	if got != "x\n" {
		t.Errorf("expected %q, got %q", "x\n", got)
	}
}

func TestEmptyDocumentPrintsNothing(t *testing.T) {
	docs := format.NewDocBuilder(0)
	out, err := format.Print(docs, docs.Concat(), format.Options{})
	if err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if out != nil {
		t.Errorf("expected nil output, got %q", out)
	}
}

func TestGroupBreaksOnWidth(t *testing.T) {
	docs := format.NewDocBuilder(0)
	root := docs.Group(docs.Text("aaa"), docs.Space(), docs.Text("bbb"))

	flat := printDoc(t, docs, root, format.Options{LineWidth: 7})
	if flat != "aaa bbb\n" {
		t.Errorf("expected flat rendering, got %q", flat)
	}

	broken := printDoc(t, docs, root, format.Options{LineWidth: 6})
	if broken != "aaa\nbbb\n" {
		t.Errorf("expected broken rendering, got %q", broken)
	}
}

func TestHardBreakForcesEnclosingGroup(t *testing.T) {
	docs := format.NewDocBuilder(0)
	root := docs.Group(
		docs.Text("a"),
		docs.Space(),
		docs.Concat(docs.Text("b"), docs.HardBreak()),
		docs.Text("c"),
	)
	// The content fits the line easily; only the hard break inside the
	// group keeps it from printing flat.
	got := printDoc(t, docs, root, format.Options{LineWidth: 80})
	if got != "a\nb\nc\n" {
		t.Errorf("expected forced break, got %q", got)
	}
}

func TestIndentAndIfBroken(t *testing.T) {
	docs := format.NewDocBuilder(0)
	root := docs.Group(
		docs.Text("["),
		docs.Indent(
			docs.SoftBreak(),
			docs.Text("aaaa"),
			docs.IfBroken([]format.DocID{docs.Text(",")}, nil),
		),
		docs.SoftBreak(),
		docs.Text("]"),
	)

	flat := printDoc(t, docs, root, format.Options{LineWidth: 20})
	if flat != "[aaaa]\n" {
		t.Errorf("expected flat list, got %q", flat)
	}

	broken := printDoc(t, docs, root, format.Options{LineWidth: 5})
	want := "[\n    aaaa,\n]\n"
	if diff := cmp.Diff(want, broken); diff != "" {
		t.Errorf("broken list mismatch (-want +got):\n%s", diff)
	}
}

func TestIndentWidthHonored(t *testing.T) {
	docs := format.NewDocBuilder(0)
	root := docs.Concat(
		docs.Text("a"),
		docs.Indent(docs.HardBreak(), docs.Text("b")),
	)
	got := printDoc(t, docs, root, format.Options{IndentWidth: 2})
	if got != "a\n  b\n" {
		t.Errorf("expected two-space indent, got %q", got)
	}
}

func TestWideRunesUseDisplayWidth(t *testing.T) {
	docs := format.NewDocBuilder(0)
	// Three double-width runes, a space, two more: display width 11.
	root := docs.Group(docs.Text("軽軽軽"), docs.Space(), docs.Text("軽軽"))

	if got := printDoc(t, docs, root, format.Options{LineWidth: 11}); got != "軽軽軽 軽軽\n" {
		t.Errorf("expected flat rendering at width 11, got %q", got)
	}
	if got := printDoc(t, docs, root, format.Options{LineWidth: 10}); got != "軽軽軽\n軽軽\n" {
		t.Errorf("expected broken rendering at width 10, got %q", got)
	}
}

func TestTrailingSpacesTrimmedAtLineEnds(t *testing.T) {
	docs := format.NewDocBuilder(0)
	root := docs.Concat(docs.Text("a "), docs.HardBreak(), docs.Text("b  "))
	got := printDoc(t, docs, root, format.Options{})
	if got != "a\nb\n" {
		t.Errorf("expected trimmed lines, got %q", got)
	}
}

func TestNewlineInTextIsAnInvariantViolation(t *testing.T) {
	docs := format.NewDocBuilder(0)
	root := docs.Text("a\nb")
	out, err := format.Print(docs, root, format.Options{})
	if !errors.Is(err, format.ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
	if out != nil {
		t.Errorf("expected no output on invariant failure, got %q", out)
	}
}

func TestDanglingDocID(t *testing.T) {
	docs := format.NewDocBuilder(0)
	docs.Text("x")
	_, err := format.Print(docs, format.DocID(999), format.Options{})
	if !errors.Is(err, format.ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}
