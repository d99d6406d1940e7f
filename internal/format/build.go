package format

import (
	"strings"

	"krait/internal/ast"
	"krait/internal/source"
)

// fileBuilder turns one parsed file into a formatting document. Comments
// are consumed from the file's source-ordered comment list as the walk
// passes their position, so every comment lands exactly once.
type fileBuilder struct {
	builder *ast.Builder
	file    *ast.File
	sf      *source.File
	docs    *DocBuilder
	opt     Options

	comments []ast.Comment
	cursor   int
}

func (fb *fileBuilder) buildFile() DocID {
	body := fb.renderBody(fb.file.Body, true)

	var kids []DocID
	if body.IsValid() {
		kids = append(kids, body)
	}
	prevEnd := uint32(0)
	if n := len(fb.file.Body); n > 0 {
		prevEnd = fb.builder.Stmts.Get(fb.file.Body[n-1]).Span.End
	}
	// Comments after the last statement.
	for fb.cursor < len(fb.comments) {
		c := fb.comments[fb.cursor]
		fb.cursor++
		if len(kids) > 0 {
			kids = append(kids, fb.docs.HardBreak())
			if fb.blanksBetween(prevEnd, c.Span.Start) > 0 {
				kids = append(kids, fb.docs.HardBreak())
			}
		}
		kids = append(kids, fb.docs.Text(normalizeComment(c.Text)))
		prevEnd = c.Span.End
	}
	return fb.docs.ConcatList(kids)
}

// renderBody renders one statement list. Entities (statements and their
// own-line comments) are joined by hard breaks; blank lines between them
// follow the source, capped at two at top level and one inside blocks,
// with definitions always padded to the cap.
func (fb *fileBuilder) renderBody(body []ast.StmtID, topLevel bool) DocID {
	if len(body) == 0 {
		return NoDocID
	}
	maxBlank := 1
	if topLevel {
		maxBlank = 2
	}

	var kids []DocID
	first := true
	prevEnd := uint32(0)
	prevDef := false

	emit := func(doc DocID, blanks int) {
		if !first {
			for i := 0; i < blanks+1; i++ {
				kids = append(kids, fb.docs.HardBreak())
			}
		}
		kids = append(kids, doc)
		first = false
	}

	for _, id := range body {
		st := fb.builder.Stmts.Get(id)
		isDef := st.Kind == ast.StmtFunctionDef || st.Kind == ast.StmtClassDef

		// Own-line comments sitting before this statement belong to it.
		leads := fb.takeLeading(st.Span.Start)
		for i, c := range leads {
			blanks := clampBlanks(fb.blanksBetween(prevEnd, c.Span.Start), maxBlank)
			if i == 0 && (isDef || prevDef) {
				blanks = maxBlank
			}
			emit(fb.docs.Text(normalizeComment(c.Text)), blanks)
			prevEnd = c.Span.End
		}

		blanks := clampBlanks(fb.blanksBetween(prevEnd, st.Span.Start), maxBlank)
		if (isDef || prevDef) && len(leads) == 0 {
			blanks = maxBlank
		}
		doc := fb.stmt(id)
		if tc, ok := fb.takeTrailing(st.Span.End); ok {
			doc = fb.docs.Concat(doc, fb.docs.Text("  "+normalizeComment(tc)))
		}
		emit(doc, blanks)
		prevEnd = st.Span.End
		prevDef = isDef
	}
	return fb.docs.ConcatList(kids)
}

// suite renders `<header>:` plus an indented body. headerEnd anchors the
// trailing-comment check for the header line; pass 0 to skip it.
func (fb *fileBuilder) suite(header DocID, headerEnd uint32, body []ast.StmtID) DocID {
	kids := []DocID{header, fb.docs.Text(":")}
	if headerEnd != 0 {
		if tc, ok := fb.takeTrailing(headerEnd); ok {
			kids = append(kids, fb.docs.Text("  "+normalizeComment(tc)))
		}
	}
	inner := fb.renderBody(body, false)
	if !inner.IsValid() {
		inner = fb.docs.Text("pass")
	}
	kids = append(kids, fb.docs.Indent(fb.docs.HardBreak(), inner))
	return fb.docs.Concat(kids...)
}

// takeLeading consumes comments that sit fully before offset on lines of
// their own.
func (fb *fileBuilder) takeLeading(offset uint32) []ast.Comment {
	var out []ast.Comment
	for fb.cursor < len(fb.comments) {
		c := fb.comments[fb.cursor]
		if c.Span.End > offset {
			break
		}
		out = append(out, c)
		fb.cursor++
	}
	return out
}

// takeTrailing consumes the next comment when it sits on the same line as
// the code ending at offset.
func (fb *fileBuilder) takeTrailing(offset uint32) (string, bool) {
	if fb.cursor >= len(fb.comments) {
		return "", false
	}
	c := fb.comments[fb.cursor]
	if c.Span.Start < offset {
		return "", false
	}
	between := fb.sf.Content[offset:c.Span.Start]
	if strings.ContainsRune(string(between), '\n') {
		return "", false
	}
	fb.cursor++
	return c.Text, true
}

// blanksBetween counts blank source lines between two byte offsets.
func (fb *fileBuilder) blanksBetween(prevEnd, nextStart uint32) int {
	if prevEnd >= nextStart || int(nextStart) > len(fb.sf.Content) {
		return 0
	}
	n := strings.Count(string(fb.sf.Content[prevEnd:nextStart]), "\n")
	if n <= 1 {
		return 0
	}
	return n - 1
}

func clampBlanks(n, limit int) int {
	if n > limit {
		return limit
	}
	return n
}

// normalizeComment guarantees a space after '#'. Shebang-style markers
// keep their shape.
func normalizeComment(text string) string {
	text = strings.TrimRight(text, " \t")
	if len(text) > 1 && text[1] != ' ' && text[1] != '!' {
		return "# " + text[1:]
	}
	return text
}

func (fb *fileBuilder) lookup(id source.StringID) string {
	return fb.builder.Lookup(id)
}
