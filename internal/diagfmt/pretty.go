package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"krait/internal/diag"
	"krait/internal/source"
)

// Pretty renders diagnostics as source excerpts. It walks bag.Items() in
// order (the caller sorts first). Each diagnostic prints a header line
//
//	<path>:<line>:<col>: <severity>[<CODE>]: <message>
//
// followed by the source context with a ^~~~ underline beneath the span.
// Diagnostics whose context lines overlap merge into one excerpt block:
// all headers first, then the shared lines, each with its own underline.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	if opts.Context < 0 {
		opts.Context = 0
	}

	items := bag.Items()
	i := 0
	for i < len(items) {
		block := []diag.Diagnostic{items[i]}
		first, last := contextLines(items[i], fs, opts.Context)
		j := i + 1
		for j < len(items) && items[j].Primary.File == items[i].Primary.File {
			nf, nl := contextLines(items[j], fs, opts.Context)
			if nf > last+1 {
				break
			}
			if nl > last {
				last = nl
			}
			block = append(block, items[j])
			j++
		}
		renderBlock(w, block, fs, opts, first, last)
		i = j
		if i < len(items) {
			fmt.Fprintln(w)
		}
	}
}

// contextLines returns the 1-based first and last source line of the
// diagnostic's excerpt, context included.
func contextLines(d diag.Diagnostic, fs *source.FileSet, context int) (uint32, uint32) {
	start, end := fs.Resolve(d.Primary)
	file := fs.Get(d.Primary.File)

	first := start.Line
	if uint32(context) < first {
		first -= uint32(context)
	} else {
		first = 1
	}
	last := end.Line + uint32(context)
	if max := file.LineCount(); last > max {
		last = max
	}
	return first, last
}

func renderBlock(w io.Writer, block []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, first, last uint32) {
	file := fs.Get(block[0].Primary.File)
	path := file.FormatPath(opts.PathMode.String(), fs.BaseDir())

	for _, d := range block {
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s[%s]: %s\n",
			path, start.Line, start.Col,
			severityText(d.Severity, opts.Color), d.Code.ID(), d.Message)
	}

	gutterWidth := len(fmt.Sprintf("%d", last))
	for line := first; line <= last; line++ {
		text := file.GetLine(line)
		fmt.Fprintf(w, " %*d | %s\n", gutterWidth, line, text)

		for _, d := range block {
			underline, ok := underlineFor(d, file, fs, line, text)
			if !ok {
				continue
			}
			if opts.Color {
				underline = colorForSeverity(d.Severity).Sprint(underline)
			}
			fmt.Fprintf(w, " %s | %s\n", strings.Repeat(" ", gutterWidth), underline)
		}
	}

	if opts.ShowNotes {
		for _, d := range block {
			for _, note := range d.Notes {
				nstart, _ := fs.Resolve(note.Span)
				nfile := fs.Get(note.Span.File)
				npath := nfile.FormatPath(opts.PathMode.String(), fs.BaseDir())
				fmt.Fprintf(w, "%s:%d:%d: note: %s\n", npath, nstart.Line, nstart.Col, note.Msg)
			}
		}
	}
}

// underlineFor builds the caret row for one diagnostic on one source line,
// or reports that the span does not touch the line.
func underlineFor(d diag.Diagnostic, file *source.File, fs *source.FileSet, line uint32, text string) (string, bool) {
	lineStart, lineEnd := lineBounds(file, line)
	spanStart, spanEnd := d.Primary.Start, d.Primary.End
	if spanEnd < spanStart {
		spanEnd = spanStart
	}
	// An empty span still gets a caret when it sits on this line.
	if spanEnd < lineStart || spanStart > lineEnd ||
		(spanStart < spanEnd && spanEnd == lineStart) ||
		(spanStart < spanEnd && spanStart == lineEnd) {
		return "", false
	}

	from := spanStart
	if from < lineStart {
		from = lineStart
	}
	to := spanEnd
	if to > lineEnd {
		to = lineEnd
	}
	if to < from {
		to = from
	}

	prefix := sliceLine(text, lineStart, lineStart, from)
	marked := sliceLine(text, lineStart, from, to)

	pad := runewidth.StringWidth(prefix)
	width := runewidth.StringWidth(marked)
	if width < 1 {
		width = 1
	}
	return strings.Repeat(" ", pad) + "^" + strings.Repeat("~", width-1), true
}

// sliceLine cuts [from, to) out of a line given the line's start offset.
func sliceLine(text string, lineStart, from, to uint32) string {
	lo := int(from - lineStart)
	hi := int(to - lineStart)
	if lo > len(text) {
		lo = len(text)
	}
	if hi > len(text) {
		hi = len(text)
	}
	if hi < lo {
		hi = lo
	}
	return text[lo:hi]
}

// lineBounds returns the [start, end) byte offsets of the 1-based line.
func lineBounds(f *source.File, line uint32) (uint32, uint32) {
	var start uint32
	if line >= 2 && int(line-2) < len(f.LineIdx) {
		start = f.LineIdx[line-2] + 1
	}
	end := uint32(len(f.Content))
	if int(line-1) < len(f.LineIdx) {
		end = f.LineIdx[line-1]
	}
	if end < start {
		end = start
	}
	return start, end
}

func severityText(sev diag.Severity, colored bool) string {
	label := "info"
	switch sev {
	case diag.SevError:
		label = "error"
	case diag.SevWarning:
		label = "warning"
	}
	if colored {
		return colorForSeverity(sev).Sprint(label)
	}
	return label
}

func colorForSeverity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}
