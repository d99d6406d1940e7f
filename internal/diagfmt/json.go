package diagfmt

import (
	"encoding/json"
	"io"

	"krait/internal/diag"
	"krait/internal/source"
)

type SpanJSON struct {
	File  uint32 `json:"file"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

type PositionJSON struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

type NoteJSON struct {
	Span    SpanJSON      `json:"span"`
	Message string        `json:"message"`
	Start   *PositionJSON `json:"start,omitempty"`
}

type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Path     string        `json:"path"`
	Span     SpanJSON      `json:"span"`
	Start    *PositionJSON `json:"start,omitempty"`
	End      *PositionJSON `json:"end,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
}

// FormatDiagnosticsJSON writes the diagnostics as a JSON array, truncated
// to opts.Max entries when positive.
func FormatDiagnosticsJSON(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) error {
	return WriteJSON(w, CollectDiagnosticsJSON(diags, fs, opts))
}

// CollectDiagnosticsJSON converts diagnostics to their serializable form
// so callers can merge several files into one array.
func CollectDiagnosticsJSON(diags []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) []DiagnosticJSON {
	if opts.Max > 0 && len(diags) > opts.Max {
		diags = diags[:opts.Max]
	}

	output := make([]DiagnosticJSON, 0, len(diags))
	for _, d := range diags {
		file := fs.Get(d.Primary.File)
		entry := DiagnosticJSON{
			Severity: severityText(d.Severity, false),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Path:     file.FormatPath(opts.PathMode.String(), fs.BaseDir()),
			Span:     toSpanJSON(d.Primary),
		}
		if opts.IncludePositions {
			start, end := fs.Resolve(d.Primary)
			entry.Start = &PositionJSON{Line: start.Line, Col: start.Col}
			entry.End = &PositionJSON{Line: end.Line, Col: end.Col}
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				nj := NoteJSON{Span: toSpanJSON(note.Span), Message: note.Msg}
				if opts.IncludePositions {
					nstart, _ := fs.Resolve(note.Span)
					nj.Start = &PositionJSON{Line: nstart.Line, Col: nstart.Col}
				}
				entry.Notes = append(entry.Notes, nj)
			}
		}
		output = append(output, entry)
	}
	return output
}

// WriteJSON writes any serializable value with two-space indentation.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func toSpanJSON(sp source.Span) SpanJSON {
	return SpanJSON{File: uint32(sp.File), Start: sp.Start, End: sp.End}
}
