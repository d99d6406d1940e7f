package lexer

import (
	"krait/internal/diag"
	"krait/internal/source"
)

// ReporterAdapter bridges the lexer's thin Reporter to a diag.Bag.
type ReporterAdapter struct {
	Bag *diag.Bag
}

func (r *ReporterAdapter) Report(code diag.Code, span source.Span, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(diag.NewError(code, span, msg))
}

// DiagAdapter forwards lexer reports to any diag.Reporter.
type DiagAdapter struct {
	Next diag.Reporter
}

func (r DiagAdapter) Report(code diag.Code, span source.Span, msg string) {
	if r.Next == nil {
		return
	}
	r.Next.Report(code, diag.SevError, span, msg, nil)
}
