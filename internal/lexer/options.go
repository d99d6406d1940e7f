package lexer

import (
	"krait/internal/diag"
	"krait/internal/source"
)

// Reporter is a thin local interface so the lexer does not depend on how
// diagnostics are stored. The lexer only calls it and keeps scanning.
type Reporter interface {
	Report(code diag.Code, span source.Span, msg string)
}

type Options struct {
	// Reporter may be nil; errors are then dropped but lexing continues.
	Reporter Reporter
	// TabSize is the column width a tab advances to (next multiple).
	// Zero means the default of 8.
	TabSize uint32
}

func (o Options) tabSize() uint32 {
	if o.TabSize == 0 {
		return 8
	}
	return o.TabSize
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, sp, msg)
	}
}
