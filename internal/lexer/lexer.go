package lexer

import (
	"krait/internal/diag"
	"krait/internal/source"
	"krait/internal/token"
)

// Lexer turns Python source into a stream of significant tokens.
// Line structure (Newline/Indent/Dedent) is synthesized from the
// indentation stack; comments and blank lines ride as leading trivia.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options

	look    *token.Token   // one-token lookahead buffer
	hold    []token.Trivia // accumulated leading trivia
	pending []token.Token  // queued structural tokens (Indent/Dedent/...)

	indents     []uint32 // stack of indentation columns, bottom is always 0
	parens      int      // open ()[]{} depth; suppresses line structure
	atLineStart bool
	needNewline bool // a logical line is open and must end in Newline
	exprMode    bool // SetRange sub-scan: no line structure at all
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:        file,
		cursor:      NewCursor(file),
		opts:        opts,
		indents:     []uint32{0},
		atLineStart: true,
	}
}

// SetRange restricts scanning to [start, limit) in expression mode:
// no indentation tracking and newlines become trivia. Used to re-lex
// f-string interpolations.
func (lx *Lexer) SetRange(start, limit uint32) {
	lx.cursor.Off = start
	lx.cursor.Limit = limit
	lx.look = nil
	lx.hold = nil
	lx.pending = nil
	lx.exprMode = true
	lx.atLineStart = false
	lx.needNewline = false
}

// Next returns the next significant token with its Leading trivia attached.
// After EOF it always returns EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	if tok, ok := lx.popPending(); ok {
		return tok
	}

	for {
		if lx.atLineStart && lx.parens == 0 && !lx.exprMode {
			if !lx.scanLineStart() {
				continue
			}
			if tok, ok := lx.popPending(); ok {
				return tok
			}
		}

		lx.collectTrivia()

		if lx.cursor.EOF() {
			return lx.finishEOF()
		}

		b := lx.cursor.Peek()
		if b == '\n' {
			nl := lx.cursor.Mark()
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(nl)
			if lx.parens > 0 || lx.exprMode {
				lx.holdTrivia(token.TriviaNewline, sp)
				continue
			}
			lx.atLineStart = true
			lx.needNewline = false
			return lx.emit(token.Token{Kind: token.Newline, Span: sp, Text: "\n"})
		}

		return lx.emit(lx.scanToken())
	}
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// EmptySpan is a zero-length span at the current position.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

// File returns the file this lexer scans.
func (lx *Lexer) File() *source.File {
	return lx.file
}

func (lx *Lexer) emit(tok token.Token) token.Token {
	tok.Leading = lx.hold
	lx.hold = nil
	// Only real tokens open a logical line; Newline/Indent/Dedent/EOF don't.
	if !tok.IsStructural() {
		lx.needNewline = true
	}
	return tok
}

func (lx *Lexer) popPending() (token.Token, bool) {
	if len(lx.pending) == 0 {
		return token.Token{}, false
	}
	tok := lx.pending[0]
	lx.pending = lx.pending[1:]
	return tok, true
}

func (lx *Lexer) queue(kind token.Kind, sp source.Span) {
	lx.pending = append(lx.pending, token.Token{Kind: kind, Span: sp})
}

// finishEOF closes the open logical line, unwinds the indentation stack,
// and settles into a stable EOF token.
func (lx *Lexer) finishEOF() token.Token {
	if !lx.exprMode {
		sp := lx.EmptySpan()
		if lx.needNewline {
			lx.needNewline = false
			lx.queue(token.Newline, sp)
		}
		for len(lx.indents) > 1 {
			lx.indents = lx.indents[:len(lx.indents)-1]
			lx.queue(token.Dedent, sp)
		}
		if tok, ok := lx.popPending(); ok {
			return tok
		}
	}
	return lx.emit(token.Token{Kind: token.EOF, Span: lx.EmptySpan()})
}

// scanToken dispatches on the current byte. Trivia and line structure are
// already out of the way.
func (lx *Lexer) scanToken() token.Token {
	b := lx.cursor.Peek()
	switch {
	case isIdentStartByte(b) || b >= utf8RuneSelf:
		return lx.scanIdentOrKeyword()
	case isDec(b) || (b == '.' && lx.isNumberAfterDot()):
		return lx.scanNumber()
	case isQuote(b):
		return lx.scanString(stringFlags{})
	default:
		return lx.scanOperatorOrPunct()
	}
}

// scanLineStart measures the indentation of a fresh logical line and
// queues Indent/Dedent tokens. It returns false when the line turned out
// to be blank or comment-only (the caller loops and tries the next line).
func (lx *Lexer) scanLineStart() bool {
	start := lx.cursor.Mark()
	col := uint32(0)
	sawSpace := false
	taberr := false
	for {
		switch lx.cursor.Peek() {
		case ' ':
			sawSpace = true
			col++
			lx.cursor.Bump()
			continue
		case '\t':
			if sawSpace && !taberr {
				taberr = true
			}
			col += lx.opts.tabSize() - col%lx.opts.tabSize()
			lx.cursor.Bump()
			continue
		}
		break
	}

	// Blank or comment-only lines never change indentation.
	if lx.cursor.EOF() {
		lx.holdSpanTrivia(token.TriviaSpace, start)
		lx.atLineStart = false
		return true
	}
	switch lx.cursor.Peek() {
	case '\n':
		lx.cursor.Bump()
		lx.holdSpanTrivia(token.TriviaNewline, start)
		return false
	case '#':
		lx.holdSpanTrivia(token.TriviaSpace, start)
		lx.scanCommentIntoHold()
		if lx.cursor.Peek() == '\n' {
			nl := lx.cursor.Mark()
			lx.cursor.Bump()
			lx.holdTrivia(token.TriviaNewline, lx.cursor.SpanFrom(nl))
		}
		return false
	}

	if taberr {
		lx.errLex(diag.LexTabError, lx.cursor.SpanFrom(start),
			"inconsistent use of tabs and spaces in indentation")
	}

	lx.holdSpanTrivia(token.TriviaSpace, start)
	lx.atLineStart = false

	top := lx.indents[len(lx.indents)-1]
	here := lx.EmptySpan()
	switch {
	case col > top:
		lx.indents = append(lx.indents, col)
		lx.queue(token.Indent, lx.cursor.SpanFrom(start))
	case col < top:
		for len(lx.indents) > 1 && lx.indents[len(lx.indents)-1] > col {
			lx.indents = lx.indents[:len(lx.indents)-1]
			lx.queue(token.Dedent, here)
		}
		if lx.indents[len(lx.indents)-1] != col {
			// Snap to the nearest outer level and keep going.
			lx.errLex(diag.LexBadIndent, lx.cursor.SpanFrom(start),
				"unindent does not match any outer indentation level")
		}
	}
	return true
}

// collectTrivia gathers horizontal whitespace, explicit line joins, and
// comments that precede the next significant token.
func (lx *Lexer) collectTrivia() {
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if b == ' ' || b == '\t' || b == '\f' {
			for {
				b2 := lx.cursor.Peek()
				if b2 != ' ' && b2 != '\t' && b2 != '\f' {
					break
				}
				lx.cursor.Bump()
			}
			lx.holdSpanTrivia(token.TriviaSpace, start)
			continue
		}

		if b == '\\' {
			if _, b1, ok := lx.cursor.Peek2(); ok && b1 == '\n' {
				// Explicit line join: the next physical line continues
				// this logical line.
				lx.cursor.Bump()
				lx.cursor.Bump()
				lx.holdSpanTrivia(token.TriviaSpace, start)
				continue
			}
			break
		}

		if b == '#' {
			lx.scanCommentIntoHold()
			continue
		}

		break
	}
}

func (lx *Lexer) scanCommentIntoHold() {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	lx.holdSpanTrivia(token.TriviaComment, start)
}

func (lx *Lexer) holdSpanTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	if sp.Empty() {
		return
	}
	lx.holdTrivia(kind, sp)
}

func (lx *Lexer) holdTrivia(kind token.TriviaKind, sp source.Span) {
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}
