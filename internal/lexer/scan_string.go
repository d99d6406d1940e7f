package lexer

import (
	"krait/internal/diag"
	"krait/internal/token"
)

// scanString scans a string literal starting at its prefix (if any) or at
// the opening quote. The whole literal, replacement fields of f-strings
// included, becomes one token; the parser re-lexes interpolations later.
func (lx *Lexer) scanString(flags stringFlags) token.Token {
	start := lx.cursor.Mark()

	// Skip the prefix letters the ident scanner already validated.
	for !isQuote(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}

	q := lx.cursor.Peek()
	lx.cursor.Bump()

	triple := false
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == q && b1 == q {
		lx.cursor.Bump()
		lx.cursor.Bump()
		triple = true
	} else if lx.cursor.Peek() == q {
		// Empty string: opening quote immediately closed.
		lx.cursor.Bump()
		return lx.finishString(start, flags)
	}

	braces := 0 // f-string replacement-field depth
	for {
		if lx.cursor.EOF() {
			return lx.unterminated(start, flags)
		}
		b := lx.cursor.Peek()

		switch {
		case b == '\n':
			if triple {
				lx.cursor.Bump()
				continue
			}
			// The token ends before the newline so line structure stays intact.
			return lx.unterminated(start, flags)

		case b == '\\':
			// Backslash never terminates, raw strings included: r"\" is
			// unterminated in Python too.
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				return lx.unterminated(start, flags)
			}
			if !triple && lx.cursor.Peek() == '\n' && braces == 0 {
				lx.cursor.Bump()
				continue
			}
			lx.cursor.Bump()
			continue

		case b == q && braces == 0:
			if !triple {
				lx.cursor.Bump()
				return lx.finishString(start, flags)
			}
			if b0, b1, b2, ok := lx.cursor.Peek3(); ok && b0 == q && b1 == q && b2 == q {
				lx.cursor.Bump()
				lx.cursor.Bump()
				lx.cursor.Bump()
				return lx.finishString(start, flags)
			}
			lx.cursor.Bump()
			continue

		case flags.FString && b == '{':
			// {{ is a literal brace; the two halves cancel either way.
			lx.cursor.Bump()
			if lx.cursor.Peek() == '{' {
				lx.cursor.Bump()
				continue
			}
			braces++
			continue

		case flags.FString && b == '}':
			lx.cursor.Bump()
			if braces > 0 {
				braces--
				continue
			}
			if lx.cursor.Peek() == '}' {
				lx.cursor.Bump()
			}
			continue

		case flags.FString && braces > 0 && isQuote(b):
			// Nested string inside a replacement field; since 3.12 it may
			// reuse the outer quote. Skip it whole.
			if !lx.skipNestedString() {
				return lx.unterminated(start, flags)
			}
			continue

		default:
			lx.cursor.Bump()
		}
	}
}

// skipNestedString consumes a string literal appearing inside an f-string
// replacement field. Reports false on EOF or a bare newline in a
// single-quoted nested string.
func (lx *Lexer) skipNestedString() bool {
	q := lx.cursor.Peek()
	lx.cursor.Bump()

	triple := false
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == q && b1 == q {
		lx.cursor.Bump()
		lx.cursor.Bump()
		triple = true
	} else if lx.cursor.Peek() == q {
		lx.cursor.Bump()
		return true
	}

	for {
		if lx.cursor.EOF() {
			return false
		}
		b := lx.cursor.Peek()
		if b == '\n' && !triple {
			return false
		}
		if b == '\\' {
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				return false
			}
			lx.cursor.Bump()
			continue
		}
		if b == q {
			if !triple {
				lx.cursor.Bump()
				return true
			}
			if b0, b1, b2, ok := lx.cursor.Peek3(); ok && b0 == q && b1 == q && b2 == q {
				lx.cursor.Bump()
				lx.cursor.Bump()
				lx.cursor.Bump()
				return true
			}
		}
		lx.cursor.Bump()
	}
}

func (lx *Lexer) finishString(start Mark, flags stringFlags) token.Token {
	sp := lx.cursor.SpanFrom(start)
	kind := token.String
	if flags.FString {
		kind = token.FString
	}
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) unterminated(start Mark, flags stringFlags) token.Token {
	sp := lx.cursor.SpanFrom(start)
	msg := "unterminated string literal"
	if flags.FString {
		msg = "unterminated f-string literal"
	}
	lx.errLex(diag.LexUnterminatedString, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
