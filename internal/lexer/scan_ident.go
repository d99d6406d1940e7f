package lexer

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"krait/internal/diag"
	"krait/internal/token"
)

// scanIdentOrKeyword scans an identifier and classifies it through
// LookupKeyword. A short identifier immediately followed by a quote is a
// string prefix (r, b, f, u and their combinations) and re-dispatches to
// the string scanner.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.peekRune()
	if sz == 0 {
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "invalid UTF-8 byte")
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}

	ascii := true
	if r < utf8RuneSelf {
		lx.cursor.Bump()
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		// A non-ASCII continuation switches to the slow path.
		if lx.cursor.Peek() >= utf8RuneSelf {
			ascii = false
		}
	} else {
		if !isIdentStartRune(r) {
			lx.bumpRune()
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexUnknownChar, sp, "unrecognized character in source")
			return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
		ascii = false
		lx.bumpRune()
	}

	if !ascii {
		for {
			r2, sz2 := lx.peekRune()
			if sz2 == 0 {
				break
			}
			if r2 < utf8RuneSelf {
				if !isIdentContinueByte(byte(r2)) {
					break
				}
			} else if !isIdentContinueRune(r2) {
				break
			}
			lx.bumpRune()
		}
	}

	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])

	// String prefix? Only short ASCII runs qualify.
	if len(text) <= 2 && isQuote(lx.cursor.Peek()) {
		if flags, ok := parseStringPrefix(text); ok {
			lx.cursor.Reset(start)
			return lx.scanString(flags)
		}
	}

	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}

	// PEP 3131: non-ASCII identifiers compare NFKC-normalized, so "ﬁ"
	// and "fi" are the same name.
	if !ascii {
		text = norm.NFKC.String(text)
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}

type stringFlags struct {
	Raw     bool
	Bytes   bool
	FString bool
}

func parseStringPrefix(s string) (stringFlags, bool) {
	var f stringFlags
	for _, c := range strings.ToLower(s) {
		switch c {
		case 'r':
			if f.Raw {
				return f, false
			}
			f.Raw = true
		case 'b':
			if f.Bytes || f.FString {
				return f, false
			}
			f.Bytes = true
		case 'f':
			if f.FString || f.Bytes {
				return f, false
			}
			f.FString = true
		case 'u':
			if f.Raw || f.Bytes || f.FString || len(s) > 1 {
				return f, false
			}
		default:
			return f, false
		}
	}
	return f, true
}
