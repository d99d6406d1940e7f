package lexer

import (
	"krait/internal/diag"
	"krait/internal/token"
)

// scanNumber scans Python numeric literals: decimal/hex/octal/binary
// integers with underscore separators, floats with optional exponent, and
// imaginary literals ending in j/J. Malformed forms become one Invalid
// token covering the whole run so the parser can step over it.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	kind := token.Int
	bad := false

	if lx.cursor.Peek() == '0' {
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' {
			switch b1 {
			case 'x', 'X':
				lx.cursor.Bump()
				lx.cursor.Bump()
				bad = !lx.scanDigits(isHex)
				return lx.finishNumber(start, kind, bad)
			case 'o', 'O':
				lx.cursor.Bump()
				lx.cursor.Bump()
				bad = !lx.scanDigits(isOct)
				return lx.finishNumber(start, kind, bad)
			case 'b', 'B':
				lx.cursor.Bump()
				lx.cursor.Bump()
				bad = !lx.scanDigits(isBin)
				return lx.finishNumber(start, kind, bad)
			}
		}
	}

	hasInt := false
	if isDec(lx.cursor.Peek()) {
		hasInt = true
		if !lx.scanDigits(isDec) {
			bad = true
		}
	}

	if b0, b1, ok := lx.cursor.Peek2(); lx.cursor.Peek() == '.' && (!ok || b0 != '.' || b1 != '.') {
		// A bare trailing dot is still a float ("1." and ".5" are valid).
		lx.cursor.Bump()
		kind = token.Float
		if isDec(lx.cursor.Peek()) {
			if !lx.scanDigits(isDec) {
				bad = true
			}
		} else if !hasInt {
			bad = true
		}
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		if b1 := lx.cursor.PeekAt(1); isDec(b1) || ((b1 == '+' || b1 == '-') && isDec(lx.cursor.PeekAt(2))) {
			lx.cursor.Bump()
			if b2 := lx.cursor.Peek(); b2 == '+' || b2 == '-' {
				lx.cursor.Bump()
			}
			kind = token.Float
			if !lx.scanDigits(isDec) {
				bad = true
			}
		}
	}

	if b := lx.cursor.Peek(); b == 'j' || b == 'J' {
		lx.cursor.Bump()
		kind = token.Complex
	}

	// Digits running straight into identifier characters are one error.
	if isIdentStartByte(lx.cursor.Peek()) || lx.cursor.Peek() >= utf8RuneSelf {
		for isIdentContinueByte(lx.cursor.Peek()) || lx.cursor.Peek() >= utf8RuneSelf {
			lx.bumpRune()
		}
		bad = true
	}

	return lx.finishNumber(start, kind, bad)
}

// scanDigits consumes digits of the given class with underscore
// separators. Reports false when no digit was consumed or an underscore
// dangles at either end.
func (lx *Lexer) scanDigits(class func(byte) bool) bool {
	seen := false
	lastUnderscore := false
	for {
		b := lx.cursor.Peek()
		switch {
		case class(b):
			seen = true
			lastUnderscore = false
			lx.cursor.Bump()
		case b == '_':
			if !seen || lastUnderscore {
				lx.cursor.Bump()
				return false
			}
			lastUnderscore = true
			lx.cursor.Bump()
		default:
			return seen && !lastUnderscore
		}
	}
}

func (lx *Lexer) finishNumber(start Mark, kind token.Kind, bad bool) token.Token {
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if bad {
		lx.errLex(diag.LexBadNumber, sp, "invalid numeric literal")
		return token.Token{Kind: token.Invalid, Span: sp, Text: text}
	}
	return token.Token{Kind: kind, Span: sp, Text: text}
}
