package lexer

import (
	"krait/internal/diag"
	"krait/internal/token"
)

// scanOperatorOrPunct scans operators and delimiters, longest match first.
// Bracket tokens maintain the paren depth that suppresses line structure.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()

	mk := func(kind token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}

	// Three-byte operators.
	switch {
	case lx.try3('*', '*', '='):
		return mk(token.DoubleStarEq)
	case lx.try3('/', '/', '='):
		return mk(token.DoubleSlashEq)
	case lx.try3('<', '<', '='):
		return mk(token.LeftShiftEq)
	case lx.try3('>', '>', '='):
		return mk(token.RightShiftEq)
	case lx.try3('.', '.', '.'):
		return mk(token.Ellipsis)
	}

	// Two-byte operators.
	switch {
	case lx.try2('*', '*'):
		return mk(token.DoubleStar)
	case lx.try2('/', '/'):
		return mk(token.DoubleSlash)
	case lx.try2('<', '<'):
		return mk(token.LeftShift)
	case lx.try2('>', '>'):
		return mk(token.RightShift)
	case lx.try2('<', '='):
		return mk(token.LtEq)
	case lx.try2('>', '='):
		return mk(token.GtEq)
	case lx.try2('=', '='):
		return mk(token.EqEq)
	case lx.try2('!', '='):
		return mk(token.NotEq)
	case lx.try2(':', '='):
		return mk(token.ColonEq)
	case lx.try2('-', '>'):
		return mk(token.Arrow)
	case lx.try2('+', '='):
		return mk(token.PlusEq)
	case lx.try2('-', '='):
		return mk(token.MinusEq)
	case lx.try2('*', '='):
		return mk(token.StarEq)
	case lx.try2('/', '='):
		return mk(token.SlashEq)
	case lx.try2('%', '='):
		return mk(token.PercentEq)
	case lx.try2('@', '='):
		return mk(token.AtEq)
	case lx.try2('&', '='):
		return mk(token.AmpEq)
	case lx.try2('|', '='):
		return mk(token.PipeEq)
	case lx.try2('^', '='):
		return mk(token.CaretEq)
	}

	b := lx.cursor.Bump()
	switch b {
	case '+':
		return mk(token.Plus)
	case '-':
		return mk(token.Minus)
	case '*':
		return mk(token.Star)
	case '/':
		return mk(token.Slash)
	case '%':
		return mk(token.Percent)
	case '@':
		return mk(token.At)
	case '&':
		return mk(token.Amp)
	case '|':
		return mk(token.Pipe)
	case '^':
		return mk(token.Caret)
	case '~':
		return mk(token.Tilde)
	case '<':
		return mk(token.Lt)
	case '>':
		return mk(token.Gt)
	case '=':
		return mk(token.Assign)
	case ',':
		return mk(token.Comma)
	case ':':
		return mk(token.Colon)
	case '.':
		return mk(token.Dot)
	case ';':
		return mk(token.Semicolon)
	case '(':
		lx.parens++
		return mk(token.LParen)
	case '[':
		lx.parens++
		return mk(token.LBracket)
	case '{':
		lx.parens++
		return mk(token.LBrace)
	case ')':
		if lx.parens > 0 {
			lx.parens--
		}
		return mk(token.RParen)
	case ']':
		if lx.parens > 0 {
			lx.parens--
		}
		return mk(token.RBracket)
	case '}':
		if lx.parens > 0 {
			lx.parens--
		}
		return mk(token.RBrace)
	case '\\':
		tok := mk(token.Invalid)
		lx.errLex(diag.LexStrayBackslash, tok.Span, "unexpected character after line continuation character")
		return tok
	default:
		tok := mk(token.Invalid)
		lx.errLex(diag.LexUnknownChar, tok.Span, "unrecognized character in source")
		return tok
	}
}
