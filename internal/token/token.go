package token

import (
	"krait/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case Int, Float, Complex, String, FString:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a hard keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwFalse && t.Kind <= KwYield
}

// IsStructural reports whether the token encodes line structure rather
// than source text.
func (t Token) IsStructural() bool {
	switch t.Kind {
	case Newline, Indent, Dedent, EOF:
		return true
	default:
		return false
	}
}

// Comments returns the comment trivia riding on the token.
func (t Token) Comments() []Trivia {
	var out []Trivia
	for _, tr := range t.Leading {
		if tr.Kind == TriviaComment {
			out = append(out, tr)
		}
	}
	return out
}
