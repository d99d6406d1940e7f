package token

import "krait/internal/source"

type TriviaKind uint8

const (
	// TriviaSpace covers horizontal whitespace and explicit line joins.
	TriviaSpace TriviaKind = iota
	// TriviaNewline covers blank and otherwise non-logical line breaks.
	TriviaNewline
	// TriviaComment is a '#' comment running to the end of its line.
	TriviaComment
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "Space"
	case TriviaNewline:
		return "Newline"
	case TriviaComment:
		return "Comment"
	}
	return "Unknown"
}

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
