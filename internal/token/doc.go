// Package token defines lexical token kinds and trivia for Python source.
// Invariants:
//   - Token.Text is a copy of the original source slice.
//   - Token.Span matches Text exactly (Start..End); structural tokens
//     (Newline, Indent, Dedent, EOF) may carry an empty span.
//   - Comments never appear in the main token stream; they ride as leading
//     Trivia on the next significant token.
//   - An f-string is one FString token for the whole literal. Its
//     interpolations are parsed later from the recorded span.
package token
