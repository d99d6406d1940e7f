package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Newline terminates a logical line.
	Newline
	// Indent opens a new indentation block.
	Indent
	// Dedent closes one indentation block.
	Dedent

	// Ident represents an identifier token. Soft keywords (type, match,
	// case) stay Ident; the parser decides by text and lookahead.
	Ident

	// KwFalse represents the 'False' keyword.
	KwFalse // False
	// KwNone represents the 'None' keyword.
	KwNone // None
	// KwTrue represents the 'True' keyword.
	KwTrue // True
	// KwAnd represents the 'and' keyword.
	KwAnd // and
	// KwAs represents the 'as' keyword.
	KwAs // as
	// KwAssert represents the 'assert' keyword.
	KwAssert // assert
	// KwAsync represents the 'async' keyword.
	KwAsync // async
	// KwAwait represents the 'await' keyword.
	KwAwait // await
	// KwBreak represents the 'break' keyword.
	KwBreak // break
	// KwClass represents the 'class' keyword.
	KwClass // class
	// KwContinue represents the 'continue' keyword.
	KwContinue // continue
	// KwDef represents the 'def' keyword.
	KwDef // def
	// KwDel represents the 'del' keyword.
	KwDel // del
	// KwElif represents the 'elif' keyword.
	KwElif // elif
	// KwElse represents the 'else' keyword.
	KwElse // else
	// KwExcept represents the 'except' keyword.
	KwExcept // except
	// KwFinally represents the 'finally' keyword.
	KwFinally // finally
	// KwFor represents the 'for' keyword.
	KwFor // for
	// KwFrom represents the 'from' keyword.
	KwFrom // from
	// KwGlobal represents the 'global' keyword.
	KwGlobal // global
	// KwIf represents the 'if' keyword.
	KwIf // if
	// KwImport represents the 'import' keyword.
	KwImport // import
	// KwIn represents the 'in' keyword.
	KwIn // in
	// KwIs represents the 'is' keyword.
	KwIs // is
	// KwLambda represents the 'lambda' keyword.
	KwLambda // lambda
	// KwNonlocal represents the 'nonlocal' keyword.
	KwNonlocal // nonlocal
	// KwNot represents the 'not' keyword.
	KwNot // not
	// KwOr represents the 'or' keyword.
	KwOr // or
	// KwPass represents the 'pass' keyword.
	KwPass // pass
	// KwRaise represents the 'raise' keyword.
	KwRaise // raise
	// KwReturn represents the 'return' keyword.
	KwReturn // return
	// KwTry represents the 'try' keyword.
	KwTry // try
	// KwWhile represents the 'while' keyword.
	KwWhile // while
	// KwWith represents the 'with' keyword.
	KwWith // with
	// KwYield represents the 'yield' keyword.
	KwYield // yield

	// Int represents an integer literal.
	Int
	// Float represents a floating point literal.
	Float
	// Complex represents an imaginary literal (1j).
	Complex
	// String represents a plain string or bytes literal, prefix included.
	String
	// FString represents a whole f-string literal; interpolations are
	// re-lexed by the parser with a ranged sub-lexer.
	FString

	// Plus represents the plus operator token.
	Plus // +
	// Minus represents the minus operator token.
	Minus // -
	// Star represents the star operator token.
	Star // *
	// DoubleStar represents the power operator token.
	DoubleStar // **
	// Slash represents the division operator token.
	Slash // /
	// DoubleSlash represents the floor division operator token.
	DoubleSlash // //
	// Percent represents the modulo operator token.
	Percent // %
	// At represents the matrix multiplication / decorator token.
	At // @
	// LeftShift represents the left shift operator token.
	LeftShift // <<
	// RightShift represents the right shift operator token.
	RightShift // >>
	// Amp represents the bitwise and operator token.
	Amp // &
	// Pipe represents the bitwise or operator token.
	Pipe // |
	// Caret represents the bitwise xor operator token.
	Caret // ^
	// Tilde represents the bitwise invert operator token.
	Tilde // ~
	// Lt represents the less-than operator token.
	Lt // <
	// Gt represents the greater-than operator token.
	Gt // >
	// LtEq represents the less-or-equal operator token.
	LtEq // <=
	// GtEq represents the greater-or-equal operator token.
	GtEq // >=
	// EqEq represents the equality operator token.
	EqEq // ==
	// NotEq represents the inequality operator token.
	NotEq // !=
	// LParen represents the left parenthesis token.
	LParen // (
	// RParen represents the right parenthesis token.
	RParen // )
	// LBracket represents the left bracket token.
	LBracket // [
	// RBracket represents the right bracket token.
	RBracket // ]
	// LBrace represents the left brace token.
	LBrace // {
	// RBrace represents the right brace token.
	RBrace // }
	// Comma represents the comma token.
	Comma // ,
	// Colon represents the colon token.
	Colon // :
	// ColonEq represents the walrus operator token.
	ColonEq // :=
	// Dot represents the dot token.
	Dot // .
	// Ellipsis represents the '...' token.
	Ellipsis // ...
	// Semicolon represents the semicolon token.
	Semicolon // ;
	// Assign represents the plain assignment token.
	Assign // =
	// Arrow represents the return annotation token.
	Arrow // ->
	// PlusEq represents the augmented add token.
	PlusEq // +=
	// MinusEq represents the augmented subtract token.
	MinusEq // -=
	// StarEq represents the augmented multiply token.
	StarEq // *=
	// SlashEq represents the augmented divide token.
	SlashEq // /=
	// DoubleSlashEq represents the augmented floor divide token.
	DoubleSlashEq // //=
	// PercentEq represents the augmented modulo token.
	PercentEq // %=
	// AtEq represents the augmented matrix multiply token.
	AtEq // @=
	// AmpEq represents the augmented bitwise and token.
	AmpEq // &=
	// PipeEq represents the augmented bitwise or token.
	PipeEq // |=
	// CaretEq represents the augmented bitwise xor token.
	CaretEq // ^=
	// LeftShiftEq represents the augmented left shift token.
	LeftShiftEq // <<=
	// RightShiftEq represents the augmented right shift token.
	RightShiftEq // >>=
	// DoubleStarEq represents the augmented power token.
	DoubleStarEq // **=
)

var kindNames = map[Kind]string{
	Invalid:  "Invalid",
	EOF:      "EOF",
	Newline:  "Newline",
	Indent:   "Indent",
	Dedent:   "Dedent",
	Ident:    "Ident",
	Int:      "Int",
	Float:    "Float",
	Complex:  "Complex",
	String:   "String",
	FString:  "FString",

	KwFalse: "False", KwNone: "None", KwTrue: "True", KwAnd: "and",
	KwAs: "as", KwAssert: "assert", KwAsync: "async", KwAwait: "await",
	KwBreak: "break", KwClass: "class", KwContinue: "continue",
	KwDef: "def", KwDel: "del", KwElif: "elif", KwElse: "else",
	KwExcept: "except", KwFinally: "finally", KwFor: "for", KwFrom: "from",
	KwGlobal: "global", KwIf: "if", KwImport: "import", KwIn: "in",
	KwIs: "is", KwLambda: "lambda", KwNonlocal: "nonlocal", KwNot: "not",
	KwOr: "or", KwPass: "pass", KwRaise: "raise", KwReturn: "return",
	KwTry: "try", KwWhile: "while", KwWith: "with", KwYield: "yield",

	Plus: "+", Minus: "-", Star: "*", DoubleStar: "**", Slash: "/",
	DoubleSlash: "//", Percent: "%", At: "@", LeftShift: "<<",
	RightShift: ">>", Amp: "&", Pipe: "|", Caret: "^", Tilde: "~",
	Lt: "<", Gt: ">", LtEq: "<=", GtEq: ">=", EqEq: "==", NotEq: "!=",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]",
	LBrace: "{", RBrace: "}", Comma: ",", Colon: ":", ColonEq: ":=",
	Dot: ".", Ellipsis: "...", Semicolon: ";", Assign: "=", Arrow: "->",
	PlusEq: "+=", MinusEq: "-=", StarEq: "*=", SlashEq: "/=",
	DoubleSlashEq: "//=", PercentEq: "%=", AtEq: "@=", AmpEq: "&=",
	PipeEq: "|=", CaretEq: "^=", LeftShiftEq: "<<=", RightShiftEq: ">>=",
	DoubleStarEq: "**=",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}
