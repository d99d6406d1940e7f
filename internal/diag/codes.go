package diag

import (
	"fmt"
)

type Code uint16

// Codes are grouped by the phase that produces them: lexical errors in the
// 1000s, syntax errors in the 2000s, semantic syntax errors in the 3000s,
// and mechanical I/O failures in the 4000s.
const (
	UnknownCode Code = 0

	// Lexical
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003
	LexBadIndent          Code = 1004
	LexTabError           Code = 1005
	LexStrayBackslash     Code = 1006
	LexBadIdentifier      Code = 1007

	// Syntax
	SynInfo                Code = 2000
	SynExpectedStatement   Code = 2001
	SynExpectedExpression  Code = 2002
	SynUnexpectedToken     Code = 2003
	SynExpectedIndent      Code = 2004
	SynSimpleStmtSeparator Code = 2005
	SynStarredExpression   Code = 2006
	SynYieldExpression     Code = 2007
	SynUnclosedDelimiter   Code = 2008
	SynInvalidTarget       Code = 2009
	SynParamOrder          Code = 2010
	SynNestedTooDeep       Code = 2011
	SynExpectedIdentifier  Code = 2012
	SynExpectedColon       Code = 2013
	SynVersionGated        Code = 2014
	SynUnterminatedFString Code = 2015

	// Semantic syntax
	SemInfo                   Code = 3000
	SemYieldInTypeAlias       Code = 3001
	SemAwaitInTypeAlias       Code = 3002
	SemNamedExprInTypeAlias   Code = 3003
	SemYieldInComprehension   Code = 3004

	// I/O
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown diagnostic",

	LexInfo:               "lexical note",
	LexUnknownChar:        "unrecognized character",
	LexUnterminatedString: "unterminated string literal",
	LexBadNumber:          "malformed numeric literal",
	LexBadIndent:          "unindent does not match any outer indentation level",
	LexTabError:           "inconsistent use of tabs and spaces in indentation",
	LexStrayBackslash:     "unexpected character after line continuation",
	LexBadIdentifier:      "invalid character in identifier",

	SynInfo:                "syntax note",
	SynExpectedStatement:   "expected a statement",
	SynExpectedExpression:  "expected an expression",
	SynUnexpectedToken:     "unexpected token",
	SynExpectedIndent:      "expected an indented block",
	SynSimpleStmtSeparator: "simple statements must be separated",
	SynStarredExpression:   "starred expression not allowed here",
	SynYieldExpression:     "yield expression not allowed here",
	SynUnclosedDelimiter:   "unclosed delimiter",
	SynInvalidTarget:       "invalid assignment target",
	SynParamOrder:          "invalid parameter order",
	SynNestedTooDeep:       "expressions nested too deeply",
	SynExpectedIdentifier:  "expected an identifier",
	SynExpectedColon:       "expected ':'",
	SynVersionGated:        "syntax requires a newer target version",
	SynUnterminatedFString: "unterminated f-string expression",

	SemInfo:                 "semantic syntax note",
	SemYieldInTypeAlias:     "yield expression within a type alias",
	SemAwaitInTypeAlias:     "await expression within a type alias",
	SemNamedExprInTypeAlias: "named expression within a type alias",
	SemYieldInComprehension: "yield expression within a comprehension",

	IOLoadFileError:  "failed to load file",
	IOWriteFileError: "failed to write file",
}

// ID returns the stable textual form of the code, e.g. "SYN2001".
func (c Code) ID() string {
	switch {
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("LEX%d", uint16(c))
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("SYN%d", uint16(c))
	case c >= 3000 && c < 4000:
		return fmt.Sprintf("SEM%d", uint16(c))
	case c >= 4000 && c < 5000:
		return fmt.Sprintf("IO%d", uint16(c))
	default:
		return fmt.Sprintf("KRT%d", uint16(c))
	}
}

func (c Code) String() string {
	return c.ID()
}

// Description returns the short human title for the code.
func (c Code) Description() string {
	if d, ok := codeDescription[c]; ok {
		return d
	}
	return "unknown diagnostic"
}

// IsSemantic reports whether the code belongs to the post-parse semantic
// syntax pass.
func (c Code) IsSemantic() bool {
	return c >= 3000 && c < 4000
}
