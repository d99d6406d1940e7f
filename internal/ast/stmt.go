package ast

import (
	"krait/internal/source"
)

type StmtKind uint8

const (
	// StmtError marks a statement slot consumed by error recovery.
	StmtError StmtKind = iota
	StmtExpr
	StmtAssign
	StmtAugAssign
	StmtAnnAssign
	StmtTypeAlias
	StmtReturn
	StmtDelete
	StmtPass
	StmtBreak
	StmtContinue
	StmtImport
	StmtImportFrom
	StmtGlobal
	StmtNonlocal
	StmtAssert
	StmtRaise
	StmtIf
	StmtWhile
	StmtFor
	StmtWith
	StmtTry
	StmtFunctionDef
	StmtClassDef
)

// Stmt is the fixed-size node header; kind-specific fields live in the
// per-kind payload arenas.
type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

// ImportAlias is one `name` or `name as alias` entry.
type ImportAlias struct {
	Name     source.StringID // dotted for plain imports
	NameSpan source.Span
	AsName   source.StringID // 0 when no alias
}

// WithItem is one `ctx` or `ctx as vars` entry of a with statement.
type WithItem struct {
	Ctx  ExprID
	Vars ExprID // optional
}

// ExceptHandler is one except clause of a try statement.
type ExceptHandler struct {
	Span   source.Span
	Type   ExprID          // optional; bare `except:`
	Name   source.StringID // optional `as name`
	Body   []StmtID
	IsStar bool // `except*`
}

type (
	StmtExprData struct {
		Value ExprID
	}
	// StmtAssignData covers chained assignment: a = b = value.
	StmtAssignData struct {
		Targets []ExprID
		Value   ExprID
	}
	StmtAugAssignData struct {
		Target ExprID
		Op     BinOp
		Value  ExprID
	}
	// StmtAnnAssignData value is optional: `x: int` alone is legal.
	StmtAnnAssignData struct {
		Target     ExprID
		Annotation ExprID
		Value      ExprID
	}
	StmtTypeAliasData struct {
		Name       ExprID
		TypeParams []TypeParam
		Value      ExprID
	}
	StmtReturnData struct {
		Value ExprID // optional
	}
	StmtDeleteData struct {
		Targets []ExprID
	}
	StmtImportData struct {
		Names []ImportAlias
	}
	StmtImportFromData struct {
		Module source.StringID // 0 for pure relative imports
		Level  uint32          // count of leading dots
		Names  []ImportAlias
		Star   bool // `from m import *`
	}
	// StmtNamesData backs global and nonlocal.
	StmtNamesData struct {
		Names []source.StringID
	}
	StmtAssertData struct {
		Test ExprID
		Msg  ExprID // optional
	}
	StmtRaiseData struct {
		Exc   ExprID // optional
		Cause ExprID // optional `from cause`
	}
	// StmtIfData models elif chains as a nested If in Else with IsElif set.
	StmtIfData struct {
		Cond   ExprID
		Body   []StmtID
		Else   []StmtID
		IsElif bool
	}
	StmtWhileData struct {
		Cond ExprID
		Body []StmtID
		Else []StmtID
	}
	StmtForData struct {
		Target  ExprID
		Iter    ExprID
		Body    []StmtID
		Else    []StmtID
		IsAsync bool
	}
	StmtWithData struct {
		Items   []WithItem
		Body    []StmtID
		IsAsync bool
	}
	StmtTryData struct {
		Body     []StmtID
		Handlers []ExceptHandler
		Else     []StmtID
		Finally  []StmtID
	}
	StmtFunctionDefData struct {
		Name       source.StringID
		NameSpan   source.Span
		Decorators []ExprID
		TypeParams []TypeParam
		Params     Params
		Returns    ExprID // optional
		Body       []StmtID
		IsAsync    bool
	}
	StmtClassDefData struct {
		Name       source.StringID
		NameSpan   source.Span
		Decorators []ExprID
		TypeParams []TypeParam
		Bases      []ExprID
		Keywords   []Keyword
		Body       []StmtID
	}
)
