package ast

import (
	"krait/internal/source"
)

type ExprKind uint8

const (
	// ExprError marks a hole left by error recovery.
	ExprError ExprKind = iota
	ExprName
	ExprNumber
	ExprString
	ExprConst
	ExprTuple
	ExprList
	ExprSet
	ExprDict
	ExprStarred
	ExprUnary
	ExprBinary
	ExprBool
	ExprCompare
	ExprCall
	ExprAttribute
	ExprSubscript
	ExprSlice
	ExprLambda
	ExprIfExp
	ExprYield
	ExprYieldFrom
	ExprAwait
	ExprNamed
	ExprListComp
	ExprSetComp
	ExprDictComp
	ExprGenerator
)

// Expr is the fixed-size node header; kind-specific fields live in the
// per-kind payload arenas.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// ExprCtx records how a name-like expression is used.
type ExprCtx uint8

const (
	CtxLoad ExprCtx = iota
	CtxStore
	CtxDel
)

// NumberKind distinguishes the numeric literal families.
type NumberKind uint8

const (
	NumInt NumberKind = iota
	NumFloat
	NumComplex
)

// ConstKind covers the keyword constants.
type ConstKind uint8

const (
	ConstNone ConstKind = iota
	ConstTrue
	ConstFalse
	ConstEllipsis
)

// StringPartFlags carries the prefix letters of one string literal piece.
type StringPartFlags uint8

const (
	StringRaw StringPartFlags = 1 << iota
	StringBytes
	StringFString
)

// StringPart is one literal piece of a possibly concatenated string.
// Text is the raw source slice, prefix and quotes included.
type StringPart struct {
	Span  source.Span
	Text  source.StringID
	Flags StringPartFlags
	// Elems is set only for f-string pieces.
	Elems []FStringElem
}

// FStringElemKind splits f-string content into literal runs and
// replacement fields.
type FStringElemKind uint8

const (
	FStringText FStringElemKind = iota
	FStringExpr
)

// FStringElem is literal text or one replacement field of an f-string.
type FStringElem struct {
	Kind FStringElemKind
	Span source.Span
	// Text holds the literal run for FStringText.
	Text source.StringID
	// Replacement field parts, FStringExpr only.
	Value      ExprID
	SelfDoc    bool // the `{x=}` debugging form
	Conversion byte // 0 or one of 's', 'r', 'a'
	FormatSpec []FStringElem
}

// DictItem is one entry of a dict display. A missing Key means a `**`
// unpacking entry.
type DictItem struct {
	Key   ExprID
	Value ExprID
}

// Keyword is a keyword argument in a call or class header. A missing Name
// means `**` unpacking.
type Keyword struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID
}

// CompClause is one `for ... in ... [if ...]*` clause of a comprehension.
type CompClause struct {
	Target  ExprID
	Iter    ExprID
	Ifs     []ExprID
	IsAsync bool
}

type (
	ExprNameData struct {
		Name source.StringID
		Ctx  ExprCtx
	}
	ExprNumberData struct {
		Kind NumberKind
		Text source.StringID
	}
	ExprStringData struct {
		Parts []StringPart
	}
	ExprConstData struct {
		Kind ConstKind
	}
	// ExprSeqData backs tuple, list, and set displays.
	ExprSeqData struct {
		Elems []ExprID
	}
	ExprDictData struct {
		Items []DictItem
	}
	ExprStarredData struct {
		Value ExprID
		Ctx   ExprCtx
	}
	ExprUnaryData struct {
		Op      UnaryOp
		Operand ExprID
	}
	ExprBinaryData struct {
		Op    BinOp
		Left  ExprID
		Right ExprID
	}
	ExprBoolData struct {
		Op     BoolOp
		Values []ExprID
	}
	ExprCompareData struct {
		Left        ExprID
		Ops         []CmpOp
		Comparators []ExprID
	}
	ExprCallData struct {
		Func     ExprID
		Args     []ExprID
		Keywords []Keyword
	}
	ExprAttributeData struct {
		Value    ExprID
		Attr     source.StringID
		AttrSpan source.Span
	}
	ExprSubscriptData struct {
		Value ExprID
		Index ExprID
	}
	// ExprSliceData fields are all optional.
	ExprSliceData struct {
		Lower ExprID
		Upper ExprID
		Step  ExprID
	}
	ExprLambdaData struct {
		Params Params
		Body   ExprID
	}
	// ExprIfExpData follows source order: Body if Cond else Else.
	ExprIfExpData struct {
		Body ExprID
		Cond ExprID
		Else ExprID
	}
	// ExprYieldData value is optional.
	ExprYieldData struct {
		Value ExprID
	}
	ExprNamedData struct {
		Target ExprID
		Value  ExprID
	}
	// ExprCompData backs all four comprehension kinds; Value is set only
	// for dict comprehensions.
	ExprCompData struct {
		Elt     ExprID
		Value   ExprID
		Clauses []CompClause
	}
)
