package ast

import (
	"krait/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena      *Arena[Expr]
	Names      *Arena[ExprNameData]
	Numbers    *Arena[ExprNumberData]
	Strings    *Arena[ExprStringData]
	Consts     *Arena[ExprConstData]
	Seqs       *Arena[ExprSeqData]
	Dicts      *Arena[ExprDictData]
	Starreds   *Arena[ExprStarredData]
	Unaries    *Arena[ExprUnaryData]
	Binaries   *Arena[ExprBinaryData]
	Bools      *Arena[ExprBoolData]
	Compares   *Arena[ExprCompareData]
	Calls      *Arena[ExprCallData]
	Attributes *Arena[ExprAttributeData]
	Subscripts *Arena[ExprSubscriptData]
	Slices     *Arena[ExprSliceData]
	Lambdas    *Arena[ExprLambdaData]
	IfExps     *Arena[ExprIfExpData]
	Yields     *Arena[ExprYieldData]
	Nameds     *Arena[ExprNamedData]
	Comps      *Arena[ExprCompData]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:      NewArena[Expr](capHint),
		Names:      NewArena[ExprNameData](capHint),
		Numbers:    NewArena[ExprNumberData](capHint),
		Strings:    NewArena[ExprStringData](capHint),
		Consts:     NewArena[ExprConstData](capHint),
		Seqs:       NewArena[ExprSeqData](capHint),
		Dicts:      NewArena[ExprDictData](capHint),
		Starreds:   NewArena[ExprStarredData](capHint),
		Unaries:    NewArena[ExprUnaryData](capHint),
		Binaries:   NewArena[ExprBinaryData](capHint),
		Bools:      NewArena[ExprBoolData](capHint),
		Compares:   NewArena[ExprCompareData](capHint),
		Calls:      NewArena[ExprCallData](capHint),
		Attributes: NewArena[ExprAttributeData](capHint),
		Subscripts: NewArena[ExprSubscriptData](capHint),
		Slices:     NewArena[ExprSliceData](capHint),
		Lambdas:    NewArena[ExprLambdaData](capHint),
		IfExps:     NewArena[ExprIfExpData](capHint),
		Yields:     NewArena[ExprYieldData](capHint),
		Nameds:     NewArena[ExprNamedData](capHint),
		Comps:      NewArena[ExprCompData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// NewError creates an error placeholder expression.
func (e *Exprs) NewError(span source.Span) ExprID {
	return e.new(ExprError, span, NoPayloadID)
}

// NewName creates a name expression.
func (e *Exprs) NewName(span source.Span, name source.StringID, ctx ExprCtx) ExprID {
	payload := e.Names.Allocate(ExprNameData{Name: name, Ctx: ctx})
	return e.new(ExprName, span, PayloadID(payload))
}

// Name returns the name data for the given expression ID.
func (e *Exprs) Name(id ExprID) (*ExprNameData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprName {
		return nil, false
	}
	return e.Names.Get(uint32(expr.Payload)), true
}

// NewNumber creates a numeric literal expression.
func (e *Exprs) NewNumber(span source.Span, kind NumberKind, text source.StringID) ExprID {
	payload := e.Numbers.Allocate(ExprNumberData{Kind: kind, Text: text})
	return e.new(ExprNumber, span, PayloadID(payload))
}

// Number returns the numeric literal data for the given expression ID.
func (e *Exprs) Number(id ExprID) (*ExprNumberData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprNumber {
		return nil, false
	}
	return e.Numbers.Get(uint32(expr.Payload)), true
}

// NewString creates a string expression from one or more adjacent literal
// pieces.
func (e *Exprs) NewString(span source.Span, parts []StringPart) ExprID {
	payload := e.Strings.Allocate(ExprStringData{Parts: parts})
	return e.new(ExprString, span, PayloadID(payload))
}

// String returns the string data for the given expression ID.
func (e *Exprs) String(id ExprID) (*ExprStringData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprString {
		return nil, false
	}
	return e.Strings.Get(uint32(expr.Payload)), true
}

// NewConst creates a None/True/False/Ellipsis expression.
func (e *Exprs) NewConst(span source.Span, kind ConstKind) ExprID {
	payload := e.Consts.Allocate(ExprConstData{Kind: kind})
	return e.new(ExprConst, span, PayloadID(payload))
}

// Const returns the constant data for the given expression ID.
func (e *Exprs) Const(id ExprID) (*ExprConstData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprConst {
		return nil, false
	}
	return e.Consts.Get(uint32(expr.Payload)), true
}

// NewTuple creates a tuple display.
func (e *Exprs) NewTuple(span source.Span, elems []ExprID) ExprID {
	payload := e.Seqs.Allocate(ExprSeqData{Elems: elems})
	return e.new(ExprTuple, span, PayloadID(payload))
}

// NewList creates a list display.
func (e *Exprs) NewList(span source.Span, elems []ExprID) ExprID {
	payload := e.Seqs.Allocate(ExprSeqData{Elems: elems})
	return e.new(ExprList, span, PayloadID(payload))
}

// NewSet creates a set display.
func (e *Exprs) NewSet(span source.Span, elems []ExprID) ExprID {
	payload := e.Seqs.Allocate(ExprSeqData{Elems: elems})
	return e.new(ExprSet, span, PayloadID(payload))
}

// Seq returns the element list behind a tuple, list, or set display.
func (e *Exprs) Seq(id ExprID) (*ExprSeqData, bool) {
	expr := e.Get(id)
	if expr == nil {
		return nil, false
	}
	switch expr.Kind {
	case ExprTuple, ExprList, ExprSet:
		return e.Seqs.Get(uint32(expr.Payload)), true
	default:
		return nil, false
	}
}

// NewDict creates a dict display.
func (e *Exprs) NewDict(span source.Span, items []DictItem) ExprID {
	payload := e.Dicts.Allocate(ExprDictData{Items: items})
	return e.new(ExprDict, span, PayloadID(payload))
}

// Dict returns the dict data for the given expression ID.
func (e *Exprs) Dict(id ExprID) (*ExprDictData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprDict {
		return nil, false
	}
	return e.Dicts.Get(uint32(expr.Payload)), true
}

// NewStarred creates a `*value` expression.
func (e *Exprs) NewStarred(span source.Span, value ExprID, ctx ExprCtx) ExprID {
	payload := e.Starreds.Allocate(ExprStarredData{Value: value, Ctx: ctx})
	return e.new(ExprStarred, span, PayloadID(payload))
}

// Starred returns the starred data for the given expression ID.
func (e *Exprs) Starred(id ExprID) (*ExprStarredData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprStarred {
		return nil, false
	}
	return e.Starreds.Get(uint32(expr.Payload)), true
}

// NewUnary creates a prefix operator expression.
func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	payload := e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})
	return e.new(ExprUnary, span, PayloadID(payload))
}

// Unary returns the unary data for the given expression ID.
func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(expr.Payload)), true
}

// NewBinary creates a binary operator expression.
func (e *Exprs) NewBinary(span source.Span, op BinOp, left, right ExprID) ExprID {
	payload := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	return e.new(ExprBinary, span, PayloadID(payload))
}

// Binary returns the binary data for the given expression ID.
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(expr.Payload)), true
}

// NewBool creates an `and`/`or` chain with two or more operands.
func (e *Exprs) NewBool(span source.Span, op BoolOp, values []ExprID) ExprID {
	payload := e.Bools.Allocate(ExprBoolData{Op: op, Values: values})
	return e.new(ExprBool, span, PayloadID(payload))
}

// Bool returns the boolean chain data for the given expression ID.
func (e *Exprs) Bool(id ExprID) (*ExprBoolData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBool {
		return nil, false
	}
	return e.Bools.Get(uint32(expr.Payload)), true
}

// NewCompare creates a comparison chain; ops and comparators are parallel.
func (e *Exprs) NewCompare(span source.Span, left ExprID, ops []CmpOp, comparators []ExprID) ExprID {
	payload := e.Compares.Allocate(ExprCompareData{Left: left, Ops: ops, Comparators: comparators})
	return e.new(ExprCompare, span, PayloadID(payload))
}

// Compare returns the comparison data for the given expression ID.
func (e *Exprs) Compare(id ExprID) (*ExprCompareData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCompare {
		return nil, false
	}
	return e.Compares.Get(uint32(expr.Payload)), true
}

// NewCall creates a call expression.
func (e *Exprs) NewCall(span source.Span, fn ExprID, args []ExprID, keywords []Keyword) ExprID {
	payload := e.Calls.Allocate(ExprCallData{Func: fn, Args: args, Keywords: keywords})
	return e.new(ExprCall, span, PayloadID(payload))
}

// Call returns the call data for the given expression ID.
func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(expr.Payload)), true
}

// NewAttribute creates an attribute access expression.
func (e *Exprs) NewAttribute(span source.Span, value ExprID, attr source.StringID, attrSpan source.Span) ExprID {
	payload := e.Attributes.Allocate(ExprAttributeData{Value: value, Attr: attr, AttrSpan: attrSpan})
	return e.new(ExprAttribute, span, PayloadID(payload))
}

// Attribute returns the attribute data for the given expression ID.
func (e *Exprs) Attribute(id ExprID) (*ExprAttributeData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprAttribute {
		return nil, false
	}
	return e.Attributes.Get(uint32(expr.Payload)), true
}

// NewSubscript creates a subscript expression. The index may be a tuple
// or contain slices.
func (e *Exprs) NewSubscript(span source.Span, value, index ExprID) ExprID {
	payload := e.Subscripts.Allocate(ExprSubscriptData{Value: value, Index: index})
	return e.new(ExprSubscript, span, PayloadID(payload))
}

// Subscript returns the subscript data for the given expression ID.
func (e *Exprs) Subscript(id ExprID) (*ExprSubscriptData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprSubscript {
		return nil, false
	}
	return e.Subscripts.Get(uint32(expr.Payload)), true
}

// NewSlice creates a slice expression; every bound is optional.
func (e *Exprs) NewSlice(span source.Span, lower, upper, step ExprID) ExprID {
	payload := e.Slices.Allocate(ExprSliceData{Lower: lower, Upper: upper, Step: step})
	return e.new(ExprSlice, span, PayloadID(payload))
}

// Slice returns the slice data for the given expression ID.
func (e *Exprs) Slice(id ExprID) (*ExprSliceData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprSlice {
		return nil, false
	}
	return e.Slices.Get(uint32(expr.Payload)), true
}

// NewLambda creates a lambda expression.
func (e *Exprs) NewLambda(span source.Span, params Params, body ExprID) ExprID {
	payload := e.Lambdas.Allocate(ExprLambdaData{Params: params, Body: body})
	return e.new(ExprLambda, span, PayloadID(payload))
}

// Lambda returns the lambda data for the given expression ID.
func (e *Exprs) Lambda(id ExprID) (*ExprLambdaData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLambda {
		return nil, false
	}
	return e.Lambdas.Get(uint32(expr.Payload)), true
}

// NewIfExp creates a conditional expression in source order:
// body if cond else orelse.
func (e *Exprs) NewIfExp(span source.Span, body, cond, orelse ExprID) ExprID {
	payload := e.IfExps.Allocate(ExprIfExpData{Body: body, Cond: cond, Else: orelse})
	return e.new(ExprIfExp, span, PayloadID(payload))
}

// IfExp returns the conditional data for the given expression ID.
func (e *Exprs) IfExp(id ExprID) (*ExprIfExpData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIfExp {
		return nil, false
	}
	return e.IfExps.Get(uint32(expr.Payload)), true
}

// NewYield creates a yield expression; value may be NoExprID.
func (e *Exprs) NewYield(span source.Span, value ExprID) ExprID {
	payload := e.Yields.Allocate(ExprYieldData{Value: value})
	return e.new(ExprYield, span, PayloadID(payload))
}

// NewYieldFrom creates a `yield from` expression.
func (e *Exprs) NewYieldFrom(span source.Span, value ExprID) ExprID {
	payload := e.Yields.Allocate(ExprYieldData{Value: value})
	return e.new(ExprYieldFrom, span, PayloadID(payload))
}

// NewAwait creates an await expression.
func (e *Exprs) NewAwait(span source.Span, value ExprID) ExprID {
	payload := e.Yields.Allocate(ExprYieldData{Value: value})
	return e.new(ExprAwait, span, PayloadID(payload))
}

// Yield returns the operand data behind a yield, yield from, or await
// expression.
func (e *Exprs) Yield(id ExprID) (*ExprYieldData, bool) {
	expr := e.Get(id)
	if expr == nil {
		return nil, false
	}
	switch expr.Kind {
	case ExprYield, ExprYieldFrom, ExprAwait:
		return e.Yields.Get(uint32(expr.Payload)), true
	default:
		return nil, false
	}
}

// NewNamed creates a `target := value` expression.
func (e *Exprs) NewNamed(span source.Span, target, value ExprID) ExprID {
	payload := e.Nameds.Allocate(ExprNamedData{Target: target, Value: value})
	return e.new(ExprNamed, span, PayloadID(payload))
}

// Named returns the named-expression data for the given expression ID.
func (e *Exprs) Named(id ExprID) (*ExprNamedData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprNamed {
		return nil, false
	}
	return e.Nameds.Get(uint32(expr.Payload)), true
}

// NewComp creates a comprehension or generator expression. kind must be
// one of the four comprehension kinds; value is set only for dict
// comprehensions.
func (e *Exprs) NewComp(kind ExprKind, span source.Span, elt, value ExprID, clauses []CompClause) ExprID {
	payload := e.Comps.Allocate(ExprCompData{Elt: elt, Value: value, Clauses: clauses})
	return e.new(kind, span, PayloadID(payload))
}

// Comp returns the comprehension data for the given expression ID.
func (e *Exprs) Comp(id ExprID) (*ExprCompData, bool) {
	expr := e.Get(id)
	if expr == nil {
		return nil, false
	}
	switch expr.Kind {
	case ExprListComp, ExprSetComp, ExprDictComp, ExprGenerator:
		return e.Comps.Get(uint32(expr.Payload)), true
	default:
		return nil, false
	}
}
