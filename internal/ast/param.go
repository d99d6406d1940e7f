package ast

import (
	"krait/internal/source"
)

// Param is one formal parameter of a def or lambda.
type Param struct {
	Name       source.StringID
	Span       source.Span
	Annotation ExprID // optional; never set for lambda params
	Default    ExprID // optional
}

// Params groups a parameter list by section, in declaration order.
// A bare `*` separator is implied when KwOnly is non-empty and VarArg is
// absent.
type Params struct {
	PosOnly []ParamID
	Args    []ParamID
	VarArg  ParamID // *args
	KwOnly  []ParamID
	KwArg   ParamID // **kwargs
}

// Empty reports whether the list has no parameters at all.
func (p Params) Empty() bool {
	return len(p.PosOnly) == 0 && len(p.Args) == 0 && len(p.KwOnly) == 0 &&
		!p.VarArg.IsValid() && !p.KwArg.IsValid()
}

// TypeParamKind distinguishes `T`, `*Ts`, and `**P` type parameters.
type TypeParamKind uint8

const (
	TypeParamPlain TypeParamKind = iota
	TypeParamStar
	TypeParamDoubleStar
)

// TypeParam is one PEP 695 type parameter.
type TypeParam struct {
	Kind    TypeParamKind
	Name    source.StringID
	Span    source.Span
	Bound   ExprID // optional `: bound`
	Default ExprID // optional `= default`
}
