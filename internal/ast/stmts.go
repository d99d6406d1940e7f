package ast

import (
	"krait/internal/source"
)

// Stmts manages allocation of statements.
type Stmts struct {
	Arena       *Arena[Stmt]
	ExprStmts   *Arena[StmtExprData]
	Assigns     *Arena[StmtAssignData]
	AugAssigns  *Arena[StmtAugAssignData]
	AnnAssigns  *Arena[StmtAnnAssignData]
	TypeAliases *Arena[StmtTypeAliasData]
	Returns     *Arena[StmtReturnData]
	Deletes     *Arena[StmtDeleteData]
	Imports     *Arena[StmtImportData]
	ImportFroms *Arena[StmtImportFromData]
	NameLists   *Arena[StmtNamesData]
	Asserts     *Arena[StmtAssertData]
	Raises      *Arena[StmtRaiseData]
	Ifs         *Arena[StmtIfData]
	Whiles      *Arena[StmtWhileData]
	Fors        *Arena[StmtForData]
	Withs       *Arena[StmtWithData]
	Tries       *Arena[StmtTryData]
	FuncDefs    *Arena[StmtFunctionDefData]
	ClassDefs   *Arena[StmtClassDefData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:       NewArena[Stmt](capHint),
		ExprStmts:   NewArena[StmtExprData](capHint),
		Assigns:     NewArena[StmtAssignData](capHint),
		AugAssigns:  NewArena[StmtAugAssignData](capHint),
		AnnAssigns:  NewArena[StmtAnnAssignData](capHint),
		TypeAliases: NewArena[StmtTypeAliasData](capHint),
		Returns:     NewArena[StmtReturnData](capHint),
		Deletes:     NewArena[StmtDeleteData](capHint),
		Imports:     NewArena[StmtImportData](capHint),
		ImportFroms: NewArena[StmtImportFromData](capHint),
		NameLists:   NewArena[StmtNamesData](capHint),
		Asserts:     NewArena[StmtAssertData](capHint),
		Raises:      NewArena[StmtRaiseData](capHint),
		Ifs:         NewArena[StmtIfData](capHint),
		Whiles:      NewArena[StmtWhileData](capHint),
		Fors:        NewArena[StmtForData](capHint),
		Withs:       NewArena[StmtWithData](capHint),
		Tries:       NewArena[StmtTryData](capHint),
		FuncDefs:    NewArena[StmtFunctionDefData](capHint),
		ClassDefs:   NewArena[StmtClassDefData](capHint),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the statement with the given ID.
func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

// NewError creates an error placeholder statement.
func (s *Stmts) NewError(span source.Span) StmtID {
	return s.new(StmtError, span, NoPayloadID)
}

// NewSimple creates one of the payload-free statements: pass, break,
// continue.
func (s *Stmts) NewSimple(kind StmtKind, span source.Span) StmtID {
	return s.new(kind, span, NoPayloadID)
}

// NewExprStmt creates an expression statement.
func (s *Stmts) NewExprStmt(span source.Span, value ExprID) StmtID {
	payload := s.ExprStmts.Allocate(StmtExprData{Value: value})
	return s.new(StmtExpr, span, PayloadID(payload))
}

// ExprStmt returns the expression statement data.
func (s *Stmts) ExprStmt(id StmtID) (*StmtExprData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtExpr {
		return nil, false
	}
	return s.ExprStmts.Get(uint32(stmt.Payload)), true
}

// NewAssign creates a (possibly chained) assignment statement.
func (s *Stmts) NewAssign(span source.Span, targets []ExprID, value ExprID) StmtID {
	payload := s.Assigns.Allocate(StmtAssignData{Targets: targets, Value: value})
	return s.new(StmtAssign, span, PayloadID(payload))
}

// Assign returns the assignment data.
func (s *Stmts) Assign(id StmtID) (*StmtAssignData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtAssign {
		return nil, false
	}
	return s.Assigns.Get(uint32(stmt.Payload)), true
}

// NewAugAssign creates an augmented assignment statement.
func (s *Stmts) NewAugAssign(span source.Span, target ExprID, op BinOp, value ExprID) StmtID {
	payload := s.AugAssigns.Allocate(StmtAugAssignData{Target: target, Op: op, Value: value})
	return s.new(StmtAugAssign, span, PayloadID(payload))
}

// AugAssign returns the augmented assignment data.
func (s *Stmts) AugAssign(id StmtID) (*StmtAugAssignData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtAugAssign {
		return nil, false
	}
	return s.AugAssigns.Get(uint32(stmt.Payload)), true
}

// NewAnnAssign creates an annotated assignment statement.
func (s *Stmts) NewAnnAssign(span source.Span, target, annotation, value ExprID) StmtID {
	payload := s.AnnAssigns.Allocate(StmtAnnAssignData{Target: target, Annotation: annotation, Value: value})
	return s.new(StmtAnnAssign, span, PayloadID(payload))
}

// AnnAssign returns the annotated assignment data.
func (s *Stmts) AnnAssign(id StmtID) (*StmtAnnAssignData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtAnnAssign {
		return nil, false
	}
	return s.AnnAssigns.Get(uint32(stmt.Payload)), true
}

// NewTypeAlias creates a `type X = ...` statement.
func (s *Stmts) NewTypeAlias(span source.Span, name ExprID, typeParams []TypeParam, value ExprID) StmtID {
	payload := s.TypeAliases.Allocate(StmtTypeAliasData{Name: name, TypeParams: typeParams, Value: value})
	return s.new(StmtTypeAlias, span, PayloadID(payload))
}

// TypeAlias returns the type alias data.
func (s *Stmts) TypeAlias(id StmtID) (*StmtTypeAliasData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtTypeAlias {
		return nil, false
	}
	return s.TypeAliases.Get(uint32(stmt.Payload)), true
}

// NewReturn creates a return statement; value may be NoExprID.
func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	payload := s.Returns.Allocate(StmtReturnData{Value: value})
	return s.new(StmtReturn, span, PayloadID(payload))
}

// Return returns the return statement data.
func (s *Stmts) Return(id StmtID) (*StmtReturnData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(stmt.Payload)), true
}

// NewDelete creates a del statement.
func (s *Stmts) NewDelete(span source.Span, targets []ExprID) StmtID {
	payload := s.Deletes.Allocate(StmtDeleteData{Targets: targets})
	return s.new(StmtDelete, span, PayloadID(payload))
}

// Delete returns the del statement data.
func (s *Stmts) Delete(id StmtID) (*StmtDeleteData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtDelete {
		return nil, false
	}
	return s.Deletes.Get(uint32(stmt.Payload)), true
}

// NewImport creates a plain import statement.
func (s *Stmts) NewImport(span source.Span, names []ImportAlias) StmtID {
	payload := s.Imports.Allocate(StmtImportData{Names: names})
	return s.new(StmtImport, span, PayloadID(payload))
}

// Import returns the import data.
func (s *Stmts) Import(id StmtID) (*StmtImportData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtImport {
		return nil, false
	}
	return s.Imports.Get(uint32(stmt.Payload)), true
}

// NewImportFrom creates a from-import statement.
func (s *Stmts) NewImportFrom(span source.Span, module source.StringID, level uint32, names []ImportAlias, star bool) StmtID {
	payload := s.ImportFroms.Allocate(StmtImportFromData{Module: module, Level: level, Names: names, Star: star})
	return s.new(StmtImportFrom, span, PayloadID(payload))
}

// ImportFrom returns the from-import data.
func (s *Stmts) ImportFrom(id StmtID) (*StmtImportFromData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtImportFrom {
		return nil, false
	}
	return s.ImportFroms.Get(uint32(stmt.Payload)), true
}

// NewNames creates a global or nonlocal statement.
func (s *Stmts) NewNames(kind StmtKind, span source.Span, names []source.StringID) StmtID {
	payload := s.NameLists.Allocate(StmtNamesData{Names: names})
	return s.new(kind, span, PayloadID(payload))
}

// Names returns the name list behind a global or nonlocal statement.
func (s *Stmts) Names(id StmtID) (*StmtNamesData, bool) {
	stmt := s.Get(id)
	if stmt == nil {
		return nil, false
	}
	switch stmt.Kind {
	case StmtGlobal, StmtNonlocal:
		return s.NameLists.Get(uint32(stmt.Payload)), true
	default:
		return nil, false
	}
}

// NewAssert creates an assert statement; msg may be NoExprID.
func (s *Stmts) NewAssert(span source.Span, test, msg ExprID) StmtID {
	payload := s.Asserts.Allocate(StmtAssertData{Test: test, Msg: msg})
	return s.new(StmtAssert, span, PayloadID(payload))
}

// Assert returns the assert data.
func (s *Stmts) Assert(id StmtID) (*StmtAssertData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtAssert {
		return nil, false
	}
	return s.Asserts.Get(uint32(stmt.Payload)), true
}

// NewRaise creates a raise statement; both operands are optional.
func (s *Stmts) NewRaise(span source.Span, exc, cause ExprID) StmtID {
	payload := s.Raises.Allocate(StmtRaiseData{Exc: exc, Cause: cause})
	return s.new(StmtRaise, span, PayloadID(payload))
}

// Raise returns the raise data.
func (s *Stmts) Raise(id StmtID) (*StmtRaiseData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtRaise {
		return nil, false
	}
	return s.Raises.Get(uint32(stmt.Payload)), true
}

// NewIf creates an if (or elif) statement.
func (s *Stmts) NewIf(span source.Span, cond ExprID, body, orelse []StmtID, isElif bool) StmtID {
	payload := s.Ifs.Allocate(StmtIfData{Cond: cond, Body: body, Else: orelse, IsElif: isElif})
	return s.new(StmtIf, span, PayloadID(payload))
}

// If returns the if data.
func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtIf {
		return nil, false
	}
	return s.Ifs.Get(uint32(stmt.Payload)), true
}

// NewWhile creates a while statement.
func (s *Stmts) NewWhile(span source.Span, cond ExprID, body, orelse []StmtID) StmtID {
	payload := s.Whiles.Allocate(StmtWhileData{Cond: cond, Body: body, Else: orelse})
	return s.new(StmtWhile, span, PayloadID(payload))
}

// While returns the while data.
func (s *Stmts) While(id StmtID) (*StmtWhileData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtWhile {
		return nil, false
	}
	return s.Whiles.Get(uint32(stmt.Payload)), true
}

// NewFor creates a for statement.
func (s *Stmts) NewFor(span source.Span, target, iter ExprID, body, orelse []StmtID, isAsync bool) StmtID {
	payload := s.Fors.Allocate(StmtForData{Target: target, Iter: iter, Body: body, Else: orelse, IsAsync: isAsync})
	return s.new(StmtFor, span, PayloadID(payload))
}

// For returns the for data.
func (s *Stmts) For(id StmtID) (*StmtForData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtFor {
		return nil, false
	}
	return s.Fors.Get(uint32(stmt.Payload)), true
}

// NewWith creates a with statement.
func (s *Stmts) NewWith(span source.Span, items []WithItem, body []StmtID, isAsync bool) StmtID {
	payload := s.Withs.Allocate(StmtWithData{Items: items, Body: body, IsAsync: isAsync})
	return s.new(StmtWith, span, PayloadID(payload))
}

// With returns the with data.
func (s *Stmts) With(id StmtID) (*StmtWithData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtWith {
		return nil, false
	}
	return s.Withs.Get(uint32(stmt.Payload)), true
}

// NewTry creates a try statement.
func (s *Stmts) NewTry(span source.Span, body []StmtID, handlers []ExceptHandler, orelse, finally []StmtID) StmtID {
	payload := s.Tries.Allocate(StmtTryData{Body: body, Handlers: handlers, Else: orelse, Finally: finally})
	return s.new(StmtTry, span, PayloadID(payload))
}

// Try returns the try data.
func (s *Stmts) Try(id StmtID) (*StmtTryData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtTry {
		return nil, false
	}
	return s.Tries.Get(uint32(stmt.Payload)), true
}

// NewFunctionDef creates a def or async def statement.
func (s *Stmts) NewFunctionDef(span source.Span, data StmtFunctionDefData) StmtID {
	payload := s.FuncDefs.Allocate(data)
	return s.new(StmtFunctionDef, span, PayloadID(payload))
}

// FunctionDef returns the function definition data.
func (s *Stmts) FunctionDef(id StmtID) (*StmtFunctionDefData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtFunctionDef {
		return nil, false
	}
	return s.FuncDefs.Get(uint32(stmt.Payload)), true
}

// NewClassDef creates a class statement.
func (s *Stmts) NewClassDef(span source.Span, data StmtClassDefData) StmtID {
	payload := s.ClassDefs.Allocate(data)
	return s.new(StmtClassDef, span, PayloadID(payload))
}

// ClassDef returns the class definition data.
func (s *Stmts) ClassDef(id StmtID) (*StmtClassDefData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtClassDef {
		return nil, false
	}
	return s.ClassDefs.Get(uint32(stmt.Payload)), true
}
