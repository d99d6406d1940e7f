package ast

import (
	"krait/internal/source"
)

type Hints struct{ Files, Stmts, Exprs, Params uint }

// Builder owns every arena of one tree plus the string interner the
// parser feeds names and literals into.
type Builder struct {
	Files   *Files
	Stmts   *Stmts
	Exprs   *Exprs
	Params  *Arena[Param]
	Strings *source.Interner
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 2
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Params == 0 {
		hints.Params = 1 << 5
	}
	return &Builder{
		Files:   NewFiles(hints.Files),
		Stmts:   NewStmts(hints.Stmts),
		Exprs:   NewExprs(hints.Exprs),
		Params:  NewArena[Param](hints.Params),
		Strings: source.NewInterner(),
	}
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return b.Files.New(sp)
}

// NewParam allocates one parameter and returns its ID.
func (b *Builder) NewParam(p Param) ParamID {
	return ParamID(b.Params.Allocate(p))
}

// Param returns the parameter with the given ID.
func (b *Builder) Param(id ParamID) *Param {
	return b.Params.Get(uint32(id))
}

// PushStmt appends a statement to the file body.
func (b *Builder) PushStmt(file FileID, stmt StmtID) {
	f := b.Files.Get(file)
	f.Body = append(f.Body, stmt)
}

// PushComment records a comment for later reattachment.
func (b *Builder) PushComment(file FileID, c Comment) {
	f := b.Files.Get(file)
	f.Comments = append(f.Comments, c)
}

// Intern is shorthand for interning a name or literal text.
func (b *Builder) Intern(s string) source.StringID {
	return b.Strings.Intern(s)
}

// Lookup resolves an interned string; the zero ID yields "".
func (b *Builder) Lookup(id source.StringID) string {
	if id == source.NoStringID {
		return ""
	}
	return b.Strings.MustLookup(id)
}
