package ast

import (
	"krait/internal/source"
)

// Comment is one source comment, kept for reattachment when printing.
type Comment struct {
	Span source.Span
	Text string // includes the leading '#'
}

// File is the root of one parsed module.
type File struct {
	Span source.Span
	Body []StmtID
	// Comments holds every comment of the file in source order.
	Comments []Comment
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{
		Arena: NewArena[File](capHint),
	}
}

func (f *Files) New(sp source.Span) FileID {
	return FileID(f.Arena.Allocate(File{
		Span: sp,
		Body: make([]StmtID, 0),
	}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}
