// Package format re-renders a parsed file in a stable style. It builds a
// formatting document from the tree, then prints it with a width-aware
// printer. Formatting never changes program meaning: the document carries
// the tree's structure, and the round-trip checker guards the rest.
package format

import (
	"krait/internal/ast"
)

// DocID indexes the document arena; 0 is invalid.
type DocID uint32

const NoDocID DocID = 0

func (id DocID) IsValid() bool { return id != NoDocID }

// DocKind enumerates document node kinds.
type DocKind uint8

const (
	// DocText is a literal run; it must not contain newlines.
	DocText DocKind = iota
	// DocSpace prints " " flat and a line break when broken.
	DocSpace
	// DocSoftBreak prints nothing flat and a line break when broken.
	DocSoftBreak
	// DocHardBreak always prints a line break and forces enclosing
	// groups to break.
	DocHardBreak
	// DocConcat is a plain sequence with no decision of its own.
	DocConcat
	// DocGroup prints flat when its content fits the line, broken
	// otherwise.
	DocGroup
	// DocIndent prints its children one indentation level deeper.
	DocIndent
	// DocIfBroken prints Kids when the enclosing group broke, Alt when
	// it stayed flat.
	DocIfBroken
)

// Doc is one node of the formatting document.
type Doc struct {
	Kind DocKind
	Text string
	Kids []DocID
	Alt  []DocID
}

// DocBuilder allocates document nodes into an arena.
type DocBuilder struct {
	arena *ast.Arena[Doc]
}

func NewDocBuilder(capHint uint) *DocBuilder {
	if capHint == 0 {
		capHint = 1 << 10
	}
	return &DocBuilder{arena: ast.NewArena[Doc](capHint)}
}

// Get returns the node, or nil when the ID is out of range.
func (b *DocBuilder) Get(id DocID) *Doc {
	if uint32(id) > b.arena.Len() {
		return nil
	}
	return b.arena.Get(uint32(id))
}

func (b *DocBuilder) alloc(d Doc) DocID {
	return DocID(b.arena.Allocate(d))
}

func (b *DocBuilder) Text(s string) DocID {
	return b.alloc(Doc{Kind: DocText, Text: s})
}

func (b *DocBuilder) Space() DocID {
	return b.alloc(Doc{Kind: DocSpace})
}

func (b *DocBuilder) SoftBreak() DocID {
	return b.alloc(Doc{Kind: DocSoftBreak})
}

func (b *DocBuilder) HardBreak() DocID {
	return b.alloc(Doc{Kind: DocHardBreak})
}

func (b *DocBuilder) Concat(kids ...DocID) DocID {
	return b.alloc(Doc{Kind: DocConcat, Kids: kids})
}

func (b *DocBuilder) ConcatList(kids []DocID) DocID {
	return b.alloc(Doc{Kind: DocConcat, Kids: kids})
}

func (b *DocBuilder) Group(kids ...DocID) DocID {
	return b.alloc(Doc{Kind: DocGroup, Kids: kids})
}

func (b *DocBuilder) Indent(kids ...DocID) DocID {
	return b.alloc(Doc{Kind: DocIndent, Kids: kids})
}

func (b *DocBuilder) IfBroken(broken, flat []DocID) DocID {
	return b.alloc(Doc{Kind: DocIfBroken, Kids: broken, Alt: flat})
}
