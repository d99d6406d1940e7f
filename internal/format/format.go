package format

import (
	"errors"

	"krait/internal/ast"
	"krait/internal/source"
)

// FormatFile renders one parsed file in the canonical style. The tree
// must have parsed without errors; formatting a broken tree is the
// caller's mistake.
func FormatFile(sf *source.File, b *ast.Builder, fid ast.FileID, opt Options) ([]byte, error) {
	if sf == nil {
		return nil, errors.New("format: nil source file")
	}
	if b == nil {
		return nil, errors.New("format: nil builder")
	}
	if !fid.IsValid() {
		return nil, errors.New("format: invalid file id")
	}
	file := b.Files.Get(fid)
	if file == nil {
		return nil, errors.New("format: missing ast file")
	}

	opt = opt.withDefaults()
	fb := fileBuilder{
		builder:  b,
		file:     file,
		sf:       sf,
		docs:     NewDocBuilder(0),
		opt:      opt,
		comments: file.Comments,
	}
	root := fb.buildFile()
	return Print(fb.docs, root, opt)
}
