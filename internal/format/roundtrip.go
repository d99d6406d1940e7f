package format

import (
	"fmt"

	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/lexer"
	"krait/internal/parser"
	"krait/internal/source"
)

// CheckRoundTrip reparses formatted output and compares its top-level
// statement kinds against the original tree. A mismatch means the
// formatter changed program structure and the output must be discarded.
func CheckRoundTrip(b *ast.Builder, fid ast.FileID, formatted []byte) error {
	orig := b.Files.Get(fid)
	if orig == nil {
		return fmt.Errorf("%w: missing ast file", ErrInvariant)
	}

	fs := source.NewFileSet()
	id := fs.AddVirtual("<formatted>", formatted)
	bag := diag.NewBag(16)
	rep := &diag.BagReporter{Bag: bag}
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: lexer.DiagAdapter{Next: rep}})
	arenas := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(fs, lx, arenas, parser.Options{Reporter: rep})

	if bag.HasErrors() {
		first := bag.Items()[0]
		return fmt.Errorf("%w: formatted output does not parse: %s", ErrInvariant, first.Message)
	}

	reparsed := arenas.Files.Get(res.File)
	if len(reparsed.Body) != len(orig.Body) {
		return fmt.Errorf("%w: top-level statement count changed from %d to %d",
			ErrInvariant, len(orig.Body), len(reparsed.Body))
	}
	for i := range orig.Body {
		was := b.Stmts.Get(orig.Body[i]).Kind
		now := arenas.Stmts.Get(reparsed.Body[i]).Kind
		if was != now {
			return fmt.Errorf("%w: top-level statement %d changed kind", ErrInvariant, i)
		}
	}
	return nil
}
