package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ErrInvariant marks the single fatal formatter failure class: the
// document or printer violated an internal invariant. Callers abort
// formatting of the file; parse results stand.
var ErrInvariant = errors.New("format: invariant violated")

type printMode uint8

const (
	modeFlat printMode = iota
	modeBroken
)

// printCmd is one unit of printer work: a document node with the indent
// and mode it is rendered under.
type printCmd struct {
	id     DocID
	indent int
	mode   printMode
}

// printer renders a document with an explicit work stack, so deeply
// nested documents never grow the goroutine stack.
type printer struct {
	docs *DocBuilder
	opts Options

	out  []byte
	col  int
	hard []bool // per-doc: subtree contains a hard break
}

// Print renders the document to text. The output ends with exactly one
// trailing newline; an empty document prints nothing.
func Print(docs *DocBuilder, root DocID, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	p := printer{docs: docs, opts: opts}
	p.computeHardBreaks()

	if err := p.print(root); err != nil {
		return nil, err
	}

	out := p.out
	for len(out) > 0 && (out[len(out)-1] == '\n' || out[len(out)-1] == ' ') {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return append(out, '\n'), nil
}

// computeHardBreaks fills the propagation table: a group whose subtree
// holds a hard break can never print flat.
func (p *printer) computeHardBreaks() {
	n := p.docs.arena.Len() + 1
	p.hard = make([]bool, n)

	// Nodes only reference earlier nodes, so one forward pass settles
	// the table.
	for i := uint32(1); i < uint32(n); i++ {
		d := p.docs.Get(DocID(i))
		switch d.Kind {
		case DocHardBreak:
			p.hard[i] = true
		case DocText, DocSpace, DocSoftBreak:
			// leaf, stays false
		case DocIfBroken:
			// Only the flat alternative matters for fitting.
			for _, k := range d.Alt {
				if p.hard[k] {
					p.hard[i] = true
				}
			}
		default:
			for _, k := range d.Kids {
				if p.hard[k] {
					p.hard[i] = true
				}
			}
		}
	}
}

func (p *printer) print(root DocID) error {
	if !root.IsValid() {
		return nil
	}
	stack := []printCmd{{id: root, indent: 0, mode: modeBroken}}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d := p.docs.Get(c.id)
		if d == nil {
			return fmt.Errorf("%w: dangling doc id %d", ErrInvariant, c.id)
		}

		switch d.Kind {
		case DocText:
			if strings.ContainsRune(d.Text, '\n') {
				return fmt.Errorf("%w: text element contains newline %q", ErrInvariant, d.Text)
			}
			p.out = append(p.out, d.Text...)
			p.col += runewidth.StringWidth(d.Text)

		case DocSpace:
			if c.mode == modeFlat {
				p.out = append(p.out, ' ')
				p.col++
			} else {
				p.newline(c.indent)
			}

		case DocSoftBreak:
			if c.mode == modeBroken {
				p.newline(c.indent)
			}

		case DocHardBreak:
			p.newline(c.indent)

		case DocConcat:
			stack = pushKids(stack, d.Kids, c.indent, c.mode)

		case DocIndent:
			stack = pushKids(stack, d.Kids, c.indent+p.opts.IndentWidth, c.mode)

		case DocGroup:
			m := modeFlat
			if p.hard[c.id] || !p.fits(d.Kids, stack) {
				m = modeBroken
			}
			stack = pushKids(stack, d.Kids, c.indent, m)

		case DocIfBroken:
			if c.mode == modeBroken {
				stack = pushKids(stack, d.Kids, c.indent, c.mode)
			} else {
				stack = pushKids(stack, d.Alt, c.indent, c.mode)
			}
		}
	}
	return nil
}

func pushKids(stack []printCmd, kids []DocID, indent int, mode printMode) []printCmd {
	for i := len(kids) - 1; i >= 0; i-- {
		stack = append(stack, printCmd{id: kids[i], indent: indent, mode: mode})
	}
	return stack
}

// newline ends the current line (trimming trailing spaces) and indents
// the next one.
func (p *printer) newline(indent int) {
	for len(p.out) > 0 && p.out[len(p.out)-1] == ' ' {
		p.out = p.out[:len(p.out)-1]
	}
	p.out = append(p.out, '\n')
	for i := 0; i < indent; i++ {
		p.out = append(p.out, ' ')
	}
	p.col = indent
}

// fits measures the candidate group flat against the remaining line
// width, then keeps scanning the outer work stack until the current line
// provably ends.
type fitCmd struct {
	id   DocID
	mode printMode
}

func (p *printer) fits(kids []DocID, rest []printCmd) bool {
	budget := p.opts.LineWidth - p.col

	var stack []fitCmd
	for i := len(rest) - 1; i >= 0; i-- {
		stack = append(stack, fitCmd{id: rest[i].id, mode: rest[i].mode})
	}
	for i := len(kids) - 1; i >= 0; i-- {
		stack = append(stack, fitCmd{id: kids[i], mode: modeFlat})
	}

	for len(stack) > 0 && budget >= 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d := p.docs.Get(c.id)
		if d == nil {
			return false
		}
		switch d.Kind {
		case DocText:
			budget -= runewidth.StringWidth(d.Text)
		case DocSpace:
			if c.mode == modeFlat {
				budget--
			} else {
				return budget >= 0
			}
		case DocSoftBreak, DocHardBreak:
			if c.mode == modeFlat && d.Kind == DocSoftBreak {
				continue
			}
			return budget >= 0
		case DocConcat, DocIndent:
			for i := len(d.Kids) - 1; i >= 0; i-- {
				stack = append(stack, fitCmd{id: d.Kids[i], mode: c.mode})
			}
		case DocGroup:
			m := modeFlat
			if p.hard[c.id] {
				m = modeBroken
			}
			for i := len(d.Kids) - 1; i >= 0; i-- {
				stack = append(stack, fitCmd{id: d.Kids[i], mode: m})
			}
		case DocIfBroken:
			kidsToScan := d.Alt
			if c.mode == modeBroken {
				kidsToScan = d.Kids
			}
			for i := len(kidsToScan) - 1; i >= 0; i-- {
				stack = append(stack, fitCmd{id: kidsToScan[i], mode: c.mode})
			}
		}
	}
	return budget >= 0
}
