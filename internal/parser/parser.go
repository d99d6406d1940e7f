package parser

import (
	"slices"

	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/lexer"
	"krait/internal/source"
	"krait/internal/token"
)

// maxExprDepth bounds expression recursion so hostile input degrades into
// a diagnostic instead of a stack overflow.
const maxExprDepth = 200

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
	// Target selects the grammar level; zero means DefaultVersion.
	Target Version
}

// Enough reports whether the error budget is spent.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File ast.FileID
	Bag  *diag.Bag
}

// Parser holds the state for one file.
type Parser struct {
	lx     *lexer.Lexer
	arenas *ast.Builder
	file   ast.FileID
	fs     *source.FileSet
	opts   Options

	buf       []token.Token // lookahead over the lexer
	lastSpan  source.Span
	depth     uint
	depthHit  bool
	funcDepth int // 0 at module level; yields need > 0
}

// ParseFile parses one file into the shared builder. The lexer must be
// fresh, positioned at the start of the file.
func ParseFile(
	fs *source.FileSet,
	lx *lexer.Lexer,
	arenas *ast.Builder,
	opts Options,
) Result {
	if opts.Target.IsZero() {
		opts.Target = DefaultVersion
	}
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		file:     arenas.Files.New(lx.EmptySpan()),
		fs:       fs,
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}

	p.parseModule()
	var bag *diag.Bag
	if br, ok := opts.Reporter.(*diag.BagReporter); ok {
		bag = br.Bag
	}
	return Result{
		File: p.file,
		Bag:  bag,
	}
}

// peek returns the next token without consuming it.
func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

// peekAt returns the n-th upcoming token. The buffer absorbs tokens from
// the lexer as needed; EOF repeats forever.
func (p *Parser) peekAt(n int) token.Token {
	for len(p.buf) <= n {
		p.buf = append(p.buf, p.lx.Next())
	}
	return p.buf[n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// atSoftKeyword reports whether the next token is an identifier with the
// given spelling.
func (p *Parser) atSoftKeyword(word string) bool {
	tok := p.peek()
	return tok.Kind == token.Ident && tok.Text == word
}

func (p *Parser) parseModule() {
	startSpan := p.peek().Span
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.Newline:
			// Stray separator left behind by recovery.
			p.advance()
			continue
		case token.Indent:
			p.err(diag.SynUnexpectedToken, "Unexpected indentation")
			p.advance()
			continue
		case token.Dedent:
			p.advance()
			continue
		}
		stmts := p.parseStatement()
		for _, id := range stmts {
			p.arenas.PushStmt(p.file, id)
		}
	}
	// Consume EOF so trailing comment trivia lands in the file.
	p.advance()
	f := p.arenas.Files.Get(p.file)
	f.Span = startSpan.Cover(p.lastSpan)
}
