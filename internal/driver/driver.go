// Package driver runs the front-end phases over files and directories:
// tokenize, parse, check, and format. It owns parallel fan-out, the
// result cache, and the mapping from configuration to phase options.
package driver

import (
	"bytes"
	"fmt"

	"krait/internal/ast"
	"krait/internal/config"
	"krait/internal/diag"
	"krait/internal/format"
	"krait/internal/lexer"
	"krait/internal/observ"
	"krait/internal/parser"
	"krait/internal/sema"
	"krait/internal/source"
	"krait/internal/token"
)

// CheckResult is the outcome of running lex+parse+check over one file.
type CheckResult struct {
	Path      string
	FileID    source.FileID
	ASTFile   ast.FileID
	Builder   *ast.Builder
	Bag       *diag.Bag
	Timing    observ.Report
	FromCache bool
}

// FormatResult is the outcome of formatting one file.
type FormatResult struct {
	Path    string
	FileID  source.FileID
	Bag     *diag.Bag
	Output  []byte
	Changed bool
	// Err is set when the formatter hit an internal invariant; parse
	// diagnostics still live in Bag.
	Err error
}

// TokenizeResult carries the raw token stream of one file.
type TokenizeResult struct {
	Path   string
	FileID source.FileID
	Tokens []token.Token
	Bag    *diag.Bag
}

func parserVersion(v config.PyVersion) parser.Version {
	return parser.Version{Major: v.Major, Minor: v.Minor}
}

// TokenizeFile lexes one already-loaded file to EOF.
func TokenizeFile(fileSet *source.FileSet, fileID source.FileID, cfg config.Config) TokenizeResult {
	bag := diag.NewBag(cfg.MaxDiagnostics)
	file := fileSet.Get(fileID)
	lx := lexer.New(file, lexer.Options{Reporter: &lexer.ReporterAdapter{Bag: bag}})

	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return TokenizeResult{
		Path:   file.Path,
		FileID: fileID,
		Tokens: tokens,
		Bag:    bag,
	}
}

// ParseOnly parses one already-loaded file without the semantic pass.
func ParseOnly(fileSet *source.FileSet, fileID source.FileID, cfg config.Config) CheckResult {
	return checkFile(fileSet, fileID, cfg, false)
}

// CheckFile runs the full pipeline over one already-loaded file: lex,
// parse, semantic checks. Diagnostics come back sorted and deduplicated.
func CheckFile(fileSet *source.FileSet, fileID source.FileID, cfg config.Config) CheckResult {
	return checkFile(fileSet, fileID, cfg, true)
}

func checkFile(fileSet *source.FileSet, fileID source.FileID, cfg config.Config, withSema bool) (res CheckResult) {
	bag := diag.NewBag(cfg.MaxDiagnostics)
	file := fileSet.Get(fileID)
	timer := observ.NewTimer()

	res = CheckResult{
		Path:   file.Path,
		FileID: fileID,
		Bag:    bag,
	}

	// A panic in a phase becomes a diagnostic on the file instead of
	// taking the whole run down.
	defer func() {
		if r := recover(); r != nil {
			bag.Add(diag.NewError(diag.IOLoadFileError,
				source.Span{File: fileID},
				fmt.Sprintf("internal error: %v", r)))
			res.Timing = timer.Report()
		}
	}()

	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: lexer.DiagAdapter{Next: reporter}})
	builder := ast.NewBuilder(ast.Hints{})

	ph := timer.Begin("parse")
	result := parser.ParseFile(fileSet, lx, builder, parser.Options{
		MaxErrors: uint(cfg.MaxDiagnostics),
		Reporter:  reporter,
		Target:    parserVersion(cfg.TargetVersion),
	})
	timer.End(ph, "")

	if withSema {
		ph = timer.Begin("check")
		sema.Check(builder, result.File, reporter)
		timer.End(ph, "")
	}

	bag.Sort()
	bag.Dedup()

	res.ASTFile = result.File
	res.Builder = builder
	res.Timing = timer.Report()
	return res
}

// FormatFile parses and formats one already-loaded file. Files with
// syntax errors are left alone: Output stays nil and the diagnostics
// explain why.
func FormatFile(fileSet *source.FileSet, fileID source.FileID, cfg config.Config) FormatResult {
	parsed := checkFile(fileSet, fileID, cfg, false)
	file := fileSet.Get(fileID)
	res := FormatResult{
		Path:   parsed.Path,
		FileID: fileID,
		Bag:    parsed.Bag,
	}
	if parsed.Bag.HasErrors() || parsed.Builder == nil {
		return res
	}

	out, err := formatGuarded(file, parsed.Builder, parsed.ASTFile, cfg)
	if err != nil {
		res.Err = err
		return res
	}
	if err := format.CheckRoundTrip(parsed.Builder, parsed.ASTFile, out); err != nil {
		res.Err = err
		return res
	}
	res.Output = out
	res.Changed = !bytes.Equal(out, file.Content)
	return res
}

// formatGuarded converts formatter panics into ErrInvariant so one
// broken file cannot abort a directory run.
func formatGuarded(file *source.File, b *ast.Builder, fid ast.FileID, cfg config.Config) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: panic: %v", format.ErrInvariant, r)
		}
	}()
	return format.FormatFile(file, b, fid, format.Options{
		LineWidth:   cfg.LineWidth,
		IndentWidth: cfg.IndentWidth,
		Quote:       format.Quote(cfg.QuoteByte()),
	})
}
