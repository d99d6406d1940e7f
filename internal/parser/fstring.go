package parser

import (
	"strings"

	"krait/internal/ast"
	"krait/internal/diag"
	"krait/internal/lexer"
	"krait/internal/source"
	"krait/internal/token"
)

// parseStrings parses one or more adjacent string literal tokens into a
// single node: implicit concatenation is resolved here, and f-string
// pieces get their replacement fields re-lexed and parsed.
func (p *Parser) parseStrings() ast.ExprID {
	first := p.peek()
	var parts []ast.StringPart
	bytesSeen, strSeen := false, false

	for p.atOr(token.String, token.FString) {
		tok := p.advance()
		part := p.parseStringPart(tok)
		if part.Flags&ast.StringBytes != 0 {
			bytesSeen = true
		} else {
			strSeen = true
		}
		parts = append(parts, part)
	}

	span := first.Span.Cover(parts[len(parts)-1].Span)
	if bytesSeen && strSeen {
		p.errAt(diag.SynUnexpectedToken, span, "Cannot mix bytes and nonbytes literals")
	}
	return p.arenas.Exprs.NewString(span, parts)
}

// stringPrefixInfo reads the prefix letters of a literal's source text.
func stringPrefixInfo(text string) (flags ast.StringPartFlags, prefixLen uint32) {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case 'r', 'R':
			flags |= ast.StringRaw
		case 'b', 'B':
			flags |= ast.StringBytes
		case 'f', 'F':
			flags |= ast.StringFString
		case 'u', 'U':
			// legacy prefix, no flag
		case '\'', '"':
			return flags, uint32(i)
		default:
			return flags, uint32(i)
		}
	}
	return flags, 0
}

func (p *Parser) parseStringPart(tok token.Token) ast.StringPart {
	flags, prefixLen := stringPrefixInfo(tok.Text)
	part := ast.StringPart{
		Span:  tok.Span,
		Text:  p.arenas.Intern(tok.Text),
		Flags: flags,
	}
	if tok.Kind != token.FString {
		return part
	}

	// Locate the literal body between the quotes.
	text := tok.Text
	quoteLen := uint32(1)
	if len(text) >= int(prefixLen)+6 &&
		text[prefixLen] == text[prefixLen+1] && text[prefixLen] == text[prefixLen+2] {
		quoteLen = 3
	}
	bodyStart := tok.Span.Start + prefixLen + quoteLen
	bodyEnd := tok.Span.End - quoteLen
	if bodyEnd < bodyStart {
		bodyEnd = bodyStart
	}
	part.Elems = p.parseFStringElems(tok.Span.File, bodyStart, bodyEnd)
	return part
}

// parseFStringElems splits an f-string body (or a format spec) into
// literal runs and replacement fields. Doubled braces stay inside the
// literal runs; the printer keeps them verbatim.
func (p *Parser) parseFStringElems(fileID source.FileID, start, end uint32) []ast.FStringElem {
	content := p.fs.Get(fileID).Content

	var elems []ast.FStringElem
	textStart := start
	flushText := func(to uint32) {
		if to > textStart {
			elems = append(elems, ast.FStringElem{
				Kind: ast.FStringText,
				Span: source.Span{File: fileID, Start: textStart, End: to},
				Text: p.arenas.Strings.InternBytes(content[textStart:to]),
			})
		}
	}

	i := start
	for i < end {
		c := content[i]
		switch {
		case c == '{' && i+1 < end && content[i+1] == '{':
			i += 2
		case c == '}' && i+1 < end && content[i+1] == '}':
			i += 2
		case c == '{':
			flushText(i)
			elem, next := p.parseFStringField(fileID, i, end)
			elems = append(elems, elem)
			i = next
			textStart = i
		case c == '}':
			p.errAt(diag.SynUnexpectedToken,
				source.Span{File: fileID, Start: i, End: i + 1},
				"Single '}' is not allowed in f-string")
			i++
		case c == '\\':
			// A backslash never escapes a brace.
			if i+1 < end && content[i+1] != '{' && content[i+1] != '}' {
				i += 2
			} else {
				i++
			}
		default:
			i++
		}
	}
	flushText(end)
	return elems
}

// parseFStringField parses one `{...}` replacement field starting at the
// opening brace and returns the element plus the index past the field.
func (p *Parser) parseFStringField(fileID source.FileID, open, end uint32) (ast.FStringElem, uint32) {
	content := p.fs.Get(fileID).Content
	exprStart := open + 1

	i := exprStart
	depth := 0
	exprEnd := end
	var delim byte

scan:
	for i < end {
		switch c := content[i]; c {
		case '(', '[':
			depth++
			i++
		case ')', ']':
			if depth > 0 {
				depth--
			}
			i++
		case '{':
			depth++
			i++
		case '}':
			if depth > 0 {
				depth--
				i++
				continue
			}
			exprEnd, delim = i, '}'
			break scan
		case '\'', '"':
			i = skipStringLiteral(content, i, end)
		case '\\':
			i += 2
		case '<', '>':
			if i+1 < end && content[i+1] == '=' {
				i += 2
			} else {
				i++
			}
		case '!':
			if depth == 0 && (i+1 >= end || content[i+1] != '=') {
				exprEnd, delim = i, '!'
				break scan
			}
			i += 2
		case ':':
			if depth == 0 {
				if i+1 < end && content[i+1] == '=' {
					i += 2 // walrus
					continue
				}
				exprEnd, delim = i, ':'
				break scan
			}
			i++
		case '=':
			if i+1 < end && content[i+1] == '=' {
				i += 2
				continue
			}
			if depth == 0 {
				exprEnd, delim = i, '='
				break scan
			}
			i++
		default:
			i++
		}
	}

	fieldSpan := source.Span{File: fileID, Start: open, End: min(i+1, end)}
	elem := ast.FStringElem{Kind: ast.FStringExpr, Span: fieldSpan}

	if delim == 0 {
		p.errAt(diag.SynUnterminatedFString,
			source.Span{File: fileID, Start: open, End: end},
			"Expected '}' in f-string")
		elem.Value = p.arenas.Exprs.NewError(fieldSpan)
		return elem, end
	}

	if delim == '=' {
		elem.SelfDoc = true
		i = exprEnd + 1
		for i < end && content[i] == ' ' {
			i++
		}
		delim = 0
		if i < end {
			delim = content[i]
		}
	}

	if delim == '!' {
		if i+1 < end {
			conv := content[i+1]
			if conv == 's' || conv == 'r' || conv == 'a' {
				elem.Conversion = conv
			} else {
				p.errAt(diag.SynUnexpectedToken,
					source.Span{File: fileID, Start: i, End: min(i+2, end)},
					"Invalid conversion character: expected 's', 'r', or 'a'")
			}
		}
		i += 2
		delim = 0
		if i < end {
			delim = content[i]
		}
	}

	if delim == ':' {
		specStart := i + 1
		specEnd := scanFormatSpec(content, specStart, end)
		elem.FormatSpec = p.parseFStringElems(fileID, specStart, specEnd)
		i = specEnd
		delim = 0
		if i < end {
			delim = content[i]
		}
	}

	if delim != '}' {
		p.errAt(diag.SynUnterminatedFString,
			source.Span{File: fileID, Start: open, End: end},
			"Expected '}' in f-string")
		elem.Value = p.arenas.Exprs.NewError(fieldSpan)
		return elem, end
	}
	next := i + 1
	elem.Span = source.Span{File: fileID, Start: open, End: next}
	elem.Text = p.arenas.Strings.InternBytes(content[exprStart:i])

	if blankRange(content, exprStart, exprEnd) {
		p.errAt(diag.SynExpectedExpression, fieldSpan,
			"Expected an expression in f-string replacement field")
		elem.Value = p.arenas.Exprs.NewError(fieldSpan)
		return elem, next
	}

	elem.Value = p.subParseExpr(fileID, exprStart, exprEnd)
	return elem, next
}

// scanFormatSpec finds the end of a format spec: the '}' that closes the
// field, accounting for nested replacement fields.
func scanFormatSpec(content []byte, start, end uint32) uint32 {
	depth := 0
	for i := start; i < end; {
		switch content[i] {
		case '{':
			depth++
			i++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
			i++
		case '\'', '"':
			i = skipStringLiteral(content, i, end)
		default:
			i++
		}
	}
	return end
}

// skipStringLiteral steps over a nested string literal inside a
// replacement field, returning the index past its closing quote.
func skipStringLiteral(content []byte, i, end uint32) uint32 {
	q := content[i]
	i++
	triple := false
	if i+1 < end && content[i] == q && content[i+1] == q {
		i += 2
		triple = true
	}
	for i < end {
		switch content[i] {
		case '\\':
			i += 2
		case q:
			if !triple {
				return i + 1
			}
			if i+2 < end && content[i+1] == q && content[i+2] == q {
				return i + 3
			}
			i++
		default:
			i++
		}
	}
	return end
}

func blankRange(content []byte, start, end uint32) bool {
	return len(strings.TrimSpace(string(content[start:end]))) == 0
}

// subParseExpr re-lexes and parses a sub-range of the file in expression
// mode. Used for f-string replacement fields.
func (p *Parser) subParseExpr(fileID source.FileID, start, limit uint32) ast.ExprID {
	file := p.fs.Get(fileID)
	subLexer := lexer.New(file, lexer.Options{Reporter: lexer.DiagAdapter{Next: p.opts.Reporter}})
	subLexer.SetRange(start, limit)

	sub := Parser{
		lx:        subLexer,
		arenas:    p.arenas,
		file:      p.file,
		fs:        p.fs,
		opts:      p.opts,
		lastSpan:  source.Span{File: fileID, Start: start, End: start},
		funcDepth: p.funcDepth,
	}
	expr := sub.parseTestListStar(starContextValue)
	if !sub.at(token.EOF) {
		sub.errAt(diag.SynUnexpectedToken, sub.peek().Span,
			"Invalid syntax in f-string replacement field")
	}
	p.opts.CurrentErrors = sub.opts.CurrentErrors
	return expr
}
