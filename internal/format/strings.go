package format

import (
	"strings"

	"krait/internal/ast"
)

func (fb *fileBuilder) stringExpr(id ast.ExprID) DocID {
	d, _ := fb.builder.Exprs.String(id)
	if len(d.Parts) == 1 {
		return fb.stringPart(d.Parts[0])
	}
	// Implicit concatenation: pieces separated by spaces, breakable as a
	// group.
	var kids []DocID
	for i, p := range d.Parts {
		if i > 0 {
			kids = append(kids, fb.docs.Space())
		}
		kids = append(kids, fb.stringPart(p))
	}
	return fb.docs.Group(kids...)
}

func (fb *fileBuilder) stringPart(p ast.StringPart) DocID {
	raw := fb.lookup(p.Text)
	if p.Flags&ast.StringFString != 0 {
		return fb.docs.Text(fb.rebuildFString(p, raw))
	}
	return fb.docs.Text(normalizeString(raw, byte(fb.opt.Quote)))
}

// normalizeString rewrites one plain or bytes literal to the canonical
// quote. The alternate quote is used when the body contains the canonical
// one and not the alternate; raw strings only switch when the body holds
// no quotes at all.
func normalizeString(raw string, canonical byte) string {
	prefix, quote, triple, body := splitLiteral(raw)
	prefix = normalizePrefix(prefix)
	isRaw := strings.Contains(prefix, "r")

	if triple {
		if quote != canonical && !strings.Contains(body, string(canonical)) {
			quote = canonical
		}
		q := strings.Repeat(string(quote), 3)
		return prefix + q + body + q
	}

	if isRaw {
		if quote != canonical && !strings.ContainsAny(body, `"'`) {
			quote = canonical
		}
		return prefix + string(quote) + body + string(quote)
	}

	target := pickQuote(body, canonical)
	return prefix + string(target) + requote(body, target) + string(target)
}

// pickQuote prefers the canonical quote and falls back to the alternate
// only when that avoids escaping.
func pickQuote(body string, canonical byte) byte {
	alt := alternateQuote(canonical)
	if strings.Contains(body, string(canonical)) && !strings.Contains(body, string(alt)) {
		return alt
	}
	return canonical
}

func alternateQuote(q byte) byte {
	if q == '"' {
		return '\''
	}
	return '"'
}

// requote rewrites escapes for the target quote: unnecessary quote
// escapes are dropped, bare target quotes gain a backslash.
func requote(body string, target byte) string {
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			next := body[i+1]
			if (next == '"' || next == '\'') && next != target {
				b.WriteByte(next)
			} else {
				b.WriteByte(c)
				b.WriteByte(next)
			}
			i++
			continue
		}
		if c == target {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// splitLiteral takes a raw literal apart: prefix letters, quote char,
// triple flag, and the body between the quotes.
func splitLiteral(raw string) (prefix string, quote byte, triple bool, body string) {
	i := 0
	for i < len(raw) && raw[i] != '"' && raw[i] != '\'' {
		i++
	}
	prefix = raw[:i]
	if i >= len(raw) {
		return prefix, '"', false, ""
	}
	quote = raw[i]
	if i+2 < len(raw) && raw[i+1] == quote && raw[i+2] == quote {
		triple = true
		body = raw[i+3:]
		body = strings.TrimSuffix(body, strings.Repeat(string(quote), 3))
		return prefix, quote, triple, body
	}
	body = raw[i+1:]
	if len(body) > 0 && body[len(body)-1] == quote {
		body = body[:len(body)-1]
	}
	return prefix, quote, false, body
}

// normalizePrefix lowercases prefix letters and drops the legacy 'u'.
func normalizePrefix(prefix string) string {
	var b strings.Builder
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c == 'u' || c == 'U' {
			continue
		}
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// rebuildFString reassembles an f-string from its elements. Replacement
// field expressions are re-rendered, so literals nested inside them get
// their own quote treatment; self-documenting fields stay verbatim.
func (fb *fileBuilder) rebuildFString(p ast.StringPart, raw string) string {
	prefix, quote, triple, _ := splitLiteral(raw)
	prefix = normalizePrefix(prefix)
	isRaw := strings.Contains(prefix, "r")

	canonical := byte(fb.opt.Quote)
	target := quote
	literal := fb.fstringLiteralText(p.Elems)
	switch {
	case triple:
		if quote != canonical && !strings.Contains(literal, string(canonical)) {
			target = canonical
		}
	case isRaw:
		if quote != canonical && !strings.ContainsAny(literal, `"'`) {
			target = canonical
		}
	default:
		target = pickQuote(literal, canonical)
	}

	var b strings.Builder
	b.WriteString(prefix)
	q := string(target)
	if triple {
		q = strings.Repeat(string(target), 3)
	}
	b.WriteString(q)
	fb.writeFStringElems(&b, p.Elems, target, isRaw || triple)
	b.WriteString(q)
	return b.String()
}

// fstringLiteralText gathers the literal runs of an f-string, format
// specs included, for the quote decision.
func (fb *fileBuilder) fstringLiteralText(elems []ast.FStringElem) string {
	var b strings.Builder
	for _, el := range elems {
		switch el.Kind {
		case ast.FStringText:
			b.WriteString(fb.lookup(el.Text))
		case ast.FStringExpr:
			b.WriteString(fb.fstringLiteralText(el.FormatSpec))
		}
	}
	return b.String()
}

func (fb *fileBuilder) writeFStringElems(b *strings.Builder, elems []ast.FStringElem, target byte, verbatim bool) {
	for _, el := range elems {
		if el.Kind == ast.FStringText {
			text := fb.lookup(el.Text)
			if !verbatim {
				text = requote(text, target)
			}
			b.WriteString(text)
			continue
		}

		b.WriteByte('{')
		if el.SelfDoc {
			// {x=} reproduces the source text, whitespace included.
			b.WriteString(fb.lookup(el.Text))
			b.WriteByte('}')
			continue
		}
		if el.Value.IsValid() {
			// Strings inside the field must not collide with the enclosing
			// quote, so the sub-render prefers the alternate.
			b.WriteString(fb.renderFlat(el.Value, Quote(alternateQuote(target))))
		}
		if el.Conversion != 0 {
			b.WriteByte('!')
			b.WriteByte(el.Conversion)
		}
		if len(el.FormatSpec) > 0 {
			b.WriteByte(':')
			fb.writeFStringElems(b, el.FormatSpec, target, verbatim)
		}
		b.WriteByte('}')
	}
}

// renderFlat prints a subexpression on a single line with the given
// canonical quote, used for f-string replacement fields.
func (fb *fileBuilder) renderFlat(id ast.ExprID, quote Quote) string {
	docs := NewDocBuilder(1 << 6)
	sub := fileBuilder{
		builder: fb.builder,
		file:    fb.file,
		sf:      fb.sf,
		docs:    docs,
		opt:     fb.opt,
	}
	sub.opt.Quote = quote
	root := sub.expr(id, precLowest)
	out, err := Print(docs, root, Options{
		LineWidth:   1 << 20,
		IndentWidth: fb.opt.IndentWidth,
		Quote:       quote,
	})
	if err != nil || len(out) == 0 {
		e := fb.builder.Exprs.Get(id)
		if e == nil {
			return ""
		}
		return fb.sourceSlice(e.Span.Start, e.Span.End)
	}
	return strings.TrimRight(string(out), "\n")
}
