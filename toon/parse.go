package toon

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ============================================================
// Decoding
// ============================================================

// Decode parses a TOON document. Delimiter and length marker must match
// the ones the document was written with; the indent unit is inferred.
// An empty document decodes to an empty mapping.
func Decode(text string, cfg Config) (*Value, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	lines, err := scanLines(text)
	if err != nil {
		return nil, err
	}
	p := &parser{cfg: cfg, lines: lines}
	return p.document()
}

type parser struct {
	cfg   Config
	lines []line
	pos   int
	nest  int
}

// arrayHeader is a parsed [<marker>N<delim?>]{fields}: header.
type arrayHeader struct {
	n      int
	fields []string // nil unless tabular
	inline int      // offset of inline values in the line text, or -1
}

func (p *parser) errAt(ln line, off int, msg, expected string) error {
	return &FormatError{
		Message:  msg,
		Expected: expected,
		Pos:      Position{Line: ln.num, Column: ln.indent + off + 1},
	}
}

// wrap converts a scanner error found at base+se.off in ln.text.
func (p *parser) wrap(ln line, base int, se *syntaxError) error {
	return p.errAt(ln, base+se.off, se.msg, se.expected)
}

func (p *parser) enter(ln line) error {
	p.nest++
	if p.nest > p.cfg.MaxDepth {
		return &DepthExceededError{Limit: p.cfg.MaxDepth, Pos: Position{Line: ln.num}}
	}
	return nil
}

func (p *parser) leave() { p.nest-- }

func (p *parser) peek() (line, bool) {
	if p.pos >= len(p.lines) {
		return line{}, false
	}
	return p.lines[p.pos], true
}

func (p *parser) document() (*Value, error) {
	if len(p.lines) == 0 {
		return Map(), nil
	}
	first := p.lines[0]
	if first.depth != 0 {
		return nil, p.errAt(first, 0, "unexpected indentation", "unindented first line")
	}

	var (
		v   *Value
		err error
	)
	if first.text[0] == '[' {
		v, err = p.array(first, 0, 1)
	} else {
		_, _, isKey, se := keyPrefix(first.text, 0)
		switch {
		case se != nil:
			return nil, p.wrap(first, 0, se)
		case isKey:
			v, err = p.mapping(0)
		default:
			if len(p.lines) > 1 {
				return nil, p.errAt(p.lines[1], 0, "unexpected line after root value", "end of document")
			}
			var lse *syntaxError
			if v, lse = parseLiteral(first.text); lse != nil {
				return nil, p.wrap(first, 0, lse)
			}
			p.pos++
		}
	}
	if err != nil {
		return nil, err
	}
	if extra, ok := p.peek(); ok {
		return nil, p.errAt(extra, 0, "unexpected line after root value", "end of document")
	}
	return v, nil
}

// ============================================================
// Mappings
// ============================================================

// mapping reads key lines at depth until the indentation drops.
func (p *parser) mapping(depth int) (*Value, error) {
	if err := p.enter(p.lines[p.pos]); err != nil {
		return nil, err
	}
	defer p.leave()
	m := Map()
	if err := p.fieldsInto(m, map[string]struct{}{}, depth); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *parser) fieldsInto(m *Value, seen map[string]struct{}, depth int) error {
	for {
		ln, ok := p.peek()
		if !ok || ln.depth < depth {
			return nil
		}
		if ln.depth > depth {
			return p.errAt(ln, 0, "unexpected indentation", fmt.Sprintf("indent level %d", depth))
		}
		key, end, isKey, se := keyPrefix(ln.text, 0)
		if se != nil {
			return p.wrap(ln, 0, se)
		}
		if !isKey {
			return p.errAt(ln, 0, "missing colon after key", `"key: value" or "key:"`)
		}
		if _, dup := seen[key]; dup {
			return p.errAt(ln, 0, fmt.Sprintf("duplicate key %q", key), "")
		}
		seen[key] = struct{}{}
		v, err := p.fieldValue(ln, end, depth, depth+1)
		if err != nil {
			return err
		}
		m.mapVal = append(m.mapVal, Entry{Key: key, Value: v})
	}
}

// fieldValue reads what follows a key ending at ln.text[end]. keyDepth is
// the level the key lives at; nested content sits at childDepth.
func (p *parser) fieldValue(ln line, end, keyDepth, childDepth int) (*Value, error) {
	text := ln.text
	if text[end] == '[' {
		return p.array(ln, end, childDepth)
	}
	rest := text[end+1:]
	if rest == "" {
		p.pos++
		if next, ok := p.peek(); ok && next.depth > keyDepth {
			return p.mapping(childDepth)
		}
		if err := p.enter(ln); err != nil {
			return nil, err
		}
		p.leave()
		return Map(), nil
	}
	if rest[0] != ' ' {
		return nil, p.errAt(ln, end+1, "missing space after colon", `": "`)
	}
	v, se := parseLiteral(rest[1:])
	if se != nil {
		return nil, p.wrap(ln, end+2, se)
	}
	p.pos++
	return v, nil
}

// keyPrefix reads a quoted or bare key at text[off]. It reports false when
// the text holds no key, and returns the offset of the ':' or '[' after it.
func keyPrefix(text string, off int) (string, int, bool, *syntaxError) {
	if text[off] == '"' {
		s, end, se := unquote(text, off)
		if se != nil {
			return "", 0, false, se
		}
		if end < len(text) && (text[end] == ':' || text[end] == '[') {
			return s, end, true, nil
		}
		return "", 0, false, nil
	}
	idx := strings.IndexAny(text[off:], ":[")
	if idx < 0 {
		return "", 0, false, nil
	}
	if idx == 0 {
		return "", 0, false, &syntaxError{off: off, msg: "empty key", expected: "key"}
	}
	if text[off] == '-' {
		return "", 0, false, &syntaxError{off: off, msg: "unexpected list item", expected: "key"}
	}
	return text[off : off+idx], off + idx, true, nil
}

// ============================================================
// Sequences
// ============================================================

// array parses the header at ln.text[off] and the body it announces.
func (p *parser) array(ln line, off, childDepth int) (*Value, error) {
	h, se := p.header(ln.text, off)
	if se != nil {
		return nil, p.wrap(ln, 0, se)
	}
	if err := p.enter(ln); err != nil {
		return nil, err
	}
	defer p.leave()
	p.pos++

	switch {
	case h.inline >= 0:
		return p.inline(ln, h)
	case h.n == 0:
		return Seq(), nil
	case h.fields != nil:
		return p.rows(ln, h, childDepth)
	default:
		return p.items(ln, h, childDepth)
	}
}

func (p *parser) header(text string, off int) (arrayHeader, *syntaxError) {
	h := arrayHeader{inline: -1}
	i := off + 1
	if m := p.cfg.LengthMarker; m != 0 {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != m {
			return h, &syntaxError{off: i, msg: "missing length marker", expected: strconv.QuoteRune(m)}
		}
		i += size
	}
	ds := i
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	if ds == i {
		return h, &syntaxError{off: i, msg: "missing array length", expected: "digits"}
	}
	n, err := strconv.Atoi(text[ds:i])
	if err != nil {
		return h, &syntaxError{off: ds, msg: "array length out of range"}
	}
	h.n = n

	d := p.cfg.Delimiter
	if d != ',' {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != d {
			return h, &syntaxError{off: i, msg: "delimiter mismatch in array header", expected: strconv.QuoteRune(d)}
		}
		i += size
	}
	if i >= len(text) || text[i] != ']' {
		return h, &syntaxError{off: i, msg: "malformed array header", expected: `"]"`}
	}
	i++

	if i < len(text) && text[i] == '{' {
		closeAt := fieldsEnd(text, i+1)
		if closeAt < 0 {
			return h, &syntaxError{off: i, msg: "unterminated field list", expected: `"}"`}
		}
		fields, se := parseFields(text[i+1:closeAt], d)
		if se != nil {
			se.off += i + 1
			return h, se
		}
		h.fields = fields
		i = closeAt + 1
	}

	if i >= len(text) || text[i] != ':' {
		return h, &syntaxError{off: i, msg: "missing colon after array header", expected: `":"`}
	}
	i++
	if i < len(text) {
		if text[i] != ' ' {
			return h, &syntaxError{off: i, msg: "missing space after colon", expected: `": "`}
		}
		if h.fields != nil {
			return h, &syntaxError{off: i, msg: "values on a tabular header line", expected: "rows on following lines"}
		}
		h.inline = i + 1
	}
	return h, nil
}

// fieldsEnd returns the index of the '}' closing a field list, skipping
// quoted names, or -1.
func fieldsEnd(text string, from int) int {
	inQuote := false
	for i := from; i < len(text); i++ {
		switch c := text[i]; {
		case inQuote && c == '\\':
			i++
		case c == '"':
			inQuote = !inQuote
		case !inQuote && c == '}':
			return i
		}
	}
	return -1
}

func parseFields(s string, delim rune) ([]string, *syntaxError) {
	cells, offs, se := splitDelimited(s, delim)
	if se != nil {
		return nil, se
	}
	fields := make([]string, len(cells))
	seen := make(map[string]struct{}, len(cells))
	for k, c := range cells {
		name := c
		switch {
		case c == "":
			return nil, &syntaxError{off: offs[k], msg: "empty field name", expected: "field name"}
		case c[0] == '"':
			s, end, se := unquote(c, 0)
			if se != nil {
				se.off += offs[k]
				return nil, se
			}
			if end != len(c) {
				return nil, &syntaxError{off: offs[k] + end, msg: "unexpected text after closing quote"}
			}
			name = s
		}
		if _, dup := seen[name]; dup {
			return nil, &syntaxError{off: offs[k], msg: fmt.Sprintf("duplicate field %q", name)}
		}
		seen[name] = struct{}{}
		fields[k] = name
	}
	return fields, nil
}

func (p *parser) inline(ln line, h arrayHeader) (*Value, error) {
	cells, offs, se := splitDelimited(ln.text[h.inline:], p.cfg.Delimiter)
	if se != nil {
		return nil, p.wrap(ln, h.inline, se)
	}
	if len(cells) != h.n {
		return nil, p.errAt(ln, h.inline,
			fmt.Sprintf("array length mismatch: header declares %d, found %d", h.n, len(cells)), "")
	}
	items := make([]*Value, len(cells))
	for k, c := range cells {
		v, se := parseLiteral(c)
		if se != nil {
			return nil, p.wrap(ln, h.inline+offs[k], se)
		}
		items[k] = v
	}
	return &Value{kind: KindSequence, seqVal: items}, nil
}

func (p *parser) rows(ln line, h arrayHeader, depth int) (*Value, error) {
	if err := p.enter(ln); err != nil {
		return nil, err
	}
	p.leave()

	items := make([]*Value, 0, p.capFor(h.n))
	for len(items) < h.n {
		row, ok := p.peek()
		if !ok || row.depth < depth {
			return nil, p.errAt(ln, 0,
				fmt.Sprintf("array length mismatch: header declares %d rows, found %d", h.n, len(items)), "")
		}
		if row.depth > depth {
			return nil, p.errAt(row, 0, "unexpected indentation", fmt.Sprintf("row at indent level %d", depth))
		}
		cells, offs, se := splitDelimited(row.text, p.cfg.Delimiter)
		if se != nil {
			return nil, p.wrap(row, 0, se)
		}
		if len(cells) != len(h.fields) {
			return nil, p.errAt(row, 0,
				fmt.Sprintf("row has %d values, header declares %d fields", len(cells), len(h.fields)), "")
		}
		entries := make([]Entry, len(cells))
		for k, c := range cells {
			v, se := parseLiteral(c)
			if se != nil {
				return nil, p.wrap(row, offs[k], se)
			}
			entries[k] = Entry{Key: h.fields[k], Value: v}
		}
		items = append(items, &Value{kind: KindMapping, mapVal: entries})
		p.pos++
	}
	if err := p.noMore(depth, h.n, "rows"); err != nil {
		return nil, err
	}
	return &Value{kind: KindSequence, seqVal: items}, nil
}

// capFor bounds a declared element count by the lines left to read.
func (p *parser) capFor(n int) int {
	return min(n, len(p.lines)-p.pos)
}

func (p *parser) items(ln line, h arrayHeader, depth int) (*Value, error) {
	items := make([]*Value, 0, p.capFor(h.n))
	for len(items) < h.n {
		it, ok := p.peek()
		if !ok || it.depth < depth {
			return nil, p.errAt(ln, 0,
				fmt.Sprintf("array length mismatch: header declares %d items, found %d", h.n, len(items)), "")
		}
		if it.depth > depth {
			return nil, p.errAt(it, 0, "unexpected indentation", fmt.Sprintf("list item at indent level %d", depth))
		}
		v, err := p.listItem(it, depth)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if err := p.noMore(depth, h.n, "items"); err != nil {
		return nil, err
	}
	return &Value{kind: KindSequence, seqVal: items}, nil
}

// noMore fails if anything is left at or below the body depth of an array
// that has already produced all n declared elements.
func (p *parser) noMore(depth, n int, what string) error {
	next, ok := p.peek()
	if !ok || next.depth < depth {
		return nil
	}
	if next.depth > depth {
		return p.errAt(next, 0, "unexpected indentation", fmt.Sprintf("indent level %d or less", depth-1))
	}
	return p.errAt(next, 0, fmt.Sprintf("array length mismatch: header declares %d %s, found more", n, what), "")
}

// listItem parses one "- " element at depth.
func (p *parser) listItem(ln line, depth int) (*Value, error) {
	text := ln.text
	if text == "-" {
		if err := p.enter(ln); err != nil {
			return nil, err
		}
		p.leave()
		p.pos++
		return Map(), nil
	}
	if !strings.HasPrefix(text, listPrefix) {
		return nil, p.errAt(ln, 0, "expected list item", `"- "`)
	}
	off := len(listPrefix)
	if text[off] == '[' {
		return p.array(ln, off, depth+1)
	}

	key, end, isKey, se := keyPrefix(text, off)
	if se != nil {
		return nil, p.wrap(ln, 0, se)
	}
	if !isKey {
		v, se := parseLiteral(text[off:])
		if se != nil {
			return nil, p.wrap(ln, off, se)
		}
		p.pos++
		return v, nil
	}

	if err := p.enter(ln); err != nil {
		return nil, err
	}
	defer p.leave()
	first, err := p.fieldValue(ln, end, depth+1, depth+2)
	if err != nil {
		return nil, err
	}
	m := &Value{kind: KindMapping, mapVal: []Entry{{Key: key, Value: first}}}
	if err := p.fieldsInto(m, map[string]struct{}{key: {}}, depth+1); err != nil {
		return nil, err
	}
	return m, nil
}
