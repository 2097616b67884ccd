package toon

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ============================================================
// Quoting
// ============================================================

// isSafeUnquoted reports whether s can be written without quotes in a
// document using delimiter delim.
func isSafeUnquoted(s string, delim rune) bool {
	if s == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	if unicode.IsSpace(first) || unicode.IsSpace(last) {
		return false
	}
	if first == '-' {
		return false
	}
	if s == "true" || s == "false" || s == "null" {
		return false
	}
	if looksNumeric(s) {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r == delim {
			return false
		}
		switch r {
		case '[', ']', '{', '}', ':', ',', '"', '\\':
			return false
		}
	}
	return true
}

// looksNumeric matches -?digits[.digits][(e|E)[+-]digits], leading zeros
// included, so strings like "05" and "1E3" are quoted as well as canonical
// numbers.
func looksNumeric(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		fs := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == fs {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		es := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == es {
			return false
		}
	}
	return i == len(s)
}

// isNumberLiteral matches the stricter grammar the decoder turns into a
// Number: no leading zeros other than a lone 0.
func isNumberLiteral(s string) bool {
	if !looksNumeric(s) {
		return false
	}
	d := strings.TrimPrefix(s, "-")
	return !(len(d) > 1 && d[0] == '0' && isDigit(d[1]))
}

const hexUpper = "0123456789ABCDEF"

// quoteString wraps s in double quotes, escaping backslash, quote and
// control characters. Everything else passes through as is.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexUpper[c>>4])
				b.WriteByte(hexUpper[c&0xF])
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ============================================================
// Primitive encoding
// ============================================================

// encodeString quotes s only when needed.
func encodeString(s string, delim rune) string {
	if isSafeUnquoted(s, delim) {
		return s
	}
	return quoteString(s)
}

// encodePrimitive renders a scalar. Containers are not scalars and render
// as null; callers check IsScalar first.
func encodePrimitive(v *Value, delim rune) string {
	switch v.Kind() {
	case KindBool:
		if v.boolVal {
			return "true"
		}
		return "false"
	case KindNumber:
		return string(v.numVal)
	case KindString:
		return encodeString(v.strVal, delim)
	}
	return "null"
}

// encodeKey renders a mapping key or tabular field name.
func encodeKey(key string, delim rune) string {
	return encodeString(key, delim)
}

// formatHeader renders [<marker>N<delim?>] with an optional {fields}
// block and the trailing colon. key is written as is and may be empty.
func formatHeader(key string, n int, fields []string, cfg Config) string {
	var b strings.Builder
	b.WriteString(key)
	b.WriteByte('[')
	if cfg.LengthMarker != 0 {
		b.WriteRune(cfg.LengthMarker)
	}
	b.WriteString(strconv.Itoa(n))
	if cfg.Delimiter != ',' {
		b.WriteRune(cfg.Delimiter)
	}
	b.WriteByte(']')
	if fields != nil {
		b.WriteByte('{')
		for i, f := range fields {
			if i > 0 {
				b.WriteRune(cfg.Delimiter)
			}
			b.WriteString(encodeKey(f, cfg.Delimiter))
		}
		b.WriteByte('}')
	}
	b.WriteByte(':')
	return b.String()
}

// joinValues joins already-encoded literals with delim.
func joinValues(values []string, delim rune) string {
	return strings.Join(values, string(delim))
}

// ============================================================
// Primitive decoding
// ============================================================

// syntaxError is a position-relative error raised while scanning a single
// line. The parser turns it into a FormatError with absolute coordinates.
type syntaxError struct {
	off      int
	msg      string
	expected string
}

func (e *syntaxError) Error() string { return e.msg }

// parseLiteral infers a scalar from one token.
func parseLiteral(tok string) (*Value, *syntaxError) {
	if tok == "" {
		return nil, &syntaxError{msg: "empty value", expected: "literal"}
	}
	if tok[0] == '"' {
		s, end, err := unquote(tok, 0)
		if err != nil {
			return nil, err
		}
		if end != len(tok) {
			return nil, &syntaxError{off: end, msg: "unexpected text after closing quote"}
		}
		return Str(s), nil
	}
	switch tok {
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	case "null":
		return Null(), nil
	}
	if isNumberLiteral(tok) {
		n, err := ParseNumber(tok)
		if err != nil {
			return nil, &syntaxError{msg: err.Error(), expected: "number"}
		}
		return Num(n), nil
	}
	return Str(tok), nil
}

// unquote reads the quoted string starting at s[start] and returns its
// contents and the offset just past the closing quote.
func unquote(s string, start int) (string, int, *syntaxError) {
	var b strings.Builder
	i := start + 1
	for i < len(s) {
		c := s[i]
		switch {
		case c == '"':
			return b.String(), i + 1, nil
		case c == '\\':
			if i+1 >= len(s) {
				return "", 0, &syntaxError{off: i, msg: "unterminated escape", expected: "escape character"}
			}
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case '/':
				b.WriteByte('/')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				r, n, err := readUnicodeEscape(s, i)
				if err != nil {
					return "", 0, err
				}
				b.WriteRune(r)
				i += n
				continue
			default:
				return "", 0, &syntaxError{off: i, msg: "invalid escape \\" + string(s[i+1]), expected: `one of \\ \" \n \r \t \uXXXX`}
			}
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, &syntaxError{off: start, msg: "unterminated string", expected: `closing "`}
}

// readUnicodeEscape decodes \uXXXX at s[i], joining surrogate pairs. It
// returns the rune and the number of bytes consumed.
func readUnicodeEscape(s string, i int) (rune, int, *syntaxError) {
	hex4 := func(at int) (rune, bool) {
		if at+6 > len(s) || s[at] != '\\' || s[at+1] != 'u' {
			return 0, false
		}
		v, err := strconv.ParseUint(s[at+2:at+6], 16, 16)
		if err != nil {
			return 0, false
		}
		return rune(v), true
	}
	r, ok := hex4(i)
	if !ok {
		return 0, 0, &syntaxError{off: i, msg: "invalid unicode escape", expected: `\uXXXX`}
	}
	if r >= 0xD800 && r < 0xDC00 {
		if lo, ok := hex4(i + 6); ok && lo >= 0xDC00 && lo < 0xE000 {
			return (r-0xD800)<<10 + (lo - 0xDC00) + 0x10000, 12, nil
		}
		return utf8.RuneError, 6, nil
	}
	return r, 6, nil
}

// splitDelimited splits s on delim outside quoted spans and returns each
// cell with its byte offset in s.
func splitDelimited(s string, delim rune) ([]string, []int, *syntaxError) {
	var cells []string
	var offs []int
	start := 0
	inQuote := false
	quoteAt := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case inQuote && r == '\\':
			i += 2
			continue
		case r == '"':
			if !inQuote {
				quoteAt = i
			}
			inQuote = !inQuote
		case !inQuote && r == delim:
			cells = append(cells, s[start:i])
			offs = append(offs, start)
			start = i + size
		}
		i += size
	}
	if inQuote {
		return nil, nil, &syntaxError{off: quoteAt, msg: "unterminated string", expected: `closing "`}
	}
	cells = append(cells, s[start:])
	offs = append(offs, start)
	return cells, offs, nil
}
