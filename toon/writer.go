package toon

import "strings"

// lineWriter collects indented lines for one Encode call.
type lineWriter struct {
	indent string
	buf    strings.Builder
	lines  int
}

func newLineWriter(indent string) *lineWriter {
	return &lineWriter{indent: indent}
}

// push appends content at depth. content must not end in whitespace.
func (w *lineWriter) push(depth int, content string) {
	if w.lines > 0 {
		w.buf.WriteByte('\n')
	}
	for i := 0; i < depth; i++ {
		w.buf.WriteString(w.indent)
	}
	w.buf.WriteString(content)
	w.lines++
}

// String returns the lines joined by newlines, with no trailing newline.
func (w *lineWriter) String() string {
	return w.buf.String()
}
