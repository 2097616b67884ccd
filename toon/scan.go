package toon

import (
	"fmt"
	"strings"
)

// line is one non-blank input line.
type line struct {
	num    int    // 1-based line number
	depth  int    // indentation level
	indent int    // byte width of the leading whitespace
	text   string // content after the indentation, trailing whitespace removed
}

// scanLines splits src into lines, drops blank ones, and converts leading
// whitespace into depth. The indent unit is taken from the first indented
// line; every later indentation must be a whole multiple of it.
func scanLines(src string) ([]line, error) {
	var (
		out  []line
		unit string
	)
	for i, raw := range strings.Split(src, "\n") {
		s := strings.TrimRight(raw, " \t\r")
		if s == "" {
			continue
		}
		text := strings.TrimLeft(s, " \t")
		ws := s[:len(s)-len(text)]
		ln := line{num: i + 1, indent: len(ws), text: text}
		if ws != "" {
			if unit == "" {
				unit = ws
			}
			depth, ok := indentDepth(ws, unit)
			if !ok {
				return nil, &FormatError{
					Message:  "inconsistent indentation",
					Expected: fmt.Sprintf("a multiple of %q", unit),
					Pos:      Position{Line: ln.num, Column: 1},
				}
			}
			ln.depth = depth
		}
		out = append(out, ln)
	}
	return out, nil
}

// indentDepth reports how many times unit repeats to make ws.
func indentDepth(ws, unit string) (int, bool) {
	if len(ws)%len(unit) != 0 {
		return 0, false
	}
	n := len(ws) / len(unit)
	if strings.Repeat(unit, n) != ws {
		return 0, false
	}
	return n, true
}
