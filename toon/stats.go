package toon

import "unicode/utf8"

// Stats compares the size of a value rendered as compact JSON and as TOON.
type Stats struct {
	JSONBytes    int
	TOONBytes    int
	JSONTokens   int
	TOONTokens   int
	SavedPercent float64 // token savings of TOON over JSON
}

// Compare renders v both ways under cfg and measures the results.
func Compare(v *Value, cfg Config) (Stats, error) {
	js, err := ToJSON(v)
	if err != nil {
		return Stats{}, err
	}
	ts, err := Encode(v, cfg)
	if err != nil {
		return Stats{}, err
	}
	s := Stats{
		JSONBytes:  len(js),
		TOONBytes:  len(ts),
		JSONTokens: EstimateTokens(string(js)),
		TOONTokens: EstimateTokens(ts),
	}
	if s.JSONTokens > 0 {
		s.SavedPercent = 100 * float64(s.JSONTokens-s.TOONTokens) / float64(s.JSONTokens)
	}
	return s, nil
}

// EstimateTokens approximates how many tokens a BPE tokenizer would use
// for s. Structural punctuation costs one token each, runs of digits or
// letters cost one token per four bytes, whitespace is free, and any
// other rune costs one token.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	tokens := 0
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isPunctuation(c):
			tokens++
			i++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c):
			n := 0
			for i < len(s) && isNumberByte(s[i]) {
				n++
				i++
			}
			tokens += (n + 3) / 4
		case isWordByte(c):
			n := 0
			for i < len(s) && (isWordByte(s[i]) || isDigit(s[i])) {
				n++
				i++
			}
			tokens += (n + 3) / 4
		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			tokens++
			i += size
		}
	}
	return max(1, tokens)
}

func isPunctuation(c byte) bool {
	switch c {
	case '{', '}', '[', ']', '(', ')', ':', ',', '"', '\'', '=', '@', '.', ';', '!', '?', '-', '|', '#':
		return true
	}
	return false
}

func isNumberByte(c byte) bool {
	return isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

func isWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
