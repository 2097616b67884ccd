package toon

import (
	"strings"
	"unicode"
)

// DefaultMaxDepth bounds container nesting when Config.MaxDepth is zero.
const DefaultMaxDepth = 256

// Config controls both encoding and decoding. The zero value is usable and
// means DefaultConfig.
type Config struct {
	// Delimiter separates inline array values and tabular cells.
	// Non-comma delimiters are also written inside array headers.
	Delimiter rune

	// LengthMarker, when non-zero, prefixes every array length, as in [#3].
	LengthMarker rune

	// Indent is one level of indentation. Encoding only; the decoder infers
	// the unit from the document.
	Indent string

	// MaxDepth is the deepest container nesting accepted by Encode, Decode
	// and Normalize.
	MaxDepth int
}

// DefaultConfig returns comma-delimited output with two-space indentation
// and no length marker.
func DefaultConfig() Config {
	return Config{
		Delimiter: ',',
		Indent:    "  ",
		MaxDepth:  DefaultMaxDepth,
	}
}

// TabConfig returns DefaultConfig with tab-delimited arrays.
func TabConfig() Config {
	c := DefaultConfig()
	c.Delimiter = '\t'
	return c
}

// PipeConfig returns DefaultConfig with pipe-delimited arrays.
func PipeConfig() Config {
	c := DefaultConfig()
	c.Delimiter = '|'
	return c
}

func (c Config) withDefaults() Config {
	if c.Delimiter == 0 {
		c.Delimiter = ','
	}
	if c.Indent == "" {
		c.Indent = "  "
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	return c
}

// Validate reports the first unusable field after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()
	if reason := delimiterProblem(c.Delimiter); reason != "" {
		return &ConfigError{Field: "delimiter", Message: reason}
	}
	if c.LengthMarker != 0 {
		switch {
		case c.LengthMarker == c.Delimiter:
			return &ConfigError{Field: "length marker", Message: "must differ from the delimiter"}
		case c.LengthMarker < 0x20 || unicode.IsSpace(c.LengthMarker):
			return &ConfigError{Field: "length marker", Message: "must be printable"}
		case unicode.IsDigit(c.LengthMarker) || strings.ContainsRune(structuralChars, c.LengthMarker):
			return &ConfigError{Field: "length marker", Message: "must not be a digit or structural character"}
		}
	}
	if strings.Trim(c.Indent, " \t") != "" {
		return &ConfigError{Field: "indent", Message: "must contain only spaces and tabs"}
	}
	if c.MaxDepth < 0 {
		return &ConfigError{Field: "max depth", Message: "must not be negative"}
	}
	return nil
}

// resolve applies defaults and validates.
func (c Config) resolve() (Config, error) {
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c.withDefaults(), nil
}

// structuralChars never work as a delimiter or length marker.
const structuralChars = "[]{}:\"\\"

func delimiterProblem(d rune) string {
	switch {
	case d == '\n' || d == '\r':
		return "must not be a line break"
	case d < 0x20 && d != '\t':
		return "must not be a control character"
	case strings.ContainsRune(structuralChars, d):
		return "must not be a structural character"
	case unicode.IsLetter(d) || unicode.IsDigit(d) || d == '-' || d == '+' || d == '.':
		return "must not appear in number or keyword literals"
	}
	return ""
}
