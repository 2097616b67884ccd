package toon

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrFormat        = errors.New("toon: format error")
	ErrDepthExceeded = errors.New("toon: depth exceeded")
	ErrCyclicInput   = errors.New("toon: cyclic input")
	ErrInvalidConfig = errors.New("toon: invalid config")
)

// Position is a 1-based location in a document. Zero means unknown.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Column > 0 {
		return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
	}
	return fmt.Sprintf("line %d", p.Line)
}

// FormatError reports a grammar violation found while decoding.
type FormatError struct {
	Message  string
	Expected string // construct the decoder was looking for, if known
	Pos      Position
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("toon: ")
	if e.Pos.Line > 0 {
		b.WriteString(e.Pos.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Expected != "" {
		b.WriteString(" (expected ")
		b.WriteString(e.Expected)
		b.WriteByte(')')
	}
	return b.String()
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// DepthExceededError reports nesting deeper than Config.MaxDepth.
type DepthExceededError struct {
	Limit int
	Pos   Position // set when decoding
}

func (e *DepthExceededError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("toon: %s: nesting exceeds max depth %d", e.Pos, e.Limit)
	}
	return fmt.Sprintf("toon: nesting exceeds max depth %d", e.Limit)
}

func (e *DepthExceededError) Is(target error) bool { return target == ErrDepthExceeded }

// CyclicInputError reports a reference cycle found while normalizing.
type CyclicInputError struct {
	Type string // Go type that closed the cycle
	Path string // location of the repeated reference, e.g. $.a.b[2]
}

func (e *CyclicInputError) Error() string {
	return fmt.Sprintf("toon: cycle through %s at %s", e.Type, e.Path)
}

func (e *CyclicInputError) Is(target error) bool { return target == ErrCyclicInput }

// ConfigError reports an unusable Config field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("toon: config %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }
