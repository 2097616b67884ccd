package toon

import (
	"fmt"
	"io"
)

// Encoder writes TOON documents to an output stream.
type Encoder struct {
	w       io.Writer
	cfg     Config
	newline bool
}

// NewEncoder returns an encoder that writes to w.
func NewEncoder(w io.Writer, cfg Config) *Encoder {
	return &Encoder{w: w, cfg: cfg}
}

// SetTrailingNewline makes Encode terminate each document with "\n", for
// writing to terminals and line-oriented files.
func (e *Encoder) SetTrailingNewline(on bool) {
	e.newline = on
}

// Encode normalizes in and writes it as one document.
func (e *Encoder) Encode(in any) error {
	text, err := Marshal(in, e.cfg)
	if err != nil {
		return err
	}
	if e.newline && text != "" {
		text += "\n"
	}
	if _, err := io.WriteString(e.w, text); err != nil {
		return fmt.Errorf("toon: write: %w", err)
	}
	return nil
}

// Decoder reads a TOON document from an input stream.
type Decoder struct {
	r   io.Reader
	cfg Config
}

// NewDecoder returns a decoder that reads from r.
func NewDecoder(r io.Reader, cfg Config) *Decoder {
	return &Decoder{r: r, cfg: cfg}
}

// Decode reads r to the end and parses it as a single document.
func (d *Decoder) Decode() (*Value, error) {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return nil, fmt.Errorf("toon: read: %w", err)
	}
	return Decode(string(data), d.cfg)
}

// DecodeInto reads one document and stores it in out as Unmarshal does.
func (d *Decoder) DecodeInto(out any) error {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return fmt.Errorf("toon: read: %w", err)
	}
	return Unmarshal(string(data), out, d.cfg)
}
