package toon

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// JSON objects are read token by token so that key order in the source
// document becomes mapping order. Numbers keep their full decimal text.

// FromJSON converts a JSON document into a canonical tree.
func FromJSON(data []byte) (*Value, error) {
	return FromJSONReader(bytes.NewReader(data))
}

// FromJSONReader converts one JSON document read from r.
func FromJSONReader(r io.Reader) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	jr := &jsonReader{dec: dec, maxDepth: DefaultMaxDepth}
	v, err := jr.read()
	if err != nil {
		return nil, fmt.Errorf("toon: json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("toon: json: unexpected data after top-level value")
	}
	return v, nil
}

type jsonReader struct {
	dec      *json.Decoder
	maxDepth int
	nest     int
}

func (jr *jsonReader) read() (*Value, error) {
	tok, err := jr.dec.Token()
	if err != nil {
		return nil, err
	}
	return jr.value(tok)
}

func (jr *jsonReader) value(tok any) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		jr.nest++
		defer func() { jr.nest-- }()
		if jr.nest > jr.maxDepth {
			return nil, &DepthExceededError{Limit: jr.maxDepth}
		}
		switch t {
		case '{':
			return jr.object()
		case '[':
			return jr.array()
		}
		return nil, fmt.Errorf("unexpected %q", rune(t))
	case string:
		return Str(t), nil
	case json.Number:
		n, err := ParseNumber(string(t))
		if err != nil {
			return nil, err
		}
		return Num(n), nil
	case float64:
		return Float(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func (jr *jsonReader) object() (*Value, error) {
	b := newMapBuilder(0)
	for jr.dec.More() {
		kt, err := jr.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", kt)
		}
		v, err := jr.read()
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		b.set(key, v)
	}
	if _, err := jr.dec.Token(); err != nil {
		return nil, err
	}
	return b.m, nil
}

func (jr *jsonReader) array() (*Value, error) {
	s := Seq()
	for i := 0; jr.dec.More(); i++ {
		v, err := jr.read()
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		s.seqVal = append(s.seqVal, v)
	}
	if _, err := jr.dec.Token(); err != nil {
		return nil, err
	}
	return s, nil
}

// ============================================================
// ToJSON
// ============================================================

// ToJSON renders v as compact JSON, keeping mapping order.
func ToJSON(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	w := jsonWriter{buf: &buf}
	if err := w.value(v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToJSONIndent renders v as indented JSON, keeping mapping order. Each
// element starts on a new line beginning with prefix and one copy of
// indent per nesting level, as with json.Indent.
func ToJSONIndent(v *Value, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	w := jsonWriter{buf: &buf, prefix: prefix, indent: indent, pretty: true}
	if err := w.value(v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type jsonWriter struct {
	buf            *bytes.Buffer
	prefix, indent string
	pretty         bool
}

func (w *jsonWriter) newline(level int) {
	if !w.pretty {
		return
	}
	w.buf.WriteByte('\n')
	w.buf.WriteString(w.prefix)
	for range level {
		w.buf.WriteString(w.indent)
	}
}

func (w *jsonWriter) value(v *Value, level int) error {
	switch v.Kind() {
	case KindNull:
		w.buf.WriteString("null")
	case KindBool:
		if v.boolVal {
			w.buf.WriteString("true")
		} else {
			w.buf.WriteString("false")
		}
	case KindNumber:
		w.buf.WriteString(string(v.numVal))
	case KindString:
		return writeJSONString(w.buf, v.strVal)
	case KindSequence:
		w.buf.WriteByte('[')
		for i, it := range v.seqVal {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.newline(level + 1)
			if err := w.value(it, level+1); err != nil {
				return err
			}
		}
		if len(v.seqVal) > 0 {
			w.newline(level)
		}
		w.buf.WriteByte(']')
	case KindMapping:
		w.buf.WriteByte('{')
		for i, e := range v.mapVal {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.newline(level + 1)
			if err := writeJSONString(w.buf, e.Key); err != nil {
				return err
			}
			w.buf.WriteByte(':')
			if w.pretty {
				w.buf.WriteByte(' ')
			}
			if err := w.value(e.Value, level+1); err != nil {
				return err
			}
		}
		if len(v.mapVal) > 0 {
			w.newline(level)
		}
		w.buf.WriteByte('}')
	}
	return nil
}

// writeJSONString writes s as a JSON string literal, leaving <, > and &
// as they are.
func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v *Value) MarshalJSON() ([]byte, error) {
	return ToJSON(v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

// Unmarshal decodes a TOON document into out, which may be anything
// encoding/json can decode into.
func Unmarshal(text string, out any, cfg Config) error {
	v, err := Decode(text, cfg)
	if err != nil {
		return err
	}
	b, err := ToJSON(v)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("toon: %w", err)
	}
	return nil
}
