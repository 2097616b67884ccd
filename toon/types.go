package toon

import (
	"fmt"
	"math/big"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a node of the canonical value tree.
//
// A nil *Value behaves as null everywhere it is accepted.
type Value struct {
	kind Kind

	boolVal bool
	numVal  Number
	strVal  string

	seqVal []*Value
	mapVal []Entry
}

// Entry is one key/value pair of a mapping.
type Entry struct {
	Key   string
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// Null returns a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool returns a bool value.
func Bool(b bool) *Value {
	return &Value{kind: KindBool, boolVal: b}
}

// Num returns a number value holding n in canonical form. Text that does
// not parse as a decimal yields null.
func Num(n Number) *Value {
	c, err := ParseNumber(string(n))
	if err != nil {
		return Null()
	}
	return &Value{kind: KindNumber, numVal: c}
}

// Int returns a number value holding i.
func Int(i int64) *Value {
	return Num(IntNumber(i))
}

// Uint returns a number value holding u.
func Uint(u uint64) *Value {
	return Num(UintNumber(u))
}

// BigInt returns a number value holding i at full precision.
func BigInt(i *big.Int) *Value {
	if i == nil {
		return Null()
	}
	return Num(Number(i.String()))
}

// Float returns a number value holding f. NaN and infinities become null
// and negative zero becomes zero.
func Float(f float64) *Value {
	n, ok := FloatNumber(f)
	if !ok {
		return Null()
	}
	return Num(n)
}

// Str returns a string value.
func Str(s string) *Value {
	return &Value{kind: KindString, strVal: s}
}

// Seq returns a sequence of the given items. Nil items are stored as null.
func Seq(items ...*Value) *Value {
	out := make([]*Value, len(items))
	for i, it := range items {
		if it == nil {
			it = Null()
		}
		out[i] = it
	}
	return &Value{kind: KindSequence, seqVal: out}
}

// Map returns a mapping of the given entries. A repeated key replaces the
// earlier value in place, so keys stay unique and first-seen order is kept.
func Map(entries ...Entry) *Value {
	b := newMapBuilder(len(entries))
	for _, e := range entries {
		b.set(e.Key, e.Value)
	}
	return b.m
}

// mapBuilder fills a mapping with Set semantics in constant time per key.
type mapBuilder struct {
	m     *Value
	index map[string]int
}

func newMapBuilder(size int) *mapBuilder {
	return &mapBuilder{
		m:     &Value{kind: KindMapping, mapVal: make([]Entry, 0, size)},
		index: make(map[string]int, size),
	}
}

func (b *mapBuilder) set(key string, value *Value) {
	if value == nil {
		value = Null()
	}
	if i, ok := b.index[key]; ok {
		b.m.mapVal[i].Value = value
		return
	}
	b.index[key] = len(b.m.mapVal)
	b.m.mapVal = append(b.m.mapVal, Entry{Key: key, Value: value})
}

// Field is shorthand for building an Entry.
func Field(key string, value *Value) Entry {
	return Entry{Key: key, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the variant of v.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is null.
func (v *Value) IsNull() bool {
	return v.Kind() == KindNull
}

// IsScalar reports whether v is null, bool, number or string.
func (v *Value) IsScalar() bool {
	k := v.Kind()
	return k != KindSequence && k != KindMapping
}

// AsBool returns the bool held by v.
func (v *Value) AsBool() (bool, error) {
	if v.Kind() != KindBool {
		return false, fmt.Errorf("toon: expected bool, got %s", v.Kind())
	}
	return v.boolVal, nil
}

// AsNumber returns the number held by v.
func (v *Value) AsNumber() (Number, error) {
	if v.Kind() != KindNumber {
		return "", fmt.Errorf("toon: expected number, got %s", v.Kind())
	}
	return v.numVal, nil
}

// AsString returns the string held by v.
func (v *Value) AsString() (string, error) {
	if v.Kind() != KindString {
		return "", fmt.Errorf("toon: expected string, got %s", v.Kind())
	}
	return v.strVal, nil
}

// AsSeq returns the items of a sequence. The slice is shared with v.
func (v *Value) AsSeq() ([]*Value, error) {
	if v.Kind() != KindSequence {
		return nil, fmt.Errorf("toon: expected sequence, got %s", v.Kind())
	}
	return v.seqVal, nil
}

// AsMap returns the entries of a mapping. The slice is shared with v.
func (v *Value) AsMap() ([]Entry, error) {
	if v.Kind() != KindMapping {
		return nil, fmt.Errorf("toon: expected mapping, got %s", v.Kind())
	}
	return v.mapVal, nil
}

// Len returns the number of items or entries, or 0 for scalars.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindSequence:
		return len(v.seqVal)
	case KindMapping:
		return len(v.mapVal)
	}
	return 0
}

// Get returns the value stored under key, or nil if v is not a mapping or
// has no such key.
func (v *Value) Get(key string) *Value {
	if v.Kind() != KindMapping {
		return nil
	}
	for _, e := range v.mapVal {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Index returns the i'th item of a sequence, or nil when out of range.
func (v *Value) Index(i int) *Value {
	if v.Kind() != KindSequence || i < 0 || i >= len(v.seqVal) {
		return nil
	}
	return v.seqVal[i]
}

// Keys returns the mapping keys in order.
func (v *Value) Keys() []string {
	if v.Kind() != KindMapping {
		return nil
	}
	keys := make([]string, len(v.mapVal))
	for i, e := range v.mapVal {
		keys[i] = e.Key
	}
	return keys
}

// Set stores value under key, replacing an existing entry in place or
// appending a new one. It panics if v is not a mapping.
func (v *Value) Set(key string, value *Value) {
	if v.Kind() != KindMapping {
		panic("toon: Set on " + v.Kind().String())
	}
	if value == nil {
		value = Null()
	}
	for i := range v.mapVal {
		if v.mapVal[i].Key == key {
			v.mapVal[i].Value = value
			return
		}
	}
	v.mapVal = append(v.mapVal, Entry{Key: key, Value: value})
}

// Append adds items to the end of a sequence. It panics if v is not a
// sequence.
func (v *Value) Append(items ...*Value) {
	if v.Kind() != KindSequence {
		panic("toon: Append on " + v.Kind().String())
	}
	for _, it := range items {
		if it == nil {
			it = Null()
		}
		v.seqVal = append(v.seqVal, it)
	}
}

// ============================================================
// Comparison and conversion
// ============================================================

// Equal reports whether a and b are the same tree. Mapping entry order is
// significant.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindNumber:
		return a.numVal == b.numVal
	case KindString:
		return a.strVal == b.strVal
	case KindSequence:
		if len(a.seqVal) != len(b.seqVal) {
			return false
		}
		for i := range a.seqVal {
			if !Equal(a.seqVal[i], b.seqVal[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(a.mapVal) != len(b.mapVal) {
			return false
		}
		for i := range a.mapVal {
			if a.mapVal[i].Key != b.mapVal[i].Key || !Equal(a.mapVal[i].Value, b.mapVal[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v to plain Go values: nil, bool, Number, string,
// []any and map[string]any. Mapping order is lost.
func (v *Value) Interface() any {
	switch v.Kind() {
	case KindBool:
		return v.boolVal
	case KindNumber:
		return v.numVal
	case KindString:
		return v.strVal
	case KindSequence:
		out := make([]any, len(v.seqVal))
		for i, it := range v.seqVal {
			out[i] = it.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.mapVal))
		for _, e := range v.mapVal {
			out[e.Key] = e.Value.Interface()
		}
		return out
	}
	return nil
}

// String renders v with the default configuration. Encoding errors are
// reported inline.
func (v *Value) String() string {
	s, err := Encode(v, DefaultConfig())
	if err != nil {
		return "<toon: " + err.Error() + ">"
	}
	return s
}
