package toon

import (
	"encoding"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ============================================================
// Normalization
// ============================================================

// Converter turns one family of Go values into something Normalize already
// understands: a *Value, a primitive, a slice, a map or a struct.
type Converter struct {
	Name    string
	Match   func(reflect.Value) bool
	Convert func(reflect.Value) any
}

// NormalizeOptions configures NormalizeWithOptions.
type NormalizeOptions struct {
	// Converters are tried in order before the built-in ones.
	Converters []Converter

	// MaxDepth bounds container nesting; zero means DefaultMaxDepth.
	MaxDepth int
}

// Normalize converts a Go value into a canonical tree using the default
// converters. Unsupported values such as functions and channels become
// null. A *Value input is copied, so the result shares nothing with the
// caller. It fails only on reference cycles and excessive nesting.
func Normalize(in any) (*Value, error) {
	return NormalizeWithOptions(in, NormalizeOptions{})
}

// NormalizeWithOptions is Normalize with extra converters and a depth limit.
func NormalizeWithOptions(in any, opts NormalizeOptions) (*Value, error) {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	n := &normalizer{
		maxDepth:   opts.MaxDepth,
		converters: append(append([]Converter(nil), opts.Converters...), DefaultConverters()...),
		active:     make(map[visit]struct{}),
		path:       []string{"$"},
	}
	return n.value(reflect.ValueOf(in))
}

// DefaultConverters returns the built-in conversions in the order they are
// tried: time.Time, math/big numbers, json.Marshaler, encoding.TextMarshaler.
func DefaultConverters() []Converter {
	return []Converter{
		{Name: "time", Match: isType(timeType), Convert: convertTime},
		{Name: "big", Match: isBig, Convert: convertBig},
		{Name: "json.Marshaler", Match: implements(jsonMarshalerType), Convert: convertJSONMarshaler},
		{Name: "encoding.TextMarshaler", Match: implements(textMarshalerType), Convert: convertTextMarshaler},
	}
}

var (
	valuePtrType      = reflect.TypeOf((*Value)(nil))
	timeType          = reflect.TypeOf(time.Time{})
	jsonNumberType    = reflect.TypeOf(json.Number(""))
	bigIntType        = reflect.TypeOf(big.Int{})
	bigFloatType      = reflect.TypeOf(big.Float{})
	bigRatType        = reflect.TypeOf(big.Rat{})
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// ISOMillis is the layout time.Time values are normalized to, always UTC.
const ISOMillis = "2006-01-02T15:04:05.000Z"

// visit identifies a reference on the active traversal path.
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

type normalizer struct {
	maxDepth   int
	converters []Converter
	active     map[visit]struct{}
	path       []string
	nest       int
	converting int // converter calls on the active path
}

func (n *normalizer) enter() error {
	n.nest++
	if n.nest > n.maxDepth {
		return &DepthExceededError{Limit: n.maxDepth}
	}
	return nil
}

func (n *normalizer) leave() { n.nest-- }

// track marks a reference as being on the active path. The returned func
// removes it again.
func (n *normalizer) track(rv reflect.Value, length int) (func(), error) {
	k := visit{ptr: rv.Pointer(), typ: rv.Type(), len: length}
	if _, seen := n.active[k]; seen {
		return nil, &CyclicInputError{Type: rv.Type().String(), Path: strings.Join(n.path, "")}
	}
	n.active[k] = struct{}{}
	return func() { delete(n.active, k) }, nil
}

func (n *normalizer) push(seg string) { n.path = append(n.path, seg) }
func (n *normalizer) pop()            { n.path = n.path[:len(n.path)-1] }

func (n *normalizer) value(rv reflect.Value) (*Value, error) {
	for rv.IsValid() && rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Null(), nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return Null(), nil
	}
	if rv.Type() == valuePtrType && rv.CanInterface() {
		v, _ := rv.Interface().(*Value)
		if v == nil {
			return Null(), nil
		}
		return n.copyValue(v)
	}
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null(), nil
	}
	if rv.CanInterface() {
		for _, c := range n.converters {
			if c.Match(rv) {
				return n.convert(c, rv)
			}
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint()), nil
	case reflect.Float32:
		if num, ok := floatNumber(rv.Float(), 32); ok {
			return Num(num), nil
		}
		return Null(), nil
	case reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		if rv.Type() == jsonNumberType {
			return Num(Number(rv.String())), nil
		}
		return Str(rv.String()), nil
	case reflect.Pointer:
		done, err := n.track(rv, 0)
		if err != nil {
			return nil, err
		}
		defer done()
		return n.value(rv.Elem())
	case reflect.Slice:
		if rv.IsNil() {
			return Null(), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Str(base64.StdEncoding.EncodeToString(rv.Bytes())), nil
		}
		done, err := n.track(rv, rv.Len())
		if err != nil {
			return nil, err
		}
		defer done()
		return n.sequence(rv)
	case reflect.Array:
		return n.sequence(rv)
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		done, err := n.track(rv, 0)
		if err != nil {
			return nil, err
		}
		defer done()
		if rv.Type().Elem().Kind() == reflect.Struct && rv.Type().Elem().NumField() == 0 {
			return n.set(rv)
		}
		return n.mapping(rv)
	case reflect.Struct:
		return n.record(rv)
	}
	// functions, channels, complex numbers, unsafe pointers
	return Null(), nil
}

// convert applies c and normalizes its result. A converter whose output
// keeps matching converters is cut off at the depth limit.
func (n *normalizer) convert(c Converter, rv reflect.Value) (*Value, error) {
	n.converting++
	defer func() { n.converting-- }()
	if n.converting > n.maxDepth {
		return nil, &DepthExceededError{Limit: n.maxDepth}
	}
	return n.value(reflect.ValueOf(c.Convert(rv)))
}

// copyValue deep-copies a tree handed in by the caller.
func (n *normalizer) copyValue(v *Value) (*Value, error) {
	switch v.Kind() {
	case KindSequence, KindMapping:
	default:
		c := *v
		return &c, nil
	}
	done, err := n.track(reflect.ValueOf(v), 0)
	if err != nil {
		return nil, err
	}
	defer done()
	if err := n.enter(); err != nil {
		return nil, err
	}
	defer n.leave()

	if v.kind == KindSequence {
		items := make([]*Value, len(v.seqVal))
		for i, it := range v.seqVal {
			n.push("[" + strconv.Itoa(i) + "]")
			c, err := n.value(reflect.ValueOf(it))
			n.pop()
			if err != nil {
				return nil, err
			}
			items[i] = c
		}
		return &Value{kind: KindSequence, seqVal: items}, nil
	}
	entries := make([]Entry, len(v.mapVal))
	for i, e := range v.mapVal {
		n.push("." + e.Key)
		c, err := n.value(reflect.ValueOf(e.Value))
		n.pop()
		if err != nil {
			return nil, err
		}
		entries[i] = Entry{Key: e.Key, Value: c}
	}
	return &Value{kind: KindMapping, mapVal: entries}, nil
}

func (n *normalizer) sequence(rv reflect.Value) (*Value, error) {
	if err := n.enter(); err != nil {
		return nil, err
	}
	defer n.leave()
	items := make([]*Value, rv.Len())
	for i := range items {
		n.push("[" + strconv.Itoa(i) + "]")
		v, err := n.value(rv.Index(i))
		n.pop()
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return &Value{kind: KindSequence, seqVal: items}, nil
}

// mapping sorts Go map keys by their text form, since Go maps carry no
// insertion order.
func (n *normalizer) mapping(rv reflect.Value) (*Value, error) {
	if err := n.enter(); err != nil {
		return nil, err
	}
	defer n.leave()
	keys := sortedKeys(rv)
	b := newMapBuilder(len(keys))
	for _, k := range keys {
		n.push("." + k.text)
		v, err := n.value(rv.MapIndex(k.rv))
		n.pop()
		if err != nil {
			return nil, err
		}
		b.set(k.text, v)
	}
	return b.m, nil
}

// set turns a map[K]struct{} into a sequence of its keys.
func (n *normalizer) set(rv reflect.Value) (*Value, error) {
	if err := n.enter(); err != nil {
		return nil, err
	}
	defer n.leave()
	keys := sortedKeys(rv)
	items := make([]*Value, len(keys))
	for i, k := range keys {
		v, err := n.value(k.rv)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return &Value{kind: KindSequence, seqVal: items}, nil
}

type mapKey struct {
	rv   reflect.Value
	text string
}

func sortedKeys(rv reflect.Value) []mapKey {
	keys := make([]mapKey, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		keys = append(keys, mapKey{rv: k, text: keyText(k)})
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].text < keys[j].text })
	return keys
}

func keyText(k reflect.Value) string {
	for k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
			if b, err := tm.MarshalText(); err == nil {
				return string(b)
			}
		}
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10)
	}
	if !k.CanInterface() {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

// record converts a struct in declared field order.
func (n *normalizer) record(rv reflect.Value) (*Value, error) {
	if err := n.enter(); err != nil {
		return nil, err
	}
	defer n.leave()
	m := &Value{kind: KindMapping}
	if err := n.structFields(m, rv); err != nil {
		return nil, err
	}
	return m, nil
}

func (n *normalizer) structFields(m *Value, rv reflect.Value) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, omitEmpty, skip := fieldTag(sf)
		if skip {
			continue
		}
		fv := rv.Field(i)
		if sf.Anonymous && name == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv, ft = fv.Elem(), ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if err := n.structFields(m, fv); err != nil {
					return err
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if omitEmpty && isEmptyValue(fv) {
			continue
		}
		if m.Get(name) != nil {
			continue
		}
		n.push("." + name)
		v, err := n.value(fv)
		n.pop()
		if err != nil {
			return err
		}
		m.mapVal = append(m.mapVal, Entry{Key: name, Value: v})
	}
	return nil
}

// fieldTag reads the toon tag, falling back to the json tag.
func fieldTag(sf reflect.StructField) (name string, omitEmpty, skip bool) {
	tag, ok := sf.Tag.Lookup("toon")
	if !ok {
		tag = sf.Tag.Get("json")
	}
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	for _, o := range strings.Split(opts, ",") {
		if o == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

// ============================================================
// Built-in converters
// ============================================================

// isType matches t and *t.
func isType(t reflect.Type) func(reflect.Value) bool {
	return func(rv reflect.Value) bool {
		rt := rv.Type()
		return rt == t || (rt.Kind() == reflect.Pointer && rt.Elem() == t)
	}
}

// implements matches values whose type, or pointer to type, implements t.
func implements(t reflect.Type) func(reflect.Value) bool {
	return func(rv reflect.Value) bool {
		if rv.Type().Implements(t) {
			return true
		}
		return rv.Kind() != reflect.Pointer && reflect.PointerTo(rv.Type()).Implements(t)
	}
}

// addressOf returns a pointer to rv's value, copying it if rv is not
// addressable.
func addressOf(rv reflect.Value) reflect.Value {
	if rv.Kind() == reflect.Pointer {
		return rv
	}
	if rv.CanAddr() {
		return rv.Addr()
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p
}

// methodReceiver returns rv or its address, whichever implements t.
func methodReceiver(rv reflect.Value, t reflect.Type) any {
	if rv.Type().Implements(t) {
		return rv.Interface()
	}
	return addressOf(rv).Interface()
}

func convertTime(rv reflect.Value) any {
	return addressOf(rv).Interface().(*time.Time).UTC().Format(ISOMillis)
}

func isBig(rv reflect.Value) bool {
	t := rv.Type()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t == bigIntType || t == bigFloatType || t == bigRatType
}

func convertBig(rv reflect.Value) any {
	switch x := addressOf(rv).Interface().(type) {
	case *big.Int:
		return BigInt(x)
	case *big.Float:
		if x.IsInf() {
			return Null()
		}
		return Num(Number(x.Text('g', -1)))
	case *big.Rat:
		return Num(ratNumber(x))
	}
	return Null()
}

// ratNumber renders r exactly when its decimal expansion terminates, and
// as the nearest float64 otherwise.
func ratNumber(r *big.Rat) Number {
	if r.IsInt() {
		return Number(r.Num().String())
	}
	d := new(big.Int).Set(r.Denom())
	digits := 0
	two, five, zero := big.NewInt(2), big.NewInt(5), new(big.Int)
	m := new(big.Int)
	for _, f := range []*big.Int{two, five} {
		k := 0
		for m.Mod(d, f).Cmp(zero) == 0 {
			d.Quo(d, f)
			k++
		}
		if k > digits {
			digits = k
		}
	}
	if d.IsInt64() && d.Int64() == 1 {
		if n, err := ParseNumber(r.FloatString(digits)); err == nil {
			return n
		}
	}
	f, _ := r.Float64()
	n, _ := FloatNumber(f)
	return n
}

func convertJSONMarshaler(rv reflect.Value) any {
	m := methodReceiver(rv, jsonMarshalerType).(json.Marshaler)
	b, err := m.MarshalJSON()
	if err != nil {
		return nil
	}
	v, err := FromJSON(b)
	if err != nil {
		return nil
	}
	return v
}

func convertTextMarshaler(rv reflect.Value) any {
	m := methodReceiver(rv, textMarshalerType).(encoding.TextMarshaler)
	b, err := m.MarshalText()
	if err != nil {
		return nil
	}
	return string(b)
}
