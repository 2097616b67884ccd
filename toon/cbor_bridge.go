package toon

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// ============================================================
// CBOR Bridge
// ============================================================

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("toon: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		BigIntDec:      cbor.BigIntDecodePointer,
	}.DecMode()
	if err != nil {
		panic("toon: CBOR decoder initialization failed: " + err.Error())
	}
}

// FromCBOR converts one CBOR data item. CBOR maps are unordered, so keys
// come out sorted; byte strings become base64 text and time tags become
// ISO-8601 strings.
func FromCBOR(data []byte) (*Value, error) {
	var raw any
	if err := cborDec.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("toon: cbor: %w", err)
	}
	return Normalize(raw)
}

// ToCBOR renders v using core deterministic encoding. Integers keep full
// precision; fractional numbers are written as float64.
func ToCBOR(v *Value) ([]byte, error) {
	b, err := cborEnc.Marshal(cborValue(v))
	if err != nil {
		return nil, fmt.Errorf("toon: cbor: %w", err)
	}
	return b, nil
}

func cborValue(v *Value) any {
	switch v.Kind() {
	case KindBool:
		return v.boolVal
	case KindNumber:
		return cborNumber(v.numVal)
	case KindString:
		return v.strVal
	case KindSequence:
		out := make([]any, len(v.seqVal))
		for i, it := range v.seqVal {
			out[i] = cborValue(it)
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.mapVal))
		for _, e := range v.mapVal {
			out[e.Key] = cborValue(e.Value)
		}
		return out
	}
	return nil
}

func cborNumber(n Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if bi, ok := n.BigInt(); ok {
		if bi.IsUint64() {
			return bi.Uint64()
		}
		return bi
	}
	f, _ := n.Float64()
	return f
}
