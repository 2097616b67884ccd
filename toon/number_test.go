package toon

import (
	"math"
	"math/big"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want Number
	}{
		{"0", "0"},
		{"-0", "0"},
		{"-0.000", "0"},
		{"000123", "123"},
		{"1.50", "1.5"},
		{"1e3", "1000"},
		{"1E+2", "100"},
		{"1.5e-3", "0.0015"},
		{"12e-2", "0.12"},
		{"-12.340e1", "-123.4"},
		{"123456789012345678901234567890", "123456789012345678901234567890"},
		{"0.1000000000000000055511151231257827", "0.1000000000000000055511151231257827"},
		{"1e600", "1e600"},
		{"1e-600", "1e-600"},
		{"25e-601", "25e-601"},
	}

	for _, tt := range tests {
		got, err := ParseNumber(tt.in)
		if err != nil {
			t.Errorf("ParseNumber(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNumber(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseNumber_Errors(t *testing.T) {
	for _, in := range []string{"", "-", "+1", "1.", ".5", "1e", "1e+", "abc", "1.2.3", "1e1234567890", "0x10"} {
		if _, err := ParseNumber(in); err == nil {
			t.Errorf("ParseNumber(%q) should fail", in)
		}
	}
}

func TestFloatNumber(t *testing.T) {
	tests := []struct {
		f    float64
		want Number
		ok   bool
	}{
		{0.1, "0.1", true},
		{3.0, "3", true},
		{-2.5, "-2.5", true},
		{math.Copysign(0, -1), "0", true},
		{1e21, "1000000000000000000000", true},
		{1.5e-7, "0.00000015", true},
		{math.NaN(), "", false},
		{math.Inf(1), "", false},
		{math.Inf(-1), "", false},
	}

	for _, tt := range tests {
		got, ok := FloatNumber(tt.f)
		if ok != tt.ok || got != tt.want {
			t.Errorf("FloatNumber(%v) = %q, %v; want %q, %v", tt.f, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNumberAccessors(t *testing.T) {
	if !Number("12").IsInteger() || Number("1.2").IsInteger() {
		t.Error("IsInteger wrong for plain forms")
	}
	if !Number("1e600").IsInteger() || Number("1e-600").IsInteger() {
		t.Error("IsInteger wrong for exponent forms")
	}

	if i, err := Number("-42").Int64(); err != nil || i != -42 {
		t.Errorf("Int64 = %d, %v", i, err)
	}
	if _, err := Number("1.5").Int64(); err == nil {
		t.Error("Int64 of a fraction should fail")
	}
	if _, err := Number("99999999999999999999").Int64(); err == nil {
		t.Error("Int64 out of range should fail")
	}

	if f, err := Number("0.25").Float64(); err != nil || f != 0.25 {
		t.Errorf("Float64 = %v, %v", f, err)
	}

	bi, ok := Number("1e30").BigInt()
	want := new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)
	if !ok || bi.Cmp(want) != 0 {
		t.Errorf("BigInt = %v, %v", bi, ok)
	}
	if _, ok := Number("0.5").BigInt(); ok {
		t.Error("BigInt of a fraction should fail")
	}

	r, ok := Number("0.125").Rat()
	if !ok || r.Cmp(big.NewRat(1, 8)) != 0 {
		t.Errorf("Rat = %v, %v", r, ok)
	}
}

func TestNumConstructor(t *testing.T) {
	if v := Num("1.500"); v.Kind() != KindNumber || v.numVal != "1.5" {
		t.Errorf("Num canonicalizes: got %v", v)
	}
	if v := Num("abc"); !v.IsNull() {
		t.Errorf("Num of invalid text = %v, want null", v)
	}
	if v := Uint(math.MaxUint64); v.numVal != "18446744073709551615" {
		t.Errorf("Uint(MaxUint64) = %s", v.numVal)
	}
	if v := BigInt(nil); !v.IsNull() {
		t.Error("BigInt(nil) should be null")
	}
}
