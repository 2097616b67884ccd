package toon

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Number is a decimal number kept as canonical text: no exponent unless the
// plain form would need more than maxPlainZeros padding zeros, no leading
// zeros, no trailing fractional zeros, and no negative zero. Two Numbers are
// equal exactly when their texts are equal.
type Number string

const maxPlainZeros = 512

// IntNumber returns the Number for i.
func IntNumber(i int64) Number {
	return Number(strconv.FormatInt(i, 10))
}

// UintNumber returns the Number for u.
func UintNumber(u uint64) Number {
	return Number(strconv.FormatUint(u, 10))
}

// FloatNumber returns the shortest decimal that round-trips to f. It reports
// false for NaN and infinities.
func FloatNumber(f float64) (Number, bool) {
	return floatNumber(f, 64)
}

func floatNumber(f float64, bitSize int) (Number, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if f == 0 {
		return "0", true
	}
	n, err := ParseNumber(strconv.FormatFloat(f, 'g', -1, bitSize))
	if err != nil {
		return "", false
	}
	return n, true
}

// ParseNumber parses decimal text of the form -?digits[.digits][(e|E)[+-]digits]
// and returns its canonical form. Leading zeros are accepted.
func ParseNumber(s string) (Number, error) {
	i := 0
	neg := false
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intPart := s[start:i]
	if intPart == "" {
		return "", fmt.Errorf("toon: invalid number %q", s)
	}

	var frac string
	if i < len(s) && s[i] == '.' {
		i++
		fs := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		frac = s[fs:i]
		if frac == "" {
			return "", fmt.Errorf("toon: invalid number %q", s)
		}
	}

	exp := 0
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		esign := 1
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			if s[i] == '-' {
				esign = -1
			}
			i++
		}
		es := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if es == i {
			return "", fmt.Errorf("toon: invalid number %q", s)
		}
		if i-es > 9 {
			return "", fmt.Errorf("toon: exponent out of range in %q", s)
		}
		e, _ := strconv.Atoi(s[es:i])
		exp = esign * e
	}
	if i != len(s) {
		return "", fmt.Errorf("toon: invalid number %q", s)
	}

	digits := strings.TrimLeft(intPart+frac, "0")
	if digits == "" {
		return "0", nil
	}
	scale := exp - len(frac)
	trimmed := strings.TrimRight(digits, "0")
	scale += len(digits) - len(trimmed)
	return formatDecimal(neg, trimmed, scale), nil
}

// formatDecimal renders digits * 10^scale. digits has no leading or
// trailing zeros.
func formatDecimal(neg bool, digits string, scale int) Number {
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	switch {
	case scale >= 0 && scale <= maxPlainZeros:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", scale))
	case scale < 0 && -scale < len(digits):
		p := len(digits) + scale
		b.WriteString(digits[:p])
		b.WriteByte('.')
		b.WriteString(digits[p:])
	case scale < 0 && -scale-len(digits) <= maxPlainZeros:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -scale-len(digits)))
		b.WriteString(digits)
	default:
		b.WriteString(digits)
		b.WriteByte('e')
		b.WriteString(strconv.Itoa(scale))
	}
	return Number(b.String())
}

// String returns the canonical text.
func (n Number) String() string {
	return string(n)
}

// IsInteger reports whether n has no fractional part.
func (n Number) IsInteger() bool {
	s := string(n)
	if strings.IndexByte(s, '.') >= 0 {
		return false
	}
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		return s[i+1] != '-'
	}
	return true
}

// Int64 returns n as an int64. It fails for fractions and out-of-range
// values.
func (n Number) Int64() (int64, error) {
	if !n.IsInteger() || strings.IndexByte(string(n), 'e') >= 0 {
		return 0, fmt.Errorf("toon: %s is not an int64", n)
	}
	return strconv.ParseInt(string(n), 10, 64)
}

// Float64 returns the nearest float64 to n.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Rat returns n as an exact rational.
func (n Number) Rat() (*big.Rat, bool) {
	return new(big.Rat).SetString(string(n))
}

// BigInt returns n as an exact integer. It reports false for fractions.
func (n Number) BigInt() (*big.Int, bool) {
	if !n.IsInteger() {
		return nil, false
	}
	if strings.IndexByte(string(n), 'e') < 0 {
		return new(big.Int).SetString(string(n), 10)
	}
	r, ok := n.Rat()
	if !ok {
		return nil, false
	}
	return r.Num(), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
