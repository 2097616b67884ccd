package toon

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint returns the hex BLAKE3-256 digest of v's canonical encoding
// under DefaultConfig. Equal trees always share a fingerprint, and mapping
// order counts.
func Fingerprint(v *Value) (string, error) {
	sum, err := FingerprintSum(v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}

// FingerprintSum is Fingerprint without the hex encoding.
func FingerprintSum(v *Value) ([32]byte, error) {
	text, err := Encode(v, DefaultConfig())
	if err != nil {
		return [32]byte{}, err
	}
	return blake3.Sum256([]byte(text)), nil
}

// SameDocument reports whether two documents decode to equal trees under
// cfg, regardless of indentation or quoting style.
func SameDocument(a, b string, cfg Config) (bool, error) {
	va, err := Decode(a, cfg)
	if err != nil {
		return false, err
	}
	vb, err := Decode(b, cfg)
	if err != nil {
		return false, err
	}
	return Equal(va, vb), nil
}
