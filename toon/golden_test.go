package toon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestGolden checks JSON fixtures against their expected TOON rendering
// and decodes the rendering back.
func TestGolden(t *testing.T) {
	casesDir := filepath.Join("testdata", "cases")
	goldenDir := filepath.Join("testdata", "golden")

	entries, err := os.ReadDir(goldenDir)
	if err != nil {
		t.Fatalf("failed to read golden dir: %v", err)
	}

	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".want") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".want")
		t.Run(name, func(t *testing.T) {
			jsonBytes, err := os.ReadFile(filepath.Join(casesDir, name+".json"))
			if err != nil {
				t.Fatalf("failed to read JSON: %v", err)
			}
			wantBytes, err := os.ReadFile(filepath.Join(goldenDir, name+".want"))
			if err != nil {
				t.Fatalf("failed to read expected TOON: %v", err)
			}
			expected := strings.TrimRight(string(wantBytes), "\n")

			v, err := FromJSON(jsonBytes)
			if err != nil {
				t.Fatalf("FromJSON failed: %v", err)
			}

			got, err := Encode(v, DefaultConfig())
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if got != expected {
				t.Errorf("output mismatch\n  got:\n%s\n  expected:\n%s", got, expected)
			}

			parsed, err := Decode(got, DefaultConfig())
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !Equal(parsed, v) {
				t.Errorf("round trip mismatch\n  got:  %v\n  want: %v", parsed, v)
			}
		})
	}
}
