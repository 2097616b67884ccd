package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidpirogov/toon-llm/internal/config"
	"github.com/davidpirogov/toon-llm/toon"
)

// invoke runs the command line with the given stdin and returns the exit
// status and both output streams.
func invoke(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

const usersJSON = `{"users":[{"id":1,"name":"Ada"},{"id":2,"name":"Bob"}]}`

const usersTOON = "users[2]{id,name}:\n  1,Ada\n  2,Bob\n"

func TestEncode(t *testing.T) {
	code, out, errOut := invoke(t, usersJSON, "encode")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, usersTOON, out)
}

func TestEncode_Flags(t *testing.T) {
	code, out, errOut := invoke(t, `{"a":[1,2],"b":{"c":[3]}}`, "encode", "-d", "pipe", "-l", "#", "-i", "4")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "a[#2|]: 1|2\nb:\n    c[#1|]: 3\n", out)
}

func TestEncode_Formats(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		args []string
	}{
		{"jsonc by extension", "in.jsonc", "{\n  // users\n  \"users\": [{\"id\": 1, \"name\": \"Ada\"}, {\"id\": 2, \"name\": \"Bob\"},],\n}", nil},
		{"yaml by extension", "in.yml", "users:\n  - id: 1\n    name: Ada\n  - id: 2\n    name: Bob\n", nil},
		{"yaml by flag", "in.txt", "users:\n  - {id: 1, name: Ada}\n  - {id: 2, name: Bob}\n", []string{"--from", "yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, []byte(tt.data))
			args := append([]string{"encode", path}, tt.args...)
			code, out, errOut := invoke(t, "", args...)
			require.Equal(t, 0, code, errOut)
			assert.Equal(t, usersTOON, out)
		})
	}
}

func TestEncode_CBORInput(t *testing.T) {
	v, err := toon.FromJSON([]byte(`{"b":[1,2],"a":"x"}`))
	require.NoError(t, err)
	b, err := toon.ToCBOR(v)
	require.NoError(t, err)

	code, out, errOut := invoke(t, string(b), "encode", "--from", "cbor")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "a: x\nb[2]: 1,2\n", out)
}

func TestEncode_ZstdRoundTrip(t *testing.T) {
	compressed := zstdEncoder.EncodeAll([]byte(usersJSON), nil)
	path := writeFile(t, "users.json.zst", compressed)
	outPath := filepath.Join(t.TempDir(), "users.toon.zst")

	code, out, errOut := invoke(t, "", "encode", path, "-o", outPath, "--zstd")
	require.Equal(t, 0, code, errOut)
	assert.Empty(t, out)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(written, zstdMagic))
	plain, err := zstdDecoder.DecodeAll(written, nil)
	require.NoError(t, err)
	assert.Equal(t, usersTOON, string(plain))
}

func TestDecode(t *testing.T) {
	code, out, errOut := invoke(t, usersTOON, "decode", "--compact")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, usersJSON+"\n", out)

	code, out, errOut = invoke(t, "a[1]: x", "decode")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "{\n  \"a\": [\n    \"x\"\n  ]\n}\n", out)
}

func TestDecode_KeepsHTMLCharacters(t *testing.T) {
	code, out, errOut := invoke(t, "q: x < y && z > 0", "decode", "--compact")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, `{"q":"x < y && z > 0"}`+"\n", out)
}

func TestDecode_Targets(t *testing.T) {
	code, out, errOut := invoke(t, usersTOON, "decode", "--to", "yaml")
	require.Equal(t, 0, code, errOut)
	v, err := toon.FromYAML([]byte(out))
	require.NoError(t, err)
	want, err := toon.FromJSON([]byte(usersJSON))
	require.NoError(t, err)
	assert.True(t, toon.Equal(v, want), out)

	code, out, errOut = invoke(t, usersTOON, "decode", "--to", "cbor")
	require.Equal(t, 0, code, errOut)
	v, err = toon.FromCBOR([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, `{"users":[{"id":1,"name":"Ada"},{"id":2,"name":"Bob"}]}`, mustJSON(t, v))
}

func TestDecode_Error(t *testing.T) {
	code, out, errOut := invoke(t, "a[3]: 1,2", "decode")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "toon: line 1")
	assert.Contains(t, errOut, "array length mismatch")
}

func TestDecode_DelimiterMustMatch(t *testing.T) {
	code, _, errOut := invoke(t, "a[2|]: 1|2", "decode")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "malformed array header")

	code, out, errOut := invoke(t, "a[2|]: 1|2", "decode", "-d", "|", "--compact")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, `{"a":[1,2]}`+"\n", out)
}

func TestCheck(t *testing.T) {
	code, _, errOut := invoke(t, usersTOON, "check")
	assert.Equal(t, 0, code, errOut)

	code, _, errOut = invoke(t, "users[2]{id,name}:\n  1,Ada\n  2,\"Bob\"\n", "check")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "stdin: not in canonical form (first difference at line 3)")

	code, _, errOut = invoke(t, "a: \"[\"", "check")
	assert.Equal(t, 0, code, errOut)

	code, _, _ = invoke(t, "a[1]: 1,2", "check")
	assert.Equal(t, 1, code)
}

func TestHash(t *testing.T) {
	code, first, errOut := invoke(t, "a:\n    b: 1\n", "hash")
	require.Equal(t, 0, code, errOut)
	code, second, errOut := invoke(t, "a:\n  b: 1", "hash")
	require.Equal(t, 0, code, errOut)

	assert.Equal(t, first, second)
	assert.Len(t, strings.TrimSpace(first), 64)
}

func TestStats(t *testing.T) {
	code, out, errOut := invoke(t, usersJSON, "stats")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "json:")
	assert.Contains(t, out, "toon:")
	assert.Contains(t, out, "saved:")
}

func TestConfigFile(t *testing.T) {
	path := writeFile(t, "toon.yaml", []byte("delimiter: tab\nlength_marker: \"#\"\n"))

	code, out, errOut := invoke(t, `{"a":[1,2]}`, "encode", "--config", path)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "a[#2\t]: 1\t2\n", out)

	// flags override the file
	code, out, errOut = invoke(t, `{"a":[1,2]}`, "encode", "--config", path, "-d", "comma")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "a[#2]: 1,2\n", out)
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"unknown flag", []string{"encode", "--nope"}},
		{"extra argument", []string{"encode", "a.json", "b.json"}},
		{"bad delimiter", []string{"encode", "-d", ":"}},
		{"bad format", []string{"encode", "--from", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := invoke(t, "{}", tt.args...)
			assert.Equal(t, 2, code)
		})
	}
}

func TestVersionAndHelp(t *testing.T) {
	code, out, _ := invoke(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "toon "+version+"\n", out)

	code, out, _ = invoke(t, "", "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "toon encode")

	code, _, errOut := invoke(t, "", "encode", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "--delimiter")
}

func TestVerboseLogging(t *testing.T) {
	code, _, errOut := invoke(t, usersJSON, "encode", "--verbose")
	require.Equal(t, 0, code)
	assert.Contains(t, errOut, "msg=encoded")
	assert.Contains(t, errOut, "format=json")

	code, _, errOut = invoke(t, usersJSON, "encode")
	require.Equal(t, 0, code)
	assert.Empty(t, errOut)
}

func TestSourceFormat(t *testing.T) {
	assert.Equal(t, config.FormatJSON, sourceFormat("auto", ""))
	assert.Equal(t, config.FormatYAML, sourceFormat("auto", "x.YAML"))
	assert.Equal(t, config.FormatJSONC, sourceFormat("auto", "x.jsonc.zst"))
	assert.Equal(t, config.FormatCBOR, sourceFormat("auto", "x.cbor"))
	assert.Equal(t, config.FormatYAML, sourceFormat("yaml", "x.json"))
}

func TestFirstDifference(t *testing.T) {
	assert.Equal(t, 2, firstDifference("a\nb", "a\nc"))
	assert.Equal(t, 3, firstDifference("a\nb\nc", "a\nb"))
	assert.Equal(t, 1, firstDifference("x", "y"))
}

func mustJSON(t *testing.T, v *toon.Value) string {
	t.Helper()
	b, err := toon.ToJSON(v)
	require.NoError(t, err)
	return string(b)
}
