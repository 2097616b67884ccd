package toon

import (
	"strings"
	"testing"
)

// roundTripCorpus holds values with no empty-string/empty-mapping
// ambiguity, so decode(encode(v)) must give v back.
func roundTripCorpus() map[string]*Value {
	row := func(id int64, name string, score *Value) *Value {
		return Map(Field("id", Int(id)), Field("name", Str(name)), Field("score", score))
	}
	return map[string]*Value{
		"scalar null":    Null(),
		"scalar string":  Str("hello"),
		"scalar quoted":  Str("a: b, c"),
		"scalar number":  Num("-12.5e-3"),
		"empty string":   Str(""),
		"empty sequence": Seq(),
		"inline":         Seq(Int(1), Str("two"), Bool(false), Null(), Str(""), Str("3")),
		"strings needing quotes": Map(
			Field("padded", Str("  x  ")),
			Field("keyword", Str("null")),
			Field("number", Str("1e5")),
			Field("hyphen", Str("- item")),
			Field("escapes", Str("tab\there \"q\" back\\slash\nnew")),
			Field("control", Str("bell\x07")),
			Field("unicode", Str("naïve 漢字 🚀")),
			Field("brackets", Str("[1]{a}")),
			Field("pipe", Str("a|b")),
			Field("tabbed", Str("a\tb")),
		),
		"awkward keys": Map(
			Field("", Int(1)),
			Field("with space", Int(2)),
			Field("123", Int(3)),
			Field("a[0]", Int(4)),
			Field("-lead", Int(5)),
			Field("q\"uote", Int(6)),
			Field("pipe|key", Int(7)),
		),
		"tabular": Map(Field("rows", Seq(
			row(1, "Ada", Num("9.5")),
			row(2, "Bob, Jr.", Null()),
			row(3, "", Bool(true)),
		))),
		"tabular awkward fields": Seq(
			Map(Field("first name", Int(1)), Field("a,b", Int(2)), Field("c|d", Int(3))),
			Map(Field("first name", Int(4)), Field("a,b", Int(5)), Field("c|d", Int(6))),
		),
		"list": Map(Field("items", Seq(
			Int(1),
			Map(Field("a", Int(1)), Field("b", Map(Field("c", Str("d"))))),
			Seq(Int(1), Int(2)),
			Seq(),
			Seq(Map(Field("x", Int(1))), Map(Field("x", Int(2)))),
			Seq(Seq(Str("deep"))),
			Str("tail"),
		))),
		"list item first fields": Seq(
			Map(Field("tags", Seq(Str("a"), Str("b"))), Field("n", Int(1))),
			Map(Field("rows", Seq(Map(Field("k", Int(1))), Map(Field("k", Int(2))))), Field("n", Int(2))),
			Map(Field("mixed", Seq(Int(1), Seq(Int(2)))), Field("n", Int(3))),
			Map(Field("child", Map(Field("k", Str("v")), Field("z", Seq()))), Field("n", Int(4))),
			Map(Field("empty", Seq()), Field("n", Int(5))),
		),
		"deep mapping": Map(Field("a", Map(Field("b", Map(Field("c", Map(Field("d", Seq(Int(1)))))))))),
		"big numbers": Seq(
			Num("123456789012345678901234567890"),
			Num("0.000000000000000000001"),
			Num("1e600"),
			Num("-7e-700"),
		),
	}
}

func roundTripConfigs() map[string]Config {
	marker := DefaultConfig()
	marker.LengthMarker = '#'
	wide := DefaultConfig()
	wide.Indent = "    "
	tabs := TabConfig()
	tabs.Indent = "\t"
	return map[string]Config{
		"default": DefaultConfig(),
		"tab":     tabs,
		"pipe":    PipeConfig(),
		"marker":  marker,
		"wide":    wide,
	}
}

func TestRoundTrip(t *testing.T) {
	for cname, cfg := range roundTripConfigs() {
		for vname, v := range roundTripCorpus() {
			t.Run(cname+"/"+vname, func(t *testing.T) {
				text, err := Encode(v, cfg)
				if err != nil {
					t.Fatalf("Encode error: %v", err)
				}
				for i, ln := range strings.Split(text, "\n") {
					if strings.TrimRight(ln, " \t") != ln {
						t.Errorf("line %d has trailing whitespace: %q", i+1, ln)
					}
				}

				got, err := Decode(text, cfg)
				if err != nil {
					t.Fatalf("Decode error: %v\n%s", err, text)
				}
				if !Equal(got, v) {
					t.Fatalf("round trip mismatch\ntext:\n%s\ngot:\n%v", text, got)
				}

				again, err := Encode(got, cfg)
				if err != nil {
					t.Fatalf("re-Encode error: %v", err)
				}
				if again != text {
					t.Errorf("encode is not idempotent\nfirst:\n%s\nsecond:\n%s", text, again)
				}
			})
		}
	}
}

// An empty mapping renders as a bare "key:" and comes back as an empty
// mapping; empty strings are always quoted, so both survive.
func TestRoundTrip_EmptyMappingAndString(t *testing.T) {
	v := Map(
		Field("m", Map()),
		Field("s", Str("")),
		Field("l", Seq(Map(), Map(Field("m", Map()), Field("s", Str(""))))),
	)
	text, err := Encode(v, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	want := "m:\ns: \"\"\nl[2]:\n  -\n  - m:\n    s: \"\""
	if text != want {
		t.Fatalf("Encode() = %q, want %q", text, want)
	}
	got, err := Decode(text, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(got, v) {
		t.Errorf("round trip mismatch: %v", got)
	}
}

// Documents in canonical form encode back to themselves.
func TestFormatIdempotence(t *testing.T) {
	docs := []string{
		"id: 123\nname: Ada\nactive: true",
		"[3]: 1,2,3",
		"items[2]{sku,qty}:\n  A1,2\n  B2,1",
		"items[2]:\n  - id: 1\n  - id: 2\n    name: Ada",
		"a:\n  b:\n    c[0]:\n  d: \"\"",
		"[2]:\n  - [2]: 1,2\n  -",
		"x: 1.5\ny: -3\nz: 1e600",
	}
	for _, doc := range docs {
		v, err := Decode(doc, DefaultConfig())
		if err != nil {
			t.Errorf("Decode(%q) error: %v", doc, err)
			continue
		}
		got, err := Encode(v, DefaultConfig())
		if err != nil {
			t.Errorf("Encode error: %v", err)
			continue
		}
		if got != doc {
			t.Errorf("not idempotent:\n%s\nbecame:\n%s", doc, got)
		}
	}
}

// Every string survives as a literal: quoted when the predicate says so,
// bare otherwise.
func TestStringLiteralRoundTrip(t *testing.T) {
	inputs := []string{
		"", " ", "a", "true", "false", "null", "TRUE", "0", "-0", "01", "1.0", "1e-3",
		"-", "--", "- x", "a-b", "a:b", "a,b", "a|b", "[", "]", "{", "}", "\"", "\\",
		"\n", "\r\n", "\t", "\x00", "\x7f", "é", "🚀", "ends with space ", "a\"b\\c",
	}
	for _, delim := range []rune{',', '|', '\t'} {
		for _, s := range inputs {
			lit := encodeString(s, delim)
			quoted := strings.HasPrefix(lit, `"`)
			if quoted == isSafeUnquoted(s, delim) {
				t.Errorf("%q with %q: quoted=%v disagrees with predicate", s, delim, quoted)
			}
			v, err := parseLiteral(lit)
			if err != nil {
				t.Errorf("parseLiteral(%s) error: %v", lit, err)
				continue
			}
			if got, _ := v.AsString(); v.Kind() != KindString || got != s {
				t.Errorf("%q with %q: literal %s decoded to %v", s, delim, lit, v)
			}
		}
	}
}
