package main

import (
	"fmt"
	"strings"

	"github.com/davidpirogov/toon-llm/toon"
)

// runEncode: JSON, JSONC, YAML or CBOR -> TOON
func runEncode(e *env, o *options, cfg toon.Config, file string) error {
	data, err := e.readInput(file)
	if err != nil {
		return err
	}
	format := sourceFormat(o.from, file)
	v, err := parseSource(data, format)
	if err != nil {
		return err
	}
	text, err := toon.Encode(v, cfg)
	if err != nil {
		return err
	}
	e.logger.Info("encoded", "command", "encode", "input", inputName(file), "format", format, "bytes", len(text))
	return e.writeOutput(o.output, terminate(text), o.zstd)
}

// runDecode: TOON -> JSON, YAML or CBOR
func runDecode(e *env, o *options, cfg toon.Config, file string) error {
	v, err := e.readDocument(file, cfg)
	if err != nil {
		return err
	}
	out, err := renderTarget(v, o.to, o.compact)
	if err != nil {
		return err
	}
	e.logger.Info("decoded", "command", "decode", "input", inputName(file), "format", o.to, "bytes", len(out))
	return e.writeOutput(o.output, out, o.zstd)
}

// runCheck fails when re-encoding a document changes it. A single trailing
// newline is allowed.
func runCheck(e *env, o *options, cfg toon.Config, file string) error {
	data, err := e.readInput(file)
	if err != nil {
		return err
	}
	text := strings.TrimSuffix(string(data), "\n")
	v, err := toon.Decode(text, cfg)
	if err != nil {
		return err
	}
	canonical, err := toon.Encode(v, cfg)
	if err != nil {
		return err
	}
	if canonical != text {
		line := firstDifference(text, canonical)
		fmt.Fprintf(e.stderr, "%s: not in canonical form (first difference at line %d)\n", inputName(file), line)
		return exitError{code: 1}
	}
	e.logger.Info("canonical", "command", "check", "input", inputName(file))
	return nil
}

// runHash prints the fingerprint of a TOON document.
func runHash(e *env, o *options, cfg toon.Config, file string) error {
	v, err := e.readDocument(file, cfg)
	if err != nil {
		return err
	}
	fp, err := toon.Fingerprint(v)
	if err != nil {
		return err
	}
	return e.writeOutput(o.output, []byte(fp+"\n"), o.zstd)
}

// runStats compares the JSON and TOON renderings of an input.
func runStats(e *env, o *options, cfg toon.Config, file string) error {
	data, err := e.readInput(file)
	if err != nil {
		return err
	}
	v, err := parseSource(data, sourceFormat(o.from, file))
	if err != nil {
		return err
	}
	s, err := toon.Compare(v, cfg)
	if err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "json:  %8d bytes %8d tokens\n", s.JSONBytes, s.JSONTokens)
	fmt.Fprintf(&b, "toon:  %8d bytes %8d tokens\n", s.TOONBytes, s.TOONTokens)
	fmt.Fprintf(&b, "saved: %.1f%%\n", s.SavedPercent)
	return e.writeOutput(o.output, []byte(b.String()), o.zstd)
}

func (e *env) readDocument(file string, cfg toon.Config) (*toon.Value, error) {
	data, err := e.readInput(file)
	if err != nil {
		return nil, err
	}
	return toon.Decode(string(data), cfg)
}

func terminate(text string) []byte {
	if text == "" {
		return nil
	}
	return []byte(text + "\n")
}

// firstDifference returns the 1-based number of the first line where a
// and b differ.
func firstDifference(a, b string) int {
	al, bl := strings.Split(a, "\n"), strings.Split(b, "\n")
	for i := 0; i < len(al) && i < len(bl); i++ {
		if al[i] != bl[i] {
			return i + 1
		}
	}
	return min(len(al), len(bl)) + 1
}
