// Package config loads the configuration file of the toon command.
//
// The file is located by the --config flag or the TOON_CONFIG environment
// variable, in that order. There is no automatic discovery: without either,
// the built-in defaults apply. Command-line flags override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/davidpirogov/toon-llm/toon"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "TOON_CONFIG"

// Input and output formats understood by the command.
const (
	FormatAuto  = "auto"
	FormatJSON  = "json"
	FormatJSONC = "jsonc"
	FormatYAML  = "yaml"
	FormatCBOR  = "cbor"
)

// File is the on-disk configuration.
type File struct {
	// Delimiter is "comma", "tab", "pipe" or a single character.
	Delimiter string `yaml:"delimiter"`

	// LengthMarker is a single character placed before array lengths, or
	// empty for none.
	LengthMarker string `yaml:"length_marker"`

	// Indent is the number of spaces per level when encoding.
	Indent int `yaml:"indent"`

	// MaxDepth bounds container nesting.
	MaxDepth int `yaml:"max_depth"`

	// InputFormat is the default source format of "toon encode".
	// "auto" picks by file extension and falls back to JSON.
	InputFormat string `yaml:"input_format"`

	// OutputFormat is the default target format of "toon decode".
	OutputFormat string `yaml:"output_format"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{
		Delimiter:    "comma",
		Indent:       2,
		MaxDepth:     toon.DefaultMaxDepth,
		InputFormat:  FormatAuto,
		OutputFormat: FormatJSON,
	}
}

// Load reads the file at path, or at $TOON_CONFIG when path is empty. With
// neither set it returns Default().
func Load(path string) (*File, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates one config file. Fields it leaves out keep
// their default values; unknown fields are an error.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML config data over the defaults and validates it.
func Parse(data []byte) (*File, error) {
	f := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks every field, including the combination of delimiter and
// length marker.
func (f *File) Validate() error {
	if !oneOf(f.InputFormat, FormatAuto, FormatJSON, FormatJSONC, FormatYAML, FormatCBOR) {
		return fmt.Errorf("input_format %q: want auto, json, jsonc, yaml or cbor", f.InputFormat)
	}
	if !oneOf(f.OutputFormat, FormatJSON, FormatYAML, FormatCBOR) {
		return fmt.Errorf("output_format %q: want json, yaml or cbor", f.OutputFormat)
	}
	_, err := f.Config()
	return err
}

// Config converts the file into a validated toon.Config.
func (f *File) Config() (toon.Config, error) {
	delim, err := ParseDelimiter(f.Delimiter)
	if err != nil {
		return toon.Config{}, err
	}
	marker, err := ParseMarker(f.LengthMarker)
	if err != nil {
		return toon.Config{}, err
	}
	if f.Indent < 1 {
		return toon.Config{}, fmt.Errorf("indent %d: must be at least 1", f.Indent)
	}
	cfg := toon.Config{
		Delimiter:    delim,
		LengthMarker: marker,
		Indent:       strings.Repeat(" ", f.Indent),
		MaxDepth:     f.MaxDepth,
	}
	if err := cfg.Validate(); err != nil {
		return toon.Config{}, err
	}
	return cfg, nil
}

// ParseDelimiter accepts a delimiter name or a single character.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "", "comma", ",":
		return ',', nil
	case "tab", "\t", `\t`:
		return '\t', nil
	case "pipe", "|":
		return '|', nil
	}
	return singleRune("delimiter", s)
}

// ParseMarker accepts an empty string or "none" for no marker, or a
// single character.
func ParseMarker(s string) (rune, error) {
	if s == "" || s == "none" {
		return 0, nil
	}
	return singleRune("length marker", s)
}

func singleRune(field, s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("%s %q: want a single character", field, s)
	}
	return r, nil
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
