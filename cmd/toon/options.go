package main

import (
	"github.com/spf13/pflag"

	"github.com/davidpirogov/toon-llm/internal/config"
)

// options holds every flag; each command registers the ones it uses.
type options struct {
	configPath string
	delimiter  string
	marker     string
	indent     int
	maxDepth   int
	output     string
	zstd       bool
	verbose    bool
	debug      bool

	from    string
	to      string
	compact bool
}

func commonFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVar(&o.configPath, "config", "", "YAML config file (default $"+config.EnvVar+")")
	fs.StringVarP(&o.delimiter, "delimiter", "d", "comma", "comma, tab, pipe or a single character")
	fs.StringVarP(&o.marker, "length-marker", "l", "", "character placed before array lengths")
	fs.IntVarP(&o.indent, "indent", "i", 2, "spaces per indentation level")
	fs.IntVar(&o.maxDepth, "max-depth", 0, "deepest container nesting accepted (0 = 256)")
	fs.StringVarP(&o.output, "output", "o", "", "write to file instead of stdout")
	fs.BoolVar(&o.zstd, "zstd", false, "zstd-compress the output")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log progress to stderr")
	fs.BoolVar(&o.debug, "debug", false, "log debugging detail to stderr")
}

func encodeFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVar(&o.from, "from", "", "input format: json, jsonc, yaml or cbor (default by extension)")
}

func decodeFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVar(&o.to, "to", "", "output format: json, yaml or cbor (default json)")
	fs.BoolVar(&o.compact, "compact", false, "write JSON on a single line")
}

func statsFlags(fs *pflag.FlagSet, o *options) {
	encodeFlags(fs, o)
}

// load reads the config file and applies every flag the user set on top
// of it.
func (o *options) load(fs *pflag.FlagSet) (*config.File, error) {
	f, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if fs.Changed("delimiter") {
		f.Delimiter = o.delimiter
	}
	if fs.Changed("length-marker") {
		f.LengthMarker = o.marker
	}
	if fs.Changed("indent") {
		f.Indent = o.indent
	}
	if fs.Changed("max-depth") {
		f.MaxDepth = o.maxDepth
	}
	if fs.Changed("from") {
		f.InputFormat = o.from
	}
	if fs.Changed("to") {
		f.OutputFormat = o.to
	}
	if err := f.Validate(); err != nil {
		return nil, usageError{err}
	}
	o.from, o.to = f.InputFormat, f.OutputFormat
	return f, nil
}
