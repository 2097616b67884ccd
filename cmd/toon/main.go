// toon - TOON codec CLI tool
//
// Usage:
//
//	toon encode [options] [file]   Convert JSON, JSONC, YAML or CBOR to TOON
//	toon decode [options] [file]   Convert TOON to JSON, YAML or CBOR
//	toon check [options] [file]    Verify a TOON document is in canonical form
//	toon hash [options] [file]     Print the BLAKE3 fingerprint of a TOON document
//	toon stats [options] [file]    Compare JSON and TOON sizes for an input
//	toon version                   Print version info
//
// If no file is given, or the file is "-", reads from stdin. zstd-compressed
// input is detected and decompressed.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/davidpirogov/toon-llm/toon"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// env is what a command reads from and writes to.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

type command struct {
	name    string
	summary string
	flags   func(fs *pflag.FlagSet, o *options)
	run     func(e *env, o *options, cfg toon.Config, file string) error
}

var commands = []command{
	{"encode", "Convert JSON, JSONC, YAML or CBOR to TOON", encodeFlags, runEncode},
	{"decode", "Convert TOON to JSON, YAML or CBOR", decodeFlags, runDecode},
	{"check", "Verify a TOON document is in canonical form", nil, runCheck},
	{"hash", "Print the BLAKE3 fingerprint of a TOON document", nil, runHash},
	{"stats", "Compare JSON and TOON sizes for an input", statsFlags, runStats},
}

// run executes one command line and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}
	switch args[0] {
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "toon %s\n", version)
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	}

	for _, c := range commands {
		if c.name == args[0] {
			return exitStatus(stderr, runCommand(c, args[1:], stdin, stdout, stderr))
		}
	}
	fmt.Fprintf(stderr, "toon: unknown command %q\n", args[0])
	printUsage(stderr)
	return 2
}

func runCommand(c command, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var o options
	fs := pflag.NewFlagSet("toon "+c.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: toon %s [options] [file]\n\n%s\n\nOptions:\n%s", c.name, c.summary, fs.FlagUsages())
	}
	commonFlags(fs, &o)
	if c.flags != nil {
		c.flags(fs, &o)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return usageError{err}
	}
	if fs.NArg() > 1 {
		return usagef("unexpected argument: %s", fs.Arg(1))
	}

	file, err := o.load(fs)
	if err != nil {
		return err
	}
	cfg, err := file.Config()
	if err != nil {
		return err
	}

	e := &env{stdin: stdin, stdout: stdout, stderr: stderr, logger: newLogger(stderr, o)}
	e.logger.Debug("config resolved",
		"command", c.name,
		"delimiter", string(cfg.Delimiter),
		"indent", len(cfg.Indent),
		"max_depth", cfg.MaxDepth)
	return c.run(e, &o, cfg, fs.Arg(0))
}

func newLogger(w io.Writer, o options) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case o.debug:
		level = slog.LevelDebug
	case o.verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// usageError marks a problem with the command line itself.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// exitError carries a status without further output.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func exitStatus(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	msg := err.Error()
	if len(msg) < 5 || msg[:5] != "toon:" {
		msg = "toon: " + msg
	}
	fmt.Fprintln(stderr, msg)
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "toon - TOON codec CLI tool (v%s)\n\nUsage:\n", version)
	for _, c := range commands {
		fmt.Fprintf(w, "  toon %-7s [options] [file]  %s\n", c.name, c.summary)
	}
	fmt.Fprint(w, `  toon version                   Print version info

Common options:
  -d, --delimiter string       comma, tab, pipe or a single character (default comma)
  -l, --length-marker string   character placed before array lengths (default none)
  -i, --indent int             spaces per indentation level (default 2)
      --max-depth int          deepest container nesting accepted (default 256)
      --config string          YAML config file (default $TOON_CONFIG)
  -o, --output string          write to file instead of stdout
      --zstd                   zstd-compress the output
  -v, --verbose                log progress to stderr
      --debug                  log debugging detail to stderr

If no file is given, reads from stdin.

Examples:
  echo '{"users":[{"id":1,"name":"Ada"},{"id":2,"name":"Bob"}]}' | toon encode
  # Output:
  # users[2]{id,name}:
  #   1,Ada
  #   2,Bob

  toon encode --delimiter tab data.yaml > data.toon
  toon decode --to yaml data.toon
`)
}
