package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/tidwall/jsonc"

	"github.com/davidpirogov/toon-llm/internal/config"
	"github.com/davidpirogov/toon-llm/toon"
)

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// zstdEncoder and zstdDecoder are safe for concurrent use and reused
// across calls.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("toon: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("toon: zstd decoder initialization failed: " + err.Error())
	}
}

// readInput returns the contents of path, or of stdin when path is empty
// or "-", decompressing zstd frames.
func (e *env) readInput(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(e.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if bytes.HasPrefix(data, zstdMagic) {
		plain, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		e.logger.Info("decompressed input", "input", inputName(path), "compressed", len(data), "bytes", len(plain))
		data = plain
	}
	return data, nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func (e *env) writeOutput(path string, data []byte, compress bool) error {
	if compress {
		data = zstdEncoder.EncodeAll(data, nil)
	}
	if path == "" || path == "-" {
		if _, err := e.stdout.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	e.logger.Info("wrote output", "output", path, "bytes", len(data))
	return nil
}

// sourceFormat resolves "auto" by file extension, ignoring a trailing .zst.
func sourceFormat(format, path string) string {
	if format != config.FormatAuto && format != "" {
		return format
	}
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".zst")))
	switch ext {
	case ".jsonc":
		return config.FormatJSONC
	case ".yaml", ".yml":
		return config.FormatYAML
	case ".cbor":
		return config.FormatCBOR
	}
	return config.FormatJSON
}

// parseSource converts input bytes in the given format into a tree.
func parseSource(data []byte, format string) (*toon.Value, error) {
	switch format {
	case config.FormatJSONC:
		return toon.FromJSON(jsonc.ToJSON(data))
	case config.FormatYAML:
		return toon.FromYAML(data)
	case config.FormatCBOR:
		return toon.FromCBOR(data)
	}
	return toon.FromJSON(data)
}

// renderTarget converts a tree into the requested output format.
func renderTarget(v *toon.Value, format string, compact bool) ([]byte, error) {
	switch format {
	case config.FormatYAML:
		return toon.ToYAML(v)
	case config.FormatCBOR:
		return toon.ToCBOR(v)
	}
	if compact {
		b, err := toon.ToJSON(v)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	b, err := toon.ToJSONIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func inputName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
