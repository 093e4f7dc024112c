// Package codec provides compression and decompression for snapshot data.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrUnknown is returned by ByName for an unregistered codec name.
var ErrUnknown = errors.New("codec: unknown compression")

// Codec provides compression and decompression functionality.
type Codec interface {
	// Name returns the name used to select the codec: "none", "gzip" or "zstd".
	Name() string

	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)

	// Writer wraps w to compress data written to it.
	Writer(w io.Writer) (io.WriteCloser, error)

	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
}

// Encode compresses data with c.
func Encode(c Codec, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := c.Writer(&buf)
	if err != nil {
		return nil, fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("compressing: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flushing compressor: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode decompresses everything read from r with c.
func Decode(c Codec, r io.Reader) ([]byte, error) {
	dr, err := c.Reader(r)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer dr.Close()

	data, err := io.ReadAll(dr)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return data, nil
}

var registry = map[string]func() Codec{
	"none": func() Codec { return None{} },
	"gzip": func() Codec { return Gzip{} },
	"zstd": func() Codec { return Zstd{} },
}

// ByName returns the codec registered under name. The empty name selects
// "none".
func ByName(name string) (Codec, error) {
	if name == "" {
		name = "none"
	}
	newCodec, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return newCodec(), nil
}

// Names lists the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
