package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// Zstd compresses with github.com/klauspost/compress/zstd.
type Zstd struct{}

var _ Codec = Zstd{}

func (Zstd) Name() string { return "zstd" }

func (Zstd) Reader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

func (Zstd) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
}

func (Zstd) Extension() string { return "zst" }
