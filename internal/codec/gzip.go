package codec

import (
	"compress/gzip"
	"io"
)

// Gzip compresses with compress/gzip. Snapshots written with it can be read
// with standard tools such as zcat.
type Gzip struct{}

var _ Codec = Gzip{}

func (Gzip) Name() string { return "gzip" }

func (Gzip) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func (Gzip) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

func (Gzip) Extension() string { return "gz" }
