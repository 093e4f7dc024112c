package codec

import "io"

// None stores data uncompressed.
type None struct{}

var _ Codec = None{}

func (None) Name() string { return "none" }

// Reader returns r as a ReadCloser.
func (None) Reader(r io.Reader) (io.ReadCloser, error) {
	if rc, ok := r.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(r), nil
}

// Writer returns w with a no-op Close. The underlying writer is never
// closed by the codec.
func (None) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (None) Extension() string { return "" }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
