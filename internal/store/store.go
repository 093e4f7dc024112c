// Package store defines storage backends for game snapshots.
//
// A snapshot is a named blob, such as the raw PGN batch fetched from the
// archive. Backends compress on Write and decompress on Read with their
// codec, appending the codec's extension to the object name.
package store

import (
	"context"
	"errors"

	"github.com/discochess/sieve/internal/codec"
)

// ErrNotFound is returned when a snapshot does not exist in the store.
var ErrNotFound = errors.New("store: snapshot not found")

// Store defines the interface for storage backends.
// Implementations handle path formats and storage details internally.
type Store interface {
	// Read returns the decompressed content of the named snapshot.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write replaces the named snapshot with data.
	Write(ctx context.Context, name string, data []byte) error

	// Exists reports whether the named snapshot is present.
	Exists(ctx context.Context, name string) (bool, error)

	// List returns the names of all snapshots, without codec extensions.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// ObjectName returns the stored object name for a snapshot written with c.
func ObjectName(name string, c codec.Codec) string {
	if ext := c.Extension(); ext != "" {
		return name + "." + ext
	}
	return name
}

// SnapshotName strips the extension of c from an object name. The second
// result is false if the object was not written with c.
func SnapshotName(object string, c codec.Codec) (string, bool) {
	ext := c.Extension()
	if ext == "" {
		return object, true
	}
	suffix := "." + ext
	if len(object) <= len(suffix) || object[len(object)-len(suffix):] != suffix {
		return "", false
	}
	return object[:len(object)-len(suffix)], true
}
