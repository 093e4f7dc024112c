// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/discochess/sieve/internal/codec"
	"github.com/discochess/sieve/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// ErrInvalidPath indicates a location that is not of the form gs://bucket/prefix.
var ErrInvalidPath = errors.New("gcsstore: invalid GCS path")

// Store is a Google Cloud Storage backend.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	codec  codec.Codec
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// New creates a new GCS store.
// The bucket must already exist.
// The codec handles compression/decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: client.Bucket(bucketName),
		codec:  c,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// ParsePath splits "gs://bucket/prefix" into bucket and prefix.
func ParsePath(gcsPath string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(gcsPath, "gs://") {
		return "", "", fmt.Errorf("%w: must start with gs://", ErrInvalidPath)
	}

	path := strings.TrimPrefix(gcsPath, "gs://")
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("%w: missing bucket name", ErrInvalidPath)
	}

	bucket = parts[0]
	if len(parts) > 1 {
		prefix = strings.Trim(parts[1], "/")
	}
	return bucket, prefix, nil
}

// Read reads and decompresses the named snapshot.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	reader, err := s.bucket.Object(s.key(name)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	return codec.Decode(s.codec, reader)
}

// Write compresses data and uploads it, replacing any existing object.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	encoded, err := codec.Encode(s.codec, data)
	if err != nil {
		return err
	}

	writer := s.bucket.Object(s.key(name)).NewWriter(ctx)
	if _, err := writer.Write(encoded); err != nil {
		writer.Close()
		return fmt.Errorf("uploading snapshot: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing upload: %w", err)
	}
	return nil
}

// Exists reports whether the snapshot object is present.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.bucket.Object(s.key(name)).Attrs(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrObjectNotExist):
		return false, nil
	}
	return false, fmt.Errorf("reading object attributes: %w", err)
}

// List returns the snapshots under the store prefix.
func (s *Store) List(ctx context.Context) ([]string, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: s.prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		if name, ok := s.name(attrs.Name); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return s.client.Close()
}

// key returns the full object key for a snapshot.
func (s *Store) key(name string) string {
	return s.prefix + store.ObjectName(name, s.codec)
}

// name maps an object key back to a snapshot name. Objects in nested
// "directories" below the prefix are skipped.
func (s *Store) name(key string) (string, bool) {
	rel := strings.TrimPrefix(key, s.prefix)
	if rel == "" || strings.Contains(rel, "/") {
		return "", false
	}
	return store.SnapshotName(rel, s.codec)
}
