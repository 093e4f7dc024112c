// Package storeurl opens a snapshot store from a location string.
//
// Supported locations:
//
//	/path/to/dir            local directory (must exist)
//	gs://bucket/prefix      Google Cloud Storage
//	s3://bucket/prefix      AWS S3
package storeurl

import (
	"context"
	"strings"

	"github.com/discochess/sieve/internal/codec"
	"github.com/discochess/sieve/internal/store"
	"github.com/discochess/sieve/internal/store/diskstore"
	"github.com/discochess/sieve/internal/store/gcsstore"
	"github.com/discochess/sieve/internal/store/s3store"
)

// Scheme returns "gs", "s3" or "file" for location.
func Scheme(location string) string {
	switch {
	case strings.HasPrefix(location, "gs://"):
		return "gs"
	case strings.HasPrefix(location, "s3://"):
		return "s3"
	}
	return "file"
}

// Open returns a store for location that compresses with the named codec.
func Open(ctx context.Context, location, compression string) (store.Store, error) {
	c, err := codec.ByName(compression)
	if err != nil {
		return nil, err
	}

	switch Scheme(location) {
	case "gs":
		bucket, prefix, err := gcsstore.ParsePath(location)
		if err != nil {
			return nil, err
		}
		return gcsstore.New(ctx, bucket, c, gcsstore.WithPrefix(prefix))
	case "s3":
		bucket, prefix, err := s3store.ParsePath(location)
		if err != nil {
			return nil, err
		}
		return s3store.New(ctx, bucket, c, s3store.WithPrefix(prefix))
	}

	if location == "" {
		location = "."
	}
	return diskstore.New(location, c)
}
