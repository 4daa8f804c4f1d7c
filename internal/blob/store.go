// Package blob stores file bytes under opaque, caller generated keys
package blob

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob key")
)

// Store is implemented by every storage backend. Implementations must be
// safe for concurrent use. Put only returns nil once the bytes are durable.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ValidKey reports whether key is a clean relative path without any parent
// directory references
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}

	if path.Clean(key) != key {
		return false
	}

	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return false
		}
	}

	return true
}
