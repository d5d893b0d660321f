// Package blob stores uploaded assets and resolves them to public URLs.
package blob

import (
	"context"
	"time"
)

// Object describes a stored asset: a publicly resolvable URL plus the
// storage path token callers persist on the profile.
type Object struct {
	URL         string `json:"url"`
	StoragePath string `json:"storagePath"`
	Provider    string `json:"provider"`
}

// Store accepts a byte buffer and returns the stored object. PresignGet
// produces a time-limited URL for buckets that are not public.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (Object, error)
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
