package storage

import (
	"context"
	"io"
	"time"
)

// Object is a blob under a listed prefix.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Listing is the direct children of a prefix: objects and sub-prefixes, in backend order.
type Listing struct {
	Objects  []Object
	Prefixes []string
}

// BlobStore is the path-addressed blob backend behind the browser.
type BlobStore interface {
	List(ctx context.Context, prefix string) (Listing, error)
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
