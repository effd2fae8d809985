package object

import (
	"context"
	"io"
)

// Stored describes an object after it has been written.
type Stored struct {
	Key         string `json:"key"`
	SizeBytes   int64  `json:"sizeBytes"`
	ContentType string `json:"contentType"`
}

// Store saves and retrieves binary objects such as product images.
type Store interface {
	Save(ctx context.Context, owner, fileName string, r io.Reader) (Stored, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
