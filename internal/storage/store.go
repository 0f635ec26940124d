// Package storage persists uploaded lab files and exported plan documents.
package storage

import (
	"context"
	"io"
	"time"
)

// DownloadURLTTL matches the original product behavior: links stay valid for
// one day.
const DownloadURLTTL = 24 * time.Hour

// ObjectStore is satisfied by the MinIO-backed store in production and by the
// on-disk store in tests and single-machine deployments.
type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
