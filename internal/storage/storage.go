package storage

import (
	"context"
	"time"
)

// DefaultPresignedURLExpiry bounds how long issued upload/download
// URLs stay valid.
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the object storage operations the services need.
// Files move between the client and the store directly; the server
// only issues the URLs.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL allowing a PUT
	// of one object. The client must send the same Content-Type header.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL allowing a
	// GET of one object.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from storage.
	DeleteObject(ctx context.Context, objectKey string) error
}
