package domain

import (
	"context"
	"io"
	"time"
)

// BlobStat is what the binary store reports back after an upload. The
// store, not the caller, is authoritative for hash and creation time.
type BlobStat struct {
	MD5Hash   string
	CreatedAt time.Time
	URL       string
}

// BlobStorage is the binary-store collaborator. SizeClass distinguishes
// the original and thumbnail storage locations.
type BlobStorage interface {
	Upload(ctx context.Context, name string, r io.Reader, size int64, class SizeClass, contentType string) (*BlobStat, error)
	// Download returns the object stream, or ErrImageNotFound-compatible
	// sentinel from the implementation when the object is gone.
	Download(ctx context.Context, name string, class SizeClass) (io.ReadCloser, error)
	// TryDelete is best-effort: an object that is already gone counts as
	// deleted.
	TryDelete(ctx context.Context, name string, class SizeClass) bool
	Exists(ctx context.Context, name string, class SizeClass) (bool, error)
	ObjectURL(name string, class SizeClass) string
}

// EventPublisher is the one "emit domain event" call the orchestrators
// see; they never know which subscribers are wired behind it.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}
