package domain

import "context"

// MetadataRepository is the metadata-store collaborator. Records are keyed
// by id; image_group is the logical partition used for scoped lookups.
type MetadataRepository interface {
	Upsert(ctx context.Context, m *ImageMetadata) error
	GetByID(ctx context.Context, id, group string) (*ImageMetadata, error)
	GetByIDs(ctx context.Context, ids []string, group string) ([]*ImageMetadata, error)
	// Remove deletes the record and reports whether it existed.
	Remove(ctx context.Context, id, group string) (bool, error)
}
