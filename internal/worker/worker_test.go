package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yokitheyo/imagestore/internal/domain"
	"github.com/yokitheyo/imagestore/internal/usecase"
)

type recordingRepo struct {
	domain.MetadataRepository
	gotID    string
	gotGroup string
}

func (r *recordingRepo) GetByID(ctx context.Context, id, group string) (*domain.ImageMetadata, error) {
	r.gotID = id
	r.gotGroup = group
	return nil, domain.ErrImageNotFound
}

func TestThumbnailWorker_DecodesEvent(t *testing.T) {
	repo := &recordingRepo{}
	w := NewThumbnailWorker(usecase.NewThumbnailService(repo, nil, []int{200}))

	payload, err := json.Marshal(domain.OriginalImageUploaded{ImageID: "img1", ImageGroup: "catalog"})
	require.NoError(t, err)

	require.NoError(t, w.Handle(context.Background(), payload))
	require.Equal(t, "img1", repo.gotID)
	require.Equal(t, "catalog", repo.gotGroup)
}

func TestThumbnailWorker_MalformedPayloadIsCommitted(t *testing.T) {
	w := NewThumbnailWorker(nil)

	require.NoError(t, w.Handle(context.Background(), []byte("not json")))
	require.NoError(t, w.Handle(context.Background(), []byte(`{"image_group":"g"}`)))
}

type countingStorage struct {
	domain.BlobStorage
	deleted []string
}

func (s *countingStorage) TryDelete(ctx context.Context, name string, class domain.SizeClass) bool {
	s.deleted = append(s.deleted, name)
	return true
}

func TestCleanupWorker_DecodesEvent(t *testing.T) {
	storage := &countingStorage{}
	w := NewCleanupWorker(usecase.NewCleanupService(storage))

	payload, err := json.Marshal(domain.ImageMetadataDeleted{ImageShortInfo: domain.ImageShortInfo{
		ImageID:        "img1",
		ImageName:      "img1.png",
		ThumbnailNames: []string{"img1_200.png"},
	}})
	require.NoError(t, err)

	require.NoError(t, w.Handle(context.Background(), payload))
	require.Equal(t, []string{"img1.png", "img1_200.png"}, storage.deleted)
}

func TestCleanupWorker_MalformedPayloadIsCommitted(t *testing.T) {
	w := NewCleanupWorker(nil)

	require.NoError(t, w.Handle(context.Background(), []byte("garbage")))
	require.NoError(t, w.Handle(context.Background(), []byte(`{}`)))
}
