package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yokitheyo/imagestore/internal/domain"
)

func TestDeleteService_Delete(t *testing.T) {
	meta := &domain.ImageMetadata{
		ID:   "img1",
		Name: "img1.png",
		Thumbnails: domain.ThumbnailList{
			{Name: "img1_200.png", Width: 200},
			{Name: "img1_500.png", Width: 500},
		},
	}

	removed := false
	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id, group string) (*domain.ImageMetadata, error) {
			return meta, nil
		},
		RemoveFunc: func(ctx context.Context, id, group string) (bool, error) {
			removed = true
			require.Equal(t, "img1", id)
			require.Equal(t, "catalog", group)
			return true, nil
		},
	}
	pub := &mockPublisher{}

	svc := NewDeleteService(repo, pub)
	require.NoError(t, svc.Delete(context.Background(), "img1", "catalog"))
	require.True(t, removed)

	require.Len(t, pub.Events, 1)
	e, ok := pub.Events[0].(domain.ImageMetadataDeleted)
	require.True(t, ok)
	require.Equal(t, "img1", e.ImageID)
	require.Equal(t, "img1.png", e.ImageName)
	require.Equal(t, []string{"img1_200.png", "img1_500.png"}, e.ThumbnailNames)
}

func TestDeleteService_NotFoundWhenConcurrentDeleteWins(t *testing.T) {
	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id, group string) (*domain.ImageMetadata, error) {
			return &domain.ImageMetadata{ID: id}, nil
		},
		RemoveFunc: func(ctx context.Context, id, group string) (bool, error) {
			return false, nil
		},
	}
	pub := &mockPublisher{}

	svc := NewDeleteService(repo, pub)
	err := svc.Delete(context.Background(), "img1", "")
	require.ErrorIs(t, err, domain.ErrImageNotFound)
	require.Empty(t, pub.Events)
}

func TestDeleteService_LoadFailurePropagates(t *testing.T) {
	boom := errors.New("store unavailable")
	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id, group string) (*domain.ImageMetadata, error) {
			return nil, boom
		},
	}

	svc := NewDeleteService(repo, &mockPublisher{})
	require.ErrorIs(t, svc.Delete(context.Background(), "img1", ""), boom)
}

func TestDeleteService_PublishFailureDoesNotUndoDelete(t *testing.T) {
	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id, group string) (*domain.ImageMetadata, error) {
			return &domain.ImageMetadata{ID: id, Name: id + ".png"}, nil
		},
		RemoveFunc: func(ctx context.Context, id, group string) (bool, error) {
			return true, nil
		},
	}
	pub := &mockPublisher{
		PublishFunc: func(ctx context.Context, e domain.Event) error {
			return errors.New("broker down")
		},
	}

	svc := NewDeleteService(repo, pub)
	require.NoError(t, svc.Delete(context.Background(), "img1", ""))
}

func TestCleanupService_DeletesOriginalAndThumbnails(t *testing.T) {
	var deleted []string
	storage := &mockStorage{
		TryDeleteFunc: func(ctx context.Context, name string, class domain.SizeClass) bool {
			deleted = append(deleted, string(class)+"/"+name)
			return true
		},
	}

	svc := NewCleanupService(storage)
	svc.Cleanup(context.Background(), domain.ImageShortInfo{
		ImageID:        "img1",
		ImageName:      "img1.png",
		ThumbnailNames: []string{"img1_200.png", "img1_500.png"},
	})

	require.Equal(t, []string{
		"original/img1.png",
		"thumbnail/img1_200.png",
		"thumbnail/img1_500.png",
	}, deleted)
}

func TestCleanupService_PartialFailureStillSweepsRest(t *testing.T) {
	var attempts []string
	storage := &mockStorage{
		TryDeleteFunc: func(ctx context.Context, name string, class domain.SizeClass) bool {
			attempts = append(attempts, name)
			return name != "img1_200.png"
		},
	}

	svc := NewCleanupService(storage)
	svc.Cleanup(context.Background(), domain.ImageShortInfo{
		ImageID:        "img1",
		ImageName:      "img1.png",
		ThumbnailNames: []string{"img1_200.png", "img1_500.png"},
	})

	require.Equal(t, []string{"img1.png", "img1_200.png", "img1_500.png"}, attempts)
}
