package usecase

import (
	"context"
	"fmt"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/domain"
)

// DeleteService removes the metadata record and hands the binary names off
// to the cleanup side through an event. Metadata removal is the commit
// point: once the record is gone the image no longer exists, binaries
// linger only until the cleanup consumer catches up.
type DeleteService struct {
	repo   domain.MetadataRepository
	events domain.EventPublisher
}

func NewDeleteService(repo domain.MetadataRepository, events domain.EventPublisher) *DeleteService {
	return &DeleteService{repo: repo, events: events}
}

// Delete removes the image record. ErrImageNotFound is returned both when
// the record never existed and when a concurrent delete won.
func (s *DeleteService) Delete(ctx context.Context, imageID, imageGroup string) error {
	meta, err := s.repo.GetByID(ctx, imageID, imageGroup)
	if err != nil {
		return fmt.Errorf("load metadata for delete %s: %w", imageID, err)
	}

	removed, err := s.repo.Remove(ctx, imageID, imageGroup)
	if err != nil {
		return fmt.Errorf("remove metadata %s: %w", imageID, err)
	}
	if !removed {
		return fmt.Errorf("%w: %s", domain.ErrImageNotFound, imageID)
	}

	if err := s.events.Publish(ctx, domain.ImageMetadataDeleted{ImageShortInfo: meta.ShortInfo()}); err != nil {
		// The record is gone and that is what the caller asked for; the
		// binaries stay behind as orphans until swept by other means.
		zlog.Logger.Error().
			Err(err).
			Str("image_id", imageID).
			Msg("failed to publish deleted event, binaries will linger")
	}

	zlog.Logger.Info().
		Str("image_id", imageID).
		Str("image_group", imageGroup).
		Msg("image metadata deleted")
	return nil
}

// CleanupService consumes deleted events and sweeps the binaries. Every
// delete is best-effort: an object that is already gone counts as deleted,
// a failed delete is logged and left for the next orphan sweep.
type CleanupService struct {
	storage domain.BlobStorage
}

func NewCleanupService(storage domain.BlobStorage) *CleanupService {
	return &CleanupService{storage: storage}
}

// Cleanup deletes the original and every thumbnail named in the event. It
// never returns an error: re-delivering the event would only repeat the
// same best-effort pass.
func (s *CleanupService) Cleanup(ctx context.Context, info domain.ImageShortInfo) {
	if !s.storage.TryDelete(ctx, info.ImageName, domain.SizeClassOriginal) {
		zlog.Logger.Error().
			Str("image_id", info.ImageID).
			Str("binary_name", info.ImageName).
			Msg("failed to delete original binary")
	}

	deleted := 0
	for _, name := range info.ThumbnailNames {
		if s.storage.TryDelete(ctx, name, domain.SizeClassThumbnail) {
			deleted++
		} else {
			zlog.Logger.Error().
				Str("image_id", info.ImageID).
				Str("thumbnail_name", name).
				Msg("failed to delete thumbnail binary")
		}
	}

	zlog.Logger.Info().
		Str("image_id", info.ImageID).
		Msg(fmt.Sprintf("%d of %d thumbnails deleted", deleted, len(info.ThumbnailNames)))
}
