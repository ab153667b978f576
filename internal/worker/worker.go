// Package worker contains the bus-facing message handlers. Each handler
// decodes one event type and delegates to its use case; malformed
// payloads are logged and committed, they would never succeed on retry.
package worker

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/domain"
	"github.com/yokitheyo/imagestore/internal/usecase"
)

// ThumbnailWorker consumes uploaded events and generates thumbnails.
type ThumbnailWorker struct {
	thumbnails *usecase.ThumbnailService
}

func NewThumbnailWorker(thumbnails *usecase.ThumbnailService) *ThumbnailWorker {
	return &ThumbnailWorker{thumbnails: thumbnails}
}

func (w *ThumbnailWorker) Handle(ctx context.Context, payload []byte) error {
	var e domain.OriginalImageUploaded
	if err := json.Unmarshal(payload, &e); err != nil {
		zlog.Logger.Error().Err(err).Bytes("payload", payload).Msg("malformed uploaded event")
		return nil
	}
	if e.ImageID == "" {
		zlog.Logger.Error().Bytes("payload", payload).Msg("uploaded event without image id")
		return nil
	}

	return w.thumbnails.Generate(ctx, e.ImageID, e.ImageGroup)
}

// CleanupWorker consumes deleted events and sweeps the binaries.
type CleanupWorker struct {
	cleanup *usecase.CleanupService
}

func NewCleanupWorker(cleanup *usecase.CleanupService) *CleanupWorker {
	return &CleanupWorker{cleanup: cleanup}
}

func (w *CleanupWorker) Handle(ctx context.Context, payload []byte) error {
	var e domain.ImageMetadataDeleted
	if err := json.Unmarshal(payload, &e); err != nil {
		zlog.Logger.Error().Err(err).Bytes("payload", payload).Msg("malformed deleted event")
		return nil
	}
	if e.ImageID == "" {
		zlog.Logger.Error().Bytes("payload", payload).Msg("deleted event without image id")
		return nil
	}

	w.cleanup.Cleanup(ctx, e.ImageShortInfo)
	return nil
}
