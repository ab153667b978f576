package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/domain"
	"github.com/yokitheyo/imagestore/internal/idgen"
	"github.com/yokitheyo/imagestore/internal/imagemeta"
	"github.com/yokitheyo/imagestore/internal/validation"
)

// UploadService runs the upload pipeline: validate, persist the original
// binary, persist metadata, emit the uploaded event. A rejected upload
// writes nothing; the two persisted writes are deliberately independent
// (no rollback), an orphan binary after a failed metadata write is an
// accepted, logged condition.
type UploadService struct {
	repo      domain.MetadataRepository
	storage   domain.BlobStorage
	validator *validation.Validator
	events    domain.EventPublisher
}

func NewUploadService(
	repo domain.MetadataRepository,
	storage domain.BlobStorage,
	validator *validation.Validator,
	events domain.EventPublisher,
) *UploadService {
	return &UploadService{
		repo:      repo,
		storage:   storage,
		validator: validator,
		events:    events,
	}
}

// UploadResult is the caller-facing summary of a successful upload.
type UploadResult struct {
	Metadata *domain.ImageMetadata
	URL      string
}

// Upload consumes the source stream fully. When the upload is rejected,
// the returned validation result is non-OK, the result is nil and the
// error is nil: validation failures are data, not errors.
func (s *UploadService) Upload(ctx context.Context, imageGroup string, r io.Reader, tags domain.Tags) (*UploadResult, validation.Result, error) {
	var vres validation.Result

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, vres, fmt.Errorf("read source stream: %w", err)
	}

	format, err := imagemeta.DetectFormat(bytes.NewReader(data))
	if err != nil {
		// Recognized but unsupported: reject through the same keyed path
		// as an unknown format, so the caller sees one taxonomy.
		zlog.Logger.Warn().Err(err).Str("image_group", imageGroup).Msg("unsupported source format")
	}

	vres.Merge(s.validator.CheckFormat(format))
	if !vres.OK() {
		return nil, vres, nil
	}

	size, err := imagemeta.ReadSize(bytes.NewReader(data))
	if err != nil {
		return nil, vres, fmt.Errorf("read image size: %w", err)
	}
	if size == nil {
		return nil, vres, fmt.Errorf("%w: format detected but size unreadable", domain.ErrInvalidImageData)
	}

	vres.Merge(s.validator.CheckSize(*size))
	if !vres.OK() {
		return nil, vres, nil
	}

	id := idgen.New()
	name := idgen.NameFor(id, format.Extension)

	stat, err := s.storage.Upload(ctx, name, bytes.NewReader(data), size.Bytes, domain.SizeClassOriginal, format.MimeType)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("image_id", id).Msg("failed to upload original binary")
		return nil, vres, fmt.Errorf("upload original: %w", err)
	}

	meta := &domain.ImageMetadata{
		ID:            id,
		ImageGroup:    imageGroup,
		Name:          name,
		MimeType:      format.MimeType,
		ImageType:     format.Type,
		FileExtension: format.Extension,
		SizeBytes:     size.Bytes,
		Width:         size.Width,
		Height:        size.Height,
		MD5Hash:       stat.MD5Hash,
		DateAddedUTC:  stat.CreatedAt,
		Tags:          tags,
	}

	if err := s.repo.Upsert(ctx, meta); err != nil {
		// The binary is already stored; nothing references it. Accepted
		// orphan, visible to operators through this log line.
		zlog.Logger.Error().
			Err(err).
			Str("image_id", id).
			Str("binary_name", name).
			Msg("metadata write failed after binary upload, orphan binary remains")
		return nil, vres, fmt.Errorf("persist metadata: %w", err)
	}

	if err := s.events.Publish(ctx, domain.OriginalImageUploaded{ImageID: id, ImageGroup: imageGroup}); err != nil {
		// The image is committed and searchable; it just never gets
		// thumbnails until the event is re-sent.
		zlog.Logger.Error().
			Err(err).
			Str("image_id", id).
			Msg("failed to publish uploaded event, image will have no thumbnails")
	}

	zlog.Logger.Info().
		Str("image_id", id).
		Str("image_group", imageGroup).
		Int("width", size.Width).
		Int("height", size.Height).
		Int64("size_bytes", size.Bytes).
		Msg("image uploaded")

	return &UploadResult{Metadata: meta, URL: stat.URL}, vres, nil
}
