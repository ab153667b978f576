package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/domain"
	"github.com/yokitheyo/imagestore/internal/idgen"
	"github.com/yokitheyo/imagestore/internal/imagemeta"
	"github.com/yokitheyo/imagestore/internal/imageproc"
)

// ThumbnailService reacts to uploaded events: it derives one thumbnail per
// configured width smaller than the original, chaining each resize off the
// previous output so the source is decoded at most once per step at a
// shrinking size. Re-delivered events are harmless, widths already on the
// record are skipped.
type ThumbnailService struct {
	repo    domain.MetadataRepository
	storage domain.BlobStorage
	widths  []int
}

func NewThumbnailService(repo domain.MetadataRepository, storage domain.BlobStorage, widths []int) *ThumbnailService {
	// Descending order drives the chain; callers may hand the list in any
	// order.
	sorted := make([]int, len(widths))
	copy(sorted, widths)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	return &ThumbnailService{
		repo:    repo,
		storage: storage,
		widths:  sorted,
	}
}

// Generate produces the missing thumbnails for one image. A missing record
// and an original already smaller than every target are terminal no-ops:
// the event is consumed, nothing is retried.
func (s *ThumbnailService) Generate(ctx context.Context, imageID, imageGroup string) error {
	meta, err := s.repo.GetByID(ctx, imageID, imageGroup)
	if err != nil {
		if errors.Is(err, domain.ErrImageNotFound) {
			zlog.Logger.Warn().
				Str("image_id", imageID).
				Msg("image gone before thumbnail generation, skipping")
			return nil
		}
		return fmt.Errorf("load metadata for %s: %w", imageID, err)
	}

	targets := s.pendingWidths(meta)
	if len(targets) == 0 {
		zlog.Logger.Info().
			Str("image_id", imageID).
			Int("width", meta.Width).
			Msg("no thumbnail widths to generate")
		return nil
	}

	outFormat := s.outputFormat(meta)
	encFormat, err := imageproc.EncodeFormat(outFormat.Type)
	if err != nil {
		return fmt.Errorf("pick encoder for %s: %w", imageID, err)
	}

	original, err := s.storage.Download(ctx, meta.Name, domain.SizeClassOriginal)
	if err != nil {
		return fmt.Errorf("download original %s: %w", meta.Name, err)
	}
	defer original.Close()

	current, err := io.ReadAll(original)
	if err != nil {
		return fmt.Errorf("read original %s: %w", meta.Name, err)
	}

	var produced []domain.ImageThumbnail
	for _, width := range targets {
		resized, size, err := imageproc.Resize(bytes.NewReader(current), encFormat, width)
		if err != nil {
			// One bad step does not stop the others; the chain keeps
			// feeding off the last good output.
			zlog.Logger.Error().
				Err(err).
				Str("image_id", imageID).
				Int("target_width", width).
				Msg("thumbnail resize failed")
			continue
		}
		current = resized

		name := fmt.Sprintf("%s_%d%s", meta.ID, width, outFormat.Extension)
		stat, err := s.storage.Upload(ctx, name, bytes.NewReader(resized), size.Bytes, domain.SizeClassThumbnail, outFormat.MimeType)
		if err != nil {
			zlog.Logger.Error().
				Err(err).
				Str("image_id", imageID).
				Str("thumbnail_name", name).
				Msg("thumbnail upload failed")
			continue
		}

		produced = append(produced, domain.ImageThumbnail{
			ID:           idgen.New(),
			Name:         name,
			SizeBytes:    size.Bytes,
			MD5Hash:      stat.MD5Hash,
			Width:        size.Width,
			Height:       size.Height,
			DateAddedUTC: stat.CreatedAt,
			MimeType:     outFormat.MimeType,
		})
	}

	if len(produced) == 0 {
		zlog.Logger.Warn().
			Str("image_id", imageID).
			Msg("no thumbnails produced")
		return nil
	}

	merged := append(domain.ThumbnailList{}, meta.Thumbnails...)
	merged = append(merged, produced...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Width < merged[j].Width })
	meta.Thumbnails = merged

	if err := s.repo.Upsert(ctx, meta); err != nil {
		return fmt.Errorf("persist thumbnails for %s: %w", imageID, err)
	}

	zlog.Logger.Info().
		Str("image_id", imageID).
		Int("generated", len(produced)).
		Int("total", len(merged)).
		Msg("thumbnails generated")
	return nil
}

// pendingWidths filters the configured widths down to the ones that are
// both strictly smaller than the original and not yet on the record, in
// descending order.
func (s *ThumbnailService) pendingWidths(meta *domain.ImageMetadata) []int {
	var out []int
	for _, w := range s.widths {
		if w >= meta.Width {
			continue
		}
		if meta.HasThumbnailWidth(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// outputFormat picks the thumbnail encoding. BMP originals are re-encoded
// as PNG, every other supported format keeps its own codec.
func (s *ThumbnailService) outputFormat(meta *domain.ImageMetadata) domain.ImageFormat {
	if meta.ImageType == "bmp" {
		f, _ := imagemeta.FormatByType("png")
		return f
	}
	if f, ok := imagemeta.FormatByType(meta.ImageType); ok {
		return f
	}
	return domain.ImageFormat{
		Type:      meta.ImageType,
		MimeType:  meta.MimeType,
		Extension: meta.FileExtension,
	}
}
