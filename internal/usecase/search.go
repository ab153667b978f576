package usecase

import (
	"context"
	"fmt"

	"github.com/yokitheyo/imagestore/internal/domain"
)

// RewriteFunc maps a raw binary-store URL to its public form, typically a
// CDN host swap. Identity when nil.
type RewriteFunc func(string) string

// SearchService answers batch lookups by id within one image group.
// Unknown ids are silently absent from the result, the lookup itself
// never fails because of them.
type SearchService struct {
	repo    domain.MetadataRepository
	storage domain.BlobStorage
	rewrite RewriteFunc
}

func NewSearchService(repo domain.MetadataRepository, storage domain.BlobStorage, rewrite RewriteFunc) *SearchService {
	return &SearchService{repo: repo, storage: storage, rewrite: rewrite}
}

// ImageView is a metadata record paired with resolved public URLs.
type ImageView struct {
	Metadata      *domain.ImageMetadata
	URL           string
	ThumbnailURLs map[string]string
}

// Search loads the requested ids. The result preserves store order and
// contains only the records that exist.
func (s *SearchService) Search(ctx context.Context, ids []string, imageGroup string) ([]ImageView, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	metas, err := s.repo.GetByIDs(ctx, ids, imageGroup)
	if err != nil {
		return nil, fmt.Errorf("search images: %w", err)
	}

	views := make([]ImageView, 0, len(metas))
	for _, m := range metas {
		views = append(views, s.view(m))
	}
	return views, nil
}

// Get loads one record, resolving URLs the same way Search does.
func (s *SearchService) Get(ctx context.Context, id, imageGroup string) (*ImageView, error) {
	meta, err := s.repo.GetByID(ctx, id, imageGroup)
	if err != nil {
		return nil, err
	}
	v := s.view(meta)
	return &v, nil
}

func (s *SearchService) view(m *domain.ImageMetadata) ImageView {
	thumbs := make(map[string]string, len(m.Thumbnails))
	for _, t := range m.Thumbnails {
		thumbs[t.Name] = s.resolve(t.Name, domain.SizeClassThumbnail)
	}
	return ImageView{
		Metadata:      m,
		URL:           s.resolve(m.Name, domain.SizeClassOriginal),
		ThumbnailURLs: thumbs,
	}
}

func (s *SearchService) resolve(name string, class domain.SizeClass) string {
	raw := s.storage.ObjectURL(name, class)
	if s.rewrite == nil {
		return raw
	}
	return s.rewrite(raw)
}
