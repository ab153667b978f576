package usecase

import (
	"context"
	"io"

	"github.com/yokitheyo/imagestore/internal/domain"
)

type mockRepo struct {
	UpsertFunc   func(ctx context.Context, m *domain.ImageMetadata) error
	GetByIDFunc  func(ctx context.Context, id, group string) (*domain.ImageMetadata, error)
	GetByIDsFunc func(ctx context.Context, ids []string, group string) ([]*domain.ImageMetadata, error)
	RemoveFunc   func(ctx context.Context, id, group string) (bool, error)
}

func (m *mockRepo) Upsert(ctx context.Context, meta *domain.ImageMetadata) error {
	return m.UpsertFunc(ctx, meta)
}

func (m *mockRepo) GetByID(ctx context.Context, id, group string) (*domain.ImageMetadata, error) {
	return m.GetByIDFunc(ctx, id, group)
}

func (m *mockRepo) GetByIDs(ctx context.Context, ids []string, group string) ([]*domain.ImageMetadata, error) {
	return m.GetByIDsFunc(ctx, ids, group)
}

func (m *mockRepo) Remove(ctx context.Context, id, group string) (bool, error) {
	return m.RemoveFunc(ctx, id, group)
}

type mockStorage struct {
	UploadFunc    func(ctx context.Context, name string, r io.Reader, size int64, class domain.SizeClass, contentType string) (*domain.BlobStat, error)
	DownloadFunc  func(ctx context.Context, name string, class domain.SizeClass) (io.ReadCloser, error)
	TryDeleteFunc func(ctx context.Context, name string, class domain.SizeClass) bool
	ExistsFunc    func(ctx context.Context, name string, class domain.SizeClass) (bool, error)
	ObjectURLFunc func(name string, class domain.SizeClass) string
}

func (m *mockStorage) Upload(ctx context.Context, name string, r io.Reader, size int64, class domain.SizeClass, contentType string) (*domain.BlobStat, error) {
	return m.UploadFunc(ctx, name, r, size, class, contentType)
}

func (m *mockStorage) Download(ctx context.Context, name string, class domain.SizeClass) (io.ReadCloser, error) {
	return m.DownloadFunc(ctx, name, class)
}

func (m *mockStorage) TryDelete(ctx context.Context, name string, class domain.SizeClass) bool {
	return m.TryDeleteFunc(ctx, name, class)
}

func (m *mockStorage) Exists(ctx context.Context, name string, class domain.SizeClass) (bool, error) {
	return m.ExistsFunc(ctx, name, class)
}

func (m *mockStorage) ObjectURL(name string, class domain.SizeClass) string {
	if m.ObjectURLFunc == nil {
		return "http://store/" + string(class) + "/" + name
	}
	return m.ObjectURLFunc(name, class)
}

type mockPublisher struct {
	PublishFunc func(ctx context.Context, e domain.Event) error
	Events      []domain.Event
}

func (m *mockPublisher) Publish(ctx context.Context, e domain.Event) error {
	m.Events = append(m.Events, e)
	if m.PublishFunc == nil {
		return nil
	}
	return m.PublishFunc(ctx, e)
}
