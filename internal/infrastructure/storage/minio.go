// Package storage adapts MinIO (or any S3-compatible store) to the
// BlobStorage port. Object keys are prefixed by size class so originals
// and thumbnails live in separate directories of one bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/config"
	"github.com/yokitheyo/imagestore/internal/domain"
)

type MinioStorage struct {
	client        *minio.Client
	bucket        string
	endpoint      string
	useSSL        bool
	originalDir   string
	thumbnailDir  string
	publicBaseURL string
}

func NewMinioStorage(ctx context.Context, cfg config.StorageConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &MinioStorage{
		client:        client,
		bucket:        cfg.Bucket,
		endpoint:      cfg.Endpoint,
		useSSL:        cfg.UseSSL,
		originalDir:   orDefault(cfg.OriginalDir, "original"),
		thumbnailDir:  orDefault(cfg.ThumbnailDir, "thumbnail"),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}

	if err := s.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	return s, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (s *MinioStorage) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	zlog.Logger.Info().Str("bucket", s.bucket).Msg("bucket created")
	return nil
}

func (s *MinioStorage) objectKey(name string, class domain.SizeClass) string {
	if class == domain.SizeClassThumbnail {
		return s.thumbnailDir + "/" + name
	}
	return s.originalDir + "/" + name
}

// Upload stores the object and reports back what the store recorded for
// it. The ETag of a non-multipart put is the MD5 of the content; the
// object's LastModified is the authoritative creation time.
func (s *MinioStorage) Upload(ctx context.Context, name string, r io.Reader, size int64, class domain.SizeClass, contentType string) (*domain.BlobStat, error) {
	key := s.objectKey(name, class)

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: put %s: %v", domain.ErrStorageFailed, key, err)
	}

	createdAt := info.LastModified
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return &domain.BlobStat{
		MD5Hash:   strings.Trim(info.ETag, `"`),
		CreatedAt: createdAt.UTC(),
		URL:       s.ObjectURL(name, class),
	}, nil
}

func (s *MinioStorage) Download(ctx context.Context, name string, class domain.SizeClass) (io.ReadCloser, error) {
	key := s.objectKey(name, class)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", domain.ErrStorageFailed, key, err)
	}

	// GetObject is lazy; Stat surfaces a missing object now instead of on
	// the first read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: object %s", domain.ErrImageNotFound, key)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrStorageFailed, key, err)
	}

	return obj, nil
}

// TryDelete removes the object best-effort. A missing object counts as
// deleted; only a live failure reports false.
func (s *MinioStorage) TryDelete(ctx context.Context, name string, class domain.SizeClass) bool {
	key := s.objectKey(name, class)

	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		zlog.Logger.Error().Err(err).Str("key", key).Msg("failed to remove object")
		return false
	}
	return true
}

func (s *MinioStorage) Exists(ctx context.Context, name string, class domain.SizeClass) (bool, error) {
	key := s.objectKey(name, class)

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat %s: %v", domain.ErrStorageFailed, key, err)
	}
	return true, nil
}

// ObjectURL builds the externally reachable URL for an object. With a
// public base URL configured the store endpoint never leaks out.
func (s *MinioStorage) ObjectURL(name string, class domain.SizeClass) string {
	key := s.objectKey(name, class)

	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}
