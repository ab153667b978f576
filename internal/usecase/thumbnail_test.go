package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/yokitheyo/imagestore/internal/domain"
)

type thumbUpload struct {
	name        string
	contentType string
	data        []byte
}

func thumbnailFixture(t *testing.T, format imaging.Format, width, height int, ext string) (*mockRepo, *mockStorage, *domain.ImageMetadata, *[]thumbUpload, **domain.ImageMetadata) {
	t.Helper()

	meta := &domain.ImageMetadata{
		ID:            "img1",
		Name:          "img1" + ext,
		ImageType:     formatType(format),
		MimeType:      "image/" + formatType(format),
		FileExtension: ext,
		Width:         width,
		Height:        height,
	}

	original := encodedImage(t, width, height, format)

	var uploads []thumbUpload
	var saved *domain.ImageMetadata

	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id, group string) (*domain.ImageMetadata, error) {
			require.Equal(t, meta.ID, id)
			return meta, nil
		},
		UpsertFunc: func(ctx context.Context, m *domain.ImageMetadata) error {
			saved = m
			return nil
		},
	}
	storage := &mockStorage{
		DownloadFunc: func(ctx context.Context, name string, class domain.SizeClass) (io.ReadCloser, error) {
			require.Equal(t, meta.Name, name)
			require.Equal(t, domain.SizeClassOriginal, class)
			return io.NopCloser(bytes.NewReader(original)), nil
		},
		UploadFunc: func(ctx context.Context, name string, r io.Reader, size int64, class domain.SizeClass, contentType string) (*domain.BlobStat, error) {
			require.Equal(t, domain.SizeClassThumbnail, class)
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			uploads = append(uploads, thumbUpload{name: name, contentType: contentType, data: data})
			return &domain.BlobStat{MD5Hash: "thumb-" + name}, nil
		},
	}

	return repo, storage, meta, &uploads, &saved
}

func formatType(f imaging.Format) string {
	switch f {
	case imaging.PNG:
		return "png"
	case imaging.JPEG:
		return "jpeg"
	case imaging.BMP:
		return "bmp"
	case imaging.GIF:
		return "gif"
	}
	return ""
}

func TestThumbnailService_GeneratesAllWidthsAscending(t *testing.T) {
	repo, storage, _, uploads, saved := thumbnailFixture(t, imaging.PNG, 800, 600, ".png")
	svc := NewThumbnailService(repo, storage, []int{300, 500, 200})

	require.NoError(t, svc.Generate(context.Background(), "img1", ""))

	require.Len(t, *uploads, 3)
	require.Equal(t, "img1_500.png", (*uploads)[0].name)
	require.Equal(t, "img1_300.png", (*uploads)[1].name)
	require.Equal(t, "img1_200.png", (*uploads)[2].name)

	require.NotNil(t, *saved)
	thumbs := (*saved).Thumbnails
	require.Len(t, thumbs, 3)

	// Persisted ascending by width, aspect ratio preserved at each step.
	require.Equal(t, 200, thumbs[0].Width)
	require.Equal(t, 150, thumbs[0].Height)
	require.Equal(t, 300, thumbs[1].Width)
	require.Equal(t, 225, thumbs[1].Height)
	require.Equal(t, 500, thumbs[2].Width)
	require.Equal(t, 375, thumbs[2].Height)

	for _, th := range thumbs {
		require.NotEmpty(t, th.ID)
		require.Equal(t, "thumb-"+th.Name, th.MD5Hash)
		require.Equal(t, "image/png", th.MimeType)
		require.Positive(t, th.SizeBytes)
	}
}

func TestThumbnailService_SmallOriginalIsTerminalNoop(t *testing.T) {
	repo, storage, _, uploads, saved := thumbnailFixture(t, imaging.PNG, 150, 100, ".png")
	storage.DownloadFunc = func(ctx context.Context, name string, class domain.SizeClass) (io.ReadCloser, error) {
		t.Fatal("nothing to generate, original must not be downloaded")
		return nil, nil
	}
	svc := NewThumbnailService(repo, storage, []int{500, 300, 200})

	require.NoError(t, svc.Generate(context.Background(), "img1", ""))
	require.Empty(t, *uploads)
	require.Nil(t, *saved)
}

func TestThumbnailService_BMPThumbnailsBecomePNG(t *testing.T) {
	repo, storage, _, uploads, saved := thumbnailFixture(t, imaging.BMP, 640, 480, ".bmp")
	svc := NewThumbnailService(repo, storage, []int{320})

	require.NoError(t, svc.Generate(context.Background(), "img1", ""))

	require.Len(t, *uploads, 1)
	require.Equal(t, "img1_320.png", (*uploads)[0].name)
	require.Equal(t, "image/png", (*uploads)[0].contentType)

	img, err := imaging.Decode(bytes.NewReader((*uploads)[0].data))
	require.NoError(t, err)
	require.Equal(t, 320, img.Bounds().Dx())

	require.NotNil(t, *saved)
	require.Equal(t, "image/png", (*saved).Thumbnails[0].MimeType)
}

func TestThumbnailService_SkipsExistingWidths(t *testing.T) {
	repo, storage, meta, uploads, saved := thumbnailFixture(t, imaging.PNG, 800, 600, ".png")
	meta.Thumbnails = domain.ThumbnailList{
		{ID: "old", Name: "img1_300.png", Width: 300, Height: 225},
	}
	svc := NewThumbnailService(repo, storage, []int{500, 300, 200})

	require.NoError(t, svc.Generate(context.Background(), "img1", ""))

	require.Len(t, *uploads, 2)
	require.Equal(t, "img1_500.png", (*uploads)[0].name)
	require.Equal(t, "img1_200.png", (*uploads)[1].name)

	thumbs := (*saved).Thumbnails
	require.Len(t, thumbs, 3)
	require.Equal(t, []int{200, 300, 500}, []int{thumbs[0].Width, thumbs[1].Width, thumbs[2].Width})
	require.Equal(t, "old", thumbs[1].ID)
}

func TestThumbnailService_MissingImageConsumesEvent(t *testing.T) {
	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id, group string) (*domain.ImageMetadata, error) {
			return nil, domain.ErrImageNotFound
		},
	}
	storage := &mockStorage{
		DownloadFunc: func(ctx context.Context, name string, class domain.SizeClass) (io.ReadCloser, error) {
			t.Fatal("no download for a missing image")
			return nil, nil
		},
	}
	svc := NewThumbnailService(repo, storage, []int{500})

	require.NoError(t, svc.Generate(context.Background(), "gone", ""))
}

func TestThumbnailService_MetadataLoadFailurePropagates(t *testing.T) {
	boom := errors.New("store unavailable")
	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id, group string) (*domain.ImageMetadata, error) {
			return nil, boom
		},
	}
	svc := NewThumbnailService(repo, &mockStorage{}, []int{500})

	err := svc.Generate(context.Background(), "img1", "")
	require.ErrorIs(t, err, boom)
}
