package dto

import (
	"time"

	"github.com/yokitheyo/imagestore/internal/domain"
	"github.com/yokitheyo/imagestore/internal/usecase"
	"github.com/yokitheyo/imagestore/internal/validation"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries the full aggregate of violated bounds
// for a rejected upload.
type ValidationErrorResponse struct {
	Error            string             `json:"error"`
	ValidationErrors []validation.Error `json:"validation_errors"`
}

type ThumbnailResponse struct {
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	SizeBytes    int64     `json:"size_bytes"`
	MD5Hash      string    `json:"md5_hash"`
	MimeType     string    `json:"mime_type"`
	DateAddedUTC time.Time `json:"date_added_utc"`
}

type ImageResponse struct {
	ID           string              `json:"id"`
	ImageGroup   string              `json:"image_group,omitempty"`
	Name         string              `json:"name"`
	URL          string              `json:"url"`
	MimeType     string              `json:"mime_type"`
	SizeBytes    int64               `json:"size_bytes"`
	Width        int                 `json:"width"`
	Height       int                 `json:"height"`
	MD5Hash      string              `json:"md5_hash"`
	DateAddedUTC time.Time           `json:"date_added_utc"`
	Tags         domain.Tags         `json:"tags,omitempty"`
	Thumbnails   []ThumbnailResponse `json:"thumbnails,omitempty"`
}

type ImageListResponse struct {
	Images []ImageResponse `json:"images"`
	Total  int             `json:"total"`
}

// MapUploadToResponse builds the response for a freshly uploaded image.
// Thumbnails do not exist yet at this point.
func MapUploadToResponse(res *usecase.UploadResult) ImageResponse {
	m := res.Metadata
	return ImageResponse{
		ID:           m.ID,
		ImageGroup:   m.ImageGroup,
		Name:         m.Name,
		URL:          res.URL,
		MimeType:     m.MimeType,
		SizeBytes:    m.SizeBytes,
		Width:        m.Width,
		Height:       m.Height,
		MD5Hash:      m.MD5Hash,
		DateAddedUTC: m.DateAddedUTC,
		Tags:         m.Tags,
	}
}

func MapViewToResponse(v usecase.ImageView) ImageResponse {
	m := v.Metadata

	thumbs := make([]ThumbnailResponse, 0, len(m.Thumbnails))
	for _, t := range m.Thumbnails {
		thumbs = append(thumbs, ThumbnailResponse{
			Name:         t.Name,
			URL:          v.ThumbnailURLs[t.Name],
			Width:        t.Width,
			Height:       t.Height,
			SizeBytes:    t.SizeBytes,
			MD5Hash:      t.MD5Hash,
			MimeType:     t.MimeType,
			DateAddedUTC: t.DateAddedUTC,
		})
	}

	return ImageResponse{
		ID:           m.ID,
		ImageGroup:   m.ImageGroup,
		Name:         m.Name,
		URL:          v.URL,
		MimeType:     m.MimeType,
		SizeBytes:    m.SizeBytes,
		Width:        m.Width,
		Height:       m.Height,
		MD5Hash:      m.MD5Hash,
		DateAddedUTC: m.DateAddedUTC,
		Tags:         m.Tags,
		Thumbnails:   thumbs,
	}
}

func MapViewsToResponse(views []usecase.ImageView) ImageListResponse {
	images := make([]ImageResponse, 0, len(views))
	for _, v := range views {
		images = append(images, MapViewToResponse(v))
	}
	return ImageListResponse{Images: images, Total: len(images)}
}
