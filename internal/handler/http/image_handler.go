package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/domain"
	"github.com/yokitheyo/imagestore/internal/dto"
	"github.com/yokitheyo/imagestore/internal/fetch"
	"github.com/yokitheyo/imagestore/internal/helpers"
	"github.com/yokitheyo/imagestore/internal/usecase"
)

type ImageHandler struct {
	uploads       *usecase.UploadService
	deletes       *usecase.DeleteService
	search        *usecase.SearchService
	downloader    *fetch.Downloader
	maxUploadSize int64
}

func NewImageHandler(
	uploads *usecase.UploadService,
	deletes *usecase.DeleteService,
	search *usecase.SearchService,
	downloader *fetch.Downloader,
	maxUploadSizeMB int,
) *ImageHandler {
	return &ImageHandler{
		uploads:       uploads,
		deletes:       deletes,
		search:        search,
		downloader:    downloader,
		maxUploadSize: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

func (h *ImageHandler) RegisterRoutes(engine *ginext.Engine) {
	engine.POST("/images", h.UploadImage)
	engine.GET("/images", h.SearchImages)
	engine.GET("/images/:id", h.GetImage)
	engine.DELETE("/images/:id", h.DeleteImage)
	engine.GET("/health", h.Health)
}

// UploadImage POST /images
//
// Accepts either a multipart form with an "image" file or a JSON body
// naming a source "url" to fetch.
func (h *ImageHandler) UploadImage(c *ginext.Context) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		h.uploadByURL(c)
		return
	}
	h.uploadMultipart(c)
}

func (h *ImageHandler) uploadMultipart(c *ginext.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		// No file attached; a "url" form field names a remote source instead.
		if url := c.PostForm("url"); url != "" {
			tags, terr := parseTags(c.PostForm("tags"))
			if terr != nil {
				c.JSON(http.StatusBadRequest, dto.ErrorResponse{
					Error:   "invalid_request",
					Message: "tags must be a JSON object of string values",
				})
				return
			}
			h.fetchAndUpload(c, url, c.PostForm("image_group"), tags)
			return
		}

		zlog.Logger.Warn().Err(err).Msg("failed to get file from request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "No image file or source url provided",
		})
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "file_too_large",
			Message: fmt.Sprintf("File size exceeds maximum allowed (%d MB)", h.maxUploadSize/(1024*1024)),
		})
		return
	}

	tags, err := parseTags(c.PostForm("tags"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "tags must be a JSON object of string values",
		})
		return
	}

	h.runUpload(c, c.PostForm("image_group"), file, tags)
}

func (h *ImageHandler) uploadByURL(c *ginext.Context) {
	var req dto.UploadByURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "url is required",
		})
		return
	}

	h.fetchAndUpload(c, req.URL, req.ImageGroup, req.Tags)
}

func (h *ImageHandler) fetchAndUpload(c *ginext.Context, url, imageGroup string, tags domain.Tags) {
	data, err := h.downloader.Fetch(c.Request.Context(), url)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("url", url).Msg("failed to fetch source image")
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "fetch_failed",
			Message: "Failed to download image from the given URL",
		})
		return
	}

	if int64(len(data)) > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "file_too_large",
			Message: fmt.Sprintf("File size exceeds maximum allowed (%d MB)", h.maxUploadSize/(1024*1024)),
		})
		return
	}

	h.runUpload(c, imageGroup, bytes.NewReader(data), tags)
}

func (h *ImageHandler) runUpload(c *ginext.Context, imageGroup string, src io.Reader, tags domain.Tags) {
	res, vres, err := h.uploads.Upload(c.Request.Context(), imageGroup, src, tags)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to upload image")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "upload_failed",
			Message: "Failed to upload image",
		})
		return
	}

	if !vres.OK() {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
			Error:            "validation_failed",
			ValidationErrors: vres.Errors,
		})
		return
	}

	c.JSON(http.StatusCreated, dto.MapUploadToResponse(res))
}

// SearchImages GET /images?ids=a,b,c&image_group=g
func (h *ImageHandler) SearchImages(c *ginext.Context) {
	ids := helpers.SplitAndTrim(c.Query("ids"), ",")
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "ids query parameter is required",
		})
		return
	}

	views, err := h.search.Search(c.Request.Context(), ids, c.Query("image_group"))
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to search images")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to retrieve images",
		})
		return
	}

	c.JSON(http.StatusOK, dto.MapViewsToResponse(views))
}

// GetImage GET /images/:id
func (h *ImageHandler) GetImage(c *ginext.Context) {
	id := c.Param("id")

	view, err := h.search.Get(c.Request.Context(), id, c.Query("image_group"))
	if err != nil {
		if errors.Is(err, domain.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "not_found",
				Message: "Image not found",
			})
			return
		}
		zlog.Logger.Error().Err(err).Str("image_id", id).Msg("failed to get image")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to retrieve image",
		})
		return
	}

	c.JSON(http.StatusOK, dto.MapViewToResponse(*view))
}

// DeleteImage DELETE /images/:id
func (h *ImageHandler) DeleteImage(c *ginext.Context) {
	id := c.Param("id")

	if err := h.deletes.Delete(c.Request.Context(), id, c.Query("image_group")); err != nil {
		if errors.Is(err, domain.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "not_found",
				Message: "Image not found",
			})
			return
		}
		zlog.Logger.Error().Err(err).Str("image_id", id).Msg("failed to delete image")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to delete image",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// Health GET /health
func (h *ImageHandler) Health(c *ginext.Context) {
	c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func parseTags(raw string) (domain.Tags, error) {
	if raw == "" {
		return nil, nil
	}
	var tags domain.Tags
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
