// Package imagemeta sniffs image formats and measures dimensions from a
// stream without fully decoding pixels.
package imagemeta

import (
	"bytes"
	"fmt"
	"image"
	"io"

	// Register the decoders this service can meet on the wire. Formats the
	// standard registry recognizes but this map does not (e.g. tiff) are
	// reported as unsupported rather than unknown.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/yokitheyo/imagestore/internal/domain"
)

var supportedFormats = map[string]domain.ImageFormat{
	"png":  {Type: "png", MimeType: "image/png", Extension: ".png"},
	"jpeg": {Type: "jpeg", MimeType: "image/jpeg", Extension: ".jpg"},
	"gif":  {Type: "gif", MimeType: "image/gif", Extension: ".gif"},
	"bmp":  {Type: "bmp", MimeType: "image/bmp", Extension: ".bmp"},
}

// FormatByType returns the descriptor for a supported format type.
func FormatByType(name string) (domain.ImageFormat, bool) {
	f, ok := supportedFormats[name]
	return f, ok
}

// DetectFormat sniffs the stream header. Bytes that are not an image at
// all yield a zero format and no error; a format the registry recognizes
// but this service does not support yields ErrUnsupportedFormat.
func DetectFormat(r io.Reader) (domain.ImageFormat, error) {
	if r == nil {
		return domain.ImageFormat{}, nil
	}

	_, name, err := image.DecodeConfig(r)
	if err != nil {
		// Unrecognized or truncated header: "not an image" is an empty
		// result, not a failure.
		return domain.ImageFormat{}, nil
	}

	format, ok := supportedFormats[name]
	if !ok {
		return domain.ImageFormat{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, name)
	}
	return format, nil
}

// ReadSize measures width, height and byte length. Undecodable data
// yields a nil result and no error.
func ReadSize(r io.Reader) (*domain.ImageSize, error) {
	if r == nil {
		return nil, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil
	}

	return &domain.ImageSize{
		Width:  cfg.Width,
		Height: cfg.Height,
		Bytes:  int64(len(data)),
	}, nil
}
