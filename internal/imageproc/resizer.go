// Package imageproc produces re-encoded copies of an image at a target
// width, preserving aspect ratio.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/disintegration/imaging"

	"github.com/yokitheyo/imagestore/internal/domain"
)

// EncodeFormat maps a format type name ("png", "jpeg", ...) to the codec
// used for re-encoding.
func EncodeFormat(formatType string) (imaging.Format, error) {
	format, err := imaging.FormatFromExtension(formatType)
	if err != nil {
		return format, fmt.Errorf("no encoder for format %q: %w", formatType, err)
	}
	return format, nil
}

// Resize decodes the stream, scales it down to targetWidth with the height
// chosen as round(h / (w / targetWidth)), and re-encodes it in the given
// format. The returned bytes are both uploadable and decodable again, so a
// chain of progressively smaller resizes can feed each step with the
// previous step's output.
func Resize(r io.Reader, format imaging.Format, targetWidth int) ([]byte, *domain.ImageSize, error) {
	if r == nil {
		return nil, nil, errors.New("nil reader provided to Resize")
	}
	if targetWidth <= 0 {
		return nil, nil, fmt.Errorf("target width must be positive, got %d", targetWidth)
	}

	img, err := imaging.Decode(r)
	if err != nil {
		return nil, nil, fmt.Errorf("decode image: %w", err)
	}

	srcWidth := img.Bounds().Dx()
	srcHeight := img.Bounds().Dy()
	if srcWidth == 0 || srcHeight == 0 {
		return nil, nil, errors.New("decoded image is empty")
	}

	targetHeight := int(math.Round(float64(srcHeight) / (float64(srcWidth) / float64(targetWidth))))
	if targetHeight < 1 {
		targetHeight = 1
	}

	resized := imaging.Resize(img, targetWidth, targetHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return nil, nil, fmt.Errorf("encode resized image: %w", err)
	}

	return buf.Bytes(), &domain.ImageSize{
		Width:  targetWidth,
		Height: targetHeight,
		Bytes:  int64(buf.Len()),
	}, nil
}
