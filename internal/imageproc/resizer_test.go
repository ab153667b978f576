package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func testImageReader(t *testing.T, w, h int, format imaging.Format) *bytes.Reader {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	err := imaging.Encode(&buf, img, format)
	require.NoError(t, err)

	return bytes.NewReader(buf.Bytes())
}

func mustDecode(t *testing.T, r io.Reader) image.Image {
	t.Helper()

	img, err := imaging.Decode(r)
	require.NoError(t, err)
	require.NotNil(t, img)

	return img
}

func TestResize(t *testing.T) {
	tests := []struct {
		name        string
		reader      io.Reader
		targetWidth int
		wantWidth   int
		wantHeight  int
		wantErr     bool
	}{
		{
			name:        "downscale keeps aspect ratio",
			reader:      testImageReader(t, 800, 600, imaging.PNG),
			targetWidth: 500,
			wantWidth:   500,
			wantHeight:  375,
		},
		{
			name:        "rounded height",
			reader:      testImageReader(t, 800, 533, imaging.PNG),
			targetWidth: 300,
			wantWidth:   300,
			wantHeight:  200, // round(533 / (800/300)) = round(199.875)
		},
		{
			name:        "nil reader",
			reader:      nil,
			targetWidth: 100,
			wantErr:     true,
		},
		{
			name:        "broken image",
			reader:      bytes.NewReader([]byte("not-an-image")),
			targetWidth: 100,
			wantErr:     true,
		},
		{
			name:        "non-positive width",
			reader:      testImageReader(t, 100, 100, imaging.PNG),
			targetWidth: 0,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, size, err := Resize(tt.reader, imaging.PNG, tt.targetWidth)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, size)
			require.Equal(t, tt.wantWidth, size.Width)
			require.Equal(t, tt.wantHeight, size.Height)
			require.Equal(t, int64(len(data)), size.Bytes)
			require.Greater(t, size.Bytes, int64(0))

			img := mustDecode(t, bytes.NewReader(data))
			require.Equal(t, tt.wantWidth, img.Bounds().Dx())
			require.Equal(t, tt.wantHeight, img.Bounds().Dy())
		})
	}
}

func TestResize_ChainedOutputIsDecodable(t *testing.T) {
	first, _, err := Resize(testImageReader(t, 800, 600, imaging.JPEG), imaging.JPEG, 500)
	require.NoError(t, err)

	second, size, err := Resize(bytes.NewReader(first), imaging.JPEG, 300)
	require.NoError(t, err)
	require.Equal(t, 300, size.Width)
	require.Equal(t, 225, size.Height)

	img := mustDecode(t, bytes.NewReader(second))
	require.Equal(t, 300, img.Bounds().Dx())
}

func TestEncodeFormat(t *testing.T) {
	for _, name := range []string{"png", "jpeg", "gif", "bmp"} {
		_, err := EncodeFormat(name)
		require.NoError(t, err, name)
	}

	_, err := EncodeFormat("webp")
	require.Error(t, err)
}
