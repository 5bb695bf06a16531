package avatar

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskmanager/internal/errors"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestCheckUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{name: "png", filename: "me.png", size: 10_000},
		{name: "jpg", filename: "me.jpg", size: 10_000},
		{name: "jpeg at limit", filename: "me.jpeg", size: MaxUploadBytes},
		{name: "too large", filename: "me.png", size: 2_000_000, wantErr: true},
		{name: "pdf", filename: "cv.pdf", size: 100, wantErr: true},
		{name: "upper case extension", filename: "me.PNG", size: 100, wantErr: true},
		{name: "extension not at end", filename: "me.png.exe", size: 100, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUpload(tt.filename, tt.size)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrUnsupportedMediaType)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{name: "wide png", data: func(t *testing.T) []byte { return encodePNG(t, 60, 20) }},
		{name: "large jpeg", data: func(t *testing.T) []byte { return encodeJPEG(t, 640, 480) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Normalize(tt.data(t))
			require.NoError(t, err)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, Size, cfg.Width)
			assert.Equal(t, Size, cfg.Height)
		})
	}
}

func TestNormalize_RejectsNonImage(t *testing.T) {
	_, err := Normalize([]byte("definitely not an image"))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMediaType)
}

func TestNormalize_RejectsOversized(t *testing.T) {
	_, err := Normalize(make([]byte, 2_000_000))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMediaType)
}
