// Package avatar validates uploaded profile images and normalizes them to a
// fixed size PNG.
package avatar

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"regexp"

	"golang.org/x/image/draw"

	apperrors "taskmanager/internal/errors"
)

const (
	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes = 1_000_000
	// Size is the edge length of a stored avatar.
	Size = 250
)

var allowedName = regexp.MustCompile(`\.(jpg|jpeg|png)$`)

// CheckUpload validates the file name and size of an upload before it is read.
func CheckUpload(filename string, size int64) error {
	if size > MaxUploadBytes {
		return apperrors.NewMediaTypeError("File too large")
	}
	if !allowedName.MatchString(filename) {
		return apperrors.NewMediaTypeError("Please upload an image")
	}
	return nil
}

// Normalize decodes a JPEG or PNG image, scales it to Size x Size ignoring the
// original aspect ratio and re-encodes it as PNG.
func Normalize(data []byte) ([]byte, error) {
	if len(data) > MaxUploadBytes {
		return nil, apperrors.NewMediaTypeError("File too large")
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewMediaTypeError("Please upload an image")
	}

	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
