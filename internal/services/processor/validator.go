package processor

import (
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadSize is the largest accepted upload, 30 MiB.
const MaxUploadSize int64 = 30 * 1024 * 1024

var (
	ErrUnsupportedType   = errors.New("Please select a JPEG image file.")
	ErrFileTooLarge      = errors.New("File size must be less than 30MB.")
	ErrDecode            = errors.New("could not decode image")
	ErrEmptyTarget       = errors.New("target has no area")
	ErrRegionOutOfBounds = errors.New("region outside source bounds")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrTooManyPixels     = errors.New("image is too large to edit")
)

// UploadLimit returns maxSize, or MaxUploadSize when maxSize is not positive.
func UploadLimit(maxSize int64) int64 {
	if maxSize <= 0 {
		return MaxUploadSize
	}
	return maxSize
}

// ValidateHeader checks what is known about an upload before its bytes are
// read: the declared MIME type and the size.
func ValidateHeader(declaredType string, size, maxSize int64) error {
	t := strings.ToLower(declaredType)
	if !strings.Contains(t, "jpeg") && !strings.Contains(t, "jpg") {
		return ErrUnsupportedType
	}
	if size > UploadLimit(maxSize) {
		return ErrFileTooLarge
	}
	return nil
}

// ValidateUpload runs ValidateHeader and then sniffs the content, so a file
// merely named .jpg is still rejected. Nothing is decoded.
func ValidateUpload(declaredType string, data []byte, maxSize int64) error {
	if err := ValidateHeader(declaredType, int64(len(data)), maxSize); err != nil {
		return err
	}
	if !mimetype.Detect(data).Is(MimeJPEG) {
		return ErrUnsupportedType
	}
	return nil
}
