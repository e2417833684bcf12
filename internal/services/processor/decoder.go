package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultMaxPixels caps the area of any raster the editor allocates.
const DefaultMaxPixels = 50_000_000

// MaxDimension is the largest side a JPEG can declare.
const MaxDimension = 65535

// CheckPixels reports ErrTooManyPixels when a w×h raster would exceed
// maxPixels. maxPixels <= 0 means DefaultMaxPixels.
func CheckPixels(w, h, maxPixels int) error {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if w > MaxDimension || h > MaxDimension || int64(w)*int64(h) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooManyPixels, w, h, maxPixels)
	}
	return nil
}

// Decode decodes data into an NRGBA raster, applying EXIF orientation the
// way a browser image element does. The frame header is read first so an
// image declaring more than maxPixels is rejected before any pixel buffer is
// allocated.
func Decode(ctx context.Context, data []byte, maxPixels int) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}
	if err := CheckPixels(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}
