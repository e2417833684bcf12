// Package session holds the raster state of one editing session: the
// immutable uploaded image and the current, possibly resized or cropped, one.
package session

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-editor/internal/geometry"
	"github.com/phambaophuc/image-editor/internal/services/processor"
	"github.com/phambaophuc/image-editor/pkg/utils"
	"go.uber.org/zap"
)

// Export is an encoded download of the current raster.
type Export struct {
	Filename   string
	MimeType   string
	Data       []byte
	Dimensions geometry.Dimensions
	Quality    float64
	CreatedAt  time.Time
}

// Session is not safe for concurrent use; the editor serializes access.
type Session struct {
	logger   *zap.Logger
	filter   imaging.ResampleFilter
	original *image.NRGBA
	surface  *processor.Surface
	revision uint64

	maxPixels int
}

func New(filter imaging.ResampleFilter, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		logger:  logger,
		filter:  filter,
		surface: processor.NewSurface(filter),
	}
}

// SetMaxPixels bounds both decoded uploads and resize targets. n <= 0 uses
// processor.DefaultMaxPixels.
func (s *Session) SetMaxPixels(n int) {
	s.maxPixels = n
}

// Load decodes data and makes it both the original and the current raster.
// A failed load leaves the session as it was.
func (s *Session) Load(ctx context.Context, data []byte) (geometry.Dimensions, error) {
	img, err := processor.Decode(ctx, data, s.maxPixels)
	if err != nil {
		return geometry.Dimensions{}, err
	}
	dims := geometry.FromImageRect(img.Bounds()).Size()
	surface := processor.NewSurface(s.filter)
	if err := surface.Draw(img, dims); err != nil {
		return geometry.Dimensions{}, fmt.Errorf("failed to draw image: %w", err)
	}
	s.original, s.surface = img, surface
	s.revision++
	s.logger.Info("image loaded", zap.Stringer("dimensions", dims), zap.Int("bytes", len(data)))
	return dims, nil
}

// Resize re-renders the original at target. Repeated resizes never compound
// resampling loss.
func (s *Session) Resize(target geometry.Dimensions) error {
	if !s.Loaded() {
		return ErrNoImage
	}
	if target.Empty() {
		return fmt.Errorf("resize to %s: %w", target, ErrInvalidDimensions)
	}
	if err := processor.CheckPixels(target.Width, target.Height, s.maxPixels); err != nil {
		return fmt.Errorf("resize to %s: %w: %v", target, ErrInvalidDimensions, err)
	}
	if err := s.surface.Draw(s.original, target); err != nil {
		return fmt.Errorf("failed to resize: %w", err)
	}
	s.revision++
	s.logger.Debug("image resized", zap.Stringer("dimensions", target))
	return nil
}

// Crop keeps only rect of the current raster.
func (s *Session) Crop(rect geometry.Rect) error {
	if !s.Loaded() {
		return ErrNoImage
	}
	if !rect.Within(s.surface.Size()) {
		return fmt.Errorf("crop %s of %s: %w", rect, s.surface.Size(), ErrInvalidRect)
	}
	current := s.surface.Pixels()
	if err := s.surface.DrawRegion(current, rect); err != nil {
		return fmt.Errorf("failed to crop: %w", err)
	}
	s.revision++
	s.logger.Debug("image cropped", zap.Stringer("rect", rect))
	return nil
}

// Reset restores the original at its native size.
func (s *Session) Reset() error {
	if !s.Loaded() {
		return ErrNoImage
	}
	if err := s.surface.Draw(s.original, s.OriginalDimensions()); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}
	s.revision++
	return nil
}

// Export encodes the current raster as JPEG at quality in [0,1]. The result
// is named after DownloadName(filename).
func (s *Session) Export(ctx context.Context, filename string, quality float64) (*Export, error) {
	if !s.Loaded() {
		return nil, ErrNoImage
	}
	if math.IsNaN(quality) || quality < 0 || quality > 1 {
		return nil, fmt.Errorf("quality %v: %w", quality, ErrInvalidQuality)
	}
	name, err := DownloadName(filename)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := s.surface.Encode(buf, processor.MimeJPEG, quality); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &Export{
		Filename:   name,
		MimeType:   processor.MimeJPEG,
		Data:       buf.Bytes(),
		Dimensions: s.surface.Size(),
		Quality:    quality,
		CreatedAt:  time.Now(),
	}, nil
}

// DownloadName turns a user-typed filename into the exported file's name.
func DownloadName(filename string) (string, error) {
	stem := utils.SanitizeFilename(filename)
	if stem == "" {
		return "", ErrEmptyFilename
	}
	return stem + ".jpg", nil
}

func (s *Session) Loaded() bool { return s.original != nil }

// Dimensions returns the current raster size.
func (s *Session) Dimensions() geometry.Dimensions {
	if !s.Loaded() {
		return geometry.Dimensions{}
	}
	return s.surface.Size()
}

// OriginalDimensions returns the native size of the uploaded image.
func (s *Session) OriginalDimensions() geometry.Dimensions {
	if !s.Loaded() {
		return geometry.Dimensions{}
	}
	return geometry.FromImageRect(s.original.Bounds()).Size()
}

// Current returns the current raster. Callers must not modify it.
func (s *Session) Current() image.Image {
	if !s.Loaded() {
		return nil
	}
	return s.surface.Image()
}

// Revision changes whenever the current raster does.
func (s *Session) Revision() uint64 { return s.revision }
