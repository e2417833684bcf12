package processor

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
	"github.com/phambaophuc/image-editor/internal/geometry"
)

// resizer implements smartcrop.Resizer on top of imaging.
type resizer struct {
	filter imaging.ResampleFilter
}

func (r resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.filter)
}

// SuggestCrop proposes the most interesting region of img with the given
// aspect. An empty aspect asks for a square. The result is clamped into img.
func SuggestCrop(ctx context.Context, img image.Image, aspect geometry.Dimensions, filter imaging.ResampleFilter) (geometry.Rect, error) {
	b := img.Bounds()
	bounds := geometry.Dimensions{Width: b.Dx(), Height: b.Dy()}
	if bounds.Empty() {
		return geometry.Rect{}, fmt.Errorf("suggest crop: %w", ErrEmptyTarget)
	}
	if err := ctx.Err(); err != nil {
		return geometry.Rect{}, err
	}
	if aspect.Empty() {
		side := min(bounds.Width, bounds.Height)
		aspect = geometry.Dimensions{Width: side, Height: side}
	}

	type result struct {
		crop image.Rectangle
		err  error
	}
	done := make(chan result, 1)
	go func() {
		analyzer := smartcrop.NewAnalyzer(resizer{filter: filter})
		crop, err := analyzer.FindBestCrop(img, aspect.Width, aspect.Height)
		done <- result{crop: crop, err: err}
	}()

	select {
	case <-ctx.Done():
		return geometry.Rect{}, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return geometry.Rect{}, fmt.Errorf("finding best crop: %w", res.err)
		}
		return geometry.ClampRect(geometry.FromImageRect(res.crop.Sub(b.Min)), bounds), nil
	}
}
