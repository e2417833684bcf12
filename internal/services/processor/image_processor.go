package processor

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-editor/internal/geometry"
)

// Surface is an off-screen canvas backed by an NRGBA buffer. Every draw
// replaces the buffer with one sized to the drawn content.
type Surface struct {
	filter imaging.ResampleFilter
	canvas *image.NRGBA
}

func NewSurface(filter imaging.ResampleFilter) *Surface {
	return &Surface{
		filter: filter,
		canvas: image.NewNRGBA(image.Rectangle{}),
	}
}

// Size returns the canvas dimensions.
func (s *Surface) Size() geometry.Dimensions {
	b := s.canvas.Bounds()
	return geometry.Dimensions{Width: b.Dx(), Height: b.Dy()}
}

// Pixels returns a copy of the backing buffer.
func (s *Surface) Pixels() *image.NRGBA {
	return imaging.Clone(s.canvas)
}

// Image exposes the backing buffer for read-only use.
func (s *Surface) Image() *image.NRGBA {
	return s.canvas
}

// ParseFilter maps a filter name from configuration to an imaging filter.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lanczos":
		return imaging.Lanczos, nil
	case "catmullrom":
		return imaging.CatmullRom, nil
	case "mitchell", "mitchellnetravali":
		return imaging.MitchellNetravali, nil
	case "linear", "bilinear":
		return imaging.Linear, nil
	case "box":
		return imaging.Box, nil
	case "nearest", "nearestneighbor":
		return imaging.NearestNeighbor, nil
	default:
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter %q", name)
	}
}
