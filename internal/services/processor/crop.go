package processor

import (
	"fmt"
	"image"

	"github.com/phambaophuc/image-editor/internal/geometry"
	"golang.org/x/image/draw"
)

// DrawRegion resizes the canvas to the region's size and copies that region
// of src into it, pixel for pixel. The region is relative to src's origin.
func (s *Surface) DrawRegion(src image.Image, region geometry.Rect) error {
	b := src.Bounds()
	if !region.Within(geometry.Dimensions{Width: b.Dx(), Height: b.Dy()}) {
		return fmt.Errorf("region %s of %dx%d source: %w", region, b.Dx(), b.Dy(), ErrRegionOutOfBounds)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, region.Width, region.Height))
	draw.Copy(dst, image.Point{}, src, region.Image().Add(b.Min), draw.Src, nil)
	s.canvas = dst
	return nil
}
