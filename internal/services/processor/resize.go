package processor

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-editor/internal/geometry"
)

// Draw resizes the canvas to target and draws src scaled into it. A draw at
// the source's own size is an exact pixel copy.
func (s *Surface) Draw(src image.Image, target geometry.Dimensions) error {
	if target.Empty() {
		return fmt.Errorf("draw to %s: %w", target, ErrEmptyTarget)
	}
	b := src.Bounds()
	if b.Dx() == target.Width && b.Dy() == target.Height {
		s.canvas = imaging.Clone(src)
		return nil
	}
	s.canvas = imaging.Resize(src, target.Width, target.Height, s.filter)
	return nil
}
