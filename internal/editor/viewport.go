package editor

import (
	"math"

	"github.com/phambaophuc/image-editor/internal/geometry"
)

// Viewport describes where the page renders the canvas: the canvas's top-left
// offset in the pointer coordinate space and its rendered (CSS) size.
type Viewport struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// ToCanvas converts a rendered-space position to canvas pixels. A viewport
// without a size only subtracts the offset.
func (v Viewport) ToCanvas(x, y float64, canvas geometry.Dimensions) geometry.Point {
	sx, sy := 1.0, 1.0
	if v.Width > 0 && v.Height > 0 {
		sx = float64(canvas.Width) / v.Width
		sy = float64(canvas.Height) / v.Height
	}
	return geometry.Point{
		X: int(math.Round((x - v.OffsetX) * sx)),
		Y: int(math.Round((y - v.OffsetY) * sy)),
	}
}
