// Package geometry holds the pure rectangle math behind the crop selection.
//
// All coordinates are integer pixels in the space of the currently displayed
// raster, with (0,0) at the top-left corner. Functions never mutate their
// arguments and never fail: results are clamped into the given bounds.
package geometry

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Dimensions is a raster size in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether either side is non-positive.
func (d Dimensions) Empty() bool {
	return d.Width <= 0 || d.Height <= 0
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Point is a pointer position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is a crop or selection region.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FromImageRect converts an image.Rectangle.
func FromImageRect(r image.Rectangle) Rect {
	r = r.Canon()
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Image returns the equivalent image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rect's width and height.
func (r Rect) Size() Dimensions {
	return Dimensions{Width: r.Width, Height: r.Height}
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns width*height, or 0 for empty rects.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Within reports whether r is non-empty and fully inside bounds.
func (r Rect) Within(bounds Dimensions) bool {
	return !r.Empty() && r.X >= 0 && r.Y >= 0 &&
		r.X+r.Width <= bounds.Width && r.Y+r.Height <= bounds.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Handle identifies one of the four corner grips.
type Handle int

const (
	HandleNone Handle = iota
	HandleNW
	HandleNE
	HandleSW
	HandleSE
)

// Handles lists the corner grips in hit-test order.
var Handles = []Handle{HandleNW, HandleNE, HandleSW, HandleSE}

func (h Handle) String() string {
	switch h {
	case HandleNW:
		return "nw"
	case HandleNE:
		return "ne"
	case HandleSW:
		return "sw"
	case HandleSE:
		return "se"
	default:
		return "none"
	}
}

func (h Handle) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Handle) UnmarshalText(text []byte) error {
	parsed, err := ParseHandle(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHandle maps a wire name (nw, ne, sw, se) to a Handle.
func ParseHandle(s string) (Handle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nw":
		return HandleNW, nil
	case "ne":
		return HandleNE, nil
	case "sw":
		return HandleSW, nil
	case "se":
		return HandleSE, nil
	case "", "none":
		return HandleNone, nil
	default:
		return HandleNone, fmt.Errorf("unknown handle %q", s)
	}
}

// Corner returns the position of handle h on r.
func (r Rect) Corner(h Handle) Point {
	switch h {
	case HandleNW:
		return Point{X: r.X, Y: r.Y}
	case HandleNE:
		return Point{X: r.X + r.Width, Y: r.Y}
	case HandleSW:
		return Point{X: r.X, Y: r.Y + r.Height}
	case HandleSE:
		return Point{X: r.X + r.Width, Y: r.Y + r.Height}
	default:
		return r.Origin()
	}
}

// ClampRect fits r inside bounds. Width and height are clipped to [1, bounds]
// first, then the origin is clipped so the far edges stay inside. A rect that
// already fits is returned unchanged. Degenerate bounds yield the zero Rect.
func ClampRect(r Rect, bounds Dimensions) Rect {
	if bounds.Empty() {
		return Rect{}
	}
	w := clamp(r.Width, 1, bounds.Width)
	h := clamp(r.Height, 1, bounds.Height)
	return Rect{
		X:      clamp(r.X, 0, bounds.Width-w),
		Y:      clamp(r.Y, 0, bounds.Height-h),
		Width:  w,
		Height: h,
	}
}

// CreateFromDrag spans a rect between the drag anchor and the current pointer.
// Both points are clamped into bounds first so a pointer dragged past an edge
// pins the rect to that edge. The result does not depend on argument order.
func CreateFromDrag(anchor, pointer Point, bounds Dimensions) Rect {
	if bounds.Empty() {
		return Rect{}
	}
	a := clampPoint(anchor, bounds)
	p := clampPoint(pointer, bounds)
	return ClampRect(Rect{
		X:      min(a.X, p.X),
		Y:      min(a.Y, p.Y),
		Width:  abs(p.X - a.X),
		Height: abs(p.Y - a.Y),
	}, bounds)
}

// MoveRect translates r by delta, keeping it inside bounds. The size is kept.
func MoveRect(r Rect, delta Point, bounds Dimensions) Rect {
	return Rect{
		X:      clamp(r.X+delta.X, 0, max(0, bounds.Width-r.Width)),
		Y:      clamp(r.Y+delta.Y, 0, max(0, bounds.Height-r.Height)),
		Width:  r.Width,
		Height: r.Height,
	}
}

// ResizeFromHandle drags corner h of r by delta while the opposite corner
// stays put. Sides never shrink below minSize (capped at the bounds) and the
// moving edges stop at the bounds.
func ResizeFromHandle(r Rect, h Handle, delta Point, bounds Dimensions, minSize int) Rect {
	if bounds.Empty() {
		return Rect{}
	}
	r = ClampRect(r, bounds)
	minW := clamp(minSize, 1, bounds.Width)
	minH := clamp(minSize, 1, bounds.Height)

	left, right := r.X, r.X+r.Width
	top, bottom := r.Y, r.Y+r.Height

	switch h {
	case HandleNW:
		left, right = moveLow(left, right, delta.X, bounds.Width, minW)
		top, bottom = moveLow(top, bottom, delta.Y, bounds.Height, minH)
	case HandleNE:
		left, right = moveHigh(left, right, delta.X, bounds.Width, minW)
		top, bottom = moveLow(top, bottom, delta.Y, bounds.Height, minH)
	case HandleSW:
		left, right = moveLow(left, right, delta.X, bounds.Width, minW)
		top, bottom = moveHigh(top, bottom, delta.Y, bounds.Height, minH)
	case HandleSE:
		left, right = moveHigh(left, right, delta.X, bounds.Width, minW)
		top, bottom = moveHigh(top, bottom, delta.Y, bounds.Height, minH)
	default:
		return r
	}

	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// moveLow shifts the low edge of [lo, hi) by d against the fixed high edge.
func moveLow(lo, hi, d, limit, minSize int) (int, int) {
	lo = clamp(lo+d, 0, hi-minSize)
	if hi-lo < minSize {
		// hi sits closer to 0 than minSize; push it out instead.
		hi = min(limit, lo+minSize)
	}
	return lo, hi
}

// moveHigh shifts the high edge of [lo, hi) by d against the fixed low edge.
func moveHigh(lo, hi, d, limit, minSize int) (int, int) {
	hi = max(hi+d, lo+minSize)
	if hi > limit {
		hi = limit
	}
	if hi-lo < minSize {
		lo = max(0, hi-minSize)
	}
	return lo, hi
}

// CenteredRect returns a side×side square centered in bounds, clamped.
func CenteredRect(bounds Dimensions, side int) Rect {
	if bounds.Empty() {
		return Rect{}
	}
	side = clamp(side, 1, min(bounds.Width, bounds.Height))
	return ClampRect(Rect{
		X:      (bounds.Width - side) / 2,
		Y:      (bounds.Height - side) / 2,
		Width:  side,
		Height: side,
	}, bounds)
}

// FitAspect derives the missing side of a target size from the original's
// aspect ratio. When exactly one of targetW, targetH is positive the other is
// computed and rounded; otherwise the original dimensions are returned.
func FitAspect(original Dimensions, targetW, targetH int) Dimensions {
	if original.Empty() {
		return original
	}
	switch {
	case targetW > 0 && targetH <= 0:
		ratio := float64(original.Height) / float64(original.Width)
		return Dimensions{Width: targetW, Height: int(math.Round(float64(targetW) * ratio))}
	case targetH > 0 && targetW <= 0:
		ratio := float64(original.Width) / float64(original.Height)
		return Dimensions{Width: int(math.Round(float64(targetH) * ratio)), Height: targetH}
	default:
		return original
	}
}

func clampPoint(p Point, bounds Dimensions) Point {
	return Point{X: clamp(p.X, 0, bounds.Width), Y: clamp(p.Y, 0, bounds.Height)}
}

// clamp limits v to [lo, hi]; when hi < lo the lower bound wins.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
