// Package crop implements the pointer-driven crop selection state machine.
//
// A Controller turns pointer-down/move/up events, already expressed in canvas
// pixel space, into a clamped selection rect and publishes every change to its
// listeners. It never touches raster pixels; committing a selection hands the
// rect to a Cropper. A Controller is not safe for concurrent use: callers
// deliver events one at a time, in arrival order.
package crop

import (
	"errors"
	"fmt"

	"github.com/phambaophuc/image-editor/internal/geometry"
	"go.uber.org/zap"
)

const (
	DefaultMinSize   = 10
	DefaultHitRadius = 8
)

// ErrNoSelection is returned by Commit when there is no rect to apply.
var ErrNoSelection = errors.New("no crop selection")

// GeometryError reports a rect that escaped its bounds. Clamping makes this
// unreachable, so the controller panics with it instead of returning it.
type GeometryError struct {
	Rect   geometry.Rect
	Bounds geometry.Dimensions
	Mode   Mode
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("crop: %s produced rect %s outside bounds %s", e.Mode, e.Rect, e.Bounds)
}

// Option configures a Controller.
type Option func(*Controller)

// WithMinSize sets the smallest side a handle resize may produce.
func WithMinSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.minSize = n
		}
	}
}

// WithHitRadius sets how far from a corner a pointer-down still grabs it.
func WithHitRadius(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.hitRadius = n
		}
	}
}

// WithSeeder replaces the centered first-entry rect policy.
func WithSeeder(s Seeder) Option {
	return func(c *Controller) {
		if s != nil {
			c.seeder = s
		}
	}
}

// WithLogger attaches a logger for state transitions.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller owns the selection rect and the transient drag state.
type Controller struct {
	logger    *zap.Logger
	minSize   int
	hitRadius int
	seeder    Seeder

	bounds    geometry.Dimensions
	rect      geometry.Rect
	hasRect   bool
	cropMode  bool
	drag      *DragState
	listeners []Listener
}

// NewController returns an idle controller with no bounds.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		logger:    zap.NewNop(),
		minSize:   DefaultMinSize,
		hitRadius: DefaultHitRadius,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.seeder == nil {
		c.seeder = CenteredSeeder{MinSize: c.minSize}
	}
	return c
}

// Subscribe registers l for every subsequent update.
func (c *Controller) Subscribe(l Listener) {
	if l != nil {
		c.listeners = append(c.listeners, l)
	}
}

// SetSeeder swaps the first-entry rect policy. A nil seeder restores the
// centered default.
func (c *Controller) SetSeeder(s Seeder) {
	if s == nil {
		s = CenteredSeeder{MinSize: c.minSize}
	}
	c.seeder = s
}

func (c *Controller) MinSize() int                { return c.minSize }
func (c *Controller) Bounds() geometry.Dimensions { return c.bounds }
func (c *Controller) CropMode() bool              { return c.cropMode }
func (c *Controller) Rect() (geometry.Rect, bool) { return c.rect, c.hasRect }
func (c *Controller) Snapshot() Update            { return c.snapshot() }

// Drag returns a copy of the active drag state.
func (c *Controller) Drag() (DragState, bool) {
	if c.drag == nil {
		return DragState{}, false
	}
	return *c.drag, true
}

// State reports Idle or Dragging.
func (c *Controller) State() State {
	if c.drag != nil {
		return StateDragging
	}
	return StateIdle
}

// SetBounds records the size of the displayed raster. A drag in progress is
// dropped and an existing rect is clamped into the new bounds.
func (c *Controller) SetBounds(bounds geometry.Dimensions) {
	c.bounds = bounds
	c.endDrag("bounds changed")
	if c.hasRect {
		if bounds.Empty() {
			c.rect, c.hasRect = geometry.Rect{}, false
		} else if !c.rect.Empty() {
			c.rect = geometry.ClampRect(c.rect, bounds)
		}
	}
	c.publish()
}

// SetCropMode turns crop mode on or off. Entering it with no rect seeds one;
// leaving it while dragging discards the drag.
func (c *Controller) SetCropMode(on bool) {
	if c.cropMode == on {
		return
	}
	c.cropMode = on
	if !on {
		c.endDrag("crop mode off")
	} else if (!c.hasRect || c.rect.Empty()) && !c.bounds.Empty() {
		c.rect = geometry.ClampRect(c.seeder.Seed(c.bounds), c.bounds)
		c.hasRect = true
		c.logger.Debug("crop rect seeded", zap.Stringer("rect", c.rect))
	}
	c.publish()
}

// ToggleCropMode flips crop mode and returns the new value.
func (c *Controller) ToggleCropMode() bool {
	c.SetCropMode(!c.cropMode)
	return c.cropMode
}

// SetRect applies a numeric edit of the rect fields. The value is clamped
// into the bounds. Ignored while no raster is displayed.
func (c *Controller) SetRect(r geometry.Rect) {
	if c.bounds.Empty() {
		return
	}
	c.endDrag("rect edited")
	c.rect = geometry.ClampRect(r, c.bounds)
	c.hasRect = true
	c.publish()
}

// HitTest reports what a pointer-down at p would grab. Corner grips win over
// the rect interior.
func (c *Controller) HitTest(p geometry.Point) (Target, geometry.Handle) {
	if !c.hasRect || c.rect.Empty() {
		return TargetBackground, geometry.HandleNone
	}
	for _, h := range geometry.Handles {
		corner := c.rect.Corner(h)
		if abs(p.X-corner.X) <= c.hitRadius && abs(p.Y-corner.Y) <= c.hitRadius {
			return TargetHandle, h
		}
	}
	if c.rect.Contains(p) {
		return TargetOverlay, geometry.HandleNone
	}
	return TargetBackground, geometry.HandleNone
}

// PointerDown starts a drag. It reports false when the event was ignored.
func (c *Controller) PointerDown(ev PointerDown) bool {
	if !c.accepting() {
		return false
	}
	target, handle := ev.Target, ev.Handle
	switch {
	case target == TargetAuto, target == TargetHandle && handle == geometry.HandleNone:
		target, handle = c.HitTest(ev.Pos)
	case target != TargetBackground && (!c.hasRect || c.rect.Empty()):
		target = TargetBackground
	}

	switch target {
	case TargetHandle:
		c.drag = &DragState{Mode: ModeResize, Handle: handle, AnchorPointer: ev.Pos, AnchorRect: c.rect}
	case TargetOverlay:
		c.drag = &DragState{Mode: ModeMove, AnchorPointer: ev.Pos.Sub(c.rect.Origin()), AnchorRect: c.rect}
	default:
		anchor := geometry.Point{
			X: clamp(ev.Pos.X, 0, c.bounds.Width),
			Y: clamp(ev.Pos.Y, 0, c.bounds.Height),
		}
		c.rect = geometry.Rect{X: anchor.X, Y: anchor.Y}
		c.hasRect = true
		c.drag = &DragState{Mode: ModeCreate, AnchorPointer: anchor, AnchorRect: c.rect}
	}
	c.logger.Debug("crop drag started",
		zap.Stringer("mode", c.drag.Mode),
		zap.Stringer("handle", c.drag.Handle),
		zap.Int("x", ev.Pos.X),
		zap.Int("y", ev.Pos.Y),
	)
	c.publish()
	return true
}

// PointerMove recomputes the rect for the active drag and publishes it.
func (c *Controller) PointerMove(p geometry.Point) bool {
	if c.drag == nil || !c.accepting() {
		return false
	}
	d := c.drag
	switch d.Mode {
	case ModeCreate:
		c.rect = geometry.CreateFromDrag(d.AnchorPointer, p, c.bounds)
	case ModeMove:
		target := p.Sub(d.AnchorPointer)
		c.rect = geometry.MoveRect(d.AnchorRect, target.Sub(d.AnchorRect.Origin()), c.bounds)
	case ModeResize:
		c.rect = geometry.ResizeFromHandle(d.AnchorRect, d.Handle, p.Sub(d.AnchorPointer), c.bounds, c.minSize)
	}
	if !c.rect.Within(c.bounds) {
		panic(&GeometryError{Rect: c.rect, Bounds: c.bounds, Mode: d.Mode})
	}
	c.publish()
	return true
}

// PointerUp ends the drag. The rect stays as last computed.
func (c *Controller) PointerUp(geometry.Point) bool {
	if c.drag == nil {
		return false
	}
	c.endDrag("pointer up")
	c.publish()
	return true
}

// Commit hands the current rect to cropper. On success the controller goes
// idle with crop mode off and forgets the rect, since it described the raster
// that was just replaced. On failure nothing changes.
func (c *Controller) Commit(cropper Cropper) (geometry.Rect, error) {
	if !c.hasRect || c.rect.Empty() {
		return geometry.Rect{}, ErrNoSelection
	}
	rect := c.rect
	if err := cropper.Crop(rect); err != nil {
		return geometry.Rect{}, err
	}
	c.logger.Debug("crop committed", zap.Stringer("rect", rect))
	c.reset()
	c.publish()
	return rect, nil
}

// Clear drops the rect, any drag and crop mode.
func (c *Controller) Clear() {
	c.reset()
	c.publish()
}

func (c *Controller) reset() {
	c.drag = nil
	c.cropMode = false
	c.rect, c.hasRect = geometry.Rect{}, false
}

func (c *Controller) accepting() bool {
	return c.cropMode && !c.bounds.Empty()
}

func (c *Controller) endDrag(reason string) {
	if c.drag == nil {
		return
	}
	c.logger.Debug("crop drag ended", zap.Stringer("mode", c.drag.Mode), zap.String("reason", reason))
	// A click without a drag selects nothing.
	if c.drag.Mode == ModeCreate && c.rect.Empty() {
		c.rect, c.hasRect = geometry.Rect{}, false
	}
	c.drag = nil
}

func (c *Controller) snapshot() Update {
	u := Update{Rect: c.rect, HasRect: c.hasRect, State: c.State(), CropMode: c.cropMode}
	if c.drag != nil {
		u.Mode, u.Handle = c.drag.Mode, c.drag.Handle
	}
	return u
}

func (c *Controller) publish() {
	u := c.snapshot()
	for _, l := range c.listeners {
		l(u)
	}
}

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
