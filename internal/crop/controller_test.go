package crop

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/phambaophuc/image-editor/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bounds = geometry.Dimensions{Width: 400, Height: 300}

type recorder struct {
	updates []Update
}

func (r *recorder) listener(u Update) { r.updates = append(r.updates, u) }

func (r *recorder) last() Update { return r.updates[len(r.updates)-1] }

type fakeCropper struct {
	got []geometry.Rect
	err error
}

func (f *fakeCropper) Crop(rect geometry.Rect) error {
	f.got = append(f.got, rect)
	return f.err
}

func newTestController(t *testing.T) (*Controller, *recorder) {
	t.Helper()
	c := NewController()
	r := &recorder{}
	c.Subscribe(r.listener)
	c.SetBounds(bounds)
	return c, r
}

func pt(x, y int) geometry.Point { return geometry.Point{X: x, Y: y} }

func TestController_EnterCropModeSeedsCenteredRect(t *testing.T) {
	c, rec := newTestController(t)

	c.SetCropMode(true)

	rect, ok := c.Rect()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 150, Y: 100, Width: 100, Height: 100}, rect)
	assert.True(t, rec.last().CropMode)
	assert.True(t, rec.last().HasRect)
}

func TestController_ReenteringKeepsRect(t *testing.T) {
	c, _ := newTestController(t)
	c.SetCropMode(true)
	c.SetRect(geometry.Rect{X: 10, Y: 20, Width: 30, Height: 40})
	c.SetCropMode(false)
	c.SetCropMode(true)

	rect, _ := c.Rect()
	assert.Equal(t, geometry.Rect{X: 10, Y: 20, Width: 30, Height: 40}, rect)
}

func TestController_DragCreate(t *testing.T) {
	c, rec := newTestController(t)
	c.SetCropMode(true)

	require.True(t, c.PointerDown(PointerDown{Pos: pt(50, 50), Target: TargetBackground}))
	assert.Equal(t, StateDragging, c.State())
	assert.Equal(t, geometry.Rect{X: 50, Y: 50}, rec.last().Rect, "create starts zero-size at the anchor")
	assert.Equal(t, ModeCreate, rec.last().Mode)

	require.True(t, c.PointerMove(pt(120, 90)))
	require.True(t, c.PointerMove(pt(150, 120)))
	require.True(t, c.PointerUp(pt(150, 120)))

	rect, _ := c.Rect()
	assert.Equal(t, geometry.Rect{X: 50, Y: 50, Width: 100, Height: 70}, rect)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, StateIdle, rec.last().State)
}

func TestController_DragCreateBackwards(t *testing.T) {
	c, _ := newTestController(t)
	c.SetCropMode(true)

	c.PointerDown(PointerDown{Pos: pt(150, 120), Target: TargetBackground})
	c.PointerMove(pt(50, 50))

	rect, _ := c.Rect()
	assert.Equal(t, geometry.Rect{X: 50, Y: 50, Width: 100, Height: 70}, rect)
}

func TestController_MoveUsesAbsoluteTarget(t *testing.T) {
	c, _ := newTestController(t)
	c.SetCropMode(true)
	c.SetRect(geometry.Rect{X: 100, Y: 100, Width: 80, Height: 60})

	require.True(t, c.PointerDown(PointerDown{Pos: pt(120, 110), Target: TargetOverlay}))
	drag, ok := c.Drag()
	require.True(t, ok)
	assert.Equal(t, ModeMove, drag.Mode)
	assert.Equal(t, pt(20, 10), drag.AnchorPointer)

	c.PointerMove(pt(130, 130))
	c.PointerMove(pt(140, 150))
	rect, _ := c.Rect()
	assert.Equal(t, geometry.Rect{X: 120, Y: 140, Width: 80, Height: 60}, rect)

	c.PointerMove(pt(1000, -1000))
	rect, _ = c.Rect()
	assert.Equal(t, geometry.Rect{X: 320, Y: 0, Width: 80, Height: 60}, rect)
}

func TestController_ResizeFromHandle(t *testing.T) {
	c, rec := newTestController(t)
	c.SetCropMode(true)
	c.SetRect(geometry.Rect{X: 100, Y: 100, Width: 80, Height: 60})

	require.True(t, c.PointerDown(PointerDown{Pos: pt(100, 100), Target: TargetHandle, Handle: geometry.HandleNW}))
	assert.Equal(t, ModeResize, rec.last().Mode)
	assert.Equal(t, geometry.HandleNW, rec.last().Handle)

	c.PointerMove(pt(90, 95))
	c.PointerMove(pt(80, 90))
	c.PointerUp(pt(80, 90))

	rect, _ := c.Rect()
	assert.Equal(t, geometry.Rect{X: 80, Y: 90, Width: 100, Height: 70}, rect)
}

func TestController_ResizeRespectsMinSize(t *testing.T) {
	c := NewController(WithMinSize(20))
	c.SetBounds(bounds)
	c.SetCropMode(true)
	c.SetRect(geometry.Rect{X: 100, Y: 100, Width: 80, Height: 60})

	c.PointerDown(PointerDown{Pos: pt(180, 160), Target: TargetAuto})
	drag, _ := c.Drag()
	require.Equal(t, geometry.HandleSE, drag.Handle)

	c.PointerMove(pt(0, 0))
	rect, _ := c.Rect()
	assert.Equal(t, geometry.Rect{X: 100, Y: 100, Width: 20, Height: 20}, rect)
}

func TestController_HitTest(t *testing.T) {
	c, _ := newTestController(t)
	c.SetCropMode(true)
	c.SetRect(geometry.Rect{X: 100, Y: 100, Width: 80, Height: 60})

	tests := []struct {
		p      geometry.Point
		target Target
		handle geometry.Handle
	}{
		{pt(100, 100), TargetHandle, geometry.HandleNW},
		{pt(186, 94), TargetHandle, geometry.HandleNE},
		{pt(95, 165), TargetHandle, geometry.HandleSW},
		{pt(180, 160), TargetHandle, geometry.HandleSE},
		{pt(140, 130), TargetOverlay, geometry.HandleNone},
		{pt(20, 20), TargetBackground, geometry.HandleNone},
		{pt(189, 130), TargetBackground, geometry.HandleNone},
	}
	for _, tt := range tests {
		target, handle := c.HitTest(tt.p)
		assert.Equal(t, tt.target, target, "%v", tt.p)
		assert.Equal(t, tt.handle, handle, "%v", tt.p)
	}
}

func TestController_AutoTargetOnBackgroundCreates(t *testing.T) {
	c, _ := newTestController(t)
	c.SetCropMode(true)

	c.PointerDown(PointerDown{Pos: pt(10, 10)})
	drag, _ := c.Drag()
	assert.Equal(t, ModeCreate, drag.Mode)
}

func TestController_OverlayWithoutRectFallsBackToCreate(t *testing.T) {
	c, _ := newTestController(t)
	c.SetCropMode(true)
	c.PointerDown(PointerDown{Pos: pt(5, 5), Target: TargetBackground})
	c.PointerUp(pt(5, 5))

	c.PointerDown(PointerDown{Pos: pt(5, 5), Target: TargetOverlay})
	drag, ok := c.Drag()
	require.True(t, ok)
	assert.Equal(t, ModeCreate, drag.Mode)
}

func TestController_ClickWithoutDragLeavesNoSelection(t *testing.T) {
	c, rec := newTestController(t)
	c.SetCropMode(true)
	c.Clear()
	c.SetCropMode(true)

	c.PointerDown(PointerDown{Pos: pt(290, 290), Target: TargetBackground})
	c.PointerUp(pt(290, 290))

	_, ok := c.Rect()
	assert.False(t, ok)
	assert.False(t, rec.last().HasRect)
	_, err := c.Commit(&fakeCropper{})
	assert.ErrorIs(t, err, ErrNoSelection)

	c.SetCropMode(false)
	c.SetCropMode(true)

	rect, ok := c.Rect()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 150, Y: 100, Width: 100, Height: 100}, rect)
	assert.True(t, rect.Within(bounds))
}

func TestController_CropModeOffDuringEmptyCreateReseeds(t *testing.T) {
	c, _ := newTestController(t)
	c.SetCropMode(true)
	c.PointerDown(PointerDown{Pos: pt(20, 20), Target: TargetBackground})

	c.SetCropMode(false)
	c.SetCropMode(true)

	rect, ok := c.Rect()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 150, Y: 100, Width: 100, Height: 100}, rect)
}

func TestController_PublishesEveryMove(t *testing.T) {
	c, rec := newTestController(t)
	c.SetCropMode(true)
	before := len(rec.updates)

	c.PointerDown(PointerDown{Pos: pt(0, 0), Target: TargetBackground})
	for i := 1; i <= 25; i++ {
		c.PointerMove(pt(i*4, i*3))
	}
	c.PointerUp(pt(100, 75))

	require.Len(t, rec.updates, before+27)
	for i := 1; i <= 25; i++ {
		u := rec.updates[before+i]
		assert.Equal(t, geometry.Rect{Width: i * 4, Height: i * 3}, u.Rect)
	}
}

func TestController_IgnoresEventsWithoutImageOrCropMode(t *testing.T) {
	c := NewController()
	rec := &recorder{}
	c.Subscribe(rec.listener)

	assert.False(t, c.PointerDown(PointerDown{Pos: pt(1, 1)}))
	assert.False(t, c.PointerMove(pt(2, 2)))
	assert.False(t, c.PointerUp(pt(2, 2)))
	c.SetRect(geometry.Rect{X: 1, Y: 1, Width: 5, Height: 5})
	_, ok := c.Rect()
	assert.False(t, ok)

	c.SetBounds(bounds)
	assert.False(t, c.PointerDown(PointerDown{Pos: pt(1, 1)}), "crop mode is off")

	c.SetCropMode(true)
	c.SetBounds(geometry.Dimensions{})
	assert.False(t, c.PointerDown(PointerDown{Pos: pt(1, 1)}), "zero-area bounds")
}

func TestController_CropModeOffCancelsDrag(t *testing.T) {
	c, rec := newTestController(t)
	c.SetCropMode(true)
	c.PointerDown(PointerDown{Pos: pt(50, 50), Target: TargetBackground})
	c.PointerMove(pt(90, 90))

	c.SetCropMode(false)

	assert.Equal(t, StateIdle, c.State())
	_, dragging := c.Drag()
	assert.False(t, dragging)
	assert.False(t, rec.last().CropMode)
	assert.False(t, c.PointerMove(pt(120, 120)))
	rect, _ := c.Rect()
	assert.Equal(t, geometry.Rect{X: 50, Y: 50, Width: 40, Height: 40}, rect)
}

func TestController_SetRectClamps(t *testing.T) {
	c, rec := newTestController(t)
	c.SetRect(geometry.Rect{X: 380, Y: -4, Width: 50, Height: 0})
	assert.Equal(t, geometry.Rect{X: 350, Y: 0, Width: 50, Height: 1}, rec.last().Rect)
}

func TestController_SetBoundsClampsRect(t *testing.T) {
	c, _ := newTestController(t)
	c.SetCropMode(true)
	c.SetRect(geometry.Rect{X: 300, Y: 200, Width: 100, Height: 100})

	c.SetBounds(geometry.Dimensions{Width: 200, Height: 150})

	rect, _ := c.Rect()
	assert.Equal(t, geometry.Rect{X: 100, Y: 50, Width: 100, Height: 100}, rect)
}

func TestController_Commit(t *testing.T) {
	c, rec := newTestController(t)
	c.SetCropMode(true)
	c.PointerDown(PointerDown{Pos: pt(50, 50), Target: TargetBackground})
	c.PointerMove(pt(150, 120))
	c.PointerUp(pt(150, 120))

	cropper := &fakeCropper{}
	rect, err := c.Commit(cropper)
	require.NoError(t, err)

	assert.Equal(t, geometry.Rect{X: 50, Y: 50, Width: 100, Height: 70}, rect)
	assert.Equal(t, []geometry.Rect{rect}, cropper.got)
	assert.False(t, c.CropMode())
	assert.Equal(t, StateIdle, c.State())
	_, ok := c.Rect()
	assert.False(t, ok)
	assert.False(t, rec.last().CropMode)
}

func TestController_CommitFailureKeepsState(t *testing.T) {
	c, _ := newTestController(t)
	c.SetCropMode(true)
	want, _ := c.Rect()

	boom := errors.New("boom")
	_, err := c.Commit(&fakeCropper{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.True(t, c.CropMode())
	got, ok := c.Rect()
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestController_CommitWithoutSelection(t *testing.T) {
	c, _ := newTestController(t)
	_, err := c.Commit(&fakeCropper{})
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestController_CustomSeeder(t *testing.T) {
	seed := geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4}
	c := NewController(WithSeeder(SeederFunc(func(geometry.Dimensions) geometry.Rect { return seed })))
	c.SetBounds(bounds)
	c.SetCropMode(true)

	rect, _ := c.Rect()
	assert.Equal(t, seed, rect)
}

func TestCenteredSeeder(t *testing.T) {
	s := CenteredSeeder{MinSize: 10}
	assert.Equal(t, geometry.Rect{X: 11, Y: 1, Width: 10, Height: 10}, s.Seed(geometry.Dimensions{Width: 32, Height: 12}))
	assert.Equal(t, geometry.Rect{X: 300, Y: 200, Width: 200, Height: 200}, s.Seed(geometry.Dimensions{Width: 800, Height: 600}))
}

func TestParseTarget(t *testing.T) {
	for _, target := range []Target{TargetAuto, TargetHandle, TargetOverlay, TargetBackground} {
		got, err := ParseTarget(target.String())
		require.NoError(t, err)
		assert.Equal(t, target, got)
	}
	_, err := ParseTarget("window")
	assert.Error(t, err)
}

func TestUpdate_JSONRoundTrip(t *testing.T) {
	c, _ := newTestController(t)
	c.SetCropMode(true)
	c.PointerDown(PointerDown{Pos: pt(150, 100), Target: TargetHandle, Handle: geometry.HandleNW})
	want := c.Snapshot()

	data, err := json.Marshal(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mode":"resize"`)
	assert.Contains(t, string(data), `"handle":"nw"`)

	var got Update
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}
