package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var canvas = Dimensions{Width: 400, Height: 300}

func TestClampRect_NoOpWhenInside(t *testing.T) {
	bounds := []Dimensions{{1, 1}, {10, 10}, {400, 300}, {37, 901}}
	for _, b := range bounds {
		for x := 0; x < b.Width; x += max(1, b.Width/7) {
			for y := 0; y < b.Height; y += max(1, b.Height/7) {
				r := Rect{X: x, Y: y, Width: max(1, (b.Width-x)/2), Height: max(1, (b.Height-y)/3)}
				require.True(t, r.Within(b), "fixture %v must fit %v", r, b)
				assert.Equal(t, r, ClampRect(r, b))
			}
		}
	}
}

func TestClampRect(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"negative origin", Rect{-5, -7, 50, 40}, Rect{0, 0, 50, 40}},
		{"overflow right", Rect{380, 10, 50, 40}, Rect{350, 10, 50, 40}},
		{"overflow bottom", Rect{10, 290, 50, 40}, Rect{10, 260, 50, 40}},
		{"wider than bounds", Rect{30, 0, 900, 40}, Rect{0, 0, 400, 40}},
		{"zero size floors at one", Rect{10, 10, 0, -3}, Rect{10, 10, 1, 1}},
		{"far outside", Rect{1000, 1000, 10, 10}, Rect{390, 290, 10, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampRect(tt.in, canvas)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Within(canvas))
		})
	}
}

func TestClampRect_DegenerateBounds(t *testing.T) {
	assert.Equal(t, Rect{}, ClampRect(Rect{1, 1, 5, 5}, Dimensions{0, 10}))
}

func TestCreateFromDrag(t *testing.T) {
	got := CreateFromDrag(Point{50, 50}, Point{150, 120}, canvas)
	assert.Equal(t, Rect{X: 50, Y: 50, Width: 100, Height: 70}, got)
}

func TestCreateFromDrag_Commutative(t *testing.T) {
	points := []Point{{0, 0}, {50, 50}, {150, 120}, {-30, 80}, {399, 299}, {500, -10}, {200, 10}}
	for _, p1 := range points {
		for _, p2 := range points {
			assert.Equal(t, CreateFromDrag(p1, p2, canvas), CreateFromDrag(p2, p1, canvas), "%v %v", p1, p2)
		}
	}
}

func TestCreateFromDrag_PointerPastEdge(t *testing.T) {
	got := CreateFromDrag(Point{50, 50}, Point{-20, 500}, canvas)
	assert.Equal(t, Rect{X: 0, Y: 50, Width: 50, Height: 250}, got)
}

func TestMoveRect(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 80, Height: 60}

	assert.Equal(t, Rect{120, 90, 80, 60}, MoveRect(r, Point{20, -10}, canvas))
	assert.Equal(t, Rect{0, 0, 80, 60}, MoveRect(r, Point{-500, -500}, canvas))
	assert.Equal(t, Rect{320, 240, 80, 60}, MoveRect(r, Point{500, 500}, canvas))
}

func TestResizeFromHandle_NW(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 80, Height: 60}
	got := ResizeFromHandle(r, HandleNW, Point{-20, -10}, canvas, 10)
	assert.Equal(t, Rect{X: 80, Y: 90, Width: 100, Height: 70}, got)
}

func TestResizeFromHandle_Formulas(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 80, Height: 60}
	d := Point{X: 15, Y: -5}
	tests := []struct {
		h    Handle
		want Rect
	}{
		{HandleNW, Rect{115, 95, 65, 65}},
		{HandleNE, Rect{100, 95, 95, 65}},
		{HandleSW, Rect{115, 100, 65, 55}},
		{HandleSE, Rect{100, 100, 95, 55}},
	}
	for _, tt := range tests {
		t.Run(tt.h.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ResizeFromHandle(r, tt.h, d, canvas, 10))
		})
	}
}

func TestResizeFromHandle_PivotStaysFixed(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 80, Height: 60}
	opposite := map[Handle]Handle{HandleNW: HandleSE, HandleNE: HandleSW, HandleSW: HandleNE, HandleSE: HandleNW}
	for h, pivot := range opposite {
		got := ResizeFromHandle(r, h, Point{-37, 23}, canvas, 10)
		assert.Equal(t, r.Corner(pivot), got.Corner(pivot), "handle %v", h)
	}
}

func TestResizeFromHandle_MinSizeAndBounds(t *testing.T) {
	const minSize = 12
	starts := []Rect{
		{0, 0, 400, 300},
		{100, 100, 80, 60},
		{0, 0, 12, 12},
		{388, 288, 12, 12},
		{5, 290, 3, 4},
		{200, 150, 1, 1},
	}
	deltas := []Point{{0, 0}, {-1000, -1000}, {1000, 1000}, {-1000, 1000}, {1000, -1000}, {7, -3}, {-79, 59}, {300, 0}}
	for _, r := range starts {
		for _, h := range Handles {
			for _, d := range deltas {
				got := ResizeFromHandle(r, h, d, canvas, minSize)
				assert.GreaterOrEqual(t, got.Width, minSize, "%v %v %v -> %v", r, h, d, got)
				assert.GreaterOrEqual(t, got.Height, minSize, "%v %v %v -> %v", r, h, d, got)
				assert.True(t, got.Within(canvas), "%v %v %v -> %v", r, h, d, got)
			}
		}
	}
}

func TestResizeFromHandle_MinSizeLargerThanBounds(t *testing.T) {
	small := Dimensions{Width: 8, Height: 30}
	got := ResizeFromHandle(Rect{0, 0, 4, 4}, HandleSE, Point{-10, -10}, small, 20)
	assert.Equal(t, Rect{0, 0, 8, 20}, got)
}

func TestResizeFromHandle_CrossingStopsAtMinSize(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 80, Height: 60}
	got := ResizeFromHandle(r, HandleSE, Point{-200, -200}, canvas, 10)
	assert.Equal(t, Rect{100, 100, 10, 10}, got)

	got = ResizeFromHandle(r, HandleNW, Point{200, 200}, canvas, 10)
	assert.Equal(t, Rect{170, 150, 10, 10}, got)
}

func TestCenteredRect(t *testing.T) {
	assert.Equal(t, Rect{150, 100, 100, 100}, CenteredRect(canvas, 100))
	assert.Equal(t, Rect{0, 0, 5, 5}, CenteredRect(Dimensions{5, 5}, 50))
	assert.Equal(t, Rect{}, CenteredRect(Dimensions{}, 10))
}

func TestFitAspect(t *testing.T) {
	orig := Dimensions{Width: 800, Height: 600}
	assert.Equal(t, Dimensions{400, 300}, FitAspect(orig, 400, 0))
	assert.Equal(t, Dimensions{133, 100}, FitAspect(orig, 0, 100))
	assert.Equal(t, orig, FitAspect(orig, 10, 10))
	assert.Equal(t, orig, FitAspect(orig, 0, 0))
}

func TestHandleNames(t *testing.T) {
	for _, h := range Handles {
		parsed, err := ParseHandle(h.String())
		require.NoError(t, err)
		assert.Equal(t, h, parsed)
	}
	_, err := ParseHandle("north")
	assert.Error(t, err)
}

func TestRectConversions(t *testing.T) {
	r := Rect{X: 3, Y: 4, Width: 10, Height: 20}
	assert.Equal(t, image.Rect(3, 4, 13, 24), r.Image())
	assert.Equal(t, r, FromImageRect(image.Rect(13, 24, 3, 4)))
	assert.True(t, r.Contains(Point{3, 4}))
	assert.False(t, r.Contains(Point{13, 4}))
	assert.Equal(t, 200, r.Area())
	assert.Equal(t, 0, Rect{Width: 5}.Area())
}
