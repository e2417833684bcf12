package processor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-editor/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flat(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func decodePNG(t *testing.T, data []byte) *image.NRGBA {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return imaging.Clone(img)
}

func TestRenderPreview_WithoutOverlay(t *testing.T) {
	src := gradient(50, 40)
	data, err := RenderPreview(src, geometry.Rect{X: 5, Y: 5, Width: 10, Height: 10}, false)
	require.NoError(t, err)

	assert.Equal(t, src.Pix, decodePNG(t, data).Pix)
}

func TestRenderPreview_DrawsSelection(t *testing.T) {
	white := color.NRGBA{R: 240, G: 240, B: 240, A: 255}
	src := flat(200, 150, white)
	rect := geometry.Rect{X: 50, Y: 60, Width: 100, Height: 70}

	data, err := RenderPreview(src, rect, true)
	require.NoError(t, err)
	out := decodePNG(t, data)

	require.Equal(t, src.Bounds(), out.Bounds())
	assert.Less(t, out.NRGBAAt(5, 5).R, white.R, "outside is dimmed")
	assert.Equal(t, white, out.NRGBAAt(100, 100), "inside untouched")
	assert.Equal(t, handleColor, out.NRGBAAt(rect.X+rect.Width, rect.Y+rect.Height-1), "SE grip")
	assert.Equal(t, borderColor, out.NRGBAAt(100, rect.Y+rect.Height-1), "bottom border")
	assert.Equal(t, src.Pix, flat(200, 150, white).Pix, "source not mutated")
}

func TestRenderPreview_SelectionAtEdge(t *testing.T) {
	src := flat(40, 30, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	_, err := RenderPreview(src, geometry.Rect{X: 0, Y: 0, Width: 40, Height: 30}, true)
	assert.NoError(t, err)
}

func TestSuggestCrop(t *testing.T) {
	img := gradient(200, 100)

	rect, err := SuggestCrop(context.Background(), img, geometry.Dimensions{}, imaging.Lanczos)
	require.NoError(t, err)
	assert.True(t, rect.Within(geometry.Dimensions{Width: 200, Height: 100}), "%v", rect)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = SuggestCrop(ctx, img, geometry.Dimensions{Width: 1, Height: 1}, imaging.Box)
	assert.ErrorIs(t, err, context.Canceled)
}
