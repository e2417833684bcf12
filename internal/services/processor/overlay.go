package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-editor/internal/geometry"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	handleSize  = 8
	borderWidth = 2
)

var (
	dimColor    = color.NRGBA{A: 128}
	borderColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	handleColor = color.NRGBA{R: 59, G: 130, B: 246, A: 255}
	labelBg     = color.NRGBA{A: 180}
)

// RenderPreview returns a PNG of img. When overlay is set and rect has area,
// the crop selection is drawn over it: the outside dimmed, a border, the four
// corner grips and a W × H label.
func RenderPreview(img image.Image, rect geometry.Rect, overlay bool) ([]byte, error) {
	dst := imaging.Clone(img)
	if overlay && !rect.Empty() {
		drawSelection(dst, rect.Image().Add(dst.Bounds().Min))
	}
	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, dst, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSelection(dst *image.NRGBA, sel image.Rectangle) {
	b := dst.Bounds()
	dim := image.NewUniform(dimColor)
	for _, band := range []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, sel.Min.Y),
		image.Rect(b.Min.X, sel.Max.Y, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, sel.Min.Y, sel.Min.X, sel.Max.Y),
		image.Rect(sel.Max.X, sel.Min.Y, b.Max.X, sel.Max.Y),
	} {
		draw.Draw(dst, band.Intersect(b), dim, image.Point{}, draw.Over)
	}

	border := image.NewUniform(borderColor)
	for _, edge := range []image.Rectangle{
		image.Rect(sel.Min.X, sel.Min.Y, sel.Max.X, sel.Min.Y+borderWidth),
		image.Rect(sel.Min.X, sel.Max.Y-borderWidth, sel.Max.X, sel.Max.Y),
		image.Rect(sel.Min.X, sel.Min.Y, sel.Min.X+borderWidth, sel.Max.Y),
		image.Rect(sel.Max.X-borderWidth, sel.Min.Y, sel.Max.X, sel.Max.Y),
	} {
		draw.Draw(dst, edge.Intersect(sel), border, image.Point{}, draw.Src)
	}

	grip := image.NewUniform(handleColor)
	for _, c := range []image.Point{sel.Min, {sel.Max.X, sel.Min.Y}, {sel.Min.X, sel.Max.Y}, sel.Max} {
		r := image.Rect(c.X-handleSize/2, c.Y-handleSize/2, c.X+handleSize/2, c.Y+handleSize/2)
		draw.Draw(dst, r.Intersect(b), grip, image.Point{}, draw.Src)
	}

	drawLabel(dst, sel, fmt.Sprintf("%d × %d", sel.Dx(), sel.Dy()))
}

// drawLabel prints text just above the selection, or inside its top edge when
// there is no room above.
func drawLabel(dst *image.NRGBA, sel image.Rectangle, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(borderColor), Face: face}
	width := d.MeasureString(text).Ceil()
	height := face.Height

	top := sel.Min.Y - height - 2
	if top < dst.Bounds().Min.Y {
		top = sel.Min.Y + borderWidth
	}
	box := image.Rect(sel.Min.X, top, sel.Min.X+width+4, top+height+2)
	draw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(labelBg), image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{X: fixed.I(box.Min.X + 2), Y: fixed.I(box.Min.Y + face.Ascent + 1)}
	d.DrawString(text)
}
