package editor

import (
	"fmt"
	"math"
	"strings"

	"github.com/phambaophuc/image-editor/internal/geometry"
	"github.com/phambaophuc/image-editor/internal/services/processor"
	"github.com/phambaophuc/image-editor/internal/services/session"
	"github.com/phambaophuc/image-editor/pkg/utils"
)

const (
	MinScale   = 0.1
	MaxScale   = 3.0
	MinQuality = 0.5
	MaxQuality = 1.0
)

// ResizePanel holds the resize form. Edits only change the fields; Target is
// what an "apply" resizes to.
type ResizePanel struct {
	width          int
	height         int
	scale          float64
	maintainAspect bool
	original       geometry.Dimensions
}

type ResizePanelState struct {
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Scale          float64 `json:"scale"`
	MaintainAspect bool    `json:"maintain_aspect_ratio"`
	MinScale       float64 `json:"min_scale"`
	MaxScale       float64 `json:"max_scale"`
}

func NewResizePanel() *ResizePanel {
	return &ResizePanel{scale: 1, maintainAspect: true}
}

// Sync reloads the fields from the raster after it changed.
func (p *ResizePanel) Sync(current, original geometry.Dimensions) {
	p.width, p.height = current.Width, current.Height
	p.original = original
	if original.Width > 0 {
		p.scale = float64(current.Width) / float64(original.Width)
	}
}

func (p *ResizePanel) aspect() float64 {
	if p.original.Height == 0 {
		return 1
	}
	return float64(p.original.Width) / float64(p.original.Height)
}

func (p *ResizePanel) scaleFor(width int) {
	if p.original.Width > 0 {
		p.scale = float64(width) / float64(p.original.Width)
	}
}

// SetWidth edits the width field. With the aspect lock on the height
// follows; the scale always does.
func (p *ResizePanel) SetWidth(w int) {
	w = min(w, processor.MaxDimension)
	p.width = w
	if w <= 0 {
		return
	}
	if p.maintainAspect {
		p.height = min(int(math.Round(float64(w)/p.aspect())), processor.MaxDimension)
	}
	p.scaleFor(w)
}

// SetHeight edits the height field.
func (p *ResizePanel) SetHeight(h int) {
	h = min(h, processor.MaxDimension)
	p.height = h
	if h <= 0 {
		return
	}
	if p.maintainAspect {
		p.width = min(int(math.Round(float64(h)*p.aspect())), processor.MaxDimension)
	}
	p.scaleFor(p.width)
}

// SetScale moves the slider, clamped to its range, and derives both sides
// from the original.
func (p *ResizePanel) SetScale(s float64) {
	if math.IsNaN(s) {
		return
	}
	p.scale = min(MaxScale, max(MinScale, s))
	p.width = int(math.Round(float64(p.original.Width) * p.scale))
	p.height = int(math.Round(float64(p.original.Height) * p.scale))
}

// SetMaintainAspect toggles the lock. Turning it on re-derives the height.
func (p *ResizePanel) SetMaintainAspect(on bool) {
	p.maintainAspect = on
	if on && p.width > 0 {
		p.height = int(math.Round(float64(p.width) / p.aspect()))
	}
}

func (p *ResizePanel) Target() geometry.Dimensions {
	return geometry.Dimensions{Width: p.width, Height: p.height}
}

func (p *ResizePanel) State() ResizePanelState {
	return ResizePanelState{
		Width:          p.width,
		Height:         p.height,
		Scale:          p.scale,
		MaintainAspect: p.maintainAspect,
		MinScale:       MinScale,
		MaxScale:       MaxScale,
	}
}

// DownloadPanel holds the export form.
type DownloadPanel struct {
	filename        string
	quality         float64
	defaultFilename string
}

type DownloadPanelState struct {
	Filename   string  `json:"filename"`
	Quality    float64 `json:"quality"`
	MinQuality float64 `json:"min_quality"`
	MaxQuality float64 `json:"max_quality"`
}

func NewDownloadPanel(defaultFilename string, defaultQuality float64) *DownloadPanel {
	if strings.TrimSpace(defaultFilename) == "" {
		defaultFilename = "resized-image"
	}
	if defaultQuality < 0 || defaultQuality > 1 {
		defaultQuality = 0.9
	}
	return &DownloadPanel{filename: defaultFilename, quality: defaultQuality, defaultFilename: defaultFilename}
}

func (p *DownloadPanel) SetFilename(name string) { p.filename = name }

// SetQuality accepts the full [0,1] range the encoder supports; the slider
// range is advisory.
func (p *DownloadPanel) SetQuality(q float64) error {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return fmt.Errorf("quality %v: %w", q, session.ErrInvalidQuality)
	}
	p.quality = q
	return nil
}

// Filename falls back to the default when the field sanitizes to nothing.
func (p *DownloadPanel) Filename() string {
	if name := utils.SanitizeFilename(p.filename); name != "" {
		return name
	}
	return p.defaultFilename
}

func (p *DownloadPanel) Quality() float64 { return p.quality }

func (p *DownloadPanel) State() DownloadPanelState {
	return DownloadPanelState{
		Filename:   p.filename,
		Quality:    p.quality,
		MinQuality: MinQuality,
		MaxQuality: MaxQuality,
	}
}
