package crop

import (
	"fmt"
	"strings"

	"github.com/phambaophuc/image-editor/internal/geometry"
)

// State enumerates the controller states.
type State int

const (
	StateIdle State = iota
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = StateIdle
	case "dragging":
		*s = StateDragging
	default:
		return fmt.Errorf("unknown state %q", text)
	}
	return nil
}

// Mode is what a drag does to the rect.
type Mode int

const (
	ModeNone Mode = iota
	ModeCreate
	ModeMove
	ModeResize
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeMove:
		return "move"
	case ModeResize:
		return "resize"
	default:
		return "none"
	}
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(text []byte) error {
	for _, mode := range []Mode{ModeNone, ModeCreate, ModeMove, ModeResize} {
		if mode.String() == string(text) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown drag mode %q", text)
}

// Target says what a pointer-down landed on.
type Target int

const (
	// TargetAuto asks the controller to hit-test the pointer position.
	TargetAuto Target = iota
	TargetHandle
	TargetOverlay
	TargetBackground
)

func (t Target) String() string {
	switch t {
	case TargetHandle:
		return "handle"
	case TargetOverlay:
		return "overlay"
	case TargetBackground:
		return "background"
	default:
		return "auto"
	}
}

// ParseTarget maps a wire name to a Target. Empty means auto.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return TargetAuto, nil
	case "handle":
		return TargetHandle, nil
	case "overlay":
		return TargetOverlay, nil
	case "background", "canvas":
		return TargetBackground, nil
	default:
		return TargetAuto, fmt.Errorf("unknown pointer target %q", s)
	}
}

// PointerDown describes a pointer-down in canvas pixel space.
type PointerDown struct {
	Pos    geometry.Point
	Target Target
	// Handle is only read when Target is TargetHandle.
	Handle geometry.Handle
}

// DragState lives between pointer-down and pointer-up.
type DragState struct {
	Mode          Mode
	Handle        geometry.Handle
	AnchorPointer geometry.Point
	AnchorRect    geometry.Rect
}

// Update is published to listeners after every transition and every move.
type Update struct {
	Rect     geometry.Rect   `json:"rect"`
	HasRect  bool            `json:"has_rect"`
	State    State           `json:"state"`
	Mode     Mode            `json:"mode"`
	Handle   geometry.Handle `json:"handle"`
	CropMode bool            `json:"crop_mode"`
}

// Listener receives updates synchronously, in event order.
type Listener func(Update)

// Cropper applies a committed rect to the displayed raster.
type Cropper interface {
	Crop(rect geometry.Rect) error
}

// Seeder proposes the first rect shown when crop mode is entered.
type Seeder interface {
	Seed(bounds geometry.Dimensions) geometry.Rect
}

// SeederFunc adapts a function to Seeder.
type SeederFunc func(bounds geometry.Dimensions) geometry.Rect

func (f SeederFunc) Seed(bounds geometry.Dimensions) geometry.Rect { return f(bounds) }

// CenteredSeeder places a square a third of the shorter side in the middle.
type CenteredSeeder struct {
	MinSize int
}

func (s CenteredSeeder) Seed(bounds geometry.Dimensions) geometry.Rect {
	side := max(min(bounds.Width, bounds.Height)/3, s.MinSize)
	return geometry.CenteredRect(bounds, side)
}
