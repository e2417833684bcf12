package models

// CropRect is a numeric rect edit. Values are clamped, not rejected.
type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CropModeRequest sets crop mode; an omitted Enabled toggles it.
type CropModeRequest struct {
	Enabled *bool `json:"enabled"`
}

type CropApplyRequest struct {
	Rect *CropRect `json:"rect"`
}

type SuggestCropRequest struct {
	AspectWidth  int `json:"aspect_width" binding:"omitempty,min=1"`
	AspectHeight int `json:"aspect_height" binding:"omitempty,min=1,required_with=AspectWidth"`
}

type Viewport struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Width   float64 `json:"width" binding:"min=0"`
	Height  float64 `json:"height" binding:"min=0"`
}

// PointerEvent is one pointer event in the page's rendered coordinates.
type PointerEvent struct {
	Type     string    `json:"type" binding:"required,oneof=down move up"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Target   string    `json:"target" binding:"omitempty,oneof=auto handle overlay background canvas"`
	Handle   string    `json:"handle" binding:"omitempty,oneof=nw ne sw se none"`
	Viewport *Viewport `json:"viewport"`
}

// PointerReply answers one pointer event on the stream.
type PointerReply struct {
	Handled bool   `json:"handled"`
	Update  any    `json:"update,omitempty"`
	Error   string `json:"error,omitempty"`
}
