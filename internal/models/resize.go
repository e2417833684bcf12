package models

type ResizeRequest struct {
	Width  int `json:"width" binding:"required,max=65535"`
	Height int `json:"height" binding:"required,max=65535"`
}

// ResizePanelRequest edits any subset of the resize panel fields.
type ResizePanelRequest struct {
	Width               *int     `json:"width" binding:"omitempty,min=0,max=65535"`
	Height              *int     `json:"height" binding:"omitempty,min=0,max=65535"`
	Scale               *float64 `json:"scale" binding:"omitempty,gt=0"`
	MaintainAspectRatio *bool    `json:"maintain_aspect_ratio"`
}
