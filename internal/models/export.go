package models

type ExportRequest struct {
	Filename *string  `json:"filename"`
	Quality  *float64 `json:"quality"`
}
