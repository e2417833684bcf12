package session

import (
	"errors"

	"github.com/phambaophuc/image-editor/internal/services/processor"
)

var (
	ErrNoImage           = errors.New("no image loaded")
	ErrInvalidDimensions = errors.New("width and height must be positive")
	ErrInvalidRect       = errors.New("crop area must lie inside the image")
	ErrInvalidQuality    = errors.New("quality must be between 0 and 1")
	ErrEmptyFilename     = errors.New("filename must not be empty")

	// ErrDecode is returned by Load for data that is not a decodable image.
	ErrDecode = processor.ErrDecode
)
