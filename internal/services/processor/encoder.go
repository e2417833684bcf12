package processor

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// Encode writes the canvas as mimeType. Quality in [0,1] applies to JPEG.
func (s *Surface) Encode(w io.Writer, mimeType string, quality float64) error {
	return encodeImage(w, s.canvas, mimeType, quality)
}

func encodeImage(w io.Writer, img image.Image, mimeType string, quality float64) error {
	switch mimeType {
	case MimeJPEG, "image/jpg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality(quality)))
	case MimePNG:
		return imaging.Encode(w, img, imaging.PNG)
	default:
		return fmt.Errorf("encode %q: %w", mimeType, ErrUnsupportedFormat)
	}
}

// JPEGQuality maps a [0,1] quality to the encoder's 1..100 scale.
func JPEGQuality(q float64) int {
	return min(100, max(1, int(math.Round(q*100))))
}
