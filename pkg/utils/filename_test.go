package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"holiday", "holiday"},
		{"  holiday  ", "holiday"},
		{"holiday.jpg", "holiday"},
		{"Holiday.JPEG", "Holiday"},
		{"holiday.png", "holiday.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\shot`, "shot"},
		{"say \"cheese\"", "say _cheese_"},
		{"tab\there", "tab_here"},
		{"", ""},
		{"   ", ""},
		{"..", ""},
		{"/", ""},
		{".jpg", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), "%q", tt.in)
	}
}
