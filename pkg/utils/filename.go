package utils

import (
	"path"
	"strings"
	"unicode"
)

// SanitizeFilename reduces a user-typed download name to a bare file stem.
// Directory parts, a trailing .jpg/.jpeg and characters that would break a
// Content-Disposition header are removed. The result may be empty.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	if name == "" {
		return ""
	}
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}

	ext := strings.ToLower(path.Ext(name))
	if ext == ".jpg" || ext == ".jpeg" {
		name = name[:len(name)-len(ext)]
	}

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '"' {
			return '_'
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}
