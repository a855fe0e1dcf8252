package constants

import (
	"path/filepath"
	"strings"
)

// ConvertibleImage: format yang di-encode ulang jadi webp sebelum disimpan.
func ConvertibleImage(filename, contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/png", "image/gif":
		return true
	case "image/webp":
		return false
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".gif"
}
