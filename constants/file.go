package constants

import "strings"

// AllowedExtensions holds the document extensions picked up by directory discovery.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// ImageExtensions are the raster formats accepted by the OCR image path.
var ImageExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without the dot) is a discoverable document.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
