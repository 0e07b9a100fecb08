package constants

import "strings"

// FileTypes holds the allowed file types for the format field in extract jobs.
var FileTypes = []string{"PDF", "IMAGE", "TXT"}

// AllowedExtensions holds the default allowed file extensions for document ingestion.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to its extract-job format, or ""
// when the extension is not supported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "txt":
		return "TXT"
	case "pdf":
		return "PDF"
	case "jpg", "jpeg", "png":
		return "IMAGE"
	}
	return ""
}
