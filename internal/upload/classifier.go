package upload

import (
	"path/filepath"
	"strings"
)

// Declared MIME types that map to the document bucket.
const (
	mimeWordDocument = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeLegacyWord   = "application/msword"
	mimePDF          = "application/pdf"
)

var allowedExtensions = map[string]bool{
	".gif":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".png":  true,
	".pdf":  true,
	".docx": true,
	".doc":  true,
}

// Classify maps a declared MIME type to its destination bucket. The declared
// type is caller-supplied metadata, so a positive result admits nothing on
// its own; AllowedExtension is a separate, mandatory gate.
func Classify(declaredType string) (Bucket, bool) {
	switch {
	case strings.HasPrefix(declaredType, "image"):
		return BucketImage, true
	case strings.HasPrefix(declaredType, mimeWordDocument),
		strings.HasPrefix(declaredType, mimeLegacyWord),
		strings.HasPrefix(declaredType, mimePDF):
		return BucketDocument, true
	default:
		return "", false
	}
}

// AllowedExtension reports whether the filename carries one of the accepted
// extensions, compared case-insensitively.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}
