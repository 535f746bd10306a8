package upload

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ToReference converts a stored path into the externally addressable path
// fragment, rooted at the bucket segment. It is a pure function of the path:
// the deepest directory named after a bucket segment becomes the first
// component of the reference.
func ToReference(storedPath string) (string, error) {
	parts := strings.Split(filepath.ToSlash(storedPath), "/")
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] == BucketImage.Segment() || parts[i] == BucketDocument.Segment() {
			return path.Join(parts[i:]...), nil
		}
	}
	return "", fmt.Errorf("path %q contains no bucket segment", storedPath)
}
