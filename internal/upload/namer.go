package upload

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Namer computes the storage key for an accepted upload.
type Namer interface {
	Name(fieldName, originalFilename string) string
}

// TimestampNamer concatenates the field name, the current epoch milliseconds
// and the original filename. Two uploads under the same field in the same
// millisecond collide; the disk store refuses the second write rather than
// overwriting the first.
type TimestampNamer struct {
	nowFunc func() time.Time
}

func NewTimestampNamer() *TimestampNamer {
	return &TimestampNamer{nowFunc: time.Now}
}

func (n *TimestampNamer) Name(fieldName, originalFilename string) string {
	return fmt.Sprintf("%s-%d-%s", fieldName, n.nowFunc().UnixMilli(), originalFilename)
}

// RandomNamer keys the file by a random token, keeping only the extension
// from the original filename. The original name survives as display metadata
// on the stored record.
type RandomNamer struct{}

func (RandomNamer) Name(_, originalFilename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(originalFilename))
}
