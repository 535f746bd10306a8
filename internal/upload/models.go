package upload

import (
	"io"
	"time"
)

// Bucket identifies the storage class an accepted upload lands in.
type Bucket string

const (
	// BucketImage holds photographs attached to beneficiary records.
	BucketImage Bucket = "image"
	// BucketDocument holds scanned reports and legal paperwork.
	BucketDocument Bucket = "document"
)

// Segment returns the path segment the bucket's files are served under.
func (b Bucket) Segment() string {
	switch b {
	case BucketImage:
		return "img"
	case BucketDocument:
		return "document"
	default:
		return ""
	}
}

// Form field names the upload endpoints accept.
const (
	FieldImage    = "image"
	FieldDocument = "document"
)

// BucketForField maps a multipart field name to the bucket its endpoint
// serves.
func BucketForField(field string) (Bucket, bool) {
	switch field {
	case FieldImage:
		return BucketImage, true
	case FieldDocument:
		return BucketDocument, true
	default:
		return "", false
	}
}

// UploadRequest describes one inbound file part.
type UploadRequest struct {
	FieldName        string
	OriginalFilename string
	DeclaredType     string
	Body             io.Reader
}

// StoredFile records where an accepted upload landed. OriginalFilename is
// display metadata; Name is the storage key.
type StoredFile struct {
	Bucket           Bucket
	Name             string
	Path             string
	OriginalFilename string
	SizeBytes        int64
	CreatedAt        time.Time
}
