package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore persists accepted uploads under a public root, one flat directory
// per bucket.
type DiskStore struct {
	dirs map[Bucket]string
}

// NewDiskStore resolves the root and creates the bucket directories.
func NewDiskStore(root string) (*DiskStore, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	dirs := map[Bucket]string{
		BucketImage:    filepath.Join(absRoot, BucketImage.Segment()),
		BucketDocument: filepath.Join(absRoot, BucketDocument.Segment()),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	return &DiskStore{dirs: dirs}, nil
}

// Dir returns the absolute directory backing the bucket.
func (s *DiskStore) Dir(bucket Bucket) string {
	return s.dirs[bucket]
}

// Save streams the upload verbatim to its bucket directory in one pass. An
// existing file under the same name is never overwritten, and a partial file
// left by a failed write is removed.
func (s *DiskStore) Save(ctx context.Context, bucket Bucket, name, contentType string, body io.Reader) (string, int64, error) {
	dir, ok := s.dirs[bucket]
	if !ok {
		return "", 0, ErrUnknownBucket
	}

	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(f, body)
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", 0, fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("close file: %w", err)
	}

	return path, written, nil
}
