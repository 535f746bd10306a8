package upload

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// MinIOStore persists accepted uploads as objects keyed by bucket segment and
// generated name, mirroring the disk layout.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore constructs an adapter over one object-storage bucket.
func NewMinIOStore(client *minio.Client, bucket string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket}
}

// Save streams the upload into object storage. The object size is not known
// up front, so the stream is sent unbuffered.
func (s *MinIOStore) Save(ctx context.Context, bucket Bucket, name, contentType string, body io.Reader) (string, int64, error) {
	segment := bucket.Segment()
	if segment == "" {
		return "", 0, ErrUnknownBucket
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := segment + "/" + name
	info, err := s.client.PutObject(ctx, s.bucket, objectName, body, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", 0, fmt.Errorf("store object: %w", err)
	}

	return objectName, info.Size, nil
}
