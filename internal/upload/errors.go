package upload

import "errors"

var (
	// ErrUnsupportedType signals the declared type or filename extension
	// failed the allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrUnknownBucket signals a write was attempted for a bucket the store
	// does not manage.
	ErrUnknownBucket = errors.New("unknown storage bucket")
)
