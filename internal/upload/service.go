package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AD-em/orphan-database/internal/metrics"
)

// blobStore persists an accepted stream and reports where it landed.
type blobStore interface {
	Save(ctx context.Context, bucket Bucket, name, contentType string, body io.Reader) (string, int64, error)
}

// Service runs one upload end to end: admission, naming, persistence and
// reference derivation. Nothing touches storage until the gatekeeper accepts.
type Service struct {
	gate    *Gatekeeper
	blobs   blobStore
	namer   Namer
	logger  *zap.Logger
	nowFunc func() time.Time
}

// NewService constructs an upload service.
func NewService(gate *Gatekeeper, blobs blobStore, namer Namer, logger *zap.Logger) *Service {
	return &Service{
		gate:    gate,
		blobs:   blobs,
		namer:   namer,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// Result reports what happened to one upload. Stored and Reference are set
// only when the decision's verdict is VerdictAccepted.
type Result struct {
	Decision  Decision
	Stored    StoredFile
	Reference string
}

// Process admits, persists and resolves one upload. Denials are reported in
// the result, not as errors; the error return covers identity-store and
// storage failures.
func (s *Service) Process(ctx context.Context, r *http.Request, up UploadRequest) (Result, error) {
	implied, _ := BucketForField(up.FieldName)

	decision, err := s.gate.Admit(ctx, r, up)
	if err != nil {
		return Result{}, fmt.Errorf("admit upload: %w", err)
	}

	switch decision.Verdict {
	case VerdictDeniedUnauthenticated:
		metrics.RecordUpload(string(implied), metrics.OutcomeDeniedUnauthenticated)
		s.logger.Info("upload denied",
			zap.String("field", up.FieldName),
			zap.String("reason", "unauthenticated"))
		return Result{Decision: decision}, nil
	case VerdictDeniedUnsupportedType:
		metrics.RecordUpload(string(implied), metrics.OutcomeDeniedUnsupportedType)
		s.logger.Info("upload denied",
			zap.String("field", up.FieldName),
			zap.String("filename", up.OriginalFilename),
			zap.String("declared_type", up.DeclaredType),
			zap.String("reason", "unsupported type"))
		return Result{Decision: decision}, nil
	}

	name := s.namer.Name(up.FieldName, sanitizeFilename(up.OriginalFilename))

	path, size, err := s.blobs.Save(ctx, decision.Bucket, name, up.DeclaredType, up.Body)
	if err != nil {
		metrics.RecordUpload(string(decision.Bucket), metrics.OutcomeFailed)
		s.logger.Error("upload failed",
			zap.String("bucket", string(decision.Bucket)),
			zap.String("name", name),
			zap.Error(err))
		return Result{}, fmt.Errorf("store upload: %w", err)
	}

	reference, err := ToReference(path)
	if err != nil {
		return Result{}, fmt.Errorf("resolve reference: %w", err)
	}

	metrics.RecordUpload(string(decision.Bucket), metrics.OutcomeStored)
	metrics.RecordUploadBytes(string(decision.Bucket), size)
	s.logger.Info("upload stored",
		zap.String("bucket", string(decision.Bucket)),
		zap.String("name", name),
		zap.Int64("size_bytes", size),
		zap.String("user_id", decision.Identity.UserID.String()))

	return Result{
		Decision: decision,
		Stored: StoredFile{
			Bucket:           decision.Bucket,
			Name:             name,
			Path:             path,
			OriginalFilename: up.OriginalFilename,
			SizeBytes:        size,
			CreatedAt:        s.nowFunc(),
		},
		Reference: reference,
	}, nil
}

// sanitizeFilename strips any path the client smuggled into the filename so
// the generated name cannot escape the bucket directory.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}
	name = filepath.Base(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "upload"
	}
	return name
}
