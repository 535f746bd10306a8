package upload

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Options tune the HTTP upload surface.
type Options struct {
	// MaxUploadSize caps the request body in bytes; zero disables the cap.
	MaxUploadSize int64
	// SilentAuthDenial makes unauthenticated uploads answer with the
	// "not attached" sentinel instead of an explicit 401.
	SilentAuthDenial bool
}

// RegisterRoutes mounts the two upload endpoints. Each accepts one multipart
// file under its field name and answers with the stored file's reference.
func RegisterRoutes(router *gin.RouterGroup, service *Service, opts Options) {
	image := &uploadHandler{
		service:  service,
		opts:     opts,
		field:    FieldImage,
		sentinel: "Image not attached",
	}
	document := &uploadHandler{
		service:  service,
		opts:     opts,
		field:    FieldDocument,
		sentinel: "Document not attached",
	}
	router.POST("/img/", image.handle)
	router.POST("/document/", document.handle)
}

type uploadHandler struct {
	service  *Service
	opts     Options
	field    string
	sentinel string
}

func (h *uploadHandler) handle(c *gin.Context) {
	if h.opts.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadSize)
	}

	part, err := findFilePart(c.Request, h.field)
	if err != nil {
		if isTooLarge(err) {
			c.String(http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		c.String(http.StatusOK, h.sentinel)
		return
	}
	defer part.Close()

	result, err := h.service.Process(c.Request.Context(), c.Request, UploadRequest{
		FieldName:        h.field,
		OriginalFilename: part.FileName(),
		DeclaredType:     part.Header.Get("Content-Type"),
		Body:             part,
	})
	if err != nil {
		if isTooLarge(err) {
			c.String(http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		c.String(http.StatusInternalServerError, "Upload failed")
		return
	}

	switch result.Decision.Verdict {
	case VerdictDeniedUnauthenticated:
		if h.opts.SilentAuthDenial {
			c.String(http.StatusOK, h.sentinel)
		} else {
			c.String(http.StatusUnauthorized, "Not authenticated")
		}
	case VerdictDeniedUnsupportedType:
		c.String(http.StatusBadRequest, "Unsupported file type")
	default:
		c.String(http.StatusOK, result.Reference)
	}
}

// findFilePart walks the multipart stream until it reaches a file part under
// the wanted field. Parts are visited in request order, so nothing is
// buffered ahead of the file itself and rejected uploads cost no disk writes.
func findFilePart(r *http.Request, field string) (*multipart.Part, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == field && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
