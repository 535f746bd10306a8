package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"

	"github.com/AD-em/orphan-database/internal/config"
	"github.com/AD-em/orphan-database/internal/upload"
)

// registerFileRoutes exposes stored uploads for download under the same paths
// their references point at. The disk backend serves the bucket directories
// directly; the object-store backend answers with a redirect to a presigned
// URL.
func registerFileRoutes(router *gin.Engine, deps Dependencies) {
	switch deps.Config.Upload.Backend {
	case config.UploadBackendS3:
		if deps.ObjectStore == nil {
			return
		}
		handler := &presignHandler{
			client: deps.ObjectStore,
			bucket: deps.Config.MinIO.Bucket,
			ttl:    deps.Config.MinIO.PresignTTL,
		}
		router.GET("/img/:name", handler.redirect(upload.BucketImage))
		router.GET("/document/:name", handler.redirect(upload.BucketDocument))
	default:
		if deps.UploadDirs == nil {
			return
		}
		router.Static("/img", deps.UploadDirs.Dir(upload.BucketImage))
		router.Static("/document", deps.UploadDirs.Dir(upload.BucketDocument))
	}
}

type presignHandler struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func (h *presignHandler) redirect(bucket upload.Bucket) gin.HandlerFunc {
	return func(c *gin.Context) {
		object := bucket.Segment() + "/" + c.Param("name")

		signed, err := h.client.PresignedGetObject(c.Request.Context(), h.bucket, object, h.ttl, url.Values{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign download"})
			return
		}

		c.Redirect(http.StatusTemporaryRedirect, signed.String())
	}
}
