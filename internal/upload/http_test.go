package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AD-em/orphan-database/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type uploadFixture struct {
	router *gin.Engine
	store  *DiskStore
	clock  *fakeClock
}

// fakeClock hands out strictly increasing timestamps so generated names never
// collide unless a test freezes it on purpose.
type fakeClock struct {
	at     time.Time
	frozen bool
}

func (c *fakeClock) now() time.Time {
	if !c.frozen {
		c.at = c.at.Add(time.Millisecond)
	}
	return c.at
}

func newUploadFixture(t *testing.T, authn *fakeAuthn, opts Options) *uploadFixture {
	t.Helper()

	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	clock := &fakeClock{at: time.UnixMilli(1700000000000)}
	namer := &TimestampNamer{nowFunc: clock.now}
	service := NewService(NewGatekeeper(authn), store, namer, zap.NewNop())

	router := gin.New()
	RegisterRoutes(router.Group("/"), service, opts)

	return &uploadFixture{router: router, store: store, clock: clock}
}

func authenticated() *fakeAuthn {
	return &fakeAuthn{identity: session.Identity{UserID: uuid.New()}, ok: true}
}

func defaultOptions() Options {
	return Options{MaxUploadSize: 8 * 1024 * 1024, SilentAuthDenial: true}
}

// buildUpload assembles a multipart request carrying one file part.
func buildUpload(t *testing.T, target, fieldName, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func (f *uploadFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *uploadFixture) dirEntries(t *testing.T, bucket Bucket) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(f.store.Dir(bucket))
	if err != nil {
		t.Fatalf("read bucket dir: %v", err)
	}
	return entries
}

func TestImageUploadStored(t *testing.T) {
	fixture := newUploadFixture(t, authenticated(), defaultOptions())

	content := []byte("not really a png")
	rec := fixture.do(buildUpload(t, "/img/", FieldImage, "cat.PNG", "image/png", content))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %q", rec.Code, rec.Body.String())
	}
	pattern := regexp.MustCompile(`^img/image-\d+-cat\.PNG$`)
	if !pattern.MatchString(rec.Body.String()) {
		t.Fatalf("body = %q, want match for %v", rec.Body.String(), pattern)
	}

	entries := fixture.dirEntries(t, BucketImage)
	if len(entries) != 1 {
		t.Fatalf("image dir holds %d files, want 1", len(entries))
	}
	stored, err := os.ReadFile(fixture.store.Dir(BucketImage) + "/" + entries[0].Name())
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Errorf("stored bytes differ from upload")
	}
}

func TestDocumentUploadStored(t *testing.T) {
	fixture := newUploadFixture(t, authenticated(), defaultOptions())

	rec := fixture.do(buildUpload(t, "/document/", FieldDocument, "report.pdf", "application/pdf", []byte("%PDF-1.4")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %q", rec.Code, rec.Body.String())
	}
	pattern := regexp.MustCompile(`^document/document-\d+-report\.pdf$`)
	if !pattern.MatchString(rec.Body.String()) {
		t.Fatalf("body = %q, want match for %v", rec.Body.String(), pattern)
	}
	if len(fixture.dirEntries(t, BucketDocument)) != 1 {
		t.Fatal("document dir does not hold the upload")
	}
	if len(fixture.dirEntries(t, BucketImage)) != 0 {
		t.Fatal("image dir written for a document upload")
	}
}

func TestUnauthenticatedUploadSilentlyDenied(t *testing.T) {
	fixture := newUploadFixture(t, &fakeAuthn{ok: false}, defaultOptions())

	rec := fixture.do(buildUpload(t, "/img/", FieldImage, "cat.png", "image/png", []byte("png")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "Image not attached" {
		t.Fatalf("body = %q, want the not-attached sentinel", rec.Body.String())
	}
	if len(fixture.dirEntries(t, BucketImage)) != 0 || len(fixture.dirEntries(t, BucketDocument)) != 0 {
		t.Fatal("file written for an unauthenticated caller")
	}
}

func TestUnauthenticatedUploadExplicitDenial(t *testing.T) {
	opts := defaultOptions()
	opts.SilentAuthDenial = false
	fixture := newUploadFixture(t, &fakeAuthn{ok: false}, opts)

	rec := fixture.do(buildUpload(t, "/img/", FieldImage, "cat.png", "image/png", []byte("png")))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec.Body.String() != "Not authenticated" {
		t.Fatalf("body = %q, want explicit denial", rec.Body.String())
	}
	if len(fixture.dirEntries(t, BucketImage)) != 0 {
		t.Fatal("file written for an unauthenticated caller")
	}
}

func TestUnsupportedTypeRejected(t *testing.T) {
	fixture := newUploadFixture(t, authenticated(), defaultOptions())

	cases := []struct {
		name        string
		filename    string
		contentType string
	}{
		{"bad extension", "cat.svg", "image/png"},
		{"bad mime", "cat.png", "application/zip"},
	}
	for _, tc := range cases {
		rec := fixture.do(buildUpload(t, "/img/", FieldImage, tc.filename, tc.contentType, []byte("data")))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", tc.name, rec.Code)
		}
		if rec.Body.String() != "Unsupported file type" {
			t.Fatalf("%s: body = %q, want unsupported-type message", tc.name, rec.Body.String())
		}
	}
	if len(fixture.dirEntries(t, BucketImage)) != 0 || len(fixture.dirEntries(t, BucketDocument)) != 0 {
		t.Fatal("file written despite rejection")
	}
}

func TestMissingFileSentinel(t *testing.T) {
	fixture := newUploadFixture(t, authenticated(), defaultOptions())

	// A form with only a text field carries no file part.
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField(FieldImage, "not a file"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/img/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := fixture.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "Image not attached" {
		t.Fatalf("body = %q, want the not-attached sentinel", rec.Body.String())
	}

	rec = fixture.do(httptest.NewRequest(http.MethodPost, "/document/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "Document not attached" {
		t.Fatalf("bare request: status %d body %q, want the not-attached sentinel", rec.Code, rec.Body.String())
	}
}

func TestDocumentUploadedUnderImageField(t *testing.T) {
	fixture := newUploadFixture(t, authenticated(), defaultOptions())

	// The declared type decides the bucket, not the endpoint.
	rec := fixture.do(buildUpload(t, "/img/", FieldImage, "report.pdf", "application/pdf", []byte("%PDF-1.4")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %q", rec.Code, rec.Body.String())
	}
	pattern := regexp.MustCompile(`^document/image-\d+-report\.pdf$`)
	if !pattern.MatchString(rec.Body.String()) {
		t.Fatalf("body = %q, want match for %v", rec.Body.String(), pattern)
	}
	if len(fixture.dirEntries(t, BucketDocument)) != 1 {
		t.Fatal("document dir does not hold the upload")
	}
	if len(fixture.dirEntries(t, BucketImage)) != 0 {
		t.Fatal("image dir written for a document upload")
	}
}

func TestRepeatUploadsStayDistinct(t *testing.T) {
	fixture := newUploadFixture(t, authenticated(), defaultOptions())

	for i := 0; i < 2; i++ {
		rec := fixture.do(buildUpload(t, "/img/", FieldImage, "cat.png", "image/png", []byte("png")))
		if rec.Code != http.StatusOK {
			t.Fatalf("upload %d: status = %d, want 200", i, rec.Code)
		}
	}

	if got := len(fixture.dirEntries(t, BucketImage)); got != 2 {
		t.Fatalf("image dir holds %d files, want 2 distinct files", got)
	}
}

func TestSameMillisecondCollisionRefused(t *testing.T) {
	fixture := newUploadFixture(t, authenticated(), defaultOptions())
	fixture.clock.frozen = true

	first := fixture.do(buildUpload(t, "/img/", FieldImage, "cat.png", "image/png", []byte("first")))
	if first.Code != http.StatusOK {
		t.Fatalf("first upload: status = %d, want 200", first.Code)
	}

	second := fixture.do(buildUpload(t, "/img/", FieldImage, "cat.png", "image/png", []byte("second")))
	if second.Code != http.StatusInternalServerError {
		t.Fatalf("colliding upload: status = %d, want 500", second.Code)
	}
	if second.Body.String() != "Upload failed" {
		t.Fatalf("colliding upload body = %q, want failure message", second.Body.String())
	}

	entries := fixture.dirEntries(t, BucketImage)
	if len(entries) != 1 {
		t.Fatalf("image dir holds %d files, want the first upload only", len(entries))
	}
	stored, err := os.ReadFile(fixture.store.Dir(BucketImage) + "/" + entries[0].Name())
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(stored, []byte("first")) {
		t.Errorf("first upload clobbered by the collision")
	}
}

func TestUploadTooLarge(t *testing.T) {
	opts := defaultOptions()
	opts.MaxUploadSize = 1024
	fixture := newUploadFixture(t, authenticated(), opts)

	rec := fixture.do(buildUpload(t, "/img/", FieldImage, "cat.png", "image/png", bytes.Repeat([]byte("a"), 4096)))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if len(fixture.dirEntries(t, BucketImage)) != 0 {
		t.Fatal("partial file left behind by an oversized upload")
	}
}
