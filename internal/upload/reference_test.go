package upload

import (
	"strings"
	"testing"
)

func TestToReference(t *testing.T) {
	cases := []struct {
		name       string
		storedPath string
		want       string
	}{
		{"image path", "/srv/orphandb/public/img/image-1700000000000-cat.png", "img/image-1700000000000-cat.png"},
		{"document path", "/srv/orphandb/public/document/document-1700000000000-report.pdf", "document/document-1700000000000-report.pdf"},
		{"object key", "img/image-1-cat.png", "img/image-1-cat.png"},
		{"relative path", "public/document/scan.pdf", "document/scan.pdf"},
		{"deepest segment wins", "/home/img/public/document/report.pdf", "document/report.pdf"},
	}

	for _, tc := range cases {
		got, err := ToReference(tc.storedPath)
		if err != nil {
			t.Fatalf("%s: ToReference(%q): %v", tc.name, tc.storedPath, err)
		}
		if got != tc.want {
			t.Errorf("%s: ToReference(%q) = %q, want %q", tc.name, tc.storedPath, got, tc.want)
		}

		segment, _, _ := strings.Cut(got, "/")
		if segment != BucketImage.Segment() && segment != BucketDocument.Segment() {
			t.Errorf("%s: reference %q does not start with a bucket segment", tc.name, got)
		}
	}
}

func TestToReferenceNoBucketSegment(t *testing.T) {
	paths := []string{
		"/srv/orphandb/public/uploads/cat.png",
		"cat.png",
		"/tmp/img", // a file named after the segment is not a bucket directory
		"",
	}
	for _, p := range paths {
		if got, err := ToReference(p); err == nil {
			t.Errorf("ToReference(%q) = %q, want error", p, got)
		}
	}
}
