package upload

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"testing"
)

// pngBytes returns a tiny valid PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

type filePart struct {
	field, name, contentType string
	data                     []byte
}

// multipartRequest builds a POST request with the given values and files.
func multipartRequest(t *testing.T, values url.Values, files ...filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		w.Write(f.data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/item/create", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newHandler(t *testing.T, max int64) (*Handler, string) {
	t.Helper()
	dir := t.TempDir()
	h, err := New(dir, max)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h, dir
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	return len(entries)
}

func TestStageMultipart(t *testing.T) {
	h, dir := newHandler(t, DefaultMaxFileSize)
	img := pngBytes(t)

	req := multipartRequest(t,
		url.Values{"name": {"Foo"}, "category": {"a", "b"}},
		filePart{"titleImg", "box.art.png", "image/png", img},
		filePart{"heroImg", "notes.txt", "text/plain", []byte("plain text, not an image")},
	)

	batch, err := h.Stage(httptest.NewRecorder(), req, "titleImg", "heroImg")
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	defer batch.Cleanup()

	if got := batch.Values.Get("name"); got != "Foo" {
		t.Errorf("name = %q, want Foo", got)
	}
	if got := batch.Values["category"]; len(got) != 2 {
		t.Errorf("category = %v, want two values", got)
	}

	title := batch.File("titleImg")
	if title == nil {
		t.Fatal("titleImg not staged")
	}
	if !strings.HasSuffix(title.Path, "-box_art") {
		t.Errorf("staged path %q should end with the sanitized name", title.Path)
	}
	if title.DetectedType != "image/png" || !title.IsImage() {
		t.Errorf("titleImg detected %q, IsImage=%v", title.DetectedType, title.IsImage())
	}
	if title.Size != int64(len(img)) {
		t.Errorf("size = %d, want %d", title.Size, len(img))
	}

	hero := batch.File("heroImg")
	if hero == nil {
		t.Fatal("heroImg not staged")
	}
	if hero.IsImage() {
		t.Errorf("text file should not count as an image (detected %q)", hero.DetectedType)
	}
	if hero.DeclaredType != "text/plain" {
		t.Errorf("declared type = %q", hero.DeclaredType)
	}

	if n := dirEntries(t, dir); n != 2 {
		t.Errorf("expected 2 staged files, found %d", n)
	}

	batch.Cleanup()
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("Cleanup left %d files behind", n)
	}
	batch.Cleanup() // idempotent
}

func TestStageRejectsOversizedFile(t *testing.T) {
	h, dir := newHandler(t, 16)

	req := multipartRequest(t, url.Values{"name": {"Foo"}},
		filePart{"titleImg", "small.png", "image/png", []byte("0123456789")},
		filePart{"heroImg", "big.png", "image/png", bytes.Repeat([]byte("x"), 17)},
	)

	batch, err := h.Stage(httptest.NewRecorder(), req, "titleImg", "heroImg")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("Stage error = %v, want ErrFileTooLarge", err)
	}
	if batch != nil {
		t.Error("batch should be nil on error")
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("oversized upload left %d files behind", n)
	}
}

func TestStageIgnoresUnknownAndEmptyParts(t *testing.T) {
	h, dir := newHandler(t, DefaultMaxFileSize)

	req := multipartRequest(t, nil,
		filePart{"avatar", "me.png", "image/png", pngBytes(t)},
		filePart{"file", "empty.png", "application/octet-stream", nil},
	)

	batch, err := h.Stage(httptest.NewRecorder(), req, "file")
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	defer batch.Cleanup()

	if batch.File("avatar") != nil {
		t.Error("unexpected field should not be staged")
	}
	if batch.File("file") != nil {
		t.Error("empty file part should not be staged")
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("expected no staged files, found %d", n)
	}
}

func TestStageURLEncoded(t *testing.T) {
	h, _ := newHandler(t, DefaultMaxFileSize)

	form := url.Values{"name": {"RPGs"}, "description": {"Role playing games"}}
	req := httptest.NewRequest(http.MethodPost, "/category/create", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	batch, err := h.Stage(httptest.NewRecorder(), req, "file")
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if batch.Values.Get("name") != "RPGs" {
		t.Errorf("name = %q", batch.Values.Get("name"))
	}
	if len(batch.Files) != 0 {
		t.Errorf("expected no files, got %d", len(batch.Files))
	}
	batch.Cleanup()
}

func TestStagedName(t *testing.T) {
	tests := []struct {
		original string
		suffix   string
	}{
		{"cover.png", "-cover"},
		{"my.cover.art.jpg", "-my_cover_art"},
		{"../../etc/passwd", "-passwd"},
		{`C:\Users\me\hero shot.webp`, "-hero_shot"},
		{"", "-file"},
		{".png", "-file"},
	}
	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			got := StagedName(tt.original)
			if !strings.HasSuffix(got, tt.suffix) {
				t.Errorf("StagedName(%q) = %q, want suffix %q", tt.original, got, tt.suffix)
			}
			if strings.ContainsAny(got, "/.\\ ") {
				t.Errorf("StagedName(%q) = %q contains unsafe characters", tt.original, got)
			}
		})
	}

	if StagedName("a.png") == StagedName("a.png") {
		t.Error("staged names must not collide")
	}
}
