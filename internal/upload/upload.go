// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package upload stages multipart file uploads to a local temporary
// directory. Each staged file gets a collision-free name and is removed by
// Batch.Cleanup once the caller is done with it, whatever the outcome.
package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	// DefaultMaxFileSize is the per-file ceiling in bytes.
	DefaultMaxFileSize = 5_000_000

	// maxFieldSize caps a single non-file form value.
	maxFieldSize = 1 << 20

	// maxFormOverhead bounds the non-file portion of a request body.
	maxFormOverhead = 4 << 20
)

var (
	// ErrFileTooLarge is returned when a file part exceeds the size ceiling.
	ErrFileTooLarge = errors.New("upload: file exceeds size limit")

	// ErrFieldTooLarge is returned when a plain form value is oversized.
	ErrFieldTooLarge = errors.New("upload: form value exceeds size limit")
)

// File is a staged upload on local disk.
type File struct {
	Field        string // form field the part arrived in, e.g. "titleImg"
	OriginalName string // client-supplied filename
	Path         string // staged location on disk
	DeclaredType string // Content-Type header of the part
	DetectedType string // sniffed from the content
	Size         int64
}

// IsImage reports whether the staged content is an image. The sniffed type
// is authoritative; the declared type is only a fallback when sniffing
// produced nothing useful.
func (f *File) IsImage() bool {
	if f.DetectedType != "" && f.DetectedType != "application/octet-stream" {
		return strings.HasPrefix(f.DetectedType, "image/")
	}
	return strings.HasPrefix(f.DeclaredType, "image/")
}

// Batch is the result of staging one request: its form values and the
// staged files keyed by field name.
type Batch struct {
	Values url.Values
	Files  map[string]*File
}

// File returns the staged file for field, or nil when none was submitted.
func (b *Batch) File(field string) *File {
	if b == nil {
		return nil
	}
	return b.Files[field]
}

// Cleanup removes every staged file. Safe to call more than once.
func (b *Batch) Cleanup() {
	if b == nil {
		return
	}
	for field, f := range b.Files {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("temp upload cleanup failed", "error", err, "path", f.Path)
		}
		delete(b.Files, field)
	}
}

// Handler stages uploads into a single directory.
type Handler struct {
	dir         string
	maxFileSize int64
}

// New creates a Handler that stages files in dir, creating it if needed.
// A non-positive maxFileSize falls back to DefaultMaxFileSize.
func New(dir string, maxFileSize int64) (*Handler, error) {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Handler{dir: dir, maxFileSize: maxFileSize}, nil
}

// MaxFileSize returns the per-file ceiling in bytes.
func (h *Handler) MaxFileSize() int64 {
	return h.maxFileSize
}

// Stage reads the request body. Multipart bodies are streamed part by part:
// file parts named in fields are written to disk, other file parts are
// discarded, and plain parts become form values. Any other body is parsed
// as a URL-encoded form. On error nothing stays on disk.
func (h *Handler) Stage(w http.ResponseWriter, r *http.Request, fields ...string) (*Batch, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		return &Batch{Values: r.PostForm, Files: map[string]*File{}}, nil
	}

	// Bound the whole body; individual parts are checked below.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize*int64(len(fields))+maxFormOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("multipart reader: %w", err)
	}

	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f] = true
	}

	batch := &Batch{Values: url.Values{}, Files: map[string]*File{}}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			batch.Cleanup()
			return nil, wrapBodyErr("read multipart", err)
		}

		field := part.FormName()
		if part.FileName() == "" {
			val, err := readValue(part)
			part.Close()
			if err != nil {
				batch.Cleanup()
				return nil, err
			}
			batch.Values.Add(field, val)
			continue
		}

		if !allowed[field] || batch.Files[field] != nil {
			io.Copy(io.Discard, part)
			part.Close()
			continue
		}

		staged, err := h.stageFile(field, part.FileName(), part.Header.Get("Content-Type"), part)
		part.Close()
		if err != nil {
			batch.Cleanup()
			return nil, err
		}
		if staged != nil {
			batch.Files[field] = staged
		}
	}

	return batch, nil
}

// stageFile writes one file part to disk. Empty parts (a file input left
// blank) are not staged and yield (nil, nil).
func (h *Handler) stageFile(field, originalName, declaredType string, src io.Reader) (*File, error) {
	path := filepath.Join(h.dir, StagedName(originalName))
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(out, io.LimitReader(src, h.maxFileSize+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > h.maxFileSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		os.Remove(path)
		return nil, wrapBodyErr("write temp file", err)
	}
	if n == 0 {
		os.Remove(path)
		return nil, nil
	}

	detected := ""
	if mt, err := mimetype.DetectFile(path); err == nil {
		detected = mt.String()
		// Strip parameters such as "; charset=utf-8".
		if i := strings.IndexByte(detected, ';'); i != -1 {
			detected = detected[:i]
		}
	}

	return &File{
		Field:        field,
		OriginalName: originalName,
		Path:         path,
		DeclaredType: declaredType,
		DetectedType: detected,
		Size:         n,
	}, nil
}

// readValue reads a plain form part, enforcing maxFieldSize.
func readValue(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxFieldSize+1))
	if err != nil {
		return "", wrapBodyErr("read form value", err)
	}
	if len(b) > maxFieldSize {
		return "", ErrFieldTooLarge
	}
	return string(b), nil
}

// wrapBodyErr maps the MaxBytesReader limit onto ErrFileTooLarge so the
// caller sees a single request-level condition.
func wrapBodyErr(op string, err error) error {
	if errors.Is(err, ErrFileTooLarge) {
		return err
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrFileTooLarge
	}
	return fmt.Errorf("%s: %w", op, err)
}

// StagedName builds a collision-free file name from a random token and the
// original name without its extension. Dots and any other characters that
// are unsafe in a path or URL are replaced with underscores.
func StagedName(originalName string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	name := sb.String()
	if name == "" || name == "_" {
		name = "file"
	}
	return uuid.NewString() + "-" + name
}
