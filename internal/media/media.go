// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media turns staged uploads into hosted image URLs and removes
// hosted images again. Remote failures never propagate: they are logged
// and reported as an absent result, because the database stays the
// system of record whether or not the remote asset exists.
package media

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ObjectStore is the subset of the storage client the adapter needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
	KeyFromURL(rawURL string) (string, bool)
}

// Store uploads and discards catalog images.
type Store struct {
	objects ObjectStore
	prefix  string
}

// New creates a Store writing under prefix. objects may be nil when object
// storage is not configured; every Store call then fails softly.
func New(objects ObjectStore, prefix string) *Store {
	return &Store{objects: objects, prefix: strings.Trim(prefix, "/")}
}

// Enabled reports whether a backing object store is configured.
func (s *Store) Enabled() bool {
	return s.objects != nil
}

// Key maps a local file to its remote key. The mapping depends only on the
// file name, so uploading the same staged file twice overwrites the first
// copy instead of creating a duplicate.
func (s *Store) Key(localPath, contentType string) string {
	name := filepath.Base(localPath)
	if ext := filepath.Ext(name); ext == "" {
		name += extensionFor(contentType)
	}
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Store uploads the file at localPath and returns its public URL, or ""
// if the upload could not be completed.
func (s *Store) Store(ctx context.Context, localPath string) string {
	if s.objects == nil {
		slog.Warn("media upload skipped: object storage not configured", "path", localPath)
		return ""
	}

	f, err := os.Open(localPath)
	if err != nil {
		slog.Warn("media upload failed: open", "error", err, "path", localPath)
		return ""
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		slog.Warn("media upload failed: stat", "error", err, "path", localPath)
		return ""
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectReader(f); err == nil {
		contentType = mt.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		slog.Warn("media upload failed: seek", "error", err, "path", localPath)
		return ""
	}

	key := s.Key(localPath, contentType)
	if err := s.objects.Upload(ctx, key, contentType, f, info.Size()); err != nil {
		slog.Warn("media upload failed", "error", err, "key", key)
		return ""
	}

	slog.Info("media stored", "key", key, "size", info.Size(), "type", contentType)
	return s.objects.FileURL(key)
}

// Discard deletes a stored asset by its key. Failures are logged only.
func (s *Store) Discard(ctx context.Context, assetID string) {
	if s.objects == nil || assetID == "" {
		return
	}
	if err := s.objects.Delete(ctx, assetID); err != nil {
		slog.Warn("media discard failed", "error", err, "key", assetID)
		return
	}
	slog.Info("media discarded", "key", assetID)
}

// AssetID maps a stored URL back to its key. URLs that were not produced
// by this store yield false.
func (s *Store) AssetID(rawURL string) (string, bool) {
	if s.objects == nil || rawURL == "" {
		return "", false
	}
	return s.objects.KeyFromURL(rawURL)
}

// DiscardURL discards the asset behind url. Nil, empty and foreign URLs
// are skipped without contacting the object store.
func (s *Store) DiscardURL(ctx context.Context, url *string) {
	if url == nil {
		return
	}
	id, ok := s.AssetID(*url)
	if !ok {
		return
	}
	s.Discard(ctx, id)
}

// extensionFor returns a file extension for common image MIME types.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "image/avif":
		return ".avif"
	default:
		return ""
	}
}
