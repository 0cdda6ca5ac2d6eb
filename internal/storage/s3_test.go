// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import "testing"

func TestNewWithoutCredentials(t *testing.T) {
	c, err := New(Config{Endpoint: "https://s3.example.com"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c != nil {
		t.Error("expected nil client when credentials are missing")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(Config{Endpoint: "https://s3.example.com", AccessKey: "a", SecretKey: "b"})
	if err == nil {
		t.Error("expected an error without a bucket")
	}
}

func TestFileURLAndKeyRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantURL string
	}{
		{
			name:    "path style",
			cfg:     Config{Endpoint: "https://s3.example.com/", AccessKey: "a", SecretKey: "b", Bucket: "media"},
			wantURL: "https://s3.example.com/media/catalog/cover.png",
		},
		{
			name:    "public url",
			cfg:     Config{Endpoint: "https://s3.example.com", AccessKey: "a", SecretKey: "b", Bucket: "media", PublicURL: "https://cdn.example.com/"},
			wantURL: "https://cdn.example.com/catalog/cover.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got := c.FileURL("catalog/cover.png")
			if got != tt.wantURL {
				t.Errorf("FileURL = %q, want %q", got, tt.wantURL)
			}
			key, ok := c.KeyFromURL(got)
			if !ok || key != "catalog/cover.png" {
				t.Errorf("KeyFromURL(%q) = %q, %v", got, key, ok)
			}
		})
	}
}

func TestKeyFromForeignURL(t *testing.T) {
	c, _ := New(Config{Endpoint: "https://s3.example.com", AccessKey: "a", SecretKey: "b", Bucket: "media"})
	for _, u := range []string{
		"https://elsewhere.example.com/media/a.png",
		"https://s3.example.com/other/a.png",
		"https://s3.example.com/media/",
		"",
	} {
		if key, ok := c.KeyFromURL(u); ok {
			t.Errorf("KeyFromURL(%q) = %q, want no match", u, key)
		}
	}
}
