package config

import (
	"os"
	"testing"
	"time"
)

var configVars = []string{
	"CREDENTIALS_PATH",
	"STORAGE_BACKEND",
	"S3_BUCKET",
	"GALLERY_PATH",
	"EXCLUDE_THREADED_IMAGES",
	"ACCEPTABLE_FILE_FORMATS",
	"CLEANUP_MAX_AGE_DAYS",
	"DB_PATH",
	"LOG_PATH",
	"LOG_LEVEL",
	"PORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.StorageBackend != BackendSFTP {
		t.Errorf("Expected default backend %q, got %q", BackendSFTP, cfg.StorageBackend)
	}
	if cfg.GalleryPath != DefaultGalleryPath {
		t.Errorf("Expected default gallery path %q, got %q", DefaultGalleryPath, cfg.GalleryPath)
	}
	if len(cfg.AcceptableFileFormats) != len(defaultFileFormats) {
		t.Errorf("Expected %d default formats, got %d", len(defaultFileFormats), len(cfg.AcceptableFileFormats))
	}
	if cfg.ExcludeThreadedImages {
		t.Error("Expected threaded-image exclusion disabled by default")
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.CleanupMaxFileAge != 0 {
		t.Errorf("Expected directory cleanup disabled by default, got %v", cfg.CleanupMaxFileAge)
	}
}

func TestLoadCleanupMaxAge(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"thirty days", "30", 30 * 24 * time.Hour},
		{"zero disables", "0", 0},
		{"negative ignored", "-5", 0},
		{"malformed ignored", "a month", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CLEANUP_MAX_AGE_DAYS", tt.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if cfg.CleanupMaxFileAge != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, cfg.CleanupMaxFileAge)
			}
		})
	}
}

func TestLoadS3RequiresBucket(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "s3")

	if _, err := Load(); err == nil {
		t.Error("Expected error for missing S3_BUCKET, got nil")
	}

	t.Setenv("S3_BUCKET", "my-gallery-bucket")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.S3Bucket != "my-gallery-bucket" {
		t.Errorf("Expected bucket my-gallery-bucket, got %s", cfg.S3Bucket)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "ftp")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown backend, got nil")
	}
}

func TestLoadGalleryPathExplicitlyEmpty(t *testing.T) {
	clearEnv(t)
	t.Setenv("GALLERY_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.GalleryPath != "" {
		t.Errorf("Expected empty gallery path, got %q", cfg.GalleryPath)
	}
}

func TestLoadCustomFormats(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCEPTABLE_FILE_FORMATS", "JPG, png ,jpeg")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := []string{"jpg", "png", "jpeg"}
	if len(cfg.AcceptableFileFormats) != len(want) {
		t.Fatalf("Expected %d formats, got %v", len(want), cfg.AcceptableFileFormats)
	}
	for i, f := range want {
		if cfg.AcceptableFileFormats[i] != f {
			t.Errorf("Expected format %q at %d, got %q", f, i, cfg.AcceptableFileFormats[i])
		}
	}
}

func TestLoadExcludeThreadedImages(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXCLUDE_THREADED_IMAGES", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !cfg.ExcludeThreadedImages {
		t.Error("Expected threaded-image exclusion enabled")
	}
}
