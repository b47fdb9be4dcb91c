package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backend selectors.
const (
	BackendS3   = "s3"
	BackendSFTP = "sftp"
)

// DefaultGalleryPath is the base directory channel galleries are created
// under when GALLERY_PATH is not set. Setting GALLERY_PATH to an empty
// string drops the base entirely and files land under the channel name.
const DefaultGalleryPath = "public_html/wp-content/gallery"

// defaultFileFormats lists the image formats accepted when
// ACCEPTABLE_FILE_FORMATS is not set.
var defaultFileFormats = []string{
	"avif",
	"gif",
	"heic",
	"heif",
	"jpeg",
	"jpg",
	"jpeg2000",
	"png",
	"raw",
	"svg",
	"tiff",
}

// Config holds all configuration for the application
type Config struct {
	CredentialsPath       string
	StorageBackend        string
	S3Bucket              string
	GalleryPath           string
	ExcludeThreadedImages bool
	AcceptableFileFormats []string
	// CleanupMaxFileAge expires files older than this from a channel
	// directory after each save. Zero disables the sweep.
	CleanupMaxFileAge time.Duration
	DBPath            string
	LogPath           string
	LogLevel          string
	Port              string
}

// Load returns a Config struct populated with current configuration
func Load() (*Config, error) {
	c := &Config{}

	var missingVars []string

	c.CredentialsPath = getEnvOrDefault("CREDENTIALS_PATH", "./app-credentials.json")

	c.StorageBackend = strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", BackendSFTP))
	switch c.StorageBackend {
	case BackendS3, BackendSFTP:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q: must be %q or %q",
			c.StorageBackend, BackendS3, BackendSFTP)
	}

	c.S3Bucket = getEnvOrDefault("S3_BUCKET", "")
	if c.StorageBackend == BackendS3 && c.S3Bucket == "" {
		missingVars = append(missingVars, "S3_BUCKET")
	}

	// GALLERY_PATH distinguishes unset from explicitly empty: an empty
	// value means files are stored directly under the channel name.
	if galleryPath, ok := os.LookupEnv("GALLERY_PATH"); ok {
		c.GalleryPath = galleryPath
	} else {
		c.GalleryPath = DefaultGalleryPath
	}

	c.ExcludeThreadedImages = getEnvAsBoolOrDefault("EXCLUDE_THREADED_IMAGES", false)

	formats := getEnvOrDefault("ACCEPTABLE_FILE_FORMATS", "")
	if formats == "" {
		c.AcceptableFileFormats = defaultFileFormats
	} else {
		for _, f := range strings.Split(formats, ",") {
			if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
				c.AcceptableFileFormats = append(c.AcceptableFileFormats, f)
			}
		}
	}

	c.CleanupMaxFileAge = time.Duration(getEnvAsIntOrDefault("CLEANUP_MAX_AGE_DAYS", 0)) * 24 * time.Hour

	// Optional variables with defaults
	c.DBPath = getEnvOrDefault("DB_PATH", "")
	c.LogPath = getEnvOrDefault("LOG_PATH", "")
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", "INFO")
	c.Port = getEnvOrDefault("PORT", "8080")

	if len(missingVars) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	return c, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return defaultValue
	}
	return parsed
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
