// Package storage abstracts the two interchangeable file destinations:
// an S3 object store and a remote filesystem reached over SFTP.
package storage

import (
	"context"
	"errors"
	"fmt"

	"slack_image_relay/internal/config"
	"slack_image_relay/internal/credentials"
)

// Session setup failures, distinct so callers can tell bad credentials
// from an unreachable host.
var (
	ErrAuthentication = errors.New("storage backend authentication failed")
	ErrConnection     = errors.New("storage backend connection failed")
)

// Backend is the contract both variants implement.
//
// IsFileInDirectory must not fail for a missing directory: that case is
// "file not present". The SFTP variant additionally creates the missing
// directory before reporting false.
type Backend interface {
	IsFileInDirectory(ctx context.Context, directoryPath, fileName string) (bool, error)
	SaveFile(ctx context.Context, data []byte, fullPath string) error
}

// New maps the configured backend selector to a constructor. Selection
// is a configuration-time choice, not runtime dispatch.
func New(cfg *config.Config, creds *credentials.AppCredentials) (Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		return NewS3Backend(cfg.S3Bucket)
	case config.BackendSFTP:
		return NewSFTPBackend(creds.SFTPHost, creds.SFTPUsername, creds.SFTPPassword, creds.SFTPPort), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
