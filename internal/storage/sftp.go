package storage

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"slack_image_relay/internal/logger"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// DefaultCleanupCutoff is how old a file must be before
// CleanupDirectoryFiles removes it.
const DefaultCleanupCutoff = 365 * 24 * time.Hour

// sftpSession is the slice of an SFTP client the backend needs. Kept
// small so tests can substitute a fake.
type sftpSession interface {
	ReadDir(path string) ([]os.FileInfo, error)
	MkdirAll(path string) error
	Create(path string) (io.WriteCloser, error)
	Remove(path string) error
	Close() error
}

// sftpClientSession adapts *sftp.Client to sftpSession.
type sftpClientSession struct {
	*sftp.Client
}

func (s sftpClientSession) Create(path string) (io.WriteCloser, error) {
	return s.Client.Create(path)
}

// SFTPBackend stores files on a remote filesystem. The session is
// established lazily on first use and reused for the lifetime of the
// backend instance.
type SFTPBackend struct {
	host     string
	username string
	password string
	port     int

	session sftpSession
	conn    io.Closer
}

func NewSFTPBackend(host, username, password string, port int) *SFTPBackend {
	return &SFTPBackend{
		host:     host,
		username: username,
		password: password,
		port:     port,
	}
}

// getOrConnect returns the cached session, dialing on first use.
func (b *SFTPBackend) getOrConnect() (sftpSession, error) {
	if b.session != nil {
		return b.session, nil
	}

	addr := net.JoinHostPort(b.host, strconv.Itoa(b.port))
	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            b.username,
		Auth:            []ssh.AuthMethod{ssh.Password(b.password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	})
	if err != nil {
		return nil, classifyDialError(addr, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: failed to open sftp session on %s: %v", ErrConnection, addr, err)
	}

	logger.Info.Printf("Connected to SFTP server %s", addr)
	b.session = sftpClientSession{client}
	b.conn = conn
	return b.session, nil
}

// classifyDialError separates rejected credentials from an unreachable
// or misbehaving host.
func classifyDialError(addr string, err error) error {
	if strings.Contains(err.Error(), "unable to authenticate") {
		return fmt.Errorf("%w: %s: %v", ErrAuthentication, addr, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrConnection, addr, err)
}

// IsFileInDirectory reports whether fileName is listed in directoryPath.
// A missing directory is created as a side effect and reported as "file
// not present".
func (b *SFTPBackend) IsFileInDirectory(ctx context.Context, directoryPath, fileName string) (bool, error) {
	sess, err := b.getOrConnect()
	if err != nil {
		return false, err
	}

	entries, err := sess.ReadDir(directoryPath)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := sess.MkdirAll(directoryPath); mkErr != nil {
				return false, fmt.Errorf("failed to create directory %s: %w", directoryPath, mkErr)
			}
			logger.Info.Printf("Directory %s created", directoryPath)
			return false, nil
		}
		return false, fmt.Errorf("failed to list directory %s: %w", directoryPath, err)
	}

	for _, entry := range entries {
		if entry.Name() == fileName {
			return true, nil
		}
	}
	return false, nil
}

// SaveFile writes data to fullPath, truncating any existing file.
func (b *SFTPBackend) SaveFile(ctx context.Context, data []byte, fullPath string) error {
	sess, err := b.getOrConnect()
	if err != nil {
		return err
	}

	file, err := sess.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}

	return file.Close()
}

// CleanupDirectoryFiles removes files in directoryPath whose modified
// time is older than the cutoff. A zero cutoff defaults to about a year.
func (b *SFTPBackend) CleanupDirectoryFiles(directoryPath string, cutoff time.Duration) error {
	if cutoff == 0 {
		cutoff = DefaultCleanupCutoff
	}

	sess, err := b.getOrConnect()
	if err != nil {
		return err
	}

	entries, err := sess.ReadDir(directoryPath)
	if err != nil {
		return fmt.Errorf("failed to list directory %s: %w", directoryPath, err)
	}

	oldest := time.Now().Add(-cutoff)
	for _, entry := range entries {
		if entry.IsDir() || !entry.ModTime().Before(oldest) {
			continue
		}
		path := directoryPath + "/" + entry.Name()
		if err := sess.Remove(path); err != nil {
			return fmt.Errorf("failed to remove expired file %s: %w", path, err)
		}
		logger.Debug.Printf("Removed expired file %s", path)
	}

	return nil
}

// Close tears down the cached session and connection, if any.
func (b *SFTPBackend) Close() error {
	if b.session == nil {
		return nil
	}
	err := b.session.Close()
	if b.conn != nil {
		if connErr := b.conn.Close(); err == nil {
			err = connErr
		}
		b.conn = nil
	}
	b.session = nil
	return err
}
