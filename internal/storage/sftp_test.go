package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"
)

type fileInfoStub struct {
	name    string
	dir     bool
	modTime time.Time
}

func (f fileInfoStub) Name() string       { return f.name }
func (f fileInfoStub) Size() int64        { return 0 }
func (f fileInfoStub) Mode() os.FileMode  { return 0644 }
func (f fileInfoStub) ModTime() time.Time { return f.modTime }
func (f fileInfoStub) IsDir() bool        { return f.dir }
func (f fileInfoStub) Sys() interface{}   { return nil }

type writeRecorder struct {
	bytes.Buffer
	closed bool
}

func (w *writeRecorder) Close() error {
	w.closed = true
	return nil
}

type fakeSFTPSession struct {
	entries    map[string][]os.FileInfo
	readDirErr error

	mkdirs  []string
	removed []string
	files   map[string]*writeRecorder
	closed  bool
}

func (f *fakeSFTPSession) ReadDir(path string) ([]os.FileInfo, error) {
	if f.readDirErr != nil {
		return nil, f.readDirErr
	}
	entries, ok := f.entries[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return entries, nil
}

func (f *fakeSFTPSession) MkdirAll(path string) error {
	f.mkdirs = append(f.mkdirs, path)
	return nil
}

func (f *fakeSFTPSession) Create(path string) (io.WriteCloser, error) {
	if f.files == nil {
		f.files = make(map[string]*writeRecorder)
	}
	w := &writeRecorder{}
	f.files[path] = w
	return w, nil
}

func (f *fakeSFTPSession) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeSFTPSession) Close() error {
	f.closed = true
	return nil
}

func newTestSFTPBackend(session sftpSession) *SFTPBackend {
	b := NewSFTPBackend("sftp.example.com", "wp", "secret", 22)
	b.session = session
	return b
}

func TestSFTPIsFileInDirectory(t *testing.T) {
	session := &fakeSFTPSession{
		entries: map[string][]os.FileInfo{
			"gallery/general": {
				fileInfoStub{name: "some_image.jpg"},
				fileInfoStub{name: "other.png"},
			},
		},
	}
	backend := newTestSFTPBackend(session)

	got, err := backend.IsFileInDirectory(context.Background(), "gallery/general", "some_image.jpg")
	if err != nil {
		t.Fatalf("IsFileInDirectory() error = %v", err)
	}
	if !got {
		t.Error("Expected true for listed file")
	}

	got, err = backend.IsFileInDirectory(context.Background(), "gallery/general", "missing.jpg")
	if err != nil {
		t.Fatalf("IsFileInDirectory() error = %v", err)
	}
	if got {
		t.Error("Expected false for unlisted file")
	}
}

func TestSFTPIsFileInDirectoryCreatesMissingDirectory(t *testing.T) {
	session := &fakeSFTPSession{entries: map[string][]os.FileInfo{}}
	backend := newTestSFTPBackend(session)

	got, err := backend.IsFileInDirectory(context.Background(), "gallery/new-channel", "some_image.jpg")
	if err != nil {
		t.Fatalf("IsFileInDirectory() error = %v", err)
	}
	if got {
		t.Error("Expected false for missing directory")
	}
	if len(session.mkdirs) != 1 || session.mkdirs[0] != "gallery/new-channel" {
		t.Errorf("Expected directory creation, got %v", session.mkdirs)
	}
}

func TestSFTPIsFileInDirectoryListError(t *testing.T) {
	session := &fakeSFTPSession{readDirErr: errors.New("permission denied")}
	backend := newTestSFTPBackend(session)

	if _, err := backend.IsFileInDirectory(context.Background(), "gallery/general", "a.jpg"); err == nil {
		t.Error("Expected error for listing failure, got nil")
	}
	if len(session.mkdirs) != 0 {
		t.Error("Expected no directory creation for non-missing errors")
	}
}

func TestSFTPSaveFile(t *testing.T) {
	session := &fakeSFTPSession{}
	backend := newTestSFTPBackend(session)
	data := []byte("this is a file")

	if err := backend.SaveFile(context.Background(), data, "gallery/general/some_image.jpg"); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	file := session.files["gallery/general/some_image.jpg"]
	if file == nil {
		t.Fatal("Expected file to be created")
	}
	if file.String() != string(data) {
		t.Errorf("Unexpected file contents %q", file.String())
	}
	if !file.closed {
		t.Error("Expected file to be closed")
	}
}

func TestSFTPCleanupDirectoryFiles(t *testing.T) {
	now := time.Now()
	session := &fakeSFTPSession{
		entries: map[string][]os.FileInfo{
			"gallery/general": {
				fileInfoStub{name: "ancient.jpg", modTime: now.Add(-2 * DefaultCleanupCutoff)},
				fileInfoStub{name: "recent.jpg", modTime: now.Add(-time.Hour)},
				fileInfoStub{name: "old-subdir", dir: true, modTime: now.Add(-2 * DefaultCleanupCutoff)},
			},
		},
	}
	backend := newTestSFTPBackend(session)

	if err := backend.CleanupDirectoryFiles("gallery/general", 0); err != nil {
		t.Fatalf("CleanupDirectoryFiles() error = %v", err)
	}

	if len(session.removed) != 1 || session.removed[0] != "gallery/general/ancient.jpg" {
		t.Errorf("Expected only the expired file removed, got %v", session.removed)
	}
}

func TestSFTPClose(t *testing.T) {
	session := &fakeSFTPSession{}
	backend := newTestSFTPBackend(session)

	if err := backend.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !session.closed {
		t.Error("Expected session to be closed")
	}
	if backend.session != nil {
		t.Error("Expected session handle to be cleared")
	}
}

func TestClassifyDialError(t *testing.T) {
	authErr := classifyDialError("sftp.example.com:22",
		errors.New("ssh: handshake failed: ssh: unable to authenticate, attempted methods [none password]"))
	if !errors.Is(authErr, ErrAuthentication) {
		t.Errorf("Expected authentication error, got %v", authErr)
	}

	connErr := classifyDialError("sftp.example.com:22", errors.New("dial tcp: connection refused"))
	if !errors.Is(connErr, ErrConnection) {
		t.Errorf("Expected connection error, got %v", connErr)
	}
}
