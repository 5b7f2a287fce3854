package media

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wadjakorntonsri/dance-trainer/pkg/core/backup"
	"github.com/wadjakorntonsri/dance-trainer/pkg/ports"
)

// FileStore keeps local video copies in a single directory.
type FileStore struct {
	dir string
	now func() time.Time
}

func NewFileStore(dir string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir media: %w", err)
	}
	return &FileStore{dir: abs, now: time.Now}, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

// Save copies r into a new video_<millis>.mp4 file and returns its file:// locator.
func (s *FileStore) Save(r io.Reader) (string, error) {
	name := fmt.Sprintf("video_%d.mp4", s.now().UnixMilli())
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("copy %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return Locator(path), nil
}

// Remove deletes the file behind a file:// locator inside the store. Other
// locators and already missing files are ignored.
func (s *FileStore) Remove(locator string) error {
	p, ok := s.Resolve(locator)
	if !ok {
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path resolves a served file name inside the store. Names containing
// separators are rejected.
func (s *FileStore) Path(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// Resolve returns the path behind a file:// locator only when it names a
// file directly inside the store directory.
func (s *FileStore) Resolve(locator string) (string, bool) {
	p, ok := backup.LocalPath(locator)
	if !ok {
		return "", false
	}
	p = filepath.Clean(filepath.FromSlash(p))
	if filepath.Dir(p) != s.dir {
		return "", false
	}
	return s.Path(filepath.Base(p))
}

// LocatorFor returns the locator of a stored file name.
func (s *FileStore) LocatorFor(name string) string {
	return Locator(filepath.Join(s.dir, name))
}

// Locator turns an absolute path into a file:// URL.
func Locator(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

var _ ports.MediaStore = (*FileStore)(nil)
