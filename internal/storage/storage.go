package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore keeps uploaded assets as flat files under a single directory.
// Names are generated, never taken from the client.
type FileStore struct {
	Dir string
}

var extByMIME = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

// Allowed reports whether the content type can be stored.
func Allowed(mime string) bool {
	_, ok := extByMIME[normalizeMIME(mime)]
	return ok
}

// Save writes data under a generated name and returns that name.
func (s *FileStore) Save(data []byte, mime string) (string, error) {
	ext, ok := extByMIME[normalizeMIME(mime)]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", mime)
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}
	return name, nil
}

// Open returns the on-disk path for a stored asset name. Names that
// escape the store directory are rejected.
func (s *FileStore) Open(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", os.ErrNotExist
	}
	path := filepath.Join(s.Dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// MIMEFor returns the content type for a stored name, empty if unknown.
func MIMEFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for mime, e := range extByMIME {
		if e == ext {
			return mime
		}
	}
	if ext == ".jpeg" {
		return "image/jpeg"
	}
	return ""
}

func (s *FileStore) Remove(name string) error {
	path, err := s.Open(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func normalizeMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}
