package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Upload is a file written to the upload directory for the duration of one request.
type Upload struct {
	Path     string
	Name     string
	MIMEType string
}

// Read returns the stored bytes.
func (u *Upload) Read() ([]byte, error) {
	return os.ReadFile(u.Path)
}

// Remove deletes the stored file. Removing an already-deleted upload is not an error.
func (u *Upload) Remove() error {
	if err := os.Remove(u.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// UploadStore writes uploaded images under a single directory.
type UploadStore struct {
	dir string
	now func() time.Time
}

func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &UploadStore{dir: dir, now: time.Now}, nil
}

func (s *UploadStore) Dir() string { return s.dir }

// Save writes r under a unique name derived from filename. The caller owns the
// returned upload and must Remove it.
func (s *UploadStore) Save(r io.Reader, filename string) (*Upload, error) {
	ext := Extension(filename)
	mimeType, ok := allowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("file type %q not allowed", ext)
	}

	name := uuid.NewString() + "_" + SanitizeFilename(filename)
	if !strings.HasSuffix(strings.ToLower(name), "."+ext) {
		name = uuid.NewString() + "." + ext
	}
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close upload: %w", err)
	}

	return &Upload{Path: path, Name: name, MIMEType: mimeType}, nil
}

// RemoveOlderThan deletes regular files whose modification time is older than age.
func (s *UploadStore) RemoveOlderThan(age time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read upload directory: %w", err)
	}

	deadline := s.now().Add(-age)
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(deadline) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}

// AllowedFile reports whether filename carries one of the accepted image extensions.
func AllowedFile(filename string) bool {
	_, ok := allowedExtensions[Extension(filename)]
	return ok
}

// Extension returns the lower-cased extension without the dot, or "" if there is none.
func Extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// SanitizeFilename reduces a client-supplied name to a safe ASCII basename.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)

	var b strings.Builder
	for _, r := range filename {
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}

	name := strings.Join(strings.Fields(b.String()), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}
