package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes named byte streams under a local root directory, one
// subdirectory per upload category. File names are made collision-resistant
// by prefixing a fresh UUID.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) BaseDir() string { return s.baseDir }

// CategoryDir returns the destination directory for a category, creating it
// if needed.
func (s *Store) CategoryDir(category string) (string, error) {
	dir := filepath.Join(s.baseDir, category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create category directory: %w", err)
	}
	return dir, nil
}

// UniqueName builds a collision-resistant file name keeping the original
// extension.
func (s *Store) UniqueName(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%s_%s%s", uuid.New().String(), sanitizeName(originalName), ext)
}

// Save streams src into <base>/<category>/<unique name> and returns the
// resulting path.
func (s *Store) Save(category, originalName string, src io.Reader) (string, error) {
	dir, err := s.CategoryDir(category)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(dir, s.UniqueName(originalName))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return dst, nil
}

// SaveMultipart saves one multipart attachment under a category.
func (s *Store) SaveMultipart(category string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open attachment: %w", err)
	}
	defer f.Close()
	return s.Save(category, fh.Filename, f)
}

// SessionDir creates a private fragment directory for one chunked upload.
func (s *Store) SessionDir(sessionID string) (string, error) {
	dir := filepath.Join(s.baseDir, "chunks", sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}
	return dir, nil
}

// Exists reports whether path points at a regular file on disk.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		return "file"
	}
	return name
}
