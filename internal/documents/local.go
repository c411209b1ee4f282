package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var errMissingBaseDir = errors.New("documents: base directory is required")

// LocalStorage stores documents under a base directory on the local
// filesystem, the default single-operator deployment.
type LocalStorage struct {
	base string
}

// NewLocalStorage returns a Storage rooted at the given directory.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, errMissingBaseDir
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &LocalStorage{base: abs}, nil
}

func (s *LocalStorage) path(key string) string {
	return filepath.Join(s.base, filepath.FromSlash(key))
}

func (s *LocalStorage) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

func (s *LocalStorage) Save(_ context.Context, key string, source io.Reader) (string, error) {
	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if _, err := io.Copy(out, source); err != nil {
		out.Close()
		os.Remove(target)
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return target, nil
}

func (s *LocalStorage) EnsureDir(_ context.Context, dir string) (string, error) {
	target := s.path(dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return target, nil
}
