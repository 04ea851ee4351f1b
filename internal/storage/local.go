package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps objects as plain files under a base directory,
// mirroring the opaque object path as a relative file path.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	return filepath.Join(ls.basePath, cleaned), nil
}

func (ls *LocalStorage) Save(ctx context.Context, path string, data io.Reader, size int64, contentType string) error {
	filePath, err := ls.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, data)
	return err
}

func (ls *LocalStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	filePath, err := ls.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s not found: %w", path, err)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Delete(ctx context.Context, path string) error {
	filePath, err := ls.resolve(path)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}
