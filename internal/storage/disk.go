package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore writes objects under a base directory and serves download links
// from a configured public base URL. Used by tests and object-storage-less
// deployments.
type DiskStore struct {
	baseDir string
	baseURL string
}

func NewDiskStore(baseDir string, baseURL string) *DiskStore {
	return &DiskStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (store *DiskStore) Put(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return err
	}

	targetPath := filepath.Join(store.baseDir, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	file, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("write object %s: %w", cleanKey, err)
	}
	return nil
}

func (store *DiskStore) PresignedGetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	escaped := make([]string, 0)
	for _, segment := range strings.Split(cleanKey, "/") {
		escaped = append(escaped, url.PathEscape(segment))
	}
	return store.baseURL + "/" + strings.Join(escaped, "/"), nil
}

func sanitizeKey(key string) (string, error) {
	cleanKey := strings.Trim(strings.TrimSpace(key), "/")
	if cleanKey == "" {
		return "", fmt.Errorf("empty object key")
	}
	for _, segment := range strings.Split(cleanKey, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("invalid object key %q", key)
		}
	}
	return cleanKey, nil
}
