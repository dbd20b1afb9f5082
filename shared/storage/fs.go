package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kibrisacil/classifieds/gallery/domain"
)

var _ domain.BlobStore = (*FSStore)(nil)

// FSStore keeps image blobs on the local filesystem. Used for local runs
// and tests; production deployments point at MinIO instead.
type FSStore struct {
	dir string
	// baseURL is the path prefix the HTTP layer serves dir under
	baseURL string
}

func NewFSStore(dir string, baseURL string) *FSStore {
	return &FSStore{
		dir:     dir,
		baseURL: baseURL,
	}
}

// Put writes one blob under the store directory, creating parents as needed
func (s *FSStore) Put(_ context.Context, key string, content []byte, _ string) error {
	localPath := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	if err := os.WriteFile(localPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	return nil
}

// Remove deletes one blob; a missing file is not an error
func (s *FSStore) Remove(_ context.Context, key string) error {
	localPath := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image file: %w", err)
	}

	return nil
}

// URL resolves a key to the path the HTTP layer serves it under
func (s *FSStore) URL(key string) string {
	return s.baseURL + "/" + key
}
