package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ObjectStore is the external asset-storage collaborator. Production
// deployments back it with a cloud bucket; the service only depends on the
// returned reference URL.
type ObjectStore interface {
	Save(tenantID string, data []byte, assetType string) (string, error)
}

// LocalStore writes assets to a local directory and serves them under
// /uploads.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a local object store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Save writes the asset and returns its reference URL.
func (s *LocalStore) Save(tenantID string, data []byte, assetType string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	owner := strings.TrimSpace(tenantID)
	if owner == "" {
		owner = "platform"
	}

	name := fmt.Sprintf("%s-%s-%d", owner, assetType, time.Now().UnixNano())
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write asset: %w", err)
	}
	return "/uploads/" + name, nil
}

// Dir returns the root directory, for static file serving.
func (s *LocalStore) Dir() string {
	return s.dir
}
