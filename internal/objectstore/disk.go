package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flori92/floservice-messaging/internal/fault"
)

// DiskStore is a filesystem adapter for Store. Objects land under root and are
// served by the HTTP layer at publicBaseURL/uploads/.
type DiskStore struct {
	root          string
	publicBaseURL string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root, publicBaseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &DiskStore{root: root, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Put writes data under folder/name and returns the public URL.
func (s *DiskStore) Put(ctx context.Context, folder, name string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fault.Unknown("upload cancelled", err)
	}

	folder = filepath.Clean("/" + folder)
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fault.Unknown("create upload folder", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fault.Unknown("write object", err)
	}

	return s.publicBaseURL + "/uploads" + folder + "/" + name, nil
}

// Root exposes the storage root for static file serving.
func (s *DiskStore) Root() string { return s.root }
