// Package blob stores uploaded avatar files. The filesystem implementation
// writes under a per-user directory and returns the public URL the file is
// served at.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists an uploaded file and returns its public URL.
type Store interface {
	Put(ctx context.Context, userID, filename string, r io.Reader) (string, error)
}

// FSStore writes blobs under root/<userID>/<uuid><ext> and serves them at
// urlPrefix.
type FSStore struct {
	root      string
	urlPrefix string
}

func NewFSStore(root, urlPrefix string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &FSStore{
		root:      root,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

// Root is the directory the store writes into, for mounting a file server.
func (s *FSStore) Root() string {
	return s.root
}

func (s *FSStore) Put(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// The stored name is generated. Only the extension is taken from the
	// upload, keeping user input out of filesystem paths.
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		return "", fmt.Errorf("unsupported avatar file type %q", ext)
	}

	dir := filepath.Join(s.root, userID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create user blob directory: %w", err)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write blob file: %w", err)
	}

	return s.urlPrefix + "/" + userID + "/" + name, nil
}
