package workspace

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BlobStore keeps uploaded document bytes on disk under a single directory,
// addressed by stored name. Stored names are generated here and recorded on
// the owning file node.
type BlobStore struct {
	dir string
}

// NewBlobStore creates the upload directory if needed.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

// Save writes r to a new uniquely-named file and returns its stored name.
// The name keeps the original extension so extraction can dispatch on it.
func (b *BlobStore) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	storedName := fmt.Sprintf("file-%d-%d%s", time.Now().UnixNano(), rand.Int63n(1e9), ext)
	f, err := os.Create(filepath.Join(b.dir, storedName))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	return storedName, nil
}

// Read returns the bytes of a stored blob.
func (b *BlobStore) Read(storedName string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, filepath.Base(storedName)))
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", storedName, err)
	}
	return data, nil
}

// Remove deletes a stored blob. A missing blob is not an error.
func (b *BlobStore) Remove(storedName string) error {
	err := os.Remove(filepath.Join(b.dir, filepath.Base(storedName)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob %s: %w", storedName, err)
	}
	return nil
}
