// Package cookiestore persists the serialized cookie jar of a portal session
// as an opaque blob.
package cookiestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath is where the cookie blob is written when nothing else is configured.
const DefaultPath = "./usps_cookies.json"

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("cookiestore: no cookies saved")

// Store is anything that can hold one cookie blob. Save fully replaces
// whatever was previously stored.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
}

// FileStore keeps the blob in a single file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) FileStore {
	if path == "" {
		path = DefaultPath
	}
	return FileStore{Path: path}
}

func (f FileStore) Load(_ context.Context) ([]byte, error) {
	contents, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return contents, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the old blob so that a crash mid-write leaves the previous cookies intact.
func (f FileStore) Save(_ context.Context, blob []byte) error {
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(blob)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	err = tmp.Chmod(0600)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}

// MemoryStore keeps the blob in memory, it is not safe for concurrent use.
type MemoryStore struct {
	Blob []byte
}

func (m *MemoryStore) Load(_ context.Context) ([]byte, error) {
	if m.Blob == nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(m.Blob))
	copy(out, m.Blob)
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, blob []byte) error {
	m.Blob = make([]byte, len(blob))
	copy(m.Blob, blob)
	return nil
}
