package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ReceiptStore writes uploaded receipt files under a directory and hands back
// a stable reference. File contents are never interpreted.
type ReceiptStore struct {
	dir string
}

func NewReceiptStore(dir string) (*ReceiptStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create uploads dir")
	}
	return &ReceiptStore{dir: dir}, nil
}

// Save stores the bytes and returns the reference callers persist verbatim.
func (s *ReceiptStore) Save(originalName string, r io.Reader) (string, error) {
	name := uuid.New().String() + filepath.Ext(originalName)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", errors.Wrap(err, "create receipt file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", errors.Wrap(err, "write receipt file")
	}
	return "/uploads/" + name, nil
}

// Dir is where gin serves /uploads from.
func (s *ReceiptStore) Dir() string { return s.dir }
