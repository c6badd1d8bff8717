package prover

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rollupforge/circuitforge/errs"
)

// KeyStorage abstracts key persistence so KeyGenerator never touches a
// filesystem path directly.
type KeyStorage interface {
	Store(ctx context.Context, keyID string, data []byte) error
	Load(ctx context.Context, keyID string) ([]byte, error)
	Exists(ctx context.Context, keyID string) (bool, error)
}

// FileKeyStorage stores each key pair as one file under a directory, named
// <keyID>.bin (for example keys/trade_2.bin); the proving and verifying
// keys share that file and are not written as separate _pk/_vk files.
type FileKeyStorage struct {
	dir string
}

// NewFileKeyStorage creates a FileKeyStorage rooted at dir, creating dir if
// it does not exist.
func NewFileKeyStorage(dir string) (*FileKeyStorage, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &FileKeyStorage{dir: dir}, nil
}

func (s *FileKeyStorage) path(keyID string) string {
	return filepath.Join(s.dir, keyID+".bin")
}

func (s *FileKeyStorage) Store(_ context.Context, keyID string, data []byte) error {
	return os.WriteFile(s.path(keyID), data, 0o600)
}

func (s *FileKeyStorage) Load(_ context.Context, keyID string) ([]byte, error) {
	data, err := os.ReadFile(s.path(keyID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *FileKeyStorage) Exists(_ context.Context, keyID string) (bool, error) {
	_, err := os.Stat(s.path(keyID))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
