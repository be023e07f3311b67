package storage

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	store "cart/internal/storage"
)

// 1キー=1ファイルのJSON保存。書き込みは tmp→rename で行う。
type FileStore struct {
	dir string
	hub *hub
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, hub: newHub()}, nil
}

func (s *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	payload, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *FileStore) Save(ctx context.Context, key string, payload []byte, writer string) error {
	dst := s.path(key)

	tmp, err := os.CreateTemp(s.dir, "cart-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return err
	}

	s.hub.broadcast(key, writer)
	return nil
}

func (s *FileStore) Subscribe(key string, owner string) (<-chan store.Event, func()) {
	return s.hub.subscribe(key, owner)
}

// キーには "cart:user@example.com" のような文字が入るためエスケープする。
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}
