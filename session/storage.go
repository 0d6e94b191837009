package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	extErrors "github.com/pkg/errors"
)

var (
	_ Storage = &MemoryStorage{}
	_ Storage = &FileStorage{}
)

// MemoryStorage is a Storage that lives as long as the process
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStorage returns an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileStorage keeps each key in its own file under Dir
type FileStorage struct {
	Dir string
}

// DefaultDir is the per-user cache directory of the CLI
func DefaultDir() string {
	return filepath.Join(xdg.CacheHome, "unaique")
}

// NewFileStorage returns a FileStorage under dir, DefaultDir when empty
func NewFileStorage(dir string) *FileStorage {
	if dir == "" {
		dir = DefaultDir()
	}
	return &FileStorage{Dir: dir}
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

func (f *FileStorage) Get(key string) ([]byte, bool, error) {
	b, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, extErrors.Wrap(err, "Cannot read session file")
	}
	return b, true, nil
}

func (f *FileStorage) Set(key string, value []byte) error {
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return extErrors.Wrap(err, "Cannot create session directory")
	}
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return extErrors.Wrap(err, "Cannot write session file")
	}
	return os.Rename(tmp, f.path(key))
}

func (f *FileStorage) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return extErrors.Wrap(err, "Cannot remove session file")
	}
	return nil
}
