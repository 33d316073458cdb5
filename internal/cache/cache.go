// Package cache implements the local persistent key-value mirror of the
// remote task data.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Keys of the task mirror.
const (
	KeyTaskLists     = "task_task_lists"
	KeySettings      = "task_settings"
	KeyCurrentListID = "task_current_list_id"

	tasksPrefix = "task_tasks_"
)

// TasksKey returns the key holding the tasks of one list.
func TasksKey(listID string) string {
	return tasksPrefix + listID
}

// Store is a string key-value store. Get reports whether the key exists.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// FileStore keeps one file per key under a root directory.
type FileStore struct {
	fs   afero.Fs
	root string
}

// NewFileStore returns a store rooted at dir on fsys. The directory is
// created on the first write.
func NewFileStore(fsys afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fsys, root: dir}
}

// NewMemory returns a FileStore backed by an in-memory filesystem.
func NewMemory() *FileStore {
	return NewFileStore(afero.NewMemMapFs(), "/cache")
}

// Dir returns the root directory.
func (s *FileStore) Dir() string {
	return s.root
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(s.root, key), nil
}

// Get implements Store.
func (s *FileStore) Get(key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements Store. The value is written to a temporary file and
// renamed into place.
func (s *FileStore) Set(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(s.root, 0700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp := p + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(value), 0600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Remove implements Store. Removing a missing key is not an error.
func (s *FileStore) Remove(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in lexical order.
func (s *FileStore) Keys() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		keys = append(keys, e.Name())
	}
	return keys, nil
}
