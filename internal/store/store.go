// Package store implements service.Service over a remote document store
// and a local cache mirror. Every mutation is confirmed by the remote store
// before the cache changes; cache problems are logged and healed, never
// returned.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"vtask/internal/cache"
	"vtask/internal/docstore"
	"vtask/internal/service"
	"vtask/internal/undo"
)

// Remote collections.
const (
	CollectionLists    = "task_lists"
	CollectionTasks    = "tasks"
	CollectionSettings = "task_settings"
)

// DefaultOwner owns all data when no owner is configured.
const DefaultOwner = "default-user"

// Store is the task store. It is safe for concurrent use.
type Store struct {
	docs  docstore.Store
	cache cache.Store
	owner string
	log   *slog.Logger
	undo  *undo.Log

	mu sync.Mutex
}

var _ service.Service = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithOwner sets the user id that owns lists and settings.
func WithOwner(owner string) Option {
	return func(s *Store) {
		if owner != "" {
			s.owner = owner
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithUndoLog shares an undo log between stores.
func WithUndoLog(l *undo.Log) Option {
	return func(s *Store) {
		if l != nil {
			s.undo = l
		}
	}
}

// New returns a store over docs and c.
func New(docs docstore.Store, c cache.Store, opts ...Option) *Store {
	s := &Store{
		docs:  docs,
		cache: c,
		owner: DefaultOwner,
		log:   slog.New(slog.DiscardHandler),
		undo:  undo.New(undo.DefaultCapacity),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Owner returns the owning user id.
func (s *Store) Owner() string {
	return s.owner
}

// UndoLog returns the log undoable actions are pushed to.
func (s *Store) UndoLog() *undo.Log {
	return s.undo
}

// Cache returns the cache mirror.
func (s *Store) Cache() cache.Store {
	return s.cache
}

func remoteErr(op string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, service.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, service.ErrRemoteUnavailable, err)
}

// readCache decodes key into v. Misses, read errors and corrupt entries
// all report false; corrupt entries are evicted.
func (s *Store) readCache(key string, v any) bool {
	raw, ok, err := s.cache.Get(key)
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "err", err)
		return false
	}
	if !ok {
		s.log.Debug("cache miss", "key", key)
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.log.Warn("discarding cache entry", "key", key, "err", fmt.Errorf("%w: %v", service.ErrCacheCorrupt, err))
		s.evict(key)
		return false
	}
	return true
}

func (s *Store) writeCache(key string, v any) {
	data, err := json.Marshal(v)
	if err == nil {
		err = s.cache.Set(key, string(data))
	}
	if err != nil {
		s.log.Warn("cache write failed", "key", key, "err", err)
		s.evict(key)
	}
}

func (s *Store) evict(key string) {
	if err := s.cache.Remove(key); err != nil {
		s.log.Warn("cache evict failed", "key", key, "err", err)
	}
}
