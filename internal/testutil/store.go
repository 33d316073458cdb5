package testutil

import (
	"testing"

	"vtask/internal/cache"
	"vtask/internal/store"
)

// NewStore returns a task store over a fresh FakeDocStore and an in-memory
// cache.
func NewStore(t *testing.T, opts ...store.Option) (*store.Store, *FakeDocStore, *cache.FileStore) {
	t.Helper()
	docs := NewFakeDocStore()
	c := cache.NewMemory()
	return store.New(docs, c, opts...), docs, c
}
