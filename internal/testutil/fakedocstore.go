// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"vtask/internal/docstore"
)

// Epoch is the first commit time of a FakeDocStore. Every write advances
// the clock by one second.
var Epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// FakeDocStore is an in-memory implementation of docstore.Store for testing.
type FakeDocStore struct {
	mu    sync.Mutex
	docs  map[string]map[string]docstore.Fields // collection -> id -> fields
	order map[string][]string                   // collection -> ids in insertion order
	seq   int
	now   time.Time

	// Commits records every successful batch.
	Commits [][]docstore.Write

	// Error injection for testing
	InsertErr error
	GetErr    error
	UpdateErr error
	DeleteErr error
	QueryErr  error
	CommitErr error
}

// NewFakeDocStore creates an empty FakeDocStore.
func NewFakeDocStore() *FakeDocStore {
	return &FakeDocStore{
		docs:  make(map[string]map[string]docstore.Fields),
		order: make(map[string][]string),
		now:   Epoch,
	}
}

func (f *FakeDocStore) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *FakeDocStore) put(collection, id string, fields docstore.Fields) {
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]docstore.Fields)
	}
	if _, ok := f.docs[collection][id]; !ok {
		f.order[collection] = append(f.order[collection], id)
	}
	f.docs[collection][id] = fields
}

func (f *FakeDocStore) remove(collection, id string) {
	if _, ok := f.docs[collection][id]; !ok {
		return
	}
	delete(f.docs[collection], id)
	f.order[collection] = slices.DeleteFunc(f.order[collection], func(s string) bool { return s == id })
}

func (f *FakeDocStore) exists(collection, id string) bool {
	_, ok := f.docs[collection][id]
	return ok
}

// Put stores a document directly, bypassing error injection and the
// commit log.
func (f *FakeDocStore) Put(collection, id string, fields docstore.Fields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(collection, id, fields.Resolve(f.tick()))
}

// Doc returns a stored document.
func (f *FakeDocStore) Doc(collection, id string) (docstore.Doc, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fields, ok := f.docs[collection][id]
	if !ok {
		return docstore.Doc{}, false
	}
	return docstore.Doc{ID: id, Fields: maps.Clone(fields)}, true
}

// Count returns the number of documents in a collection.
func (f *FakeDocStore) Count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs[collection])
}

// Insert implements docstore.Store.
func (f *FakeDocStore) Insert(ctx context.Context, collection string, fields docstore.Fields) (docstore.Doc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InsertErr != nil {
		return docstore.Doc{}, f.InsertErr
	}
	f.seq++
	id := fmt.Sprintf("doc-%d", f.seq)
	resolved := fields.Resolve(f.tick())
	f.put(collection, id, resolved)
	return docstore.Doc{ID: id, Fields: maps.Clone(resolved)}, nil
}

// Get implements docstore.Store.
func (f *FakeDocStore) Get(ctx context.Context, collection, id string) (docstore.Doc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return docstore.Doc{}, f.GetErr
	}
	fields, ok := f.docs[collection][id]
	if !ok {
		return docstore.Doc{}, docstore.ErrNotFound
	}
	return docstore.Doc{ID: id, Fields: maps.Clone(fields)}, nil
}

// Update implements docstore.Store.
func (f *FakeDocStore) Update(ctx context.Context, collection, id string, fields docstore.Fields) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return time.Time{}, f.UpdateErr
	}
	current, ok := f.docs[collection][id]
	if !ok {
		return time.Time{}, docstore.ErrNotFound
	}
	at := f.tick()
	merged := maps.Clone(current)
	maps.Copy(merged, fields.Resolve(at))
	f.put(collection, id, merged)
	return at, nil
}

// Delete implements docstore.Store.
func (f *FakeDocStore) Delete(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.remove(collection, id)
	return nil
}

// Query implements docstore.Store. Results follow insertion order.
func (f *FakeDocStore) Query(ctx context.Context, collection, field string, value any) ([]docstore.Doc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	var out []docstore.Doc
	for _, id := range f.order[collection] {
		fields := f.docs[collection][id]
		if fields[field] == value {
			out = append(out, docstore.Doc{ID: id, Fields: maps.Clone(fields)})
		}
	}
	return out, nil
}

// Commit implements docstore.Store.
func (f *FakeDocStore) Commit(ctx context.Context, writes []docstore.Write) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CommitErr != nil {
		return time.Time{}, f.CommitErr
	}
	for _, w := range writes {
		if w.Op == docstore.OpUpdate && !f.exists(w.Collection, w.ID) {
			return time.Time{}, fmt.Errorf("update %s/%s: %w", w.Collection, w.ID, docstore.ErrNotFound)
		}
	}

	at := f.tick()
	for _, w := range writes {
		switch w.Op {
		case docstore.OpSet:
			f.put(w.Collection, w.ID, w.Fields.Resolve(at))
		case docstore.OpUpdate:
			merged := maps.Clone(f.docs[w.Collection][w.ID])
			maps.Copy(merged, w.Fields.Resolve(at))
			f.put(w.Collection, w.ID, merged)
		case docstore.OpDelete:
			f.remove(w.Collection, w.ID)
		}
	}
	f.Commits = append(f.Commits, slices.Clone(writes))
	return at, nil
}

// LastCommit returns the most recent batch, or nil.
func (f *FakeDocStore) LastCommit() []docstore.Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Commits) == 0 {
		return nil
	}
	return f.Commits[len(f.Commits)-1]
}
