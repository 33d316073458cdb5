// Package docstore defines the remote document service the task store
// persists to: keyed documents grouped in collections, partial updates,
// equality queries and atomic batch writes with server timestamps.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrUnavailable wraps transport and service failures.
	ErrUnavailable = errors.New("document service unavailable")

	// ErrUnauthorized is returned when the service rejects the credentials.
	ErrUnauthorized = errors.New("not authorized")
)

type serverTimestamp struct{}

func (serverTimestamp) String() string { return "<server timestamp>" }

// ServerTimestamp is a field value replaced by the commit time of the write
// that carries it.
var ServerTimestamp any = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Fields holds document data. Supported values are nil, string, bool,
// int, int64, float64, time.Time and ServerTimestamp.
type Fields map[string]any

// Resolve returns a copy of f with every ServerTimestamp replaced by at.
func (f Fields) Resolve(at time.Time) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if IsServerTimestamp(v) {
			v = at
		}
		out[k] = v
	}
	return out
}

// Doc is a document with its id.
type Doc struct {
	ID     string
	Fields Fields
}

// String returns a string field, or "" when absent or of another type.
func (d Doc) String(key string) string {
	s, _ := d.Fields[key].(string)
	return s
}

// Bool returns a bool field, or false.
func (d Doc) Bool(key string) bool {
	b, _ := d.Fields[key].(bool)
	return b
}

// Int returns an integer field, or 0.
func (d Doc) Int(key string) int {
	switch v := d.Fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Time returns a timestamp field, or the zero time.
func (d Doc) Time(key string) time.Time {
	t, _ := d.Fields[key].(time.Time)
	return t
}

// Op is the kind of a batched write.
type Op int

const (
	// OpSet creates or fully overwrites a document.
	OpSet Op = iota
	// OpUpdate merges fields into an existing document; the whole batch
	// fails with ErrNotFound if it does not exist.
	OpUpdate
	// OpDelete removes a document. Deleting a missing document succeeds.
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Write is one element of an atomic batch.
type Write struct {
	Op         Op
	Collection string
	ID         string
	Fields     Fields
}

// Set returns an OpSet write.
func Set(collection, id string, fields Fields) Write {
	return Write{Op: OpSet, Collection: collection, ID: id, Fields: fields}
}

// Update returns an OpUpdate write.
func Update(collection, id string, fields Fields) Write {
	return Write{Op: OpUpdate, Collection: collection, ID: id, Fields: fields}
}

// Delete returns an OpDelete write.
func Delete(collection, id string) Write {
	return Write{Op: OpDelete, Collection: collection, ID: id}
}

// Store is a remote document service.
type Store interface {
	// Insert creates a document with a generated id. ServerTimestamp
	// values are resolved in the returned document.
	Insert(ctx context.Context, collection string, fields Fields) (Doc, error)

	// Get fetches a document. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, collection, id string) (Doc, error)

	// Update merges fields into an existing document and returns the
	// commit time. Returns ErrNotFound if it does not exist.
	Update(ctx context.Context, collection, id string, fields Fields) (time.Time, error)

	// Delete removes a document.
	Delete(ctx context.Context, collection, id string) error

	// Query returns every document of a collection whose field equals value.
	Query(ctx context.Context, collection, field string, value any) ([]Doc, error)

	// Commit applies writes atomically and returns the commit time.
	Commit(ctx context.Context, writes []Write) (time.Time, error)
}
