// Package sqlitedoc implements docstore.Store on a local SQLite file, for
// running without a cloud project.
package sqlitedoc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"vtask/internal/docstore"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	fields     TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);`

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a docstore.Store backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
	log *slog.Logger
}

var _ docstore.Store = (*Store)(nil)

// Open opens or creates the database at path.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }, log: log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func unavailable(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", docstore.ErrUnavailable, err)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func get(ctx context.Context, q queryer, collection, id string) (docstore.Fields, error) {
	var raw string
	err := q.QueryRowContext(ctx,
		"SELECT fields FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return decode(raw)
}

// Insert implements docstore.Store.
func (s *Store) Insert(ctx context.Context, collection string, fields docstore.Fields) (docstore.Doc, error) {
	id := uuid.NewString()
	resolved := fields.Resolve(s.now())
	raw, err := encode(resolved)
	if err != nil {
		return docstore.Doc{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, fields) VALUES (?, ?, ?)", collection, id, raw); err != nil {
		return docstore.Doc{}, unavailable(err)
	}
	s.log.Debug("sqlite insert", "collection", collection, "id", id)
	return docstore.Doc{ID: id, Fields: resolved}, nil
}

// Get implements docstore.Store.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Doc, error) {
	fields, err := get(ctx, s.db, collection, id)
	if err != nil {
		return docstore.Doc{}, err
	}
	return docstore.Doc{ID: id, Fields: fields}, nil
}

// Update implements docstore.Store.
func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) (time.Time, error) {
	return s.Commit(ctx, []docstore.Write{docstore.Update(collection, id, fields)})
}

// Delete implements docstore.Store.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.Commit(ctx, []docstore.Write{docstore.Delete(collection, id)})
	return err
}

// Query implements docstore.Store. Results follow insertion order.
func (s *Store) Query(ctx context.Context, collection, field string, value any) ([]docstore.Doc, error) {
	if !fieldName.MatchString(field) {
		return nil, fmt.Errorf("invalid field name %q", field)
	}
	var kind string
	switch v := value.(type) {
	case string:
		kind = "s"
	case bool:
		kind = "b"
	case int:
		kind, value = "i", int64(v)
	case int64:
		kind = "i"
	default:
		return nil, fmt.Errorf("unsupported query value %T", value)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, fields FROM documents WHERE collection = ? AND json_extract(fields, ?) = ? ORDER BY rowid",
		collection, "$."+field+"."+kind, value)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var docs []docstore.Doc
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, unavailable(err)
		}
		fields, err := decode(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, docstore.Doc{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return docs, nil
}

// Commit implements docstore.Store.
func (s *Store) Commit(ctx context.Context, writes []docstore.Write) (time.Time, error) {
	at := s.now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, unavailable(err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, w := range writes {
		if err := apply(ctx, tx, w, at); err != nil {
			return time.Time{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return time.Time{}, unavailable(err)
	}
	s.log.Debug("sqlite commit", "writes", len(writes))
	return at, nil
}

func apply(ctx context.Context, tx *sql.Tx, w docstore.Write, at time.Time) error {
	switch w.Op {
	case docstore.OpDelete:
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM documents WHERE collection = ? AND id = ?", w.Collection, w.ID); err != nil {
			return unavailable(err)
		}
		return nil

	case docstore.OpSet:
		raw, err := encode(w.Fields.Resolve(at))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (collection, id, fields) VALUES (?, ?, ?)
			 ON CONFLICT (collection, id) DO UPDATE SET fields = excluded.fields`,
			w.Collection, w.ID, raw); err != nil {
			return unavailable(err)
		}
		return nil

	case docstore.OpUpdate:
		current, err := get(ctx, tx, w.Collection, w.ID)
		if err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				return fmt.Errorf("update %s/%s: %w", w.Collection, w.ID, err)
			}
			return err
		}
		maps.Copy(current, w.Fields.Resolve(at))
		raw, err := encode(current)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE documents SET fields = ? WHERE collection = ? AND id = ?",
			raw, w.Collection, w.ID); err != nil {
			return unavailable(err)
		}
		return nil
	}
	return fmt.Errorf("unknown write op %v", w.Op)
}

// cell is the stored form of one field value.
type cell struct {
	S *string  `json:"s,omitempty"`
	I *int64   `json:"i,omitempty"`
	B *bool    `json:"b,omitempty"`
	F *float64 `json:"f,omitempty"`
	T *string  `json:"t,omitempty"`
	N bool     `json:"n,omitempty"`
}

func encode(fields docstore.Fields) (string, error) {
	cells := make(map[string]cell, len(fields))
	for k, v := range fields {
		var c cell
		switch v := v.(type) {
		case nil:
			c.N = true
		case string:
			c.S = &v
		case bool:
			c.B = &v
		case int:
			i := int64(v)
			c.I = &i
		case int64:
			c.I = &v
		case float64:
			c.F = &v
		case time.Time:
			t := v.UTC().Format(time.RFC3339Nano)
			c.T = &t
		default:
			return "", fmt.Errorf("field %s: unsupported value %T", k, v)
		}
		cells[k] = c
	}
	data, err := json.Marshal(cells)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decode(raw string) (docstore.Fields, error) {
	var cells map[string]cell
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	fields := make(docstore.Fields, len(cells))
	for k, c := range cells {
		switch {
		case c.S != nil:
			fields[k] = *c.S
		case c.I != nil:
			fields[k] = *c.I
		case c.B != nil:
			fields[k] = *c.B
		case c.F != nil:
			fields[k] = *c.F
		case c.T != nil:
			t, err := time.Parse(time.RFC3339Nano, *c.T)
			if err != nil {
				return nil, fmt.Errorf("decode field %s: %w", k, err)
			}
			fields[k] = t
		default:
			fields[k] = nil
		}
	}
	return fields, nil
}
