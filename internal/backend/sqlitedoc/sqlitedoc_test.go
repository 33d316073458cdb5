package sqlitedoc

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtask/internal/docstore"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "tasks.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	s.now = func() time.Time { return at }

	doc, err := s.Insert(ctx, "tasks", docstore.Fields{
		"text":         "buy milk",
		"completed":    false,
		"order":        3,
		"parentTaskId": nil,
		"createdAt":    docstore.ServerTimestamp,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, at, doc.Fields["createdAt"])

	got, err := s.Get(ctx, "tasks", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.String("text"))
	assert.False(t, got.Bool("completed"))
	assert.Equal(t, 3, got.Int("order"))
	assert.Nil(t, got.Fields["parentTaskId"])
	assert.True(t, got.Time("createdAt").Equal(at))

	_, err = s.Get(ctx, "tasks", "missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestUpdateMerges(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	doc, err := s.Insert(ctx, "tasks", docstore.Fields{"text": "a", "completed": false})
	require.NoError(t, err)

	_, err = s.Update(ctx, "tasks", doc.ID, docstore.Fields{"completed": true})
	require.NoError(t, err)

	got, err := s.Get(ctx, "tasks", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.String("text"))
	assert.True(t, got.Bool("completed"))

	_, err = s.Update(ctx, "tasks", "missing", docstore.Fields{"completed": true})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestQueryEquality(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	a, _ := s.Insert(ctx, "tasks", docstore.Fields{"taskListId": "L", "text": "a", "completed": true})
	_, _ = s.Insert(ctx, "tasks", docstore.Fields{"taskListId": "M", "text": "b", "completed": false})
	c, _ := s.Insert(ctx, "tasks", docstore.Fields{"taskListId": "L", "text": "c", "completed": false})
	_, _ = s.Insert(ctx, "task_lists", docstore.Fields{"taskListId": "L"})

	docs, err := s.Query(ctx, "tasks", "taskListId", "L")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, a.ID, docs[0].ID)
	assert.Equal(t, c.ID, docs[1].ID)

	docs, err = s.Query(ctx, "tasks", "completed", true)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].String("text"))

	_, err = s.Query(ctx, "tasks", "bad field'", "x")
	assert.Error(t, err)
}

func TestCommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	a, _ := s.Insert(ctx, "tasks", docstore.Fields{"text": "a"})

	_, err := s.Commit(ctx, []docstore.Write{
		docstore.Delete("tasks", a.ID),
		docstore.Update("tasks", "missing", docstore.Fields{"text": "x"}),
	})
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = s.Get(ctx, "tasks", a.ID)
	assert.NoError(t, err, "failed batch must not delete")

	at, err := s.Commit(ctx, []docstore.Write{
		docstore.Delete("tasks", a.ID),
		docstore.Set("tasks", "restored", docstore.Fields{"text": "back", "updatedAt": docstore.ServerTimestamp}),
		docstore.Delete("tasks", "never-existed"),
	})
	require.NoError(t, err)

	_, err = s.Get(ctx, "tasks", a.ID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	got, err := s.Get(ctx, "tasks", "restored")
	require.NoError(t, err)
	assert.Equal(t, "back", got.String("text"))
	assert.True(t, got.Time("updatedAt").Equal(at.Truncate(0)))
}

func TestEncodeRejectsUnsupported(t *testing.T) {
	_, err := encode(docstore.Fields{"x": []string{"a"}})
	assert.Error(t, err)
}
