package cache

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s := NewMemory()

	_, ok, err := s.Get(KeyTaskLists)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyTaskLists, `[{"id":"a"}]`))
	got, ok, err := s.Get(KeyTaskLists)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, got)

	require.NoError(t, s.Set(KeyTaskLists, `[]`))
	got, _, _ = s.Get(KeyTaskLists)
	assert.Equal(t, `[]`, got)

	require.NoError(t, s.Remove(KeyTaskLists))
	_, ok, err = s.Get(KeyTaskLists)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreRemoveMissing(t *testing.T) {
	assert.NoError(t, NewMemory().Remove(KeySettings))
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s := NewMemory()
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, s.Set(key, "x"), "key %q", key)
	}
}

func TestFileStoreKeys(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := NewFileStore(fsys, "/mirror")

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, s.Set(TasksKey("b"), "[]"))
	require.NoError(t, s.Set(TasksKey("a"), "[]"))
	require.NoError(t, afero.WriteFile(fsys, "/mirror/stale.tmp", nil, 0600))

	keys, err = s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"task_tasks_a", "task_tasks_b"}, keys)
}

func TestFileStoreReadOnly(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/c/"+KeySettings, []byte("{}"), 0600))
	s := NewFileStore(afero.NewReadOnlyFs(base), "/c")

	got, ok, err := s.Get(KeySettings)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", got)
	assert.Error(t, s.Set(KeySettings, "x"))
}
