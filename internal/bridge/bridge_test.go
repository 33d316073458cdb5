package bridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtask/internal/cache"
	"vtask/internal/service"
	"vtask/internal/store"
	"vtask/internal/testutil"
)

type fixture struct {
	store  *store.Store
	docs   *testutil.FakeDocStore
	mirror *cache.FileStore
	prefs  *cache.FileStore
	bridge *Bridge
	list   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, docs, mirror := testutil.NewStore(t)
	prefs := cache.NewMemory()
	f := &fixture{store: s, docs: docs, mirror: mirror, prefs: prefs, bridge: New(s, mirror, prefs, nil)}

	ctx := context.Background()
	var err error
	f.list, err = s.CreateTaskList(ctx, "Inbox")
	require.NoError(t, err)
	require.NoError(t, s.SelectTaskList(ctx, f.list))
	return f
}

func (f *fixture) task(t *testing.T, text, parent string) string {
	t.Helper()
	id, err := f.store.CreateTask(context.Background(), f.list, text, parent)
	require.NoError(t, err)
	return id
}

func (f *fixture) widgetEdit(t *testing.T, edit func([]service.Task) []service.Task) {
	t.Helper()
	raw, ok, err := f.prefs.Get(KeyTasks)
	require.NoError(t, err)
	require.True(t, ok)
	var tasks []service.Task
	require.NoError(t, json.Unmarshal([]byte(raw), &tasks))
	data, err := json.Marshal(edit(tasks))
	require.NoError(t, err)
	require.NoError(t, f.prefs.Set(KeyTasks, string(data)))
	require.NoError(t, f.prefs.Set(KeyChanged, "true"))
}

func TestPushToNative(t *testing.T) {
	f := newFixture(t)
	f.task(t, "buy milk", "")
	_, err := f.store.LoadTaskLists(context.Background())
	require.NoError(t, err)

	pushed, err := f.bridge.PushToNative()
	require.NoError(t, err)
	assert.True(t, pushed)

	tasks, _, _ := f.prefs.Get(KeyTasks)
	cached, _, _ := f.mirror.Get(cache.TasksKey(f.list))
	assert.Equal(t, cached, tasks)
	id, _, _ := f.prefs.Get(KeyCurrentListID)
	assert.Equal(t, f.list, id)
	lists, ok, _ := f.prefs.Get(KeyTaskLists)
	assert.True(t, ok)
	assert.Contains(t, lists, "Inbox")
	flag, _, _ := f.prefs.Get(KeyChanged)
	assert.Equal(t, "false", flag)
}

func TestPushWithoutSelection(t *testing.T) {
	s, _, mirror := testutil.NewStore(t)
	b := New(s, mirror, cache.NewMemory(), nil)

	pushed, err := b.PushToNative()
	require.NoError(t, err)
	assert.False(t, pushed)
}

func TestPullIgnoredWithoutFlag(t *testing.T) {
	f := newFixture(t)
	f.task(t, "a", "")
	_, err := f.bridge.PushToNative()
	require.NoError(t, err)
	require.NoError(t, f.prefs.Set(KeyTasks, "[]"))

	res, err := f.bridge.PullFromNative(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PullResult{}, res)
	assert.Equal(t, 1, f.docs.Count(store.CollectionTasks))
}

func TestPullAppliesWidgetEdits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	done := f.task(t, "finish me", "")
	gone := f.task(t, "drop me", "")
	f.task(t, "drop me too", gone)
	f.task(t, "keep", "")
	_, err := f.bridge.PushToNative()
	require.NoError(t, err)

	f.widgetEdit(t, func(tasks []service.Task) []service.Task {
		var out []service.Task
		for _, task := range tasks {
			switch task.ID {
			case gone:
				continue
			case done:
				task.Completed = true
			}
			if task.ParentTaskID == gone {
				continue
			}
			out = append(out, task)
		}
		return append(out, service.Task{Text: "from widget", Completed: true})
	})

	res, err := f.bridge.PullFromNative(ctx)
	require.NoError(t, err)
	assert.Equal(t, PullResult{Updated: 1, Created: 1, Deleted: 1}, res)

	tasks, err := f.store.LoadTasks(ctx, f.list)
	require.NoError(t, err)
	var texts []string
	for _, task := range tasks {
		texts = append(texts, task.Text)
		if task.ID == done || task.Text == "from widget" {
			assert.True(t, task.Completed, task.Text)
		}
	}
	assert.Equal(t, []string{"finish me", "keep", "from widget"}, texts)

	flag, _, _ := f.prefs.Get(KeyChanged)
	assert.Equal(t, "false", flag)
}

func TestPullCompletingParentCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	parent := f.task(t, "groceries", "")
	child := f.task(t, "milk", parent)
	_, err := f.bridge.PushToNative()
	require.NoError(t, err)
	before := f.store.UndoLog().Len()

	f.widgetEdit(t, func(tasks []service.Task) []service.Task {
		for i := range tasks {
			if tasks[i].ID == parent {
				tasks[i].Completed = true
			}
		}
		return tasks
	})

	res, err := f.bridge.PullFromNative(ctx)
	require.NoError(t, err)
	assert.Equal(t, PullResult{Updated: 1}, res)
	assert.True(t, f.completed(t, parent))
	assert.True(t, f.completed(t, child))

	require.Equal(t, before+1, f.store.UndoLog().Len())
	kind, err := f.store.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.ActionToggle, kind)
	assert.False(t, f.completed(t, parent))
	assert.False(t, f.completed(t, child))
}

func TestPullSubtaskEditOverridesCascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	parent := f.task(t, "groceries", "")
	milk := f.task(t, "milk", parent)
	eggs := f.task(t, "eggs", parent)
	require.NoError(t, f.store.ToggleTask(ctx, milk, true))
	_, err := f.bridge.PushToNative()
	require.NoError(t, err)

	f.widgetEdit(t, func(tasks []service.Task) []service.Task {
		for i := range tasks {
			switch tasks[i].ID {
			case parent:
				tasks[i].Completed = true
			case milk:
				tasks[i].Completed = false
			}
		}
		return tasks
	})

	res, err := f.bridge.PullFromNative(ctx)
	require.NoError(t, err)
	assert.Equal(t, PullResult{Updated: 2}, res)
	assert.True(t, f.completed(t, parent))
	assert.False(t, f.completed(t, milk))
	assert.True(t, f.completed(t, eggs))
}

func (f *fixture) completed(t *testing.T, id string) bool {
	t.Helper()
	task, err := f.store.Task(context.Background(), id)
	require.NoError(t, err)
	return task.Completed
}

func TestPullCorruptWidgetData(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.prefs.Set(KeyTasks, "{oops"))
	require.NoError(t, f.prefs.Set(KeyCurrentListID, f.list))
	require.NoError(t, f.prefs.Set(KeyChanged, "true"))

	_, err := f.bridge.PullFromNative(context.Background())
	assert.ErrorIs(t, err, service.ErrCacheCorrupt)

	flag, _, _ := f.prefs.Get(KeyChanged)
	assert.Equal(t, "false", flag)
}

func TestSyncPullsBeforePushing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.task(t, "a", "")
	_, err := f.bridge.PushToNative()
	require.NoError(t, err)
	f.widgetEdit(t, func(tasks []service.Task) []service.Task {
		tasks[0].Completed = true
		return tasks
	})

	_, err = f.bridge.Sync(ctx)
	require.NoError(t, err)

	task, err := f.store.Task(ctx, id)
	require.NoError(t, err)
	assert.True(t, task.Completed)
}

func TestRunStopsWithContext(t *testing.T) {
	f := newFixture(t)
	f.task(t, "a", "")
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- f.bridge.Run(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		_, ok, _ := f.prefs.Get(KeyTasks)
		return ok
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
