package service

import "context"

// ActionKind names an undoable mutation.
type ActionKind string

const (
	ActionCreate    ActionKind = "create"
	ActionDelete    ActionKind = "delete"
	ActionToggle    ActionKind = "toggle"
	ActionToggleAll ActionKind = "toggleAll"
)

// Service defines the task store operations used by the command layer.
// Every mutating call writes through to the remote store before the local
// cache; a remote failure leaves the cache untouched.
type Service interface {
	// LoadTaskLists returns all task lists, newest first. Cache-first.
	LoadTaskLists(ctx context.Context) ([]TaskList, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns ErrNotFound or ErrAmbiguous.
	ResolveList(ctx context.Context, name string) (TaskList, error)

	// CurrentTaskList returns the selected list: the last selection if it
	// still exists, else the settings default, else the first list.
	// Returns ErrNoTaskLists when there are none.
	CurrentTaskList(ctx context.Context) (TaskList, error)

	// SelectTaskList records the current list for this user.
	SelectTaskList(ctx context.Context, listID string) error

	// CreateTaskList creates an empty list and returns its id.
	CreateTaskList(ctx context.Context, name string) (string, error)

	// RenameTaskList renames a list. No-op if the name is unchanged.
	RenameTaskList(ctx context.Context, listID, name string) error

	// DeleteTaskList deletes a list and every task in it atomically.
	DeleteTaskList(ctx context.Context, listID string) error

	// LoadTasks returns the tasks of a list ordered by Order. Cache-first.
	LoadTasks(ctx context.Context, listID string) ([]Task, error)

	// Task fetches a single task from the remote store.
	Task(ctx context.Context, taskID string) (Task, error)

	// CreateTask appends a task (or a subtask when parentID is set)
	// and returns its id.
	CreateTask(ctx context.Context, listID, text, parentID string) (string, error)

	// UpdateTask merges a patch into a task. Returns ErrNotFound if the
	// task does not exist.
	UpdateTask(ctx context.Context, taskID string, patch TaskPatch) error

	// DeleteTask deletes a task and its direct subtasks atomically.
	// Callers gate deletion of tasks with subtasks behind a confirmation.
	DeleteTask(ctx context.Context, taskID string) error

	// ToggleTask sets a task's completed flag, cascading to direct subtasks
	// when the task is top-level.
	ToggleTask(ctx context.Context, taskID string, completed bool) error

	// ToggleAllTasks sets the completed flag of every task in a list.
	ToggleAllTasks(ctx context.Context, listID string, completed bool) error

	// MakeSubtask moves a task under parentID, or under the top-level task
	// immediately above it when parentID is empty.
	MakeSubtask(ctx context.Context, taskID, parentID string) error

	// UnindentSubtask returns a subtask to the top level.
	UnindentSubtask(ctx context.Context, taskID string) error

	// ReorderTasks moves dragged into target's position within their
	// sibling group and renumbers the group.
	ReorderTasks(ctx context.Context, draggedID, targetID string) error

	// SyncAll refreshes every cache entry from the remote store.
	SyncAll(ctx context.Context) error

	// LoadSettings returns the user's settings. Cache-first.
	LoadSettings(ctx context.Context) (Settings, error)

	// SaveSettings merges settings into the user's settings document.
	SaveSettings(ctx context.Context, settings Settings) error

	// Undo inverts the most recent undoable action.
	// Returns ErrNothingToUndo when the log is empty.
	Undo(ctx context.Context) (ActionKind, error)
}
