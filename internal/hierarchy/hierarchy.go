// Package hierarchy holds the pure functions that nest, un-nest and
// reorder tasks. Inputs are never mutated; results are modified copies.
package hierarchy

import (
	"errors"
	"slices"

	"vtask/internal/service"
)

// Root is the group key of top-level tasks.
const Root = ""

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNoTaskAbove  = errors.New("no task above to become the parent")
	ErrNotTopLevel  = errors.New("task is already a subtask")
	ErrHasSubtasks  = errors.New("task has subtasks and cannot be nested")
	ErrCrossGroup   = errors.New("tasks belong to different groups")
)

// Sorted returns a copy of tasks stably sorted by Order.
func Sorted(tasks []service.Task) []service.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b service.Task) int {
		return a.Order - b.Order
	})
	return out
}

// GroupChildren groups tasks by parent id. Top-level tasks are under Root.
// Each group is ordered by Order, ties keeping input order.
func GroupChildren(tasks []service.Task) map[string][]service.Task {
	groups := make(map[string][]service.Task)
	for _, t := range Sorted(tasks) {
		groups[t.ParentTaskID] = append(groups[t.ParentTaskID], t)
	}
	return groups
}

// Flatten returns the display order: each top-level task followed by its
// subtasks. Subtasks whose parent is missing are appended at the end.
func Flatten(tasks []service.Task) []service.Task {
	groups := GroupChildren(tasks)
	out := make([]service.Task, 0, len(tasks))
	seen := make(map[string]bool)
	for _, t := range groups[Root] {
		out = append(out, t)
		out = append(out, groups[t.ID]...)
		seen[t.ID] = true
	}
	for _, t := range Sorted(tasks) {
		if t.IsSubtask() && !seen[t.ParentTaskID] {
			out = append(out, t)
		}
	}
	return out
}

func find(tasks []service.Task, id string) (service.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

func hasChildren(tasks []service.Task, id string) bool {
	for _, t := range tasks {
		if t.ParentTaskID == id {
			return true
		}
	}
	return false
}

func checkNestable(tasks []service.Task, target service.Task) error {
	if target.IsSubtask() {
		return ErrNotTopLevel
	}
	if hasChildren(tasks, target.ID) {
		return ErrHasSubtasks
	}
	return nil
}

// Promote makes a top-level task a child of the top-level task immediately
// above it in order.
func Promote(tasks []service.Task, id string) (service.Task, error) {
	target, ok := find(tasks, id)
	if !ok {
		return service.Task{}, ErrTaskNotFound
	}
	if err := checkNestable(tasks, target); err != nil {
		return service.Task{}, err
	}

	var top []service.Task
	for _, t := range Sorted(tasks) {
		if !t.IsSubtask() && t.TaskListID == target.TaskListID {
			top = append(top, t)
		}
	}
	i := slices.IndexFunc(top, func(t service.Task) bool { return t.ID == id })
	if i <= 0 {
		return service.Task{}, ErrNoTaskAbove
	}

	target.ParentTaskID = top[i-1].ID
	return target, nil
}

// Attach makes a top-level task a child of parentID.
func Attach(tasks []service.Task, id, parentID string) (service.Task, error) {
	target, parent, err := findPair(tasks, id, parentID)
	if err != nil {
		return service.Task{}, err
	}
	if err := checkNestable(tasks, target); err != nil {
		return service.Task{}, err
	}

	target.ParentTaskID = parent.ID
	return target, nil
}

// Reparent places a task under parentID. Unlike Attach the task may
// already be a subtask; only the new parent and the task's own children
// are checked, so the result keeps a single level of nesting.
func Reparent(tasks []service.Task, id, parentID string) (service.Task, error) {
	target, parent, err := findPair(tasks, id, parentID)
	if err != nil {
		return service.Task{}, err
	}
	if hasChildren(tasks, target.ID) {
		return service.Task{}, ErrHasSubtasks
	}

	target.ParentTaskID = parent.ID
	return target, nil
}

// findPair looks up a task and a prospective parent: a different top-level
// task of the same list.
func findPair(tasks []service.Task, id, parentID string) (service.Task, service.Task, error) {
	target, ok := find(tasks, id)
	if !ok {
		return service.Task{}, service.Task{}, ErrTaskNotFound
	}
	parent, ok := find(tasks, parentID)
	if !ok {
		return service.Task{}, service.Task{}, ErrTaskNotFound
	}
	if parent.ID == target.ID || parent.IsSubtask() || parent.TaskListID != target.TaskListID {
		return service.Task{}, service.Task{}, service.ErrInvalidParent
	}
	return target, parent, nil
}

// Demote returns a subtask to the top level. The bool is false when the
// task was already top-level and nothing changed.
func Demote(tasks []service.Task, id string) (service.Task, bool, error) {
	target, ok := find(tasks, id)
	if !ok {
		return service.Task{}, false, ErrTaskNotFound
	}
	if !target.IsSubtask() {
		return target, false, nil
	}
	target.ParentTaskID = ""
	return target, true, nil
}

// Reorder moves dragged into the position target holds within their
// shared sibling group and renumbers the group from zero. The whole group
// is returned. Dropping a task on itself returns nil.
func Reorder(tasks []service.Task, draggedID, targetID string) ([]service.Task, error) {
	dragged, ok := find(tasks, draggedID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	target, ok := find(tasks, targetID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	if draggedID == targetID {
		return nil, nil
	}
	if dragged.TaskListID != target.TaskListID || dragged.ParentTaskID != target.ParentTaskID {
		return nil, ErrCrossGroup
	}

	var group []service.Task
	for _, t := range Sorted(tasks) {
		if t.TaskListID == dragged.TaskListID && t.ParentTaskID == dragged.ParentTaskID {
			group = append(group, t)
		}
	}

	targetIndex := slices.IndexFunc(group, func(t service.Task) bool { return t.ID == targetID })
	from := slices.IndexFunc(group, func(t service.Task) bool { return t.ID == draggedID })
	group = slices.Delete(group, from, from+1)
	group = slices.Insert(group, targetIndex, dragged)

	for i := range group {
		group[i].Order = i
	}
	return group, nil
}
