package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"vtask/internal/cache"
	"vtask/internal/docstore"
	"vtask/internal/hierarchy"
	"vtask/internal/service"
	"vtask/internal/undo"
)

// LoadTasks implements service.Service.
func (s *Store) LoadTasks(ctx context.Context, listID string) ([]service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTasks(ctx, listID)
}

func (s *Store) loadTasks(ctx context.Context, listID string) ([]service.Task, error) {
	var tasks []service.Task
	if s.readCache(cache.TasksKey(listID), &tasks) {
		return hierarchy.Sorted(tasks), nil
	}
	return s.refreshTasks(ctx, listID)
}

// refreshTasks reads a list's tasks from the remote store and rewrites the
// cache entry.
func (s *Store) refreshTasks(ctx context.Context, listID string) ([]service.Task, error) {
	docs, err := s.docs.Query(ctx, CollectionTasks, "taskListId", listID)
	if err != nil {
		return nil, remoteErr("load tasks", err)
	}
	tasks := make([]service.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, taskFromDoc(d))
	}
	tasks = hierarchy.Sorted(tasks)
	s.writeCache(cache.TasksKey(listID), tasks)
	return tasks, nil
}

func (s *Store) patchCachedTasks(listID string, fn func([]service.Task) []service.Task) {
	key := cache.TasksKey(listID)
	var tasks []service.Task
	if !s.readCache(key, &tasks) {
		return
	}
	s.writeCache(key, hierarchy.Sorted(fn(tasks)))
}

// setCompleted returns a cache patch applying completed flags by id.
func setCompleted(flags map[string]bool, at time.Time) func([]service.Task) []service.Task {
	return func(tasks []service.Task) []service.Task {
		for i := range tasks {
			if c, ok := flags[tasks[i].ID]; ok {
				tasks[i].Completed = c
				tasks[i].UpdatedAt = at
			}
		}
		return tasks
	}
}

func (s *Store) getTask(ctx context.Context, taskID string) (service.Task, error) {
	doc, err := s.docs.Get(ctx, CollectionTasks, taskID)
	if err != nil {
		return service.Task{}, remoteErr("task "+taskID, err)
	}
	return taskFromDoc(doc), nil
}

func (s *Store) subtasks(ctx context.Context, taskID string) ([]service.Task, error) {
	docs, err := s.docs.Query(ctx, CollectionTasks, "parentTaskId", taskID)
	if err != nil {
		return nil, remoteErr("load subtasks", err)
	}
	subs := make([]service.Task, 0, len(docs))
	for _, d := range docs {
		subs = append(subs, taskFromDoc(d))
	}
	return hierarchy.Sorted(subs), nil
}

// Task implements service.Service.
func (s *Store) Task(ctx context.Context, taskID string) (service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getTask(ctx, taskID)
}

// CreateTask implements service.Service. The new task is ordered after
// every task of the list, subtasks included.
func (s *Store) CreateTask(ctx context.Context, listID, text, parentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := service.Task{TaskListID: listID, Text: strings.TrimSpace(text), ParentTaskID: parentID}
	if err := service.Validate(task); err != nil {
		return "", err
	}

	lists, err := s.loadTaskLists(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := findList(lists, listID); !ok {
		return "", fmt.Errorf("list %s: %w", listID, service.ErrNotFound)
	}

	tasks, err := s.loadTasks(ctx, listID)
	if err != nil {
		return "", err
	}
	if parentID != "" {
		i := indexOf(tasks, parentID)
		if i < 0 || tasks[i].IsSubtask() {
			return "", fmt.Errorf("parent %s: %w", parentID, service.ErrInvalidParent)
		}
	}
	task.Order = maxOrder(tasks) + 1

	doc, err := s.docs.Insert(ctx, CollectionTasks, taskFields(task))
	if err != nil {
		return "", remoteErr("create task", err)
	}
	task = taskFromDoc(doc)
	s.log.Debug("created task", "id", task.ID, "list", listID, "order", task.Order)

	s.patchCachedTasks(listID, func(tasks []service.Task) []service.Task {
		return append(tasks, task)
	})
	s.undo.Push(undo.Action{Kind: service.ActionCreate, TaskID: task.ID})
	return task.ID, nil
}

// UpdateTask implements service.Service.
func (s *Store) UpdateTask(ctx context.Context, taskID string, patch service.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getTask(ctx, taskID)
	if err != nil {
		return err
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		patch.Text = &text
	}
	updated := patch.Apply(current)
	if err := service.Validate(updated); err != nil {
		return err
	}
	if patch.ParentTaskID != nil && *patch.ParentTaskID != "" && *patch.ParentTaskID != current.ParentTaskID {
		tasks, err := s.refreshTasks(ctx, current.TaskListID)
		if err != nil {
			return err
		}
		if _, err := hierarchy.Reparent(tasks, taskID, *patch.ParentTaskID); err != nil {
			return fmt.Errorf("%w: %w", service.ErrInvalidParent, err)
		}
	}

	fields := docstore.Fields{"updatedAt": docstore.ServerTimestamp}
	if patch.Text != nil {
		fields["text"] = updated.Text
	}
	if patch.Completed != nil {
		fields["completed"] = updated.Completed
	}
	if patch.ParentTaskID != nil {
		fields["parentTaskId"] = nullable(updated.ParentTaskID)
	}
	if patch.Order != nil {
		fields["order"] = updated.Order
	}

	at, err := s.docs.Update(ctx, CollectionTasks, taskID, fields)
	if err != nil {
		return remoteErr("update task", err)
	}
	updated.UpdatedAt = at

	s.patchCachedTasks(current.TaskListID, func(tasks []service.Task) []service.Task {
		if i := indexOf(tasks, taskID); i >= 0 {
			tasks[i] = updated
		}
		return tasks
	})
	return nil
}

// DeleteTask implements service.Service.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.deleteTask(ctx, taskID)
	if err != nil {
		return err
	}
	s.undo.Push(undo.Action{Kind: service.ActionDelete, TaskID: taskID, Tasks: deleted})
	return nil
}

// deleteTask removes a task and its direct subtasks in one batch and
// returns what was removed, the task first.
func (s *Store) deleteTask(ctx context.Context, taskID string) ([]service.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	subs, err := s.subtasks(ctx, taskID)
	if err != nil {
		return nil, err
	}

	deleted := append([]service.Task{task}, subs...)
	writes := make([]docstore.Write, 0, len(deleted))
	for _, t := range deleted {
		writes = append(writes, docstore.Delete(CollectionTasks, t.ID))
	}
	if _, err := s.docs.Commit(ctx, writes); err != nil {
		return nil, remoteErr("delete task", err)
	}
	s.log.Debug("deleted task", "id", taskID, "subtasks", len(subs))

	s.patchCachedTasks(task.TaskListID, func(tasks []service.Task) []service.Task {
		return slices.DeleteFunc(tasks, func(t service.Task) bool {
			return indexOf(deleted, t.ID) >= 0
		})
	})
	return deleted, nil
}

// ToggleTask implements service.Service.
func (s *Store) ToggleTask(ctx context.Context, taskID string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	var subs []service.Task
	if !task.IsSubtask() {
		if subs, err = s.subtasks(ctx, taskID); err != nil {
			return err
		}
	}

	flags := map[string]bool{taskID: completed}
	states := make([]undo.TaskState, 0, len(subs))
	for _, st := range subs {
		flags[st.ID] = completed
		states = append(states, undo.TaskState{ID: st.ID, Completed: st.Completed})
	}

	at, err := s.commitCompleted(ctx, flags)
	if err != nil {
		return remoteErr("toggle task", err)
	}

	s.patchCachedTasks(task.TaskListID, setCompleted(flags, at))
	s.undo.Push(undo.Action{
		Kind:     service.ActionToggle,
		TaskID:   taskID,
		ListID:   task.TaskListID,
		Previous: task.Completed,
		States:   states,
	})
	return nil
}

// ToggleAllTasks implements service.Service.
func (s *Store) ToggleAllTasks(ctx context.Context, listID string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.docs.Query(ctx, CollectionTasks, "taskListId", listID)
	if err != nil {
		return remoteErr("toggle all", err)
	}
	if len(docs) == 0 {
		return nil
	}

	flags := make(map[string]bool, len(docs))
	states := make([]undo.TaskState, 0, len(docs))
	tasks := make([]service.Task, 0, len(docs))
	for _, d := range docs {
		t := taskFromDoc(d)
		flags[t.ID] = completed
		states = append(states, undo.TaskState{ID: t.ID, Completed: t.Completed})
		tasks = append(tasks, t)
	}

	at, err := s.commitCompleted(ctx, flags)
	if err != nil {
		return remoteErr("toggle all", err)
	}

	s.writeCache(cache.TasksKey(listID), hierarchy.Sorted(setCompleted(flags, at)(tasks)))
	s.undo.Push(undo.Action{Kind: service.ActionToggleAll, ListID: listID, States: states})
	return nil
}

func (s *Store) commitCompleted(ctx context.Context, flags map[string]bool) (time.Time, error) {
	ids := make([]string, 0, len(flags))
	for id := range flags {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	writes := make([]docstore.Write, 0, len(ids))
	for _, id := range ids {
		writes = append(writes, docstore.Update(CollectionTasks, id, docstore.Fields{
			"completed": flags[id],
			"updatedAt": docstore.ServerTimestamp,
		}))
	}
	return s.docs.Commit(ctx, writes)
}

// MakeSubtask implements service.Service.
func (s *Store) MakeSubtask(ctx context.Context, taskID, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	tasks, err := s.refreshTasks(ctx, task.TaskListID)
	if err != nil {
		return err
	}

	var nested service.Task
	if parentID == "" {
		nested, err = hierarchy.Promote(tasks, taskID)
	} else {
		nested, err = hierarchy.Attach(tasks, taskID, parentID)
	}
	if err != nil {
		return err
	}
	return s.setParent(ctx, nested)
}

// UnindentSubtask implements service.Service.
func (s *Store) UnindentSubtask(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	top, changed, err := hierarchy.Demote([]service.Task{task}, taskID)
	if err != nil || !changed {
		return err
	}
	return s.setParent(ctx, top)
}

func (s *Store) setParent(ctx context.Context, task service.Task) error {
	at, err := s.docs.Update(ctx, CollectionTasks, task.ID, docstore.Fields{
		"parentTaskId": nullable(task.ParentTaskID),
		"updatedAt":    docstore.ServerTimestamp,
	})
	if err != nil {
		return remoteErr("move task", err)
	}
	task.UpdatedAt = at

	s.patchCachedTasks(task.TaskListID, func(tasks []service.Task) []service.Task {
		if i := indexOf(tasks, task.ID); i >= 0 {
			tasks[i] = task
		}
		return tasks
	})
	return nil
}

// ReorderTasks implements service.Service.
func (s *Store) ReorderTasks(ctx context.Context, draggedID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dragged, err := s.getTask(ctx, draggedID)
	if err != nil {
		return err
	}
	tasks, err := s.refreshTasks(ctx, dragged.TaskListID)
	if err != nil {
		return err
	}
	group, err := hierarchy.Reorder(tasks, draggedID, targetID)
	if err != nil || group == nil {
		return err
	}

	writes := make([]docstore.Write, 0, len(group))
	orders := make(map[string]int, len(group))
	for _, t := range group {
		writes = append(writes, docstore.Update(CollectionTasks, t.ID, docstore.Fields{
			"order":     t.Order,
			"updatedAt": docstore.ServerTimestamp,
		}))
		orders[t.ID] = t.Order
	}
	at, err := s.docs.Commit(ctx, writes)
	if err != nil {
		return remoteErr("reorder tasks", err)
	}

	s.patchCachedTasks(dragged.TaskListID, func(tasks []service.Task) []service.Task {
		for i := range tasks {
			if o, ok := orders[tasks[i].ID]; ok {
				tasks[i].Order = o
				tasks[i].UpdatedAt = at
			}
		}
		return tasks
	})
	return nil
}
