package store

import (
	"context"
	"errors"
	"fmt"

	"vtask/internal/docstore"
	"vtask/internal/hierarchy"
	"vtask/internal/service"
	"vtask/internal/undo"
)

// Undo implements service.Service. The inversion itself is not recorded.
// An inversion that fails on the remote store stays on the log.
func (s *Store) Undo(ctx context.Context) (service.ActionKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, ok := s.undo.Pop()
	if !ok {
		return "", service.ErrNothingToUndo
	}

	err := s.invert(ctx, action)
	if err != nil {
		if errors.Is(err, service.ErrRemoteUnavailable) {
			s.undo.Push(action)
		}
		return action.Kind, fmt.Errorf("undo %s: %w", action.Kind, err)
	}
	s.log.Debug("undid action", "kind", action.Kind)
	return action.Kind, nil
}

func (s *Store) invert(ctx context.Context, a undo.Action) error {
	switch a.Kind {
	case service.ActionCreate:
		_, err := s.deleteTask(ctx, a.TaskID)
		return err
	case service.ActionDelete:
		return s.restore(ctx, a.Tasks)
	case service.ActionToggle:
		flags := map[string]bool{a.TaskID: a.Previous}
		for _, st := range a.States {
			flags[st.ID] = st.Completed
		}
		return s.restoreCompleted(ctx, a.ListID, flags)
	case service.ActionToggleAll:
		flags := make(map[string]bool, len(a.States))
		for _, st := range a.States {
			flags[st.ID] = st.Completed
		}
		return s.restoreCompleted(ctx, a.ListID, flags)
	}
	return fmt.Errorf("unknown action %q", a.Kind)
}

// restore re-creates deleted tasks under their original ids.
func (s *Store) restore(ctx context.Context, tasks []service.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	writes := make([]docstore.Write, 0, len(tasks))
	for _, t := range tasks {
		writes = append(writes, docstore.Set(CollectionTasks, t.ID, taskFields(t)))
	}
	at, err := s.docs.Commit(ctx, writes)
	if err != nil {
		return remoteErr("restore tasks", err)
	}

	restored := make([]service.Task, len(tasks))
	for i, t := range tasks {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = at
		}
		t.UpdatedAt = at
		restored[i] = t
	}
	s.patchCachedTasks(tasks[0].TaskListID, func(cached []service.Task) []service.Task {
		for _, t := range restored {
			if indexOf(cached, t.ID) < 0 {
				cached = append(cached, t)
			}
		}
		return hierarchy.Sorted(cached)
	})
	return nil
}

func (s *Store) restoreCompleted(ctx context.Context, listID string, flags map[string]bool) error {
	at, err := s.commitCompleted(ctx, flags)
	if err != nil {
		return remoteErr("restore completed", err)
	}
	s.patchCachedTasks(listID, setCompleted(flags, at))
	return nil
}

