package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vtask/internal/hierarchy"
	"vtask/internal/service"
)

// errListAndLetter rejects a --list flag combined with a lettered ref.
var errListAndLetter = fmt.Errorf("%w: cannot use both --list and list letter", ErrInvalidTaskRef)

// resolveNamedList resolves a list by name, wording failures the way the
// CLI reports them.
func resolveNamedList(ctx context.Context, svc service.Service, name string) (service.TaskList, error) {
	name = strings.TrimSpace(name)
	list, err := svc.ResolveList(ctx, name)
	switch {
	case errors.Is(err, service.ErrNotFound):
		// A lone letter that names no list falls back to the letter index.
		if len(name) == 1 && isLetter(rune(name[0])) {
			return ResolveListByLetter(ctx, svc, rune(name[0]))
		}
		return list, fmt.Errorf("list %w: %s", service.ErrNotFound, name)
	case errors.Is(err, service.ErrAmbiguous):
		return list, fmt.Errorf("%w list name: %s", service.ErrAmbiguous, name)
	}
	return list, err
}

// resolveListOrCurrent resolves name, or the current list when name is empty.
func resolveListOrCurrent(ctx context.Context, svc service.Service, name string) (service.TaskList, error) {
	if strings.TrimSpace(name) == "" {
		return svc.CurrentTaskList(ctx)
	}
	return resolveNamedList(ctx, svc, name)
}

// refList picks the list a ref points into: its letter, else listName,
// else the current list.
func refList(ctx context.Context, svc service.Service, listName string, ref TaskRef) (service.TaskList, error) {
	if ref.HasLetter {
		if listName != "" {
			return service.TaskList{}, errListAndLetter
		}
		return ResolveListByLetter(ctx, svc, ref.Letter)
	}
	return resolveListOrCurrent(ctx, svc, listName)
}

// displayTasks loads a list's tasks in the order the list command numbers
// them: each top-level task followed by its subtasks.
func displayTasks(ctx context.Context, svc service.Service, listID string) ([]service.Task, error) {
	tasks, err := svc.LoadTasks(ctx, listID)
	if err != nil {
		return nil, err
	}
	return hierarchy.Flatten(tasks), nil
}

// taskAt returns the task numbered num (1-based) in display order.
func taskAt(tasks []service.Task, num int) (service.Task, error) {
	if num < 1 || num > len(tasks) {
		return service.Task{}, fmt.Errorf("%w: %d", ErrRefOutOfRange, num)
	}
	return tasks[num-1], nil
}

// resolveTask resolves one ref to a task.
func resolveTask(ctx context.Context, svc service.Service, listName string, ref TaskRef) (service.Task, error) {
	list, err := refList(ctx, svc, listName, ref)
	if err != nil {
		return service.Task{}, err
	}
	tasks, err := displayTasks(ctx, svc, list.ID)
	if err != nil {
		return service.Task{}, err
	}
	return taskAt(tasks, ref.TaskNum)
}

type taskCache map[string][]service.Task // listID -> display order

// resolveTasks resolves every ref up front, so numbering is not shifted by
// earlier edits in the same command. Lists are loaded once.
func resolveTasks(ctx context.Context, svc service.Service, listName string, refs []TaskRef) ([]service.Task, error) {
	cache := make(taskCache)
	out := make([]service.Task, 0, len(refs))
	for _, ref := range refs {
		list, err := refList(ctx, svc, listName, ref)
		if err != nil {
			return nil, err
		}
		tasks, ok := cache[list.ID]
		if !ok {
			tasks, err = displayTasks(ctx, svc, list.ID)
			if err != nil {
				return nil, err
			}
			cache[list.ID] = tasks
		}
		task, err := taskAt(tasks, ref.TaskNum)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, nil
}
