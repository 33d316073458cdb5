// Package bridge mirrors the current task list into a native preference
// store read by a home-screen widget, and applies the widget's edits back
// through the task store.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vtask/internal/cache"
	"vtask/internal/service"
)

// Preference keys shared with the widget.
const (
	KeyTasks         = "tasks"
	KeyCurrentListID = "currentTaskListId"
	KeyTaskLists     = "taskLists"
	KeyChanged       = "widget_data_changed"
)

// DefaultInterval is the period of Run.
const DefaultInterval = 5 * time.Second

// Prefs is the native preference store.
type Prefs = cache.Store

// Bridge syncs between the cache mirror, the task store and Prefs.
type Bridge struct {
	svc    service.Service
	mirror cache.Store
	prefs  Prefs
	log    *slog.Logger
}

// New returns a bridge. mirror is the cache the task store writes to.
func New(svc service.Service, mirror cache.Store, prefs Prefs, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Bridge{svc: svc, mirror: mirror, prefs: prefs, log: log}
}

// PullResult counts the widget edits applied by PullFromNative.
type PullResult struct {
	Updated int
	Created int
	Deleted int
}

func (r PullResult) String() string {
	return fmt.Sprintf("%d updated, %d created, %d deleted", r.Updated, r.Created, r.Deleted)
}

// PushToNative copies the selected list's cached tasks and the cached list
// index into Prefs and clears the changed flag. It reports false when no
// list is selected or its tasks are not cached.
func (b *Bridge) PushToNative() (bool, error) {
	listID, ok, err := b.mirror.Get(cache.KeyCurrentListID)
	if err != nil || !ok || listID == "" {
		return false, err
	}
	tasks, ok, err := b.mirror.Get(cache.TasksKey(listID))
	if err != nil || !ok {
		return false, err
	}

	if err := b.prefs.Set(KeyTasks, tasks); err != nil {
		return false, fmt.Errorf("push tasks: %w", err)
	}
	if err := b.prefs.Set(KeyCurrentListID, listID); err != nil {
		return false, fmt.Errorf("push list id: %w", err)
	}
	if lists, ok, err := b.mirror.Get(cache.KeyTaskLists); err == nil && ok {
		if err := b.prefs.Set(KeyTaskLists, lists); err != nil {
			return false, fmt.Errorf("push lists: %w", err)
		}
	}
	if err := b.prefs.Set(KeyChanged, "false"); err != nil {
		return false, fmt.Errorf("push flag: %w", err)
	}
	b.log.Debug("pushed to native", "list", listID)
	return true, nil
}

// PullFromNative applies widget edits when the widget flagged a change.
// Completed flags that differ are toggled, tasks the widget dropped are
// deleted and tasks with unknown ids are created.
func (b *Bridge) PullFromNative(ctx context.Context) (PullResult, error) {
	var res PullResult
	changed, _, err := b.prefs.Get(KeyChanged)
	if err != nil || changed != "true" {
		return res, err
	}

	raw, okTasks, err := b.prefs.Get(KeyTasks)
	if err != nil {
		return res, err
	}
	listID, okList, err := b.prefs.Get(KeyCurrentListID)
	if err != nil {
		return res, err
	}
	if !okTasks || !okList || listID == "" {
		return res, nil
	}

	var widget []service.Task
	if err := json.Unmarshal([]byte(raw), &widget); err != nil {
		b.clearFlag()
		return res, fmt.Errorf("widget tasks: %w: %v", service.ErrCacheCorrupt, err)
	}

	current, err := b.svc.LoadTasks(ctx, listID)
	if err != nil {
		return res, err
	}
	known := make(map[string]service.Task, len(current))
	for _, t := range current {
		known[t.ID] = t
	}

	kept := make(map[string]bool, len(widget))
	var toggles []toggle
	for _, w := range widget {
		t, ok := known[w.ID]
		if !ok {
			if err := b.create(ctx, listID, w, known); err != nil {
				return res, err
			}
			res.Created++
			continue
		}
		kept[w.ID] = true
		if t.Completed != w.Completed {
			toggles = append(toggles, toggle{task: t, completed: w.Completed})
		}
	}
	n, err := b.applyToggles(ctx, toggles)
	res.Updated += n
	if err != nil {
		return res, err
	}

	for _, t := range current {
		if kept[t.ID] {
			continue
		}
		// Deleting the parent removes its subtasks.
		if _, parentKnown := known[t.ParentTaskID]; t.IsSubtask() && parentKnown && !kept[t.ParentTaskID] {
			continue
		}
		if err := b.svc.DeleteTask(ctx, t.ID); err != nil && !errors.Is(err, service.ErrNotFound) {
			return res, err
		}
		res.Deleted++
	}

	b.clearFlag()
	b.log.Debug("pulled from native", "list", listID, "result", res.String())
	return res, nil
}

type toggle struct {
	task      service.Task
	completed bool
}

// applyToggles sets changed completion flags through ToggleTask. Top-level
// tasks go first so their cascade reaches the subtasks; a subtask edit that
// still differs afterwards is applied on top.
func (b *Bridge) applyToggles(ctx context.Context, toggles []toggle) (int, error) {
	cascaded := make(map[string]bool)
	n := 0
	for _, tg := range toggles {
		if tg.task.IsSubtask() {
			continue
		}
		if err := b.svc.ToggleTask(ctx, tg.task.ID, tg.completed); err != nil {
			return n, err
		}
		cascaded[tg.task.ID] = tg.completed
		n++
	}
	for _, tg := range toggles {
		if !tg.task.IsSubtask() {
			continue
		}
		current := tg.task.Completed
		if v, ok := cascaded[tg.task.ParentTaskID]; ok {
			current = v
		}
		if current == tg.completed {
			continue
		}
		if err := b.svc.ToggleTask(ctx, tg.task.ID, tg.completed); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (b *Bridge) create(ctx context.Context, listID string, w service.Task, known map[string]service.Task) error {
	parent := w.ParentTaskID
	if p, ok := known[parent]; !ok || p.IsSubtask() {
		parent = ""
	}
	id, err := b.svc.CreateTask(ctx, listID, w.Text, parent)
	if err != nil {
		return err
	}
	if w.Completed {
		return b.svc.ToggleTask(ctx, id, true)
	}
	return nil
}

func (b *Bridge) clearFlag() {
	if err := b.prefs.Set(KeyChanged, "false"); err != nil {
		b.log.Warn("clear widget flag failed", "err", err)
	}
}

// Sync runs one pass: widget edits are applied before the mirror is
// pushed, so a push never overwrites unread edits.
func (b *Bridge) Sync(ctx context.Context) (PullResult, error) {
	res, err := b.PullFromNative(ctx)
	if err != nil {
		return res, err
	}
	_, err = b.PushToNative()
	return res, err
}

// Run pulls once, then syncs every interval until ctx is done. Failed
// passes are logged and retried on the next tick.
func (b *Bridge) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if _, err := b.PullFromNative(ctx); err != nil {
		b.log.Warn("native sync failed", "err", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := b.Sync(ctx); err != nil {
				b.log.Warn("native sync failed", "err", err)
			}
		}
	}
}
