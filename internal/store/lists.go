package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"vtask/internal/cache"
	"vtask/internal/docstore"
	"vtask/internal/service"
)

// LoadTaskLists implements service.Service.
func (s *Store) LoadTaskLists(ctx context.Context) ([]service.TaskList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTaskLists(ctx)
}

func (s *Store) loadTaskLists(ctx context.Context) ([]service.TaskList, error) {
	var lists []service.TaskList
	if s.readCache(cache.KeyTaskLists, &lists) {
		sortLists(lists)
		return lists, nil
	}
	return s.refreshTaskLists(ctx)
}

func (s *Store) refreshTaskLists(ctx context.Context) ([]service.TaskList, error) {
	docs, err := s.docs.Query(ctx, CollectionLists, "userId", s.owner)
	if err != nil {
		return nil, remoteErr("load task lists", err)
	}
	lists := make([]service.TaskList, 0, len(docs))
	for _, d := range docs {
		lists = append(lists, listFromDoc(d))
	}
	sortLists(lists)
	s.writeCache(cache.KeyTaskLists, lists)
	return lists, nil
}

func (s *Store) patchCachedLists(fn func([]service.TaskList) []service.TaskList) {
	var lists []service.TaskList
	if !s.readCache(cache.KeyTaskLists, &lists) {
		return
	}
	s.writeCache(cache.KeyTaskLists, fn(lists))
}

func findList(lists []service.TaskList, id string) (service.TaskList, bool) {
	for _, l := range lists {
		if l.ID == id {
			return l, true
		}
	}
	return service.TaskList{}, false
}

// ResolveList implements service.Service.
func (s *Store) ResolveList(ctx context.Context, name string) (service.TaskList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.loadTaskLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}
	return resolveList(lists, name)
}

func resolveList(lists []service.TaskList, name string) (service.TaskList, error) {
	name = strings.TrimSpace(name)
	var matches []service.TaskList
	for _, l := range lists {
		if strings.EqualFold(strings.TrimSpace(l.Name), name) {
			matches = append(matches, l)
		}
	}
	switch len(matches) {
	case 0:
		return service.TaskList{}, fmt.Errorf("list %q: %w", name, service.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return service.TaskList{}, fmt.Errorf("list %q matches %d lists: %w", name, len(matches), service.ErrAmbiguous)
}

// CurrentTaskList implements service.Service.
func (s *Store) CurrentTaskList(ctx context.Context) (service.TaskList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.loadTaskLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}
	if len(lists) == 0 {
		return service.TaskList{}, service.ErrNoTaskLists
	}

	if id, ok, err := s.cache.Get(cache.KeyCurrentListID); err == nil && ok {
		if l, found := findList(lists, strings.TrimSpace(id)); found {
			return l, nil
		}
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		s.log.Warn("settings unavailable, using first list", "err", err)
	} else if l, found := findList(lists, settings.DefaultTaskListID); found {
		return l, nil
	}
	return lists[0], nil
}

// SelectTaskList implements service.Service.
func (s *Store) SelectTaskList(ctx context.Context, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.loadTaskLists(ctx)
	if err != nil {
		return err
	}
	if _, ok := findList(lists, listID); !ok {
		return fmt.Errorf("list %s: %w", listID, service.ErrNotFound)
	}
	if err := s.cache.Set(cache.KeyCurrentListID, listID); err != nil {
		return fmt.Errorf("select list: %w", err)
	}
	return nil
}

// CreateTaskList implements service.Service.
func (s *Store) CreateTaskList(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := service.TaskList{Name: strings.TrimSpace(name), OwnerID: s.owner}
	if err := service.Validate(list); err != nil {
		return "", err
	}

	doc, err := s.docs.Insert(ctx, CollectionLists, docstore.Fields{
		"name":      list.Name,
		"userId":    s.owner,
		"createdAt": docstore.ServerTimestamp,
		"updatedAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return "", remoteErr("create list", err)
	}
	list = listFromDoc(doc)
	s.log.Debug("created list", "id", list.ID, "name", list.Name)

	s.patchCachedLists(func(lists []service.TaskList) []service.TaskList {
		return append([]service.TaskList{list}, lists...)
	})
	s.writeCache(cache.TasksKey(list.ID), []service.Task{})
	return list.ID, nil
}

// RenameTaskList implements service.Service.
func (s *Store) RenameTaskList(ctx context.Context, listID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if err := service.Validate(service.TaskList{Name: name}); err != nil {
		return err
	}

	lists, err := s.loadTaskLists(ctx)
	if err != nil {
		return err
	}
	current, ok := findList(lists, listID)
	if !ok {
		return fmt.Errorf("list %s: %w", listID, service.ErrNotFound)
	}
	if current.Name == name {
		return nil
	}

	at, err := s.docs.Update(ctx, CollectionLists, listID, docstore.Fields{
		"name":      name,
		"updatedAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return remoteErr("rename list", err)
	}

	s.patchCachedLists(func(lists []service.TaskList) []service.TaskList {
		for i := range lists {
			if lists[i].ID == listID {
				lists[i].Name = name
				lists[i].UpdatedAt = at
			}
		}
		return lists
	})
	return nil
}

// DeleteTaskList implements service.Service.
func (s *Store) DeleteTaskList(ctx context.Context, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.docs.Get(ctx, CollectionLists, listID); err != nil {
		return remoteErr("delete list", err)
	}
	docs, err := s.docs.Query(ctx, CollectionTasks, "taskListId", listID)
	if err != nil {
		return remoteErr("delete list", err)
	}

	writes := make([]docstore.Write, 0, len(docs)+2)
	for _, d := range docs {
		writes = append(writes, docstore.Delete(CollectionTasks, d.ID))
	}
	writes = append(writes, docstore.Delete(CollectionLists, listID))

	settings, err := s.loadSettings(ctx)
	clearDefault := err == nil && settings.DefaultTaskListID == listID
	if clearDefault {
		writes = append(writes, docstore.Set(CollectionSettings, s.owner, docstore.Fields{
			"defaultTaskListId": nil,
			"updatedAt":         docstore.ServerTimestamp,
		}))
	}

	at, err := s.docs.Commit(ctx, writes)
	if err != nil {
		return remoteErr("delete list", err)
	}
	s.log.Debug("deleted list", "id", listID, "tasks", len(docs))

	s.evict(cache.TasksKey(listID))
	s.patchCachedLists(func(lists []service.TaskList) []service.TaskList {
		return slices.DeleteFunc(lists, func(l service.TaskList) bool { return l.ID == listID })
	})
	if clearDefault {
		s.writeCache(cache.KeySettings, service.Settings{ID: s.owner, UpdatedAt: at})
	}
	if id, ok, err := s.cache.Get(cache.KeyCurrentListID); err == nil && ok && id == listID {
		s.evict(cache.KeyCurrentListID)
	}
	return nil
}

// LoadSettings implements service.Service.
func (s *Store) LoadSettings(ctx context.Context) (service.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSettings(ctx)
}

func (s *Store) loadSettings(ctx context.Context) (service.Settings, error) {
	var settings service.Settings
	if s.readCache(cache.KeySettings, &settings) {
		return settings, nil
	}
	return s.refreshSettings(ctx)
}

func (s *Store) refreshSettings(ctx context.Context) (service.Settings, error) {
	doc, err := s.docs.Get(ctx, CollectionSettings, s.owner)
	var settings service.Settings
	switch {
	case err == nil:
		settings = settingsFromDoc(doc)
	case errors.Is(err, docstore.ErrNotFound):
		settings = service.Settings{ID: s.owner}
	default:
		return service.Settings{}, remoteErr("load settings", err)
	}
	s.writeCache(cache.KeySettings, settings)
	return settings, nil
}

// SaveSettings implements service.Service.
func (s *Store) SaveSettings(ctx context.Context, settings service.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, err := s.docs.Commit(ctx, []docstore.Write{
		docstore.Set(CollectionSettings, s.owner, docstore.Fields{
			"defaultTaskListId": nullable(settings.DefaultTaskListID),
			"updatedAt":         docstore.ServerTimestamp,
		}),
	})
	if err != nil {
		return remoteErr("save settings", err)
	}

	settings.ID = s.owner
	settings.UpdatedAt = at
	s.writeCache(cache.KeySettings, settings)
	return nil
}

// SyncAll implements service.Service.
func (s *Store) SyncAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.refreshTaskLists(ctx)
	if err != nil {
		return err
	}
	for _, l := range lists {
		if _, err := s.refreshTasks(ctx, l.ID); err != nil {
			return err
		}
	}
	if _, err := s.refreshSettings(ctx); err != nil {
		return err
	}
	s.log.Debug("sync complete", "lists", len(lists))
	return nil
}
