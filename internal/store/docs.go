package store

import (
	"cmp"
	"slices"

	"vtask/internal/docstore"
	"vtask/internal/service"
)

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func listFromDoc(d docstore.Doc) service.TaskList {
	return service.TaskList{
		ID:        d.ID,
		Name:      d.String("name"),
		OwnerID:   d.String("userId"),
		CreatedAt: d.Time("createdAt"),
		UpdatedAt: d.Time("updatedAt"),
	}
}

func taskFromDoc(d docstore.Doc) service.Task {
	return service.Task{
		ID:           d.ID,
		TaskListID:   d.String("taskListId"),
		Text:         d.String("text"),
		Completed:    d.Bool("completed"),
		ParentTaskID: d.String("parentTaskId"),
		Order:        d.Int("order"),
		CreatedAt:    d.Time("createdAt"),
		UpdatedAt:    d.Time("updatedAt"),
	}
}

func settingsFromDoc(d docstore.Doc) service.Settings {
	return service.Settings{
		ID:                d.ID,
		DefaultTaskListID: d.String("defaultTaskListId"),
		UpdatedAt:         d.Time("updatedAt"),
	}
}

// taskFields is the full document of a task. A known creation time is kept.
func taskFields(t service.Task) docstore.Fields {
	var created any = docstore.ServerTimestamp
	if !t.CreatedAt.IsZero() {
		created = t.CreatedAt
	}
	return docstore.Fields{
		"taskListId":   t.TaskListID,
		"text":         t.Text,
		"completed":    t.Completed,
		"parentTaskId": nullable(t.ParentTaskID),
		"order":        t.Order,
		"createdAt":    created,
		"updatedAt":    docstore.ServerTimestamp,
	}
}

// sortLists orders lists newest first.
func sortLists(lists []service.TaskList) {
	slices.SortStableFunc(lists, func(a, b service.TaskList) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func maxOrder(tasks []service.Task) int {
	if len(tasks) == 0 {
		return -1
	}
	return slices.MaxFunc(tasks, func(a, b service.Task) int {
		return cmp.Compare(a.Order, b.Order)
	}).Order
}

func indexOf(tasks []service.Task, id string) int {
	return slices.IndexFunc(tasks, func(t service.Task) bool { return t.ID == id })
}
