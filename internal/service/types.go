// Package service defines the backend-agnostic task model and the operations
// the command layer performs against it.
package service

import "time"

// TaskList is a named, user-owned container of tasks.
type TaskList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=200"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Task is a single to-do item. A task with a ParentTaskID is a subtask;
// subtasks never have subtasks of their own.
type Task struct {
	ID           string    `json:"id"`
	TaskListID   string    `json:"taskListId" validate:"required"`
	Text         string    `json:"text" validate:"required,max=2000"`
	Completed    bool      `json:"completed"`
	ParentTaskID string    `json:"parentTaskId,omitempty"`
	Order        int       `json:"order" validate:"min=0"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsSubtask reports whether the task sits under a parent.
func (t Task) IsSubtask() bool { return t.ParentTaskID != "" }

// TaskPatch is a partial update. Nil fields are left unchanged; an empty
// ParentTaskID clears the parent.
type TaskPatch struct {
	Text         *string
	Completed    *bool
	ParentTaskID *string
	Order        *int
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Text == nil && p.Completed == nil && p.ParentTaskID == nil && p.Order == nil
}

// Apply returns t with the patch merged in.
func (p TaskPatch) Apply(t Task) Task {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.ParentTaskID != nil {
		t.ParentTaskID = *p.ParentTaskID
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
	return t
}

// Settings holds per-user preferences. ID is the owner id.
type Settings struct {
	ID                string    `json:"id"`
	DefaultTaskListID string    `json:"defaultTaskListId,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
