package service

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr string
	}{
		{"valid task", Task{TaskListID: "l", Text: "buy milk"}, ""},
		{"empty text", Task{TaskListID: "l"}, "text required"},
		{"long text", Task{TaskListID: "l", Text: strings.Repeat("x", 2001)}, "text longer than 2000 characters"},
		{"negative order", Task{TaskListID: "l", Text: "x", Order: -1}, "order fails min"},
		{"valid list", TaskList{Name: "Inbox"}, ""},
		{"empty list name", TaskList{}, "name required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.value)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestTaskPatch(t *testing.T) {
	if !(TaskPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}

	text := "new"
	done := true
	parent := ""
	order := 3
	patch := TaskPatch{Text: &text, Completed: &done, ParentTaskID: &parent, Order: &order}
	if patch.Empty() {
		t.Error("patch should not be empty")
	}

	got := patch.Apply(Task{ID: "t", Text: "old", ParentTaskID: "p"})
	if got.Text != "new" || !got.Completed || got.ParentTaskID != "" || got.Order != 3 || got.ID != "t" {
		t.Errorf("unexpected result: %+v", got)
	}
	if got.IsSubtask() {
		t.Error("cleared parent should make a top-level task")
	}
}
