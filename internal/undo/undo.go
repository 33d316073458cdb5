// Package undo keeps a bounded history of invertible task mutations.
package undo

import (
	"sync"

	"vtask/internal/service"
)

// DefaultCapacity is the number of actions kept.
const DefaultCapacity = 10

// TaskState is the completed flag a task had before an action.
type TaskState struct {
	ID        string
	Completed bool
}

// Action records what is needed to invert one mutation.
//
//   - create: TaskID of the new task.
//   - delete: Tasks holds the deleted task followed by its subtasks.
//   - toggle: TaskID, Previous and the subtask States.
//   - toggleAll: ListID and the States of every task of the list.
type Action struct {
	Kind     service.ActionKind
	TaskID   string
	ListID   string
	Previous bool
	Tasks    []service.Task
	States   []TaskState
}

// Log is a bounded stack of actions. When full, pushing evicts the oldest.
type Log struct {
	mu       sync.Mutex
	capacity int
	actions  []Action
}

// New returns a log holding at most capacity actions.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Push records an action.
func (l *Log) Push(a Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = append(l.actions, a)
	if over := len(l.actions) - l.capacity; over > 0 {
		l.actions = append(l.actions[:0:0], l.actions[over:]...)
	}
}

// Pop removes and returns the newest action.
func (l *Log) Pop() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.actions) == 0 {
		return Action{}, false
	}
	a := l.actions[len(l.actions)-1]
	l.actions = l.actions[:len(l.actions)-1]
	return a, true
}

// Peek returns the newest action without removing it.
func (l *Log) Peek() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.actions) == 0 {
		return Action{}, false
	}
	return l.actions[len(l.actions)-1], true
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.actions)
}

func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = nil
}
