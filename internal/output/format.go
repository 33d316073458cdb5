// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"vtask/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// subtaskIndent shifts a subtask's checkbox under its parent's text.
	subtaskIndent = "    "
)

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TEXT}\n", with subtasks indented by four spaces
// after the number.
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s\n", num, taskBody(task))
}

// FormatTaskWithLetter formats a task line prefixed by its list letter,
// e.g. "  b2  [ ] call bob".
func FormatTaskWithLetter(w io.Writer, letter rune, num int, task service.Task) {
	ref := fmt.Sprintf("%c%d", letter, num)
	fmt.Fprintf(w, "%4s  %s\n", ref, taskBody(task))
}

func taskBody(task service.Task) string {
	box := "[ ]"
	if task.Completed {
		box = "[x]"
	}
	indent := ""
	if task.IsSubtask() {
		indent = subtaskIndent
	}
	return indent + box + " " + normalizeText(task.Text)
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, name string, current, isDefault bool) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, normalizeListName(name)+marks(current, isDefault))
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a list line for the lists command.
// Format: "{LETTER}  {NAME}[ [current]][ [default]]\n"
func FormatListName(w io.Writer, letter rune, list service.TaskList, current, isDefault bool) {
	fmt.Fprintf(w, "%c  %s%s\n", letter, normalizeListName(list.Name), marks(current, isDefault))
}

// FormatSummary prints the completion count of a list.
func FormatSummary(w io.Writer, tasks []service.Task) {
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	fmt.Fprintf(w, "%d of %d done\n", done, len(tasks))
}

func marks(current, isDefault bool) string {
	var s string
	if current {
		s += " [current]"
	}
	if isDefault {
		s += " [default]"
	}
	return s
}

// normalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}

// normalizeListName normalizes a list name for display.
// Empty or whitespace-only names become "(untitled)".
func normalizeListName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}
