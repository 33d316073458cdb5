package output

import (
	"bytes"
	"testing"

	"vtask/internal/service"
)

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name string
		task service.Task
		want string
	}{
		{"open", service.Task{Text: "buy milk"}, "   7  [ ] buy milk\n"},
		{"completed", service.Task{Text: "buy milk", Completed: true}, "   7  [x] buy milk\n"},
		{"subtask", service.Task{Text: "oat", ParentTaskID: "p"}, "   7      [ ] oat\n"},
		{"blank", service.Task{Text: "  "}, "   7  [ ] (untitled)\n"},
		{"newlines", service.Task{Text: "a\r\nb"}, "   7  [ ] a  b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatTask(&buf, 7, tt.task)
			if buf.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestFormatTaskWithLetter(t *testing.T) {
	var buf bytes.Buffer
	FormatTaskWithLetter(&buf, 'b', 12, service.Task{Text: "call bob"})
	if want := " b12  [ ] call bob\n"; buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatListHeaderAndName(t *testing.T) {
	var buf bytes.Buffer
	FormatListHeader(&buf, "Work", true, true)
	if want := "------------\nWork [current] [default]\n------------\n"; buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}

	buf.Reset()
	FormatListName(&buf, 'c', service.TaskList{Name: ""}, false, true)
	if want := "c  (untitled) [default]\n"; buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	FormatSummary(&buf, []service.Task{{Completed: true}, {}, {Completed: true}})
	if want := "2 of 3 done\n"; buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
