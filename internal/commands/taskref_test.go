package commands

import (
	"errors"
	"testing"
)

func TestParseTaskRef_NumericOnly(t *testing.T) {
	ref, n, err := ParseTaskRef([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.HasLetter {
		t.Error("expected HasLetter to be false")
	}
	if ref.TaskNum != 5 {
		t.Errorf("expected TaskNum 5, got %d", ref.TaskNum)
	}
	if n != 1 {
		t.Errorf("expected 1 arg consumed, got %d", n)
	}
}

func TestParseTaskRef_CombinedRefMultiDigit(t *testing.T) {
	ref, n, err := ParseTaskRef([]string{"b12", "rest"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ref.HasLetter || ref.Letter != 'b' {
		t.Errorf("expected letter 'b', got %c (HasLetter=%v)", ref.Letter, ref.HasLetter)
	}
	if ref.TaskNum != 12 {
		t.Errorf("expected TaskNum 12, got %d", ref.TaskNum)
	}
	if n != 1 {
		t.Errorf("expected 1 arg consumed, got %d", n)
	}
}

func TestParseTaskRef_SeparatedRef(t *testing.T) {
	ref, n, err := ParseTaskRef([]string{"c", "3", "new", "text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Letter != 'c' || ref.TaskNum != 3 {
		t.Errorf("expected c3, got %c%d", ref.Letter, ref.TaskNum)
	}
	if n != 2 {
		t.Errorf("expected 2 args consumed, got %d", n)
	}
}

func TestParseTaskRef_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
		msg  string
	}{
		{"no args", nil, ErrTaskRefRequired, "task reference required"},
		{"lone letter", []string{"a"}, ErrTaskRefRequired, "task reference required"},
		{"letter then word", []string{"a", "b"}, ErrInvalidTaskRef, "invalid task reference: a"},
		{"word", []string{"milk"}, ErrInvalidTaskRef, "invalid task reference: milk"},
		{"uppercase", []string{"A1"}, ErrInvalidTaskRef, "invalid task reference: A1"},
		{"negative", []string{"-1"}, ErrInvalidTaskRef, "invalid task reference: -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseTaskRef(tt.args)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, err.Error())
			}
		})
	}
}

func TestParseTaskRefs(t *testing.T) {
	refs, err := ParseTaskRefs([]string{"1", "b2", "c", "3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(refs))
	}
	if refs[0].TaskNum != 1 || refs[0].HasLetter {
		t.Errorf("unexpected first ref: %+v", refs[0])
	}
	if refs[1].Letter != 'b' || refs[1].TaskNum != 2 {
		t.Errorf("unexpected second ref: %+v", refs[1])
	}
	if refs[2].Letter != 'c' || refs[2].TaskNum != 3 {
		t.Errorf("unexpected third ref: %+v", refs[2])
	}

	if _, err := ParseTaskRefs([]string{"1", "x"}); !errors.Is(err, ErrInvalidTaskRef) {
		t.Errorf("expected ErrInvalidTaskRef, got %v", err)
	}
}

func TestListLetter(t *testing.T) {
	if got := listLetter(0); got != 'a' {
		t.Errorf("expected 'a', got %c", got)
	}
	if got := listLetter(25); got != 'z' {
		t.Errorf("expected 'z', got %c", got)
	}
	if got := listLetter(26); got != '-' {
		t.Errorf("expected '-', got %c", got)
	}
}

func TestSplitLine(t *testing.T) {
	got, err := splitLine(`add --list "Work stuff" call  'the bank'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"add", "--list", "Work stuff", "call", "the bank"}
	if len(got) != len(want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if _, err := splitLine(`add "open`); err == nil {
		t.Error("expected error for unterminated quote")
	}
	if got, _ := splitLine("   "); len(got) != 0 {
		t.Errorf("expected no fields, got %q", got)
	}
}
