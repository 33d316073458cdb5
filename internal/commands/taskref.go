package commands

import (
	"context"
	"fmt"
	"strconv"

	"vtask/internal/service"
)

// maxLetters is the number of lists that can be addressed by letter.
const maxLetters = 26

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Letter    rune // 0 if no letter, 'a'-'z' otherwise
	TaskNum   int  // 1-based position in display order
	HasLetter bool // true if a list letter was provided
}

// ParseTaskRef parses a task reference from the head of args and returns
// it with the number of args it consumed.
//
// Accepted forms:
//  1. all digits (3) refers to the current list
//  2. <letter><digits> (b2) refers to list b
//  3. a single letter followed by digits as a second arg (b 2)
//
// A lone letter yields ErrTaskRefRequired; anything else ErrInvalidTaskRef.
func ParseTaskRef(args []string) (TaskRef, int, error) {
	if len(args) == 0 {
		return TaskRef{}, 0, ErrTaskRefRequired
	}

	first := args[0]
	if isAllDigits(first) {
		num, err := strconv.Atoi(first)
		if err != nil {
			return TaskRef{}, 0, fmt.Errorf("%w: %s", ErrInvalidTaskRef, first)
		}
		return TaskRef{TaskNum: num}, 1, nil
	}

	if first != "" && isLetter(rune(first[0])) {
		letter := rune(first[0])

		if len(first) > 1 && isAllDigits(first[1:]) {
			num, err := strconv.Atoi(first[1:])
			if err != nil {
				return TaskRef{}, 0, fmt.Errorf("%w: %s", ErrInvalidTaskRef, first)
			}
			return TaskRef{Letter: letter, TaskNum: num, HasLetter: true}, 1, nil
		}

		if len(first) == 1 {
			if len(args) < 2 {
				return TaskRef{}, 0, ErrTaskRefRequired
			}
			if isAllDigits(args[1]) {
				num, err := strconv.Atoi(args[1])
				if err != nil {
					return TaskRef{}, 0, fmt.Errorf("%w: %s", ErrInvalidTaskRef, args[1])
				}
				return TaskRef{Letter: letter, TaskNum: num, HasLetter: true}, 2, nil
			}
		}
	}

	return TaskRef{}, 0, fmt.Errorf("%w: %s", ErrInvalidTaskRef, first)
}

// ParseTaskRefs parses every reference in args.
func ParseTaskRefs(args []string) ([]TaskRef, error) {
	if len(args) == 0 {
		return nil, ErrTaskRefRequired
	}
	var refs []TaskRef
	for len(args) > 0 {
		ref, n, err := ParseTaskRef(args)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
		args = args[n:]
	}
	return refs, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isLetter returns true if r is a lowercase letter a-z.
func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// listLetter returns the letter of the i-th list in LoadTaskLists order,
// or '-' past the last letter.
func listLetter(i int) rune {
	if i < 0 || i >= maxLetters {
		return '-'
	}
	return 'a' + rune(i)
}

// ResolveListByLetter resolves a list letter to a TaskList. Letters follow
// the order of the lists command, newest list first.
func ResolveListByLetter(ctx context.Context, svc service.Service, letter rune) (service.TaskList, error) {
	lists, err := svc.LoadTaskLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}
	i := int(letter - 'a')
	if !isLetter(letter) || i >= len(lists) {
		return service.TaskList{}, fmt.Errorf("%w: %c", ErrListLetterNotFound, letter)
	}
	return lists[i], nil
}
