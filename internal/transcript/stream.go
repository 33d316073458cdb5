package transcript

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// CodeBadEvent is reported for input lines that are not valid events.
const CodeBadEvent = "bad-event"

// StreamEngine reads newline-delimited JSON events from a reader, so any
// external recognizer can be piped in. The stream is consumed once; EOF
// ends the session. Stop closes the reader when it is an io.Closer, which
// unblocks the reading goroutine; other readers are drained until EOF.
type StreamEngine struct {
	r io.Reader

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// NewStreamEngine returns an engine reading events from r.
func NewStreamEngine(r io.Reader) *StreamEngine {
	return &StreamEngine{r: r}
}

// Start implements Engine.
func (e *StreamEngine) Start(ctx context.Context) (<-chan Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.r == nil {
		return nil, ErrEngineUnavailable
	}
	if e.started {
		return nil, fmt.Errorf("%w: event stream already consumed", ErrEngineUnavailable)
	}
	e.started = true
	e.done = make(chan struct{})

	ch := make(chan Event)
	go e.read(ctx, ch, e.done)
	return ch, nil
}

func (e *StreamEngine) read(ctx context.Context, ch chan<- Event, done <-chan struct{}) {
	defer close(ch)

	send := func(ev Event) bool {
		select {
		case ch <- ev:
			return true
		case <-done:
		case <-ctx.Done():
		}
		return false
	}

	sc := bufio.NewScanner(e.r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil || ev.Type == "" {
			send(Event{Type: EventError, Error: CodeBadEvent})
			return
		}
		if !send(ev) || ev.Type == EventEnd {
			return
		}
	}
	if sc.Err() != nil {
		send(Event{Type: EventError, Error: "read: " + sc.Err().Error()})
	}
}

// Stop implements Engine.
func (e *StreamEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done == nil {
		return
	}
	select {
	case <-e.done:
	default:
		close(e.done)
		if c, ok := e.r.(io.Closer); ok {
			_ = c.Close()
		}
	}
}
