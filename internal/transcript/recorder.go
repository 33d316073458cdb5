package transcript

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultTimeout bounds one recording session.
const DefaultTimeout = 5 * time.Second

// CodeNoSpeech is the engine error reported when nothing was heard. It does
// not end the session.
const CodeNoSpeech = "no-speech"

var (
	// ErrEngineUnavailable is returned when no speech engine can be started.
	ErrEngineUnavailable = errors.New("speech recognition is not available")

	// ErrToggledOff is returned by Record when it stopped a session that was
	// already listening instead of starting a new one.
	ErrToggledOff = errors.New("recording stopped")
)

// EngineError is an engine failure that aborted a session.
type EngineError struct {
	Code string
}

func (e *EngineError) Error() string {
	return "speech recognition error: " + e.Code
}

// EventType tags an engine event.
type EventType string

const (
	EventStart  EventType = "start"
	EventResult EventType = "result"
	EventError  EventType = "error"
	EventEnd    EventType = "end"
)

// Event is one notification from a speech engine. Results is the full
// cumulative result list of the session so far.
type Event struct {
	Type    EventType `json:"type"`
	Results []Result  `json:"results,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// Engine is a speech-to-text engine. Start begins listening and returns the
// event channel, which the engine closes when the session ends. Stop asks
// the engine to stop and may be called more than once.
type Engine interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop()
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithTimeout sets the session length. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithPreview registers a callback receiving interim transcript text.
func WithPreview(fn func(string)) Option {
	return func(r *Recorder) { r.preview = fn }
}

// Recorder runs one recording session at a time.
type Recorder struct {
	engine  Engine
	timeout time.Duration
	preview func(string)

	mu   sync.Mutex
	stop chan struct{}
}

// NewRecorder returns a recorder over engine. A nil engine makes every
// Record call fail with ErrEngineUnavailable.
func NewRecorder(engine Engine, opts ...Option) *Recorder {
	r := &Recorder{engine: engine, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Listening reports whether a session is running.
func (r *Recorder) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop != nil
}

// Stop ends the running session, if any.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Recorder) stopLocked() {
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
}

// Record listens until the timeout elapses, Stop is called, the engine
// ends the session or fails, or ctx is done, and returns the utterance.
// Text gathered before an engine failure or cancellation is returned along
// with the error.
func (r *Recorder) Record(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.stop != nil {
		r.stopLocked()
		r.mu.Unlock()
		return "", ErrToggledOff
	}
	if r.engine == nil {
		r.mu.Unlock()
		return "", ErrEngineUnavailable
	}
	events, err := r.engine.Start(ctx)
	if err != nil {
		r.mu.Unlock()
		if errors.Is(err, ErrEngineUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	stop := make(chan struct{})
	r.stop = stop
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if r.stop == stop {
			r.stop = nil
		}
		r.mu.Unlock()
		r.engine.Stop()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	var acc Accumulator
	for {
		select {
		case <-ctx.Done():
			return acc.Flush(), ctx.Err()
		case <-timer.C:
			return acc.Flush(), nil
		case <-stop:
			return acc.Flush(), nil
		case ev, ok := <-events:
			if !ok {
				return acc.Flush(), nil
			}
			switch ev.Type {
			case EventResult:
				if p := acc.Process(ev.Results); p != "" && r.preview != nil {
					r.preview(p)
				}
			case EventError:
				if ev.Error == CodeNoSpeech {
					continue
				}
				return acc.Flush(), &EngineError{Code: ev.Error}
			case EventEnd:
				return acc.Flush(), nil
			}
		}
	}
}
