package transcript

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu       sync.Mutex
	events   chan Event
	startErr error
	starts   int
	stops    int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{events: make(chan Event, 16)}
}

func (f *fakeEngine) Start(ctx context.Context) (<-chan Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.starts++
	return f.events, nil
}

func (f *fakeEngine) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeEngine) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func resultEvent(texts ...string) Event {
	return Event{Type: EventResult, Results: finals(texts...)}
}

func TestRecordEndsOnEngineEnd(t *testing.T) {
	eng := newFakeEngine()
	eng.events <- Event{Type: EventStart}
	eng.events <- resultEvent("go")
	eng.events <- resultEvent("go", "go to")
	eng.events <- resultEvent("go", "go to", "go to the gym")
	eng.events <- Event{Type: EventEnd}

	got, err := NewRecorder(eng).Record(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "go to the gym", got)
	assert.Equal(t, 1, eng.stopCount())
}

func TestRecordEndsOnClosedChannel(t *testing.T) {
	eng := newFakeEngine()
	eng.events <- resultEvent("buy milk")
	eng.events <- resultEvent("buy milk", "call mom")
	close(eng.events)

	got, err := NewRecorder(eng).Record(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "buy milk call mom", got)
}

func TestRecordTimeout(t *testing.T) {
	eng := newFakeEngine()
	eng.events <- resultEvent("hello")

	start := time.Now()
	got, err := NewRecorder(eng, WithTimeout(50*time.Millisecond)).Record(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, 1, eng.stopCount())
}

func TestRecordNoSpeechIsIgnored(t *testing.T) {
	eng := newFakeEngine()
	eng.events <- Event{Type: EventError, Error: CodeNoSpeech}
	eng.events <- resultEvent("still here")
	eng.events <- Event{Type: EventEnd}

	got, err := NewRecorder(eng).Record(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "still here", got)
}

func TestRecordEngineErrorFlushes(t *testing.T) {
	eng := newFakeEngine()
	eng.events <- resultEvent("partial")
	eng.events <- Event{Type: EventError, Error: "network"}

	got, err := NewRecorder(eng).Record(context.Background())

	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "network", engErr.Code)
	assert.Equal(t, "partial", got)
}

func TestRecordEngineUnavailable(t *testing.T) {
	_, err := NewRecorder(nil).Record(context.Background())
	assert.ErrorIs(t, err, ErrEngineUnavailable)

	eng := newFakeEngine()
	eng.startErr = errors.New("no microphone")
	r := NewRecorder(eng)
	_, err = r.Record(context.Background())
	assert.ErrorIs(t, err, ErrEngineUnavailable)
	assert.Contains(t, err.Error(), "no microphone")
	assert.False(t, r.Listening())
}

func TestRecordToggleAndStop(t *testing.T) {
	eng := newFakeEngine()
	r := NewRecorder(eng, WithTimeout(time.Minute))

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := r.Record(context.Background())
		done <- outcome{text, err}
	}()

	eng.events <- resultEvent("remember this")
	require.Eventually(t, r.Listening, time.Second, time.Millisecond)

	_, err := r.Record(context.Background())
	assert.ErrorIs(t, err, ErrToggledOff)

	select {
	case o := <-done:
		require.NoError(t, o.err)
		assert.False(t, r.Listening())
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
	}

	r.Stop()
	r.Stop()
	assert.False(t, r.Listening())
}

func TestRecordCancelled(t *testing.T) {
	eng := newFakeEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRecorder(eng, WithTimeout(time.Minute)).Record(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordPreview(t *testing.T) {
	eng := newFakeEngine()
	eng.events <- Event{Type: EventResult, Results: []Result{{Text: "buy mi"}}}
	eng.events <- Event{Type: EventResult, Results: []Result{{Text: "buy milk", Final: true}}}
	eng.events <- Event{Type: EventEnd}

	var previews []string
	got, err := NewRecorder(eng, WithPreview(func(s string) { previews = append(previews, s) })).
		Record(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "buy milk", got)
	assert.Equal(t, []string{"buy mi"}, previews)
}

func TestStreamEngine(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"start"}`,
		`{"type":"result","results":[{"text":"go","final":true}]}`,
		``,
		`{"type":"error","error":"no-speech"}`,
		`{"type":"result","results":[{"text":"go","final":true},{"text":"go to the gym","final":true}]}`,
		`{"type":"end"}`,
		`{"type":"result","results":[{"text":"ignored","final":true}]}`,
	}, "\n")

	got, err := NewRecorder(NewStreamEngine(strings.NewReader(input))).Record(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "go to the gym", got)
}

func TestStreamEngineBadLine(t *testing.T) {
	input := "{\"type\":\"result\",\"results\":[{\"text\":\"ok\",\"final\":true}]}\nnot json\n"

	got, err := NewRecorder(NewStreamEngine(strings.NewReader(input))).Record(context.Background())

	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, CodeBadEvent, engErr.Code)
	assert.Equal(t, "ok", got)
}

func TestStreamEngineSingleUse(t *testing.T) {
	eng := NewStreamEngine(strings.NewReader(""))
	r := NewRecorder(eng)

	got, err := r.Record(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = r.Record(context.Background())
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestStreamEngineStopClosesReader(t *testing.T) {
	pr, pw := io.Pipe()
	eng := NewStreamEngine(pr)
	events, err := eng.Start(context.Background())
	require.NoError(t, err)

	_, err = pw.Write([]byte(`{"type":"start"}` + "\n"))
	require.NoError(t, err)
	ev := <-events
	assert.Equal(t, EventStart, ev.Type)

	eng.Stop()
	eng.Stop()

	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(time.Second):
		t.Fatal("reader goroutine still running after Stop")
	}
	_, err = pw.Write([]byte("{}\n"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
