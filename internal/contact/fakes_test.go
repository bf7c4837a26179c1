package contact

import (
	"context"
	"sync"
	"time"
)

// recordingUI keeps the visible state of a form plus the call log.
type recordingUI struct {
	mu      sync.Mutex
	fields  Fields
	errors  map[Field]string
	label   string
	enabled bool
	color   ColorTag
	calls   []string
}

func newRecordingUI(fields Fields) *recordingUI {
	return &recordingUI{
		fields:  fields,
		errors:  make(map[Field]string),
		label:   DefaultLabels().Idle,
		enabled: true,
	}
}

func (u *recordingUI) SetFieldError(field Field, message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if message == "" {
		delete(u.errors, field)
	} else {
		u.errors[field] = message
	}
	u.calls = append(u.calls, "error:"+string(field)+"="+message)
}

func (u *recordingUI) SetControlState(label string, enabled bool, color ColorTag) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.label, u.enabled, u.color = label, enabled, color
	u.calls = append(u.calls, "control:"+label)
}

func (u *recordingUI) ClearFields() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.fields = Fields{}
	u.calls = append(u.calls, "clear")
}

func (u *recordingUI) visibleErrors() map[Field]string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[Field]string, len(u.errors))
	for k, v := range u.errors {
		out[k] = v
	}
	return out
}

func (u *recordingUI) control() (string, bool, ColorTag) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.label, u.enabled, u.color
}

func (u *recordingUI) currentFields() Fields {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.fields
}

// fakeScheduler captures scheduled callbacks so tests can fire them.
type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

type fakeTask struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTask{delay: d, fn: f}
	s.tasks = append(s.tasks, t)
	return t
}

// fireAll runs every task that is neither stopped nor fired.
func (s *fakeScheduler) fireAll() {
	s.mu.Lock()
	var due []*fakeTask
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func (s *fakeScheduler) delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.delay)
	}
	return out
}

// countingSender counts calls and returns err.
type countingSender struct {
	mu    sync.Mutex
	calls int
	last  Fields
	err   error
}

func (s *countingSender) Send(_ context.Context, f Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = f
	return s.err
}

func (s *countingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
