// Package asyncstate tracks {loading, error} for one logical operation.
package asyncstate

import (
	"context"
	"sync"
)

// State is the observable status of an operation.
type State struct {
	Loading bool
	Error   string
}

// Tracker holds the State of one logical operation and notifies a subscriber on change.
// The zero value is ready to use.
type Tracker struct {
	mu       sync.Mutex
	state    State
	inflight int
	onChange func(State)
}

// New creates a Tracker that calls onChange (may be nil) after every transition.
func New(onChange func(State)) *Tracker {
	return &Tracker{onChange: onChange}
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Loading reports whether an operation is running.
func (t *Tracker) Loading() bool {
	return t.State().Loading
}

// Err returns the last failure message, or "".
func (t *Tracker) Err() string {
	return t.State().Error
}

// SetError records a failure that did not come from Run, e.g. a local validation failure.
func (t *Tracker) SetError(msg string) {
	t.update(func(s *State) { s.Error = msg })
}

// ClearError drops any recorded failure.
func (t *Tracker) ClearError() {
	t.update(func(s *State) { s.Error = "" })
}

func (t *Tracker) begin() {
	t.update(func(s *State) {
		t.inflight++
		s.Loading = true
		s.Error = ""
	})
}

func (t *Tracker) end(err error) {
	t.update(func(s *State) {
		t.inflight--
		s.Loading = t.inflight > 0
		if err != nil {
			s.Error = err.Error()
		}
	})
}

func (t *Tracker) update(fn func(*State)) {
	t.mu.Lock()
	fn(&t.state)
	snapshot := t.state
	cb := t.onChange
	t.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Run sets loading, clears any prior error, runs op, records a failure message, and returns
// op's result and original error unchanged. Loading is reset on every exit path, including
// context cancellation and panics (which keep propagating).
func Run[T any](ctx context.Context, t *Tracker, op func(context.Context) (T, error)) (result T, err error) {
	t.begin()
	defer func() {
		if r := recover(); r != nil {
			t.end(nil)
			panic(r)
		}
		t.end(err)
	}()

	return op(ctx)
}

// Do is Run for operations without a result value.
func Do(ctx context.Context, t *Tracker, op func(context.Context) error) error {
	_, err := Run(ctx, t, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
