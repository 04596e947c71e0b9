// Package screens holds the state machines behind the Login, SignUp and
// TaskList views. Controllers are safe for concurrent use: a view may render
// a snapshot while a remote call started by the same controller is pending.
package screens

import (
	"context"
	"errors"
	"sync"
)

// State is the phase of a screen's current submission.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy is returned when a submit arrives while another is in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrUnmounted is returned when a screen is used outside its lifetime,
	// including when a response arrives after the screen was unmounted.
	ErrUnmounted = errors.New("screen is not mounted")
)

// lifetime ties remote calls to the period between Mount and Unmount.
// Each mount gets a new generation so a call started under an earlier
// mount can tell that its result is stale.
type lifetime struct {
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
}

func (l *lifetime) mount(parent context.Context) {
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	l.ctx, l.cancel = context.WithCancel(parent)
}

func (l *lifetime) unmount() {
	if l.cancel != nil {
		l.cancel()
	}
	l.ctx, l.cancel = nil, nil
	l.gen++
}

func (l *lifetime) current() (context.Context, uint64, bool) {
	if l.ctx == nil {
		return nil, 0, false
	}
	return l.ctx, l.gen, true
}

func (l *lifetime) alive(gen uint64) bool {
	return l.ctx != nil && l.gen == gen && l.ctx.Err() == nil
}

// screen is the part shared by every controller.
type screen struct {
	mu    sync.Mutex
	life  lifetime
	state State
}

// Mount starts the screen's lifetime under parent and resets it to idle.
func (s *screen) Mount(parent context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.life.mount(parent)
	s.state = StateIdle
}

// Unmount cancels every pending call. Their results are discarded.
func (s *screen) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.life.unmount()
}

// Mounted reports whether the screen is between Mount and Unmount.
func (s *screen) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _, ok := s.life.current()
	return ok
}

// begin moves the screen to submitting and returns the context the call
// must run under. The caller must not hold s.mu.
func (s *screen) begin() (context.Context, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, gen, ok := s.life.current()
	if !ok {
		return nil, 0, ErrUnmounted
	}
	if s.state == StateSubmitting {
		return nil, 0, ErrBusy
	}
	s.state = StateSubmitting
	return ctx, gen, nil
}
