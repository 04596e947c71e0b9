// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"todo/internal/service"
)

// Messages the fake returns, matching the hosted backend's wording.
const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgAlreadyRegistered  = "User already registered"
	MsgMissingTable       = `relation "public.tasks" does not exist`
)

// FakeBackend is an in-memory implementation of service.Backend for testing.
type FakeBackend struct {
	mu     sync.RWMutex
	users  map[string]string
	tasks  []service.Task
	nextID int64
	calls  map[string]int

	// TableMissing makes every table call fail with a setup error.
	TableMissing bool

	// Error injection for testing
	SignInErr error
	SignUpErr error
	ListErr   error
	InsertErr error
	DeleteErr error
	ProbeErr  error

	// Gate, when non-nil, blocks every call until it receives or is closed.
	Gate chan struct{}

	// Sessions records the session passed to each table call.
	Sessions []*service.Session
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		users:  make(map[string]string),
		nextID: 1,
		calls:  make(map[string]int),
	}
}

// AddUser registers an account.
func (f *FakeBackend) AddUser(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = password
}

// AddTask seeds a task and returns its id.
func (f *FakeBackend) AddTask(title string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(title).ID
}

// HasUser reports whether an account exists.
func (f *FakeBackend) HasUser(email string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.users[email]
	return ok
}

// Calls returns how many times the named method was invoked.
func (f *FakeBackend) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeBackend) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// enter counts the call, then waits on the gate if one is set.
func (f *FakeBackend) enter(ctx context.Context, method string, sess *service.Session, table bool) error {
	f.mu.Lock()
	f.calls[method]++
	if table {
		f.Sessions = append(f.Sessions, sess)
	}
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if table && f.TableMissing {
		return service.NewError(service.KindSetup, MsgMissingTable)
	}
	return nil
}

// SignIn implements service.Auth.
func (f *FakeBackend) SignIn(ctx context.Context, email, password string) (*service.Session, error) {
	if err := f.enter(ctx, "SignIn", nil, false); err != nil {
		return nil, err
	}
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	if pw, ok := f.users[email]; !ok || pw != password {
		return nil, service.NewError(service.KindAuth, MsgInvalidCredentials)
	}
	tok := &oauth2.Token{
		AccessToken: "token-" + email,
		TokenType:   "bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
	return &service.Session{
		User:  service.User{ID: "user-" + email, Email: email},
		Token: tok,
	}, nil
}

// SignUp implements service.Auth.
func (f *FakeBackend) SignUp(ctx context.Context, email, password string) error {
	if err := f.enter(ctx, "SignUp", nil, false); err != nil {
		return err
	}
	if f.SignUpErr != nil {
		return f.SignUpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[email]; ok {
		return service.NewError(service.KindAuth, MsgAlreadyRegistered)
	}
	f.users[email] = password
	return nil
}

// ListTasks implements service.Store.
func (f *FakeBackend) ListTasks(ctx context.Context, sess *service.Session) ([]service.Task, error) {
	if err := f.enter(ctx, "ListTasks", sess, true); err != nil {
		return nil, err
	}
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// InsertTask implements service.Store.
func (f *FakeBackend) InsertTask(ctx context.Context, sess *service.Session, title string) (service.Task, error) {
	if err := f.enter(ctx, "InsertTask", sess, true); err != nil {
		return service.Task{}, err
	}
	if f.InsertErr != nil {
		return service.Task{}, f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(title), nil
}

// DeleteTask implements service.Store.
func (f *FakeBackend) DeleteTask(ctx context.Context, sess *service.Session, id int64) error {
	if err := f.enter(ctx, "DeleteTask", sess, true); err != nil {
		return err
	}
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	// Zero rows affected is not an error.
	return nil
}

// Probe implements service.Store.
func (f *FakeBackend) Probe(ctx context.Context, sess *service.Session) error {
	if err := f.enter(ctx, "Probe", sess, true); err != nil {
		return err
	}
	return f.ProbeErr
}

func (f *FakeBackend) insertLocked(title string) service.Task {
	task := service.Task{
		ID:        f.nextID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task
}
