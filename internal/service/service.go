package service

import "context"

// Auth turns email and password into a session.
type Auth interface {
	// SignIn authenticates with email and password.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignUp registers a new account. It does not sign the caller in.
	SignUp(ctx context.Context, email, password string) error
}

// Store issues CRUD calls against the tasks table.
// All calls go through this interface; callers never build requests themselves.
type Store interface {
	// ListTasks returns all rows ordered by id descending.
	// Returns an empty slice when the backend returns no rows.
	ListTasks(ctx context.Context, sess *Session) ([]Task, error)

	// InsertTask inserts a row with the given title and returns it as stored.
	InsertTask(ctx context.Context, sess *Session, title string) (Task, error)

	// DeleteTask deletes the row with the given id.
	// Deleting an id that does not exist is not an error.
	DeleteTask(ctx context.Context, sess *Session, id int64) error

	// Probe issues a lightweight query against the tasks table.
	Probe(ctx context.Context, sess *Session) error
}

// Backend is the full remote data service.
type Backend interface {
	Auth
	Store
}
