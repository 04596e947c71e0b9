package service

import "errors"

// Kind classifies an error for reporting.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindBackend    Kind = "backend"
	KindSetup      Kind = "setup"
)

// SetupRequiredMessage is shown when the tasks table is missing.
const SetupRequiredMessage = "The tasks table does not exist in your database. Please create it first."

// Error carries a classification and the message to show the user.
// Message is the backend's text, unchanged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a classified error.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError classifies an existing error.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ErrTitleRequired is returned when a task title is empty or whitespace.
var ErrTitleRequired = NewError(KindValidation, "Please enter a task")

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindBackend for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindBackend
}
