package screens

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"todo/internal/service"
)

// Authenticator is the subset of the session gateway the auth screens use.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*service.Session, error)
	SignUp(ctx context.Context, email, password string) error
}

// FormView is a snapshot of an email/password screen.
type FormView struct {
	Email    string
	Password string
	Error    string
	State    State
}

// form holds the fields shared by Login and SignUp.
type form struct {
	screen
	email    string
	password string
	err      string
}

// SetEmail replaces the email field.
func (f *form) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = email
}

// SetPassword replaces the password field.
func (f *form) SetPassword(password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.password = password
}

// View returns a snapshot of the form.
func (f *form) View() FormView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormView{
		Email:    f.email,
		Password: f.password,
		Error:    f.err,
		State:    f.state,
	}
}

// submit runs call with the current fields and records its outcome.
// onSuccess runs only if the screen is still mounted.
func (f *form) submit(call func(ctx context.Context, email, password string) error, onSuccess func()) error {
	ctx, gen, err := f.begin()
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.err = ""
	email, password := f.email, f.password
	f.mu.Unlock()

	callErr := call(ctx, email, password)

	f.mu.Lock()
	if !f.life.alive(gen) {
		f.mu.Unlock()
		return ErrUnmounted
	}
	if callErr != nil {
		f.state = StateError
		f.err = callErr.Error()
		f.mu.Unlock()
		return callErr
	}
	f.state = StateSuccess
	f.mu.Unlock()

	// Navigation may unmount this screen, so it runs without the lock.
	onSuccess()
	return nil
}

func isControlErr(err error) bool {
	return errors.Is(err, ErrBusy) || errors.Is(err, ErrUnmounted)
}

// Login signs a user in and moves to the task list on success.
type Login struct {
	form
	auth   Authenticator
	router *Router
	logger *zap.Logger
}

// NewLogin creates a Login controller.
func NewLogin(auth Authenticator, router *Router, log *zap.Logger) *Login {
	if log == nil {
		log = zap.NewNop()
	}
	return &Login{auth: auth, router: router, logger: log.Named("login")}
}

// Submit signs in with the current fields. On failure the backend's message
// is kept in the view and the screen stays on Login.
func (c *Login) Submit() error {
	var sess *service.Session
	err := c.submit(func(ctx context.Context, email, password string) error {
		var err error
		sess, err = c.auth.SignIn(ctx, email, password)
		return err
	}, func() {
		c.router.SignedIn(sess)
	})
	if err != nil && !isControlErr(err) {
		c.logger.Debug("sign in rejected", zap.Error(err))
	}
	return err
}

// GoToSignUp navigates to the SignUp screen.
func (c *Login) GoToSignUp() {
	c.router.Navigate(RouteSignUp)
}

// SignUp registers an account and returns to Login on success.
type SignUp struct {
	form
	auth   Authenticator
	router *Router
	logger *zap.Logger
}

// NewSignUp creates a SignUp controller.
func NewSignUp(auth Authenticator, router *Router, log *zap.Logger) *SignUp {
	if log == nil {
		log = zap.NewNop()
	}
	return &SignUp{auth: auth, router: router, logger: log.Named("signup")}
}

// Submit registers the current fields. Success does not sign the user in.
func (c *SignUp) Submit() error {
	err := c.submit(c.auth.SignUp, func() {
		c.router.Navigate(RouteLogin)
	})
	if err != nil && !isControlErr(err) {
		c.logger.Debug("sign up rejected", zap.Error(err))
	}
	return err
}

// GoToLogin navigates back to the Login screen.
func (c *SignUp) GoToLogin() {
	c.router.Navigate(RouteLogin)
}
