package screens

import (
	"sync"

	"todo/internal/service"
)

// Route names a destination screen.
type Route int

const (
	RouteLogin Route = iota
	RouteSignUp
	RouteTaskList
)

func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "login"
	case RouteSignUp:
		return "signup"
	case RouteTaskList:
		return "tasklist"
	default:
		return "unknown"
	}
}

// Router holds the current destination and the signed-in session.
// Navigation only happens through explicit calls.
type Router struct {
	mu      sync.RWMutex
	route   Route
	session *service.Session
	onNav   func(from, to Route)
}

// NewRouter returns a router positioned on the Login screen.
func NewRouter() *Router {
	return &Router{route: RouteLogin}
}

// OnNavigate registers a callback invoked after every route change.
func (r *Router) OnNavigate(fn func(from, to Route)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onNav = fn
}

// Route returns the current destination.
func (r *Router) Route() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.route
}

// Session returns the signed-in session, or nil when anonymous.
func (r *Router) Session() *service.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session
}

// Navigate moves to the given route.
func (r *Router) Navigate(to Route) {
	r.mu.Lock()
	from := r.route
	r.route = to
	fn := r.onNav
	r.mu.Unlock()

	if fn != nil && from != to {
		fn(from, to)
	}
}

// SignedIn stores sess and moves to the task list.
func (r *Router) SignedIn(sess *service.Session) {
	r.mu.Lock()
	r.session = sess
	r.mu.Unlock()
	r.Navigate(RouteTaskList)
}
