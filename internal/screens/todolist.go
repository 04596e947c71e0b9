package screens

import (
	"context"

	"go.uber.org/zap"

	"todo/internal/service"
)

// TaskStore is the subset of the task repository the list screen uses.
type TaskStore interface {
	List(ctx context.Context, sess *service.Session) ([]service.Task, error)
	Add(ctx context.Context, sess *service.Session, title string) (service.Task, error)
	Remove(ctx context.Context, sess *service.Session, id int64) error
	CheckConnectivity(ctx context.Context, sess *service.Session) error
}

// Alert titles.
const (
	AlertError   = "Error"
	AlertSuccess = "Success"
	AlertSetup   = "Setup Required"
)

// MsgTaskAdded is the confirmation shown after a successful add.
const MsgTaskAdded = "Task added successfully!"

// Alert is a blocking message the view shows until dismissed.
type Alert struct {
	Title   string
	Message string
}

// TodoListView is a snapshot of the task list screen.
type TodoListView struct {
	Draft      string
	Tasks      []service.Task
	Refreshing bool
	Error      string
	State      State
	Alert      *Alert
}

// TodoList shows the tasks and handles add, delete and pull-to-refresh.
type TodoList struct {
	screen
	store  TaskStore
	router *Router
	logger *zap.Logger

	draft      string
	tasks      []service.Task
	refreshing bool
	err        string
	alerts     []Alert

	// loadSeq numbers list calls in issue order; applied is the newest one
	// whose result reached the screen. Older results are dropped.
	loadSeq uint64
	applied uint64
}

// NewTodoList creates a TodoList controller.
func NewTodoList(store TaskStore, router *Router, log *zap.Logger) *TodoList {
	if log == nil {
		log = zap.NewNop()
	}
	return &TodoList{
		store:  store,
		router: router,
		logger: log.Named("todolist"),
		tasks:  []service.Task{},
	}
}

// Mount starts the screen's lifetime, probes the tasks table and then loads
// the list. The list is loaded whatever the probe reports; a missing table
// raises a single setup alert.
func (c *TodoList) Mount(parent context.Context) error {
	c.mu.Lock()
	c.life.mount(parent)
	c.state = StateIdle
	c.refreshing = false
	c.err = ""
	ctx, gen, _ := c.life.current()
	c.mu.Unlock()

	sess := c.router.Session()
	if err := c.store.CheckConnectivity(ctx, sess); err != nil {
		c.mu.Lock()
		if !c.life.alive(gen) {
			c.mu.Unlock()
			return ErrUnmounted
		}
		if service.IsKind(err, service.KindSetup) {
			c.alerts = append(c.alerts, Alert{Title: AlertSetup, Message: service.SetupRequiredMessage})
		}
		c.mu.Unlock()
		c.logger.Debug("connection test failed", zap.Error(err))
	} else {
		c.logger.Debug("connection test successful")
	}

	return c.load(ctx, gen)
}

// SetDraft replaces the new-task input.
func (c *TodoList) SetDraft(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = title
}

// Submit adds the draft as a new task. On success the draft is cleared and
// the list is reloaded; on failure the draft is kept.
func (c *TodoList) Submit() error {
	ctx, gen, err := c.begin()
	if err != nil {
		return err
	}

	c.mu.Lock()
	draft := c.draft
	c.mu.Unlock()

	c.logger.Debug("adding task", zap.String("title", draft))
	task, addErr := c.store.Add(ctx, c.router.Session(), draft)

	c.mu.Lock()
	if !c.life.alive(gen) {
		c.mu.Unlock()
		return ErrUnmounted
	}
	if addErr != nil {
		msg := addErr.Error()
		if !service.IsKind(addErr, service.KindValidation) {
			msg = "Failed to add task: " + msg
		}
		c.fail(msg)
		c.mu.Unlock()
		return addErr
	}
	c.draft = ""
	c.alerts = append(c.alerts, Alert{Title: AlertSuccess, Message: MsgTaskAdded})
	c.mu.Unlock()
	c.logger.Debug("task added", zap.Int64("id", task.ID))

	return c.settle(gen, c.load(ctx, gen))
}

// Delete removes the task with id and reloads the list. A failed delete
// leaves the list as it was.
func (c *TodoList) Delete(id int64) error {
	ctx, gen, err := c.begin()
	if err != nil {
		return err
	}

	rmErr := c.store.Remove(ctx, c.router.Session(), id)

	c.mu.Lock()
	if !c.life.alive(gen) {
		c.mu.Unlock()
		return ErrUnmounted
	}
	if rmErr != nil {
		c.fail(rmErr.Error())
		c.mu.Unlock()
		return rmErr
	}
	c.mu.Unlock()

	return c.settle(gen, c.load(ctx, gen))
}

// Refresh reloads the list, holding Refreshing true for the duration of the
// call whatever its outcome.
func (c *TodoList) Refresh() error {
	c.mu.Lock()
	ctx, gen, ok := c.life.current()
	if !ok {
		c.mu.Unlock()
		return ErrUnmounted
	}
	if c.refreshing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.refreshing = true
	c.mu.Unlock()

	err := c.load(ctx, gen)

	c.mu.Lock()
	if c.life.alive(gen) {
		c.refreshing = false
	}
	c.mu.Unlock()
	return err
}

// PopAlert removes and returns the oldest pending alert.
func (c *TodoList) PopAlert() (Alert, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.alerts) == 0 {
		return Alert{}, false
	}
	a := c.alerts[0]
	c.alerts = c.alerts[1:]
	return a, true
}

// Alerts returns the pending alerts, oldest first, without removing them.
func (c *TodoList) Alerts() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Alert, len(c.alerts))
	copy(out, c.alerts)
	return out
}

// View returns a snapshot of the screen. Alert is the oldest pending alert.
func (c *TodoList) View() TodoListView {
	c.mu.Lock()
	defer c.mu.Unlock()
	tasks := make([]service.Task, len(c.tasks))
	copy(tasks, c.tasks)
	v := TodoListView{
		Draft:      c.draft,
		Tasks:      tasks,
		Refreshing: c.refreshing,
		Error:      c.err,
		State:      c.state,
	}
	if len(c.alerts) > 0 {
		a := c.alerts[0]
		v.Alert = &a
	}
	return v
}

// load fetches the list and replaces the in-memory copy. On failure the
// previous list is kept. A result that arrives after a newer call's result
// has been applied is discarded.
func (c *TodoList) load(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.mu.Unlock()

	c.logger.Debug("fetching tasks", zap.Uint64("seq", seq))
	items, err := c.store.List(ctx, c.router.Session())

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.life.alive(gen) {
		return ErrUnmounted
	}
	if seq < c.applied {
		c.logger.Debug("dropped stale task list", zap.Uint64("seq", seq), zap.Uint64("applied", c.applied))
		return nil
	}
	c.applied = seq
	if err != nil {
		c.err = err.Error()
		c.alerts = append(c.alerts, Alert{Title: AlertError, Message: "Failed to fetch tasks: " + err.Error()})
		return err
	}
	c.tasks = items
	c.err = ""
	c.logger.Debug("tasks fetched", zap.Int("count", len(items)))
	return nil
}

// settle ends a submission that reached the backend successfully. The
// follow-up load error, if any, is returned but does not fail the submission.
func (c *TodoList) settle(gen uint64, loadErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.life.alive(gen) {
		return ErrUnmounted
	}
	c.state = StateSuccess
	return loadErr
}

// fail records a failed submission. c.mu must be held.
func (c *TodoList) fail(msg string) {
	c.state = StateError
	c.err = msg
	c.alerts = append(c.alerts, Alert{Title: AlertError, Message: msg})
}
