// Package tasks implements the task list operations on top of a service.Store.
package tasks

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"todo/internal/service"
)

// Repository lists, adds and removes tasks. Every call carries the session
// explicitly; a nil session means the anonymous role.
type Repository struct {
	store  service.Store
	logger *zap.Logger
}

// NewRepository creates a repository over store.
func NewRepository(store service.Store, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{store: store, logger: log.Named("tasks")}
}

// List returns every task visible to sess, newest (highest id) first.
// An empty table yields an empty, non-nil slice.
func (r *Repository) List(ctx context.Context, sess *service.Session) ([]service.Task, error) {
	items, err := r.store.ListTasks(ctx, sess)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []service.Task{}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	r.logger.Debug("listed tasks", zap.Int("count", len(items)))
	return items, nil
}

// Add inserts a task. A title that is empty after trimming is rejected with
// service.ErrTitleRequired before any backend call; otherwise the title is
// stored exactly as given.
func (r *Repository) Add(ctx context.Context, sess *service.Session, title string) (service.Task, error) {
	if strings.TrimSpace(title) == "" {
		return service.Task{}, service.ErrTitleRequired
	}
	task, err := r.store.InsertTask(ctx, sess, title)
	if err != nil {
		return service.Task{}, err
	}
	r.logger.Debug("added task", zap.Int64("id", task.ID))
	return task, nil
}

// Remove deletes the task with id. Removing an id that does not exist is
// not an error.
func (r *Repository) Remove(ctx context.Context, sess *service.Session, id int64) error {
	if err := r.store.DeleteTask(ctx, sess, id); err != nil {
		return err
	}
	r.logger.Debug("removed task", zap.Int64("id", id))
	return nil
}

// CheckConnectivity probes the tasks table. A missing table is reported as
// a service.KindSetup error.
func (r *Repository) CheckConnectivity(ctx context.Context, sess *service.Session) error {
	err := r.store.Probe(ctx, sess)
	if err != nil {
		r.logger.Debug("probe failed", zap.String("kind", string(service.KindOf(err))), zap.Error(err))
	}
	return err
}
