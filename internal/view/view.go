//go:generate go run go.uber.org/mock/mockgen -source=view.go -destination=../mocks/mock_api.go -package=mocks

// Package view keeps a client-side replica of the todo list in sync with the
// server. The replica only ever changes from a successful server response.
package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"todo-sync/internal/models"
	"todo-sync/pkg/logger"

	"github.com/samber/lo"
)

// API is the command surface of the todo server.
type API interface {
	List(ctx context.Context) ([]models.Todo, error)
	Create(ctx context.Context, title string) (models.Todo, error)
	Update(ctx context.Context, id string, patch models.TodoPatch) (models.Todo, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrEmptyTitle = errors.New("title cannot be empty")
	ErrUnknownID  = errors.New("todo not in replica")
)

// View is the replica plus the commands that keep it synchronized.
type View struct {
	api API

	mu    sync.RWMutex
	todos []models.Todo
}

// New returns a view with an empty replica. Call Load to populate it.
func New(api API) *View {
	return &View{api: api, todos: []models.Todo{}}
}

// Load replaces the replica with the server's full list.
func (v *View) Load(ctx context.Context) error {
	todos, err := v.api.List(ctx)
	if err != nil {
		return v.fail(ctx, "load", "", err)
	}
	v.mu.Lock()
	v.todos = append([]models.Todo{}, todos...)
	v.mu.Unlock()
	return nil
}

// Add creates a todo and appends the server's copy to the replica.
func (v *View) Add(ctx context.Context, title string) (models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Todo{}, v.fail(ctx, "add", "", ErrEmptyTitle)
	}
	todo, err := v.api.Create(ctx, title)
	if err != nil {
		return models.Todo{}, v.fail(ctx, "add", "", err)
	}
	v.mu.Lock()
	v.todos = append(v.todos, todo)
	v.mu.Unlock()
	return todo, nil
}

// Toggle flips completed based on the replica's current value.
func (v *View) Toggle(ctx context.Context, id string) (models.Todo, error) {
	current, ok := v.Get(id)
	if !ok {
		return models.Todo{}, v.fail(ctx, "toggle", id, ErrUnknownID)
	}
	completed := !current.Completed
	return v.update(ctx, "toggle", id, models.TodoPatch{Completed: &completed})
}

// Edit renames a todo.
func (v *View) Edit(ctx context.Context, id, title string) (models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Todo{}, v.fail(ctx, "edit", id, ErrEmptyTitle)
	}
	return v.update(ctx, "edit", id, models.TodoPatch{Title: &title})
}

// update sends the patch and replaces the replica entry with the response.
func (v *View) update(ctx context.Context, op, id string, patch models.TodoPatch) (models.Todo, error) {
	todo, err := v.api.Update(ctx, id, patch)
	if err != nil {
		return models.Todo{}, v.fail(ctx, op, id, err)
	}
	v.mu.Lock()
	v.todos = lo.Map(v.todos, func(t models.Todo, _ int) models.Todo {
		if t.ID == id {
			return todo
		}
		return t
	})
	v.mu.Unlock()
	return todo, nil
}

// Delete removes a todo on the server, then from the replica.
func (v *View) Delete(ctx context.Context, id string) error {
	if err := v.api.Delete(ctx, id); err != nil {
		return v.fail(ctx, "delete", id, err)
	}
	v.mu.Lock()
	v.todos = lo.Reject(v.todos, func(t models.Todo, _ int) bool { return t.ID == id })
	v.mu.Unlock()
	return nil
}

// Get looks a todo up in the replica.
func (v *View) Get(id string) (models.Todo, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return lo.Find(v.todos, func(t models.Todo) bool { return t.ID == id })
}

// Todos returns a copy of the replica in its stored order.
func (v *View) Todos() []models.Todo {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]models.Todo{}, v.todos...)
}

// Ordered returns the replica for display: pending first, then completed.
func (v *View) Ordered() []models.Todo {
	return Partition(v.Todos())
}

// Partition is a stable split by completed, pending first.
func Partition(todos []models.Todo) []models.Todo {
	pending := lo.Filter(todos, func(t models.Todo, _ int) bool { return !t.Completed })
	done := lo.Filter(todos, func(t models.Todo, _ int) bool { return t.Completed })
	return append(pending, done...)
}

// Stats counts completed and pending todos in the replica.
func (v *View) Stats() (done, pending int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	done = lo.CountBy(v.todos, func(t models.Todo) bool { return t.Completed })
	return done, len(v.todos) - done
}

func (v *View) fail(ctx context.Context, op, id string, err error) error {
	logger.Error(ctx, "Todo command failed", "op", op, "id", id, "error", err)
	if id != "" {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
