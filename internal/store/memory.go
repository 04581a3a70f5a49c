package store

import (
	"context"
	"errors"
	"sync"

	"todo-sync/internal/models"
	"todo-sync/pkg/logger"
)

const maxIDAttempts = 8

var errIDExhausted = errors.New("id generator kept returning retired ids")

// Memory is an in-process Store. All mutations are serialized by mu.
type Memory struct {
	mu       sync.RWMutex
	todos    map[string]models.Todo
	order    []string
	issued   map[string]struct{}
	revision uint64

	newID IDGenerator
	now   Clock
}

// Option configures a Memory store.
type Option func(*Memory)

// WithIDGenerator overrides the UUID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Memory) { m.newID = g }
}

// WithClock overrides the wall clock used for createdAt.
func WithClock(c Clock) Option {
	return func(m *Memory) { m.now = c }
}

// NewMemory returns an empty store.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		todos:  make(map[string]models.Todo),
		issued: make(map[string]struct{}),
		newID:  NewUUID,
		now:    systemClock,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// List returns all todos in creation order.
func (m *Memory) List(ctx context.Context) []models.Todo {
	todos, _ := m.Snapshot(ctx)
	return todos
}

// Snapshot returns all todos together with the revision they were read at.
func (m *Memory) Snapshot(_ context.Context) ([]models.Todo, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Todo, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.todos[id])
	}
	return out, m.revision
}

// Create inserts a new todo with a fresh id.
func (m *Memory) Create(ctx context.Context, title string) (models.Todo, error) {
	if err := validateTitle(title); err != nil {
		return models.Todo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.allocateID()
	if err != nil {
		logger.Error(ctx, "Store Create failed", "error", err)
		return models.Todo{}, err
	}
	todo := models.Todo{
		ID:        id,
		Title:     title,
		Completed: false,
		CreatedAt: m.now(),
	}
	m.todos[id] = todo
	m.order = append(m.order, id)
	m.revision++
	return todo, nil
}

// allocateID must be called with mu held.
func (m *Memory) allocateID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := m.newID()
		if id == "" {
			continue
		}
		if _, used := m.issued[id]; used {
			continue
		}
		m.issued[id] = struct{}{}
		return id, nil
	}
	return "", errIDExhausted
}

// Update applies the supplied patch fields to an existing todo.
func (m *Memory) Update(_ context.Context, id string, patch models.TodoPatch) (models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	todo, ok := m.todos[id]
	if !ok {
		return models.Todo{}, &NotFoundError{ID: id}
	}
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return models.Todo{}, err
		}
		todo.Title = *patch.Title
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	m.todos[id] = todo
	if !patch.Empty() {
		m.revision++
	}
	return todo, nil
}

// Delete removes a todo. Its id stays retired.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.todos[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(m.todos, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.revision++
	return nil
}
