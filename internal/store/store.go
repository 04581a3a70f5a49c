// Package store holds the authoritative todo collection.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"todo-sync/internal/models"

	"github.com/google/uuid"
)

// Store is the CRUD contract the HTTP layer is written against.
type Store interface {
	List(ctx context.Context) []models.Todo
	Snapshot(ctx context.Context) ([]models.Todo, uint64)
	Create(ctx context.Context, title string) (models.Todo, error)
	Update(ctx context.Context, id string, patch models.TodoPatch) (models.Todo, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("todo not found")
)

// ValidationError is returned when a title is missing or blank.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError is returned for an id the store does not hold.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("todo %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IDGenerator allocates todo ids.
type IDGenerator func() string

// Clock stamps createdAt.
type Clock func() time.Time

// NewUUID is the default IDGenerator.
func NewUUID() string {
	return uuid.New().String()
}

func systemClock() time.Time {
	return time.Now().UTC()
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	return nil
}
