package models

import "time"

// Todo represents a todo item.
type Todo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// TodoPatch is a partial update. Nil fields are left unchanged.
type TodoPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TodoEvent is the message payload for Kafka, published after a mutation.
type TodoEvent struct {
	Action string    `json:"action"` // created, updated, deleted
	ID     string    `json:"id"`
	Todo   *Todo     `json:"todo,omitempty"`
	At     time.Time `json:"at"`
}
