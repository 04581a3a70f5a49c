package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"todo-sync/internal/models"

	"github.com/stretchr/testify/require"
)

func TestEncode_KeysByTodoID(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	todo := models.Todo{ID: "abc", Title: "Buy milk", CreatedAt: at}

	msg, err := Encode(models.TodoEvent{Action: models.ActionCreated, ID: "abc", Todo: &todo, At: at})

	req.NoError(err)
	req.Equal([]byte("abc"), msg.Key)
	var decoded models.TodoEvent
	req.NoError(json.Unmarshal(msg.Value, &decoded))
	req.Equal(models.ActionCreated, decoded.Action)
	req.Equal(todo, *decoded.Todo)
}

func TestEncode_DeletedEventHasNoTodo(t *testing.T) {
	req := require.New(t)
	msg, err := Encode(models.TodoEvent{Action: models.ActionDeleted, ID: "abc", At: time.Now()})
	req.NoError(err)
	req.NotContains(string(msg.Value), `"todo"`)
}

func TestNop_Publish(t *testing.T) {
	var p Publisher = Nop{}
	require.NoError(t, p.Publish(context.Background(), models.TodoEvent{ID: "x"}))
	require.NoError(t, p.Close())
}

func TestEnsureTopic_NoBrokers(t *testing.T) {
	// must return immediately without dialing
	EnsureTopic(context.Background(), nil, "todo-events", 1)
}
