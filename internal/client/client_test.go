package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo-sync/internal/controller"
	"todo-sync/internal/models"
	"todo-sync/internal/routes"
	"todo-sync/internal/store"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Client {
	t.Helper()
	h := controller.NewTodos(store.NewMemory(), nil, nil)
	srv := httptest.NewServer(routes.Router(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", 5*time.Second)
}

func TestClient_RoundTrip(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newServer(t)

	empty, err := c.List(ctx)
	req.NoError(err)
	req.Empty(empty)
	req.NotNil(empty)

	a, err := c.Create(ctx, "A")
	req.NoError(err)
	b, err := c.Create(ctx, "B")
	req.NoError(err)

	done, err := c.Update(ctx, a.ID, models.TodoPatch{Completed: lo.ToPtr(true)})
	req.NoError(err)
	req.True(done.Completed)
	req.Equal("A", done.Title)

	req.NoError(c.Delete(ctx, b.ID))

	list, err := c.List(ctx)
	req.NoError(err)
	req.Equal([]models.Todo{done}, list)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	t.Run("should surface validation errors", func(t *testing.T) {
		req := require.New(t)
		_, err := c.Create(ctx, "  ")
		var apiErr *APIError
		req.True(errors.As(err, &apiErr))
		req.Equal(http.StatusBadRequest, apiErr.StatusCode)
		req.Equal("Title is required", apiErr.Message)
	})

	t.Run("should surface not found", func(t *testing.T) {
		req := require.New(t)
		_, err := c.Update(ctx, "unknown-id", models.TodoPatch{Title: lo.ToPtr("x")})
		var apiErr *APIError
		req.True(errors.As(err, &apiErr))
		req.Equal(http.StatusNotFound, apiErr.StatusCode)

		err = c.Delete(ctx, "unknown-id")
		req.True(errors.As(err, &apiErr))
		req.Equal(http.StatusNotFound, apiErr.StatusCode)
	})

	t.Run("should report transport failures", func(t *testing.T) {
		dead := New("http://127.0.0.1:1/api", time.Second)
		_, err := dead.List(ctx)
		require.Error(t, err)
	})
}

func TestDecodeError_PlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).List(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, "bad gateway", apiErr.Message)
}
