package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"todo-sync/internal/cache"
	"todo-sync/internal/models"
	"todo-sync/internal/queue"
	"todo-sync/internal/store"
	"todo-sync/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"golang.org/x/sync/singleflight"
)

const (
	msgTitleRequired  = "Title is required"
	msgNotFound       = "Todo not found"
	msgInvalidRequest = "Invalid request"
	msgInternal       = "Internal error"
)

var registerOnce sync.Once

// registerValidators adds the notblank rule to gin's validator engine.
func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
				panic("register notblank validator: " + err.Error())
			}
		}
	})
}

// Todos serves the /api/todos resource.
type Todos struct {
	store  store.Store
	cache  cache.ListCache
	events queue.Publisher
	now    func() time.Time
	group  singleflight.Group
}

// NewTodos wires the handlers. cache and events may be nil.
func NewTodos(s store.Store, c cache.ListCache, p queue.Publisher) *Todos {
	registerValidators()
	if c == nil {
		c = cache.Nop{}
	}
	if p == nil {
		p = queue.Nop{}
	}
	return &Todos{store: s, cache: c, events: p, now: time.Now}
}

type createRequest struct {
	Title string `json:"title" binding:"required,notblank"`
}

type updateRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// List returns every todo as a JSON array (cache-first as raw bytes).
func (h *Todos) List(c *gin.Context) {
	ctx := c.Request.Context()
	todos, rev := h.store.Snapshot(ctx)
	if b, ok := h.cache.GetTodos(ctx, rev); ok {
		c.Data(http.StatusOK, "application/json", b)
		return
	}
	v, err, _ := h.group.Do(strconv.FormatUint(rev, 10), func() (any, error) {
		b, err := json.Marshal(todos)
		if err != nil {
			return nil, err
		}
		h.cache.SetTodos(context.WithoutCancel(ctx), rev, b)
		return b, nil
	})
	if err != nil {
		logger.Error(ctx, "List todos failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.Data(http.StatusOK, "application/json", v.([]byte))
}

// Create validates the body and inserts a todo; 201 with the created todo.
func (h *Todos) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var body createRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) || errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgTitleRequired})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequest, "details": err.Error()})
		return
	}
	todo, err := h.store.Create(ctx, body.Title)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.publish(ctx, models.ActionCreated, todo.ID, &todo)
	c.JSON(http.StatusCreated, todo)
}

// Update applies a partial update; 200 with the updated todo.
func (h *Todos) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	var body updateRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgTitleRequired})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequest, "details": err.Error()})
		return
	}
	todo, err := h.store.Update(ctx, id, models.TodoPatch{Title: body.Title, Completed: body.Completed})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.publish(ctx, models.ActionUpdated, todo.ID, &todo)
	c.JSON(http.StatusOK, todo)
}

// Delete removes a todo; 204 with no body.
func (h *Todos) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.store.Delete(ctx, id); err != nil {
		h.writeError(c, err)
		return
	}
	h.publish(ctx, models.ActionDeleted, id, nil)
	c.Status(http.StatusNoContent)
}

func (h *Todos) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgTitleRequired})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	default:
		logger.Error(c.Request.Context(), "Todo command failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

func (h *Todos) publish(ctx context.Context, action, id string, todo *models.Todo) {
	event := models.TodoEvent{Action: action, ID: id, Todo: todo, At: h.now().UTC()}
	if err := h.events.Publish(ctx, event); err != nil {
		logger.Warn(ctx, "Publish todo event failed", "error", err, "action", action, "id", id)
	}
}

// Health returns 200 if the process is alive. Used by load balancers.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if the optional cache is reachable.
func (h *Todos) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.cache.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
		return
	}
	c.String(http.StatusOK, "OK")
}
