package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"todo-sync/internal/models"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func sequentialIDs(ids ...string) IDGenerator {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestMemory_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("should create an incomplete todo with a fresh id", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		before := time.Now().UTC()

		todo, err := s.Create(ctx, "Buy milk")

		req.NoError(err)
		req.NotEmpty(todo.ID)
		req.Equal("Buy milk", todo.Title)
		req.False(todo.Completed)
		req.False(todo.CreatedAt.Before(before))
	})

	t.Run("should assign unique ids", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			todo, err := s.Create(ctx, fmt.Sprintf("todo %d", i))
			req.NoError(err)
			req.False(seen[todo.ID], "duplicate id %s", todo.ID)
			seen[todo.ID] = true
		}
		req.Len(s.List(ctx), 100)
	})

	t.Run("should use the injected id generator and clock", func(t *testing.T) {
		req := require.New(t)
		at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		s := NewMemory(WithIDGenerator(sequentialIDs("a", "b")), WithClock(fixedClock(at)))

		todo, err := s.Create(ctx, "A")

		req.NoError(err)
		req.Equal("a", todo.ID)
		req.Equal(at, todo.CreatedAt)
	})

	t.Run("should reject empty and whitespace-only titles", func(t *testing.T) {
		s := NewMemory()
		for _, title := range []string{"", " ", "\t\n "} {
			req := require.New(t)
			_, err := s.Create(ctx, title)
			req.ErrorIs(err, ErrValidation)
			var verr *ValidationError
			req.ErrorAs(err, &verr)
			req.Equal("title", verr.Field)
		}
		require.Empty(t, s.List(ctx))
	})

	t.Run("should never reissue an id", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory(WithIDGenerator(sequentialIDs("x", "x", "y")))

		first, err := s.Create(ctx, "A")
		req.NoError(err)
		req.NoError(s.Delete(ctx, first.ID))

		second, err := s.Create(ctx, "B")
		req.NoError(err)
		req.Equal("y", second.ID)
	})

	t.Run("should fail when the generator only returns retired ids", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory(WithIDGenerator(sequentialIDs("x")))
		_, err := s.Create(ctx, "A")
		req.NoError(err)

		_, err = s.Create(ctx, "B")
		req.ErrorIs(err, errIDExhausted)
		req.Len(s.List(ctx), 1)
	})
}

func TestMemory_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("should only change completed", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		orig, err := s.Create(ctx, "Buy milk")
		req.NoError(err)

		updated, err := s.Update(ctx, orig.ID, models.TodoPatch{Completed: lo.ToPtr(true)})

		req.NoError(err)
		req.True(updated.Completed)
		req.Equal(orig.ID, updated.ID)
		req.Equal(orig.Title, updated.Title)
		req.Equal(orig.CreatedAt, updated.CreatedAt)
	})

	t.Run("should only change title", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		orig, err := s.Create(ctx, "Buy milk")
		req.NoError(err)
		_, err = s.Update(ctx, orig.ID, models.TodoPatch{Completed: lo.ToPtr(true)})
		req.NoError(err)

		updated, err := s.Update(ctx, orig.ID, models.TodoPatch{Title: lo.ToPtr("X")})

		req.NoError(err)
		req.Equal("X", updated.Title)
		req.True(updated.Completed)
		req.Equal(orig.CreatedAt, updated.CreatedAt)
	})

	t.Run("should fail with not found and change nothing", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		_, err := s.Create(ctx, "A")
		req.NoError(err)
		before, rev := s.Snapshot(ctx)

		_, err = s.Update(ctx, "unknown-id", models.TodoPatch{Title: lo.ToPtr("x")})

		req.ErrorIs(err, ErrNotFound)
		after, revAfter := s.Snapshot(ctx)
		req.Equal(before, after)
		req.Equal(rev, revAfter)
	})

	t.Run("should reject a blank title without applying completed", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		orig, err := s.Create(ctx, "A")
		req.NoError(err)

		_, err = s.Update(ctx, orig.ID, models.TodoPatch{Title: lo.ToPtr("  "), Completed: lo.ToPtr(true)})

		req.ErrorIs(err, ErrValidation)
		req.Equal([]models.Todo{orig}, s.List(ctx))
	})

	t.Run("should accept an empty patch", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		orig, err := s.Create(ctx, "A")
		req.NoError(err)
		_, rev := s.Snapshot(ctx)

		updated, err := s.Update(ctx, orig.ID, models.TodoPatch{})

		req.NoError(err)
		req.Equal(orig, updated)
		_, revAfter := s.Snapshot(ctx)
		req.Equal(rev, revAfter)
	})
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("should remove exactly one entry", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		a, err := s.Create(ctx, "A")
		req.NoError(err)
		b, err := s.Create(ctx, "B")
		req.NoError(err)

		req.NoError(s.Delete(ctx, a.ID))

		req.Equal([]models.Todo{b}, s.List(ctx))
		_, err = s.Update(ctx, a.ID, models.TodoPatch{Completed: lo.ToPtr(true)})
		req.ErrorIs(err, ErrNotFound)
	})

	t.Run("should fail with not found on unknown id", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		_, err := s.Create(ctx, "A")
		req.NoError(err)

		err = s.Delete(ctx, "nope")

		var nf *NotFoundError
		req.ErrorAs(err, &nf)
		req.Equal("nope", nf.ID)
		req.Len(s.List(ctx), 1)
	})

	t.Run("should fail on second delete", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		a, err := s.Create(ctx, "A")
		req.NoError(err)
		req.NoError(s.Delete(ctx, a.ID))
		req.ErrorIs(s.Delete(ctx, a.ID), ErrNotFound)
	})
}

func TestMemory_List(t *testing.T) {
	ctx := context.Background()

	t.Run("should be idempotent without mutations", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		for _, title := range []string{"A", "B", "C"} {
			_, err := s.Create(ctx, title)
			req.NoError(err)
		}
		req.Equal(s.List(ctx), s.List(ctx))
	})

	t.Run("should return a copy", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		_, err := s.Create(ctx, "A")
		req.NoError(err)

		list := s.List(ctx)
		list[0].Title = "mutated"

		req.Equal("A", s.List(ctx)[0].Title)
	})

	t.Run("should bump the revision on every mutation", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		_, rev0 := s.Snapshot(ctx)
		a, err := s.Create(ctx, "A")
		req.NoError(err)
		_, rev1 := s.Snapshot(ctx)
		_, err = s.Update(ctx, a.ID, models.TodoPatch{Completed: lo.ToPtr(true)})
		req.NoError(err)
		_, rev2 := s.Snapshot(ctx)
		req.NoError(s.Delete(ctx, a.ID))
		_, rev3 := s.Snapshot(ctx)

		req.Less(rev0, rev1)
		req.Less(rev1, rev2)
		req.Less(rev2, rev3)
	})
}

func TestMemory_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("A: create then list", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		_, err := s.Create(ctx, "Buy milk")
		req.NoError(err)

		list := s.List(ctx)
		req.Len(list, 1)
		req.Equal("Buy milk", list[0].Title)
		req.False(list[0].Completed)
	})

	t.Run("B: create, complete, list", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		todo, err := s.Create(ctx, "Buy milk")
		req.NoError(err)
		_, err = s.Update(ctx, todo.ID, models.TodoPatch{Completed: lo.ToPtr(true)})
		req.NoError(err)

		list := s.List(ctx)
		req.Len(list, 1)
		req.True(list[0].Completed)
		req.Equal("Buy milk", list[0].Title)
	})

	t.Run("C: create two, delete first", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		a, err := s.Create(ctx, "A")
		req.NoError(err)
		b, err := s.Create(ctx, "B")
		req.NoError(err)
		req.NoError(s.Delete(ctx, a.ID))

		req.Equal([]models.Todo{b}, s.List(ctx))
	})

	t.Run("D: update unknown id", func(t *testing.T) {
		req := require.New(t)
		s := NewMemory()
		a, err := s.Create(ctx, "A")
		req.NoError(err)

		_, err = s.Update(ctx, "unknown-id", models.TodoPatch{Title: lo.ToPtr("x")})

		req.ErrorIs(err, ErrNotFound)
		req.Equal([]models.Todo{a}, s.List(ctx))
	})
}

func TestMemory_ConcurrentCreates(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewMemory()
	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			_, _ = s.Create(ctx, fmt.Sprintf("todo %d", i))
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}
	list := s.List(ctx)
	req.Len(list, 20)
	req.Len(lo.UniqBy(list, func(t models.Todo) string { return t.ID }), 20)
}
