package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKey_IncludesRevision(t *testing.T) {
	req := require.New(t)
	req.Equal("todos:abc:rev:0", Key("abc", 0))
	req.Equal("todos:abc:rev:42", Key("abc", 42))
	req.NotEqual(Key("abc", 1), Key("abc", 2))
	req.NotEqual(Key("abc", 1), Key("def", 1))
}

func TestNop_AlwaysMisses(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	var c ListCache = Nop{}

	c.SetTodos(ctx, 1, []byte(`[]`))
	b, ok := c.GetTodos(ctx, 1)

	req.False(ok)
	req.Nil(b)
	req.NoError(c.Ping(ctx))
}

func TestNewRedis_RejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-url", 1, time.Minute, "abc")
	require.Error(t, err)
}
