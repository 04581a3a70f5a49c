package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	req := require.New(t)
	req.Equal(slog.LevelDebug, ParseLevel("DEBUG"))
	req.Equal(slog.LevelWarn, ParseLevel("warning"))
	req.Equal(slog.LevelError, ParseLevel(" error "))
	req.Equal(slog.LevelInfo, ParseLevel(""))
	req.Equal(slog.LevelInfo, ParseLevel("verbose"))
}

func TestWithRequestID_AddsAttribute(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	Init(&buf, "debug")
	t.Cleanup(func() { Init(os.Stdout, "info") })

	ctx := WithRequestID(context.Background(), "req-1")
	Info(ctx, "hello", "k", "v")

	var line map[string]any
	req.NoError(json.Unmarshal(buf.Bytes(), &line))
	req.Equal("hello", line["msg"])
	req.Equal("req-1", line["request_id"])
	req.Equal("v", line["k"])
}

func TestInit_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "error")
	t.Cleanup(func() { Init(os.Stdout, "info") })

	Debug(context.Background(), "dropped")
	Warn(context.Background(), "dropped too")
	require.Empty(t, buf.String())

	Error(context.Background(), "kept")
	require.Contains(t, buf.String(), "kept")
}
