package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogFileWriter_TrimsToTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	w, err := newLogFileWriter(path)
	require.NoError(t, err)
	w.max, w.keep = 100, 60
	t.Cleanup(func() { w.Close() })

	_, err = w.Write(bytes.Repeat([]byte("a"), 80))
	require.NoError(t, err)
	_, err = w.Write(bytes.Repeat([]byte("b"), 40))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 60)
	require.Equal(t, append(bytes.Repeat([]byte("a"), 20), bytes.Repeat([]byte("b"), 40)...), data)

	_, err = w.Write([]byte("c"))
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 61)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	require.Equal(t, slog.LevelError, parseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}
