package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CLIPSTUDIO_CONFIG_PATH", "")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ModeStdio, cfg.Transport.Mode)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, []string{"train", "valid"}, cfg.Layout.Splits)
	require.Equal(t, ".mp4", cfg.Layout.VideoExt)

	home, err := homedir.Dir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".clipstudio", "registry.db"), cfg.DB.Path)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clipstudio.yaml")
	doc := `
server:
  port: 9000
transport:
  mode: http
layout:
  splits: [train, valid, test]
  video_ext: avi
ffmpeg:
  threads: 2
trainer:
  command: [python, train_logreg.py]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	t.Setenv("CLIPSTUDIO_CONFIG_PATH", path)
	t.Setenv("CLIPSTUDIO_DB_PATH", ":memory:")
	t.Setenv("CLIPSTUDIO_AUTH_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, ModeHTTP, cfg.Transport.Mode)
	require.Equal(t, []string{"train", "valid", "test"}, cfg.Layout.Splits)
	require.Equal(t, ".avi", cfg.Layout.VideoExt)
	require.Equal(t, 2, cfg.FFmpeg.Threads)
	require.Equal(t, []string{"python", "train_logreg.py"}, cfg.Trainer.Command)
	require.Equal(t, ":memory:", cfg.DB.Path)
	require.Equal(t, "secret", cfg.Auth.Token)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CLIPSTUDIO_SERVER_PORT", "eighty")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CLIPSTUDIO_SERVER_PORT", "")
	t.Setenv("CLIPSTUDIO_TRANSPORT_MODE", "carrier-pigeon")
	_, err = Load()
	require.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)

	got, err := ExpandPath("~/data")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "data"), got)

	got, err = ExpandPath("/abs/path")
	require.NoError(t, err)
	require.Equal(t, "/abs/path", got)
}
