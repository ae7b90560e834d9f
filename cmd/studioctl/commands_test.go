package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/clipstudio/internal/app"
	"github.com/rpggio/clipstudio/internal/config"
	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/rpggio/clipstudio/internal/fsstore"
	"github.com/rpggio/clipstudio/internal/layout"
	"github.com/rpggio/clipstudio/internal/testserver"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t    *testing.T
	open func(string, *slog.Logger) (*app.App, error)
}

func newHarness(t *testing.T) *harness {
	cfg := config.Default()
	cfg.DB.Path = filepath.Join(t.TempDir(), "registry.db")
	tf := &testserver.CopyTransformer{}
	return &harness{
		t: t,
		open: func(_ string, logger *slog.Logger) (*app.App, error) {
			return app.New(cfg, logger, app.WithTransformer(tf))
		},
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	env := &cliEnv{out: &out, errOut: io.Discard, open: h.open}
	cmd := newRootCmd(env)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	env.close()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "studioctl %v", args)
	return out
}

func seedProject(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "gestures")
	require.NoError(t, os.Mkdir(root, 0o755))
	cfg := project.NewConfig("gestures", time.Now())
	cfg.Classes["left"] = []int{}
	cfg.Tags = []project.Tag{{Label: "wave"}, {Label: "point"}}
	require.NoError(t, fsstore.NewConfigStore().Write(root, cfg))
	return root
}

func TestStudioctl_Workflow(t *testing.T) {
	h := newHarness(t)
	root := seedProject(t)

	out := h.mustRun("projects", "import", root)
	require.Contains(t, out, `registered "gestures"`)

	var entries []project.Entry
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("projects", "list", "--json")), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, root, entries[0].Path)

	h.mustRun("class", "rename", "gestures", "left", "wave_left")
	require.DirExists(t, layout.VideosDir(root, "train", "wave_left"))

	out = h.mustRun("tag", "assign", "gestures", "wave_left", "1")
	require.Contains(t, out, "[1]")

	video := filepath.Join(layout.VideosDir(root, "train", "wave_left"), "a.mp4")
	require.NoError(t, os.WriteFile(video, []byte("v"), 0o644))
	ann := layout.AnnotationFile(root, "train", "wave_left", "a.mp4")
	require.NoError(t, os.MkdirAll(filepath.Dir(ann), 0o755))
	require.NoError(t, os.WriteFile(ann, []byte(`{"file":"a.mp4","spans":[[0,1]]}`), 0o644))

	out = h.mustRun("flip", "gestures", "wave_left", "wave_right", "--copy-tags", "train/a.mp4")
	require.Contains(t, out, "1 rendered, 0 skipped")
	require.FileExists(t, layout.AnnotationFile(root, "train", "wave_right", "a_flipped.mp4"))

	out = h.mustRun("flip", "gestures", "wave_left", "wave_right")
	require.Contains(t, out, "0 rendered, 1 skipped")

	var journal []activity.ActivityEntry
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("activity", "--project", "gestures", "--type", "class_renamed", "--json")), &journal))
	require.Len(t, journal, 1)

	h.mustRun("class", "remove", "gestures", "wave_right")
	h.mustRun("projects", "remove", "gestures")
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("projects", "list", "--json")), &entries))
	require.Empty(t, entries)
}

func TestStudioctl_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("class", "add", "ghost", "x")
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	_, err = h.run("tag", "assign", "ghost", "x", "one")
	require.Error(t, err)

	_, err = h.run("flip", "ghost", "a", "b", "--copy-tags", "nosplit")
	require.ErrorContains(t, err, "want <split>/<video>")
}

func TestParseCopyTags(t *testing.T) {
	got, err := parseCopyTags([]string{"train/a.mp4", "valid/b.mp4", "train/c.mp4"})
	require.NoError(t, err)
	require.Equal(t, map[string][]string{
		"train": {"a.mp4", "c.mp4"},
		"valid": {"b.mp4"},
	}, got)

	_, err = parseCopyTags([]string{"/a.mp4"})
	require.Error(t, err)
}
