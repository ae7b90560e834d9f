package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/clipstudio/internal/layout"
	"github.com/rpggio/clipstudio/internal/mcp"
	"github.com/rpggio/clipstudio/internal/testserver"
	"github.com/stretchr/testify/require"
)

// callTool invokes name and decodes a successful result into out.
func callTool(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	text, isErr := call(t, cs, name, args)
	require.False(t, isErr, "%s failed: %s", name, text)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text), out), "decoding %s result: %s", name, text)
	}
}

// callToolErr invokes name, expects a tool error and returns its code.
func callToolErr(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	text, isErr := call(t, cs, name, args)
	require.True(t, isErr, "%s unexpectedly succeeded: %s", name, text)
	code, _, _ := strings.Cut(text, ":")
	return code
}

func call(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "unexpected content %T", res.Content[0])
	return text.Text, res.IsError
}

func TestTools_ProjectLifecycle(t *testing.T) {
	ts := testserver.New(t, "")
	cs := ts.Connect(t)
	parent := t.TempDir()

	var created mcp.ProjectResponse
	callTool(t, cs, "create_project", map[string]any{"name": "Gestures Demo", "parent_path": parent}, &created)
	require.Equal(t, "Gestures Demo", created.Name)
	require.Equal(t, filepath.Join(parent, "Gestures_Demo"), created.Path)
	require.True(t, created.Exists)

	var list mcp.ProjectListResponse
	callTool(t, cs, "list_projects", nil, &list)
	require.Len(t, list.Projects, 1)

	require.Equal(t, mcp.CodeDuplicate,
		callToolErr(t, cs, "create_project", map[string]any{"name": "Gestures Demo", "parent_path": parent}))

	var cfg mcp.ConfigResponse
	callTool(t, cs, "get_project_config", map[string]any{"project": "Gestures Demo"}, &cfg)
	require.Equal(t, "Gestures Demo", cfg.Config["name"])
	require.Equal(t, created.Path, cfg.Path)

	var status mcp.StatusResponse
	callTool(t, cs, "remove_project", map[string]any{"project": "Gestures Demo"}, &status)
	callTool(t, cs, "list_projects", nil, &list)
	require.Empty(t, list.Projects)
	require.DirExists(t, created.Path)

	// removing again is a no-op
	callTool(t, cs, "remove_project", map[string]any{"project": "Gestures Demo"}, nil)

	var imported mcp.ProjectResponse
	callTool(t, cs, "import_project", map[string]any{"path": created.Path}, &imported)
	require.Equal(t, "Gestures Demo", imported.Name)
}

func TestTools_ClassesTagsAndFlip(t *testing.T) {
	ts := testserver.New(t, "")
	cs := ts.Connect(t)

	var created mcp.ProjectResponse
	callTool(t, cs, "create_project", map[string]any{"name": "hands", "parent_path": t.TempDir()}, &created)
	project := map[string]any{"project": "hands"}
	with := func(extra map[string]any) map[string]any {
		args := map[string]any{"project": "hands"}
		for k, v := range extra {
			args[k] = v
		}
		return args
	}

	callTool(t, cs, "add_class", with(map[string]any{"class": "left"}), nil)
	require.Equal(t, mcp.CodeDuplicate, callToolErr(t, cs, "add_class", with(map[string]any{"class": "left"})))

	var tag mcp.TagResponse
	callTool(t, cs, "create_tag", with(map[string]any{"label": "wave"}), &tag)
	require.Equal(t, 0, tag.Index)

	var cls mcp.ClassResponse
	callTool(t, cs, "assign_tag", with(map[string]any{"class": "left", "tag": 0}), &cls)
	require.Equal(t, []int{0}, cls.Tags)
	require.Equal(t, mcp.CodeNotFound, callToolErr(t, cs, "assign_tag", with(map[string]any{"class": "left", "tag": 7})))
	require.Equal(t, mcp.CodeNotFound, callToolErr(t, cs, "unassign_tag", with(map[string]any{"class": "nope", "tag": 0})))

	callTool(t, cs, "rename_class", with(map[string]any{"old_name": "left", "new_name": "wave_left"}), &cls)
	require.Equal(t, "wave_left", cls.Class)
	require.DirExists(t, layout.VideosDir(created.Path, "train", "wave_left"))
	require.NoDirExists(t, layout.VideosDir(created.Path, "train", "left"))

	var setting mcp.SettingResponse
	callTool(t, cs, "toggle_setting", with(map[string]any{"setting": "temporal"}), &setting)
	require.True(t, setting.Value)
	require.Equal(t, mcp.CodeInvalidInput, callToolErr(t, cs, "toggle_setting", with(map[string]any{"setting": "bogus"})))

	callTool(t, cs, "set_timer_defaults", with(map[string]any{"countdown": 2, "recording": 4}), nil)
	require.Equal(t, mcp.CodeInvalidInput,
		callToolErr(t, cs, "set_timer_defaults", with(map[string]any{"countdown": -1, "recording": 4})))

	video := filepath.Join(layout.VideosDir(created.Path, "train", "wave_left"), "clip1.mp4")
	require.NoError(t, os.WriteFile(video, []byte("frames"), 0o644))

	var flipped struct {
		RunID        string   `json:"run_id"`
		ClassCreated bool     `json:"class_created"`
		Rendered     []string `json:"rendered"`
	}
	callTool(t, cs, "flip_videos", with(map[string]any{"source_class": "wave_left", "counterpart_class": "wave_right"}), &flipped)
	require.True(t, flipped.ClassCreated)
	require.Equal(t, []string{"train/clip1_flipped.mp4"}, flipped.Rendered)
	require.FileExists(t, filepath.Join(layout.VideosDir(created.Path, "train", "wave_right"), "clip1_flipped.mp4"))

	var stats struct {
		Classes map[string]map[string]struct {
			Total  int      `json:"total"`
			Videos []string `json:"videos"`
		} `json:"classes"`
	}
	callTool(t, cs, "project_stats", project, &stats)
	require.Equal(t, 1, stats.Classes["wave_right"]["train"].Total)
	require.Equal(t, []string{"clip1.mp4"}, stats.Classes["wave_left"]["train"].Videos)

	var journal mcp.ActivityListResponse
	callTool(t, cs, "recent_activity", with(map[string]any{"type": "class_renamed"}), &journal)
	require.Len(t, journal.Entries, 1)
	require.Equal(t, "wave_left", journal.Entries[0].ClassName)

	callTool(t, cs, "recent_activity", project, &journal)
	require.Equal(t, "videos_flipped", journal.Entries[0].Type)
	require.Equal(t, flipped.RunID, journal.Entries[0].OperationID)
}

func TestTools_UnknownProject(t *testing.T) {
	ts := testserver.New(t, "")
	cs := ts.Connect(t)

	require.Equal(t, mcp.CodeNotFound, callToolErr(t, cs, "get_project_config", map[string]any{"project": "ghost"}))
	require.Equal(t, mcp.CodeNotFound, callToolErr(t, cs, "add_class", map[string]any{"project": "ghost", "class": "x"}))
	require.Equal(t, mcp.CodeInvalidInput, callToolErr(t, cs, "add_class", map[string]any{"project": " ", "class": "x"}))
}

func TestTools_InspectPath(t *testing.T) {
	ts := testserver.New(t, "")
	cs := ts.Connect(t)
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "clips"), 0o755))

	var info struct {
		NameUnique bool     `json:"name_unique"`
		PathExists bool     `json:"path_exists"`
		ProjectDir string   `json:"project_dir"`
		Subdirs    []string `json:"subdirs"`
	}
	callTool(t, cs, "inspect_path", map[string]any{"path": dir, "name": "my set"}, &info)
	require.True(t, info.NameUnique)
	require.True(t, info.PathExists)
	require.Equal(t, "my_set", info.ProjectDir)
	require.Contains(t, info.Subdirs, dir)
}

func TestTools_HTTPTransport(t *testing.T) {
	ts := testserver.New(t, "secret")
	cs := ts.ConnectHTTP(t)

	var list mcp.ProjectListResponse
	callTool(t, cs, "list_projects", nil, &list)
	require.Empty(t, list.Projects)
}
