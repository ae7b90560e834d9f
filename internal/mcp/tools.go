package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/flip"
	"github.com/rpggio/clipstudio/internal/domain/project"
)

const defaultActivityLimit = 50

type tools struct {
	svc    Services
	logger *slog.Logger
}

func registerTools(server *sdkmcp.Server, t *tools) {
	// Projects
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List registered projects in registration order, with whether each directory still exists",
	}, t.listProjects)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project_config",
		Description: "Read the project_config.json of a registered project",
	}, t.getProjectConfig)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a project folder under parent_path, write a fresh config and register it",
	}, t.createProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "import_project",
		Description: "Register an existing project directory under a unique name",
	}, t.importProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_project",
		Description: "Point a registry name at a directory, reusing its config or writing a fresh one",
	}, t.updateProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_project",
		Description: "Unregister a project; its directory is left untouched",
	}, t.removeProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "project_stats",
		Description: "Count videos and tag annotations per class and split",
	}, t.projectStats)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "inspect_path",
		Description: "Check a candidate project name and location: uniqueness, existence, subdirectories and video files",
	}, t.inspectPath)

	// Classes
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_class",
		Description: "Add an empty class and create its video directory in every split",
	}, t.addClass)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "rename_class",
		Description: "Rename a class in the config and in every data directory; undone on failure",
	}, t.renameClass)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_class",
		Description: "Drop a class from the config; its directories stay on disk",
	}, t.removeClass)

	// Tags
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "assign_tag",
		Description: "Assign a tag index to a class; returns the class's sorted tag list",
	}, t.assignTag)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "unassign_tag",
		Description: "Remove a tag index from a class; returns the remaining list",
	}, t.unassignTag)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_tag",
		Description: "Append a tag to the project vocabulary and return its index",
	}, t.createTag)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "rename_tag",
		Description: "Change the label of a tag; its index stays the same",
	}, t.renameTag)

	// Settings
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_setting",
		Description: "Flip a boolean project setting; enabling assisted_tagging starts a retrain",
	}, t.toggleSetting)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_timer_defaults",
		Description: "Set the countdown and recording durations of the recording UI",
	}, t.setTimerDefaults)

	// Pipeline
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "flip_videos",
		Description: "Mirror every video of a class into its counterpart class, skipping videos already mirrored",
	}, t.flipVideos)

	// Journal
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recent_activity",
		Description: "List journal entries, newest first",
	}, t.recentActivity)
}

func toolErr[Out any](err error) (*sdkmcp.CallToolResult, Out, error) {
	var zero Out
	return nil, zero, MapError(err)
}

func (t *tools) root(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: project name is required", project.ErrInvalidInput)
	}
	return t.svc.Projects.LookupPath(ctx, name)
}

func (t *tools) listProjects(ctx context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, ProjectListResponse, error) {
	entries, err := t.svc.Projects.List(ctx)
	if err != nil {
		return toolErr[ProjectListResponse](err)
	}
	resp := ProjectListResponse{Projects: make([]ProjectResponse, 0, len(entries))}
	for i := range entries {
		resp.Projects = append(resp.Projects, projectResponse(&entries[i]))
	}
	return nil, resp, nil
}

func (t *tools) getProjectConfig(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectParams) (*sdkmcp.CallToolResult, ConfigResponse, error) {
	root, err := t.root(ctx, in.Project)
	if err != nil {
		return toolErr[ConfigResponse](err)
	}
	cfg, err := t.svc.Projects.Config(ctx, in.Project)
	if err != nil {
		return toolErr[ConfigResponse](err)
	}
	// round-trip through the document codec so unknown keys are reported too
	data, err := json.Marshal(cfg)
	if err != nil {
		return toolErr[ConfigResponse](err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return toolErr[ConfigResponse](err)
	}
	return nil, ConfigResponse{Project: in.Project, Path: root, Config: doc}, nil
}

func (t *tools) createProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateProjectParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
	entry, err := t.svc.Projects.Create(ctx, project.CreateRequest{Name: in.Name, ParentPath: in.ParentPath})
	if err != nil {
		return toolErr[ProjectResponse](err)
	}
	return nil, projectResponse(entry), nil
}

func (t *tools) importProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ImportProjectParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
	entry, err := t.svc.Projects.Import(ctx, in.Path)
	if err != nil {
		return toolErr[ProjectResponse](err)
	}
	return nil, projectResponse(entry), nil
}

func (t *tools) updateProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateProjectParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
	entry, err := t.svc.Projects.Update(ctx, project.UpdateRequest{Name: in.Name, Path: in.Path})
	if err != nil {
		return toolErr[ProjectResponse](err)
	}
	return nil, projectResponse(entry), nil
}

func (t *tools) removeProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectParams) (*sdkmcp.CallToolResult, StatusResponse, error) {
	if err := t.svc.Projects.Remove(ctx, in.Project); err != nil {
		return toolErr[StatusResponse](err)
	}
	return nil, StatusResponse{Status: "removed"}, nil
}

func (t *tools) projectStats(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectParams) (*sdkmcp.CallToolResult, project.Stats, error) {
	stats, err := t.svc.Projects.Stats(ctx, in.Project)
	if err != nil {
		return toolErr[project.Stats](err)
	}
	if stats.Tags == nil {
		stats.Tags = []project.Tag{}
	}
	return nil, *stats, nil
}

func (t *tools) inspectPath(ctx context.Context, _ *sdkmcp.CallToolRequest, in InspectPathParams) (*sdkmcp.CallToolResult, project.PathInfo, error) {
	info, err := t.svc.Projects.InspectPath(ctx, in.Path, in.Name)
	if err != nil {
		return toolErr[project.PathInfo](err)
	}
	if info.Subdirs == nil {
		info.Subdirs = []string{}
	}
	if info.VideoFiles == nil {
		info.VideoFiles = []string{}
	}
	return nil, *info, nil
}

func (t *tools) addClass(ctx context.Context, _ *sdkmcp.CallToolRequest, in ClassParams) (*sdkmcp.CallToolResult, ClassResponse, error) {
	root, err := t.root(ctx, in.Project)
	if err != nil {
		return toolErr[ClassResponse](err)
	}
	if err := t.svc.Classes.AddClass(ctx, root, in.Class); err != nil {
		return toolErr[ClassResponse](err)
	}
	return nil, ClassResponse{Project: in.Project, Class: in.Class}, nil
}

func (t *tools) renameClass(ctx context.Context, _ *sdkmcp.CallToolRequest, in RenameClassParams) (*sdkmcp.CallToolResult, ClassResponse, error) {
	root, err := t.root(ctx, in.Project)
	if err != nil {
		return toolErr[ClassResponse](err)
	}
	if err := t.svc.Classes.RenameClass(ctx, root, in.OldName, in.NewName); err != nil {
		return toolErr[ClassResponse](err)
	}
	return nil, ClassResponse{Project: in.Project, Class: in.NewName}, nil
}

func (t *tools) removeClass(ctx context.Context, _ *sdkmcp.CallToolRequest, in ClassParams) (*sdkmcp.CallToolResult, StatusResponse, error) {
	root, err := t.root(ctx, in.Project)
	if err != nil {
		return toolErr[StatusResponse](err)
	}
	if err := t.svc.Classes.RemoveClass(ctx, root, in.Class); err != nil {
		return toolErr[StatusResponse](err)
	}
	return nil, StatusResponse{Status: "removed"}, nil
}

func (t *tools) assignTag(ctx context.Context, _ *sdkmcp.CallToolRequest, in TagAssignmentParams) (*sdkmcp.CallToolResult, ClassResponse, error) {
	root, err := t.root(ctx, in.Project)
	if err != nil {
		return toolErr[ClassResponse](err)
	}
	tags, err := t.svc.Classes.AssignTag(ctx, root, in.Class, in.Tag)
	if err != nil {
		return toolErr[ClassResponse](err)
	}
	return nil, ClassResponse{Project: in.Project, Class: in.Class, Tags: tags}, nil
}

func (t *tools) unassignTag(ctx context.Context, _ *sdkmcp.CallToolRequest, in TagAssignmentParams) (*sdkmcp.CallToolResult, ClassResponse, error) {
	root, err := t.root(ctx, in.Project)
	if err != nil {
		return toolErr[ClassResponse](err)
	}
	tags, err := t.svc.Classes.UnassignTag(ctx, root, in.Class, in.Tag)
	if err != nil {
		return toolErr[ClassResponse](err)
	}
	return nil, ClassResponse{Project: in.Project, Class: in.Class, Tags: tags}, nil
}

func (t *tools) createTag(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateTagParams) (*sdkmcp.CallToolResult, TagResponse, error) {
	root, err := t.root(ctx, in.Project)
	if err != nil {
		return toolErr[TagResponse](err)
	}
	tag := project.Tag{Label: in.Label, Description: in.Description}
	index, err := t.svc.Classes.CreateTag(ctx, root, tag)
	if err != nil {
		return toolErr[TagResponse](err)
	}
	return nil, TagResponse{Index: index, Label: strings.TrimSpace(in.Label)}, nil
}

func (t *tools) renameTag(ctx context.Context, _ *sdkmcp.CallToolRequest, in RenameTagParams) (*sdkmcp.CallToolResult, TagResponse, error) {
	root, err := t.root(ctx, in.Project)
	if err != nil {
		return toolErr[TagResponse](err)
	}
	if err := t.svc.Classes.RenameTag(ctx, root, in.Index, in.Label); err != nil {
		return toolErr[TagResponse](err)
	}
	return nil, TagResponse{Index: in.Index, Label: strings.TrimSpace(in.Label)}, nil
}

func (t *tools) toggleSetting(ctx context.Context, _ *sdkmcp.CallToolRequest, in ToggleSettingParams) (*sdkmcp.CallToolResult, SettingResponse, error) {
	root, err := t.root(ctx, in.Project)
	if err != nil {
		return toolErr[SettingResponse](err)
	}
	value, err := t.svc.Projects.ToggleSetting(ctx, root, in.Setting)
	if err != nil {
		return toolErr[SettingResponse](err)
	}
	return nil, SettingResponse{Setting: in.Setting, Value: value}, nil
}

func (t *tools) setTimerDefaults(ctx context.Context, _ *sdkmcp.CallToolRequest, in SetTimerDefaultsParams) (*sdkmcp.CallToolResult, project.TimerDefaults, error) {
	root, err := t.root(ctx, in.Project)
	if err != nil {
		return toolErr[project.TimerDefaults](err)
	}
	timers := project.TimerDefaults{Countdown: in.Countdown, Recording: in.Recording}
	if err := t.svc.Projects.SetTimerDefaults(ctx, root, timers); err != nil {
		return toolErr[project.TimerDefaults](err)
	}
	return nil, timers, nil
}

func (t *tools) flipVideos(ctx context.Context, _ *sdkmcp.CallToolRequest, in FlipVideosParams) (*sdkmcp.CallToolResult, flip.Result, error) {
	root, err := t.root(ctx, in.Project)
	if err != nil {
		return toolErr[flip.Result](err)
	}
	res, err := t.svc.Flip.Run(ctx, root, flip.Request{
		SourceClass:      in.SourceClass,
		CounterpartClass: in.CounterpartClass,
		CopyTags:         in.CopyTags,
	})
	if err != nil {
		if res != nil {
			t.logger.Warn("flip run aborted", "project", in.Project, "op_id", res.RunID, "rendered", len(res.Rendered))
		}
		return toolErr[flip.Result](err)
	}
	return nil, *res, nil
}

func (t *tools) recentActivity(ctx context.Context, _ *sdkmcp.CallToolRequest, in RecentActivityParams) (*sdkmcp.CallToolResult, ActivityListResponse, error) {
	if in.Limit < 0 || in.Offset < 0 {
		return toolErr[ActivityListResponse](fmt.Errorf("%w: limit and offset must not be negative", activity.ErrInvalidInput))
	}
	opts := activity.ListActivityOptions{Limit: in.Limit, Offset: in.Offset}
	if opts.Limit == 0 {
		opts.Limit = defaultActivityLimit
	}
	if in.Project != "" {
		root, err := t.root(ctx, in.Project)
		if err != nil {
			return toolErr[ActivityListResponse](err)
		}
		opts.ProjectPath = root
	}
	if in.Class != "" {
		opts.ClassName = &in.Class
	}
	if in.Type != "" {
		typ := activity.ActivityType(in.Type)
		opts.ActivityType = &typ
	}

	entries, err := t.svc.Activity.GetRecentActivity(ctx, opts)
	if err != nil {
		return toolErr[ActivityListResponse](err)
	}
	resp := ActivityListResponse{Entries: make([]ActivityResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, activityResponse(e))
	}
	return nil, resp, nil
}
