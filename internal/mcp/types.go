package mcp

import (
	"time"

	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/project"
)

type NoParams struct{}

type ProjectParams struct {
	Project string `json:"project" jsonschema:"registered project name"`
}

type CreateProjectParams struct {
	Name       string `json:"name" jsonschema:"project name; spaces become underscores in the folder name"`
	ParentPath string `json:"parent_path" jsonschema:"directory the project folder is created in"`
}

type ImportProjectParams struct {
	Path string `json:"path" jsonschema:"existing project directory"`
}

type UpdateProjectParams struct {
	Name string `json:"name" jsonschema:"registry name to (re)point"`
	Path string `json:"path" jsonschema:"project directory"`
}

type InspectPathParams struct {
	Path string `json:"path" jsonschema:"directory or prefix being browsed"`
	Name string `json:"name,omitempty" jsonschema:"candidate project name"`
}

type ClassParams struct {
	Project string `json:"project" jsonschema:"registered project name"`
	Class   string `json:"class" jsonschema:"class name"`
}

type RenameClassParams struct {
	Project string `json:"project" jsonschema:"registered project name"`
	OldName string `json:"old_name" jsonschema:"current class name"`
	NewName string `json:"new_name" jsonschema:"new class name"`
}

type TagAssignmentParams struct {
	Project string `json:"project" jsonschema:"registered project name"`
	Class   string `json:"class" jsonschema:"class name"`
	Tag     int    `json:"tag" jsonschema:"tag index in the project vocabulary"`
}

type CreateTagParams struct {
	Project     string `json:"project" jsonschema:"registered project name"`
	Label       string `json:"label" jsonschema:"tag label"`
	Description string `json:"description,omitempty" jsonschema:"what the tag marks"`
}

type RenameTagParams struct {
	Project string `json:"project" jsonschema:"registered project name"`
	Index   int    `json:"index" jsonschema:"tag index"`
	Label   string `json:"label" jsonschema:"new label"`
}

type ToggleSettingParams struct {
	Project string `json:"project" jsonschema:"registered project name"`
	Setting string `json:"setting" jsonschema:"assisted_tagging, temporal or use_gpu"`
}

type SetTimerDefaultsParams struct {
	Project   string `json:"project" jsonschema:"registered project name"`
	Countdown int    `json:"countdown" jsonschema:"seconds before recording starts"`
	Recording int    `json:"recording" jsonschema:"recording length in seconds"`
}

type FlipVideosParams struct {
	Project          string              `json:"project" jsonschema:"registered project name"`
	SourceClass      string              `json:"source_class" jsonschema:"class whose videos are mirrored"`
	CounterpartClass string              `json:"counterpart_class" jsonschema:"class receiving the mirrored videos; created if missing"`
	CopyTags         map[string][]string `json:"copy_tags,omitempty" jsonschema:"per split, source video file names whose annotations are copied"`
}

type RecentActivityParams struct {
	Project string `json:"project,omitempty" jsonschema:"only entries of this project"`
	Class   string `json:"class,omitempty" jsonschema:"only entries of this class"`
	Type    string `json:"type,omitempty" jsonschema:"only entries of this type, e.g. class_renamed"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum entries, default 50"`
	Offset  int    `json:"offset,omitempty" jsonschema:"entries to skip"`
}

type ProjectResponse struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Exists    bool   `json:"exists"`
	CreatedAt string `json:"created_at"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type ConfigResponse struct {
	Project string         `json:"project"`
	Path    string         `json:"path"`
	Config  map[string]any `json:"config"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ClassResponse struct {
	Project string `json:"project"`
	Class   string `json:"class"`
	Tags    []int  `json:"tags,omitempty"`
}

type TagResponse struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

type SettingResponse struct {
	Setting string `json:"setting"`
	Value   bool   `json:"value"`
}

type ActivityResponse struct {
	ID          int64  `json:"id"`
	OperationID string `json:"op_id"`
	ProjectPath string `json:"project_path"`
	ClassName   string `json:"class_name,omitempty"`
	Type        string `json:"type"`
	Summary     string `json:"summary"`
	Details     string `json:"details,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type ActivityListResponse struct {
	Entries []ActivityResponse `json:"entries"`
}

func projectResponse(e *project.Entry) ProjectResponse {
	return ProjectResponse{
		Name:      e.Name,
		Path:      e.Path,
		Exists:    e.Exists,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func activityResponse(e activity.ActivityEntry) ActivityResponse {
	resp := ActivityResponse{
		ID:          e.ID,
		OperationID: e.OperationID,
		ProjectPath: e.ProjectPath,
		Type:        string(e.ActivityType),
		Summary:     e.Summary,
		Details:     e.Details,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.ClassName != nil {
		resp.ClassName = *e.ClassName
	}
	return resp
}
