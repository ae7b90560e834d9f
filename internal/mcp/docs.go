package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `clipstudio manages video datasets for gesture classification.

A project is a directory holding project_config.json plus per-split data
directories (videos_<split>, frames_<split>, tags_<split>, features_<split>).
Projects are registered by name; every tool that touches a project takes
that name.

Workflow:
1) list_projects to see what is registered; import_project or create_project to add one.
2) get_project_config and project_stats to see classes, tags and recorded videos.
3) add_class / rename_class / remove_class keep the config and directories in step.
4) create_tag then assign_tag to label classes with temporal tags (tags are referenced by index).
5) flip_videos mirrors a class into its counterpart (e.g. "left" into "right").
6) recent_activity shows what changed, including failed renames that need repair.

Errors carry a code prefix: NOT_FOUND, DUPLICATE, INVALID_INPUT, INCONSISTENT, IO_FAILURE.
INCONSISTENT means a rename could not be fully undone; read recent_activity for the boundary reached.

Docs:
- clipstudio://docs/layout
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "clipstudio://docs/layout",
		Name:        "docs_layout",
		Title:       "Project directory layout",
		Description: "Where videos, frames, tag annotations and features live inside a project.",
		Content: `# Project layout

    <root>/project_config.json
    <root>/videos_<split>/<class>/<video>.mp4
    <root>/frames_<split>/<class>/...
    <root>/tags_<split>/<class>/<video stem>.json
    <root>/features_<split>/<model>/<depth>/<class>/...

Splits default to train and valid.

## Renaming a class

Every directory named after the class is moved, in every split and under
every feature model and depth. The rename is refused when any destination
already exists. If a move fails, completed moves are undone in reverse
order and the config is restored.

## Removing a class

Only the config entry is dropped. Directories and recorded data stay on disk.

## Flipping

A mirrored copy of each source video is written to the counterpart class as
<stem>_flipped<ext>. Videos whose mirrored copy already exists are skipped.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
