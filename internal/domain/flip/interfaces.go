package flip

import (
	"context"

	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/project"
)

// Transformer renders mirrored videos.
type Transformer interface {
	MirrorHorizontally(ctx context.Context, input, output string) error
}

// ConfigRepository persists project config documents.
type ConfigRepository interface {
	Load(root string) (*project.Config, error)
	Write(root string, cfg *project.Config) error
}

// Annotations copies tag annotation documents between videos.
type Annotations interface {
	Copy(src, dst, videoName string) error
}

// Layout describes the split set and video naming of a project.
type Layout interface {
	Splits() []string
	VideoExt() string
	IsVideo(name string) bool
}

// ActivityLog records flip runs.
type ActivityLog interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
