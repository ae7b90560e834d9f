package class

import (
	"context"

	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/rpggio/clipstudio/internal/layout"
)

// ConfigRepository persists project config documents.
type ConfigRepository interface {
	Load(root string) (*project.Config, error)
	Write(root string, cfg *project.Config) error
}

// Layout mirrors class mutations onto the project directory tree.
type Layout interface {
	CreateClassDirectories(root, class string) error
	PlanRename(root, oldName, newName string) (*layout.RenamePlan, error)
	ApplyRename(plan *layout.RenamePlan) error
}

// ActivityLog records class and tag mutations.
type ActivityLog interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
