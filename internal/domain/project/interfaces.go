package project

import (
	"context"

	"github.com/rpggio/clipstudio/internal/domain/activity"
)

// ConfigRepository persists the config document of a project root.
type ConfigRepository interface {
	Lookup(root string) (*Config, bool, error)
	Load(root string) (*Config, error)
	Write(root string, cfg *Config) error
}

// Registry persists the table of known projects.
type Registry interface {
	Get(ctx context.Context, name string) (*Entry, error)
	GetByPath(ctx context.Context, path string) (*Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Put(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, name string) error
}

// Layout prepares the directory tree of a project.
type Layout interface {
	Splits() []string
	IsVideo(name string) bool
	EnsureProject(root string, classes []string) error
}

// Trainer retrains the assisted tagging model of a project.
type Trainer interface {
	Retrain(ctx context.Context, root string) error
}

// ActivityLog records project mutations.
type ActivityLog interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
