// Package app wires storage, layout, tools and domain services together.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/clipstudio/internal/config"
	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/class"
	"github.com/rpggio/clipstudio/internal/domain/flip"
	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/rpggio/clipstudio/internal/ffmpeg"
	"github.com/rpggio/clipstudio/internal/fsstore"
	"github.com/rpggio/clipstudio/internal/layout"
	"github.com/rpggio/clipstudio/internal/lock"
	"github.com/rpggio/clipstudio/internal/mcp"
	"github.com/rpggio/clipstudio/internal/sqlite"
	"github.com/rpggio/clipstudio/internal/trainer"
)

// App holds the services shared by the server and the CLI.
type App struct {
	DB       *sqlite.DB
	Layout   *layout.Manager
	Projects *project.Service
	Classes  *class.Service
	Flip     *flip.Service
	Activity *activity.Service

	logger *slog.Logger
}

type options struct {
	transformer    flip.Transformer
	transformerSet bool
	trainer        project.Trainer
}

// Option overrides a collaborator built from config.
type Option func(*options)

// WithTransformer replaces the ffmpeg executor. A nil transformer
// disables flipping.
func WithTransformer(t flip.Transformer) Option {
	return func(o *options) {
		o.transformer = t
		o.transformerSet = true
	}
}

// WithTrainer replaces the configured retrain command.
func WithTrainer(t project.Trainer) Option {
	return func(o *options) {
		o.trainer = t
	}
}

// New opens the registry database and builds every service.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	registry := sqlite.NewRegistryRepository(db)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	configs := fsstore.NewConfigStore()
	locks := lock.New()
	manager := layout.NewManager(cfg.Layout.Splits, cfg.Layout.VideoExt, logger)

	tr := o.trainer
	if tr == nil {
		tr = trainer.New(cfg.Trainer.Command, time.Duration(cfg.Trainer.TimeoutSeconds)*time.Second, logger)
	}

	transformer := o.transformer
	if !o.transformerSet {
		transformer = newTransformer(cfg.FFmpeg, logger)
	}

	return &App{
		DB:       db,
		Layout:   manager,
		Projects: project.NewService(configs, registry, manager, tr, activitySvc, locks, logger),
		Classes:  class.NewService(configs, manager, activitySvc, locks, logger),
		Flip:     flip.NewService(configs, manager, transformer, fsstore.NewAnnotationStore(), activitySvc, locks, logger),
		Activity: activitySvc,
		logger:   logger,
	}, nil
}

// newTransformer resolves ffmpeg; without it the server still runs and
// flip requests fail with flip.ErrTransformerUnavailable.
func newTransformer(cfg config.FFmpegConfig, logger *slog.Logger) flip.Transformer {
	exec, err := ffmpeg.New(logger, cfg.BinaryPath, cfg.Threads)
	if err != nil {
		logger.Warn("video flipping disabled", "error", err)
		return nil
	}
	logger.Debug("ffmpeg resolved", "path", exec.Path())
	return exec
}

// MCPServices exposes the services to the MCP tool layer.
func (a *App) MCPServices() mcp.Services {
	return mcp.Services{
		Projects: a.Projects,
		Classes:  a.Classes,
		Flip:     a.Flip,
		Activity: a.Activity,
	}
}

// MCPServer builds an MCP server over the app's services.
func (a *App) MCPServer() *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Services: a.MCPServices(),
		Logger:   a.logger,
	})
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
