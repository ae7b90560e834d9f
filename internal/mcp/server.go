package mcp

import (
	"context"
	"io"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/flip"
	"github.com/rpggio/clipstudio/internal/domain/project"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	List(ctx context.Context) ([]project.Entry, error)
	LookupPath(ctx context.Context, name string) (string, error)
	Config(ctx context.Context, name string) (*project.Config, error)
	Create(ctx context.Context, req project.CreateRequest) (*project.Entry, error)
	Import(ctx context.Context, path string) (*project.Entry, error)
	Update(ctx context.Context, req project.UpdateRequest) (*project.Entry, error)
	Remove(ctx context.Context, name string) error
	Stats(ctx context.Context, name string) (*project.Stats, error)
	InspectPath(ctx context.Context, path, name string) (*project.PathInfo, error)
	ToggleSetting(ctx context.Context, root, setting string) (bool, error)
	SetTimerDefaults(ctx context.Context, root string, timers project.TimerDefaults) error
}

// ClassService defines class and tag operations needed by MCP.
type ClassService interface {
	AddClass(ctx context.Context, root, name string) error
	RenameClass(ctx context.Context, root, oldName, newName string) error
	RemoveClass(ctx context.Context, root, name string) error
	AssignTag(ctx context.Context, root, className string, index int) ([]int, error)
	UnassignTag(ctx context.Context, root, className string, index int) ([]int, error)
	CreateTag(ctx context.Context, root string, tag project.Tag) (int, error)
	RenameTag(ctx context.Context, root string, index int, label string) error
}

// FlipService defines the flip pipeline needed by MCP.
type FlipService interface {
	Run(ctx context.Context, root string, req flip.Request) (*flip.Result, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Classes  ClassService
	Flip     FlipService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "clipstudio",
		Version: Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddReceivingMiddleware(requestMiddleware(logger))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, &tools{svc: cfg.Services, logger: logger})

	return server
}
