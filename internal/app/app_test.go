package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/clipstudio/internal/app"
	"github.com/rpggio/clipstudio/internal/config"
	"github.com/rpggio/clipstudio/internal/domain/flip"
	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/rpggio/clipstudio/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.DB.Path = filepath.Join(t.TempDir(), "db", "registry.db")
	return cfg
}

func TestNew_CreatesDatabaseDirectory(t *testing.T) {
	cfg := testConfig(t)
	a, err := app.New(cfg, nil, app.WithTransformer(nil))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	require.FileExists(t, cfg.DB.Path)
	require.Equal(t, []string{"train", "valid"}, a.Layout.Splits())
	require.NotNil(t, a.MCPServer())
}

func TestNew_WithoutTransformerFlipIsUnavailable(t *testing.T) {
	ctx := context.Background()
	a, err := app.New(testConfig(t), nil, app.WithTransformer(nil))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	entry, err := a.Projects.Create(ctx, project.CreateRequest{Name: "p", ParentPath: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, a.Classes.AddClass(ctx, entry.Path, "left"))

	_, err = a.Flip.Run(ctx, entry.Path, flip.Request{SourceClass: "left", CounterpartClass: "right"})
	require.ErrorIs(t, err, flip.ErrTransformerUnavailable)
}

func TestNew_AssistedTaggingTriggersTrainer(t *testing.T) {
	ctx := context.Background()
	tr := &mocks.Trainer{}
	called := make(chan string, 1)
	tr.On("Retrain", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { called <- args.String(1) }).
		Return(nil)

	a, err := app.New(testConfig(t), nil, app.WithTransformer(nil), app.WithTrainer(tr))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	entry, err := a.Projects.Create(ctx, project.CreateRequest{Name: "p", ParentPath: t.TempDir()})
	require.NoError(t, err)

	on, err := a.Projects.ToggleSetting(ctx, entry.Path, project.SettingAssistedTagging)
	require.NoError(t, err)
	require.True(t, on)

	select {
	case root := <-called:
		require.Equal(t, entry.Path, root)
	case <-time.After(5 * time.Second):
		t.Fatal("trainer was not started")
	}
}

func TestNew_ReopenKeepsRegistry(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := app.New(cfg, nil, app.WithTransformer(nil))
	require.NoError(t, err)
	_, err = a.Projects.Create(ctx, project.CreateRequest{Name: "kept", ParentPath: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	a, err = app.New(cfg, nil, app.WithTransformer(nil))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	entries, err := a.Projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "kept", entries[0].Name)
}
