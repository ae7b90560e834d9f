package class_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/class"
	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/rpggio/clipstudio/internal/fsstore"
	"github.com/rpggio/clipstudio/internal/layout"
	"github.com/rpggio/clipstudio/internal/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var splits = []string{"train", "valid"}

type recorder struct {
	mu      sync.Mutex
	entries []activity.ActivityEntry
}

func (r *recorder) Log(_ context.Context, entry *activity.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *recorder) types() []activity.ActivityType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []activity.ActivityType
	for _, e := range r.entries {
		out = append(out, e.ActivityType)
	}
	return out
}

// failingLayout fails ApplyRename with a preset error after checking the
// real plan.
type failingLayout struct {
	*layout.Manager
	applyErr error
}

func (l *failingLayout) ApplyRename(*layout.RenamePlan) error {
	return l.applyErr
}

// failingWrites lets the first n writes through and fails the rest.
type failingWrites struct {
	*fsstore.ConfigStore
	allowed int
}

func (c *failingWrites) Write(root string, cfg *project.Config) error {
	if c.allowed == 0 {
		return os.ErrPermission
	}
	c.allowed--
	return c.ConfigStore.Write(root, cfg)
}

type env struct {
	root    string
	svc     *class.Service
	configs *fsstore.ConfigStore
	layout  *layout.Manager
	log     *recorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		root:    t.TempDir(),
		configs: fsstore.NewConfigStore(),
		layout:  layout.NewManager(splits, "", nil),
		log:     &recorder{},
	}
	cfg := project.NewConfig("gestures", time.Now())
	cfg.Classes["left"] = []int{0, 1}
	cfg.Classes["right"] = []int{}
	cfg.Tags = []project.Tag{{Label: "wave"}, {Label: "point"}, {Label: "idle"}}
	require.NoError(t, e.configs.Write(e.root, cfg))
	require.NoError(t, e.layout.EnsureProject(e.root, cfg.ClassNames()))

	e.svc = class.NewService(e.configs, e.layout, e.log, lock.New(), nil)
	return e
}

func (e *env) config(t *testing.T) *project.Config {
	t.Helper()
	cfg, err := e.configs.Load(e.root)
	require.NoError(t, err)
	return cfg
}

func TestAddClass(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.svc.AddClass(ctx, e.root, "thumbs up"))
	require.Equal(t, []int{}, e.config(t).Classes["thumbs up"])
	for _, split := range splits {
		require.DirExists(t, layout.VideosDir(e.root, split, "thumbs up"))
	}

	err := e.svc.AddClass(ctx, e.root, "left")
	require.ErrorIs(t, err, class.ErrDuplicateClass)

	err = e.svc.AddClass(ctx, e.root, "a/b")
	require.ErrorIs(t, err, class.ErrInvalidInput)

	require.Equal(t, []activity.ActivityType{activity.TypeClassAdded}, e.log.types())
}

func TestAddClass_MissingConfig(t *testing.T) {
	svc := class.NewService(fsstore.NewConfigStore(), layout.NewManager(splits, "", nil), nil, nil, nil)
	err := svc.AddClass(context.Background(), t.TempDir(), "left")
	require.ErrorIs(t, err, project.ErrConfigNotFound)
}

func TestRenameClass(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(layout.TagsDir(e.root, "train", "left"), 0o755))
	require.NoError(t, os.MkdirAll(layout.FeatureClassDir(e.root, "valid", "effnet", "9", "left"), 0o755))

	require.NoError(t, e.svc.RenameClass(ctx, e.root, "left", "wave_left"))

	cfg := e.config(t)
	require.False(t, cfg.HasClass("left"))
	require.Equal(t, []int{0, 1}, cfg.Classes["wave_left"])
	for _, split := range splits {
		require.NoDirExists(t, layout.VideosDir(e.root, split, "left"))
		require.DirExists(t, layout.VideosDir(e.root, split, "wave_left"))
	}
	require.DirExists(t, layout.TagsDir(e.root, "train", "wave_left"))
	require.DirExists(t, layout.FeatureClassDir(e.root, "valid", "effnet", "9", "wave_left"))
	require.Equal(t, []activity.ActivityType{activity.TypeClassRenamed}, e.log.types())
}

func TestRenameClass_DuplicateLeavesEverythingUnchanged(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	require.NoError(t, e.svc.AddClass(ctx, e.root, "wave_left"))
	before := e.config(t)

	err := e.svc.RenameClass(ctx, e.root, "left", "wave_left")
	require.ErrorIs(t, err, class.ErrDuplicateClass)

	require.Equal(t, before, e.config(t))
	require.DirExists(t, layout.VideosDir(e.root, "train", "left"))
	require.DirExists(t, layout.VideosDir(e.root, "train", "wave_left"))
}

func TestRenameClass_OrphanDirectoryBlocks(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(layout.VideosDir(e.root, "valid", "ghost"), 0o755))

	err := e.svc.RenameClass(ctx, e.root, "left", "ghost")
	require.ErrorIs(t, err, class.ErrDuplicateClass)
	require.ErrorIs(t, err, layout.ErrTargetExists)
	require.True(t, e.config(t).HasClass("left"))
}

func TestRenameClass_NotFound(t *testing.T) {
	e := newEnv(t)
	err := e.svc.RenameClass(context.Background(), e.root, "nope", "other")
	require.ErrorIs(t, err, class.ErrClassNotFound)
}

func TestRenameClass_RolledBackRestoresConfig(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	fl := &failingLayout{
		Manager:  e.layout,
		applyErr: &layout.RenameError{Err: os.ErrPermission},
	}
	svc := class.NewService(e.configs, fl, e.log, nil, nil)

	err := svc.RenameClass(ctx, e.root, "left", "wave_left")
	require.ErrorIs(t, err, os.ErrPermission)
	require.NotErrorIs(t, err, class.ErrInconsistent)

	cfg := e.config(t)
	require.True(t, cfg.HasClass("left"))
	require.False(t, cfg.HasClass("wave_left"))
	require.Equal(t, []activity.ActivityType{activity.TypeRenameRolledBack}, e.log.types())
}

func TestRenameClass_RollbackFailureIsInconsistent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	fl := &failingLayout{
		Manager: e.layout,
		applyErr: &layout.RenameError{
			Err:         os.ErrPermission,
			RollbackErr: errors.New("restore failed"),
		},
	}
	svc := class.NewService(e.configs, fl, e.log, nil, nil)

	err := svc.RenameClass(ctx, e.root, "left", "wave_left")
	require.ErrorIs(t, err, class.ErrInconsistent)
	require.Equal(t, []activity.ActivityType{activity.TypeLayoutInconsistent}, e.log.types())
}

func TestRenameClass_ConfigRestoreFailureIsInconsistent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	fl := &failingLayout{
		Manager:  e.layout,
		applyErr: &layout.RenameError{Err: os.ErrPermission},
	}
	configs := &failingWrites{ConfigStore: e.configs, allowed: 1}
	svc := class.NewService(configs, fl, e.log, nil, nil)

	err := svc.RenameClass(ctx, e.root, "left", "wave_left")
	require.ErrorIs(t, err, class.ErrInconsistent)
	require.True(t, e.config(t).HasClass("wave_left"))
}

func TestRemoveClass_KeepsDirectories(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.svc.RemoveClass(ctx, e.root, "left"))
	require.False(t, e.config(t).HasClass("left"))
	require.DirExists(t, layout.VideosDir(e.root, "train", "left"))

	err := e.svc.RemoveClass(ctx, e.root, "left")
	require.ErrorIs(t, err, class.ErrClassNotFound)
}

func TestAddThenRenameProperty(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"a", "with space", "ünïcode", "x.y"} {
		e := newEnv(t)
		require.NoError(t, e.svc.AddClass(ctx, e.root, name))
		require.NoError(t, e.svc.RenameClass(ctx, e.root, name, name+"_new"))

		cfg := e.config(t)
		require.False(t, cfg.HasClass(name))
		require.Equal(t, []int{}, cfg.Classes[name+"_new"])
		for _, split := range splits {
			require.NoDirExists(t, layout.VideosDir(e.root, split, name))
		}
	}
}

func TestConcurrentAddClass(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	var wg sync.WaitGroup
	for _, name := range []string{"c0", "c1", "c2", "c3", "c4", "c5", "c6", "c7"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.svc.AddClass(ctx, e.root, name))
		}()
	}
	wg.Wait()

	require.Len(t, e.config(t).Classes, 10)
}
