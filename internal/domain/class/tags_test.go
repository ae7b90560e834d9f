package class_test

import (
	"context"
	"testing"

	"github.com/rpggio/clipstudio/internal/domain/class"
	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func TestAssignTag_Scenario(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	tags, err := e.svc.AssignTag(ctx, e.root, "right", 2)
	require.NoError(t, err)
	require.Equal(t, []int{2}, tags)

	tags, err = e.svc.AssignTag(ctx, e.root, "right", 0)
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, tags)

	_, err = e.svc.UnassignTag(ctx, e.root, "right", 5)
	require.ErrorIs(t, err, class.ErrTagNotAssigned)

	require.Equal(t, []int{0, 2}, e.config(t).Classes["right"])
}

func TestAssignTag_Idempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	once, err := e.svc.AssignTag(ctx, e.root, "right", 1)
	require.NoError(t, err)
	twice, err := e.svc.AssignTag(ctx, e.root, "right", 1)
	require.NoError(t, err)
	require.Equal(t, once, twice)
	require.Len(t, e.log.types(), 1)
}

func TestUnassignTag_RestoresPreviousList(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	before := e.config(t).Classes["left"]

	_, err := e.svc.AssignTag(ctx, e.root, "left", 2)
	require.NoError(t, err)
	after, err := e.svc.UnassignTag(ctx, e.root, "left", 2)
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Equal(t, before, e.config(t).Classes["left"])
}

func TestAssignTag_Errors(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.svc.AssignTag(ctx, e.root, "missing", 0)
	require.ErrorIs(t, err, class.ErrClassNotFound)

	_, err = e.svc.AssignTag(ctx, e.root, "right", 3)
	require.ErrorIs(t, err, class.ErrTagNotFound)

	_, err = e.svc.AssignTag(ctx, e.root, "right", -1)
	require.ErrorIs(t, err, class.ErrTagNotFound)

	_, err = e.svc.UnassignTag(ctx, e.root, "missing", 0)
	require.ErrorIs(t, err, class.ErrClassNotFound)
}

func TestCreateTag(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	idx, err := e.svc.CreateTag(ctx, e.root, project.Tag{Label: " clap ", Description: "hands meet"})
	require.NoError(t, err)
	require.Equal(t, 3, idx)

	cfg := e.config(t)
	require.Equal(t, project.Tag{Label: "clap", Description: "hands meet"}, cfg.Tags[3])
	require.Equal(t, "wave", cfg.Tags[0].Label)

	_, err = e.svc.CreateTag(ctx, e.root, project.Tag{Label: "wave"})
	require.ErrorIs(t, err, class.ErrDuplicateTag)

	_, err = e.svc.CreateTag(ctx, e.root, project.Tag{})
	require.ErrorIs(t, err, class.ErrInvalidInput)
}

func TestRenameTag(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.svc.RenameTag(ctx, e.root, 1, "pointing"))
	cfg := e.config(t)
	require.Equal(t, "pointing", cfg.Tags[1].Label)
	require.Equal(t, []int{0, 1}, cfg.Classes["left"])

	require.ErrorIs(t, e.svc.RenameTag(ctx, e.root, 1, "wave"), class.ErrDuplicateTag)
	require.ErrorIs(t, e.svc.RenameTag(ctx, e.root, 9, "x"), class.ErrTagNotFound)
	require.NoError(t, e.svc.RenameTag(ctx, e.root, 1, "pointing"))
}
