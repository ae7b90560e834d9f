package trainer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_EmptyCommandIsNoop(t *testing.T) {
	tr := New(nil, 0, nil)
	require.IsType(t, Noop{}, tr)
	require.NoError(t, tr.Retrain(context.Background(), "/data/proj"))
}

func TestCommand_PassesRoot(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	out := filepath.Join(t.TempDir(), "out")
	tr := New([]string{sh, "-c", `echo "$0" > ` + out}, time.Minute, nil)

	require.NoError(t, tr.Retrain(context.Background(), "/data/proj"))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "/data/proj\n", string(data))
}

func TestCommand_Failure(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	tr := New([]string{sh, "-c", "echo boom >&2; exit 3"}, time.Minute, nil)

	err = tr.Retrain(context.Background(), "/data/proj")
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}
