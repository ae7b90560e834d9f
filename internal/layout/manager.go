package layout

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// rename is swapped in tests to inject failures.
var rename = os.Rename

// Move is a single directory rename.
type Move struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RenamePlan lists every directory move a class rename needs, in the
// order they will be applied.
type RenamePlan struct {
	Root    string `json:"root"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	Moves   []Move `json:"moves"`
}

// DefaultVideoExt is the container the training scripts expect.
const DefaultVideoExt = ".mp4"

// Manager creates and renames per-class directories across splits.
type Manager struct {
	splits   []string
	videoExt string
	logger   *slog.Logger
}

// NewManager creates a layout manager for the given splits. An empty
// videoExt selects DefaultVideoExt.
func NewManager(splits []string, videoExt string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if videoExt == "" {
		videoExt = DefaultVideoExt
	}
	if !strings.HasPrefix(videoExt, ".") {
		videoExt = "." + videoExt
	}
	return &Manager{
		splits:   append([]string(nil), splits...),
		videoExt: videoExt,
		logger:   logger.With("component", "layout"),
	}
}

// Splits returns the dataset splits in their configured order.
func (m *Manager) Splits() []string {
	return append([]string(nil), m.splits...)
}

// VideoExt returns the recognized video extension, dot included.
func (m *Manager) VideoExt() string {
	return m.videoExt
}

// IsVideo reports whether name carries the recognized video extension.
func (m *Manager) IsVideo(name string) bool {
	return strings.HasSuffix(name, m.videoExt)
}

// EnsureProject creates the videos base directory of every split and the
// videos directory of each listed class. Existing directories are kept.
func (m *Manager) EnsureProject(root string, classes []string) error {
	for _, split := range m.splits {
		base := BaseDir(root, split, KindVideos)
		if err := os.MkdirAll(base, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", base, err)
		}
	}
	for _, class := range classes {
		if err := m.CreateClassDirectories(root, class); err != nil {
			return err
		}
	}
	return nil
}

// CreateClassDirectories creates the videos directory of class in every
// split. It is idempotent.
func (m *Manager) CreateClassDirectories(root, class string) error {
	for _, split := range m.splits {
		dir := VideosDir(root, split, class)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// RenameClass plans and applies a class rename.
func (m *Manager) RenameClass(root, oldName, newName string) error {
	plan, err := m.PlanRename(root, oldName, newName)
	if err != nil {
		return err
	}
	return m.ApplyRename(plan)
}

// PlanRename lists the class directories that currently exist under every
// base (videos, frames, tags and each discovered features model/depth).
// Nothing is touched. A destination that already exists fails the plan
// with ErrTargetExists.
func (m *Manager) PlanRename(root, oldName, newName string) (*RenamePlan, error) {
	bases, err := m.classBases(root)
	if err != nil {
		return nil, err
	}

	plan := &RenamePlan{Root: root, OldName: oldName, NewName: newName}
	for _, base := range bases {
		from := filepath.Join(base, oldName)
		info, err := os.Stat(from)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", from, err)
		}
		if !info.IsDir() {
			continue
		}

		to := filepath.Join(base, newName)
		if _, err := os.Lstat(to); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrTargetExists, to)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", to, err)
		}
		plan.Moves = append(plan.Moves, Move{From: from, To: to})
	}
	return plan, nil
}

// ApplyRename performs the planned moves in order. On the first failure the
// completed moves are undone in reverse order and a *RenameError is
// returned describing the boundary reached.
func (m *Manager) ApplyRename(plan *RenamePlan) error {
	for i, mv := range plan.Moves {
		if err := rename(mv.From, mv.To); err != nil {
			rerr := &RenameError{
				Completed: append([]Move(nil), plan.Moves[:i]...),
				Failed:    mv,
				Err:       err,
			}
			rerr.RollbackErr = m.rollback(rerr.Completed)
			m.logger.Error("class rename stopped",
				"root", plan.Root,
				"from", plan.OldName,
				"to", plan.NewName,
				"completed", len(rerr.Completed),
				"failed_dir", mv.From,
				"rolled_back", rerr.RolledBack(),
				"error", err)
			return rerr
		}
		m.logger.Debug("renamed class directory", "from", mv.From, "to", mv.To)
	}
	return nil
}

func (m *Manager) rollback(done []Move) error {
	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		mv := done[i]
		if err := rename(mv.To, mv.From); err != nil {
			errs = append(errs, fmt.Errorf("restoring %s: %w", mv.From, err))
		}
	}
	return errors.Join(errs...)
}

// classBases returns every directory that may hold one subdirectory per
// class. Feature model and depth directories are discovered by listing.
func (m *Manager) classBases(root string) ([]string, error) {
	var bases []string
	for _, split := range m.splits {
		for _, kind := range []Kind{KindVideos, KindFrames, KindTags} {
			bases = append(bases, BaseDir(root, split, kind))
		}

		featuresDir := BaseDir(root, split, KindFeatures)
		models, err := listDirs(featuresDir)
		if err != nil {
			return nil, err
		}
		for _, model := range models {
			depths, err := listDirs(filepath.Join(featuresDir, model))
			if err != nil {
				return nil, err
			}
			for _, depth := range depths {
				bases = append(bases, FeaturesDir(root, split, model, depth))
			}
		}
	}
	return bases, nil
}

// listDirs returns the sorted names of subdirectories; a missing dir is empty.
func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
