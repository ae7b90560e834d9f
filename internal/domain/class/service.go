package class

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/rpggio/clipstudio/internal/layout"
	"github.com/rpggio/clipstudio/internal/lock"
	"github.com/rpggio/clipstudio/internal/repository"
)

// errUnchanged short-circuits mutate without writing the config.
var errUnchanged = errors.New("unchanged")

// Service mutates the classes and tag vocabulary of a project and keeps
// the directory layout in step.
type Service struct {
	configs    ConfigRepository
	layout     Layout
	activities ActivityLog
	locks      *lock.Keyed
	logger     *slog.Logger
}

// NewService creates a new class service. activities may be nil.
func NewService(configs ConfigRepository, layout Layout, activities ActivityLog, locks *lock.Keyed, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if locks == nil {
		locks = lock.New()
	}
	return &Service{
		configs:    configs,
		layout:     layout,
		activities: activities,
		locks:      locks,
		logger:     logger,
	}
}

// AddClass adds an empty class to the config, then creates its videos
// directory in every split.
func (s *Service) AddClass(ctx context.Context, root, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	unlock := s.locks.Lock(lock.ProjectKey(root))
	defer unlock()

	cfg, err := s.load(root)
	if err != nil {
		return err
	}
	if cfg.HasClass(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, name)
	}
	cfg.Classes[name] = []int{}
	if err := s.configs.Write(root, cfg); err != nil {
		return fmt.Errorf("writing project config: %w", err)
	}
	if err := s.layout.CreateClassDirectories(root, name); err != nil {
		return fmt.Errorf("creating class directories: %w", err)
	}

	s.record(ctx, root, name, activity.TypeClassAdded, "added class "+name, "")
	return nil
}

// RenameClass renames a class in the config and in every directory that
// holds it. The rename is planned before anything changes. When applying
// the plan fails, moved directories and the config are restored; if that
// restore fails too, the error matches ErrInconsistent.
func (s *Service) RenameClass(ctx context.Context, root, oldName, newName string) error {
	if err := ValidateName(newName); err != nil {
		return err
	}

	unlock := s.locks.Lock(lock.ProjectKey(root))
	defer unlock()

	cfg, err := s.load(root)
	if err != nil {
		return err
	}
	if !cfg.HasClass(oldName) {
		return fmt.Errorf("%w: %s", ErrClassNotFound, oldName)
	}
	if cfg.HasClass(newName) {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, newName)
	}

	plan, err := s.layout.PlanRename(root, oldName, newName)
	if err != nil {
		if errors.Is(err, layout.ErrTargetExists) {
			return fmt.Errorf("%w: %w", ErrDuplicateClass, err)
		}
		return fmt.Errorf("planning class rename: %w", err)
	}

	before := cfg.Clone()
	cfg.Classes[newName] = cfg.Classes[oldName]
	delete(cfg.Classes, oldName)
	if err := s.configs.Write(root, cfg); err != nil {
		return fmt.Errorf("writing project config: %w", err)
	}

	if err := s.layout.ApplyRename(plan); err != nil {
		return s.recoverRename(ctx, root, plan, before, err)
	}

	s.record(ctx, root, newName, activity.TypeClassRenamed,
		fmt.Sprintf("renamed class %s to %s", oldName, newName),
		activity.Details(plan))
	return nil
}

// recoverRename restores the pre-rename config after a failed apply and
// reports the boundary the layout reached.
func (s *Service) recoverRename(ctx context.Context, root string, plan *layout.RenamePlan, before *project.Config, applyErr error) error {
	restoreErr := s.configs.Write(root, before)

	var rerr *layout.RenameError
	rolledBack := errors.As(applyErr, &rerr) && rerr.RolledBack()

	details := map[string]any{
		"plan":        plan,
		"error":       applyErr.Error(),
		"rolled_back": rolledBack,
	}
	if rerr != nil {
		details["completed"] = rerr.Completed
		details["failed"] = rerr.Failed
	}
	if restoreErr != nil {
		details["config_restore_error"] = restoreErr.Error()
	}

	if rolledBack && restoreErr == nil {
		s.record(ctx, root, plan.OldName, activity.TypeRenameRolledBack,
			fmt.Sprintf("rename of %s to %s rolled back", plan.OldName, plan.NewName),
			activity.Details(details))
		return fmt.Errorf("renaming class directories: %w", applyErr)
	}

	s.logger.Error("class rename left project inconsistent",
		"root", root,
		"from", plan.OldName,
		"to", plan.NewName,
		"error", applyErr,
		"config_restore_error", restoreErr)
	s.record(ctx, root, plan.OldName, activity.TypeLayoutInconsistent,
		fmt.Sprintf("rename of %s to %s left the layout inconsistent", plan.OldName, plan.NewName),
		activity.Details(details))
	if restoreErr != nil {
		return fmt.Errorf("%w: restoring config: %w (rename: %w)", ErrInconsistent, restoreErr, applyErr)
	}
	return fmt.Errorf("renaming class directories: %w", applyErr)
}

// RemoveClass drops a class from the config. Its directories and data are
// left on disk.
func (s *Service) RemoveClass(ctx context.Context, root, name string) error {
	unlock := s.locks.Lock(lock.ProjectKey(root))
	defer unlock()

	cfg, err := s.load(root)
	if err != nil {
		return err
	}
	if !cfg.HasClass(name) {
		return fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}
	delete(cfg.Classes, name)
	if err := s.configs.Write(root, cfg); err != nil {
		return fmt.Errorf("writing project config: %w", err)
	}

	s.record(ctx, root, name, activity.TypeClassRemoved, "removed class "+name, "")
	return nil
}

// mutate runs fn on the current config under the project lock and writes
// the result unless fn returns errUnchanged.
func (s *Service) mutate(root string, fn func(cfg *project.Config) error) (*project.Config, error) {
	unlock := s.locks.Lock(lock.ProjectKey(root))
	defer unlock()

	cfg, err := s.load(root)
	if err != nil {
		return nil, err
	}
	if err := fn(cfg); err != nil {
		if errors.Is(err, errUnchanged) {
			return cfg, nil
		}
		return nil, err
	}
	if err := s.configs.Write(root, cfg); err != nil {
		return nil, fmt.Errorf("writing project config: %w", err)
	}
	return cfg, nil
}

func (s *Service) load(root string) (*project.Config, error) {
	cfg, err := s.configs.Load(root)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", project.ErrConfigNotFound, root)
		}
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	return cfg, nil
}

func (s *Service) record(ctx context.Context, root, className string, typ activity.ActivityType, summary, details string) {
	if s.activities == nil {
		return
	}
	entry := &activity.ActivityEntry{
		ProjectPath:  root,
		ActivityType: typ,
		Summary:      summary,
		Details:      details,
	}
	if className != "" {
		entry.ClassName = &className
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", "type", typ, "error", err)
	}
}

// validateName rejects names that cannot be a single directory segment.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: class name %q", ErrInvalidInput, name)
	}
	return nil
}
