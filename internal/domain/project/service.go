package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/layout"
	"github.com/rpggio/clipstudio/internal/lock"
	"github.com/rpggio/clipstudio/internal/repository"
)

// Service handles project registration, config settings and inspection.
type Service struct {
	configs    ConfigRepository
	registry   Registry
	layout     Layout
	trainer    Trainer
	activities ActivityLog
	locks      *lock.Keyed
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new project service. trainer and activities may be nil.
func NewService(configs ConfigRepository, registry Registry, layout Layout, trainer Trainer, activities ActivityLog, locks *lock.Keyed, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if locks == nil {
		locks = lock.New()
	}
	return &Service{
		configs:    configs,
		registry:   registry,
		layout:     layout,
		trainer:    trainer,
		activities: activities,
		locks:      locks,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Name       string
	ParentPath string
}

// Create makes a new project directory under ParentPath, writes a fresh
// config and registers it.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Entry, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.ParentPath) == "" {
		return nil, ErrInvalidInput
	}

	unlock := s.locks.Lock(lock.RegistryKey)
	defer unlock()

	if err := s.requireFreeName(ctx, name); err != nil {
		return nil, err
	}
	path := filepath.Join(req.ParentPath, FolderName(name))
	if err := s.requireFreePath(ctx, path, ""); err != nil {
		return nil, err
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s already exists", ErrDuplicatePath, path)
		}
		return nil, fmt.Errorf("creating project directory: %w", err)
	}

	return s.register(ctx, name, path, nil)
}

// UpdateRequest re-points a registered name to a path.
type UpdateRequest struct {
	Name string
	Path string
}

// Update registers Name at Path, reusing the config found there or writing
// a fresh one.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Entry, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Path) == "" {
		return nil, ErrInvalidInput
	}
	path := filepath.Clean(req.Path)

	unlock := s.locks.Lock(lock.RegistryKey)
	defer unlock()

	if err := s.requireFreePath(ctx, path, name); err != nil {
		return nil, err
	}
	if err := requireDir(path); err != nil {
		return nil, err
	}
	cfg, _, err := s.configs.Lookup(path)
	if err != nil {
		return nil, fmt.Errorf("reading project config: %w", err)
	}
	return s.register(ctx, name, path, cfg)
}

// Import registers an existing directory. The name comes from its config,
// or its base name when it has none, made unique against the registry.
func (s *Service) Import(ctx context.Context, path string) (*Entry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrInvalidInput
	}
	path = filepath.Clean(path)

	unlock := s.locks.Lock(lock.RegistryKey)
	defer unlock()

	if err := s.requireFreePath(ctx, path, ""); err != nil {
		return nil, err
	}
	if err := requireDir(path); err != nil {
		return nil, err
	}
	cfg, found, err := s.configs.Lookup(path)
	if err != nil {
		return nil, fmt.Errorf("reading project config: %w", err)
	}

	candidate := filepath.Base(path)
	if found && strings.TrimSpace(cfg.Name) != "" {
		candidate = cfg.Name
	}
	name, err := s.uniqueName(ctx, candidate)
	if err != nil {
		return nil, err
	}
	return s.register(ctx, name, path, cfg)
}

// register writes or fixes up the config, prepares the layout and stores
// the registry entry. Callers hold the registry lock.
func (s *Service) register(ctx context.Context, name, path string, cfg *Config) (*Entry, error) {
	unlock := s.locks.Lock(lock.ProjectKey(path))
	defer unlock()

	if cfg == nil {
		cfg = NewConfig(name, s.now())
		if err := s.configs.Write(path, cfg); err != nil {
			return nil, fmt.Errorf("writing project config: %w", err)
		}
	} else if cfg.Name != name {
		cfg.Name = name
		if err := s.configs.Write(path, cfg); err != nil {
			return nil, fmt.Errorf("writing project config: %w", err)
		}
	}
	if err := s.layout.EnsureProject(path, cfg.ClassNames()); err != nil {
		return nil, fmt.Errorf("preparing project layout: %w", err)
	}

	entry := &Entry{Name: name, Path: path, CreatedAt: s.now()}
	if err := s.registry.Put(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, path)
		}
		return nil, fmt.Errorf("registering project: %w", err)
	}
	entry.Exists = true

	s.record(ctx, path, activity.TypeProjectRegistered, "registered project "+name, "")
	s.logger.Info("project registered", "name", name, "path", path)
	return entry, nil
}

// Remove drops name from the registry. The directory and its config are
// left in place. Removing an unknown name is a no-op.
func (s *Service) Remove(ctx context.Context, name string) error {
	unlock := s.locks.Lock(lock.RegistryKey)
	defer unlock()

	entry, err := s.registry.Get(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting project: %w", err)
	}
	if err := s.registry.Delete(ctx, name); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("removing project: %w", err)
	}

	s.record(ctx, entry.Path, activity.TypeProjectRemoved, "removed project "+name, "")
	return nil
}

// List returns every registered project with a freshly computed Exists flag.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	entries, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	for i := range entries {
		entries[i].Exists = dirExists(entries[i].Path)
	}
	return entries, nil
}

// Get returns the registry entry of name.
func (s *Service) Get(ctx context.Context, name string) (*Entry, error) {
	entry, err := s.registry.Get(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	entry.Exists = dirExists(entry.Path)
	return entry, nil
}

// LookupPath returns the root directory registered under name.
func (s *Service) LookupPath(ctx context.Context, name string) (string, error) {
	entry, err := s.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return entry.Path, nil
}

// UniqueName returns candidate, or candidate with the first free " (N)"
// suffix when it is already registered.
func (s *Service) UniqueName(ctx context.Context, candidate string) (string, error) {
	return s.uniqueName(ctx, candidate)
}

func (s *Service) uniqueName(ctx context.Context, candidate string) (string, error) {
	entries, err := s.registry.List(ctx)
	if err != nil {
		return "", fmt.Errorf("listing projects: %w", err)
	}
	taken := make(map[string]bool, len(entries))
	for _, e := range entries {
		taken[e.Name] = true
	}
	if !taken[candidate] {
		return candidate, nil
	}
	// len(entries)+1 candidates cannot all be taken.
	for i := 2; i <= len(entries)+2; i++ {
		name := fmt.Sprintf("%s (%d)", candidate, i)
		if !taken[name] {
			return name, nil
		}
	}
	return "", fmt.Errorf("no free name for %q", candidate)
}

// Config loads the config of the project registered under name.
func (s *Service) Config(ctx context.Context, name string) (*Config, error) {
	path, err := s.LookupPath(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.loadConfig(path)
}

// ToggleSetting flips a setting of the project at root and returns its new
// value. Enabling assisted tagging starts a retrain in the background.
func (s *Service) ToggleSetting(ctx context.Context, root, setting string) (bool, error) {
	unlock := s.locks.Lock(lock.ProjectKey(root))
	cfg, err := s.loadConfig(root)
	if err != nil {
		unlock()
		return false, err
	}
	value, err := cfg.ToggleSetting(setting)
	if err != nil {
		unlock()
		return false, fmt.Errorf("%w: %s", err, setting)
	}
	if err := s.configs.Write(root, cfg); err != nil {
		unlock()
		return false, fmt.Errorf("writing project config: %w", err)
	}
	unlock()

	s.record(ctx, root, activity.TypeSettingToggled,
		fmt.Sprintf("set %s to %t", setting, value),
		activity.Details(map[string]any{"setting": setting, "value": value}))

	if setting == SettingAssistedTagging && value {
		s.startRetrain(ctx, root)
	}
	return value, nil
}

func (s *Service) startRetrain(ctx context.Context, root string) {
	if s.trainer == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.trainer.Retrain(ctx, root); err != nil {
			s.logger.Warn("assisted tagging retrain failed", "root", root, "error", err)
			return
		}
		s.logger.Info("assisted tagging retrained", "root", root)
	}()
}

// SetTimerDefaults stores the recording UI durations of the project at root.
func (s *Service) SetTimerDefaults(ctx context.Context, root string, timers TimerDefaults) error {
	if timers.Countdown < 0 || timers.Recording < 0 {
		return fmt.Errorf("%w: timer durations must not be negative", ErrInvalidInput)
	}

	unlock := s.locks.Lock(lock.ProjectKey(root))
	defer unlock()

	cfg, err := s.loadConfig(root)
	if err != nil {
		return err
	}
	cfg.TimerDefaults = timers
	if err := s.configs.Write(root, cfg); err != nil {
		return fmt.Errorf("writing project config: %w", err)
	}

	s.record(ctx, root, activity.TypeTimersUpdated,
		fmt.Sprintf("timers set to %ds countdown, %ds recording", timers.Countdown, timers.Recording), "")
	return nil
}

// Stats summarizes the videos and annotations present for each class.
func (s *Service) Stats(ctx context.Context, name string) (*Stats, error) {
	path, err := s.LookupPath(ctx, name)
	if err != nil {
		return nil, err
	}
	cfg, err := s.loadConfig(path)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Name:    name,
		Path:    path,
		Classes: make(map[string]map[string]SplitStats, len(cfg.Classes)),
		Tags:    cfg.Tags,
	}
	for _, class := range cfg.ClassNames() {
		perSplit := make(map[string]SplitStats, len(s.layout.Splits()))
		for _, split := range s.layout.Splits() {
			st, err := s.splitStats(path, split, class)
			if err != nil {
				return nil, err
			}
			perSplit[split] = st
		}
		stats.Classes[class] = perSplit
	}
	return stats, nil
}

func (s *Service) splitStats(root, split, class string) (SplitStats, error) {
	st := SplitStats{Videos: []string{}}

	names, err := readDirNames(layout.VideosDir(root, split, class))
	if err != nil {
		return st, err
	}
	st.Total = len(names)
	for _, n := range names {
		if s.layout.IsVideo(n) {
			st.Videos = append(st.Videos, n)
		}
	}
	slices.SortFunc(st.Videos, func(a, b string) int {
		switch {
		case NaturalLess(a, b):
			return -1
		case NaturalLess(b, a):
			return 1
		}
		return 0
	})

	tagged, err := readDirNames(layout.TagsDir(root, split, class))
	if err != nil {
		return st, err
	}
	for _, n := range tagged {
		if filepath.Ext(n) == layout.AnnotationExt {
			st.Tagged++
		}
	}
	return st, nil
}

// InspectPath answers what a project picker needs to know about creating
// or importing name at path. path is treated as a prefix when listing.
func (s *Service) InspectPath(ctx context.Context, path, name string) (*PathInfo, error) {
	info := &PathInfo{Subdirs: []string{}, VideoFiles: []string{}}

	_, err := s.registry.Get(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		info.NameUnique = true
	case err != nil:
		return nil, fmt.Errorf("getting project: %w", err)
	}

	info.PathPrefix = path
	if path != "" && !strings.HasSuffix(path, string(filepath.Separator)) {
		info.PathPrefix = path + string(filepath.Separator)
	}
	info.ProjectDir = FolderName(name)
	info.ProjectDirExists = dirExists(filepath.Join(path, info.ProjectDir))
	info.PathExists = dirExists(path)

	_, err = s.registry.GetByPath(ctx, filepath.Clean(path))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		info.PathUnique = true
	case err != nil:
		return nil, fmt.Errorf("getting project by path: %w", err)
	}

	matches, err := filepath.Glob(path + "*")
	if err != nil {
		// a path containing glob metacharacters lists nothing
		return info, nil
	}
	// subdirectories are only offered for absolute paths
	listDirs := filepath.IsAbs(path)
	for _, m := range matches {
		if dirExists(m) {
			if listDirs {
				info.Subdirs = append(info.Subdirs, m)
			}
		} else if s.layout.IsVideo(m) {
			info.VideoFiles = append(info.VideoFiles, m)
		}
	}
	slices.Sort(info.Subdirs)
	slices.Sort(info.VideoFiles)
	return info, nil
}

func (s *Service) loadConfig(root string) (*Config, error) {
	cfg, err := s.configs.Load(root)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, root)
		}
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	return cfg, nil
}

func (s *Service) requireFreeName(ctx context.Context, name string) error {
	_, err := s.registry.Get(ctx, name)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("getting project: %w", err)
	}
	return nil
}

// requireFreePath fails when path is registered under a name other than owner.
func (s *Service) requireFreePath(ctx context.Context, path, owner string) error {
	entry, err := s.registry.GetByPath(ctx, path)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting project by path: %w", err)
	}
	if owner != "" && entry.Name == owner {
		return nil
	}
	return fmt.Errorf("%w: %s is registered as %s", ErrDuplicatePath, path, entry.Name)
}

func (s *Service) record(ctx context.Context, root string, typ activity.ActivityType, summary, details string) {
	if s.activities == nil {
		return
	}
	err := s.activities.Log(ctx, &activity.ActivityEntry{
		ProjectPath:  root,
		ActivityType: typ,
		Summary:      summary,
		Details:      details,
	})
	if err != nil {
		s.logger.Warn("failed to record activity", "type", typ, "error", err)
	}
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("checking project directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidInput, path)
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// readDirNames lists entry names; a missing directory is empty.
func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
