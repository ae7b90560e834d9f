package flip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/class"
	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/rpggio/clipstudio/internal/layout"
	"github.com/rpggio/clipstudio/internal/lock"
	"github.com/rpggio/clipstudio/internal/repository"
)

// Request describes one flip run.
type Request struct {
	SourceClass      string
	CounterpartClass string
	// CopyTags lists, per split, the source videos whose annotations are
	// copied to their mirrored counterpart.
	CopyTags map[string][]string
}

// Result summarizes a flip run. Video entries are "<split>/<file>".
type Result struct {
	RunID        string   `json:"run_id"`
	ClassCreated bool     `json:"class_created"`
	Rendered     []string `json:"rendered"`
	Skipped      []string `json:"skipped"`
	TagsCopied   []string `json:"tags_copied"`
}

// Service mirrors the videos of a class into a counterpart class.
type Service struct {
	configs     ConfigRepository
	layout      Layout
	transformer Transformer
	annotations Annotations
	activities  ActivityLog
	locks       *lock.Keyed
	logger      *slog.Logger
}

// NewService creates a flip service. A nil transformer makes Run fail
// with ErrTransformerUnavailable.
func NewService(configs ConfigRepository, layout Layout, transformer Transformer, annotations Annotations, activities ActivityLog, locks *lock.Keyed, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if locks == nil {
		locks = lock.New()
	}
	return &Service{
		configs:     configs,
		layout:      layout,
		transformer: transformer,
		annotations: annotations,
		activities:  activities,
		locks:       locks,
		logger:      logger.With("component", "flip"),
	}
}

// Run creates the counterpart class if needed, then renders a mirrored
// copy of every source video whose counterpart file does not exist yet.
// A failed render stops the run; videos rendered before it are kept.
func (s *Service) Run(ctx context.Context, root string, req Request) (*Result, error) {
	if strings.TrimSpace(req.SourceClass) == "" || strings.TrimSpace(req.CounterpartClass) == "" {
		return nil, fmt.Errorf("%w: source and counterpart class are required", ErrInvalidInput)
	}
	if req.SourceClass == req.CounterpartClass {
		return nil, fmt.Errorf("%w: counterpart must differ from source", ErrInvalidInput)
	}
	if err := class.ValidateName(req.CounterpartClass); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if s.transformer == nil {
		return nil, ErrTransformerUnavailable
	}

	res := &Result{
		RunID:      uuid.NewString(),
		Rendered:   []string{},
		Skipped:    []string{},
		TagsCopied: []string{},
	}

	created, err := s.ensureCounterpart(root, req)
	if err != nil {
		return nil, err
	}
	res.ClassCreated = created

	// one run at a time per counterpart directory
	unlock := s.locks.Lock(lock.FlipKey(root, req.CounterpartClass))
	defer unlock()

	logger := s.logger.With("run_id", res.RunID, "root", root,
		"source", req.SourceClass, "counterpart", req.CounterpartClass)
	logger.Info("flip run started")

	for _, split := range s.layout.Splits() {
		if err := s.flipSplit(ctx, root, split, req, res); err != nil {
			logger.Error("flip run aborted", "split", split, "rendered", len(res.Rendered), "error", err)
			s.record(ctx, root, req, res, err)
			return res, err
		}
	}

	logger.Info("flip run finished",
		"rendered", len(res.Rendered), "skipped", len(res.Skipped), "tags_copied", len(res.TagsCopied))
	s.record(ctx, root, req, res, nil)
	return res, nil
}

// ensureCounterpart adds the counterpart class under the project lock.
// It inherits the source's tags when any annotation copy was requested.
func (s *Service) ensureCounterpart(root string, req Request) (bool, error) {
	unlock := s.locks.Lock(lock.ProjectKey(root))
	defer unlock()

	cfg, err := s.configs.Load(root)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, fmt.Errorf("%w: %s", project.ErrConfigNotFound, root)
		}
		return false, fmt.Errorf("loading project config: %w", err)
	}
	if !cfg.HasClass(req.SourceClass) {
		return false, fmt.Errorf("%w: %s", class.ErrClassNotFound, req.SourceClass)
	}
	if cfg.HasClass(req.CounterpartClass) {
		return false, nil
	}

	tags := []int{}
	if copyRequested(req.CopyTags) {
		tags = slices.Clone(cfg.Classes[req.SourceClass])
	}
	cfg.Classes[req.CounterpartClass] = tags
	if err := s.configs.Write(root, cfg); err != nil {
		return false, fmt.Errorf("writing project config: %w", err)
	}
	return true, nil
}

func (s *Service) flipSplit(ctx context.Context, root, split string, req Request, res *Result) error {
	srcDir := layout.VideosDir(root, split, req.SourceClass)
	dstDir := layout.VideosDir(root, split, req.CounterpartClass)
	dstTags := layout.TagsDir(root, split, req.CounterpartClass)
	for _, dir := range []string{dstDir, dstTags} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	sources, err := s.listVideos(srcDir)
	if err != nil {
		return err
	}
	existing, err := s.listVideos(dstDir)
	if err != nil {
		return err
	}
	copyTags := req.CopyTags[split]

	for _, video := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		flipped := FlippedName(video, s.layout.VideoExt())
		if slices.Contains(existing, flipped) {
			res.Skipped = append(res.Skipped, path.Join(split, video))
			continue
		}

		output := filepath.Join(dstDir, flipped)
		if err := s.transformer.MirrorHorizontally(ctx, filepath.Join(srcDir, video), output); err != nil {
			return fmt.Errorf("mirroring %s/%s: %w", split, video, err)
		}
		existing = append(existing, flipped)
		res.Rendered = append(res.Rendered, path.Join(split, flipped))

		if !slices.Contains(copyTags, video) {
			continue
		}
		src := layout.AnnotationFile(root, split, req.SourceClass, video)
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		dst := layout.AnnotationFile(root, split, req.CounterpartClass, flipped)
		if err := s.annotations.Copy(src, dst, flipped); err != nil {
			return fmt.Errorf("copying annotation of %s/%s: %w", split, video, err)
		}
		res.TagsCopied = append(res.TagsCopied, path.Join(split, layout.AnnotationName(flipped)))
	}
	return nil
}

// listVideos returns the video file names in dir, sorted; a missing dir
// is empty. Hidden files such as partial renders are ignored.
func (s *Service) listVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && !strings.HasPrefix(e.Name(), ".") && s.layout.IsVideo(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *Service) record(ctx context.Context, root string, req Request, res *Result, runErr error) {
	if s.activities == nil {
		return
	}
	details := map[string]any{
		"source":        req.SourceClass,
		"class_created": res.ClassCreated,
		"rendered":      res.Rendered,
		"skipped":       len(res.Skipped),
		"tags_copied":   res.TagsCopied,
	}
	summary := fmt.Sprintf("flipped %d videos from %s", len(res.Rendered), req.SourceClass)
	if runErr != nil {
		details["error"] = runErr.Error()
		summary += " (aborted)"
	}
	counterpart := req.CounterpartClass
	err := s.activities.Log(ctx, &activity.ActivityEntry{
		OperationID:  res.RunID,
		ProjectPath:  root,
		ClassName:    &counterpart,
		ActivityType: activity.TypeVideosFlipped,
		Summary:      summary,
		Details:      activity.Details(details),
	})
	if err != nil {
		s.logger.Warn("failed to record activity", "error", err)
	}
}

func copyRequested(copyTags map[string][]string) bool {
	for _, videos := range copyTags {
		if len(videos) > 0 {
			return true
		}
	}
	return false
}
