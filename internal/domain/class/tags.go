package class

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/project"
)

// AssignTag adds tag index to class and returns the class's sorted tag
// list. Assigning a tag that is already present changes nothing.
func (s *Service) AssignTag(ctx context.Context, root, className string, index int) ([]int, error) {
	changed := false
	cfg, err := s.mutate(root, func(cfg *project.Config) error {
		tags, ok := cfg.Classes[className]
		if !ok {
			return fmt.Errorf("%w: %s", ErrClassNotFound, className)
		}
		if index < 0 || index >= len(cfg.Tags) {
			return fmt.Errorf("%w: index %d", ErrTagNotFound, index)
		}
		if slices.Contains(tags, index) {
			return errUnchanged
		}
		tags = append(tags, index)
		slices.Sort(tags)
		cfg.Classes[className] = tags
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return slices.Clone(cfg.Classes[className]), nil
	}

	s.record(ctx, root, className, activity.TypeTagAssigned,
		fmt.Sprintf("assigned tag %d to %s", index, className),
		activity.Details(map[string]int{"tag": index}))
	return slices.Clone(cfg.Classes[className]), nil
}

// UnassignTag removes tag index from class and returns the remaining list.
func (s *Service) UnassignTag(ctx context.Context, root, className string, index int) ([]int, error) {
	cfg, err := s.mutate(root, func(cfg *project.Config) error {
		tags, ok := cfg.Classes[className]
		if !ok {
			return fmt.Errorf("%w: %s", ErrClassNotFound, className)
		}
		pos := slices.Index(tags, index)
		if pos < 0 {
			return fmt.Errorf("%w: index %d on %s", ErrTagNotAssigned, index, className)
		}
		cfg.Classes[className] = slices.Delete(tags, pos, pos+1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, root, className, activity.TypeTagUnassigned,
		fmt.Sprintf("unassigned tag %d from %s", index, className),
		activity.Details(map[string]int{"tag": index}))
	return slices.Clone(cfg.Classes[className]), nil
}

// CreateTag appends a tag to the vocabulary and returns its index.
// Existing indices never move.
func (s *Service) CreateTag(ctx context.Context, root string, tag project.Tag) (int, error) {
	tag.Label = strings.TrimSpace(tag.Label)
	if tag.Label == "" {
		return 0, fmt.Errorf("%w: empty tag label", ErrInvalidInput)
	}

	var index int
	_, err := s.mutate(root, func(cfg *project.Config) error {
		if labelIndex(cfg.Tags, tag.Label) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateTag, tag.Label)
		}
		cfg.Tags = append(cfg.Tags, tag)
		index = len(cfg.Tags) - 1
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.record(ctx, root, "", activity.TypeTagCreated,
		fmt.Sprintf("created tag %d %q", index, tag.Label), "")
	return index, nil
}

// RenameTag changes the label of the tag at index.
func (s *Service) RenameTag(ctx context.Context, root string, index int, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Errorf("%w: empty tag label", ErrInvalidInput)
	}

	var old string
	changed := false
	_, err := s.mutate(root, func(cfg *project.Config) error {
		if index < 0 || index >= len(cfg.Tags) {
			return fmt.Errorf("%w: index %d", ErrTagNotFound, index)
		}
		if i := labelIndex(cfg.Tags, label); i >= 0 && i != index {
			return fmt.Errorf("%w: %s", ErrDuplicateTag, label)
		}
		old = cfg.Tags[index].Label
		if old == label {
			return errUnchanged
		}
		cfg.Tags[index].Label = label
		changed = true
		return nil
	})
	if err != nil || !changed {
		return err
	}

	s.record(ctx, root, "", activity.TypeTagRenamed,
		fmt.Sprintf("renamed tag %d from %q to %q", index, old, label), "")
	return nil
}

func labelIndex(tags []project.Tag, label string) int {
	return slices.IndexFunc(tags, func(t project.Tag) bool { return t.Label == label })
}
