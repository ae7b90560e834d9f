package class

import (
	"errors"

	"github.com/rpggio/clipstudio/internal/layout"
)

var (
	// ErrClassNotFound indicates the class is not part of the project config.
	ErrClassNotFound = errors.New("class not found")
	// ErrDuplicateClass indicates the class name is already taken.
	ErrDuplicateClass = errors.New("class already exists")
	// ErrTagNotFound indicates the tag index is outside the vocabulary.
	ErrTagNotFound = errors.New("tag not found")
	// ErrTagNotAssigned indicates the tag is not assigned to the class.
	ErrTagNotAssigned = errors.New("tag not assigned to class")
	// ErrDuplicateTag indicates another tag already has the label.
	ErrDuplicateTag = errors.New("tag label already exists")
	// ErrInvalidInput indicates invalid class or tag input.
	ErrInvalidInput = errors.New("invalid class input")
	// ErrInconsistent indicates config and directory layout have diverged.
	ErrInconsistent = layout.ErrInconsistent
)
