package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetExists indicates a rename destination is already on disk.
	ErrTargetExists = errors.New("target directory already exists")
	// ErrInconsistent indicates the layout was left half renamed.
	ErrInconsistent = errors.New("directory layout inconsistent")
)

// RenameError reports where a class rename stopped and whether the
// completed moves could be undone.
type RenameError struct {
	Completed   []Move
	Failed      Move
	Err         error
	RollbackErr error
}

func (e *RenameError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf("moving %s to %s failed after %d moves: %v; rollback failed: %v",
			e.Failed.From, e.Failed.To, len(e.Completed), e.Err, e.RollbackErr)
	}
	return fmt.Sprintf("moving %s to %s failed after %d moves (rolled back): %v",
		e.Failed.From, e.Failed.To, len(e.Completed), e.Err)
}

func (e *RenameError) Unwrap() error {
	return e.Err
}

// Is matches ErrInconsistent only when the rollback did not complete.
func (e *RenameError) Is(target error) bool {
	return target == ErrInconsistent && e.RollbackErr != nil
}

// RolledBack reports whether the layout is back to its pre-rename state.
func (e *RenameError) RolledBack() bool {
	return e.RollbackErr == nil
}
