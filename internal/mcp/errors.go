package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/class"
	"github.com/rpggio/clipstudio/internal/domain/flip"
	"github.com/rpggio/clipstudio/internal/domain/project"
	"github.com/rpggio/clipstudio/internal/layout"
)

// Error codes returned by tools.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeDuplicate    = "DUPLICATE"
	CodeInvalidInput = "INVALID_INPUT"
	CodeInconsistent = "INCONSISTENT"
	CodeIOFailure    = "IO_FAILURE"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
	err          error
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// MapError maps domain errors to MCP error codes. Inconsistency is checked
// first since an inconsistent rename may also wrap an I/O error.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	e := &APIError{Message: err.Error(), err: err}
	switch {
	case errors.Is(err, layout.ErrInconsistent):
		e.Code = CodeInconsistent
		e.RecoveryHint = "call recent_activity to see the boundary reached and repair the directories"
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, project.ErrConfigNotFound),
		errors.Is(err, class.ErrClassNotFound),
		errors.Is(err, class.ErrTagNotFound),
		errors.Is(err, class.ErrTagNotAssigned):
		e.Code = CodeNotFound
	case errors.Is(err, project.ErrDuplicateName),
		errors.Is(err, project.ErrDuplicatePath),
		errors.Is(err, class.ErrDuplicateClass),
		errors.Is(err, class.ErrDuplicateTag),
		errors.Is(err, layout.ErrTargetExists):
		e.Code = CodeDuplicate
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, project.ErrUnknownSetting),
		errors.Is(err, class.ErrInvalidInput),
		errors.Is(err, flip.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput):
		e.Code = CodeInvalidInput
	default:
		e.Code = CodeIOFailure
	}
	return e
}
