package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCapacity means daily hours are not positive or no weekday is a working day.
	ErrInvalidCapacity = errors.New("invalid work capacity")

	// ErrMissingTeamAssignment means the project has no team to resolve capacity from.
	ErrMissingTeamAssignment = errors.New("project has no team assignment")

	// ErrMemberNotFound means the assignee is not a member of the project's team.
	ErrMemberNotFound = errors.New("assignee is not a team member")

	// ErrDependencyCycle means following dependencies, alone or together
	// with an assignee's queue order, leads back to a task already on the path.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrScheduleNotSettled means dependents were still moving when
	// reconciliation gave up.
	ErrScheduleNotSettled = errors.New("schedule did not settle")

	ErrTaskNotFound    = errors.New("task not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrSprintNotFound  = errors.New("sprint not found")
	ErrTeamNotFound    = errors.New("team not found")

	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError collects every per-item problem found in a bulk request.
// Bulk operations return it before writing anything.
type ValidationError struct {
	Op     string
	Issues []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Error()
	}
	return fmt.Sprintf("%s: %d validation error(s): %s", e.Op, len(e.Issues), strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError returns nil when issues is empty.
func NewValidationError(op string, issues []error) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Op: op, Issues: issues}
}
