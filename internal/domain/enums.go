package domain

import "fmt"

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskInReview   TaskStatus = "in_review"
	TaskCompleted  TaskStatus = "completed"
)

// taskStatusRank orders the workflow states. Completed is the only terminal state.
var taskStatusRank = map[TaskStatus]int{
	TaskTodo:       0,
	TaskInProgress: 1,
	TaskInReview:   2,
	TaskCompleted:  3,
}

// Rank returns the position of s in the workflow, or -1 for unknown values.
func (s TaskStatus) Rank() int {
	r, ok := taskStatusRank[s]
	if !ok {
		return -1
	}
	return r
}

func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted
}

// ParseTaskStatus validates a status string.
func ParseTaskStatus(v string) (TaskStatus, error) {
	s := TaskStatus(v)
	if s.Rank() < 0 {
		return "", fmt.Errorf("unknown task status %q (expected todo, in_progress, in_review or completed): %w", v, ErrInvalidInput)
	}
	return s, nil
}

type SprintStatus string

const (
	SprintPlanned   SprintStatus = "planned"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

type DependencyType string

const (
	FinishToStart  DependencyType = "finish_to_start"
	StartToStart   DependencyType = "start_to_start"
	FinishToFinish DependencyType = "finish_to_finish"
	StartToFinish  DependencyType = "start_to_finish"
)

// ValidDependencyTypes is the canonical set of accepted dependency type strings.
var ValidDependencyTypes = map[DependencyType]bool{
	FinishToStart:  true,
	StartToStart:   true,
	FinishToFinish: true,
	StartToFinish:  true,
}
