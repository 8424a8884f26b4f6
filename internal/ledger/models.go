package ledger

import "time"

// Status represents the lifecycle of a recorded run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether a run in this status will never change again.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Run captures one pipeline execution from start to terminal outcome.
type Run struct {
	ID           int64
	RunID        string
	Title        string
	SourceDir    string
	OutputPath   string
	Status       Status
	Stage        string
	StageCurrent int
	StageTotal   int
	ErrorClass   string
	ErrorMessage string
	PreviewPath  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}
