package core

import "time"

// RunStatus represents the status of an extraction run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded extraction run.
type Run struct {
	ID          string
	Source      string
	Status      RunStatus
	Pages       int
	Visuals     int
	Queries     int
	Warnings    int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Store defines the interface for extraction-run history.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	CreateRun(source string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, counts RunCounts, errMsg string) error
	GetLatestRun(source string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
}

// RunCounts carries the per-run summary totals recorded on completion.
type RunCounts struct {
	Pages    int
	Visuals  int
	Queries  int
	Warnings int
}
