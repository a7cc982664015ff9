package domain

import "time"

type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportJob tracks an asynchronous CSV inventory report.
type ExportJob struct {
	ID           int64
	Status       ExportStatus
	Filter       ItemFilter
	Location     string
	ErrorMessage string
	RequestedBy  int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}
