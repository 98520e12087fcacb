package repository

import (
	"context"
	"time"
)

// RunRecord is the audit entry for one range computation. It carries
// request metadata and counts only — computed ranges are never stored.
type RunRecord struct {
	ID         string
	Points     int
	Survivors  int
	Elevation  bool
	Modes      string // comma-joined travel modes, input order
	DurationMS int64
	CreatedAt  time.Time
}

type RunRepository interface {
	Add(ctx context.Context, r *RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}
