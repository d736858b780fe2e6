package recorder

import (
	"time"

	"MarketPulse/internal/model"
)

// RunRecord summarizes one refresh run.
type RunRecord struct {
	RunID      string
	SessionKey string
	StartedAt  time.Time
	FinishedAt time.Time
	Attempted  int
	Succeeded  int
	Failed     []string
	TestMode   bool
}

// Recorder persists an audit trail of refresh runs.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecordSnapshot(runID, sessionKey string, snap *model.TickerSnapshot) error
	RecentRuns(limit int) ([]RunRecord, error)
	Close() error
}
