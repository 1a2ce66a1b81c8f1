package models

import "time"

// RunMode selects where a pipeline run takes its listing from
type RunMode string

const (
	ModeFetch  RunMode = "fetch"
	ModeReplay RunMode = "replay"
)

// Counts aggregates per-entry outcomes of a run
type Counts struct {
	Captured  int
	Matched   int
	Recorded  int
	Skipped   int
	Unmatched int
	Resolved  int
	Errors    int
}

// RunReport describes the outcome of one run for one Link
type RunReport struct {
	RunID       string
	LinkID      int64
	SupplierID  int64
	Supplier    string
	Kind        ProductKind
	Mode        RunMode
	SnapshotKey string
	Counts
	Cancelled  bool
	Err        error // set when the run failed as a whole
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed reports whether the run was aborted by a run-level error
func (r *RunReport) Failed() bool {
	return r.Err != nil
}
