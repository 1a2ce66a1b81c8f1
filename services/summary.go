package services

import (
	"reloadradar/models"

	"github.com/samber/lo"
)

// Summary totals the outcome of a batch of runs
type Summary struct {
	Runs      int
	Failed    int
	Cancelled int
	models.Counts
}

// Summarize adds up the counts of every run that was not aborted
func Summarize(reports []*models.RunReport) Summary {
	s := Summary{Runs: len(reports)}
	s.Failed = lo.CountBy(reports, func(r *models.RunReport) bool { return r.Failed() })
	s.Cancelled = lo.CountBy(reports, func(r *models.RunReport) bool { return r.Cancelled })

	for _, r := range reports {
		if r.Failed() {
			continue
		}
		s.Captured += r.Captured
		s.Matched += r.Matched
		s.Recorded += r.Recorded
		s.Skipped += r.Skipped
		s.Unmatched += r.Unmatched
		s.Resolved += r.Resolved
		s.Errors += r.Errors
	}
	return s
}
