package services

import (
	"errors"
	"strings"
	"testing"

	"reloadradar/models"

	"github.com/stretchr/testify/assert"
)

func sampleReports() []*models.RunReport {
	return []*models.RunReport{
		{LinkID: 1, SupplierID: 1, Supplier: "Safari Outdoor", Kind: models.KindPropellant, Mode: models.ModeFetch,
			SnapshotKey: "propellant/1/2026-01-01T00-00-00.000000000Z-000.csv",
			Counts:      models.Counts{Captured: 10, Matched: 8, Recorded: 3, Skipped: 5, Unmatched: 2, Resolved: 1}},
		{LinkID: 2, SupplierID: 2, Supplier: "Zimbi", Kind: models.KindPropellant, Mode: models.ModeFetch,
			Err: errors.New("unexpected status 503")},
		{LinkID: 3, SupplierID: 3, Kind: models.KindPropellant, Mode: models.ModeReplay, Cancelled: true,
			Counts: models.Counts{Captured: 4, Matched: 1, Recorded: 1}},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleReports())
	assert.Equal(t, 3, s.Runs)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Cancelled)
	assert.Equal(t, models.Counts{Captured: 14, Matched: 9, Recorded: 4, Skipped: 5, Unmatched: 2, Resolved: 1}, s.Counts)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestPrintRunReports(t *testing.T) {
	var out strings.Builder
	PrintRunReports(&out, sampleReports())
	text := out.String()

	assert.Contains(t, text, "PRICE RUN REPORT")
	assert.Contains(t, text, "Safari Outdoor (propellant, link 1, fetch)")
	assert.Contains(t, text, "FAILED   : unexpected status 503")
	assert.Contains(t, text, "supplier 3 (propellant, link 3, replay)")
	assert.Contains(t, text, "CANCELLED")
	assert.Contains(t, text, "Unmatched: 2 (resolved 1)")
	assert.Contains(t, text, "Runs     : 3 (1 failed, 1 cancelled)")
	assert.Contains(t, text, "Recorded : 4 of 9 matched")
}

func TestTruncateAndCenter(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "  ab  ", center("ab", 6))
	assert.Equal(t, "toolong", center("toolong", 3))
}
