package services

import (
	"fmt"
	"io"
	"strings"

	"reloadradar/models"
)

const reportWidth = 55

// PrintRunReports formats the outcome of a batch of runs for the terminal
func PrintRunReports(w io.Writer, reports []*models.RunReport) {
	border := strings.Repeat("═", reportWidth)
	thin := strings.Repeat("─", reportWidth)

	fmt.Fprintf(w, "\n╔%s╗\n", border)
	fmt.Fprintf(w, "║%s║\n", center("PRICE RUN REPORT", reportWidth))
	fmt.Fprintf(w, "╚%s╝\n", border)

	for _, r := range reports {
		name := r.Supplier
		if name == "" {
			name = fmt.Sprintf("supplier %d", r.SupplierID)
		}
		fmt.Fprintf(w, "\n %s (%s, link %d, %s)\n%s\n", truncate(name, 30), r.Kind, r.LinkID, r.Mode, thin)

		if r.Failed() {
			fmt.Fprintf(w, "  FAILED   : %v\n", r.Err)
			continue
		}
		fmt.Fprintf(w, "  Captured : %d\n", r.Captured)
		fmt.Fprintf(w, "  Matched  : %d\n", r.Matched)
		fmt.Fprintf(w, "  Recorded : %d\n", r.Recorded)
		fmt.Fprintf(w, "  Unchanged: %d\n", r.Skipped)
		fmt.Fprintf(w, "  Unmatched: %d (resolved %d)\n", r.Unmatched, r.Resolved)
		fmt.Fprintf(w, "  Errors   : %d\n", r.Errors)
		if r.Cancelled {
			fmt.Fprintf(w, "  CANCELLED before all entries were processed\n")
		}
		if r.SnapshotKey != "" {
			fmt.Fprintf(w, "  Snapshot : %s\n", r.SnapshotKey)
		}
	}

	s := Summarize(reports)
	fmt.Fprintf(w, "\n TOTAL\n%s\n", thin)
	fmt.Fprintf(w, "  Runs     : %d (%d failed, %d cancelled)\n", s.Runs, s.Failed, s.Cancelled)
	fmt.Fprintf(w, "  Recorded : %d of %d matched\n", s.Recorded, s.Matched)
	fmt.Fprintf(w, "  Unmatched: %d\n", s.Unmatched)
	fmt.Fprintf(w, "\n%s\n\n", border)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
