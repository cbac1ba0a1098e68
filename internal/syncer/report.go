package syncer

import (
	"fmt"
	"io"
	"time"
)

// BuildReport is the aggregate outcome of a full build. Counters
// accumulate in the report itself; there is no ambient stats state.
type BuildReport struct {
	RunID              string        `json:"run_id"`
	RecordsListed      int           `json:"records_listed"`
	RecordsProcessed   int           `json:"records_processed"`
	RecordsWithSerials int           `json:"records_with_serials"`
	ExactSerials       int           `json:"exact_serials"`
	SerialRanges       int           `json:"serial_ranges"`
	APICalls           int           `json:"api_calls"`
	Errors             int           `json:"errors"`
	Duration           time.Duration `json:"duration_ns"`
}

// Render writes the human-readable build summary.
func (r *BuildReport) Render(w io.Writer) {
	fmt.Fprintln(w, "======================================================================")
	fmt.Fprintln(w, "Build Complete")
	fmt.Fprintln(w, "======================================================================")
	fmt.Fprintf(w, "Records Listed:        %d\n", r.RecordsListed)
	fmt.Fprintf(w, "Records Processed:     %d\n", r.RecordsProcessed)
	fmt.Fprintf(w, "Records with Serials:  %d\n", r.RecordsWithSerials)
	fmt.Fprintf(w, "Exact Serials:         %d\n", r.ExactSerials)
	fmt.Fprintf(w, "Serial Ranges:         %d\n", r.SerialRanges)
	fmt.Fprintf(w, "Total Records Written: %d\n", r.ExactSerials+r.SerialRanges)
	fmt.Fprintf(w, "API Calls:             %d\n", r.APICalls)
	fmt.Fprintf(w, "Errors:                %d\n", r.Errors)
	fmt.Fprintf(w, "Build Time:            %s\n", r.Duration.Round(time.Second))
	fmt.Fprintln(w, "======================================================================")
}

// UpdateReport is the aggregate outcome of an incremental update. A
// dry-run produces the same classification counters as a live run.
type UpdateReport struct {
	RunID          string        `json:"run_id"`
	DryRun         bool          `json:"dry_run"`
	RecordsChecked int           `json:"records_checked"`
	RecordsUpdated int           `json:"records_updated"`
	ExactsAdded    int           `json:"exacts_added"`
	ExactsUpdated  int           `json:"exacts_updated"`
	RangesAdded    int           `json:"ranges_added"`
	RangesUpdated  int           `json:"ranges_updated"`
	Stale          int           `json:"stale"`
	Removed        int           `json:"removed"`
	APICalls       int           `json:"api_calls"`
	Errors         int           `json:"errors"`
	Duration       time.Duration `json:"duration_ns"`
}

// Render writes the human-readable update summary.
func (r *UpdateReport) Render(w io.Writer) {
	fmt.Fprintln(w, "======================================================================")
	if r.DryRun {
		fmt.Fprintln(w, "Update Summary (dry run - no changes made)")
	} else {
		fmt.Fprintln(w, "Update Summary")
	}
	fmt.Fprintln(w, "======================================================================")
	fmt.Fprintf(w, "Records Checked:       %d\n", r.RecordsChecked)
	fmt.Fprintf(w, "Records Updated:       %d\n", r.RecordsUpdated)
	fmt.Fprintf(w, "Exact Serials Added:   %d\n", r.ExactsAdded)
	fmt.Fprintf(w, "Exact Serials Updated: %d\n", r.ExactsUpdated)
	fmt.Fprintf(w, "Serial Ranges Added:   %d\n", r.RangesAdded)
	fmt.Fprintf(w, "Serial Ranges Updated: %d\n", r.RangesUpdated)
	fmt.Fprintf(w, "Stale (skipped):       %d\n", r.Stale)
	fmt.Fprintf(w, "Tombstoned:            %d\n", r.Removed)
	fmt.Fprintf(w, "API Calls:             %d\n", r.APICalls)
	fmt.Fprintf(w, "Errors:                %d\n", r.Errors)
	fmt.Fprintln(w, "======================================================================")
}
