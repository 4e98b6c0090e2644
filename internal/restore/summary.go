package restore

import "fmt"

const (
	failedRecordsTemplateConstant = "%d of %d files could not be restored"
)

// RunSummary enumerates what a reconciliation run did to every record.
type RunSummary struct {
	RunID          string
	ScopeFolderID  string
	SimulationMode bool
	Declined       bool
	Stats          RunStats
	Results        []RecordResult
	Malformed      []MalformedAuditEventError
}

// Moved lists records that were restored to their origin folder.
func (summary RunSummary) Moved() []RecordResult {
	return summary.filter(RecordOutcomeMoved)
}

// Skipped lists records whose live state drifted from the incident destination.
func (summary RunSummary) Skipped() []RecordResult {
	return summary.filter(RecordOutcomeSkipped)
}

// Simulated lists records that would have been moved during a dry run.
func (summary RunSummary) Simulated() []RecordResult {
	return summary.filter(RecordOutcomeSimulated)
}

// Failed lists records whose validation fetch or move call failed.
func (summary RunSummary) Failed() []RecordResult {
	return summary.filter(RecordOutcomeFailed)
}

// FailureError returns a non-nil error when at least one record failed.
func (summary RunSummary) FailureError() error {
	if summary.Stats.FailedCount == 0 {
		return nil
	}
	return fmt.Errorf(failedRecordsTemplateConstant, summary.Stats.FailedCount, summary.Stats.TotalRecords)
}

func (summary RunSummary) filter(outcome RecordOutcome) []RecordResult {
	var filtered []RecordResult
	for _, result := range summary.Results {
		if result.Outcome == outcome {
			filtered = append(filtered, result)
		}
	}
	return filtered
}
