package restore

import (
	"fmt"
	"math"
)

const (
	percentageLabelTemplateConstant = "%.1f"
	completePercentageConstant      = 100.0
)

// RunStats holds the counters owned by the progress accumulator.
type RunStats struct {
	TotalRecords   int
	ProcessedCount int
	MovedCount     int
	SkippedCount   int
	SimulatedCount int
	FailedCount    int
	Percentage     float64
}

// ProgressSnapshot describes progress at the moment a group starts or a record completes.
type ProgressSnapshot struct {
	Processed  int
	Total      int
	Percentage float64
	GroupIndex int
	GroupCount int
	GroupSize  int
}

// PercentageLabel renders the percentage with one decimal place.
func (snapshot ProgressSnapshot) PercentageLabel() string {
	return fmt.Sprintf(percentageLabelTemplateConstant, snapshot.Percentage)
}

// ProgressAccumulator tracks processed records and per-outcome counts.
type ProgressAccumulator struct {
	stats      RunStats
	groupIndex int
	groupCount int
	groupSize  int
}

// NewProgressAccumulator seeds the accumulator with the number of records to process.
func NewProgressAccumulator(totalRecords int, groupCount int) *ProgressAccumulator {
	return &ProgressAccumulator{
		stats:      RunStats{TotalRecords: totalRecords, Percentage: computePercentage(0, totalRecords)},
		groupCount: groupCount,
	}
}

// BeginGroup records the one-based index and size of the group about to be processed.
func (accumulator *ProgressAccumulator) BeginGroup(groupIndex int, groupSize int) ProgressSnapshot {
	accumulator.groupIndex = groupIndex
	accumulator.groupSize = groupSize
	return accumulator.Snapshot()
}

// Complete registers a terminal outcome for one record.
func (accumulator *ProgressAccumulator) Complete(outcome RecordOutcome) ProgressSnapshot {
	accumulator.stats.ProcessedCount++
	switch outcome {
	case RecordOutcomeMoved:
		accumulator.stats.MovedCount++
	case RecordOutcomeSkipped:
		accumulator.stats.SkippedCount++
	case RecordOutcomeSimulated:
		accumulator.stats.SimulatedCount++
	case RecordOutcomeFailed:
		accumulator.stats.FailedCount++
	}
	accumulator.stats.Percentage = computePercentage(accumulator.stats.ProcessedCount, accumulator.stats.TotalRecords)
	return accumulator.Snapshot()
}

// Snapshot reports the current progress.
func (accumulator *ProgressAccumulator) Snapshot() ProgressSnapshot {
	return ProgressSnapshot{
		Processed:  accumulator.stats.ProcessedCount,
		Total:      accumulator.stats.TotalRecords,
		Percentage: accumulator.stats.Percentage,
		GroupIndex: accumulator.groupIndex,
		GroupCount: accumulator.groupCount,
		GroupSize:  accumulator.groupSize,
	}
}

// Stats returns a copy of the accumulated counters.
func (accumulator *ProgressAccumulator) Stats() RunStats {
	return accumulator.stats
}

func computePercentage(processed int, total int) float64 {
	if total <= 0 {
		return completePercentageConstant
	}
	rawPercentage := float64(processed) / float64(total) * 100
	return math.Round(rawPercentage*10) / 10
}
