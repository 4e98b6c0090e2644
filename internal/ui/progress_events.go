package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/driverestore/internal/restore"
	"github.com/temirov/driverestore/internal/utils"
)

const (
	runPlannedMessageTemplateConstant      = "Found %d files that were moved to folder %s between %s and %s%s."
	actorFilterSuffixTemplateConstant      = " by %s"
	malformedEventsMessageTemplateConstant = "Ignored %d audit events that could not be parsed."
	groupStartedMessageTemplateConstant    = "Folder '%s' (%s) used to contain %d orphaned files. (%d/%d)"
	recordMessageTemplateConstant          = "... Moving %s (%s) to folderId %s %s"
	completedStatusTemplateConstant        = "[Completed %s%%]"
	simulatedStatusTemplateConstant        = "[DRY RUN - NOT MOVED] [Completed %s%%]"
	skippedStatusTemplateConstant          = "[SKIPPED - FILE NO LONGER IN ROOT! (%s) %s%%]"
	failedStatusTemplateConstant           = "[FAILED - %s %s%%]"
	summaryMessageTemplateConstant         = "Restore finished: %d moved, %d simulated, %d skipped, %d failed of %d files."
	simulationSummarySuffixConstant        = " (DRY RUN)"
	timestampedLineTemplateConstant        = "%s: %s\n"
	timestampLayoutConstant                = "15:04:05"
	windowTimeLayoutConstant               = "2006-01-02 15:04:05"
	unknownFailureMessageConstant          = "unknown error"
	unknownDriftReasonConstant             = "unknown drift"
	emptyStringConstant                    = ""
)

// ProgressEventFormatter builds human-readable messages for restore progress events.
type ProgressEventFormatter struct{}

// BuildRunPlannedMessage announces how many files the audit window yielded.
func (formatter ProgressEventFormatter) BuildRunPlannedMessage(plan restore.RunPlan) string {
	actorFilterSuffix := emptyStringConstant
	if trimmedActorIPAddress := strings.TrimSpace(plan.ActorIPAddress); len(trimmedActorIPAddress) > 0 {
		actorFilterSuffix = fmt.Sprintf(actorFilterSuffixTemplateConstant, trimmedActorIPAddress)
	}
	return fmt.Sprintf(
		runPlannedMessageTemplateConstant,
		plan.TotalRecords,
		plan.ScopeFolderID,
		plan.MoveStart.Format(windowTimeLayoutConstant),
		plan.MoveEnd.Format(windowTimeLayoutConstant),
		actorFilterSuffix,
	)
}

// BuildMalformedEventsMessage reports how many audit events were ignored.
func (formatter ProgressEventFormatter) BuildMalformedEventsMessage(plan restore.RunPlan) string {
	return fmt.Sprintf(malformedEventsMessageTemplateConstant, len(plan.Malformed))
}

// BuildGroupStartedMessage describes the origin folder about to be restored.
func (formatter ProgressEventFormatter) BuildGroupStartedMessage(group restore.FolderGroup, progress restore.ProgressSnapshot) string {
	return fmt.Sprintf(
		groupStartedMessageTemplateConstant,
		group.OriginFolderName,
		group.OriginFolderID,
		len(group.Records),
		progress.GroupIndex,
		progress.GroupCount,
	)
}

// BuildRecordMessage describes the outcome of one record with the running percentage.
func (formatter ProgressEventFormatter) BuildRecordMessage(result restore.RecordResult, progress restore.ProgressSnapshot) string {
	return fmt.Sprintf(
		recordMessageTemplateConstant,
		result.Record.FileName,
		result.Record.FileID,
		result.Record.OriginFolderID,
		formatter.formatStatus(result, progress),
	)
}

// BuildSummaryMessage totals the outcomes of a finished run.
func (formatter ProgressEventFormatter) BuildSummaryMessage(summary restore.RunSummary) string {
	message := fmt.Sprintf(
		summaryMessageTemplateConstant,
		summary.Stats.MovedCount,
		summary.Stats.SimulatedCount,
		summary.Stats.SkippedCount,
		summary.Stats.FailedCount,
		summary.Stats.TotalRecords,
	)
	if summary.SimulationMode {
		return message + simulationSummarySuffixConstant
	}
	return message
}

func (formatter ProgressEventFormatter) formatStatus(result restore.RecordResult, progress restore.ProgressSnapshot) string {
	percentageLabel := progress.PercentageLabel()
	switch result.Outcome {
	case restore.RecordOutcomeSimulated:
		return fmt.Sprintf(simulatedStatusTemplateConstant, percentageLabel)
	case restore.RecordOutcomeSkipped:
		driftReason := string(result.DriftReason)
		if len(driftReason) == 0 {
			driftReason = unknownDriftReasonConstant
		}
		return fmt.Sprintf(skippedStatusTemplateConstant, driftReason, percentageLabel)
	case restore.RecordOutcomeFailed:
		failureMessage := unknownFailureMessageConstant
		if result.Error != nil {
			failureMessage = result.Error.Error()
		}
		return fmt.Sprintf(failedStatusTemplateConstant, failureMessage, percentageLabel)
	default:
		return fmt.Sprintf(completedStatusTemplateConstant, percentageLabel)
	}
}

// ConsoleProgressLogger renders restore progress using a zap logger configured for human-readable output.
type ConsoleProgressLogger struct {
	logger    *zap.Logger
	formatter ProgressEventFormatter
}

// NewConsoleProgressLogger constructs a progress observer backed by the provided zap logger.
func NewConsoleProgressLogger(logger *zap.Logger) *ConsoleProgressLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleProgressLogger{logger: logger, formatter: ProgressEventFormatter{}}
}

// RunPlanned implements restore.ProgressObserver.
func (progressLogger *ConsoleProgressLogger) RunPlanned(plan restore.RunPlan) {
	if progressLogger == nil {
		return
	}
	progressLogger.logger.Info(progressLogger.formatter.BuildRunPlannedMessage(plan))
	if len(plan.Malformed) > 0 {
		progressLogger.logger.Warn(progressLogger.formatter.BuildMalformedEventsMessage(plan))
	}
}

// GroupStarted implements restore.ProgressObserver.
func (progressLogger *ConsoleProgressLogger) GroupStarted(group restore.FolderGroup, progress restore.ProgressSnapshot) {
	if progressLogger == nil {
		return
	}
	progressLogger.logger.Info(progressLogger.formatter.BuildGroupStartedMessage(group, progress))
}

// RecordCompleted implements restore.ProgressObserver, escalating the level for skipped and failed records.
func (progressLogger *ConsoleProgressLogger) RecordCompleted(result restore.RecordResult, progress restore.ProgressSnapshot) {
	if progressLogger == nil {
		return
	}
	message := progressLogger.formatter.BuildRecordMessage(result, progress)
	switch result.Outcome {
	case restore.RecordOutcomeFailed:
		progressLogger.logger.Error(message)
	case restore.RecordOutcomeSkipped:
		progressLogger.logger.Warn(message)
	default:
		progressLogger.logger.Info(message)
	}
}

// RunFinished implements restore.ProgressObserver.
func (progressLogger *ConsoleProgressLogger) RunFinished(summary restore.RunSummary) {
	if progressLogger == nil {
		return
	}
	progressLogger.logger.Info(progressLogger.formatter.BuildSummaryMessage(summary))
}

// Clock supplies the current time for narration timestamps.
type Clock func() time.Time

// WriterProgressReporter narrates restore progress as timestamped lines on a writer.
type WriterProgressReporter struct {
	writer    io.Writer
	clock     Clock
	formatter ProgressEventFormatter
}

// NewWriterProgressReporter constructs a reporter that flushes every line to the provided writer.
func NewWriterProgressReporter(writer io.Writer, clock Clock) *WriterProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	if clock == nil {
		clock = time.Now
	}
	return &WriterProgressReporter{writer: utils.NewFlushingWriter(writer), clock: clock, formatter: ProgressEventFormatter{}}
}

// RunPlanned implements restore.ProgressObserver.
func (reporter *WriterProgressReporter) RunPlanned(plan restore.RunPlan) {
	reporter.writeLine(reporter.formatter.BuildRunPlannedMessage(plan))
	if len(plan.Malformed) > 0 {
		reporter.writeLine(reporter.formatter.BuildMalformedEventsMessage(plan))
	}
}

// GroupStarted implements restore.ProgressObserver.
func (reporter *WriterProgressReporter) GroupStarted(group restore.FolderGroup, progress restore.ProgressSnapshot) {
	reporter.writeLine(reporter.formatter.BuildGroupStartedMessage(group, progress))
}

// RecordCompleted implements restore.ProgressObserver.
func (reporter *WriterProgressReporter) RecordCompleted(result restore.RecordResult, progress restore.ProgressSnapshot) {
	reporter.writeLine(reporter.formatter.BuildRecordMessage(result, progress))
}

// RunFinished implements restore.ProgressObserver.
func (reporter *WriterProgressReporter) RunFinished(summary restore.RunSummary) {
	reporter.writeLine(reporter.formatter.BuildSummaryMessage(summary))
}

func (reporter *WriterProgressReporter) writeLine(message string) {
	if reporter == nil {
		return
	}
	_, _ = fmt.Fprintf(reporter.writer, timestampedLineTemplateConstant, reporter.clock().Format(timestampLayoutConstant), message)
}
