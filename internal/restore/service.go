package restore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	confirmationPromptTemplateConstant = "Would you like to move them back to their original folders?%s [y/N] "
	dryRunPromptSuffixConstant         = " (DRY RUN - no files will actually be moved)"
	runStartedMessageConstant          = "restore run started"
	auditEventsFetchedMessageConstant  = "move audit events retrieved"
	auditEventSkippedMessageConstant   = "audit event skipped"
	runDeclinedMessageConstant         = "restore run declined"
	recordProcessedMessageConstant     = "record processed"
	runInterruptedMessageConstant      = "restore run interrupted"
	runFinishedMessageConstant         = "restore run finished"
	logFieldRunIDConstant              = "run_id"
	logFieldScopeFolderIDConstant      = "scope_folder_id"
	logFieldMoveStartConstant          = "move_start"
	logFieldMoveEndConstant            = "move_end"
	logFieldActorIPAddressConstant     = "actor_ip_address"
	logFieldSimulateConstant           = "simulate"
	logFieldEventCountConstant         = "event_count"
	logFieldRecordCountConstant        = "record_count"
	logFieldGroupCountConstant         = "group_count"
	logFieldFileIDConstant             = "file_id"
	logFieldOriginFolderIDConstant     = "origin_folder_id"
	logFieldOutcomeConstant            = "outcome"
	logFieldDriftReasonConstant        = "drift_reason"
	logFieldPercentageConstant         = "percentage"
	logFieldMovedCountConstant         = "moved"
	logFieldSkippedCountConstant       = "skipped"
	logFieldSimulatedCountConstant     = "simulated"
	logFieldFailedCountConstant        = "failed"
	logFieldMalformedCountConstant     = "malformed"
)

// RunIdentifierGenerator mints identifiers for reconciliation runs.
type RunIdentifierGenerator func() string

// ServiceDependencies describes the collaborators required by Service.
type ServiceDependencies struct {
	Logger                 *zap.Logger
	AuditLogFetcher        AuditLogFetcher
	FileStateFetcher       FileStateFetcher
	MoveApplier            MoveApplier
	Prompter               ConfirmationPrompter
	Observer               ProgressObserver
	RunIdentifierGenerator RunIdentifierGenerator
}

// Service orchestrates a reconciliation run: fetch, parse, group, validate, move, accumulate.
type Service struct {
	logger                 *zap.Logger
	auditLogFetcher        AuditLogFetcher
	fileStateFetcher       FileStateFetcher
	moveApplier            MoveApplier
	prompter               ConfirmationPrompter
	observer               ProgressObserver
	runIdentifierGenerator RunIdentifierGenerator
}

// NewService constructs a Service, rejecting missing transport collaborators.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.AuditLogFetcher == nil {
		return nil, missingCollaboratorError(auditLogFetcherCollaboratorNameConstant)
	}
	if dependencies.FileStateFetcher == nil {
		return nil, missingCollaboratorError(fileStateFetcherCollaboratorNameConstant)
	}
	if dependencies.MoveApplier == nil {
		return nil, missingCollaboratorError(moveApplierCollaboratorNameConstant)
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	observer := dependencies.Observer
	if observer == nil {
		observer = noopProgressObserver{}
	}

	runIdentifierGenerator := dependencies.RunIdentifierGenerator
	if runIdentifierGenerator == nil {
		runIdentifierGenerator = uuid.NewString
	}

	return &Service{
		logger:                 logger,
		auditLogFetcher:        dependencies.AuditLogFetcher,
		fileStateFetcher:       dependencies.FileStateFetcher,
		moveApplier:            dependencies.MoveApplier,
		prompter:               dependencies.Prompter,
		observer:               observer,
		runIdentifierGenerator: runIdentifierGenerator,
	}, nil
}

// Plan fetches and parses the audit window without touching any file.
func (service *Service) Plan(executionContext context.Context, options RunOptions) (RunPlan, error) {
	if validationError := ValidateRunOptions(options); validationError != nil {
		return RunPlan{}, validationError
	}

	runID := service.runIdentifierGenerator()
	runLogger := service.logger.With(zap.String(logFieldRunIDConstant, runID))
	runLogger.Info(
		runStartedMessageConstant,
		zap.String(logFieldScopeFolderIDConstant, options.ScopeFolderID),
		zap.Time(logFieldMoveStartConstant, options.MoveStart),
		zap.Time(logFieldMoveEndConstant, options.MoveEnd),
		zap.String(logFieldActorIPAddressConstant, options.ActorIPAddress),
		zap.Bool(logFieldSimulateConstant, options.Simulate),
	)

	query := AuditQuery{
		ScopeFolderID:  options.ScopeFolderID,
		From:           options.MoveStart,
		To:             options.MoveEnd,
		ActorIPAddress: options.ActorIPAddress,
	}

	auditEvents, fetchError := service.auditLogFetcher.FetchMoveAudit(executionContext, query)
	if fetchError != nil {
		return RunPlan{}, FatalSetupError{Reason: auditFetchFailedReasonConstant, Cause: fetchError}
	}

	records, malformedEvents := ParseAuditEvents(auditEvents)
	for _, malformedEvent := range malformedEvents {
		runLogger.Warn(auditEventSkippedMessageConstant, zap.Error(malformedEvent))
	}

	groups := GroupByOriginFolder(records)
	runLogger.Info(
		auditEventsFetchedMessageConstant,
		zap.Int(logFieldEventCountConstant, len(auditEvents)),
		zap.Int(logFieldRecordCountConstant, len(records)),
		zap.Int(logFieldGroupCountConstant, len(groups)),
		zap.Int(logFieldMalformedCountConstant, len(malformedEvents)),
	)

	return RunPlan{
		RunID:          runID,
		ScopeFolderID:  options.ScopeFolderID,
		MoveStart:      options.MoveStart,
		MoveEnd:        options.MoveEnd,
		ActorIPAddress: options.ActorIPAddress,
		Simulate:       options.Simulate,
		TotalRecords:   countGroupedRecords(groups),
		Groups:         groups,
		Malformed:      malformedEvents,
	}, nil
}

// Run executes a full reconciliation run. Per-record failures are captured in the summary;
// only setup failures and context cancellation end the run early.
func (service *Service) Run(executionContext context.Context, options RunOptions) (RunSummary, error) {
	plan, planError := service.Plan(executionContext, options)
	if planError != nil {
		return RunSummary{}, planError
	}

	summary := RunSummary{
		RunID:          plan.RunID,
		ScopeFolderID:  plan.ScopeFolderID,
		SimulationMode: plan.Simulate,
		Stats:          RunStats{TotalRecords: plan.TotalRecords},
		Malformed:      plan.Malformed,
	}

	service.observer.RunPlanned(plan)

	if plan.TotalRecords > 0 && !options.AssumeYes {
		confirmed, confirmationError := service.confirm(plan)
		if confirmationError != nil {
			return summary, confirmationError
		}
		if !confirmed {
			summary.Declined = true
			service.logger.Info(runDeclinedMessageConstant, zap.String(logFieldRunIDConstant, plan.RunID))
			return summary, nil
		}
	}

	summary, processingError := service.process(executionContext, plan, summary)
	service.observer.RunFinished(summary)
	return summary, processingError
}

func (service *Service) process(executionContext context.Context, plan RunPlan, summary RunSummary) (RunSummary, error) {
	runLogger := service.logger.With(zap.String(logFieldRunIDConstant, plan.RunID))
	validator := NewPreflightValidator(service.fileStateFetcher, plan.ScopeFolderID)
	executor := NewMoveReversalExecutor(service.moveApplier)
	accumulator := NewProgressAccumulator(plan.TotalRecords, len(plan.Groups))

	results := make([]RecordResult, 0, plan.TotalRecords)
	for groupIndex, group := range plan.Groups {
		groupProgress := accumulator.BeginGroup(groupIndex+1, len(group.Records))
		service.observer.GroupStarted(group, groupProgress)

		for _, record := range group.Records {
			if contextError := executionContext.Err(); contextError != nil {
				runLogger.Warn(runInterruptedMessageConstant, zap.Error(contextError))
				summary.Stats = accumulator.Stats()
				summary.Results = results
				return summary, contextError
			}

			result := service.processRecord(executionContext, validator, executor, record, plan)
			recordProgress := accumulator.Complete(result.Outcome)
			results = append(results, result)

			runLogger.Info(
				recordProcessedMessageConstant,
				zap.String(logFieldFileIDConstant, record.FileID),
				zap.String(logFieldOriginFolderIDConstant, record.OriginFolderID),
				zap.String(logFieldOutcomeConstant, string(result.Outcome)),
				zap.String(logFieldDriftReasonConstant, string(result.DriftReason)),
				zap.String(logFieldPercentageConstant, recordProgress.PercentageLabel()),
				zap.Error(result.Error),
			)

			service.observer.RecordCompleted(result, recordProgress)
		}
	}

	summary.Stats = accumulator.Stats()
	summary.Results = results

	runLogger.Info(
		runFinishedMessageConstant,
		zap.Int(logFieldMovedCountConstant, summary.Stats.MovedCount),
		zap.Int(logFieldSkippedCountConstant, summary.Stats.SkippedCount),
		zap.Int(logFieldSimulatedCountConstant, summary.Stats.SimulatedCount),
		zap.Int(logFieldFailedCountConstant, summary.Stats.FailedCount),
		zap.Int(logFieldMalformedCountConstant, len(summary.Malformed)),
	)

	return summary, nil
}

func (service *Service) processRecord(executionContext context.Context, validator *PreflightValidator, executor *MoveReversalExecutor, record RestoreRecord, plan RunPlan) RecordResult {
	result := RecordResult{Record: record, ExpectedParentID: plan.ScopeFolderID}

	validation, validationError := validator.Validate(executionContext, record)
	if validationError != nil {
		result.Outcome = RecordOutcomeFailed
		result.Error = validationError
		return result
	}

	result.ActualParentIDs = append([]string{}, validation.Snapshot.ParentIDs...)

	if !validation.Valid {
		result.Outcome = RecordOutcomeSkipped
		result.DriftReason = validation.Drift.Reason
		result.Error = *validation.Drift
		return result
	}

	outcome, executionError := executor.Execute(executionContext, record, validation.CurrentParentID, plan.Simulate)
	result.Outcome = outcome
	result.Error = executionError
	return result
}

func (service *Service) confirm(plan RunPlan) (bool, error) {
	if service.prompter == nil {
		return false, FatalSetupError{Reason: confirmationPrompterMissingReasonConstant}
	}

	dryRunSuffix := ""
	if plan.Simulate {
		dryRunSuffix = dryRunPromptSuffixConstant
	}

	confirmed, promptError := service.prompter.Confirm(fmt.Sprintf(confirmationPromptTemplateConstant, dryRunSuffix))
	if promptError != nil {
		return false, FatalSetupError{Reason: confirmationPromptFailedReasonConstant, Cause: promptError}
	}
	return confirmed, nil
}

// ValidateRunOptions rejects a missing scope folder and a missing or inverted move window with a FatalSetupError.
func ValidateRunOptions(options RunOptions) error {
	if len(strings.TrimSpace(options.ScopeFolderID)) == 0 {
		return FatalSetupError{Reason: scopeFolderMissingReasonConstant}
	}
	if options.MoveStart.IsZero() || options.MoveEnd.IsZero() {
		return FatalSetupError{Reason: moveWindowMissingReasonConstant}
	}
	if !options.MoveStart.Before(options.MoveEnd) {
		return FatalSetupError{Reason: moveWindowOrderReasonConstant}
	}
	return nil
}

func missingCollaboratorError(collaboratorName string) error {
	return FatalSetupError{Reason: fmt.Sprintf(collaboratorMissingReasonTemplateConstant, collaboratorName)}
}
