package restore

import (
	"errors"
	"fmt"
	"strings"
)

const (
	malformedAuditEventMessageConstant        = "malformed audit event"
	stateDriftedMessageConstant               = "state drifted"
	moveFailedMessageConstant                 = "move failed"
	fatalSetupMessageConstant                 = "fatal setup error"
	malformedAuditEventTemplateConstant       = "malformed audit event %s: parameter %s %s"
	stateDriftedTemplateConstant              = "state drifted for file %s (%s): expected parents [%s], found [%s]"
	moveFailedTemplateConstant                = "move failed for file %s: %v"
	fatalSetupTemplateConstant                = "fatal setup error: %s"
	fatalSetupWithCauseTemplateConstant       = "fatal setup error: %s: %v"
	unknownActivityIdentifierConstant         = "<unknown>"
	parentIdentifierSeparatorConstant         = ", "
	parameterMissingReasonConstant            = "is missing"
	parameterDuplicatedReasonConstant         = "appears more than once"
	parameterEmptyReasonConstant              = "has no value"
	parameterMultipleValuesReasonConstant     = "has more than one value"
	parameterBlankReasonConstant              = "is blank"
	eventMissingReasonConstant                = "carries no event"
	eventParameterPlaceholderConstant         = "<event>"
	scopeFolderMissingReasonConstant          = "drive id (scope folder) must be provided"
	moveWindowMissingReasonConstant           = "move start and move end must be provided"
	moveWindowOrderReasonConstant             = "move start must be earlier than move end"
	auditFetchFailedReasonConstant            = "unable to retrieve move audit events"
	collaboratorMissingReasonTemplateConstant = "%s not configured"
	auditLogFetcherCollaboratorNameConstant   = "audit log fetcher"
	fileStateFetcherCollaboratorNameConstant  = "file state fetcher"
	moveApplierCollaboratorNameConstant       = "move applier"
	confirmationPromptFailedReasonConstant    = "unable to read confirmation"
	confirmationPrompterMissingReasonConstant = "confirmation prompter not configured; use --yes to run unattended"
)

var (
	// ErrMalformedAuditEvent matches every MalformedAuditEventError.
	ErrMalformedAuditEvent = errors.New(malformedAuditEventMessageConstant)
	// ErrStateDrifted matches every StateDriftedError.
	ErrStateDrifted = errors.New(stateDriftedMessageConstant)
	// ErrMoveFailed matches every MoveFailedError.
	ErrMoveFailed = errors.New(moveFailedMessageConstant)
	// ErrFatalSetup matches every FatalSetupError.
	ErrFatalSetup = errors.New(fatalSetupMessageConstant)
	// ErrFileNotFound is returned by FileStateFetcher implementations when the file no longer exists.
	ErrFileNotFound = errors.New("file not found")
)

// MalformedAuditEventError reports an audit event that cannot be converted into a RestoreRecord.
type MalformedAuditEventError struct {
	ActivityID string
	Parameter  string
	Reason     string
}

// Error describes the malformed event.
func (malformedError MalformedAuditEventError) Error() string {
	activityIdentifier := malformedError.ActivityID
	if len(strings.TrimSpace(activityIdentifier)) == 0 {
		activityIdentifier = unknownActivityIdentifierConstant
	}
	return fmt.Sprintf(malformedAuditEventTemplateConstant, activityIdentifier, malformedError.Parameter, malformedError.Reason)
}

// Is matches ErrMalformedAuditEvent.
func (malformedError MalformedAuditEventError) Is(target error) bool {
	return target == ErrMalformedAuditEvent
}

// StateDriftedError reports a live file state that no longer matches the incident destination.
type StateDriftedError struct {
	FileID           string
	Reason           DriftReason
	ExpectedParentID string
	ActualParentIDs  []string
}

// Error describes the drift with expected and actual parents.
func (driftError StateDriftedError) Error() string {
	return fmt.Sprintf(
		stateDriftedTemplateConstant,
		driftError.FileID,
		driftError.Reason,
		driftError.ExpectedParentID,
		strings.Join(driftError.ActualParentIDs, parentIdentifierSeparatorConstant),
	)
}

// Is matches ErrStateDrifted.
func (driftError StateDriftedError) Is(target error) bool {
	return target == ErrStateDrifted
}

// MoveFailedError wraps a transport failure raised while reparenting a file.
type MoveFailedError struct {
	FileID string
	Cause  error
}

// Error describes the failed move.
func (moveError MoveFailedError) Error() string {
	return fmt.Sprintf(moveFailedTemplateConstant, moveError.FileID, moveError.Cause)
}

// Is matches ErrMoveFailed.
func (moveError MoveFailedError) Is(target error) bool {
	return target == ErrMoveFailed
}

// Unwrap exposes the transport error.
func (moveError MoveFailedError) Unwrap() error {
	return moveError.Cause
}

// FatalSetupError aborts a run before any mutation is attempted.
type FatalSetupError struct {
	Reason string
	Cause  error
}

// Error describes the setup failure.
func (setupError FatalSetupError) Error() string {
	if setupError.Cause == nil {
		return fmt.Sprintf(fatalSetupTemplateConstant, setupError.Reason)
	}
	return fmt.Sprintf(fatalSetupWithCauseTemplateConstant, setupError.Reason, setupError.Cause)
}

// Is matches ErrFatalSetup.
func (setupError FatalSetupError) Is(target error) bool {
	return target == ErrFatalSetup
}

// Unwrap exposes the underlying cause.
func (setupError FatalSetupError) Unwrap() error {
	return setupError.Cause
}
