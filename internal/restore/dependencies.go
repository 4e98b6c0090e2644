package restore

import "context"

// AuditLogFetcher retrieves every "move into scope" audit event in a time window, paginating transparently.
type AuditLogFetcher interface {
	FetchMoveAudit(executionContext context.Context, query AuditQuery) ([]AuditEvent, error)
}

// FileStateFetcher returns the live parent set of a file.
// Implementations return an error matching ErrFileNotFound when the file no longer exists.
type FileStateFetcher interface {
	FetchFileState(executionContext context.Context, fileID string) (FileSnapshot, error)
}

// MoveApplier performs one atomic reparenting of a file.
type MoveApplier interface {
	ApplyMove(executionContext context.Context, fileID string, addParentID string, removeParentID string) error
}

// ConfirmationPrompter prompts users for confirmation before mutations begin.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// ProgressObserver receives structured progress notifications; it never influences control flow.
type ProgressObserver interface {
	RunPlanned(plan RunPlan)
	GroupStarted(group FolderGroup, progress ProgressSnapshot)
	RecordCompleted(result RecordResult, progress ProgressSnapshot)
	RunFinished(summary RunSummary)
}

type noopProgressObserver struct{}

func (noopProgressObserver) RunPlanned(RunPlan)                             {}
func (noopProgressObserver) GroupStarted(FolderGroup, ProgressSnapshot)     {}
func (noopProgressObserver) RecordCompleted(RecordResult, ProgressSnapshot) {}
func (noopProgressObserver) RunFinished(RunSummary)                         {}
