package restore

import "context"

// MoveReversalExecutor restores a validated file to its origin folder.
type MoveReversalExecutor struct {
	moveApplier MoveApplier
}

// NewMoveReversalExecutor constructs an executor around the provided move applier.
func NewMoveReversalExecutor(moveApplier MoveApplier) *MoveReversalExecutor {
	return &MoveReversalExecutor{moveApplier: moveApplier}
}

// Execute issues a single add-origin/remove-current reparenting call.
// In simulation mode nothing is sent and the outcome is RecordOutcomeSimulated.
func (executor *MoveReversalExecutor) Execute(executionContext context.Context, record RestoreRecord, currentParentID string, simulate bool) (RecordOutcome, error) {
	if simulate {
		return RecordOutcomeSimulated, nil
	}

	if moveError := executor.moveApplier.ApplyMove(executionContext, record.FileID, record.OriginFolderID, currentParentID); moveError != nil {
		return RecordOutcomeFailed, MoveFailedError{FileID: record.FileID, Cause: moveError}
	}

	return RecordOutcomeMoved, nil
}
