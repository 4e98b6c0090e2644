package restore

import (
	"context"
	"errors"
	"fmt"
)

const (
	fileStateFetchErrorTemplateConstant = "unable to fetch current state of file %s: %w"
)

// ValidationResult classifies a record against its live state.
type ValidationResult struct {
	Valid           bool
	CurrentParentID string
	Snapshot        FileSnapshot
	Drift           *StateDriftedError
}

// PreflightValidator verifies a file still sits exactly where the incident left it.
type PreflightValidator struct {
	fileStateFetcher FileStateFetcher
	scopeFolderID    string
}

// NewPreflightValidator constructs a validator for the incident destination folder.
func NewPreflightValidator(fileStateFetcher FileStateFetcher, scopeFolderID string) *PreflightValidator {
	return &PreflightValidator{fileStateFetcher: fileStateFetcher, scopeFolderID: scopeFolderID}
}

// Validate fetches fresh file state and decides whether the reversal may proceed.
// A drifted state is reported through the result; only transport failures surface as errors.
func (validator *PreflightValidator) Validate(executionContext context.Context, record RestoreRecord) (ValidationResult, error) {
	snapshot, fetchError := validator.fileStateFetcher.FetchFileState(executionContext, record.FileID)
	if fetchError != nil {
		if errors.Is(fetchError, ErrFileNotFound) {
			return validator.drifted(record, FileSnapshot{FileID: record.FileID}, DriftReasonNotFound), nil
		}
		return ValidationResult{}, fmt.Errorf(fileStateFetchErrorTemplateConstant, record.FileID, fetchError)
	}

	return validator.classify(record, snapshot), nil
}

func (validator *PreflightValidator) classify(record RestoreRecord, snapshot FileSnapshot) ValidationResult {
	switch {
	case snapshot.Trashed:
		return validator.drifted(record, snapshot, DriftReasonTrashed)
	case len(snapshot.ParentIDs) == 0:
		return validator.drifted(record, snapshot, DriftReasonNoParents)
	case len(snapshot.ParentIDs) > 1:
		return validator.drifted(record, snapshot, DriftReasonMultipleParents)
	case snapshot.ParentIDs[0] != validator.scopeFolderID:
		return validator.drifted(record, snapshot, DriftReasonUnexpectedParent)
	}

	return ValidationResult{
		Valid:           true,
		CurrentParentID: snapshot.ParentIDs[0],
		Snapshot:        snapshot,
	}
}

func (validator *PreflightValidator) drifted(record RestoreRecord, snapshot FileSnapshot, reason DriftReason) ValidationResult {
	return ValidationResult{
		Snapshot: snapshot,
		Drift: &StateDriftedError{
			FileID:           record.FileID,
			Reason:           reason,
			ExpectedParentID: validator.scopeFolderID,
			ActualParentIDs:  append([]string{}, snapshot.ParentIDs...),
		},
	}
}
