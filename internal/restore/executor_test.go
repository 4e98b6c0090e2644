package restore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/driverestore/internal/restore"
)

func TestMoveReversalExecutorSimulationSendsNothing(testInstance *testing.T) {
	drive := newInMemoryDrive(map[string][]string{"F1": {testScopeFolderIDConstant}})
	executor := restore.NewMoveReversalExecutor(drive)

	outcome, executionError := executor.Execute(context.Background(), restore.RestoreRecord{FileID: "F1", OriginFolderID: "A"}, testScopeFolderIDConstant, true)

	require.NoError(testInstance, executionError)
	require.Equal(testInstance, restore.RecordOutcomeSimulated, outcome)
	require.Empty(testInstance, drive.moveCalls)
	require.Equal(testInstance, []string{testScopeFolderIDConstant}, drive.parents["F1"])
}

func TestMoveReversalExecutorIssuesSingleReparent(testInstance *testing.T) {
	drive := newInMemoryDrive(map[string][]string{"F1": {testScopeFolderIDConstant}})
	executor := restore.NewMoveReversalExecutor(drive)

	outcome, executionError := executor.Execute(context.Background(), restore.RestoreRecord{FileID: "F1", OriginFolderID: "A"}, testScopeFolderIDConstant, false)

	require.NoError(testInstance, executionError)
	require.Equal(testInstance, restore.RecordOutcomeMoved, outcome)
	require.Equal(testInstance, []moveCall{{fileID: "F1", addParentID: "A", removeParentID: testScopeFolderIDConstant}}, drive.moveCalls)
	require.Equal(testInstance, []string{"A"}, drive.parents["F1"])
}

func TestMoveReversalExecutorWrapsFailures(testInstance *testing.T) {
	transportError := errors.New("quota exceeded")
	drive := newInMemoryDrive(map[string][]string{"F1": {testScopeFolderIDConstant}})
	drive.moveErrors["F1"] = transportError
	executor := restore.NewMoveReversalExecutor(drive)

	outcome, executionError := executor.Execute(context.Background(), restore.RestoreRecord{FileID: "F1", OriginFolderID: "A"}, testScopeFolderIDConstant, false)

	require.Equal(testInstance, restore.RecordOutcomeFailed, outcome)
	require.ErrorIs(testInstance, executionError, restore.ErrMoveFailed)
	require.ErrorIs(testInstance, executionError, transportError)
	require.Len(testInstance, drive.moveCalls, 1)
	require.Equal(testInstance, []string{testScopeFolderIDConstant}, drive.parents["F1"])
}
