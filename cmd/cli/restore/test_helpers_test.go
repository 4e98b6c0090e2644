package restore_test

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	restorecmd "github.com/temirov/driverestore/cmd/cli/restore"
	"github.com/temirov/driverestore/internal/restore"
)

const (
	testScopeFolderIDConstant = "root-folder"
	testRunIDConstant         = "run-fixed"
)

type stubDrive struct {
	events      []restore.AuditEvent
	parents     map[string][]string
	moveErrors  map[string]error
	queries     []restore.AuditQuery
	fetchedIDs  []string
	movedFileID []string
}

func newStubDrive(events []restore.AuditEvent, parents map[string][]string) *stubDrive {
	return &stubDrive{events: events, parents: parents, moveErrors: map[string]error{}}
}

func (drive *stubDrive) FetchMoveAudit(executionContext context.Context, query restore.AuditQuery) ([]restore.AuditEvent, error) {
	drive.queries = append(drive.queries, query)
	return drive.events, nil
}

func (drive *stubDrive) FetchFileState(executionContext context.Context, fileID string) (restore.FileSnapshot, error) {
	drive.fetchedIDs = append(drive.fetchedIDs, fileID)
	parents, exists := drive.parents[fileID]
	if !exists {
		return restore.FileSnapshot{}, fmt.Errorf("%w: %s", restore.ErrFileNotFound, fileID)
	}
	return restore.FileSnapshot{FileID: fileID, ParentIDs: append([]string{}, parents...)}, nil
}

func (drive *stubDrive) ApplyMove(executionContext context.Context, fileID string, addParentID string, removeParentID string) error {
	if moveError, exists := drive.moveErrors[fileID]; exists {
		return moveError
	}
	if !slices.Contains(drive.parents[fileID], removeParentID) {
		return fmt.Errorf("file %s is not in %s", fileID, removeParentID)
	}
	drive.parents[fileID] = []string{addParentID}
	drive.movedFileID = append(drive.movedFileID, fileID)
	return nil
}

func (drive *stubDrive) resolver() restorecmd.CollaboratorsResolver {
	return func(context.Context, *cobra.Command, restorecmd.CommandConfiguration, *zap.Logger) (restorecmd.Collaborators, error) {
		return restorecmd.Collaborators{AuditLogFetcher: drive, FileStateFetcher: drive, MoveApplier: drive}, nil
	}
}

type stubPrompter struct {
	confirmed bool
	prompts   []string
}

func (prompter *stubPrompter) Confirm(prompt string) (bool, error) {
	prompter.prompts = append(prompter.prompts, prompt)
	return prompter.confirmed, nil
}

func moveEvent(activityID string, fileID string, fileName string, originID string, originName string) restore.AuditEvent {
	return restore.AuditEvent{
		ActivityID: activityID,
		EventName:  "move",
		Parameters: []restore.AuditParameter{
			{Name: "doc_id", Value: fileID},
			{Name: "doc_title", Value: fileName},
			{Name: "source_folder_id", MultiValue: []string{originID}},
			{Name: "source_folder_title", MultiValue: []string{originName}},
		},
	}
}

func incidentDrive() *stubDrive {
	return newStubDrive(
		[]restore.AuditEvent{
			moveEvent("activity-1", "X", "x.txt", "F1", "Folder 1"),
			moveEvent("activity-2", "Y", "y.txt", "F1", "Folder 1"),
			moveEvent("activity-3", "Z", "z.txt", "F2", "Folder 2"),
		},
		map[string][]string{
			"X": {testScopeFolderIDConstant},
			"Y": {testScopeFolderIDConstant},
			"Z": {"somewhere-else"},
		},
	)
}

func executeCommand(command *cobra.Command, arguments ...string) (string, error) {
	var outputBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&outputBuffer)
	command.SetContext(context.Background())
	command.SetArgs(arguments)
	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func fixedRunIdentifier() string {
	return testRunIDConstant
}
