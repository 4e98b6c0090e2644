package restore_test

import (
	"context"
	"fmt"
	"time"

	"github.com/temirov/driverestore/internal/restore"
)

const (
	testScopeFolderIDConstant = "root-folder"
	testRunIDConstant         = "run-fixed"
)

var (
	testMoveStart = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	testMoveEnd   = time.Date(2024, time.March, 1, 18, 0, 0, 0, time.UTC)
)

type moveCall struct {
	fileID         string
	addParentID    string
	removeParentID string
}

// inMemoryDrive models file parents and applies moves atomically.
type inMemoryDrive struct {
	parents     map[string][]string
	trashed     map[string]bool
	fetchErrors map[string]error
	moveErrors  map[string]error
	fetchCalls  []string
	moveCalls   []moveCall
}

func newInMemoryDrive(parents map[string][]string) *inMemoryDrive {
	return &inMemoryDrive{
		parents:     parents,
		trashed:     map[string]bool{},
		fetchErrors: map[string]error{},
		moveErrors:  map[string]error{},
	}
}

func (drive *inMemoryDrive) FetchFileState(_ context.Context, fileID string) (restore.FileSnapshot, error) {
	drive.fetchCalls = append(drive.fetchCalls, fileID)
	if fetchError, exists := drive.fetchErrors[fileID]; exists {
		return restore.FileSnapshot{}, fetchError
	}
	parentIDs, exists := drive.parents[fileID]
	if !exists {
		return restore.FileSnapshot{}, fmt.Errorf("lookup %s: %w", fileID, restore.ErrFileNotFound)
	}
	return restore.FileSnapshot{
		FileID:    fileID,
		ParentIDs: append([]string{}, parentIDs...),
		Trashed:   drive.trashed[fileID],
	}, nil
}

func (drive *inMemoryDrive) ApplyMove(_ context.Context, fileID string, addParentID string, removeParentID string) error {
	drive.moveCalls = append(drive.moveCalls, moveCall{fileID: fileID, addParentID: addParentID, removeParentID: removeParentID})
	if moveError, exists := drive.moveErrors[fileID]; exists {
		return moveError
	}

	updatedParents := []string{addParentID}
	removed := false
	for _, parentID := range drive.parents[fileID] {
		if parentID == removeParentID {
			removed = true
			continue
		}
		if parentID != addParentID {
			updatedParents = append(updatedParents, parentID)
		}
	}
	if !removed {
		return fmt.Errorf("file %s is not in parent %s", fileID, removeParentID)
	}
	drive.parents[fileID] = updatedParents
	return nil
}

type stubAuditLogFetcher struct {
	events  []restore.AuditEvent
	err     error
	queries []restore.AuditQuery
}

func (fetcher *stubAuditLogFetcher) FetchMoveAudit(_ context.Context, query restore.AuditQuery) ([]restore.AuditEvent, error) {
	fetcher.queries = append(fetcher.queries, query)
	if fetcher.err != nil {
		return nil, fetcher.err
	}
	return fetcher.events, nil
}

type stubPrompter struct {
	confirmed bool
	err       error
	prompts   []string
}

func (prompter *stubPrompter) Confirm(prompt string) (bool, error) {
	prompter.prompts = append(prompter.prompts, prompt)
	return prompter.confirmed, prompter.err
}

type recordingObserver struct {
	plans           []restore.RunPlan
	startedGroups   []restore.FolderGroup
	groupProgress   []restore.ProgressSnapshot
	results         []restore.RecordResult
	recordProgress  []restore.ProgressSnapshot
	finished        []restore.RunSummary
	onRecordHandled func()
}

func (observer *recordingObserver) RunPlanned(plan restore.RunPlan) {
	observer.plans = append(observer.plans, plan)
}

func (observer *recordingObserver) GroupStarted(group restore.FolderGroup, progress restore.ProgressSnapshot) {
	observer.startedGroups = append(observer.startedGroups, group)
	observer.groupProgress = append(observer.groupProgress, progress)
}

func (observer *recordingObserver) RecordCompleted(result restore.RecordResult, progress restore.ProgressSnapshot) {
	observer.results = append(observer.results, result)
	observer.recordProgress = append(observer.recordProgress, progress)
	if observer.onRecordHandled != nil {
		observer.onRecordHandled()
	}
}

func (observer *recordingObserver) RunFinished(summary restore.RunSummary) {
	observer.finished = append(observer.finished, summary)
}

func moveEvent(activityID string, fileID string, fileName string, originFolderID string, originFolderName string) restore.AuditEvent {
	return restore.AuditEvent{
		ActivityID: activityID,
		EventName:  "move",
		Parameters: []restore.AuditParameter{
			{Name: "doc_id", Value: fileID},
			{Name: "doc_title", Value: fileName},
			{Name: "source_folder_id", MultiValue: []string{originFolderID}},
			{Name: "source_folder_title", MultiValue: []string{originFolderName}},
			{Name: "destination_folder_id", MultiValue: []string{testScopeFolderIDConstant}},
		},
	}
}

func defaultRunOptions() restore.RunOptions {
	return restore.RunOptions{
		ScopeFolderID: testScopeFolderIDConstant,
		MoveStart:     testMoveStart,
		MoveEnd:       testMoveEnd,
		AssumeYes:     true,
	}
}

func fixedRunIdentifier() string {
	return testRunIDConstant
}
