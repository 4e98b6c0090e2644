package googledrive_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/driverestore/internal/googledrive"
	"github.com/temirov/driverestore/internal/restore"
)

const (
	testReportsPathConstant     = "/admin/reports/v1/activity/users/all/applications/drive"
	testDriveFilesPathConstant  = "/drive/v3/files/"
	testScopeFolderIDConstant   = "root-folder"
	testActorIPAddressConstant  = "203.0.113.7"
	testSecondPageTokenConstant = "page-2"
	testFirstPageBodyConstant   = `{
  "items": [
    {
      "id": {"time": "2024-03-01T10:00:00.000Z", "uniqueQualifier": "101"},
      "actor": {"email": "user@example.com"},
      "ipAddress": "203.0.113.7",
      "events": [
        {
          "name": "move",
          "parameters": [
            {"name": "doc_id", "value": "F1"},
            {"name": "doc_title", "value": "Report.pdf"},
            {"name": "source_folder_id", "multiValue": ["A"]},
            {"name": "source_folder_title", "multiValue": ["Folder A"]}
          ]
        },
        {"name": "edit", "parameters": [{"name": "doc_id", "value": "ignored"}]}
      ]
    }
  ],
  "nextPageToken": "page-2"
}`
	testSecondPageBodyConstant = `{
  "items": [
    {
      "id": {"time": "2024-03-01T10:05:00.000Z", "uniqueQualifier": "202"},
      "actor": {"email": "user@example.com"},
      "ipAddress": "203.0.113.7",
      "events": [
        {
          "name": "move",
          "parameters": [
            {"name": "doc_id", "value": "F2"},
            {"name": "doc_title", "value": "Notes.txt"},
            {"name": "source_folder_id", "multiValue": ["B"]},
            {"name": "source_folder_title", "multiValue": ["Folder B"]}
          ]
        }
      ]
    }
  ]
}`
	testEmptyActivityBodyConstant = `{
  "items": [
    {
      "id": {"time": "2024-03-01T11:00:00.000Z", "uniqueQualifier": "303"},
      "actor": {"email": "user@example.com"},
      "ipAddress": "203.0.113.7",
      "events": []
    }
  ]
}`
	testNotFoundBodyConstant = `{"error": {"code": 404, "message": "File not found: missing."}}`
	testServerErrorConstant  = `{"error": {"code": 500, "message": "backend error"}}`
)

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
}

type fakeGoogleAPIServer struct {
	server        *httptest.Server
	requests      []recordedRequest
	files         map[string]string
	reportsBodies map[string]string
}

func newFakeGoogleAPIServer(testInstance *testing.T) *fakeGoogleAPIServer {
	testInstance.Helper()
	fake := &fakeGoogleAPIServer{
		files: map[string]string{
			"F1":      `{"id": "F1", "name": "Report.pdf", "parents": ["root-folder"], "trashed": false}`,
			"trashed": `{"id": "trashed", "name": "Old.txt", "parents": ["root-folder"], "trashed": true}`,
		},
		reportsBodies: map[string]string{
			"":                          testFirstPageBodyConstant,
			testSecondPageTokenConstant: testSecondPageBodyConstant,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(testReportsPathConstant, func(responseWriter http.ResponseWriter, request *http.Request) {
		fake.record(request)
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(responseWriter, fake.reportsBodies[request.URL.Query().Get("pageToken")])
	})
	mux.HandleFunc(testDriveFilesPathConstant, func(responseWriter http.ResponseWriter, request *http.Request) {
		fake.record(request)
		responseWriter.Header().Set("Content-Type", "application/json")
		fileID := request.URL.Path[len(testDriveFilesPathConstant):]

		if fileID == "broken" {
			responseWriter.WriteHeader(http.StatusInternalServerError)
			_, _ = fmt.Fprint(responseWriter, testServerErrorConstant)
			return
		}

		body, exists := fake.files[fileID]
		if !exists {
			responseWriter.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprint(responseWriter, testNotFoundBodyConstant)
			return
		}
		_, _ = fmt.Fprint(responseWriter, body)
	})

	fake.server = httptest.NewServer(mux)
	testInstance.Cleanup(fake.server.Close)
	return fake
}

func (fake *fakeGoogleAPIServer) record(request *http.Request) {
	query := make(map[string]string)
	for key := range request.URL.Query() {
		query[key] = request.URL.Query().Get(key)
	}
	fake.requests = append(fake.requests, recordedRequest{method: request.Method, path: request.URL.Path, query: query})
}

func (fake *fakeGoogleAPIServer) newClient(testInstance *testing.T) *googledrive.Client {
	testInstance.Helper()
	client, clientError := googledrive.NewClientFromOptions(context.Background(), googledrive.ServiceOptions{
		ReportsHTTPClient: fake.server.Client(),
		DriveHTTPClient:   fake.server.Client(),
		ReportsEndpoint:   fake.server.URL + "/",
		DriveEndpoint:     fake.server.URL + "/drive/v3/",
		Logger:            zap.NewNop(),
	})
	require.NoError(testInstance, clientError)
	return client
}

func TestFetchMoveAuditFollowsPagesAndFlattensMoveEvents(testInstance *testing.T) {
	fake := newFakeGoogleAPIServer(testInstance)
	client := fake.newClient(testInstance)

	query := restore.AuditQuery{
		ScopeFolderID:  testScopeFolderIDConstant,
		From:           time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		To:             time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
		ActorIPAddress: testActorIPAddressConstant,
	}

	auditEvents, fetchError := client.FetchMoveAudit(context.Background(), query)
	require.NoError(testInstance, fetchError)
	require.Len(testInstance, auditEvents, 2)

	require.Equal(testInstance, "2024-03-01T10:00:00.000Z/101", auditEvents[0].ActivityID)
	require.Equal(testInstance, "user@example.com", auditEvents[0].ActorEmail)
	require.Equal(testInstance, testActorIPAddressConstant, auditEvents[0].ActorIPAddress)
	require.Equal(testInstance, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC), auditEvents[0].Time)

	firstRecord, firstParseError := restore.ParseAuditEvent(auditEvents[0])
	require.NoError(testInstance, firstParseError)
	require.Equal(testInstance, restore.RestoreRecord{FileID: "F1", FileName: "Report.pdf", OriginFolderID: "A", OriginFolderName: "Folder A"}, firstRecord)

	secondRecord, secondParseError := restore.ParseAuditEvent(auditEvents[1])
	require.NoError(testInstance, secondParseError)
	require.Equal(testInstance, "F2", secondRecord.FileID)
	require.Equal(testInstance, "B", secondRecord.OriginFolderID)

	require.Len(testInstance, fake.requests, 2)
	firstRequest := fake.requests[0]
	require.Equal(testInstance, http.MethodGet, firstRequest.method)
	require.Equal(testInstance, "move", firstRequest.query["eventName"])
	require.Equal(testInstance, "destination_folder_id=="+testScopeFolderIDConstant, firstRequest.query["filters"])
	require.Equal(testInstance, "2024-03-01T00:00:00Z", firstRequest.query["startTime"])
	require.Equal(testInstance, "2024-03-02T00:00:00Z", firstRequest.query["endTime"])
	require.Equal(testInstance, testActorIPAddressConstant, firstRequest.query["actorIpAddress"])
	require.Equal(testInstance, "1000", firstRequest.query["maxResults"])
	require.Equal(testInstance, testSecondPageTokenConstant, fake.requests[1].query["pageToken"])
}

func TestFetchMoveAuditSurfacesActivitiesWithoutMoveEvents(testInstance *testing.T) {
	fake := newFakeGoogleAPIServer(testInstance)
	fake.reportsBodies[""] = testEmptyActivityBodyConstant
	client := fake.newClient(testInstance)

	query := restore.AuditQuery{
		ScopeFolderID: testScopeFolderIDConstant,
		From:          time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		To:            time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
	}

	auditEvents, fetchError := client.FetchMoveAudit(context.Background(), query)
	require.NoError(testInstance, fetchError)
	require.Len(testInstance, auditEvents, 1)
	require.Equal(testInstance, "2024-03-01T11:00:00.000Z/303", auditEvents[0].ActivityID)
	require.Empty(testInstance, auditEvents[0].Parameters)

	records, malformedEvents := restore.ParseAuditEvents(auditEvents)
	require.Empty(testInstance, records)
	require.Len(testInstance, malformedEvents, 1)
	require.Equal(testInstance, "2024-03-01T11:00:00.000Z/303", malformedEvents[0].ActivityID)
	require.Equal(testInstance, "carries no event", malformedEvents[0].Reason)
}

func TestFetchFileState(testInstance *testing.T) {
	testCases := []struct {
		name             string
		fileID           string
		expectedSnapshot restore.FileSnapshot
		expectNotFound   bool
		expectError      bool
	}{
		{
			name:             "single_parent",
			fileID:           "F1",
			expectedSnapshot: restore.FileSnapshot{FileID: "F1", ParentIDs: []string{testScopeFolderIDConstant}},
		},
		{
			name:             "trashed_file",
			fileID:           "trashed",
			expectedSnapshot: restore.FileSnapshot{FileID: "trashed", ParentIDs: []string{testScopeFolderIDConstant}, Trashed: true},
		},
		{
			name:           "missing_file",
			fileID:         "missing",
			expectNotFound: true,
			expectError:    true,
		},
		{
			name:        "server_error",
			fileID:      "broken",
			expectError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fake := newFakeGoogleAPIServer(testInstance)
			client := fake.newClient(testInstance)

			snapshot, fetchError := client.FetchFileState(context.Background(), testCase.fileID)
			if testCase.expectError {
				require.Error(testInstance, fetchError)
				require.Equal(testInstance, testCase.expectNotFound, errors.Is(fetchError, restore.ErrFileNotFound))

				var operationError googledrive.OperationError
				require.ErrorAs(testInstance, fetchError, &operationError)
				return
			}

			require.NoError(testInstance, fetchError)
			require.Equal(testInstance, testCase.expectedSnapshot, snapshot)

			require.Len(testInstance, fake.requests, 1)
			require.Equal(testInstance, "true", fake.requests[0].query["supportsAllDrives"])
			require.Equal(testInstance, "id,name,parents,trashed", fake.requests[0].query["fields"])
		})
	}
}

func TestApplyMoveIssuesSingleParentUpdate(testInstance *testing.T) {
	fake := newFakeGoogleAPIServer(testInstance)
	client := fake.newClient(testInstance)

	require.NoError(testInstance, client.ApplyMove(context.Background(), "F1", "A", testScopeFolderIDConstant))

	require.Len(testInstance, fake.requests, 1)
	moveRequest := fake.requests[0]
	require.Equal(testInstance, http.MethodPatch, moveRequest.method)
	require.Equal(testInstance, testDriveFilesPathConstant+"F1", moveRequest.path)
	require.Equal(testInstance, "A", moveRequest.query["addParents"])
	require.Equal(testInstance, testScopeFolderIDConstant, moveRequest.query["removeParents"])
	require.Equal(testInstance, "true", moveRequest.query["supportsAllDrives"])
}

func TestApplyMoveRejectsInvalidInputs(testInstance *testing.T) {
	fake := newFakeGoogleAPIServer(testInstance)
	client := fake.newClient(testInstance)

	testCases := []struct {
		name           string
		fileID         string
		addParentID    string
		removeParentID string
		expectedField  string
	}{
		{name: "missing_file", addParentID: "A", removeParentID: "root", expectedField: "file_id"},
		{name: "missing_origin", fileID: "F1", removeParentID: "root", expectedField: "add_parent_id"},
		{name: "missing_current", fileID: "F1", addParentID: "A", expectedField: "remove_parent_id"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			moveError := client.ApplyMove(context.Background(), testCase.fileID, testCase.addParentID, testCase.removeParentID)

			var inputError googledrive.InvalidInputError
			require.ErrorAs(testInstance, moveError, &inputError)
			require.Equal(testInstance, testCase.expectedField, inputError.FieldName)
		})
	}

	require.Empty(testInstance, fake.requests)
}

func TestApplyMoveWrapsServerFailure(testInstance *testing.T) {
	fake := newFakeGoogleAPIServer(testInstance)
	client := fake.newClient(testInstance)

	moveError := client.ApplyMove(context.Background(), "broken", "A", testScopeFolderIDConstant)

	var operationError googledrive.OperationError
	require.ErrorAs(testInstance, moveError, &operationError)
	require.Equal(testInstance, googledrive.OperationName("UpdateParents"), operationError.Operation)
}

func TestNewClientRequiresServices(testInstance *testing.T) {
	_, clientError := googledrive.NewClient(nil, nil, 1, nil)
	require.ErrorIs(testInstance, clientError, googledrive.ErrServicesNotConfigured)
}
