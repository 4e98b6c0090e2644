package googledrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	admin "google.golang.org/api/admin/reports/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/temirov/driverestore/internal/restore"
)

const (
	allUsersKeyConstant                     = "all"
	driveApplicationNameConstant            = "drive"
	moveEventNameConstant                   = "move"
	destinationFolderFilterTemplateConstant = "destination_folder_id==%s"
	activityIdentifierTemplateConstant      = "%s/%d"
	auditPageSizeConstant                   = int64(1000)
	fileStateFieldsConstant                 = "id,name,parents,trashed"
	moveResponseFieldsConstant              = "id,parents"
	fileNotFoundErrorTemplateConstant       = "%w: %w"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	requiredValueMessageConstant            = "value required"
	servicesNotConfiguredMessageConstant    = "google api services not configured"
	fileIdentifierFieldNameConstant         = "file_id"
	scopeFolderFieldNameConstant            = "scope_folder_id"
	addParentFieldNameConstant              = "add_parent_id"
	removeParentFieldNameConstant           = "remove_parent_id"
	auditPageFetchedMessageConstant         = "audit page fetched"
	fileStateFetchedMessageConstant         = "file state fetched"
	fileMovedMessageConstant                = "file reparented"
	logFieldPageActivityCountConstant       = "activity_count"
	logFieldPageEventCountConstant          = "event_count"
	logFieldFileIDConstant                  = "file_id"
	logFieldParentIDsConstant               = "parent_ids"
	logFieldTrashedConstant                 = "trashed"
	logFieldAddParentIDConstant             = "add_parent_id"
	logFieldRemoveParentIDConstant          = "remove_parent_id"
	listMoveAuditOperationNameConstant      = OperationName("ListMoveAudit")
	getFileStateOperationNameConstant       = OperationName("GetFileState")
	updateParentsOperationNameConstant      = OperationName("UpdateParents")
	createReportsServiceOperationConstant   = OperationName("CreateReportsService")
	createDriveServiceOperationConstant     = OperationName("CreateDriveService")
)

// OperationName describes a named Google API call issued by the client.
type OperationName string

var (
	// ErrServicesNotConfigured indicates the client was constructed without API services.
	ErrServicesNotConfigured = errors.New(servicesNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps failures returned by Google API calls.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ServiceOptions configures the HTTP clients and endpoints used to build the API services.
type ServiceOptions struct {
	ReportsHTTPClient *http.Client
	DriveHTTPClient   *http.Client
	ReportsEndpoint   string
	DriveEndpoint     string
	RequestsPerSecond float64
	Logger            *zap.Logger
}

// Client implements restore.AuditLogFetcher, restore.FileStateFetcher, and restore.MoveApplier.
type Client struct {
	reportsService *admin.Service
	driveService   *drive.Service
	limiter        *rate.Limiter
	logger         *zap.Logger
}

// NewClient constructs a Client around existing API services.
func NewClient(reportsService *admin.Service, driveService *drive.Service, requestsPerSecond float64, logger *zap.Logger) (*Client, error) {
	if reportsService == nil || driveService == nil {
		return nil, ErrServicesNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		reportsService: reportsService,
		driveService:   driveService,
		limiter:        newRequestLimiter(requestsPerSecond),
		logger:         logger,
	}, nil
}

// NewClientFromOptions builds the Reports and Drive services from authorized HTTP clients.
func NewClientFromOptions(executionContext context.Context, options ServiceOptions) (*Client, error) {
	reportsService, reportsError := admin.NewService(executionContext, serviceClientOptions(options.ReportsHTTPClient, options.ReportsEndpoint)...)
	if reportsError != nil {
		return nil, OperationError{Operation: createReportsServiceOperationConstant, Cause: reportsError}
	}

	driveService, driveError := drive.NewService(executionContext, serviceClientOptions(options.DriveHTTPClient, options.DriveEndpoint)...)
	if driveError != nil {
		return nil, OperationError{Operation: createDriveServiceOperationConstant, Cause: driveError}
	}

	return NewClient(reportsService, driveService, options.RequestsPerSecond, options.Logger)
}

// FetchMoveAudit lists every drive "move" event whose destination is the scope folder, following all pages.
func (client *Client) FetchMoveAudit(executionContext context.Context, query restore.AuditQuery) ([]restore.AuditEvent, error) {
	scopeFolderID := strings.TrimSpace(query.ScopeFolderID)
	if len(scopeFolderID) == 0 {
		return nil, InvalidInputError{FieldName: scopeFolderFieldNameConstant, Message: requiredValueMessageConstant}
	}

	listCall := client.reportsService.Activities.List(allUsersKeyConstant, driveApplicationNameConstant).
		EventName(moveEventNameConstant).
		Filters(fmt.Sprintf(destinationFolderFilterTemplateConstant, scopeFolderID)).
		StartTime(query.From.UTC().Format(time.RFC3339)).
		EndTime(query.To.UTC().Format(time.RFC3339)).
		MaxResults(auditPageSizeConstant)

	if actorIPAddress := strings.TrimSpace(query.ActorIPAddress); len(actorIPAddress) > 0 {
		listCall = listCall.ActorIpAddress(actorIPAddress)
	}

	if waitError := client.limiter.Wait(executionContext); waitError != nil {
		return nil, OperationError{Operation: listMoveAuditOperationNameConstant, Cause: waitError}
	}

	var auditEvents []restore.AuditEvent
	pagesError := listCall.Pages(executionContext, func(page *admin.Activities) error {
		pageEvents := convertActivities(page.Items)
		auditEvents = append(auditEvents, pageEvents...)
		client.logger.Debug(
			auditPageFetchedMessageConstant,
			zap.Int(logFieldPageActivityCountConstant, len(page.Items)),
			zap.Int(logFieldPageEventCountConstant, len(pageEvents)),
		)
		if len(page.NextPageToken) == 0 {
			return nil
		}
		return client.limiter.Wait(executionContext)
	})
	if pagesError != nil {
		return nil, OperationError{Operation: listMoveAuditOperationNameConstant, Cause: pagesError}
	}

	return auditEvents, nil
}

// FetchFileState reads the current parents and trash state of a file.
// A missing file yields an error matching restore.ErrFileNotFound.
func (client *Client) FetchFileState(executionContext context.Context, fileID string) (restore.FileSnapshot, error) {
	trimmedFileID := strings.TrimSpace(fileID)
	if len(trimmedFileID) == 0 {
		return restore.FileSnapshot{}, InvalidInputError{FieldName: fileIdentifierFieldNameConstant, Message: requiredValueMessageConstant}
	}

	if waitError := client.limiter.Wait(executionContext); waitError != nil {
		return restore.FileSnapshot{}, OperationError{Operation: getFileStateOperationNameConstant, Cause: waitError}
	}

	file, getError := client.driveService.Files.Get(trimmedFileID).
		Fields(fileStateFieldsConstant).
		SupportsAllDrives(true).
		Context(executionContext).
		Do()
	if getError != nil {
		if isNotFound(getError) {
			return restore.FileSnapshot{}, OperationError{Operation: getFileStateOperationNameConstant, Cause: fmt.Errorf(fileNotFoundErrorTemplateConstant, restore.ErrFileNotFound, getError)}
		}
		return restore.FileSnapshot{}, OperationError{Operation: getFileStateOperationNameConstant, Cause: getError}
	}

	client.logger.Debug(
		fileStateFetchedMessageConstant,
		zap.String(logFieldFileIDConstant, trimmedFileID),
		zap.Strings(logFieldParentIDsConstant, file.Parents),
		zap.Bool(logFieldTrashedConstant, file.Trashed),
	)

	return restore.FileSnapshot{
		FileID:    trimmedFileID,
		ParentIDs: append([]string{}, file.Parents...),
		Trashed:   file.Trashed,
	}, nil
}

// ApplyMove adds the origin parent and removes the current parent in one update call.
func (client *Client) ApplyMove(executionContext context.Context, fileID string, addParentID string, removeParentID string) error {
	requiredInputs := []struct {
		fieldName string
		value     string
	}{
		{fieldName: fileIdentifierFieldNameConstant, value: fileID},
		{fieldName: addParentFieldNameConstant, value: addParentID},
		{fieldName: removeParentFieldNameConstant, value: removeParentID},
	}
	for _, requiredInput := range requiredInputs {
		if len(strings.TrimSpace(requiredInput.value)) == 0 {
			return InvalidInputError{FieldName: requiredInput.fieldName, Message: requiredValueMessageConstant}
		}
	}

	if waitError := client.limiter.Wait(executionContext); waitError != nil {
		return OperationError{Operation: updateParentsOperationNameConstant, Cause: waitError}
	}

	_, updateError := client.driveService.Files.Update(fileID, &drive.File{}).
		AddParents(addParentID).
		RemoveParents(removeParentID).
		SupportsAllDrives(true).
		Fields(moveResponseFieldsConstant).
		Context(executionContext).
		Do()
	if updateError != nil {
		return OperationError{Operation: updateParentsOperationNameConstant, Cause: updateError}
	}

	client.logger.Debug(
		fileMovedMessageConstant,
		zap.String(logFieldFileIDConstant, fileID),
		zap.String(logFieldAddParentIDConstant, addParentID),
		zap.String(logFieldRemoveParentIDConstant, removeParentID),
	)
	return nil
}

func convertActivities(activities []*admin.Activity) []restore.AuditEvent {
	var auditEvents []restore.AuditEvent
	for _, activity := range activities {
		if activity == nil {
			continue
		}

		activityID, activityTime := activityIdentity(activity)
		actorEmail := ""
		if activity.Actor != nil {
			actorEmail = activity.Actor.Email
		}

		moveEventCount := 0
		for _, event := range activity.Events {
			if event == nil || event.Name != moveEventNameConstant {
				continue
			}
			moveEventCount++
			auditEvents = append(auditEvents, restore.AuditEvent{
				ActivityID:     activityID,
				Time:           activityTime,
				ActorEmail:     actorEmail,
				ActorIPAddress: activity.IpAddress,
				EventName:      event.Name,
				Parameters:     convertParameters(event.Parameters),
			})
		}

		// An activity without a move event still surfaces so the parser reports it as malformed.
		if moveEventCount == 0 {
			auditEvents = append(auditEvents, restore.AuditEvent{
				ActivityID:     activityID,
				Time:           activityTime,
				ActorEmail:     actorEmail,
				ActorIPAddress: activity.IpAddress,
			})
		}
	}
	return auditEvents
}

func convertParameters(parameters []*admin.ActivityEventsParameters) []restore.AuditParameter {
	converted := make([]restore.AuditParameter, 0, len(parameters))
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		converted = append(converted, restore.AuditParameter{
			Name:       parameter.Name,
			Value:      parameter.Value,
			MultiValue: append([]string{}, parameter.MultiValue...),
		})
	}
	return converted
}

func activityIdentity(activity *admin.Activity) (string, time.Time) {
	if activity.Id == nil {
		return "", time.Time{}
	}
	activityTime, parseError := time.Parse(time.RFC3339Nano, activity.Id.Time)
	if parseError != nil {
		activityTime = time.Time{}
	}
	return fmt.Sprintf(activityIdentifierTemplateConstant, activity.Id.Time, activity.Id.UniqueQualifier), activityTime
}

func isNotFound(apiError error) bool {
	var googleError *googleapi.Error
	if errors.As(apiError, &googleError) {
		return googleError.Code == http.StatusNotFound
	}
	return false
}

func newRequestLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

func serviceClientOptions(httpClient *http.Client, endpoint string) []option.ClientOption {
	var clientOptions []option.ClientOption
	if httpClient != nil {
		clientOptions = append(clientOptions, option.WithHTTPClient(httpClient))
	}
	if trimmedEndpoint := strings.TrimSpace(endpoint); len(trimmedEndpoint) > 0 {
		clientOptions = append(clientOptions, option.WithEndpoint(trimmedEndpoint))
	}
	return clientOptions
}
