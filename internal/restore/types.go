package restore

import "time"

// AuditParameter mirrors a named, possibly multi-valued parameter of an audit event.
type AuditParameter struct {
	Name       string
	Value      string
	MultiValue []string
}

// AuditEvent is a transport-neutral representation of one "move" audit event.
type AuditEvent struct {
	ActivityID     string
	Time           time.Time
	ActorEmail     string
	ActorIPAddress string
	EventName      string
	Parameters     []AuditParameter
}

// RestoreRecord identifies a moved file and the folder it resided in before the incident.
type RestoreRecord struct {
	FileID           string
	FileName         string
	OriginFolderID   string
	OriginFolderName string
}

// FolderGroup collects restore records sharing an origin folder in first-seen order.
type FolderGroup struct {
	OriginFolderID   string
	OriginFolderName string
	Records          []RestoreRecord
}

// FileSnapshot captures the live state of a file at validation time.
type FileSnapshot struct {
	FileID    string
	ParentIDs []string
	Trashed   bool
}

// AuditQuery describes the audit window requested from the audit log fetcher.
type AuditQuery struct {
	ScopeFolderID  string
	From           time.Time
	To             time.Time
	ActorIPAddress string
}

// RecordOutcome enumerates the terminal states of a processed record.
type RecordOutcome string

// Terminal record outcomes.
const (
	RecordOutcomeMoved     RecordOutcome = "moved"
	RecordOutcomeSkipped   RecordOutcome = "skipped"
	RecordOutcomeSimulated RecordOutcome = "simulated"
	RecordOutcomeFailed    RecordOutcome = "failed"
)

// DriftReason explains why a record was classified as drifted.
type DriftReason string

// Drift reasons reported by the preflight validator.
const (
	DriftReasonNone             DriftReason = ""
	DriftReasonNoParents        DriftReason = "no_parents"
	DriftReasonMultipleParents  DriftReason = "multiple_parents"
	DriftReasonUnexpectedParent DriftReason = "unexpected_parent"
	DriftReasonTrashed          DriftReason = "trashed"
	DriftReasonNotFound         DriftReason = "not_found"
)

// RecordResult captures what happened to a single restore record.
type RecordResult struct {
	Record           RestoreRecord
	Outcome          RecordOutcome
	DriftReason      DriftReason
	ExpectedParentID string
	ActualParentIDs  []string
	Error            error
}

// RunOptions captures the caller-supplied parameters of a reconciliation run.
type RunOptions struct {
	ScopeFolderID  string
	MoveStart      time.Time
	MoveEnd        time.Time
	ActorIPAddress string
	Simulate       bool
	AssumeYes      bool
}

// RunPlan summarizes the work discovered before any record is processed.
type RunPlan struct {
	RunID          string
	ScopeFolderID  string
	MoveStart      time.Time
	MoveEnd        time.Time
	ActorIPAddress string
	Simulate       bool
	TotalRecords   int
	Groups         []FolderGroup
	Malformed      []MalformedAuditEventError
}
