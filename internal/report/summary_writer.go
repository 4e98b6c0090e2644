package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/driverestore/internal/restore"
)

// Format identifies a summary document encoding.
type Format string

// Supported summary formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const (
	csvHeaderFileIDConstant           = "file_id"
	csvHeaderFileNameConstant         = "file_name"
	csvHeaderOriginFolderIDConstant   = "origin_folder_id"
	csvHeaderOriginFolderNameConstant = "origin_folder_name"
	csvHeaderOutcomeConstant          = "outcome"
	csvHeaderDriftReasonConstant      = "drift_reason"
	csvHeaderExpectedParentConstant   = "expected_parent_id"
	csvHeaderActualParentsConstant    = "actual_parent_ids"
	csvHeaderErrorConstant            = "error"
	malformedOutcomeConstant          = "malformed"
	parentIdentifierSeparatorConstant = ";"
	yamlIndentationConstant           = 2
	jsonIndentationConstant           = "  "
	malformedReasonTemplateConstant   = "parameter %s %s"
	unsupportedFormatTemplateConstant = "unsupported report format %q (expected csv, json, or yaml)"
	writerMissingMessageConstant      = "report writer not configured"
)

var (
	// ErrWriterMissing indicates WriteSummary was called without a destination.
	ErrWriterMissing = errors.New(writerMissingMessageConstant)
)

// UnsupportedFormatError reports an unknown report format name.
type UnsupportedFormatError struct {
	Value string
}

// Error describes the unsupported format.
func (formatError UnsupportedFormatError) Error() string {
	return fmt.Sprintf(unsupportedFormatTemplateConstant, formatError.Value)
}

// ParseFormat resolves a case-insensitive format name; an empty value selects CSV.
func ParseFormat(value string) (Format, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	switch Format(normalizedValue) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", UnsupportedFormatError{Value: value}
	}
}

// Document is the serializable form of a restore run summary.
type Document struct {
	RunID          string           `json:"run_id" yaml:"run_id"`
	ScopeFolderID  string           `json:"scope_folder_id" yaml:"scope_folder_id"`
	SimulationMode bool             `json:"simulation_mode" yaml:"simulation_mode"`
	Declined       bool             `json:"declined" yaml:"declined"`
	Stats          StatsEntry       `json:"stats" yaml:"stats"`
	Records        []RecordEntry    `json:"records" yaml:"records"`
	Malformed      []MalformedEntry `json:"malformed_events,omitempty" yaml:"malformed_events,omitempty"`
}

// StatsEntry mirrors restore.RunStats.
type StatsEntry struct {
	Total      int     `json:"total" yaml:"total"`
	Processed  int     `json:"processed" yaml:"processed"`
	Moved      int     `json:"moved" yaml:"moved"`
	Skipped    int     `json:"skipped" yaml:"skipped"`
	Simulated  int     `json:"simulated" yaml:"simulated"`
	Failed     int     `json:"failed" yaml:"failed"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// RecordEntry describes the outcome of one restore record.
type RecordEntry struct {
	FileID           string   `json:"file_id" yaml:"file_id"`
	FileName         string   `json:"file_name" yaml:"file_name"`
	OriginFolderID   string   `json:"origin_folder_id" yaml:"origin_folder_id"`
	OriginFolderName string   `json:"origin_folder_name" yaml:"origin_folder_name"`
	Outcome          string   `json:"outcome" yaml:"outcome"`
	DriftReason      string   `json:"drift_reason,omitempty" yaml:"drift_reason,omitempty"`
	ExpectedParentID string   `json:"expected_parent_id" yaml:"expected_parent_id"`
	ActualParentIDs  []string `json:"actual_parent_ids" yaml:"actual_parent_ids"`
	Error            string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// MalformedEntry describes an audit event that could not be parsed.
type MalformedEntry struct {
	ActivityID string `json:"activity_id" yaml:"activity_id"`
	Parameter  string `json:"parameter" yaml:"parameter"`
	Reason     string `json:"reason" yaml:"reason"`
}

// NewDocument converts a run summary into its serializable form.
func NewDocument(summary restore.RunSummary) Document {
	document := Document{
		RunID:          summary.RunID,
		ScopeFolderID:  summary.ScopeFolderID,
		SimulationMode: summary.SimulationMode,
		Declined:       summary.Declined,
		Stats: StatsEntry{
			Total:      summary.Stats.TotalRecords,
			Processed:  summary.Stats.ProcessedCount,
			Moved:      summary.Stats.MovedCount,
			Skipped:    summary.Stats.SkippedCount,
			Simulated:  summary.Stats.SimulatedCount,
			Failed:     summary.Stats.FailedCount,
			Percentage: summary.Stats.Percentage,
		},
		Records: make([]RecordEntry, 0, len(summary.Results)),
	}

	for _, result := range summary.Results {
		entry := RecordEntry{
			FileID:           result.Record.FileID,
			FileName:         result.Record.FileName,
			OriginFolderID:   result.Record.OriginFolderID,
			OriginFolderName: result.Record.OriginFolderName,
			Outcome:          string(result.Outcome),
			DriftReason:      string(result.DriftReason),
			ExpectedParentID: result.ExpectedParentID,
			ActualParentIDs:  append([]string{}, result.ActualParentIDs...),
		}
		if result.Error != nil {
			entry.Error = result.Error.Error()
		}
		document.Records = append(document.Records, entry)
	}

	for _, malformedEvent := range summary.Malformed {
		document.Malformed = append(document.Malformed, MalformedEntry{
			ActivityID: malformedEvent.ActivityID,
			Parameter:  malformedEvent.Parameter,
			Reason:     malformedEvent.Reason,
		})
	}

	return document
}

// WriteSummary encodes the summary to the writer in the requested format.
func WriteSummary(writer io.Writer, summary restore.RunSummary, format Format) error {
	if writer == nil {
		return ErrWriterMissing
	}

	document := NewDocument(summary)
	switch format {
	case FormatCSV:
		return writeCSV(writer, document)
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", jsonIndentationConstant)
		return encoder.Encode(document)
	case FormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(yamlIndentationConstant)
		if encodeError := encoder.Encode(document); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	default:
		return UnsupportedFormatError{Value: string(format)}
	}
}

func writeCSV(writer io.Writer, document Document) error {
	csvWriter := csv.NewWriter(writer)
	header := []string{
		csvHeaderFileIDConstant,
		csvHeaderFileNameConstant,
		csvHeaderOriginFolderIDConstant,
		csvHeaderOriginFolderNameConstant,
		csvHeaderOutcomeConstant,
		csvHeaderDriftReasonConstant,
		csvHeaderExpectedParentConstant,
		csvHeaderActualParentsConstant,
		csvHeaderErrorConstant,
	}
	if writeError := csvWriter.Write(header); writeError != nil {
		return writeError
	}

	for _, entry := range document.Records {
		row := []string{
			entry.FileID,
			entry.FileName,
			entry.OriginFolderID,
			entry.OriginFolderName,
			entry.Outcome,
			entry.DriftReason,
			entry.ExpectedParentID,
			strings.Join(entry.ActualParentIDs, parentIdentifierSeparatorConstant),
			entry.Error,
		}
		if writeError := csvWriter.Write(row); writeError != nil {
			return writeError
		}
	}

	for _, malformedEntry := range document.Malformed {
		row := make([]string, len(header))
		row[0] = malformedEntry.ActivityID
		row[4] = malformedOutcomeConstant
		row[len(row)-1] = fmt.Sprintf(malformedReasonTemplateConstant, malformedEntry.Parameter, malformedEntry.Reason)
		if writeError := csvWriter.Write(row); writeError != nil {
			return writeError
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
