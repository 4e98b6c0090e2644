package restore

import "strings"

const (
	sourceFolderIdentifierParameterConstant = "source_folder_id"
	sourceFolderTitleParameterConstant      = "source_folder_title"
	documentIdentifierParameterConstant     = "doc_id"
	documentTitleParameterConstant          = "doc_title"
)

type parameterKind int

const (
	parameterKindSingle parameterKind = iota
	parameterKindMulti
)

type parameterRequirement struct {
	name          string
	kind          parameterKind
	allowBlank    bool
	assignToField func(record *RestoreRecord, value string)
}

var restoreRecordParameterRequirements = []parameterRequirement{
	{
		name: sourceFolderIdentifierParameterConstant,
		kind: parameterKindMulti,
		assignToField: func(record *RestoreRecord, value string) {
			record.OriginFolderID = value
		},
	},
	{
		name:       sourceFolderTitleParameterConstant,
		kind:       parameterKindMulti,
		allowBlank: true,
		assignToField: func(record *RestoreRecord, value string) {
			record.OriginFolderName = value
		},
	},
	{
		name: documentIdentifierParameterConstant,
		kind: parameterKindSingle,
		assignToField: func(record *RestoreRecord, value string) {
			record.FileID = value
		},
	},
	{
		name:       documentTitleParameterConstant,
		kind:       parameterKindSingle,
		allowBlank: true,
		assignToField: func(record *RestoreRecord, value string) {
			record.FileName = value
		},
	},
}

// ParseAuditEvent converts a move audit event into a RestoreRecord.
// Every required parameter must resolve to exactly one value; anything else yields a MalformedAuditEventError.
func ParseAuditEvent(event AuditEvent) (RestoreRecord, error) {
	if len(event.Parameters) == 0 {
		return RestoreRecord{}, MalformedAuditEventError{
			ActivityID: event.ActivityID,
			Parameter:  eventParameterPlaceholderConstant,
			Reason:     eventMissingReasonConstant,
		}
	}

	record := RestoreRecord{}
	for _, requirement := range restoreRecordParameterRequirements {
		value, extractionError := extractSingleValue(event, requirement)
		if extractionError != nil {
			return RestoreRecord{}, extractionError
		}
		requirement.assignToField(&record, value)
	}

	return record, nil
}

// ParseAuditEvents converts events in order, collecting malformed events instead of aborting.
func ParseAuditEvents(events []AuditEvent) ([]RestoreRecord, []MalformedAuditEventError) {
	records := make([]RestoreRecord, 0, len(events))
	var malformedEvents []MalformedAuditEventError

	for _, event := range events {
		record, parseError := ParseAuditEvent(event)
		if parseError != nil {
			if malformedError, isMalformed := parseError.(MalformedAuditEventError); isMalformed {
				malformedEvents = append(malformedEvents, malformedError)
				continue
			}
			malformedEvents = append(malformedEvents, MalformedAuditEventError{ActivityID: event.ActivityID, Reason: parseError.Error()})
			continue
		}
		records = append(records, record)
	}

	return records, malformedEvents
}

// extractSingleValue resolves exactly one value for the named parameter or returns a named parse error.
func extractSingleValue(event AuditEvent, requirement parameterRequirement) (string, error) {
	malformed := func(reason string) error {
		return MalformedAuditEventError{ActivityID: event.ActivityID, Parameter: requirement.name, Reason: reason}
	}

	var matchedParameter *AuditParameter
	for parameterIndex := range event.Parameters {
		if event.Parameters[parameterIndex].Name != requirement.name {
			continue
		}
		if matchedParameter != nil {
			return "", malformed(parameterDuplicatedReasonConstant)
		}
		matchedParameter = &event.Parameters[parameterIndex]
	}

	if matchedParameter == nil {
		return "", malformed(parameterMissingReasonConstant)
	}

	var value string
	switch requirement.kind {
	case parameterKindMulti:
		switch len(matchedParameter.MultiValue) {
		case 0:
			return "", malformed(parameterEmptyReasonConstant)
		case 1:
			value = matchedParameter.MultiValue[0]
		default:
			return "", malformed(parameterMultipleValuesReasonConstant)
		}
	default:
		if len(matchedParameter.MultiValue) > 0 {
			return "", malformed(parameterMultipleValuesReasonConstant)
		}
		value = matchedParameter.Value
	}

	if !requirement.allowBlank && len(strings.TrimSpace(value)) == 0 {
		return "", malformed(parameterBlankReasonConstant)
	}

	return value, nil
}
