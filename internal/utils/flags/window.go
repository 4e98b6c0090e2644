package flags

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	// DriveIDFlagName exposes the incident destination folder flag name.
	DriveIDFlagName = "drive-id"
	// DriveIDFlagUsage describes the incident destination folder flag purpose.
	DriveIDFlagUsage = "Identifier of the folder the files were wrongly moved into"
	// MoveStartFlagName exposes the audit window start flag name.
	MoveStartFlagName = "move-start"
	// MoveStartFlagUsage describes the audit window start flag purpose.
	MoveStartFlagUsage = "Start of the incident window (e.g. \"2024-03-01 09:00:00\", RFC3339, or 2024-03-01)"
	// MoveEndFlagName exposes the audit window end flag name.
	MoveEndFlagName = "move-end"
	// MoveEndFlagUsage describes the audit window end flag purpose.
	MoveEndFlagUsage = "End of the incident window (same layouts as --move-start)"
	// IPAddressFlagName exposes the actor IP filter flag name.
	IPAddressFlagName = "ip"
	// IPAddressFlagUsage describes the actor IP filter flag purpose.
	IPAddressFlagUsage = "Only consider moves performed from this IP address"

	windowTimeParseErrorTemplateConstant = "invalid %s value %q: expected one of %s"
	windowLayoutSeparatorConstant        = ", "
)

// WindowTimeLayouts lists the accepted layouts for window boundaries, tried in order.
var WindowTimeLayouts = []string{
	time.DateTime,
	time.RFC3339,
	time.DateOnly,
}

// AuditWindowFlagDefinition captures configuration for one audit window flag.
type AuditWindowFlagDefinition struct {
	Name    string
	Usage   string
	Enabled bool
}

// AuditWindowFlagDefinitions groups audit window flag definitions.
type AuditWindowFlagDefinitions struct {
	DriveID   AuditWindowFlagDefinition
	MoveStart AuditWindowFlagDefinition
	MoveEnd   AuditWindowFlagDefinition
	IPAddress AuditWindowFlagDefinition
}

// AuditWindowFlagValues stores audit window flag values as typed by the user.
type AuditWindowFlagValues struct {
	DriveID   string
	MoveStart string
	MoveEnd   string
	IPAddress string
}

// DefaultAuditWindowFlagDefinitions enables every audit window flag with its standard usage text.
func DefaultAuditWindowFlagDefinitions() AuditWindowFlagDefinitions {
	return AuditWindowFlagDefinitions{
		DriveID:   AuditWindowFlagDefinition{Name: DriveIDFlagName, Usage: DriveIDFlagUsage, Enabled: true},
		MoveStart: AuditWindowFlagDefinition{Name: MoveStartFlagName, Usage: MoveStartFlagUsage, Enabled: true},
		MoveEnd:   AuditWindowFlagDefinition{Name: MoveEndFlagName, Usage: MoveEndFlagUsage, Enabled: true},
		IPAddress: AuditWindowFlagDefinition{Name: IPAddressFlagName, Usage: IPAddressFlagUsage, Enabled: true},
	}
}

// BindAuditWindowFlags attaches audit window flags to the provided command.
func BindAuditWindowFlags(command *cobra.Command, defaults AuditWindowFlagValues, definitions AuditWindowFlagDefinitions) *AuditWindowFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	bindings := []struct {
		definition   AuditWindowFlagDefinition
		target       *string
		defaultValue string
	}{
		{definition: definitions.DriveID, target: &values.DriveID, defaultValue: defaults.DriveID},
		{definition: definitions.MoveStart, target: &values.MoveStart, defaultValue: defaults.MoveStart},
		{definition: definitions.MoveEnd, target: &values.MoveEnd, defaultValue: defaults.MoveEnd},
		{definition: definitions.IPAddress, target: &values.IPAddress, defaultValue: defaults.IPAddress},
	}
	for _, binding := range bindings {
		if !binding.definition.Enabled || len(binding.definition.Name) == 0 {
			continue
		}
		if flagSet.Lookup(binding.definition.Name) != nil {
			continue
		}
		flagSet.StringVar(binding.target, binding.definition.Name, binding.defaultValue, binding.definition.Usage)
	}

	return &values
}

// ParseWindowTime parses a window boundary using WindowTimeLayouts. Layouts without a zone are read as UTC.
func ParseWindowTime(flagName string, value string) (time.Time, error) {
	trimmedValue := strings.TrimSpace(value)
	for _, layout := range WindowTimeLayouts {
		parsedTime, parseError := time.ParseInLocation(layout, trimmedValue, time.UTC)
		if parseError == nil {
			return parsedTime, nil
		}
	}
	return time.Time{}, fmt.Errorf(windowTimeParseErrorTemplateConstant, flagName, value, strings.Join(WindowTimeLayouts, windowLayoutSeparatorConstant))
}
