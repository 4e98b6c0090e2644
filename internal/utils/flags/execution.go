// Package flags provides helpers for binding standardized restore flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Report what would be moved without moving any file"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Skip the confirmation prompt"
)

// ExecutionDefaults describes default flag values for mutating commands.
type ExecutionDefaults struct {
	DryRun    bool
	AssumeYes bool
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun    ExecutionFlagDefinition
	AssumeYes ExecutionFlagDefinition
}

// ExecutionFlagValues reports parsed execution flags and whether the user set them explicitly.
type ExecutionFlagValues struct {
	DryRun       bool
	DryRunSet    bool
	AssumeYes    bool
	AssumeYesSet bool
}

// DefaultExecutionFlagDefinitions enables --dry-run and --yes/-y with their standard usage text.
func DefaultExecutionFlagDefinitions() ExecutionFlagDefinitions {
	return ExecutionFlagDefinitions{
		DryRun:    ExecutionFlagDefinition{Name: DryRunFlagName, Usage: DryRunFlagUsage, Enabled: true},
		AssumeYes: ExecutionFlagDefinition{Name: AssumeYesFlagName, Usage: AssumeYesFlagUsage, Shorthand: AssumeYesFlagShorthand, Enabled: true},
	}
}

// BindExecutionFlags attaches execution flags to the provided command.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) {
	if command == nil {
		return
	}

	flagSet := command.Flags()

	bindBoolFlag(flagSet, definitions.DryRun, defaults.DryRun)
	bindBoolFlag(flagSet, definitions.AssumeYes, defaults.AssumeYes)
}

// ReadExecutionFlags extracts execution flag values bound by BindExecutionFlags.
func ReadExecutionFlags(command *cobra.Command, definitions ExecutionFlagDefinitions) ExecutionFlagValues {
	values := ExecutionFlagValues{}
	if command == nil {
		return values
	}

	values.DryRun, values.DryRunSet = readBoolFlag(command.Flags(), definitions.DryRun)
	values.AssumeYes, values.AssumeYesSet = readBoolFlag(command.Flags(), definitions.AssumeYes)
	return values
}

func bindBoolFlag(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition, defaultValue bool) {
	if flagSet == nil {
		return
	}
	if !definition.Enabled {
		return
	}
	if len(definition.Name) == 0 {
		return
	}

	if len(definition.Shorthand) > 0 {
		flagSet.BoolP(definition.Name, definition.Shorthand, defaultValue, definition.Usage)
		return
	}

	flagSet.Bool(definition.Name, defaultValue, definition.Usage)
}

func readBoolFlag(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition) (bool, bool) {
	if flagSet == nil || !definition.Enabled || len(definition.Name) == 0 {
		return false, false
	}
	flag := flagSet.Lookup(definition.Name)
	if flag == nil {
		return false, false
	}
	value, parseError := flagSet.GetBool(definition.Name)
	if parseError != nil {
		return false, false
	}
	return value, flag.Changed
}
