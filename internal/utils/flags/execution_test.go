package flags

import (
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestBindExecutionFlagsTracksExplicitValues(testInstance *testing.T) {
	testCases := []struct {
		name           string
		arguments      []string
		expectedValues ExecutionFlagValues
	}{
		{
			name:           "defaults",
			arguments:      []string{},
			expectedValues: ExecutionFlagValues{},
		},
		{
			name:           "dry_run",
			arguments:      []string{"--dry-run"},
			expectedValues: ExecutionFlagValues{DryRun: true, DryRunSet: true},
		},
		{
			name:           "assume_yes_shorthand",
			arguments:      []string{"-y"},
			expectedValues: ExecutionFlagValues{AssumeYes: true, AssumeYesSet: true},
		},
		{
			name:           "explicit_false",
			arguments:      []string{"--dry-run=false"},
			expectedValues: ExecutionFlagValues{DryRunSet: true},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			command := &cobra.Command{}
			definitions := DefaultExecutionFlagDefinitions()
			BindExecutionFlags(command, ExecutionDefaults{}, definitions)

			require.NoError(testInstance, command.ParseFlags(testCase.arguments))
			require.Equal(testInstance, testCase.expectedValues, ReadExecutionFlags(command, definitions))
		})
	}
}
