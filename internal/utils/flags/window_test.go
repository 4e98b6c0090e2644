package flags

import (
	"fmt"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestBindAuditWindowFlagsUsesDefaultsAndParsesValues(testInstance *testing.T) {
	command := &cobra.Command{}

	values := BindAuditWindowFlags(command, AuditWindowFlagValues{DriveID: "configured-root"}, DefaultAuditWindowFlagDefinitions())
	require.Equal(testInstance, "configured-root", values.DriveID)

	parseError := command.ParseFlags([]string{
		"--drive-id", "root-folder",
		"--move-start", "2024-03-01 09:00:00",
		"--move-end", "2024-03-01T18:00:00Z",
		"--ip", "203.0.113.7",
	})
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, AuditWindowFlagValues{
		DriveID:   "root-folder",
		MoveStart: "2024-03-01 09:00:00",
		MoveEnd:   "2024-03-01T18:00:00Z",
		IPAddress: "203.0.113.7",
	}, *values)
}

func TestParseWindowTime(testInstance *testing.T) {
	testCases := []struct {
		name         string
		value        string
		expectedTime time.Time
		expectError  bool
	}{
		{name: "date_time", value: "2024-03-01 09:30:00", expectedTime: time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)},
		{name: "rfc3339_with_offset", value: "2024-03-01T09:30:00+02:00", expectedTime: time.Date(2024, time.March, 1, 7, 30, 0, 0, time.UTC)},
		{name: "date_only", value: " 2024-03-01 ", expectedTime: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{name: "invalid", value: "03/01/2024", expectError: true},
		{name: "empty", value: "", expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			parsedTime, parseError := ParseWindowTime(MoveStartFlagName, testCase.value)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				require.Contains(testInstance, parseError.Error(), MoveStartFlagName)
				return
			}
			require.NoError(testInstance, parseError)
			require.True(testInstance, testCase.expectedTime.Equal(parsedTime))
		})
	}
}
