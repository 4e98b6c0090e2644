package restore

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/temirov/driverestore/internal/report"
	"github.com/temirov/driverestore/internal/restore"
	flagutils "github.com/temirov/driverestore/internal/utils/flags"
)

const (
	restoreCommandUseConstant              = "restore"
	restoreCommandShortDescriptionConstant = "Move files back to the folders they were moved out of"
	restoreCommandLongDescriptionConstant  = "restore reads the Drive move audit log for an incident window, then moves every file still sitting in the incident folder back to its original folder. Files whose location changed since the incident are skipped."
	reportFlagNameConstant                 = "report"
	reportFlagUsageConstant                = "Write the run summary to this path (\"-\" for standard output)"
	reportFormatFlagNameConstant           = "report-format"
	reportFormatFlagUsageConstant          = "Summary report format."
)

var reportFormatChoices = []string{string(report.FormatCSV), string(report.FormatJSON), string(report.FormatYAML)}

// CommandBuilder assembles the restore command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	PrompterFactory              PrompterFactory
	CollaboratorsResolver        CollaboratorsResolver
	RunIdentifierGenerator       restore.RunIdentifierGenerator
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the restore command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   restoreCommandUseConstant,
		Short: restoreCommandShortDescriptionConstant,
		Long:  restoreCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}

	windowValues := flagutils.BindAuditWindowFlags(command, flagutils.AuditWindowFlagValues{}, flagutils.DefaultAuditWindowFlagDefinitions())
	executionDefinitions := flagutils.DefaultExecutionFlagDefinitions()
	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, executionDefinitions)
	reportPath := command.Flags().String(reportFlagNameConstant, "", reportFlagUsageConstant)
	reportFormat := flagutils.BindChoiceFlag(
		command,
		flagutils.ChoiceFlagDefinition{Name: reportFormatFlagNameConstant, Description: reportFormatFlagUsageConstant, Choices: reportFormatChoices},
		string(report.FormatCSV),
	)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, windowValues, executionDefinitions, *reportPath, *reportFormat)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, windowValues *flagutils.AuditWindowFlagValues, executionDefinitions flagutils.ExecutionFlagDefinitions, reportPathFlagValue string, reportFormatFlagValue string) error {
	logger := resolveLogger(builder.LoggerProvider)
	configuration := resolveConfiguration(builder.ConfigurationProvider)

	runOptions, optionsError := resolveRunOptions(command, configuration, windowValues)
	if optionsError != nil {
		return optionsError
	}

	executionFlags := flagutils.ReadExecutionFlags(command, executionDefinitions)
	runOptions.Simulate = configuration.DryRun
	if executionFlags.DryRunSet {
		runOptions.Simulate = executionFlags.DryRun
	}
	runOptions.AssumeYes = configuration.AssumeYes
	if executionFlags.AssumeYesSet {
		runOptions.AssumeYes = executionFlags.AssumeYes
	}

	reportPath := configuration.ReportPath
	if command.Flags().Changed(reportFlagNameConstant) {
		reportPath = reportPathFlagValue
	}
	reportFormat := configuration.ReportFormat
	if command.Flags().Changed(reportFormatFlagNameConstant) {
		reportFormat = reportFormatFlagValue
	}
	if len(reportPath) > 0 {
		if _, formatError := report.ParseFormat(reportFormat); formatError != nil {
			return formatError
		}
	}

	if validationError := restore.ValidateRunOptions(runOptions); validationError != nil {
		return validationError
	}

	shareCommandInput(command)
	collaborators, resolveError := resolveCollaboratorsResolver(builder.CollaboratorsResolver)(command.Context(), command, configuration, logger)
	if resolveError != nil {
		return restore.FatalSetupError{Reason: collaboratorsUnavailableReasonConstant, Cause: resolveError}
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	service, serviceError := restore.NewService(restore.ServiceDependencies{
		Logger:                 logger,
		AuditLogFetcher:        collaborators.AuditLogFetcher,
		FileStateFetcher:       collaborators.FileStateFetcher,
		MoveApplier:            collaborators.MoveApplier,
		Prompter:               resolvePrompter(builder.PrompterFactory, command),
		Observer:               resolveObserver(command, logger, humanReadableLogging),
		RunIdentifierGenerator: builder.RunIdentifierGenerator,
	})
	if serviceError != nil {
		return serviceError
	}

	summary, runError := service.Run(command.Context(), runOptions)
	if errors.Is(runError, restore.ErrFatalSetup) {
		return runError
	}

	if !summary.Declined {
		if reportError := writeReport(command, logger, summary, reportPath, reportFormat); reportError != nil {
			return reportError
		}
	}

	if runError != nil {
		return runError
	}
	return summary.FailureError()
}
