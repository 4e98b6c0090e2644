package restore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/driverestore/internal/googleauth"
	"github.com/temirov/driverestore/internal/googledrive"
	"github.com/temirov/driverestore/internal/report"
	"github.com/temirov/driverestore/internal/restore"
	"github.com/temirov/driverestore/internal/ui"
	"github.com/temirov/driverestore/internal/utils"
	flagutils "github.com/temirov/driverestore/internal/utils/flags"
)

const (
	reportsAuthorizationErrorTemplateConstant = "unable to authorize audit reports access: %w"
	driveAuthorizationErrorTemplateConstant   = "unable to authorize drive access: %w"
	googleClientErrorTemplateConstant         = "unable to construct google client: %w"
	reportFileCreateErrorTemplateConstant     = "unable to create report file %s: %w"
	reportWriteErrorTemplateConstant          = "unable to write report: %w"
	reportFileCloseErrorTemplateConstant      = "unable to close report file %s: %w"
	reportWrittenMessageConstant              = "summary report written"
	logFieldReportPathConstant                = "report_path"
	logFieldReportFormatConstant              = "report_format"
	standardOutputReportPathConstant          = "-"
	reportFilePermissionsConstant             = 0o644
	collaboratorsUnavailableReasonConstant    = "unable to prepare google api access"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// PrompterFactory constructs confirmation prompters scoped to a command.
type PrompterFactory func(*cobra.Command) restore.ConfirmationPrompter

// Collaborators bundles the transport adapters a reconciliation run depends on.
type Collaborators struct {
	AuditLogFetcher  restore.AuditLogFetcher
	FileStateFetcher restore.FileStateFetcher
	MoveApplier      restore.MoveApplier
}

// CollaboratorsResolver builds transport adapters for the effective configuration.
type CollaboratorsResolver func(executionContext context.Context, command *cobra.Command, configuration CommandConfiguration, logger *zap.Logger) (Collaborators, error)

// ResolveGoogleCollaborators authorizes against the Admin Reports and Drive APIs and returns a shared client.
func ResolveGoogleCollaborators(executionContext context.Context, command *cobra.Command, configuration CommandConfiguration, logger *zap.Logger) (Collaborators, error) {
	authorizer := googleauth.NewAuthorizer(command.InOrStdin(), command.ErrOrStderr(), logger)

	reportsHTTPClient, reportsError := authorizer.HTTPClient(
		executionContext,
		googleauth.CredentialFiles{
			CredentialsFile: configuration.Credentials.ReportsCredentialsFile,
			TokenFile:       configuration.Credentials.ReportsTokenFile,
		},
		googleauth.ReportsAuditReadonlyScope,
	)
	if reportsError != nil {
		return Collaborators{}, fmt.Errorf(reportsAuthorizationErrorTemplateConstant, reportsError)
	}

	driveHTTPClient, driveError := authorizer.HTTPClient(
		executionContext,
		googleauth.CredentialFiles{
			CredentialsFile: configuration.Credentials.DriveCredentialsFile,
			TokenFile:       configuration.Credentials.DriveTokenFile,
		},
		googleauth.DriveScope,
		googleauth.DriveMetadataScope,
	)
	if driveError != nil {
		return Collaborators{}, fmt.Errorf(driveAuthorizationErrorTemplateConstant, driveError)
	}

	client, clientError := googledrive.NewClientFromOptions(executionContext, googledrive.ServiceOptions{
		ReportsHTTPClient: reportsHTTPClient,
		DriveHTTPClient:   driveHTTPClient,
		RequestsPerSecond: configuration.RequestsPerSecond,
		Logger:            logger,
	})
	if clientError != nil {
		return Collaborators{}, fmt.Errorf(googleClientErrorTemplateConstant, clientError)
	}

	return Collaborators{AuditLogFetcher: client, FileStateFetcher: client, MoveApplier: client}, nil
}

// shareCommandInput replaces the command input with one buffered reader so the authorization code
// prompt and the confirmation prompt consume successive lines of the same stream.
func shareCommandInput(command *cobra.Command) {
	command.SetIn(utils.NewLineReader(command.InOrStdin()))
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolvePrompter(factory PrompterFactory, command *cobra.Command) restore.ConfirmationPrompter {
	if factory != nil {
		prompter := factory(command)
		if prompter != nil {
			return prompter
		}
	}
	return ui.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
}

func resolveCollaboratorsResolver(resolver CollaboratorsResolver) CollaboratorsResolver {
	if resolver == nil {
		return ResolveGoogleCollaborators
	}
	return resolver
}

func resolveObserver(command *cobra.Command, logger *zap.Logger, humanReadableLogging bool) restore.ProgressObserver {
	if humanReadableLogging {
		return ui.NewConsoleProgressLogger(logger)
	}
	return ui.NewWriterProgressReporter(command.OutOrStdout(), nil)
}

func resolveConfiguration(provider func() CommandConfiguration) CommandConfiguration {
	if provider == nil {
		return DefaultCommandConfiguration().Sanitize()
	}
	return provider().Sanitize()
}

// resolveRunOptions merges the audit window flags with configuration, preferring flags only when changed.
func resolveRunOptions(command *cobra.Command, configuration CommandConfiguration, windowValues *flagutils.AuditWindowFlagValues) (restore.RunOptions, error) {
	options := restore.RunOptions{
		ScopeFolderID:  configuration.DriveID,
		ActorIPAddress: configuration.IPAddress,
	}
	if command.Flags().Changed(flagutils.DriveIDFlagName) {
		options.ScopeFolderID = strings.TrimSpace(windowValues.DriveID)
	}
	if command.Flags().Changed(flagutils.IPAddressFlagName) {
		options.ActorIPAddress = strings.TrimSpace(windowValues.IPAddress)
	}

	if len(strings.TrimSpace(windowValues.MoveStart)) > 0 {
		moveStart, parseError := flagutils.ParseWindowTime(flagutils.MoveStartFlagName, windowValues.MoveStart)
		if parseError != nil {
			return restore.RunOptions{}, parseError
		}
		options.MoveStart = moveStart
	}
	if len(strings.TrimSpace(windowValues.MoveEnd)) > 0 {
		moveEnd, parseError := flagutils.ParseWindowTime(flagutils.MoveEndFlagName, windowValues.MoveEnd)
		if parseError != nil {
			return restore.RunOptions{}, parseError
		}
		options.MoveEnd = moveEnd
	}

	return options, nil
}

// writeReport persists the run summary when a report path is configured; "-" selects the command output.
func writeReport(command *cobra.Command, logger *zap.Logger, summary restore.RunSummary, reportPath string, reportFormat string) error {
	if len(reportPath) == 0 {
		return nil
	}

	format, formatError := report.ParseFormat(reportFormat)
	if formatError != nil {
		return formatError
	}

	if reportPath == standardOutputReportPathConstant {
		if writeError := report.WriteSummary(command.OutOrStdout(), summary, format); writeError != nil {
			return fmt.Errorf(reportWriteErrorTemplateConstant, writeError)
		}
		return nil
	}

	reportFile, createError := os.OpenFile(reportPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, reportFilePermissionsConstant)
	if createError != nil {
		return fmt.Errorf(reportFileCreateErrorTemplateConstant, reportPath, createError)
	}

	if writeError := report.WriteSummary(reportFile, summary, format); writeError != nil {
		_ = reportFile.Close()
		return fmt.Errorf(reportWriteErrorTemplateConstant, writeError)
	}
	if closeError := reportFile.Close(); closeError != nil {
		return fmt.Errorf(reportFileCloseErrorTemplateConstant, reportPath, closeError)
	}

	logger.Info(
		reportWrittenMessageConstant,
		zap.String(logFieldReportPathConstant, reportPath),
		zap.String(logFieldReportFormatConstant, string(format)),
	)
	return nil
}
