package restore

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/driverestore/internal/restore"
	"github.com/temirov/driverestore/internal/ui"
	"github.com/temirov/driverestore/internal/utils"
	flagutils "github.com/temirov/driverestore/internal/utils/flags"
)

const (
	auditCommandUseConstant              = "audit"
	auditCommandShortDescriptionConstant = "List the files an incident moved, grouped by original folder"
	auditCommandLongDescriptionConstant  = "audit reads the Drive move audit log for an incident window and prints the files grouped by the folder they came from. It never inspects or moves any file."
	auditRecordLineTemplateConstant      = "  %s (%s)\n"
	auditLineTemplateConstant            = "%s\n"
)

// AuditCommandBuilder assembles the read-only audit command.
type AuditCommandBuilder struct {
	LoggerProvider         LoggerProvider
	CollaboratorsResolver  CollaboratorsResolver
	RunIdentifierGenerator restore.RunIdentifierGenerator
	ConfigurationProvider  func() CommandConfiguration
}

// Build constructs the audit command.
func (builder *AuditCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   auditCommandUseConstant,
		Short: auditCommandShortDescriptionConstant,
		Long:  auditCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}

	windowValues := flagutils.BindAuditWindowFlags(command, flagutils.AuditWindowFlagValues{}, flagutils.DefaultAuditWindowFlagDefinitions())
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, windowValues)
	}

	return command, nil
}

func (builder *AuditCommandBuilder) run(command *cobra.Command, windowValues *flagutils.AuditWindowFlagValues) error {
	logger := resolveLogger(builder.LoggerProvider)
	configuration := resolveConfiguration(builder.ConfigurationProvider)

	runOptions, optionsError := resolveRunOptions(command, configuration, windowValues)
	if optionsError != nil {
		return optionsError
	}
	runOptions.Simulate = true

	if validationError := restore.ValidateRunOptions(runOptions); validationError != nil {
		return validationError
	}

	shareCommandInput(command)
	collaborators, resolveError := resolveCollaboratorsResolver(builder.CollaboratorsResolver)(command.Context(), command, configuration, logger)
	if resolveError != nil {
		return restore.FatalSetupError{Reason: collaboratorsUnavailableReasonConstant, Cause: resolveError}
	}

	service, serviceError := restore.NewService(restore.ServiceDependencies{
		Logger:                 logger,
		AuditLogFetcher:        collaborators.AuditLogFetcher,
		FileStateFetcher:       collaborators.FileStateFetcher,
		MoveApplier:            collaborators.MoveApplier,
		RunIdentifierGenerator: builder.RunIdentifierGenerator,
	})
	if serviceError != nil {
		return serviceError
	}

	plan, planError := service.Plan(command.Context(), runOptions)
	if planError != nil {
		return planError
	}

	return printPlan(utils.NewFlushingWriter(command.OutOrStdout()), plan)
}

func printPlan(writer io.Writer, plan restore.RunPlan) error {
	formatter := ui.ProgressEventFormatter{}
	if _, writeError := fmt.Fprintf(writer, auditLineTemplateConstant, formatter.BuildRunPlannedMessage(plan)); writeError != nil {
		return writeError
	}
	if len(plan.Malformed) > 0 {
		if _, writeError := fmt.Fprintf(writer, auditLineTemplateConstant, formatter.BuildMalformedEventsMessage(plan)); writeError != nil {
			return writeError
		}
	}

	for groupIndex, group := range plan.Groups {
		groupProgress := restore.ProgressSnapshot{
			Total:      plan.TotalRecords,
			GroupIndex: groupIndex + 1,
			GroupCount: len(plan.Groups),
			GroupSize:  len(group.Records),
		}
		if _, writeError := fmt.Fprintf(writer, auditLineTemplateConstant, formatter.BuildGroupStartedMessage(group, groupProgress)); writeError != nil {
			return writeError
		}
		for _, record := range group.Records {
			if _, writeError := fmt.Fprintf(writer, auditRecordLineTemplateConstant, record.FileName, record.FileID); writeError != nil {
				return writeError
			}
		}
	}
	return nil
}
