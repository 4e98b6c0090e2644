package restore

import (
	"strings"

	"github.com/temirov/driverestore/internal/report"
	pathutils "github.com/temirov/driverestore/internal/utils/path"
)

const (
	driveIDConfigurationKeyConstant                = "drive_id"
	ipAddressConfigurationKeyConstant              = "ip_address"
	dryRunConfigurationKeyConstant                 = "dry_run"
	assumeYesConfigurationKeyConstant              = "assume_yes"
	reportPathConfigurationKeyConstant             = "report_path"
	reportFormatConfigurationKeyConstant           = "report_format"
	requestsPerSecondConfigurationKeyConstant      = "requests_per_second"
	reportsCredentialsFileConfigurationKeyConstant = "credentials.reports_credentials_file"
	reportsTokenFileConfigurationKeyConstant       = "credentials.reports_token_file"
	driveCredentialsFileConfigurationKeyConstant   = "credentials.drive_credentials_file"
	driveTokenFileConfigurationKeyConstant         = "credentials.drive_token_file"
	configurationKeySeparatorConstant              = "."

	defaultRequestsPerSecondConstant      = 8
	defaultReportsCredentialsFileConstant = "admin_sdk_credentials.json"
	defaultReportsTokenFileConstant       = "token-reports.json"
	defaultDriveCredentialsFileConstant   = "drive_credentials.json"
	defaultDriveTokenFileConstant         = "token-drive.json"
)

// CredentialsConfiguration locates OAuth client secrets and cached tokens for both Google APIs.
type CredentialsConfiguration struct {
	ReportsCredentialsFile string `mapstructure:"reports_credentials_file"`
	ReportsTokenFile       string `mapstructure:"reports_token_file"`
	DriveCredentialsFile   string `mapstructure:"drive_credentials_file"`
	DriveTokenFile         string `mapstructure:"drive_token_file"`
}

// CommandConfiguration captures configuration values for the restore and audit commands.
type CommandConfiguration struct {
	DriveID           string                   `mapstructure:"drive_id"`
	IPAddress         string                   `mapstructure:"ip_address"`
	DryRun            bool                     `mapstructure:"dry_run"`
	AssumeYes         bool                     `mapstructure:"assume_yes"`
	ReportPath        string                   `mapstructure:"report_path"`
	ReportFormat      string                   `mapstructure:"report_format"`
	RequestsPerSecond float64                  `mapstructure:"requests_per_second"`
	Credentials       CredentialsConfiguration `mapstructure:"credentials"`
}

// DefaultCommandConfiguration provides the default restore settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ReportFormat:      string(report.FormatCSV),
		RequestsPerSecond: defaultRequestsPerSecondConstant,
		Credentials: CredentialsConfiguration{
			ReportsCredentialsFile: defaultReportsCredentialsFileConstant,
			ReportsTokenFile:       defaultReportsTokenFileConstant,
			DriveCredentialsFile:   defaultDriveCredentialsFileConstant,
			DriveTokenFile:         defaultDriveTokenFileConstant,
		},
	}
}

// DefaultConfigurationValues exposes the default settings keyed beneath rootKey for the configuration loader.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	values := map[string]any{
		driveIDConfigurationKeyConstant:                defaults.DriveID,
		ipAddressConfigurationKeyConstant:              defaults.IPAddress,
		dryRunConfigurationKeyConstant:                 defaults.DryRun,
		assumeYesConfigurationKeyConstant:              defaults.AssumeYes,
		reportPathConfigurationKeyConstant:             defaults.ReportPath,
		reportFormatConfigurationKeyConstant:           defaults.ReportFormat,
		requestsPerSecondConfigurationKeyConstant:      defaults.RequestsPerSecond,
		reportsCredentialsFileConfigurationKeyConstant: defaults.Credentials.ReportsCredentialsFile,
		reportsTokenFileConfigurationKeyConstant:       defaults.Credentials.ReportsTokenFile,
		driveCredentialsFileConfigurationKeyConstant:   defaults.Credentials.DriveCredentialsFile,
		driveTokenFileConfigurationKeyConstant:         defaults.Credentials.DriveTokenFile,
	}

	trimmedRootKey := strings.TrimSpace(rootKey)
	if len(trimmedRootKey) == 0 {
		return values
	}

	prefixed := make(map[string]any, len(values))
	for key, value := range values {
		prefixed[trimmedRootKey+configurationKeySeparatorConstant+key] = value
	}
	return prefixed
}

// Sanitize trims identifiers, expands home-relative paths, and restores defaults for blank settings.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	return configuration.sanitizeWith(pathutils.NewHomeExpander())
}

func (configuration CommandConfiguration) sanitizeWith(expander *pathutils.HomeExpander) CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration
	sanitized.DriveID = strings.TrimSpace(configuration.DriveID)
	sanitized.IPAddress = strings.TrimSpace(configuration.IPAddress)
	sanitized.ReportFormat = strings.ToLower(strings.TrimSpace(configuration.ReportFormat))
	if len(sanitized.ReportFormat) == 0 {
		sanitized.ReportFormat = defaults.ReportFormat
	}
	if sanitized.RequestsPerSecond < 0 {
		sanitized.RequestsPerSecond = 0
	}

	expander.ExpandInPlace(
		&sanitized.ReportPath,
		&sanitized.Credentials.ReportsCredentialsFile,
		&sanitized.Credentials.ReportsTokenFile,
		&sanitized.Credentials.DriveCredentialsFile,
		&sanitized.Credentials.DriveTokenFile,
	)
	if len(sanitized.Credentials.ReportsCredentialsFile) == 0 {
		sanitized.Credentials.ReportsCredentialsFile = defaults.Credentials.ReportsCredentialsFile
	}
	if len(sanitized.Credentials.ReportsTokenFile) == 0 {
		sanitized.Credentials.ReportsTokenFile = defaults.Credentials.ReportsTokenFile
	}
	if len(sanitized.Credentials.DriveCredentialsFile) == 0 {
		sanitized.Credentials.DriveCredentialsFile = defaults.Credentials.DriveCredentialsFile
	}
	if len(sanitized.Credentials.DriveTokenFile) == 0 {
		sanitized.Credentials.DriveTokenFile = defaults.Credentials.DriveTokenFile
	}
	return sanitized
}
