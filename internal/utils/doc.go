// Package utils exposes reusable helpers consumed by the CLI commands.
//
// It houses the ConfigurationLoader, which layers embedded defaults, an
// optional configuration file, and DRIVERESTORE_* environment variables
// through Viper, and the LoggerFactory, which builds zap loggers in
// structured or console form.
package utils
