// Package cli constructs the drive-restore command-line interface, wiring the
// Cobra command hierarchy, the layered configuration loader, and structured
// logging. The restore and audit subcommands live in the restore subpackage.
package cli
