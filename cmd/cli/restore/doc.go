// Package restore wires the restore and audit commands to the reconciliation service,
// resolving Google API collaborators, confirmation prompts, and summary reports.
package restore
