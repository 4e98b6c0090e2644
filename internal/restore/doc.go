// Package restore implements the reconciliation engine that returns files
// erroneously moved into a shared drive root back to their original folders.
//
// It parses audit events into RestoreRecord values, groups them by origin
// folder, re-validates each file against its live state, and issues a single
// atomic reparenting call per file. Service drives the workflow, CommandBuilder
// wires it into Cobra, and the narrow collaborator interfaces in
// dependencies.go keep the Google transports substitutable in tests.
package restore
