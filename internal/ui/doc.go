// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate restore progress events into concise narration so that
// operators can follow a run while detailed telemetry continues to flow through
// structured loggers. The package also hosts the interactive confirmation
// prompter used before any file is moved.
package ui
