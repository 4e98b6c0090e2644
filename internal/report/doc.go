// Package report renders restore run summaries as CSV, JSON, or YAML documents.
package report
