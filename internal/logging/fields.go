// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldDuration   = "duration"
	FieldCount      = "count"

	// Document fields.
	FieldDocument = "doc_id"
	FieldTitle    = "title"
	FieldTag      = "tag"
	FieldQuery    = "query"
	FieldStatus   = "status"

	// Render and sandbox fields.
	FieldLanguage = "language"
	FieldExitCode = "exit_code"
	FieldBytes    = "bytes"

	// Draft fields.
	FieldStore    = "store"
	FieldRestored = "restored"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
