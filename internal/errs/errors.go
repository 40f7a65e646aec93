// Package errs defines the structured failure type shared by every stage of
// the synthesis pipeline.
//
// Every core failure is recoverable at the request boundary: requests are
// independent and read-only shared state (catalog, vocabulary) is never
// touched on the failure path. The boundary converts an *Error into a
// {success:false, reason} result instead of propagating it.
package errs

import (
	"errors"
	"fmt"
)

// Code categorizes synthesis failures.
type Code string

const (
	// CodeSchemaInvalid indicates the schema document has no parseable table section.
	CodeSchemaInvalid Code = "SCHEMA_INVALID"

	// CodeUnresolvedTable indicates no candidate table matches the schema.
	CodeUnresolvedTable Code = "UNRESOLVED_TABLE"

	// CodeNoProjectionColumns indicates the SELECT list resolved empty.
	CodeNoProjectionColumns Code = "NO_PROJECTION_COLUMNS"

	// CodeHavingWithoutAggregation indicates HAVING was requested but no
	// aggregation was detected.
	CodeHavingWithoutAggregation Code = "HAVING_WITHOUT_AGGREGATION"

	// CodeConditionUnresolved indicates a WHERE/HAVING fragment could not be
	// bound to any column.
	CodeConditionUnresolved Code = "CONDITION_UNRESOLVED"

	// CodeUnresolvedJoinRelationship indicates no FK/PK pairing exists
	// between two join candidates.
	CodeUnresolvedJoinRelationship Code = "UNRESOLVED_JOIN_RELATIONSHIP"

	// CodeGrammarDeadEnd indicates the grammar mask emptied the vocabulary.
	CodeGrammarDeadEnd Code = "GRAMMAR_DEAD_END"

	// CodeRenderFailed indicates the AST has no resolvable FROM table.
	CodeRenderFailed Code = "RENDER_FAILED"

	// CodeInvalidSQL indicates rendered SQL was rejected by the syntax check.
	CodeInvalidSQL Code = "INVALID_SQL"

	// CodeInternal indicates an unexpected failure (recovered panic).
	CodeInternal Code = "INTERNAL"
)

// Error is a synthesis failure with a machine-readable code.
type Error struct {
	// Code identifies the failure category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Details contains additional context (offending fragment, tables, ...).
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// With returns a copy of e carrying an extra detail.
func (e *Error) With(key, value string) *Error {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Message: e.Message, Details: details}
}

// CodeOf extracts the code from err, looking through wrapping.
// Returns CodeInternal for errors that are not *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// NewRenderError creates a RENDER_FAILED error.
func NewRenderError(format string, args ...any) *Error {
	return New(CodeRenderFailed, format, args...)
}

// NewConditionError creates a CONDITION_UNRESOLVED error for a fragment.
func NewConditionError(fragment string) *Error {
	return New(CodeConditionUnresolved, "failed to resolve column in condition %q", fragment).
		With("fragment", fragment)
}

// NewJoinRelationshipError creates an UNRESOLVED_JOIN_RELATIONSHIP error.
func NewJoinRelationshipError(left, right string) *Error {
	return New(CodeUnresolvedJoinRelationship, "no join relationship between %s and %s", left, right).
		With("left", left).
		With("right", right)
}
