// Package faults defines the kinded errors surfaced to MCP clients.
//
// Every per-invocation failure is reported as one of a small set of kinds so
// that callers can branch on the failure class (fix arguments vs. retry the
// backend) instead of string-matching opaque messages.
package faults

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies the failure class of an Error.
type Kind string

const (
	// KindConfiguration is fatal at startup; it is never produced per-invocation.
	KindConfiguration Kind = "ConfigurationError"
	// KindUnknownTool means the invocation named a tool not in the registry.
	KindUnknownTool Kind = "UnknownToolError"
	// KindMissingField means a required schema field was absent.
	KindMissingField Kind = "MissingFieldError"
	// KindTypeMismatch means a present field's value did not match its declared type.
	KindTypeMismatch Kind = "TypeMismatchError"
	// KindUnknownField means the arguments carried a field the schema does not declare.
	KindUnknownField Kind = "UnknownFieldError"
	// KindBackend means the generation backend itself failed.
	KindBackend Kind = "BackendError"
)

// Error is a machine-readable failure body surfaced back to the client.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Tool    string `json:"tool,omitempty"`
	Field   string `json:"field,omitempty"`
}

// Error returns a compact, single-line JSON string to keep tool_result payloads small.
func (e *Error) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// Configuration reports a fatal startup-time settings problem.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// UnknownTool reports an invocation naming an unregistered tool.
func UnknownTool(name string) *Error {
	return &Error{Kind: KindUnknownTool, Tool: name, Message: fmt.Sprintf("tool %q is not registered", name)}
}

// MissingField reports an absent required argument.
func MissingField(tool, field string) *Error {
	return &Error{Kind: KindMissingField, Tool: tool, Field: field, Message: fmt.Sprintf("required field %q is missing", field)}
}

// TypeMismatch reports an argument whose value does not conform to its declared type.
func TypeMismatch(tool, field, expected string) *Error {
	return &Error{Kind: KindTypeMismatch, Tool: tool, Field: field, Message: fmt.Sprintf("field %q must be of type %s", field, expected)}
}

// UnknownField reports an argument the schema does not declare.
func UnknownField(tool, field string) *Error {
	return &Error{Kind: KindUnknownField, Tool: tool, Field: field, Message: fmt.Sprintf("unknown field %q", field)}
}

// Backend wraps a failure raised by the generation backend, preserving the
// upstream message verbatim and recording the originating tool for diagnosis.
func Backend(tool string, err error) *Error {
	return &Error{Kind: KindBackend, Tool: tool, Message: err.Error()}
}

// KindOf classifies err. Errors that are not *Error default to KindBackend,
// since anything unexpected escaping a handler came from outside this layer.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindBackend
}

// As unwraps err into *Error when possible.
func As(err error) (*Error, bool) {
	var fe *Error
	ok := errors.As(err, &fe)
	return fe, ok
}
