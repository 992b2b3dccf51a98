package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig   = "CONFIG"
	ErrSSH      = "SSH"
	ErrExec     = "EXEC"
	ErrRevision = "REVISION"
)

// Process exit codes for each error category.
const (
	ExitFailure  = 1
	ExitConfig   = 2
	ExitRevision = 3
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrSSH code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrSSH,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewCommandFailure reports a command that ran but did not succeed.
// The captured output becomes the cause so it is printed under the message.
func NewCommandFailure(cmd string, exitCode int, output string) *Error {
	e := &Error{
		Code:       ErrExec,
		Message:    fmt.Sprintf("Command failed with exit code %d: %s", exitCode, cmd),
		Suggestion: "Nothing after this step was run. Fix the problem and deploy again.",
	}
	if out := strings.TrimSpace(output); out != "" {
		e.Cause = errors.New(out)
	}
	return e
}

// NewRevisionNotFound reports an explicit rollback ref that could not be checked out.
func NewRevisionNotFound(revision string) *Error {
	return &Error{
		Code:       ErrRevision,
		Message:    fmt.Sprintf("Revision %s does not exist", revision),
		Suggestion: "Use a tag, branch or commit hash that exists on the remote, or a number of commits to go back.",
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", indent(e.Cause.Error())))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", indent(e.Suggestion)))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch {
	case IsCode(err, ErrConfig):
		return ExitConfig
	case IsCode(err, ErrRevision):
		return ExitRevision
	default:
		return ExitFailure
	}
}

// indent keeps multi-line causes aligned under the two-space margin.
func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
