package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrSSH,
		ErrExec,
		ErrRevision,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Server staging does not exist in configuration file",
			suggestion: "Available servers: production",
		},
		{
			name:       "ssh error",
			code:       ErrSSH,
			message:    "Can't reach 'web1'",
			suggestion: "Make sure the host is reachable",
		},
		{
			name:       "exec error",
			code:       ErrExec,
			message:    "Command failed with exit code 1",
			suggestion: "Check command output for details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check hosts.yml syntax"),
			expectedParts: []string{"✗ Invalid configuration", "Check hosts.yml syntax"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrExec, "Command failed", ""),
			expectedParts: []string{"Command failed"},
			notExpected:   []string{"\n\n"},
		},
		{
			name:          "multi-line cause is indented",
			err:           WrapWithCode(errors.New("line one\nline two"), ErrExec, "Failed", ""),
			expectedParts: []string{"  line one\n  line two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying network error")
	wrapped := Wrap(cause, "SSH connection failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrSSH, wrapped.Code, "Wrap should default to ErrSSH code")
	assert.Equal(t, cause, wrapped.Cause)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("file not found")
	wrapped := WrapWithCode(cause, ErrConfig, "Failed to load config", "Create app/config/hosts.yml")

	assert.Equal(t, ErrConfig, wrapped.Code)
	assert.Equal(t, "Create app/config/hosts.yml", wrapped.Suggestion)
	assert.Equal(t, cause, wrapped.Unwrap())
	assert.Contains(t, wrapped.Error(), "file not found")
}

func TestNewCommandFailure(t *testing.T) {
	err := NewCommandFailure("git pull origin 'master'", 1, "  fatal: not a git repository\n")

	assert.Equal(t, ErrExec, err.Code)
	assert.Contains(t, err.Message, "exit code 1")
	assert.Contains(t, err.Message, "git pull origin 'master'")
	require.NotNil(t, err.Cause)
	assert.Equal(t, "fatal: not a git repository", err.Cause.Error())
}

func TestNewCommandFailureWithoutOutput(t *testing.T) {
	err := NewCommandFailure("composer update", 2, "   ")
	assert.Nil(t, err.Cause)
}

func TestNewRevisionNotFound(t *testing.T) {
	err := NewRevisionNotFound("v1.2.0")

	assert.Equal(t, ErrRevision, err.Code)
	assert.True(t, strings.HasPrefix(err.Error(), "✗ Revision v1.2.0 does not exist"))
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrSSH))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"config", New(ErrConfig, "x", ""), ExitConfig},
		{"revision", NewRevisionNotFound("v1"), ExitRevision},
		{"command failure", NewCommandFailure("ls", 2, ""), ExitFailure},
		{"plain error", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
