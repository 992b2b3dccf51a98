package exec

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rileyhilliard/deployr/internal/errors"
)

// commandNotFoundPatterns are regex patterns to detect "command not found" errors
// from various shells. These require exit code 127.
var commandNotFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)zsh: command not found: (\S+)`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?i)-bash: (\S+): No such file or directory`),
	regexp.MustCompile(`(?i)(\S+): not found`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
}

// dependencyNotFoundPatterns detect when a tool (like make) fails because
// a dependency command isn't available. These can have various exit codes.
var dependencyNotFoundPatterns = []*regexp.Regexp{
	// make: go: No such file or directory
	regexp.MustCompile(`(?i)make: (\S+): No such file or directory`),
	// npm: 'go' is not recognized as an internal or external command
	regexp.MustCompile(`(?i)'(\S+)' is not recognized`),
	// /bin/sh: go: not found (from scripts)
	regexp.MustCompile(`(?i)/bin/sh: (\S+): not found`),
	// env: go: No such file or directory (from #!/usr/bin/env go)
	regexp.MustCompile(`(?i)env: (\S+): No such file or directory`),
}

// IsCommandNotFound checks if the error output indicates a missing command.
// Returns the command name (if extractable) and whether it's a command-not-found error.
func IsCommandNotFound(stderr string, exitCode int) (string, bool) {
	// Exit code 127 is the standard for command not found
	if exitCode != 127 {
		return "", false
	}

	// Try to extract the command name from stderr
	for _, pattern := range commandNotFoundPatterns {
		if matches := pattern.FindStringSubmatch(stderr); len(matches) > 1 {
			return matches[1], true
		}
	}

	// Exit code is 127 but couldn't extract command name
	return "", true
}

// IsDependencyNotFound checks if a tool failed because a dependency command is missing.
// This catches cases like make failing because 'go' isn't installed.
// Returns the missing command name and whether it was detected.
func IsDependencyNotFound(stderr string) (string, bool) {
	for _, pattern := range dependencyNotFoundPatterns {
		if matches := pattern.FindStringSubmatch(stderr); len(matches) > 1 {
			return matches[1], true
		}
	}
	return "", false
}

// binarySettings maps tools a deploy calls to the profile key that overrides them.
var binarySettings = map[string]string{
	"php":      "php_bin",
	"composer": "composer_bin",
	"phpunit":  "phpunit_bin",
}

// HandleExecError wraps execution errors with helpful suggestions.
// It detects command-not-found errors and provides actionable fixes.
// where names the machine, e.g. "locally" or "on web1".
func HandleExecError(cmd string, output string, exitCode int, where string) error {
	cmdName, notFound := IsCommandNotFound(output, exitCode)

	if !notFound {
		cmdName, notFound = IsDependencyNotFound(output)
	}

	if !notFound {
		return nil
	}

	displayCmd := cmdName
	if displayCmd == "" {
		parts := strings.Fields(cmd)
		if len(parts) > 0 {
			displayCmd = parts[0]
		} else {
			displayCmd = "command"
		}
	}

	fix := fmt.Sprintf("1. Install '%s' %s", displayCmd, where)
	if key, ok := binarySettings[binaryName(displayCmd)]; ok {
		fix += fmt.Sprintf(`

2. If it lives outside PATH, point %s at it:
   hosts:
     your-server:
       %s: /full/path/to/%s`, key, key, binaryName(displayCmd))
	}

	suggestion := fmt.Sprintf(`'%s' wasn't found in the PATH of the shell running the command %s.

Fixes:

%s`, displayCmd, where, fix)

	return errors.New(errors.ErrExec,
		fmt.Sprintf("'%s' not found in PATH %s", displayCmd, where),
		suggestion)
}

// CommandFailure builds the error for a command that ran and exited non-zero.
// Missing binaries get a targeted suggestion, and the output is kept as the cause.
func CommandFailure(cmd string, exitCode int, output string, where string) error {
	failure := errors.NewCommandFailure(cmd, exitCode, output)

	var notFound *errors.Error
	if stderrors.As(HandleExecError(cmd, output, exitCode, where), &notFound) {
		failure.Message = notFound.Message
		failure.Suggestion = notFound.Suggestion
	}
	return failure
}

// binaryName strips the directory and version so "/usr/bin/php8.2" matches "php".
func binaryName(cmd string) string {
	return strings.TrimRight(filepath.Base(cmd), "0123456789.")
}
