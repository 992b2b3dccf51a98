package exec

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/deployr/internal/util"
)

// SSHExecer is an interface for executing SSH commands.
// This allows for easier testing and decoupling from the sshutil package.
type SSHExecer interface {
	Exec(cmd string) (stdout, stderr []byte, exitCode int, err error)
}

// ToolProbeResult holds results from probing for a tool on the remote.
type ToolProbeResult struct {
	Setting     string   // Profile key that configures the tool, e.g. php_bin
	Command     string   // Configured value, e.g. "/usr/bin/php8.2" or "php composer.phar"
	Found       bool     // Resolved by the non-interactive shell deploys run in
	Path        string   // Resolved path when Found
	CommonPaths []string // Other places the binary was found when not Found
}

// commonBinPaths are typical locations PHP tooling gets installed to.
// These use $HOME for expansion on the remote.
var commonBinPaths = []string{
	"/usr/local/bin",
	"/usr/bin",
	"/opt/remi/php82/root/usr/bin",
	"/opt/plesk/php/8.2/bin",
	"$HOME/bin",
	"$HOME/.composer/vendor/bin",
	"$HOME/.config/composer/vendor/bin",
}

// ProbeTool checks that the executable a profile setting points at can be
// started by the shell deploy commands run in. Only the first word of the
// setting is probed, so "php composer.phar" probes php.
func ProbeTool(client SSHExecer, setting, command string) (*ToolProbeResult, error) {
	if client == nil {
		return nil, fmt.Errorf("no SSH client provided")
	}

	result := &ToolProbeResult{Setting: setting, Command: command}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return result, nil
	}
	bin := fields[0]

	stdout, _, exitCode, err := client.Exec("command -v " + util.ShellQuote(bin))
	if err != nil {
		return nil, err
	}
	if exitCode == 0 && len(stdout) > 0 {
		result.Found = true
		result.Path = strings.TrimSpace(string(stdout))
		return result, nil
	}

	if strings.Contains(bin, "/") {
		return result, nil
	}
	for _, dir := range commonBinPaths {
		candidate := dir + "/" + bin
		stdout, _, exitCode, err := client.Exec(fmt.Sprintf(`test -x %s && echo %s`, candidate, candidate))
		if err != nil {
			return nil, err
		}
		if exitCode == 0 && len(stdout) > 0 {
			result.CommonPaths = append(result.CommonPaths, strings.TrimSpace(string(stdout)))
		}
	}

	return result, nil
}

// GenerateToolSuggestion explains how to fix a tool that was not found.
func GenerateToolSuggestion(result *ToolProbeResult, server string) string {
	if result == nil || result.Found {
		return ""
	}

	var sb strings.Builder

	if len(result.CommonPaths) > 0 {
		sb.WriteString(fmt.Sprintf("Found '%s' at %s but it's not in PATH.\n\n", result.Command, result.CommonPaths[0]))
		sb.WriteString("Point the profile at it:\n\n")
		sb.WriteString("  hosts:\n")
		sb.WriteString(fmt.Sprintf("    %s:\n", server))
		sb.WriteString(fmt.Sprintf("      %s: %s\n", result.Setting, toHomeRelative(result.CommonPaths[0])))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("'%s' wasn't found on the remote machine.\n\n", result.Command))
	sb.WriteString("Fixes:\n\n")
	sb.WriteString(fmt.Sprintf("  1. Install '%s' on the remote machine\n\n", toolName(result.Command)))
	sb.WriteString(fmt.Sprintf("  2. If installed, set %s to its full path:\n", result.Setting))
	sb.WriteString("     hosts:\n")
	sb.WriteString(fmt.Sprintf("       %s:\n", server))
	sb.WriteString(fmt.Sprintf("         %s: /full/path/to/binary\n", result.Setting))

	return sb.String()
}

// toolName is the executable a setting starts, without its directory.
func toolName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return command
	}
	return filepath.Base(fields[0])
}

// toHomeRelative converts absolute paths starting with common home patterns
// to $HOME-relative paths for portability across users.
func toHomeRelative(path string) string {
	prefixes := []string{
		"/Users/", // macOS
		"/home/",  // Linux
		"/root",   // root user
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			rest := path[len(prefix):]
			if prefix == "/root" {
				return "$HOME" + rest
			}
			// Skip past username to get the rest of the path
			if idx := strings.Index(rest, "/"); idx != -1 {
				return "$HOME" + rest[idx:]
			}
			return "$HOME"
		}
	}

	return path
}
