package exec

import (
	"io"
	"os"
	"os/exec"

	"github.com/rileyhilliard/deployr/internal/deploy"
	"github.com/rileyhilliard/deployr/internal/errors"
)

// ExecuteLocal runs a command locally, streaming output to the provided writers.
// Returns the exit code and any execution error.
// This provides the same interface as SSH execution for consistent handling.
func ExecuteLocal(cmd string, workDir string, stdout, stderr io.Writer) (exitCode int, err error) {
	// Use shell to interpret the command (handles pipes, redirects, etc.)
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	command := exec.Command(shell, "-c", cmd)

	if workDir != "" {
		command.Dir = workDir
	}

	command.Stdout = stdout
	command.Stderr = stderr

	runErr := command.Run()
	if runErr != nil {
		// Check if it's an exit error (command ran but returned non-zero)
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		// Actual execution failure
		return -1, errors.WrapWithCode(runErr, errors.ErrExec,
			"Couldn't run the command locally",
			"Make sure the command exists and is executable.")
	}

	return 0, nil
}

// LocalRunner runs pipeline commands on this machine.
type LocalRunner struct {
	// WorkDir is the local checkout. Empty means the current directory.
	WorkDir string

	opts Options
}

// NewLocalRunner creates a runner for the local working copy.
func NewLocalRunner(workDir string, opts Options) *LocalRunner {
	return &LocalRunner{WorkDir: workDir, opts: opts.withDefaults()}
}

// Run executes cmd through the user's shell and captures its output.
func (r *LocalRunner) Run(cmd string) deploy.Result {
	r.opts.Log.Debug("local: %s", cmd)

	out := r.opts.capture("local", cmd)
	exitCode, err := ExecuteLocal(cmd, r.WorkDir, out.Stdout(), out.Stderr())
	return r.opts.result(cmd, exitCode, err, out, "locally")
}
