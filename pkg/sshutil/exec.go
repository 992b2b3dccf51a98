package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/rileyhilliard/deployr/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Exec runs a command on the remote host and returns the output.
// Returns stdout, stderr, exit code, and any error.
// Exit code is -1 if the command couldn't be executed at all.
func (c *Client) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	var stdoutBuf, stderrBuf bytes.Buffer
	exitCode, err = c.ExecStream(cmd, &stdoutBuf, &stderrBuf)
	if err != nil {
		return nil, nil, exitCode, err
	}
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitCode, nil
}

// ExecStream runs a command and streams output to the provided writers.
// Returns the exit code and any error.
// Exit code is -1 if the command couldn't be executed at all.
func (c *Client) ExecStream(cmd string, stdout, stderr io.Writer) (exitCode int, err error) {
	session, err := c.newSession()
	if err != nil {
		return -1, err
	}
	defer session.Close()

	session.Stdout = stdout
	session.Stderr = stderr

	return exitStatus(cmd, session.Run(cmd))
}

// exitStatus separates "ran and failed" from "never ran".
func exitStatus(cmd string, runErr error) (int, error) {
	if runErr == nil {
		return 0, nil
	}

	var exitErr *ssh.ExitError
	if stderrors.As(runErr, &exitErr) {
		return exitErr.ExitStatus(), nil
	}

	var missing *ssh.ExitMissingError
	if stderrors.As(runErr, &missing) {
		return -1, errors.WrapWithCode(runErr, errors.ErrSSH,
			fmt.Sprintf("Lost the connection while running: %s", cmd),
			"The remote side closed the session without an exit status. Check the host and try again.")
	}

	return -1, errors.WrapWithCode(runErr, errors.ErrExec,
		fmt.Sprintf("Failed to execute command: %s", cmd),
		"Check if the command exists on the remote host.")
}
