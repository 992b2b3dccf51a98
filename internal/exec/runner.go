// Package exec runs pipeline commands locally or over SSH and turns their
// exit status into deploy.Result values.
package exec

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rileyhilliard/deployr/internal/deploy"
	"github.com/rileyhilliard/deployr/internal/logger"
)

// Options controls how runners surface command output.
type Options struct {
	// Verbose streams every command and its raw output to Stream.
	Verbose bool

	// Stream receives verbose output. Defaults to os.Stdout.
	Stream io.Writer

	Log logger.Logger
}

func (o Options) withDefaults() Options {
	if o.Stream == nil {
		o.Stream = os.Stdout
	}
	if o.Log == nil {
		o.Log = logger.Default()
	}
	return o
}

// capture collects a command's output. Stdout and stderr arrive from
// separate goroutines, so every write goes through mu.
type capture struct {
	mu       sync.Mutex
	combined bytes.Buffer
	stdout   bytes.Buffer
	stream   io.Writer
}

// capture starts collecting output for cmd. In verbose mode the output is
// also copied to the stream.
func (o Options) capture(where, cmd string) *capture {
	c := &capture{}
	if o.Verbose {
		fmt.Fprintf(o.Stream, "[%s] run: %s\n", where, cmd)
		c.stream = o.Stream
	}
	return c
}

// Stdout returns the writer for the command's standard output.
func (c *capture) Stdout() io.Writer { return captureWriter{c: c, stdout: true} }

// Stderr returns the writer for the command's standard error.
func (c *capture) Stderr() io.Writer { return captureWriter{c: c} }

type captureWriter struct {
	c      *capture
	stdout bool
}

func (w captureWriter) Write(p []byte) (int, error) {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()

	w.c.combined.Write(p)
	if w.stdout {
		w.c.stdout.Write(p)
	}
	if w.c.stream != nil {
		_, _ = w.c.stream.Write(p)
	}
	return len(p), nil
}

// result converts an exit status into a deploy.Result. Execution errors are
// passed through unchanged; non-zero exits become command failures.
func (o Options) result(cmd string, exitCode int, err error, out *capture, where string) deploy.Result {
	out.mu.Lock()
	output := out.combined.String()
	stdout := out.stdout.String()
	out.mu.Unlock()

	res := deploy.Result{
		Command:  cmd,
		Output:   output,
		Stdout:   stdout,
		ExitCode: exitCode,
	}

	switch {
	case err != nil:
		res.Err = err
	case exitCode != 0:
		res.Err = CommandFailure(cmd, exitCode, output, where)
		o.Log.Debug("exit %d %s: %s", exitCode, where, cmd)
	default:
		res.Succeeded = true
	}
	return res
}
