package deploy

import "github.com/rileyhilliard/deployr/internal/errors"

// Result is the outcome of one command.
type Result struct {
	Command   string
	Succeeded bool

	// Output is the combined stdout and stderr of the command, used when
	// reporting failures.
	Output string

	// Stdout is standard output alone. Stages that parse what a command
	// printed read this, so shell warnings on stderr never leak into data.
	Stdout   string
	ExitCode int

	// Err is set by runners that could not execute the command at all, or
	// that already built a descriptive failure for it.
	Err error
}

// Failure returns nil for a successful result, otherwise the error to report.
func (r Result) Failure() error {
	if r.Succeeded {
		return nil
	}
	if r.Err != nil {
		return r.Err
	}
	return errors.NewCommandFailure(r.Command, r.ExitCode, r.Output)
}

// Runner executes a shell command and reports how it went.
// Implementations never return a zero Result: Command is always set.
type Runner interface {
	Run(cmd string) Result
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(cmd string) Result

// Run calls f(cmd).
func (f RunnerFunc) Run(cmd string) Result {
	return f(cmd)
}
