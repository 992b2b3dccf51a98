package deploy

import (
	"time"

	"github.com/rileyhilliard/deployr/internal/logger"
)

// Deployer runs the pipelines for one Context.
type Deployer struct {
	ctx      Context
	cmds     *Commands
	reporter Reporter
	log      logger.Logger
	now      func() time.Time
}

// Option configures a Deployer.
type Option func(*Deployer)

// WithReporter sets where stage progress goes. Defaults to NopReporter.
func WithReporter(r Reporter) Option {
	return func(d *Deployer) { d.reporter = r }
}

// WithLogger sets the logger commands are traced to at debug level.
func WithLogger(l logger.Logger) Option {
	return func(d *Deployer) { d.log = l }
}

// WithClock overrides the time source used to name backups.
func WithClock(now func() time.Time) Option {
	return func(d *Deployer) { d.now = now }
}

// New validates ctx and returns a Deployer for it.
// A profile missing a field an enabled stage needs is rejected here, before
// any command runs.
func New(ctx Context, opts ...Option) (*Deployer, error) {
	cmds, err := NewCommands(ctx)
	if err != nil {
		return nil, err
	}

	d := &Deployer{
		ctx:      ctx,
		cmds:     cmds,
		reporter: NopReporter(),
		log:      logger.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Context returns the context the Deployer was built for.
func (d *Deployer) Context() Context {
	return d.ctx
}

// Commands returns the command builder, mostly useful to runners that need
// the remote working directory.
func (d *Deployer) Commands() *Commands {
	return d.cmds
}

// stage runs cmds in order under one progress line.
func (d *Deployer) stage(name string, r Runner, cmds ...string) error {
	d.reporter.StageStarted(name)
	for _, cmd := range cmds {
		if _, err := d.run(r, cmd); err != nil {
			d.reporter.StageFailed(name, err)
			return err
		}
	}
	d.reporter.StageSucceeded(name)
	return nil
}

// run executes one command and turns a non-success into an error.
func (d *Deployer) run(r Runner, cmd string) (Result, error) {
	d.log.Debug("run: %s", cmd)
	res := r.Run(cmd)
	if res.Command == "" {
		res.Command = cmd
	}
	if err := res.Failure(); err != nil {
		d.log.Debug("failed (exit %d): %s", res.ExitCode, cmd)
		return res, err
	}
	return res, nil
}
