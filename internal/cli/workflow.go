package cli

import (
	"io"
	"os"
	"time"

	"github.com/rileyhilliard/deployr/internal/config"
	"github.com/rileyhilliard/deployr/internal/deploy"
	"github.com/rileyhilliard/deployr/internal/errors"
	"github.com/rileyhilliard/deployr/internal/exec"
	"github.com/rileyhilliard/deployr/internal/host"
	"github.com/rileyhilliard/deployr/internal/logger"
	"github.com/rileyhilliard/deployr/internal/ui"
	"github.com/rileyhilliard/deployr/pkg/sshutil"
)

// WorkflowOptions configures workflow setup behavior.
type WorkflowOptions struct {
	ConfigPath string        // Explicit hosts file, empty to search
	Server     string        // Server profile name
	Env        string        // Environment override
	Verbose    bool          // Stream raw command output
	Timeout    time.Duration // SSH dial timeout
	WorkDir    string        // Local checkout for pre-deploy, empty for cwd

	Out  io.Writer     // Progress output, defaults to os.Stdout
	Dial host.DialFunc // Replaces sshutil.Dial in tests
	Log  logger.Logger
}

// optionsFromFlags builds workflow options from the global flags.
func optionsFromFlags() WorkflowOptions {
	return WorkflowOptions{
		ConfigPath: Config(),
		Server:     Server(),
		Env:        Env(),
		Verbose:    Verbose(),
		Timeout:    Timeout(),
	}
}

// WorkflowContext holds the resolved profile and the pipeline wired to the
// terminal for one invocation.
type WorkflowContext struct {
	Server   string
	Profile  config.ServerProfile
	Deployer *deploy.Deployer
	Display  *ui.StageDisplay

	opts      WorkflowOptions
	connector *host.Connector
}

// SetupWorkflow loads the hosts file, resolves and validates the server
// profile and builds the deployer. No command runs and no host is dialed.
func SetupWorkflow(opts WorkflowOptions) (*WorkflowContext, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Log == nil {
		opts.Log = logger.Default()
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	profile, err := cfg.Profile(opts.Server)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateProfile(opts.Server, profile); err != nil {
		return nil, err
	}

	display := ui.NewStageDisplay(opts.Out, opts.Verbose)
	ctx := deploy.NewContext(opts.Server, opts.Env, profile)
	deployer, err := deploy.New(ctx,
		deploy.WithReporter(display),
		deploy.WithLogger(opts.Log),
	)
	if err != nil {
		return nil, err
	}

	connectorOpts := []host.Option{
		host.WithLogger(opts.Log),
		host.WithEventHandler(connectionReporter(display)),
	}
	if opts.Dial != nil {
		connectorOpts = append(connectorOpts, host.WithDialer(opts.Dial))
	}

	return &WorkflowContext{
		Server:   opts.Server,
		Profile:  profile,
		Deployer: deployer,
		Display:  display,
		opts:     opts,
		connector: host.NewConnector(sshutil.DialOptions{
			Timeout:      opts.Timeout,
			ForwardAgent: profile.ForwardAgent,
		}, connectorOpts...),
	}, nil
}

// connectionReporter prints the host header and a "Connecting to" stage
// line for every dial the connector makes.
func connectionReporter(display *ui.StageDisplay) host.EventHandler {
	return func(ev host.ConnectionEvent) {
		stage := "Connecting to " + ev.Host
		switch ev.Type {
		case host.EventTrying:
			display.Host(ev.Host, ev.Index, ev.Total)
			display.StageStarted(stage)
		case host.EventConnected:
			display.StageSucceeded(stage)
		case host.EventFailed:
			display.StageFailed(stage, ev.Error)
		}
	}
}

// loadConfig finds and parses the hosts file.
func loadConfig(explicit string) (*config.File, error) {
	cfgPath, err := config.Find(explicit)
	if err != nil {
		return nil, err
	}
	if cfgPath == "" {
		return nil, errors.New(errors.ErrConfig,
			"Config file "+config.DefaultConfigPath+" does not exist",
			"Run 'deployr init' to create one, or point to it with --config")
	}
	return config.Load(cfgPath)
}

func (w *WorkflowContext) runnerOptions() exec.Options {
	return exec.Options{Verbose: w.opts.Verbose, Stream: w.opts.Out, Log: w.opts.Log}
}

// Local returns the runner for the local checkout.
func (w *WorkflowContext) Local() deploy.Runner {
	return exec.NewLocalRunner(w.opts.WorkDir, w.runnerOptions())
}

// EachHost connects to every profile host in order and calls fn with a
// runner rooted at the deployment path. The first failure stops the run.
func (w *WorkflowContext) EachHost(fn func(remote deploy.Runner) error) error {
	hosts := w.Profile.Hosts
	return w.connector.Each(hosts, func(conn *host.Connection, _ int) error {
		return fn(exec.NewRemoteRunner(conn.Client, w.Profile.Path, w.runnerOptions()))
	})
}

// FirstHost connects to the first profile host only.
func (w *WorkflowContext) FirstHost(fn func(remote deploy.Runner) error) error {
	if len(w.Profile.Hosts) == 0 {
		return w.EachHost(fn)
	}
	return w.connector.Each(w.Profile.Hosts[:1], func(conn *host.Connection, _ int) error {
		return fn(exec.NewRemoteRunner(conn.Client, w.Profile.Path, w.runnerOptions()))
	})
}
