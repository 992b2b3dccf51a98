package exec

import (
	"fmt"

	"github.com/rileyhilliard/deployr/internal/deploy"
	"github.com/rileyhilliard/deployr/internal/util"
	"github.com/rileyhilliard/deployr/pkg/sshutil"
)

// RemoteRunner runs pipeline commands on one host over SSH.
// Every command is prefixed with a cd into the deployment path.
type RemoteRunner struct {
	client  sshutil.SSHClient
	workDir string
	opts    Options
}

// NewRemoteRunner creates a runner that executes inside workDir on client's host.
func NewRemoteRunner(client sshutil.SSHClient, workDir string, opts Options) *RemoteRunner {
	return &RemoteRunner{client: client, workDir: workDir, opts: opts.withDefaults()}
}

// Host returns the host alias the runner is connected to.
func (r *RemoteRunner) Host() string {
	return r.client.GetHost()
}

// Run executes cmd on the remote host and captures its output.
func (r *RemoteRunner) Run(cmd string) deploy.Result {
	full := cmd
	if r.workDir != "" {
		full = fmt.Sprintf("cd %s && %s", util.ShellQuotePreserveTilde(r.workDir), cmd)
	}
	host := r.client.GetHost()
	r.opts.Log.Debug("[%s] run: %s", host, full)

	out := r.opts.capture(host, cmd)
	exitCode, err := r.client.ExecStream(full, out.Stdout(), out.Stderr())
	return r.opts.result(cmd, exitCode, err, out, "on "+host)
}
