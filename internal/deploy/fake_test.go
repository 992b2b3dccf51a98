package deploy

import (
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/deployr/internal/config"
	"github.com/rileyhilliard/deployr/internal/util"
	sshtesting "github.com/rileyhilliard/deployr/pkg/sshutil/testing"
	"github.com/stretchr/testify/require"
)

// fakeRunner records every command and answers from a script.
// Unscripted commands succeed with no output.
type fakeRunner struct {
	commands []string
	script   map[string]Result
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{script: make(map[string]Result)}
}

func (f *fakeRunner) Run(cmd string) Result {
	f.commands = append(f.commands, cmd)
	if res, ok := f.script[cmd]; ok {
		res.Command = cmd
		return res
	}
	return Result{Command: cmd, Succeeded: true}
}

func (f *fakeRunner) fail(cmd, output string) {
	f.script[cmd] = Result{Succeeded: false, ExitCode: 1, Output: output}
}

func (f *fakeRunner) respond(cmd, output string) {
	f.script[cmd] = Result{Succeeded: true, Output: output, Stdout: output}
}

func (f *fakeRunner) count(substr string) int {
	n := 0
	for _, c := range f.commands {
		if strings.Contains(c, substr) {
			n++
		}
	}
	return n
}

// mockRunner runs commands against a simulated host inside dir.
func mockRunner(client *sshtesting.MockClient, dir string) Runner {
	return RunnerFunc(func(cmd string) Result {
		stdout, stderr, code, err := client.Exec("cd " + util.ShellQuote(dir) + " && " + cmd)
		return Result{
			Command:   cmd,
			Succeeded: err == nil && code == 0,
			Output:    string(stdout) + string(stderr),
			Stdout:    string(stdout),
			ExitCode:  code,
			Err:       err,
		}
	})
}

type event struct {
	kind string
	name string
}

// recordingReporter keeps every callback in order.
type recordingReporter struct {
	events []event
}

func (r *recordingReporter) StageStarted(name string)       { r.add("start", name) }
func (r *recordingReporter) StageSucceeded(name string)     { r.add("ok", name) }
func (r *recordingReporter) StageFailed(name string, _ error) { r.add("fail", name) }
func (r *recordingReporter) Done(message string)            { r.add("done", message) }
func (r *recordingReporter) Warn(message string)            { r.add("warn", message) }

func (r *recordingReporter) add(kind, name string) {
	r.events = append(r.events, event{kind, name})
}

func (r *recordingReporter) has(kind, name string) bool {
	for _, e := range r.events {
		if e.kind == kind && e.name == name {
			return true
		}
	}
	return false
}

func (r *recordingReporter) started() []string {
	var names []string
	for _, e := range r.events {
		if e.kind == "start" {
			names = append(names, e.name)
		}
	}
	return names
}

// baseProfile has every optional stage switched off.
func baseProfile() config.ServerProfile {
	return config.ServerProfile{
		Branch:      "master",
		Path:        "/var/www/app",
		Hosts:       []string{"web1"},
		PHPBin:      "php",
		ComposerBin: "composer",
		PHPUnitBin:  "phpunit",
		Console:     "app/console",
		Environment: "prod",
	}
}

var fixedNow = time.Unix(1700000000, 0)

func newDeployer(t *testing.T, p config.ServerProfile) (*Deployer, *recordingReporter) {
	t.Helper()
	rep := &recordingReporter{}
	d, err := New(NewContext("production", "", p),
		WithReporter(rep),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	return d, rep
}
