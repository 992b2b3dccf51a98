package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rileyhilliard/deployr/internal/doctor"
	deployerrors "github.com/rileyhilliard/deployr/internal/errors"
	hosttesting "github.com/rileyhilliard/deployr/internal/host/testing"
	"github.com/rileyhilliard/deployr/internal/logger"
	"github.com/rileyhilliard/deployr/internal/ui"
	sshtesting "github.com/rileyhilliard/deployr/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHostsFile = `hosts:
  production:
    branch: master
    path: /var/www/app
    hosts:
      - web1
      - web2
    forward_agent: true
    database_migrations: true
    assets:
      enabled: true
      symlink: true
  staging:
    branch: develop
    path: /var/www/staging
    hosts:
      - stage1
    tests: true
`

func init() {
	ui.DisableColors()
}

// writeHostsFile writes a hosts file into a temp dir and returns its path.
func writeHostsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testOptions(t *testing.T, d *hosttesting.FakeDialer, server string) (WorkflowOptions, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return WorkflowOptions{
		ConfigPath: writeHostsFile(t, testHostsFile),
		Server:     server,
		Out:        &out,
		Dial:       d.Dial,
		Log:        logger.Noop(),
	}, &out
}

// bodies strips the cd prefix from every command a mock host received.
func bodies(client *sshtesting.MockClient) []string {
	var out []string
	for _, cmd := range client.Commands() {
		_, body, found := strings.Cut(cmd, " && ")
		if !found {
			body = cmd
		}
		out = append(out, body)
	}
	return out
}

func TestSetupWorkflow(t *testing.T) {
	opts, _ := testOptions(t, hosttesting.NewFakeDialer(), "Production")

	wf, err := SetupWorkflow(opts)

	require.NoError(t, err)
	assert.Equal(t, "Production", wf.Server)
	assert.Equal(t, "/var/www/app", wf.Profile.Path)
	assert.Equal(t, "prod", wf.Deployer.Context().Environment)
}

func TestSetupWorkflow_EnvOverride(t *testing.T) {
	opts, _ := testOptions(t, hosttesting.NewFakeDialer(), "production")
	opts.Env = "staging"

	wf, err := SetupWorkflow(opts)

	require.NoError(t, err)
	assert.Equal(t, "staging", wf.Deployer.Context().Environment)
}

func TestSetupWorkflow_UnknownServer(t *testing.T) {
	opts, _ := testOptions(t, hosttesting.NewFakeDialer(), "prodution")

	_, err := SetupWorkflow(opts)

	require.Error(t, err)
	assert.Equal(t, deployerrors.ExitConfig, deployerrors.ExitCode(err))
	assert.Contains(t, err.Error(), "Server prodution does not exist in configuration file")
	assert.Contains(t, err.Error(), "Did you mean 'production'?")
}

func TestSetupWorkflow_MissingConfig(t *testing.T) {
	_, err := SetupWorkflow(WorkflowOptions{
		ConfigPath: filepath.Join(t.TempDir(), "nope.yml"),
		Server:     "production",
		Log:        logger.Noop(),
	})

	assert.True(t, deployerrors.IsCode(err, deployerrors.ErrConfig))
}

func TestDeployCommand_AllHostsInOrder(t *testing.T) {
	d := hosttesting.NewFakeDialer()
	web1 := d.AddHost("web1")
	web2 := d.AddHost("web2")
	opts, out := testOptions(t, d, "production")

	err := deployCommand(opts)

	require.NoError(t, err)
	assert.Equal(t, []string{"web1", "web2"}, d.DialCalls)
	assert.True(t, d.Options[0].ForwardAgent)

	want := []string{
		"git fetch",
		"git checkout 'master'",
		"git pull origin 'master'",
		"composer update",
		"php '/var/www/app/app/console' assets:install --env=prod --symlink",
		"php '/var/www/app/app/console' doctrine:migrations:migrate --env=prod --no-interaction",
		"php '/var/www/app/app/console' cache:clear --env=prod",
	}
	assert.Equal(t, want, bodies(web1))
	assert.Equal(t, want, bodies(web2))
	assert.True(t, strings.HasPrefix(web1.Commands()[0], "cd '/var/www/app' && "))
	assert.True(t, web1.Closed())
	assert.True(t, web2.Closed())

	output := out.String()
	assert.Contains(t, output, "[web1] (1/2)")
	assert.Contains(t, output, "[web2] (2/2)")
	assert.Contains(t, output, "Connecting to web1....")
	assert.Less(t, strings.Index(output, "Connecting to web2"), strings.LastIndex(output, "Correctly deployed to production"))
	assert.Equal(t, 2, strings.Count(output, "Correctly deployed to production"))
	assert.Contains(t, output, "Updating source code....")
}

func TestDeployCommand_FailureStopsLaterHosts(t *testing.T) {
	d := hosttesting.NewFakeDialer()
	web1 := d.AddHost("web1")
	d.AddHost("web2")
	web1.SetCommandResponse("composer update", sshtesting.CommandResponse{
		Stderr:   []byte("Your requirements could not be resolved"),
		ExitCode: 2,
	})
	opts, out := testOptions(t, d, "production")

	err := deployCommand(opts)

	require.Error(t, err)
	assert.True(t, deployerrors.IsCode(err, deployerrors.ErrExec))
	assert.Contains(t, err.Error(), "Your requirements could not be resolved")
	assert.Equal(t, []string{"web1"}, d.DialCalls, "web2 is never touched")
	assert.NotContains(t, bodies(web1), "php '/var/www/app/app/console' cache:clear --env=prod")
	assert.NotContains(t, out.String(), "Correctly deployed")
}

func TestDeployCommand_ConnectionFailure(t *testing.T) {
	d := hosttesting.NewFakeDialer()
	d.AddFailingHost("web1", errors.New("dial tcp 10.0.0.1:22: connect: connection refused"))
	opts, out := testOptions(t, d, "production")

	err := deployCommand(opts)

	assert.True(t, deployerrors.IsCode(err, deployerrors.ErrSSH))
	assert.Contains(t, out.String(), "[web1] (1/2)")
	assert.Contains(t, out.String(), "Connecting to web1")
	assert.Contains(t, out.String(), ui.SymbolFail)
	assert.NotContains(t, out.String(), "Updating source code")
	assert.Equal(t, deployerrors.ExitFailure, deployerrors.ExitCode(err))
}

func TestRollbackCommand_Offset(t *testing.T) {
	d := hosttesting.NewFakeDialer()
	for _, h := range []string{"web1", "web2"} {
		d.AddHost(h).SetCommandResponse("git rev-parse --short HEAD", sshtesting.CommandResponse{
			Stdout: []byte("a1b2c3d\n"),
		})
	}
	opts, out := testOptions(t, d, "production")

	err := rollbackCommand(opts, RollbackOptions{Revision: "2", Yes: true})

	require.NoError(t, err)
	cmds := bodies(d.Client("web1"))
	assert.Equal(t, "git pull origin 'master'", cmds[2])
	assert.Equal(t, "git checkout HEAD~2", cmds[3])
	assert.Equal(t, "git rev-parse --short HEAD", cmds[4])
	assert.Equal(t, "composer update", cmds[5])

	output := out.String()
	assert.Equal(t, 2, strings.Count(output, "Correctly rolled back to a1b2c3d"))
	assert.Contains(t, output, "Remember to check your database, because it may not be in sync with your code!!")
}

func TestRollbackCommand_UnknownRevision(t *testing.T) {
	d := hosttesting.NewFakeDialer()
	web1 := d.AddHost("web1")
	d.AddHost("web2")
	web1.SetCommandResponse("git checkout 'v9.9.9'", sshtesting.CommandResponse{
		Stderr:   []byte("error: pathspec 'v9.9.9' did not match any file(s) known to git"),
		ExitCode: 1,
	})
	opts, _ := testOptions(t, d, "production")

	err := rollbackCommand(opts, RollbackOptions{Revision: "v9.9.9", Yes: true})

	require.Error(t, err)
	assert.Equal(t, deployerrors.ExitRevision, deployerrors.ExitCode(err))
	assert.Contains(t, err.Error(), "Revision v9.9.9 does not exist")
	assert.NotContains(t, bodies(web1), "composer update")
	assert.Equal(t, []string{"web1"}, d.DialCalls)
}

func TestRollbackCommand_InvalidRevisionBeforeConnecting(t *testing.T) {
	d := hosttesting.NewFakeDialer()
	opts, _ := testOptions(t, d, "production")

	err := rollbackCommand(opts, RollbackOptions{Revision: "--orphan", Yes: true})

	assert.True(t, deployerrors.IsCode(err, deployerrors.ErrConfig))
	assert.Empty(t, d.DialCalls)
}

func TestRollbackCommand_Pick(t *testing.T) {
	d := hosttesting.NewFakeDialer()
	for _, h := range []string{"web1", "web2"} {
		d.AddHost(h).SetCommandResponse("git log --oneline -n 15", sshtesting.CommandResponse{
			Stdout: []byte("1234567 Fix checkout\n89abcde Add assets\n"),
		})
	}
	opts, _ := testOptions(t, d, "production")

	var offered []ui.PickOption
	err := rollbackCommand(opts, RollbackOptions{
		Pick: true,
		Yes:  true,
		Choose: func(_ string, options []ui.PickOption) (string, error) {
			offered = options
			return options[0].Value, nil
		},
	})

	require.NoError(t, err)
	require.Len(t, offered, 2)
	assert.Equal(t, "1234567 Fix checkout", offered[0].Label)
	assert.Equal(t, []string{"web1", "web1", "web2"}, d.DialCalls, "first host is listed, then every host rolled back")
	assert.Contains(t, bodies(d.Client("web2")), "git checkout '1234567'", "an all-digit hash is a ref, not an offset")
}

func TestRollbackCommand_PickAborted(t *testing.T) {
	d := hosttesting.NewFakeDialer()
	d.AddHost("web1").SetCommandResponse("git log --oneline -n 15", sshtesting.CommandResponse{
		Stdout: []byte("1234567 Fix checkout\n"),
	})
	opts, _ := testOptions(t, d, "production")

	err := rollbackCommand(opts, RollbackOptions{
		Pick:   true,
		Choose: func(string, []ui.PickOption) (string, error) { return "", nil },
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"web1"}, d.DialCalls)
}

func TestRollbackCommand_PickWithRevision(t *testing.T) {
	opts, _ := testOptions(t, hosttesting.NewFakeDialer(), "production")

	err := rollbackCommand(opts, RollbackOptions{Pick: true, Revision: "3"})

	assert.True(t, deployerrors.IsCode(err, deployerrors.ErrConfig))
}

func TestServerRows(t *testing.T) {
	cfg, err := loadConfig(writeHostsFile(t, testHostsFile))
	require.NoError(t, err)

	rows := serverRows(cfg)

	require.Len(t, rows, 2)
	assert.Equal(t, "production", rows[0].Name)
	assert.Equal(t, []string{"web1", "web2"}, rows[0].Hosts)
	assert.Equal(t, []string{"assets", "migrations"}, rows[0].Stages)
	assert.Equal(t, "staging", rows[1].Name)
	assert.Equal(t, []string{"tests"}, rows[1].Stages)
}

func TestCheckCommand(t *testing.T) {
	d := hosttesting.NewFakeDialer()
	for _, h := range []string{"web1", "web2"} {
		client := d.AddHost(h)
		sshtesting.WithDirs(client, []string{"/var/www/app"})
		client.SetCommandResponse("command -v 'php'", sshtesting.CommandResponse{Stdout: []byte("/usr/bin/php\n")})
		client.SetCommandResponse("command -v 'composer'", sshtesting.CommandResponse{Stdout: []byte("/usr/local/bin/composer\n")})
	}
	opts, _ := testOptions(t, d, "production")

	results, err := checkCommand(opts)

	require.NoError(t, err)
	assert.False(t, doctor.HasFailures(results))
	assert.Equal(t, doctor.CategoryConfig, results[0].Category)
	assert.Equal(t, []string{"web1", "web2"}, d.DialCalls)

	rows := checkRows(results)
	assert.Len(t, rows, 9, "the skipped backup check is dropped")
	var messages []string
	for _, r := range rows {
		messages = append(messages, r.Message)
	}
	assert.Contains(t, messages, "php_bin found at /usr/bin/php")
	assert.Contains(t, messages, "Deployment path /var/www/app exists")
}

func TestCheckCommand_Failures(t *testing.T) {
	d := hosttesting.NewFakeDialer()
	d.AddHost("web1").SetCommandResponse("command -v 'composer'", sshtesting.CommandResponse{ExitCode: 1})
	d.AddFailingHost("web2", errors.New("ssh: handshake failed: knownhosts: key mismatch, host key changed"))
	opts, _ := testOptions(t, d, "production")

	results, err := checkCommand(opts)

	require.Error(t, err)
	assert.Equal(t, []string{"web1", "web2"}, d.DialCalls, "every host is checked")

	var failed []string
	for _, r := range checkRows(results) {
		if r.Status == "fail" {
			failed = append(failed, r.Category+": "+r.Message)
		}
	}
	assert.Contains(t, failed, "web1: Deployment path /var/www/app does not exist")
	assert.Contains(t, failed, "web1: composer_bin 'composer' not found")
	require.NotEmpty(t, failed)
	assert.True(t, strings.HasPrefix(failed[len(failed)-1], "web2: Couldn't connect to web2: host key verification failed"))
}

func TestCheckCommand_InvalidProfileSkipsHosts(t *testing.T) {
	d := hosttesting.NewFakeDialer()
	opts := WorkflowOptions{
		ConfigPath: writeHostsFile(t, "hosts:\n  broken:\n    path: /var/www/app\n    hosts: [web1]\n"),
		Server:     "broken",
		Dial:       d.Dial,
		Log:        logger.Noop(),
	}

	results, err := checkCommand(opts)

	require.Error(t, err)
	assert.Equal(t, doctor.StatusFail, results[0].Status)
	assert.Empty(t, d.DialCalls)
}
