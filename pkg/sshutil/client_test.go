package sshutil

import (
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/deployr/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh/agent"
)

// skipIfNoSSH skips the test unless DEPLOYR_TEST_SSH_HOST is set.
func skipIfNoSSH(t *testing.T) string {
	t.Helper()
	host := os.Getenv("DEPLOYR_TEST_SSH_HOST")
	if host == "" {
		t.Skip("Skipping SSH test: DEPLOYR_TEST_SSH_HOST not set")
	}
	return host
}

// withHome points the SSH config lookups at an isolated home directory.
func withHome(t *testing.T, sshConfig string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if sshConfig == "" {
		return
	}
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".ssh"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".ssh", "config"), []byte(sshConfig), 0o600))
}

func TestDialAndExec(t *testing.T) {
	host := skipIfNoSSH(t)

	client, err := Dial(host, DialOptions{Timeout: 10 * time.Second})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, host, client.GetHost())
	assert.NotEmpty(t, client.GetAddress())

	stdout, _, code, err := client.Exec("echo deployr")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "deployr\n", string(stdout))

	_, _, code, err = client.Exec("exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestResolveSSHSettings(t *testing.T) {
	withHome(t, "")

	tests := []struct {
		name     string
		host     string
		hostname string
		port     string
		user     string
	}{
		{"simple host", "example.com", "example.com", "22", ""},
		{"user at host", "deploy@example.com", "example.com", "22", "deploy"},
		{"host with port", "example.com:2222", "example.com", "2222", ""},
		{"full format", "admin@web1.example.com:2200", "web1.example.com", "2200", "admin"},
		{"non-numeric suffix is not a port", "fe80::1:abc", "fe80::1:abc", "22", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := resolveSSHSettings(tt.host)
			assert.Equal(t, tt.hostname, s.hostname)
			assert.Equal(t, tt.port, s.port)
			if tt.user != "" {
				assert.Equal(t, tt.user, s.user)
			}
		})
	}
}

func TestResolveSSHSettingsFromConfig(t *testing.T) {
	withHome(t, `
Host web1
  HostName 10.0.0.5
  Port 2200
  User deploy
  IdentityFile ~/.ssh/deploy_key
`)

	s := resolveSSHSettings("web1")

	assert.Equal(t, "10.0.0.5", s.hostname)
	assert.Equal(t, "2200", s.port)
	assert.Equal(t, "deploy", s.user)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".ssh", "deploy_key"), s.identityFile)
	assert.Equal(t, "10.0.0.5:2200", s.address())
}

func TestResolveSSHSettingsExplicitUserWins(t *testing.T) {
	withHome(t, "")

	assert.Equal(t, currentUser(), resolveSSHSettings("web1").user)
	assert.Equal(t, "deploy", resolveSSHSettings("deploy@web1").user)
}

func TestPreprocessSSHConfigStopsAtMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("Host a\n  HostName a.example.com\nMatch host b\n  User x\n"), 0o600))

	content, matchLine, err := preprocessSSHConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, matchLine)
	assert.NotContains(t, string(content), "Match")
}

func TestEnableAgentForwardingWithoutAgent(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")

	c := &Client{Host: "web1"}
	err := c.enableAgentForwarding()

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH))
	assert.Contains(t, err.Error(), "no SSH agent is running")
	assert.False(t, c.forwardAgent)
}

func TestExitStatus(t *testing.T) {
	code, err := exitStatus("true", nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = exitStatus("php -v", stderrors.New("session closed"))
	require.Error(t, err)
	assert.Equal(t, -1, code)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
}

func TestExpandPath(t *testing.T) {
	withHome(t, "")
	home := homeDir()

	assert.Equal(t, filepath.Join(home, "test"), expandPath("~/test"))
	assert.Equal(t, "/absolute/path", expandPath("/absolute/path"))
	assert.Equal(t, "relative/path", expandPath("relative/path"))
}

func TestSuggestionForDialError(t *testing.T) {
	tests := []struct {
		errMsg   string
		contains string
	}{
		{"dial tcp: connection refused", "Is SSH running"},
		{"connect: no route to host", "Can't route"},
		{"dial tcp: i/o timeout", "timed out"},
		{"something else", "Make sure the host is reachable"},
	}

	for _, tt := range tests {
		t.Run(tt.errMsg, func(t *testing.T) {
			assert.Contains(t, suggestionForDialError(stderrors.New(tt.errMsg)), tt.contains)
		})
	}
}

func TestSuggestionForHandshakeError(t *testing.T) {
	tests := []struct {
		name      string
		errMsg    string
		encrypted []string
		contains  string
	}{
		{"auth failure", "ssh: unable to authenticate", nil, "Auth failed"},
		{"auth failure with encrypted key", "ssh: unable to authenticate", []string{"/home/me/.ssh/id_ed25519"}, "ssh-add"},
		{"host key", "ssh: host key mismatch", nil, "Host key issue"},
		{"unknown", "boom", nil, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, suggestionForHandshakeError(stderrors.New(tt.errMsg), tt.encrypted), tt.contains)
		})
	}
}

func TestCloseAgent(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	agentConn = local
	agentClient = agent.NewClient(local)

	CloseAgent()

	assert.Nil(t, agentConn)
	assert.Nil(t, agentClient)
	_, err := remote.Read(make([]byte, 1))
	assert.Error(t, err, "the agent side sees the connection close")

	assert.NotPanics(t, CloseAgent, "closing twice is a no-op")
}
