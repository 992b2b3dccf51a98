package doctor

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/deployr/internal/config"
	"github.com/rileyhilliard/deployr/internal/exec"
	"github.com/rileyhilliard/deployr/internal/host"
	"github.com/rileyhilliard/deployr/internal/util"
)

// Session is one lazily opened connection shared by the checks of a host.
type Session struct {
	Host string

	connector *host.Connector
	conn      *host.Connection
	err       error
	dialed    bool
}

// NewSession creates a session for h. Nothing is dialed until a check needs it.
func NewSession(connector *host.Connector, h string) *Session {
	return &Session{Host: h, connector: connector}
}

// Connection dials on first use and returns the same result afterwards.
func (s *Session) Connection() (*host.Connection, error) {
	if !s.dialed {
		s.dialed = true
		s.conn, s.err = s.connector.Connect(s.Host)
	}
	return s.conn, s.err
}

// Close closes the connection if one was opened.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// ConnectivityCheck verifies the host accepts an SSH login.
type ConnectivityCheck struct {
	Session *Session
}

func (c *ConnectivityCheck) Name() string     { return "connect_" + c.Session.Host }
func (c *ConnectivityCheck) Category() string { return c.Session.Host }

func (c *ConnectivityCheck) Run() CheckResult {
	conn, err := c.Session.Connection()
	if err != nil {
		return failResult(err)
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Connected in %s", conn.Latency.Round(time.Millisecond)),
	}
}

// DeployPathCheck verifies the deployment path exists on the host.
type DeployPathCheck struct {
	Session *Session
	Path    string
}

func (c *DeployPathCheck) Name() string     { return "deploy_path_" + c.Session.Host }
func (c *DeployPathCheck) Category() string { return c.Session.Host }

func (c *DeployPathCheck) Run() CheckResult {
	conn, err := c.Session.Connection()
	if err != nil {
		return CheckResult{Status: StatusSkip}
	}

	_, _, exitCode, err := conn.Client.Exec("test -d " + util.ShellQuotePreserveTilde(c.Path))
	if err != nil {
		return failResult(err)
	}
	if exitCode != 0 {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("Deployment path %s does not exist", c.Path),
			Suggestion: "Clone the repository there first.",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Deployment path %s exists", c.Path),
	}
}

// ToolCheck verifies the binary a profile setting names can be found.
type ToolCheck struct {
	Session *Session
	Server  string
	Setting string // e.g. "php_bin"
	Command string
}

func (c *ToolCheck) Name() string     { return c.Setting + "_" + c.Session.Host }
func (c *ToolCheck) Category() string { return c.Session.Host }

func (c *ToolCheck) Run() CheckResult {
	conn, err := c.Session.Connection()
	if err != nil {
		return CheckResult{Status: StatusSkip}
	}

	result, err := exec.ProbeTool(conn.Client, c.Setting, c.Command)
	if err != nil {
		return failResult(err)
	}
	if result.Found {
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("%s found at %s", c.Setting, result.Path),
		}
	}
	return CheckResult{
		Status:     StatusFail,
		Message:    fmt.Sprintf("%s '%s' not found", c.Setting, c.Command),
		Suggestion: exec.GenerateToolSuggestion(result, c.Server),
	}
}

// HostChecks returns the checks for one host. They share s, so the host is
// dialed once; the caller closes s afterwards.
func HostChecks(s *Session, server string, profile config.ServerProfile) []Check {
	return []Check{
		&ConnectivityCheck{Session: s},
		&DeployPathCheck{Session: s, Path: profile.Path},
		&ToolCheck{Session: s, Server: server, Setting: "php_bin", Command: profile.PHPBin},
		&ToolCheck{Session: s, Server: server, Setting: "composer_bin", Command: profile.ComposerBin},
	}
}
