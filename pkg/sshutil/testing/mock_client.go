package testing

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// CommandResponse defines a canned response for a specific command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
}

type scripted struct {
	pattern string
	re      *regexp.Regexp
	resp    CommandResponse
}

// MockClient simulates an SSH connection for testing.
// It understands the filesystem commands a deploy issues (mkdir, cp --parents,
// ls -1t, rm, test -d) and runs them against a virtual filesystem. Anything
// else succeeds with no output unless a response has been scripted for it.
type MockClient struct {
	mu       sync.Mutex
	host     string
	address  string
	fs       *MockFS
	closed   bool
	scripted []scripted
	log      []string
}

// NewMockClient creates a new mock SSH client with an empty filesystem.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:    host,
		address: host + ":22",
		fs:      NewMockFS(),
	}
}

// Exec runs a command against the virtual filesystem.
// Scripted responses match against the command with any leading
// `cd <dir> && ` removed. Exact matches win over regex matches.
func (m *MockClient) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, -1, errors.New("connection closed")
	}
	m.log = append(m.log, cmd)

	cwd, body := splitWorkDir(cmd)

	for _, s := range m.scripted {
		if s.pattern == body {
			return s.resp.Stdout, s.resp.Stderr, s.resp.ExitCode, s.resp.Error
		}
	}
	for _, s := range m.scripted {
		if s.re != nil && s.re.MatchString(body) {
			return s.resp.Stdout, s.resp.Stderr, s.resp.ExitCode, s.resp.Error
		}
	}

	return m.parseAndExecute(cwd, body)
}

// ExecStream runs a command and writes output to the provided writers.
func (m *MockClient) ExecStream(cmd string, stdout, stderr io.Writer) (exitCode int, err error) {
	out, errOut, code, execErr := m.Exec(cmd)
	if execErr != nil {
		return -1, execErr
	}

	if stdout != nil && len(out) > 0 {
		_, _ = stdout.Write(out)
	}
	if stderr != nil && len(errOut) > 0 {
		_, _ = stderr.Write(errOut)
	}

	return code, nil
}

// Close marks the connection as closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Reopen clears the closed flag so the client can be handed out again.
func (m *MockClient) Reopen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = false
}

// GetHost returns the host name.
func (m *MockClient) GetHost() string {
	return m.host
}

// GetAddress returns the host:port address.
func (m *MockClient) GetAddress() string {
	return m.address
}

// SetCommandResponse registers a canned response for a command pattern.
// The pattern can be an exact string or a regex pattern.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := scripted{pattern: pattern, resp: resp}
	if re, err := regexp.Compile(pattern); err == nil {
		s.re = re
	}
	m.scripted = append(m.scripted, s)
}

// Commands returns every command received, in order, exactly as sent.
func (m *MockClient) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.log))
	copy(out, m.log)
	return out
}

// GetFS returns the mock filesystem for direct manipulation in tests.
func (m *MockClient) GetFS() *MockFS {
	return m.fs
}

var workDirPrefix = regexp.MustCompile(`^cd ('(?:[^']|'\\'')*'|\S+) && `)

// splitWorkDir separates a leading `cd <dir> && ` from the command body.
func splitWorkDir(cmd string) (cwd, body string) {
	cmd = strings.TrimSpace(cmd)
	loc := workDirPrefix.FindStringSubmatchIndex(cmd)
	if loc == nil {
		return "/", cmd
	}
	return unquote(cmd[loc[2]:loc[3]]), cmd[loc[1]:]
}

// parseAndExecute handles the shell commands a deploy sends.
func (m *MockClient) parseAndExecute(cwd, cmd string) (stdout, stderr []byte, exitCode int, err error) {
	cmd = strings.TrimSuffix(cmd, " 2>/dev/null")
	cmd = strings.TrimSuffix(cmd, " 2>&1")
	cmd = strings.TrimSpace(cmd)

	args := splitArgs(cmd)
	if len(args) == 0 {
		return nil, nil, 0, nil
	}

	switch {
	case args[0] == "mkdir":
		return m.handleMkdir(cwd, args[1:])
	case args[0] == "cp":
		return m.handleCopy(cwd, args[1:])
	case args[0] == "ls":
		return m.handleList(cwd, args[1:])
	case args[0] == "rm":
		return m.handleRm(cwd, args[1:])
	case args[0] == "test" && len(args) == 3 && args[1] == "-d":
		if m.fs.IsDir(resolve(cwd, args[2])) {
			return nil, nil, 0, nil
		}
		return nil, nil, 1, nil
	}

	// Unknown command - return success by default
	return nil, nil, 0, nil
}

// handleMkdir processes: mkdir [-p] path
func (m *MockClient) handleMkdir(cwd string, args []string) ([]byte, []byte, int, error) {
	parents, rest := takeFlags(args)
	if len(rest) == 0 {
		return nil, []byte("mkdir: missing operand"), 1, nil
	}

	path := resolve(cwd, rest[0])
	if strings.Contains(parents, "p") {
		_ = m.fs.MkdirAll(path)
		return nil, nil, 0, nil
	}
	if err := m.fs.Mkdir(path); err != nil {
		return nil, []byte(fmt.Sprintf("mkdir: cannot create directory '%s': %s", rest[0], err)), 1, nil
	}
	return nil, nil, 0, nil
}

// handleCopy processes: cp -Ra --parents src... dest
func (m *MockClient) handleCopy(cwd string, args []string) ([]byte, []byte, int, error) {
	_, rest := takeFlags(args)
	if len(rest) < 2 {
		return nil, []byte("cp: missing destination file operand"), 1, nil
	}

	dest := resolve(cwd, rest[len(rest)-1])
	for _, src := range rest[:len(rest)-1] {
		if err := m.fs.CopyParents(cwd, src, dest); err != nil {
			return nil, []byte(fmt.Sprintf("cp: cannot stat '%s': %s", src, err)), 1, nil
		}
	}
	return nil, nil, 0, nil
}

// handleList processes: ls -1t dir
func (m *MockClient) handleList(cwd string, args []string) ([]byte, []byte, int, error) {
	_, rest := takeFlags(args)
	dir := cwd
	if len(rest) > 0 {
		dir = resolve(cwd, rest[0])
	}

	names, err := m.fs.List(dir)
	if err != nil {
		return nil, []byte(fmt.Sprintf("ls: cannot access '%s': No such file or directory", dir)), 2, nil
	}
	if len(names) == 0 {
		return nil, nil, 0, nil
	}
	return []byte(strings.Join(names, "\n") + "\n"), nil, 0, nil
}

// handleRm processes: rm -R path or rm -rf path
func (m *MockClient) handleRm(cwd string, args []string) ([]byte, []byte, int, error) {
	flags, rest := takeFlags(args)
	if len(rest) == 0 {
		return nil, []byte("rm: missing operand"), 1, nil
	}

	force := strings.Contains(flags, "f")
	for _, p := range rest {
		if err := m.fs.Remove(resolve(cwd, p)); err != nil && !force {
			return nil, []byte(fmt.Sprintf("rm: cannot remove '%s': No such file or directory", p)), 1, nil
		}
	}
	return nil, nil, 0, nil
}

// takeFlags splits leading dash arguments from operands.
// The returned string holds every short flag letter seen.
func takeFlags(args []string) (string, []string) {
	var flags strings.Builder
	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			break
		}
		if !strings.HasPrefix(a, "--") {
			flags.WriteString(a[1:])
		}
	}
	return flags.String(), args[i:]
}

func resolve(cwd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}

// splitArgs tokenizes a command line honoring single and double quotes.
func splitArgs(cmd string) []string {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, r := range cmd {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inArg = true
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args
}

func unquote(s string) string {
	if args := splitArgs(s); len(args) == 1 {
		return args[0]
	}
	return s
}
