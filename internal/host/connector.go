package host

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rileyhilliard/deployr/internal/errors"
	"github.com/rileyhilliard/deployr/internal/logger"
	"github.com/rileyhilliard/deployr/pkg/sshutil"
)

// ConnectionEvent represents an event during connection attempts.
type ConnectionEvent struct {
	Type    ConnectionEventType
	Host    string
	Index   int // 1-based position in the profile's host list
	Total   int
	Error   error
	Latency time.Duration
}

// ConnectionEventType categorizes connection events.
type ConnectionEventType int

const (
	// EventTrying indicates a connection attempt is starting.
	EventTrying ConnectionEventType = iota
	// EventFailed indicates a connection attempt failed.
	EventFailed
	// EventConnected indicates a successful connection.
	EventConnected
)

// String returns a human-readable description of the event type.
func (t ConnectionEventType) String() string {
	switch t {
	case EventTrying:
		return "trying"
	case EventFailed:
		return "failed"
	case EventConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// EventHandler is a callback for connection events.
type EventHandler func(event ConnectionEvent)

// DialFunc opens an SSH connection. sshutil.Dial is the production value.
type DialFunc func(host string, opts sshutil.DialOptions) (sshutil.SSHClient, error)

// Connection is an established SSH connection to one profile host.
type Connection struct {
	Host    string            // Host string from the profile (alias, user@host, host:port)
	Client  sshutil.SSHClient // The active SSH client
	Latency time.Duration     // Time taken to connect and authenticate
}

// Close closes the SSH connection.
func (c *Connection) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// Connector dials the hosts of a profile one after another.
type Connector struct {
	dial         DialFunc
	opts         sshutil.DialOptions
	eventHandler EventHandler
	log          logger.Logger
}

// Option configures a Connector.
type Option func(*Connector)

// WithDialer replaces sshutil.Dial, mostly for tests.
func WithDialer(dial DialFunc) Option {
	return func(c *Connector) { c.dial = dial }
}

// WithEventHandler sets a callback for connection events.
func WithEventHandler(handler EventHandler) Option {
	return func(c *Connector) { c.eventHandler = handler }
}

// WithLogger sets the logger used for connection tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Connector) { c.log = l }
}

// NewConnector creates a connector that dials with opts.
func NewConnector(opts sshutil.DialOptions, options ...Option) *Connector {
	c := &Connector{
		dial: func(host string, opts sshutil.DialOptions) (sshutil.SSHClient, error) {
			return sshutil.Dial(host, opts)
		},
		opts: opts,
		log:  logger.Default(),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// emit sends an event to the handler if one is configured.
func (c *Connector) emit(event ConnectionEvent) {
	if c.eventHandler != nil {
		c.eventHandler(event)
	}
}

// Connect dials a single host. The caller closes the returned connection.
func (c *Connector) Connect(host string) (*Connection, error) {
	return c.connect(host, 1, 1)
}

func (c *Connector) connect(host string, index, total int) (*Connection, error) {
	c.emit(ConnectionEvent{Type: EventTrying, Host: host, Index: index, Total: total})
	c.log.Debug("dialing %s (forward_agent=%t, timeout=%s)", host, c.opts.ForwardAgent, c.opts.Timeout)

	start := time.Now()
	client, err := c.dial(host, c.opts)
	if err != nil {
		c.emit(ConnectionEvent{Type: EventFailed, Host: host, Index: index, Total: total, Error: err})
		var structured *errors.Error
		if stderrors.As(err, &structured) {
			return nil, err
		}
		probeErr := categorizeProbeError(host, err)
		return nil, errors.WrapWithCode(probeErr, errors.ErrSSH,
			fmt.Sprintf("Couldn't connect to %s: %s", host, probeErr.Reason),
			"Check that the host is up and that `ssh "+host+"` works from this machine.")
	}

	latency := time.Since(start)
	c.emit(ConnectionEvent{Type: EventConnected, Host: host, Index: index, Total: total, Latency: latency})
	c.log.Debug("connected to %s in %s", host, latency)

	return &Connection{Host: host, Client: client, Latency: latency}, nil
}

// Each connects to every host in order and calls fn with the open
// connection, closing it before moving on. The first connection or fn
// error stops the loop; later hosts are never dialed.
func (c *Connector) Each(hosts []string, fn func(conn *Connection, index int) error) error {
	if len(hosts) == 0 {
		return errors.New(errors.ErrConfig,
			"No hosts to deploy to",
			"List at least one SSH host under 'hosts:' for this server.")
	}

	for i, h := range hosts {
		conn, err := c.connect(h, i+1, len(hosts))
		if err != nil {
			return err
		}

		err = fn(conn, i)
		if closeErr := conn.Close(); closeErr != nil {
			c.log.Debug("closing %s: %v", h, closeErr)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
