// Package testing provides test doubles for the host package.
package testing

import (
	"fmt"
	"sync"

	"github.com/rileyhilliard/deployr/pkg/sshutil"
	sstesting "github.com/rileyhilliard/deployr/pkg/sshutil/testing"
)

// FakeDialer simulates SSH dialing for testing.
// Hosts added with AddHost connect to a MockClient; anything else fails.
// Dialing a host again hands out the same client, reopened, so its
// filesystem and command log carry over.
type FakeDialer struct {
	mu      sync.Mutex
	clients map[string]*sstesting.MockClient
	errs    map[string]error

	// Tracking for assertions
	DialCalls []string
	Options   []sshutil.DialOptions
}

// NewFakeDialer creates a dialer that knows no hosts.
func NewFakeDialer() *FakeDialer {
	return &FakeDialer{
		clients: make(map[string]*sstesting.MockClient),
		errs:    make(map[string]error),
	}
}

// AddHost registers a host that connects successfully and returns its mock client.
func (d *FakeDialer) AddHost(name string) *sstesting.MockClient {
	d.mu.Lock()
	defer d.mu.Unlock()

	client := sstesting.NewMockClient(name)
	d.clients[name] = client
	return client
}

// AddFailingHost registers a host whose dial returns err.
func (d *FakeDialer) AddFailingHost(name string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs[name] = err
}

// Client returns the mock client for a host added with AddHost.
func (d *FakeDialer) Client(name string) *sstesting.MockClient {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clients[name]
}

// Dial has the signature of host.DialFunc.
func (d *FakeDialer) Dial(name string, opts sshutil.DialOptions) (sshutil.SSHClient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.DialCalls = append(d.DialCalls, name)
	d.Options = append(d.Options, opts)

	if err, ok := d.errs[name]; ok {
		return nil, err
	}
	if client, ok := d.clients[name]; ok {
		client.Reopen()
		return client, nil
	}
	return nil, fmt.Errorf("dial tcp: lookup %s: no such host", name)
}
