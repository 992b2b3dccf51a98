package exec

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/deployr/internal/logger"
	"github.com/rileyhilliard/deployr/pkg/sshutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// startNoisyServer runs an in-process SSH server whose every exec writes
// lines to stdout and stderr at the same time, then exits 0.
func startNoisyServer(t *testing.T, lines int) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	cfg := &ssh.ServerConfig{NoClientAuth: true}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveNoisy(conn, cfg, lines)
		}
	}()

	return ln.Addr().String()
}

func serveNoisy(conn net.Conn, cfg *ssh.ServerConfig, lines int) {
	_, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		conn.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for nc := range chans {
		if nc.ChannelType() != "session" {
			_ = nc.Reject(ssh.UnknownChannelType, "session only")
			continue
		}
		ch, chReqs, err := nc.Accept()
		if err != nil {
			continue
		}
		go func() {
			for req := range chReqs {
				if req.Type != "exec" {
					_ = req.Reply(false, nil)
					continue
				}
				_ = req.Reply(true, nil)

				var wg sync.WaitGroup
				wg.Add(2)
				go func() {
					defer wg.Done()
					for i := 0; i < lines; i++ {
						fmt.Fprintf(ch, "out %d\n", i)
					}
				}()
				go func() {
					defer wg.Done()
					for i := 0; i < lines; i++ {
						fmt.Fprintf(ch.Stderr(), "err %d\n", i)
					}
				}()
				wg.Wait()

				_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{0}))
				ch.Close()
				return
			}
		}()
	}
}

func expectedLines(prefix string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%s %d\n", prefix, i)
	}
	return b.String()
}

// Run with -race: stdout and stderr are copied by separate goroutines.
func TestRemoteRunner_ConcurrentStreams(t *testing.T) {
	const lines = 2000
	addr := startNoisyServer(t, lines)

	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "deploy",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
	require.NoError(t, err)
	client := &sshutil.Client{Client: conn, Host: "loopback", Address: addr}
	defer client.Close()

	for _, verbose := range []bool{false, true} {
		t.Run(fmt.Sprintf("verbose=%v", verbose), func(t *testing.T) {
			var stream strings.Builder
			r := NewRemoteRunner(client, "", Options{Verbose: verbose, Stream: &stream, Log: logger.Noop()})

			res := r.Run("composer update")

			require.True(t, res.Succeeded, "exit %d: %v", res.ExitCode, res.Err)
			wantOut := expectedLines("out", lines)
			wantErr := expectedLines("err", lines)
			assert.Equal(t, wantOut, res.Stdout)
			assert.Len(t, res.Output, len(wantOut)+len(wantErr))
			if verbose {
				assert.Contains(t, stream.String(), "[loopback] run: composer update\n")
			}
		})
	}
}
