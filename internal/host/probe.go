package host

import (
	"fmt"
	"strings"
)

// ProbeError represents a failed connection attempt with a categorized reason.
type ProbeError struct {
	Host   string
	Reason ProbeFailReason
	Cause  error
}

// ProbeFailReason categorizes why a probe failed.
type ProbeFailReason int

const (
	ProbeFailUnknown ProbeFailReason = iota
	ProbeFailTimeout
	ProbeFailRefused
	ProbeFailUnreachable
	ProbeFailAuth
	ProbeFailHostKey
)

// String returns a human-readable description of the failure reason.
func (r ProbeFailReason) String() string {
	switch r {
	case ProbeFailTimeout:
		return "connection timed out"
	case ProbeFailRefused:
		return "connection refused"
	case ProbeFailUnreachable:
		return "host unreachable"
	case ProbeFailAuth:
		return "authentication failed"
	case ProbeFailHostKey:
		return "host key verification failed"
	default:
		return "unknown error"
	}
}

func (e *ProbeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("probe %s failed: %s (%v)", e.Host, e.Reason, e.Cause)
	}
	return fmt.Sprintf("probe %s failed: %s", e.Host, e.Reason)
}

func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// categorizeProbeError converts a generic error into a ProbeError with
// a categorized failure reason.
func categorizeProbeError(host string, err error) *ProbeError {
	if err == nil {
		return nil
	}

	probeErr := &ProbeError{
		Host:   host,
		Reason: ProbeFailUnknown,
		Cause:  err,
	}

	errStr := strings.ToLower(err.Error())

	// Check for timeout
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out") {
		probeErr.Reason = ProbeFailTimeout
		return probeErr
	}

	// Check for connection refused
	if strings.Contains(errStr, "connection refused") {
		probeErr.Reason = ProbeFailRefused
		return probeErr
	}

	// Check for unreachable host
	if strings.Contains(errStr, "no route to host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "host is down") {
		probeErr.Reason = ProbeFailUnreachable
		return probeErr
	}

	// Check for authentication failure
	if strings.Contains(errStr, "unable to authenticate") ||
		strings.Contains(errStr, "no supported methods") ||
		strings.Contains(errStr, "permission denied") ||
		strings.Contains(errStr, "authentication failed") {
		probeErr.Reason = ProbeFailAuth
		return probeErr
	}

	// Check for host key issues
	if strings.Contains(errStr, "host key") {
		probeErr.Reason = ProbeFailHostKey
		return probeErr
	}

	return probeErr
}
