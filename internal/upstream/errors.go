package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Kind classifies an upstream failure so callers can react without
// string matching.
type Kind int

const (
	KindTimeout Kind = iota
	KindUnreachable
	KindBadStatus
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "upstream_timeout"
	case KindUnreachable:
		return "upstream_unreachable"
	case KindBadStatus:
		return "upstream_bad_status"
	case KindDecode:
		return "upstream_decode_failure"
	default:
		return "upstream_error"
	}
}

// Error is the classified failure of a single upstream call.
type Error struct {
	Kind   Kind
	Status int    // HTTP status, set for KindBadStatus
	Op     string // short operation label, ex: "telemetry fetch"
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	if e.Kind == KindBadStatus {
		return fmt.Sprintf("%s: %s: status %d", e.Op, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns a human-readable detail safe to hand to API callers.
// Unlike Error(), it never includes the wrapped error, which may carry
// upstream URLs or credentials.
func (e *Error) Message() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("%s timed out", e.Op)
	case KindUnreachable:
		return fmt.Sprintf("%s failed: upstream unreachable", e.Op)
	case KindBadStatus:
		return fmt.Sprintf("%s failed: upstream returned status %d", e.Op, e.Status)
	case KindDecode:
		return fmt.Sprintf("%s failed: upstream response was not valid JSON", e.Op)
	default:
		return fmt.Sprintf("%s failed", e.Op)
	}
}

// AsError extracts the classified error, falling back to a generic
// unreachable classification for errors produced outside this package.
func AsError(op string, err error) *Error {
	var ue *Error
	if errors.As(err, &ue) {
		return ue
	}
	return &Error{Kind: KindUnreachable, Op: op, Err: err}
}

func classifyTransport(op string, timeout time.Duration, err error) *Error {
	kind := KindUnreachable
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}
	e := &Error{Kind: kind, Op: op, Err: err}
	if kind == KindTimeout {
		e.Err = fmt.Errorf("after %s: %w", timeout, err)
	}
	return e
}
