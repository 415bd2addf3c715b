package httpclient

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindUnreachable means no response arrived: refused, DNS or timeout.
	KindUnreachable Kind = iota
	// KindThrottled is a 429 answer.
	KindThrottled
	// KindFailed is a 5xx answer.
	KindFailed
	// KindRejected is any other non-2xx answer.
	KindRejected
	// KindMalformed is a 2xx answer whose body could not be decoded.
	KindMalformed
	// KindInvalid means the request could not be built.
	KindInvalid
)

var kindNames = [...]string{"unreachable", "throttled", "failed", "rejected", "malformed", "invalid"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// maxDetail bounds how much of a response body an error message quotes.
const maxDetail = 200

// Error is a failed call. StatusCode is 0 when no response arrived.
type Error struct {
	Kind       Kind
	StatusCode int
	Timeout    bool
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		if e.Timeout {
			return fmt.Sprintf("httpclient: %s (timeout): %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("httpclient: %s: %v", e.Kind, e.Err)
	}
	msg := fmt.Sprintf("httpclient: %s: HTTP %d", e.Kind, e.StatusCode)
	if detail := strings.TrimSpace(string(e.Body)); detail != "" {
		if len(detail) > maxDetail {
			detail = detail[:maxDetail] + "..."
		}
		msg += ": " + detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the call may succeed: the sidecar was
// unreachable, throttled or failed on its side.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindUnreachable, KindThrottled, KindFailed:
		return true
	}
	return false
}

func unreachable(err error) *Error {
	var ne net.Error
	return &Error{Kind: KindUnreachable, Timeout: errors.As(err, &ne) && ne.Timeout(), Err: err}
}

func invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Err: fmt.Errorf(format, args...)}
}

func malformed(status int, body []byte, err error) *Error {
	return &Error{Kind: KindMalformed, StatusCode: status, Body: body, Err: err}
}

// fromStatus classifies a response status. It returns nil for 2xx.
func fromStatus(status int, body []byte) *Error {
	var kind Kind
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		kind = KindThrottled
	case status >= 500:
		kind = KindFailed
	default:
		kind = KindRejected
	}
	return &Error{Kind: kind, StatusCode: status, Body: body}
}

// IsRetryable reports whether err is a retryable *Error.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}

// IsUnreachable reports whether the server could not be reached at all.
func IsUnreachable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindUnreachable
}
