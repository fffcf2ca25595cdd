package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/robert-malhotra/go-panoramax-client/pkg/decode"
)

var (
	// ErrUnreachable is returned without touching the network when the
	// liveness controller reports the endpoint down.
	ErrUnreachable = errors.New("panoramax: endpoint unreachable")
	// ErrTransport wraps network failures: refused connections, resets,
	// timeouts and truncated bodies.
	ErrTransport = errors.New("panoramax: transport failure")
	// ErrTooLarge is returned when an image body exceeds the configured cap.
	ErrTooLarge = errors.New("panoramax: response body too large")
	// ErrUnsupportedScheme is returned for asset hrefs that are neither
	// http(s) nor s3.
	ErrUnsupportedScheme = errors.New("panoramax: unsupported URL scheme")
	// ErrNoHref is returned for links without an href.
	ErrNoHref = errors.New("panoramax: link has no href")
)

// StatusError reports an HTTP response with an unexpected status code.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("panoramax: %s %s: unexpected status %d %s",
		e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the failure may clear on its own.
func (e *StatusError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsUnreachable reports whether err came from a liveness short-circuit.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// IsDecode reports whether err is a payload that failed to decode.
func IsDecode(err error) bool {
	var derr *decode.Error
	return errors.As(err, &derr)
}

// IsTransport reports whether err is a network failure or an unexpected
// status.
func IsTransport(err error) bool {
	if errors.Is(err, ErrTransport) {
		return true
	}
	var serr *StatusError
	return errors.As(err, &serr)
}

// invalidates reports whether err should mark the endpoint stale.
func invalidates(err error) bool {
	if errors.Is(err, ErrTransport) {
		return true
	}
	var serr *StatusError
	return errors.As(err, &serr) && serr.Temporary()
}
