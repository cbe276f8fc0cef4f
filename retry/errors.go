package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// statusCoder is implemented by HTTP-backed transport errors.
type statusCoder interface {
	StatusCode() int
}

// IsTransient reports whether err is worth retrying: rate limits, server
// errors, timeouts, dropped connections and temporary DNS failures.
// Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return isTransientStatusCode(sc.StatusCode())
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ETIMEDOUT, syscall.EPIPE:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// transientPatterns match transport errors that only surface as text, such
// as HTTP status lines relayed by the SSE transport.
var transientPatterns = []string{
	"connection reset",
	"connection refused",
	"broken pipe",
	"timeout",
	"temporary failure",
	"service unavailable",
	"too many requests",
	"bad gateway",
	"gateway timeout",
}

func isTransientStatusCode(code int) bool {
	return code == 429 || (code >= 500 && code < 600)
}
