package library

import (
	"errors"
	"net"
	"strings"
)

// ErrRateLimited marks 429/503-class responses from external APIs. Callers
// treat it as retryable with a long cooldown, never a fast retry loop.
var ErrRateLimited = errors.New("rate limited by external api")

// Retryable reports whether a per-item failure is worth requeueing: rate
// limits, timeouts and transient network trouble qualify; everything else is
// a permanent per-item failure.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"429",
		"503",
		"rate limit",
		"too many requests",
		"service unavailable",
		"timeout",
		"connection reset",
		"connection refused",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
