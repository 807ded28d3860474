package library

import (
	"errors"
	"fmt"
	"testing"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited sentinel", ErrRateLimited, true},
		{"wrapped rate limit", fmt.Errorf("embed image: %w", ErrRateLimited), true},
		{"http 429", errors.New("download returned status 429"), true},
		{"http 503", errors.New("download returned status 503"), true},
		{"timeout text", errors.New("context deadline exceeded (Client.Timeout)"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"http 404", errors.New("download returned status 404"), false},
		{"bad image", errors.New("unrecognized image format"), false},
		{"generic", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Fatalf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
