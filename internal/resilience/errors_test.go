package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsThrottle(t *testing.T) {
	assert.True(t, IsThrottle(&ThrottleError{URL: "http://x"}))
	assert.True(t, IsThrottle(fmt.Errorf("wrapped: %w", &ThrottleError{})))
	assert.False(t, IsThrottle(errors.New("429 but plain")))
	assert.False(t, IsThrottle(nil))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"throttle", &ThrottleError{}, true},
		{"transient wrapper", NewTransientError(errors.New("500"), 500), true},
		{"wrapped transient", fmt.Errorf("outer: %w", NewTransientError(errors.New("503"), 503)), true},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset string", errors.New("read: connection reset by peer"), true},
		{"dns failure string", errors.New("dial tcp: lookup api.example: no such host"), true},
		{"plain 404", errors.New("status 404"), false},
		{"parse error", errors.New("unexpected end of JSON input"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "code %d", code)
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "code %d", code)
	}
}
