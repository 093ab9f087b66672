package httpx

import (
	"log/slog"
	"net/http"
	"time"
)

// Config configures a Client. Use DefaultConfig() as a baseline.
type Config struct {
	// BaseURL is required; relative paths passed to NewRequest are resolved against it.
	BaseURL string

	// Timeout bounds a whole request: connect, write and reading the response body.
	// If the request context already has an earlier deadline, that one wins.
	Timeout time.Duration

	// Transport is the underlying RoundTripper. If nil, DefaultTransport() is used.
	Transport http.RoundTripper

	// DefaultHeaders are copied into every request.
	DefaultHeaders http.Header

	// UserAgent is set when the request does not already have a User-Agent header.
	UserAgent string

	// RequestID configures correlation id propagation.
	RequestID RequestIDConfig

	// Logger receives debug-level request lines. If nil, logs are discarded.
	Logger *slog.Logger
}

const DefaultTimeout = 5 * time.Second

// DefaultConfig returns the baseline used by New.
func DefaultConfig() Config {
	return Config{
		Timeout:        DefaultTimeout,
		DefaultHeaders: make(http.Header),
		RequestID:      DefaultRequestIDConfig(),
	}
}
