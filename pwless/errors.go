package pwless

import (
	"errors"
	"fmt"

	"github.com/lgc202/pwless-go/httpx"
)

var ErrMissingSecret = errors.New("an API secret must be specified, either with WithSecret or the " + EnvSecret + " environment variable")

// ConfigError is returned by New when the client cannot be configured.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pwless: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

type (
	// APIError is a 4xx response; Body is the server's JSON document.
	APIError = httpx.APIError
	// TimeoutError reports the configured timeout that was exceeded.
	TimeoutError = httpx.TimeoutError
)

// AsAPIError extracts *APIError.
func AsAPIError(err error) (*APIError, bool) { return httpx.AsAPIError(err) }

// IsTimeout reports whether err is a client timeout.
func IsTimeout(err error) bool { return httpx.IsTimeout(err) }
