package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TimeoutError is returned when a request outlives the client timeout.
// The connection has already been torn down when the caller sees it.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("the request has timed out after %d milliseconds", e.Duration.Milliseconds())
}

// Timeout reports true, following the net.Error convention.
func (e *TimeoutError) Timeout() bool { return true }

// APIError is returned for 4xx responses whose body is valid JSON.
// Body holds the decoded document as-is; its shape belongs to the server.
type APIError struct {
	Method string
	URL    string

	StatusCode int

	// RequestID is the correlation id sent with the request, if any.
	RequestID string

	// Body is the response body decoded into a generic JSON value.
	Body any

	// Raw is the response body exactly as received.
	Raw []byte
}

const maxErrorTextBytes = 512

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if strings.TrimSpace(e.Method) != "" {
		b.WriteString(strings.ToUpper(strings.TrimSpace(e.Method)))
		b.WriteString(" ")
	}
	if strings.TrimSpace(e.URL) != "" {
		b.WriteString(strings.TrimSpace(e.URL))
		b.WriteString(": ")
	}
	b.WriteString(fmt.Sprintf("http %d", e.StatusCode))
	if t := http.StatusText(e.StatusCode); t != "" {
		b.WriteString(" ")
		b.WriteString(t)
	}
	if e.RequestID != "" {
		b.WriteString(" request_id=")
		b.WriteString(e.RequestID)
	}
	if raw := strings.TrimSpace(string(e.Raw)); raw != "" {
		if len(raw) > maxErrorTextBytes {
			raw = raw[:maxErrorTextBytes] + "..."
		}
		b.WriteString(": ")
		b.WriteString(raw)
	}
	return b.String()
}

// Decode unmarshals the raw body into v, for callers that know the server's error shape.
func (e *APIError) Decode(v any) error {
	return json.Unmarshal(e.Raw, v)
}

// AsAPIError extracts *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func IsHTTPStatus(err error, code int) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.StatusCode == code
}

// IsTimeout reports whether err is a client timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
