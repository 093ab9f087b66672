// Package httpx is the transport layer underneath the pwless client:
// - one fresh connection per request (keep-alives disabled, nothing pooled)
// - ordered payloads encoded as a query string (GET) or compact JSON (other verbs)
// - a single deadline covering connect, write and the full body read
// - typed outcomes: *TimeoutError, *APIError for 4xx, raw transport/parse errors
// - hook points for logging/metrics/tracing without hard dependencies
package httpx
