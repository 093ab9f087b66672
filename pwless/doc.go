// Package pwless is a Go client for the Passwordless API.
//
// Every request carries the API secret in the ApiSecret header. By default the
// client reads its configuration from environment variables, once, in New:
//
//   - PWLESS_SECRET (required unless WithSecret is given)
//   - PWLESS_API_URL (optional; defaults to https://v4.passwordless.dev)
//
// The client never retries and never pools connections. Failures come back as:
// *ConfigError from New, *TimeoutError when the request outlives the client
// timeout, *APIError for a 4xx response with a JSON body, or the raw net/http
// or encoding/json error otherwise.
package pwless
