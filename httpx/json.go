package httpx

import (
	"context"
	"encoding/json"
	"strings"
)

// Send performs one request and decodes the JSON response into T.
//
// Outcomes, in order:
//   - transport failure or timeout: that error (see Client.Do)
//   - body is not valid JSON, whatever the status: the encoding/json error
//   - 4xx: *APIError carrying the decoded body
//   - anything else: the body decoded into T
func Send[T any](ctx context.Context, c *Client, method, path string, payload *Payload) (T, error) {
	var zero T
	req, err := c.NewRequest(ctx, method, path, payload)
	if err != nil {
		return zero, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return zero, err
	}
	return decode[T](resp, c.requestID.Header)
}

func decode[T any](resp *Response, requestIDHeader string) (T, error) {
	var zero T
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var body any
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return zero, err
		}
		return zero, newAPIError(resp, body, requestIDHeader)
	}

	var out T
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return zero, err
	}
	return out, nil
}

func newAPIError(resp *Response, body any, requestIDHeader string) *APIError {
	ae := &APIError{
		StatusCode: resp.StatusCode,
		Body:       body,
		Raw:        resp.Body,
	}
	if req := resp.Request; req != nil {
		ae.Method = req.Method
		ae.URL = req.URL.String()
		if requestIDHeader != "" {
			ae.RequestID = strings.TrimSpace(resp.Header.Get(requestIDHeader))
			if ae.RequestID == "" {
				ae.RequestID = strings.TrimSpace(req.Header.Get(requestIDHeader))
			}
		}
	}
	return ae
}
