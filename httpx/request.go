package httpx

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// usesQuery reports whether the payload travels in the URL rather than the body.
func usesQuery(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// NewRequest builds a request for path relative to the base URL.
//
// For GET (and HEAD) the payload is appended as a query string and no body is
// sent. For every other verb the payload is sent as compact JSON with an exact
// Content-Length.
func (c *Client) NewRequest(ctx context.Context, method, path string, payload *Payload) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}

	var (
		rawQuery string
		body     []byte
	)
	if usesQuery(method) {
		rawQuery = payload.Encode()
	} else {
		b, err := payload.MarshalJSON()
		if err != nil {
			return nil, err
		}
		body = b
	}

	u, err := c.resolveURL(path, rawQuery)
	if err != nil {
		return nil, err
	}

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.ContentLength = int64(len(body))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}

	for k, vv := range c.defaultHeaders {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.requestID.Header != "" && req.Header.Get(c.requestID.Header) == "" {
		if c.requestID.New != nil {
			if id := strings.TrimSpace(c.requestID.New()); id != "" {
				req.Header.Set(c.requestID.Header, id)
			}
		}
	}
	return req, nil
}
