package httpx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	httpClient *http.Client

	baseURL *url.URL

	timeout        time.Duration
	defaultHeaders http.Header
	userAgent      string

	requestID RequestIDConfig
	logger    *slog.Logger

	rateLimiter RateLimiter
	before      []BeforeHook
	after       []AfterHook
}

// Response is a fully read response. The connection is already closed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Request is the request as sent, including generated headers.
	Request *http.Request
}

// New constructs a Client from DefaultConfig() plus the provided options.
func New(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		if o != nil {
			o.apply(&cfg)
		}
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("httpx: base url is required")
	}
	bu, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if bu.Scheme == "" || bu.Host == "" {
		return nil, &url.Error{Op: "parse", URL: cfg.BaseURL, Err: errors.New("base url must be absolute")}
	}
	// Treat the BaseURL path as a prefix for relative endpoints.
	if bu.Path != "" && !strings.HasSuffix(bu.Path, "/") {
		bu.Path += "/"
	}

	rt := cfg.Transport
	if rt == nil {
		rt = DefaultTransport()
	}

	hc := &http.Client{
		Transport: rt,
		// A 3xx is a final answer, not something to chase.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	// Clone headers to avoid caller mutation.
	hdr := make(http.Header)
	for k, vv := range cfg.DefaultHeaders {
		for _, v := range vv {
			hdr.Add(k, v)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		httpClient:     hc,
		baseURL:        bu,
		timeout:        cfg.Timeout,
		defaultHeaders: hdr,
		userAgent:      cfg.UserAgent,
		requestID:      cfg.RequestID,
		logger:         logger,
	}
	if c.requestID.New == nil && c.requestID.Header != "" {
		c.requestID.New = DefaultRequestID
	}
	return c, nil
}

// WithMiddleware wraps the underlying RoundTripper with middleware.
// Call this during initialization (before the client is used concurrently).
func (c *Client) WithMiddleware(mws ...Middleware) *Client {
	if len(mws) == 0 {
		return c
	}
	rt := c.httpClient.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	c.httpClient.Transport = chain(rt, mws)
	return c
}

// WithRateLimiter installs a client-wide rate limiter.
func (c *Client) WithRateLimiter(rl RateLimiter) *Client {
	c.rateLimiter = rl
	return c
}

// WithHooks adds hooks executed for every request.
func (c *Client) WithHooks(before []BeforeHook, after []AfterHook) *Client {
	c.before = append(c.before, before...)
	c.after = append(c.after, after...)
	return c
}

// BaseURL returns a copy of the normalized base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func (c *Client) Timeout() time.Duration { return c.timeout }

// resolveURL joins path onto the base URL and appends rawQuery verbatim,
// so parameter order and list encoding survive untouched.
func (c *Client) resolveURL(path, rawQuery string) (*url.URL, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty url/path")
	}
	u, err := url.Parse(p)
	if err != nil {
		return nil, err
	}
	if u.IsAbs() {
		return nil, errors.New("httpx: endpoint must be relative to the base url")
	}
	// Treat leading "/" as relative so a BaseURL path prefix (https://host/api/v1)
	// still applies to "/users".
	if strings.HasPrefix(u.Path, "/") {
		u2 := *u
		u2.Path = strings.TrimPrefix(u2.Path, "/")
		u2.RawPath = strings.TrimPrefix(u2.RawPath, "/")
		u = &u2
	}
	out := c.baseURL.ResolveReference(u)
	if rawQuery != "" {
		if out.RawQuery != "" {
			out.RawQuery += "&" + rawQuery
		} else {
			out.RawQuery = rawQuery
		}
	}
	return out, nil
}

// Do sends req and reads the whole body under the client timeout.
//
// Exactly one of (*Response, error) is non-nil. A transport failure is returned
// unchanged; an expired client timeout becomes *TimeoutError. Status codes are
// not interpreted here.
func (c *Client) Do(req *http.Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	ctx := req.Context()

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	// The deadline is armed after throttling so it only covers the exchange itself.
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, c.timeout, &TimeoutError{Duration: c.timeout})
		defer cancel()
	}
	req = req.WithContext(ctx)

	for _, h := range c.before {
		if h == nil {
			continue
		}
		if err := h(req); err != nil {
			return nil, err
		}
	}

	t0 := time.Now()
	resp, err := c.httpClient.Do(req)
	dur := time.Since(t0)

	for _, h := range c.after {
		if h != nil {
			h(req, resp, err, dur)
		}
	}

	if err != nil {
		err = settle(ctx, err)
		c.logger.Debug("request failed",
			"method", req.Method, "url", req.URL.String(), "duration", dur, "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = settle(ctx, err)
		c.logger.Debug("response body read failed",
			"method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "err", err)
		return nil, err
	}

	c.logger.Debug("request done",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(t0),
	)
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Request:    req,
	}, nil
}

// settle swaps err for the client's *TimeoutError when our own deadline is what
// ended the exchange. Caller cancellation and network errors pass through.
func settle(ctx context.Context, err error) error {
	if ctx.Err() == nil {
		return err
	}
	var te *TimeoutError
	if errors.As(context.Cause(ctx), &te) {
		return te
	}
	return err
}
