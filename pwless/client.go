package pwless

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lgc202/pwless-go/httpx"
	"github.com/lgc202/pwless-go/version"
)

const (
	DefaultBaseURL = "https://v4.passwordless.dev"
	DefaultTimeout = 5000 * time.Millisecond

	EnvSecret = "PWLESS_SECRET"
	EnvAPIURL = "PWLESS_API_URL"

	// SecretHeader carries the API secret on every request.
	SecretHeader = "ApiSecret"
)

// Config is the resolved client configuration. It never changes after New.
type Config struct {
	Secret  string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Passwordless API. It is safe for concurrent use.
type Client struct {
	cfg       Config
	transport *httpx.Client
}

// New resolves the configuration and builds a client.
//
// Each setting is taken from its option, then the environment (secret and URL
// only), then the default. A missing secret is an error here, not at request time.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&o)
		}
	}

	cfg, err := resolveConfig(o)
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger != nil {
		logger = logger.With("client", "pwless")
	}
	hopts := []httpx.Option{
		httpx.WithBaseURL(cfg.BaseURL),
		httpx.WithTimeout(cfg.Timeout),
		httpx.WithDefaultHeader(SecretHeader, cfg.Secret),
		httpx.WithUserAgent(version.UserAgent()),
		httpx.WithLogger(logger),
	}
	if o.transport != nil {
		hopts = append(hopts, httpx.WithTransport(o.transport))
	}
	hc, err := httpx.New(hopts...)
	if err != nil {
		return nil, &ConfigError{Field: "base url", Err: err}
	}

	after := o.after
	if o.metrics != nil {
		m, err := httpx.NewMetrics(o.metrics)
		if err != nil {
			return nil, &ConfigError{Field: "metrics", Err: err}
		}
		after = append(after, m.AfterHook())
	}
	hc.WithMiddleware(o.middleware...).
		WithHooks(o.before, after).
		WithRateLimiter(o.limiter)

	return &Client{cfg: cfg, transport: hc}, nil
}

func resolveConfig(o options) (Config, error) {
	lookup := o.lookupEnv
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	env := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	cfg := Config{
		Secret:  firstNonEmpty(o.secret, env(EnvSecret)),
		BaseURL: firstNonEmpty(o.baseURL, env(EnvAPIURL), DefaultBaseURL),
		Timeout: o.timeout,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Secret == "" {
		return Config{}, &ConfigError{Field: "secret", Err: ErrMissingSecret}
	}
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return Config{}, &ConfigError{Field: "base url", Err: err}
	}
	return cfg, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q: missing host", raw)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Config returns the resolved configuration.
func (c *Client) Config() Config { return c.cfg }

var errMethod = errors.New("pwless: method must be GET or POST")

// Send performs one request against endpoint and decodes the JSON response into T.
//
// GET sends payload as the query string; POST (also used when method is empty)
// sends it as a JSON body. No check is made that the response matches T beyond
// what encoding/json enforces.
func Send[T any](ctx context.Context, c *Client, method, endpoint string, payload *httpx.Payload) (T, error) {
	switch method = strings.ToUpper(strings.TrimSpace(method)); method {
	case "":
		method = http.MethodPost
	case http.MethodGet, http.MethodPost:
	default:
		var zero T
		return zero, fmt.Errorf("%w, got %q", errMethod, method)
	}
	return httpx.Send[T](ctx, c.transport, method, endpoint, payload)
}
