package pwless

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lgc202/pwless-go/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

type Option interface{ apply(*options) }

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

type options struct {
	secret  string
	baseURL string
	timeout time.Duration

	transport  http.RoundTripper
	logger     *slog.Logger
	limiter    httpx.RateLimiter
	middleware []httpx.Middleware
	before     []httpx.BeforeHook
	after      []httpx.AfterHook
	metrics    prometheus.Registerer

	lookupEnv func(string) (string, bool)
}

// WithSecret sets the API secret. An empty value falls back to PWLESS_SECRET.
func WithSecret(secret string) Option {
	return optionFunc(func(o *options) { o.secret = secret })
}

// WithBaseURL sets the API base URL. An empty value falls back to
// PWLESS_API_URL, then DefaultBaseURL.
func WithBaseURL(u string) Option {
	return optionFunc(func(o *options) { o.baseURL = u })
}

// WithTimeout bounds each request end to end. Values <= 0 mean DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(o *options) { o.timeout = d })
}

// WithHTTPTransport replaces the default non-pooling transport.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return optionFunc(func(o *options) { o.transport = rt })
}

func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(o *options) { o.logger = l })
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
// Time spent waiting for a token does not count against the timeout.
func WithRateLimit(rps float64, burst int) Option {
	return optionFunc(func(o *options) {
		if rps <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	})
}

func WithMiddleware(mws ...httpx.Middleware) Option {
	return optionFunc(func(o *options) { o.middleware = append(o.middleware, mws...) })
}

func WithHooks(before []httpx.BeforeHook, after []httpx.AfterHook) Option {
	return optionFunc(func(o *options) {
		o.before = append(o.before, before...)
		o.after = append(o.after, after...)
	})
}

// WithMetrics registers request metrics on reg. Registering twice on the same
// registry panics, as with any promauto collector.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(o *options) { o.metrics = reg })
}

// WithTracing records an OpenTelemetry client span per request.
func WithTracing(opts ...otelhttp.Option) Option {
	return WithMiddleware(httpx.TracingMiddleware(opts...))
}

// withLookupEnv replaces os.LookupEnv in tests.
func withLookupEnv(fn func(string) (string, bool)) Option {
	return optionFunc(func(o *options) { o.lookupEnv = fn })
}

func defaultOptions() options {
	return options{lookupEnv: os.LookupEnv}
}
