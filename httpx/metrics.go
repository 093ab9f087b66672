package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds client-side Prometheus metrics for outgoing requests.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers client metrics on reg and returns them. Clients that
// share a registry share the collectors registered by the first of them.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pwless_client_requests_total",
		Help: "Total requests sent to the Passwordless API.",
	}, []string{"method", "path", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pwless_client_request_duration_seconds",
		Help:    "Time until response headers arrived, in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	if reg == nil {
		return &Metrics{RequestsTotal: requests, RequestDuration: duration}, nil
	}
	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &Metrics{RequestsTotal: requests, RequestDuration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	var zero C
	return zero, err
}

// Observe records one round trip. status is "error" when no response arrived.
func (m *Metrics) Observe(req *http.Request, resp *http.Response, err error, dur time.Duration) {
	if m == nil || req == nil {
		return
	}
	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	m.RequestsTotal.WithLabelValues(req.Method, req.URL.Path, status).Inc()
	m.RequestDuration.WithLabelValues(req.Method, req.URL.Path).Observe(dur.Seconds())
}

// AfterHook adapts Observe for Client.WithHooks.
func (m *Metrics) AfterHook() AfterHook {
	return m.Observe
}
