package pwless

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lgc202/pwless-go/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func envFrom(vars map[string]string) Option {
	return withLookupEnv(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
}

var noEnv = envFrom(nil)

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	base := []Option{noEnv, WithSecret("test-secret"), WithBaseURL(srv.URL)}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNew_MissingSecretFailsAtConstruction(t *testing.T) {
	c, err := New(noEnv)

	require.Error(t, err)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrMissingSecret)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "secret", ce.Field)
	assert.Contains(t, err.Error(), EnvSecret)
}

func TestNew_EmptyExplicitSecretFallsBackToEnv(t *testing.T) {
	c, err := New(envFrom(map[string]string{EnvSecret: "from-env"}), WithSecret(""))
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Config().Secret)
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(noEnv, WithSecret("s"))
	require.NoError(t, err)

	cfg := c.Config()
	assert.Equal(t, "s", cfg.Secret)
	assert.Equal(t, "https://v4.passwordless.dev", cfg.BaseURL)
	assert.Equal(t, 5000*time.Millisecond, cfg.Timeout)
}

func TestNew_ResolutionOrder(t *testing.T) {
	env := envFrom(map[string]string{
		EnvSecret: "env-secret",
		EnvAPIURL: "https://env.example.com",
	})

	tests := []struct {
		name string
		opts []Option
		want Config
	}{
		{
			name: "environment",
			opts: []Option{env},
			want: Config{Secret: "env-secret", BaseURL: "https://env.example.com", Timeout: DefaultTimeout},
		},
		{
			name: "explicit wins",
			opts: []Option{env, WithSecret("opt-secret"), WithBaseURL("http://localhost:8080"), WithTimeout(time.Second)},
			want: Config{Secret: "opt-secret", BaseURL: "http://localhost:8080", Timeout: time.Second},
		},
		{
			name: "non-positive timeout uses default",
			opts: []Option{env, WithTimeout(-time.Second)},
			want: Config{Secret: "env-secret", BaseURL: "https://env.example.com", Timeout: DefaultTimeout},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Config())
		})
	}
}

func TestNew_ReadsProcessEnvironmentOnce(t *testing.T) {
	t.Setenv(EnvSecret, "process-secret")
	t.Setenv(EnvAPIURL, "")

	c, err := New()
	require.NoError(t, err)

	t.Setenv(EnvSecret, "changed")
	assert.Equal(t, "process-secret", c.Config().Secret)
	assert.Equal(t, DefaultBaseURL, c.Config().BaseURL)
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"v4.passwordless.dev", "ftp://v4.passwordless.dev", "https://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := New(noEnv, WithSecret("s"), WithBaseURL(raw))
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "base url", ce.Field)
		})
	}
}

func TestSend_GETBuildsQueryAndAttachesSecret(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv)
	_, err := Send[[]Credential](context.Background(), c, http.MethodGet, "/credentials/list",
		httpx.NewPayload().Set("userId", "abc"))
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/credentials/list?userId=abc", got.URL.RequestURI())
	assert.Equal(t, "test-secret", got.Header.Get(SecretHeader))
	assert.Empty(t, got.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(got.Header.Get("User-Agent"), "pwless-go/"))
}

func TestSend_GETListValue(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv)
	_, err := Send[map[string]any](context.Background(), c, http.MethodGet, "/x",
		httpx.NewPayload().SetList("a", "x", "y"))
	require.NoError(t, err)
	assert.Equal(t, "a=x,y", rawQuery)
}

func TestSend_POSTContentLengthCountsBytes(t *testing.T) {
	var (
		body   []byte
		length string
		ctype  string
		secret string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		length = r.Header.Get("Content-Length")
		ctype = r.Header.Get("Content-Type")
		secret = r.Header.Get(SecretHeader)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv)
	payload := httpx.NewPayload().Set("userId", "用户-ü").Set("nickname", "🔑")
	out, err := Send[map[string]bool](context.Background(), c, "", "/register/token", payload)
	require.NoError(t, err)
	assert.True(t, out["ok"])

	want := `{"userId":"用户-ü","nickname":"🔑"}`
	assert.Equal(t, want, string(body))
	assert.Equal(t, strconv.Itoa(len(want)), length)
	assert.Greater(t, len(want), len([]rune(want)))
	assert.Equal(t, "application/json", ctype)
	assert.Equal(t, "test-secret", secret)
}

func TestSend_RejectsUnsupportedMethodWithoutIO(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv)
	_, err := Send[any](context.Background(), c, http.MethodDelete, "/credentials/delete", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errMethod)
	assert.Zero(t, hits)
}

func TestSend_404RejectsWithParsedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"not found"}`)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv)
	_, err := c.ListCredentials(context.Background(), "nobody")

	ae, ok := AsAPIError(err)
	require.True(t, ok, "expected *APIError, got %T: %v", err, err)
	assert.Equal(t, http.StatusNotFound, ae.StatusCode)
	assert.Equal(t, map[string]any{"error": "not found"}, ae.Body)
	assert.JSONEq(t, `{"error":"not found"}`, string(ae.Raw))
}

func TestSend_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"userId":`)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv)
	creds, err := c.ListCredentials(context.Background(), "abc")

	assert.Nil(t, creds)
	var se *json.SyntaxError
	assert.ErrorAs(t, err, &se)
}

func TestSend_TimeoutMentionsConfiguredDuration(t *testing.T) {
	closed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(closed)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv, WithTimeout(75*time.Millisecond))
	_, err := c.ListCredentials(context.Background(), "abc")

	require.True(t, IsTimeout(err), "expected timeout, got %T: %v", err, err)
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 75*time.Millisecond, te.Duration)
	assert.Contains(t, err.Error(), "75")

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not closed after the timeout")
	}
}

func TestSend_ConcurrentCallsKeepTheirOwnResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.URL.Query().Get("userId")
		if user == "slow" {
			time.Sleep(100 * time.Millisecond)
		}
		_ = json.NewEncoder(w).Encode([]Credential{{UserID: user, Nickname: "key-" + user}})
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv)

	users := []string{"slow", "fast-1", "fast-2"}
	got := make([][]Credential, len(users))
	errs := make([]error, len(users))
	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], errs[i] = c.ListCredentials(context.Background(), u)
		}()
	}
	wg.Wait()

	for i, u := range users {
		require.NoError(t, errs[i], u)
		require.Len(t, got[i], 1)
		assert.Equal(t, u, got[i][0].UserID)
		assert.Equal(t, "key-"+u, got[i][0].Nickname)
	}
}

func TestWithRateLimit_SpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv, WithRateLimit(10, 1))
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.ListCredentials(context.Background(), "abc")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestWithMetrics_CountsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	c := newTestClient(t, srv, WithMetrics(reg))
	_, err := c.ListCredentials(context.Background(), "abc")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "pwless_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWithMetrics_ClientsShareOneRegistry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	a := newTestClient(t, srv, WithMetrics(reg))
	b := newTestClient(t, srv, WithMetrics(reg))

	_, err := a.ListCredentials(context.Background(), "abc")
	require.NoError(t, err)
	_, err = b.ListCredentials(context.Background(), "abc")
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != "pwless_client_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, total)
}

func TestWithLogger_TagsClientLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := newTestClient(t, srv, WithLogger(logger))
	_, err := c.ListCredentials(context.Background(), "abc")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"request done"`)
	assert.Contains(t, buf.String(), `"client":"pwless"`)
}

func TestWithTracing_RecordsSpan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	c := newTestClient(t, srv, WithTracing(otelhttp.WithTracerProvider(tp)))
	_, err := c.ListCredentials(context.Background(), "abc")
	require.NoError(t, err)
	assert.Len(t, sr.Ended(), 1)
}

func TestWithHooks_BeforeHookErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	denied := errors.New("denied")
	c := newTestClient(t, srv, WithHooks([]httpx.BeforeHook{func(*http.Request) error { return denied }}, nil))
	_, err := c.ListCredentials(context.Background(), "abc")
	assert.ErrorIs(t, err, denied)
}
