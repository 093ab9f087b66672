package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/lgc202/pwless-go/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

func main() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	client, err := httpx.New(httpx.WithBaseURL(srv.URL))
	if err != nil {
		panic(err)
	}

	reg := prometheus.NewRegistry()
	metrics, err := httpx.NewMetrics(reg)
	if err != nil {
		panic(err)
	}

	client.WithHooks(
		[]httpx.BeforeHook{
			func(req *http.Request) error {
				req.Header.Set("X-Tenant", "tenant-a")
				return nil
			},
		},
		[]httpx.AfterHook{
			metrics.AfterHook(),
			func(req *http.Request, resp *http.Response, err error, dur time.Duration) {
				code := 0
				if resp != nil {
					code = resp.StatusCode
				}
				fmt.Printf("method=%s url=%s status=%d err=%v dur=%s\n",
					req.Method, req.URL.String(), code, err, dur)
			},
		},
	)

	if _, err := httpx.Send[map[string]bool](context.Background(), client, http.MethodPost, "/events", nil); err != nil {
		panic(err)
	}

	mfs, err := reg.Gather()
	if err != nil {
		panic(err)
	}
	for _, mf := range mfs {
		_, _ = expfmt.MetricFamilyToText(os.Stdout, mf)
	}
}
