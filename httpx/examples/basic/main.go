package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/lgc202/pwless-go/httpx"
)

func main() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/users":
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprintf(w, `{"query":%q}`, r.URL.RawQuery)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"not found"}`)
		}
	}))
	defer srv.Close()

	client, err := httpx.New(
		httpx.WithBaseURL(srv.URL),
		httpx.WithTimeout(3*time.Second),
	)
	if err != nil {
		panic(err)
	}

	payload := httpx.NewPayload().Set("team", "core").SetList("roles", "admin", "dev")
	out, err := httpx.Send[map[string]string](context.Background(), client, http.MethodGet, "/v1/users", payload)
	if err != nil {
		panic(err)
	}
	fmt.Println("query =", out["query"])

	_, err = httpx.Send[map[string]string](context.Background(), client, http.MethodGet, "/v1/missing", nil)
	var ae *httpx.APIError
	if errors.As(err, &ae) {
		fmt.Println("status =", ae.StatusCode, "body =", ae.Body)
	}
}
