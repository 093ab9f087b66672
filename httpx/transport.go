package httpx

import (
	"net"
	"net/http"
	"time"
)

// DefaultTransport returns a clone of http.DefaultTransport that never reuses
// connections: each request dials, exchanges and closes its own socket.
//
// Dial and TLS handshake carry no timeout of their own; the request context
// deadline armed by Client.Do bounds the whole exchange.
func DefaultTransport() *http.Transport {
	base, _ := http.DefaultTransport.(*http.Transport)
	if base == nil {
		return &http.Transport{DisableKeepAlives: true}
	}
	t := base.Clone()

	t.DialContext = (&net.Dialer{KeepAlive: -1}).DialContext
	t.TLSHandshakeTimeout = 0
	t.ResponseHeaderTimeout = 0
	t.ExpectContinueTimeout = 1 * time.Second
	t.DisableKeepAlives = true
	t.MaxIdleConns = 0
	t.MaxIdleConnsPerHost = -1
	t.IdleConnTimeout = 0
	t.ForceAttemptHTTP2 = false
	return t
}
