package observability

import (
	"net"
	"net/http"
	"strings"
)

// Browsers cannot set headers on a websocket handshake, so the request id may also
// arrive as a query parameter.
const requestIDQueryParam = "requestId"

func DeviceIDFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Device-ID"))
}

func RequestIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" {
		return id
	}
	return r.URL.Query().Get(requestIDQueryParam)
}

// IPFromRequest prefers the first proxy hop, then X-Real-IP, then the peer address.
func IPFromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
