package http

import (
	"net/http"
	"strings"
)

// UnknownIP is recorded when no client IP signal is available at all.
// "unknown" still participates in rate limiting: all signal-less attempts
// against one email share a single counter.
const UnknownIP = "unknown"

// ExtractClientIP resolves the client IP from proxy headers.
//
// Order:
//  1. X-Forwarded-For, leftmost entry ("client, proxy1, proxy2")
//  2. X-Real-IP
//  3. UnknownIP
//
// The service is deployed behind a reverse proxy that overwrites these
// headers, so they are the canonical signal; RemoteAddr would only ever be
// the proxy itself.
func ExtractClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return UnknownIP
}
