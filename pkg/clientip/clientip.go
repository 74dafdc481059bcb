package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from the request.
// Uses r.RemoteAddr only (no proxy headers). Use for rate limiting and logging
// when traffic goes directly to the app (e.g. Vercel → Render, no CDN).
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}

// FromRequest returns the respondent address recorded with a submission:
// the first X-Forwarded-For entry, then X-Real-IP, then the RemoteAddr host.
// Returns "" when nothing usable is present.
func FromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if r.RemoteAddr == "" {
		return ""
	}
	return RealClientIP(r)
}

// UserAgent returns the raw User-Agent header, or nil when the header is absent.
func UserAgent(r *http.Request) *string {
	if _, ok := r.Header["User-Agent"]; !ok {
		return nil
	}
	ua := r.Header.Get("User-Agent")
	return &ua
}
