package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the caller address from X-Forwarded-For (first hop),
// X-Real-IP and finally the connection's remote address. IPv4-mapped IPv6
// addresses are reported in their IPv4 form.
func ClientIP(r *http.Request) string {
	ip := ""

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	if ip == "" {
		ip = strings.TrimSpace(r.Header.Get("X-Real-IP"))
	}

	if ip == "" {
		ip = r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
	}

	return strings.TrimPrefix(ip, "::ffff:")
}
