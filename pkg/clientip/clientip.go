package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Header names inspected by GetIP, highest priority first.
const (
	HeaderCFConnectingIP = "CF-Connecting-IP"
	HeaderDOConnectingIP = "DO-Connecting-IP"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderXRealIP        = "X-Real-IP"
)

// GetIP returns the client IP for r.
func GetIP(r *http.Request) string {
	if ip := validIP(r.Header.Get(HeaderCFConnectingIP)); ip != "" {
		return ip
	}
	if ip := validIP(r.Header.Get(HeaderDOConnectingIP)); ip != "" {
		return ip
	}
	if xff := r.Header.Get(HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := validIP(first); ip != "" {
			return ip
		}
	}
	if ip := validIP(r.Header.Get(HeaderXRealIP)); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := validIP(host); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func validIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil || ip.Equal(net.IPv4zero) {
		return ""
	}
	return ip.String()
}
