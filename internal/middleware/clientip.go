package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const clientIPContextKey contextKey = "client_ip"

// ClientIPMiddleware resolves the client address once per request. The
// connection peer is the client unless it falls inside a trusted proxy
// range; only then are X-Forwarded-For and X-Real-IP consulted.
type ClientIPMiddleware struct {
	trusted []netip.Prefix
}

func NewClientIPMiddleware(trusted []netip.Prefix) *ClientIPMiddleware {
	return &ClientIPMiddleware{trusted: trusted}
}

func (m *ClientIPMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := m.resolve(r)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIPContextKey, ip)))
	})
}

func (m *ClientIPMiddleware) resolve(r *http.Request) string {
	peer, ok := peerAddr(r)
	if !ok {
		return remoteHost(r)
	}
	if !m.isTrusted(peer) {
		return peer.String()
	}

	// Walk right to left: each trusted hop appended the address it saw.
	if forwarded := r.Header.Values("X-Forwarded-For"); len(forwarded) > 0 {
		hops := strings.Split(strings.Join(forwarded, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			hop = hop.Unmap()
			if !m.isTrusted(hop) || i == 0 {
				return hop.String()
			}
		}
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return realIP.Unmap().String()
	}

	return peer.String()
}

func (m *ClientIPMiddleware) isTrusted(addr netip.Addr) bool {
	for _, prefix := range m.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP is the address used for rate limiting and audit entries. Outside
// ClientIPMiddleware it is the connection peer; headers are never trusted.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPContextKey).(string); ok && ip != "" {
		return ip
	}
	return remoteHost(r)
}

func peerAddr(r *http.Request) (netip.Addr, bool) {
	addrPort, err := netip.ParseAddrPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return addrPort.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}

func remoteHost(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return "unknown"
	}

	host, _, err := net.SplitHostPort(remote)
	if err == nil && host != "" {
		return host
	}

	return remote
}
