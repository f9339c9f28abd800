package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/marketbot/internal/logger"
)

// AllowOnlyCIDRS allows only specific IPs/CIDRs. If the list is empty, it does NOT filter (passthrough).
// A list made only of invalid entries rejects every request.
// trustProxy should be true when running behind a trusted reverse proxy/tunnel (e.g., cloudflared).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m, invalid := newPrefixMatcher(allowed)
	for _, s := range invalid {
		log.Warn("AllowOnlyCIDRS: ignoring invalid entry", logger.String("entry", s))
	}
	if len(m) == 0 && len(invalid) == 0 {
		log.Debug("AllowOnlyCIDRS: empty matcher, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("AllowOnlyCIDRS: initialized with %d rules, trustProxy=%v", len(m), trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, ok := clientIP(r, trustProxy)
			if !ok || !m.allow(ip) {
				log.Debug("AllowOnlyCIDRS: rejected",
					logger.String("ip", ip.String()),
					logger.String("remote_addr", r.RemoteAddr))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
