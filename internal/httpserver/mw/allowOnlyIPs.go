package mw

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

// deny answers with the API's error shape.
func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}{Error: msg})
}

// AllowOnlyCIDRS guards the admin and probe routes with an IP/CIDR allow-list.
// An empty list is a passthrough. trustProxy should be true only when the
// server is reachable solely through a trusted proxy or tunnel.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	set, invalid := parseAddrSet(allowed)
	for _, s := range invalid {
		log.Warn("ignoring invalid allow-list entry", logger.String("entry", s))
	}
	if set.empty() {
		log.Debug("AllowOnlyCIDRS: empty allow-list, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("AllowOnlyCIDRS: %d prefixes, trustProxy=%v", len(set.prefixes), trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r, trustProxy)
			if !set.contains(ip) {
				log.Warn("admin route rejected",
					logger.String("remote_ip", ip),
					logger.String("path", r.URL.Path))
				deny(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
