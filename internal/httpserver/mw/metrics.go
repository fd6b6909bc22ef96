package mw

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/launchpad/internal/metrics"
)

// Metrics counts requests by method and status code. A nil m is a passthrough.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r)

			status := ww.status
			if status == 0 {
				status = http.StatusOK
			}
			m.HTTPRequest(r.Method, strconv.Itoa(status))
		})
	}
}
