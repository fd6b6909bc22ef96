// Package linkaudit checks every active program's application link and writes
// the result back to the Programs database.
package linkaudit

import (
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

// Classify maps the outcome of a link check onto a link status.
//
//   - transport error or status >= 400: Broken
//   - 2xx landing on the input URL: OK
//   - 2xx landing elsewhere: Redirect
//   - anything else: Unknown
func Classify(inputURL, finalURL string, status int, err error) domain.LinkStatus {
	switch {
	case err != nil || status >= 400:
		return domain.LinkBroken
	case status >= 200 && status < 300:
		if finalURL == "" || sameLink(inputURL, finalURL) {
			return domain.LinkOK
		}
		return domain.LinkRedirect
	}
	return domain.LinkUnknown
}

func sameLink(a, b string) bool {
	return normalizeLink(a) == normalizeLink(b)
}

func normalizeLink(s string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(s)), "/")
}
