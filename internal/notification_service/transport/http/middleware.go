package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ordernotify/golang_services/internal/platform/crontoken"
)

// APIKeyHeader carries the shared secret on every protected route.
const APIKeyHeader = "apikey"

// APIKeyMiddleware rejects requests whose apikey header does not match apiKey.
func APIKeyMiddleware(apiKey string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
				logger.WarnContext(r.Context(), "Rejected request with bad api key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				writeMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CronTrust describes which callers may trigger the expiration sweep.
type CronTrust struct {
	Secret           string
	TrustedHeader    string
	TrustedUserAgent string
}

// Trusted reports whether r comes from the scheduler: a signed scheduler token, the bare
// secret as bearer token, or the scheduling platform's marker header or user agent.
func (c CronTrust) Trusted(r *http.Request) bool {
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && c.Secret != "" {
		bearer = strings.TrimSpace(bearer)
		if subtle.ConstantTimeCompare([]byte(bearer), []byte(c.Secret)) == 1 {
			return true
		}
		if crontoken.Verify(c.Secret, bearer) == nil {
			return true
		}
	}
	if c.TrustedHeader != "" && r.Header.Get(c.TrustedHeader) != "" {
		return true
	}
	if c.TrustedUserAgent != "" && strings.Contains(r.UserAgent(), c.TrustedUserAgent) {
		return true
	}
	return false
}

func CronAuthMiddleware(trust CronTrust, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !trust.Trusted(r) {
				logger.WarnContext(r.Context(), "Rejected untrusted sweep trigger", "remote_addr", r.RemoteAddr, "user_agent", r.UserAgent())
				writeMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
