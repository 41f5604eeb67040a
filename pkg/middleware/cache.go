package middleware

import "net/http"

// Cache-Control directives for account reads. Every response here depends on
// the bearer token, so nothing is ever marked public.
const (
	// CachePrivateShort suits address listings, which change rarely and
	// only through this service.
	CachePrivateShort = "private, max-age=300"
	// CacheNoStore suits profile reads, which carry personal data.
	CacheNoStore = "no-store"
)

// CacheControl sets directive on GET and HEAD responses and adds
// Vary: Authorization so a browser cache never serves one caller's
// addresses to another.
func CacheControl(directive string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				h := w.Header()
				h.Set("Cache-Control", directive)
				h.Add("Vary", "Authorization")
			}
			next.ServeHTTP(w, r)
		})
	}
}
