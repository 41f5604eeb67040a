package http

import (
	"net/http"
	"strings"

	"github.com/utafrali/accounts/pkg/httputil"
	"github.com/utafrali/accounts/pkg/logger"
)

// ContentTypeJSON rejects requests that declare a body type other than
// application/json. Requests without a Content-Type header pass through.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error:     "Content-Type must be application/json",
					Code:      "UNSUPPORTED_MEDIA_TYPE",
					RequestID: logger.CorrelationIDFromContext(r.Context()),
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
