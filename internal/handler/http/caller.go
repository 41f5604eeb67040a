package http

import (
	"net/http"
	"strconv"

	"github.com/utafrali/accounts/internal/domain"
	apperrors "github.com/utafrali/accounts/pkg/errors"
	"github.com/utafrali/accounts/pkg/httputil"
	"github.com/utafrali/accounts/pkg/middleware"
)

// callerFromRequest builds the caller identity placed in context by the
// auth middleware. It writes a 401 and returns false when none is present.
func callerFromRequest(w http.ResponseWriter, r *http.Request) (domain.CallerContext, bool) {
	id, err := strconv.ParseInt(middleware.UserIDFromContext(r.Context()), 10, 64)
	if err != nil || id < 1 {
		httputil.WriteError(w, r, apperrors.Unauthorized("user not authenticated"), nil)
		return domain.CallerContext{}, false
	}
	return domain.NewCaller(id, middleware.RoleFromContext(r.Context())), true
}
