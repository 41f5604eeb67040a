package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/internal/service"
	"github.com/utafrali/accounts/pkg/httputil"
	"github.com/utafrali/accounts/pkg/pagination"
	"github.com/utafrali/accounts/pkg/validator"
)

// UserHandler handles HTTP requests for user profile endpoints.
type UserHandler struct {
	users     *service.UserService
	addresses *service.AddressService
	logger    *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(users *service.UserService, addresses *service.AddressService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		addresses: addresses,
		logger:    logger,
	}
}

// UpdateUserRequest is the JSON request body for a partial profile update.
type UpdateUserRequest struct {
	FirstName        *string `json:"nombre" validate:"omitempty,max=100"`
	PaternalLastName *string `json:"apellido_paterno" validate:"omitempty,max=100"`
	MaternalLastName *string `json:"apellido_materno" validate:"omitempty,max=100"`
	Email            *string `json:"email" validate:"omitempty,email,max=255"`
	Password         *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// Normalize trims names and email. The password is taken verbatim.
func (r *UpdateUserRequest) Normalize() {
	trimPtrs(r.FirstName, r.PaternalLastName, r.MaternalLastName, r.Email)
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger, slog.String("operation", "user.list"))
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "users retrieved", users)
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	user, err := h.users.GetProfile(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger,
			slog.String("operation", "user.get"),
			slog.Int64("user_id", id),
		)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "user retrieved", user)
}

// Update handles PUT /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req UpdateUserRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), id, caller, domain.UserPatch{
		FirstName:        req.FirstName,
		PaternalLastName: req.PaternalLastName,
		MaternalLastName: req.MaternalLastName,
		Email:            req.Email,
		Password:         req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger,
			slog.String("operation", "user.update"),
			slog.Int64("user_id", id),
			slog.Int64("caller_id", caller.ID),
		)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "user updated", user)
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), id, caller); err != nil {
		httputil.WriteError(w, r, err, h.logger,
			slog.String("operation", "user.delete"),
			slog.Int64("user_id", id),
			slog.Int64("caller_id", caller.ID),
		)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAddresses handles GET /api/v1/users/{id}/addresses
func (h *UserHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	result, err := h.addresses.ListByUser(r.Context(), id, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger,
			slog.String("operation", "address.list_by_user"),
			slog.Int64("user_id", id),
		)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "user addresses retrieved", result)
}
