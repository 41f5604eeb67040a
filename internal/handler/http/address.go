package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/internal/service"
	"github.com/utafrali/accounts/pkg/httputil"
	"github.com/utafrali/accounts/pkg/pagination"
	"github.com/utafrali/accounts/pkg/validator"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// AddressHandler handles HTTP requests for shipping address endpoints.
type AddressHandler struct {
	service *service.AddressService
	logger  *slog.Logger
}

// NewAddressHandler creates a new address HTTP handler.
func NewAddressHandler(svc *service.AddressService, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateAddressRequest is the JSON request body for creating an address.
// Required fields are checked by the service so that every missing one is
// reported together.
type CreateAddressRequest struct {
	UserID     int64  `json:"usuario_id" validate:"gte=0"`
	Street     string `json:"direccion" validate:"max=255"`
	City       string `json:"ciudad" validate:"max=100"`
	Region     string `json:"estado_provincia" validate:"max=100"`
	PostalCode string `json:"codigo_postal" validate:"max=10"`
	Country    string `json:"pais" validate:"max=100"`
}

// Normalize trims every text field so length limits apply to stored values.
func (r *CreateAddressRequest) Normalize() {
	r.Street = strings.TrimSpace(r.Street)
	r.City = strings.TrimSpace(r.City)
	r.Region = strings.TrimSpace(r.Region)
	r.PostalCode = strings.TrimSpace(r.PostalCode)
	r.Country = strings.TrimSpace(r.Country)
}

// UpdateAddressRequest is the JSON request body for a partial address update.
type UpdateAddressRequest struct {
	Street     *string `json:"direccion" validate:"omitempty,max=255"`
	City       *string `json:"ciudad" validate:"omitempty,max=100"`
	Region     *string `json:"estado_provincia" validate:"omitempty,max=100"`
	PostalCode *string `json:"codigo_postal" validate:"omitempty,max=10"`
	Country    *string `json:"pais" validate:"omitempty,max=100"`
}

// Normalize trims the supplied fields in place.
func (r *UpdateAddressRequest) Normalize() {
	trimPtrs(r.Street, r.City, r.Region, r.PostalCode, r.Country)
}

func trimPtrs(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// SetDefaultRequest is the JSON request body for changing the default address.
type SetDefaultRequest struct {
	UserID int64 `json:"usuario_id" validate:"gte=0"`
}

// BulkDeleteRequest is the JSON request body for deleting several addresses.
type BulkDeleteRequest struct {
	AddressIDs []int64 `json:"addressIds" validate:"required,min=1,max=100,dive,gt=0"`
}

// --- Handlers ---

// Create handles POST /api/v1/addresses
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateAddressRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	address, err := h.service.Create(r.Context(), domain.NewAddress{
		UserID:     req.UserID,
		Street:     req.Street,
		City:       req.City,
		Region:     req.Region,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger,
			slog.String("operation", "address.create"),
			slog.Int64("user_id", req.UserID),
		)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "address created", address)
}

// ListAll handles GET /api/v1/addresses
func (h *AddressHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AddressFilter{
		City:    q.Get("ciudad"),
		Region:  q.Get("estado_provincia"),
		Country: q.Get("pais"),
	}

	page, err := h.service.ListAll(r.Context(), filter, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger, slog.String("operation", "address.list_all"))
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "addresses retrieved", page)
}

// Get handles GET /api/v1/addresses/{id}
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	address, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger,
			slog.String("operation", "address.get"),
			slog.Int64("address_id", id),
		)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "address retrieved", address)
}

// Update handles PUT /api/v1/addresses/{id}
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req UpdateAddressRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	address, err := h.service.Update(r.Context(), id, caller, domain.AddressPatch{
		Street:     req.Street,
		City:       req.City,
		Region:     req.Region,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger,
			slog.String("operation", "address.update"),
			slog.Int64("address_id", id),
			slog.Int64("caller_id", caller.ID),
		)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "address updated", address)
}

// Delete handles DELETE /api/v1/addresses/{id}
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id, caller)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger,
			slog.String("operation", "address.delete"),
			slog.Int64("address_id", id),
			slog.Int64("caller_id", caller.ID),
		)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "address deleted", deleted)
}

// SetDefault handles POST /api/v1/addresses/{id}/default
func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SetDefaultRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.SetDefault(r.Context(), id, req.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger,
			slog.String("operation", "address.set_default"),
			slog.Int64("address_id", id),
			slog.Int64("user_id", req.UserID),
		)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "default address updated", result)
}

// BulkDelete handles POST /api/v1/addresses/bulk-delete
func (h *AddressHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req BulkDeleteRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.BulkDelete(r.Context(), req.AddressIDs, caller)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger,
			slog.String("operation", "address.bulk_delete"),
			slog.Int64("caller_id", caller.ID),
			slog.Int("requested", len(req.AddressIDs)),
		)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "addresses deleted", result)
}
