package pagination

import (
	"math"
	"net/http"
	"strconv"
)

// Limits applied to every paginated listing.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// Params holds normalized pagination parameters.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns the parameters used when a request supplies none.
func DefaultParams() Params {
	return New(DefaultPage, DefaultLimit)
}

// New normalizes page and limit: limit is clamped to [1, MaxLimit] and page
// to [1, math.MaxInt/limit] so the offset never overflows.
func New(page, limit int) Params {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// FromRequest extracts pagination parameters from the page and limit query
// values. Absent or non-numeric values fall back to the defaults; numeric
// values are clamped by New.
func FromRequest(r *http.Request) Params {
	page, limit := DefaultPage, DefaultLimit

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	return New(page, limit)
}

// Meta is the pagination block returned alongside every listing.
type Meta struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// NewMeta computes pagination metadata; TotalPages is ceil(total/limit).
func NewMeta(totalItems int, params Params) Meta {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = totalItems / params.Limit
		if totalItems%params.Limit > 0 {
			totalPages++
		}
	}

	return Meta{
		CurrentPage:  params.Page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: params.Limit,
	}
}
