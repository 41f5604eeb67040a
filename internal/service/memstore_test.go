package service

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/utafrali/accounts/internal/domain"
	apperrors "github.com/utafrali/accounts/pkg/errors"
	"github.com/utafrali/accounts/pkg/pagination"
)

// memAddressRepository is an in-memory AddressRepository used to check
// properties that span several operations.
type memAddressRepository struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	rows   map[int64]*domain.ShippingAddress
	nextID int64
	clock  time.Time
}

func newMemAddressRepository(users ...*domain.User) *memAddressRepository {
	r := &memAddressRepository{
		users: make(map[int64]*domain.User),
		rows:  make(map[int64]*domain.ShippingAddress),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memAddressRepository) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memAddressRepository) joined(a *domain.ShippingAddress) *domain.AddressWithUser {
	out := &domain.AddressWithUser{ShippingAddress: *a}
	if u, ok := r.users[a.UserID]; ok {
		out.User = u.Summary()
	}
	return out
}

func (r *memAddressRepository) Create(_ context.Context, a *domain.ShippingAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = r.tick()
	a.UpdatedAt = a.CreatedAt
	a.IsDefault = false
	cp := *a
	r.rows[a.ID] = &cp
	return nil
}

func (r *memAddressRepository) GetByID(_ context.Context, id int64) (*domain.AddressWithUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("address", id)
	}
	return r.joined(a), nil
}

func (r *memAddressRepository) CountByUser(_ context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ownedBy(userID)), nil
}

func (r *memAddressRepository) ownedBy(userID int64) []domain.ShippingAddress {
	var out []domain.ShippingAddress
	for _, a := range r.rows {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memAddressRepository) ListByUser(_ context.Context, userID int64, params pagination.Params) ([]domain.ShippingAddress, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.ownedBy(userID)
	start := min(params.Offset, len(all))
	end := min(start+params.Limit, len(all))
	return append([]domain.ShippingAddress{}, all[start:end]...), len(all), nil
}

func (r *memAddressRepository) ListAll(context.Context, domain.AddressFilter, pagination.Params) ([]domain.AddressWithUserDetail, int, error) {
	return []domain.AddressWithUserDetail{}, 0, nil
}

func (r *memAddressRepository) Update(_ context.Context, id int64, patch domain.AddressPatch) (*domain.AddressWithUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("address", id)
	}
	applyPatch(row, patch)
	row.UpdatedAt = r.tick()
	return r.joined(row), nil
}

// applyPatch mirrors the COALESCE update: nil fields keep the stored value.
func applyPatch(a *domain.ShippingAddress, p domain.AddressPatch) {
	for _, f := range []struct {
		dst *string
		src *string
	}{
		{&a.Street, p.Street},
		{&a.City, p.City},
		{&a.Region, p.Region},
		{&a.PostalCode, p.PostalCode},
		{&a.Country, p.Country},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
}

func (r *memAddressRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperrors.NotFound("address", id)
	}
	delete(r.rows, id)
	return nil
}

func (r *memAddressRepository) SetDefault(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperrors.NotFound("address", id)
	}
	for _, a := range r.rows {
		if a.UserID == userID {
			a.IsDefault = false
		}
	}
	r.rows[id].IsDefault = true
	return nil
}

func (r *memAddressRepository) BulkDelete(_ context.Context, ids []int64, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, a := range r.rows {
		if a.UserID == userID && slices.Contains(ids, id) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

// memUserRepository resolves users from the same map as the address store.
type memUserRepository struct {
	store *memAddressRepository
}

func (r memUserRepository) Create(context.Context, *domain.User) error { return nil }

func (r memUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (r memUserRepository) List(context.Context) ([]domain.User, error) { return nil, nil }
func (r memUserRepository) Update(context.Context, *domain.User) error { return nil }
func (r memUserRepository) Delete(context.Context, int64) error { return nil }
