package repository

import (
	"context"
	"errors"

	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/pkg/pagination"
)

// ErrCacheMiss is returned by ProfileCache.Get when no entry is stored.
var ErrCacheMiss = errors.New("cache miss")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// AddressRepository defines persistence operations for shipping addresses.
// Reads that return an address join it with its owner's projection.
type AddressRepository interface {
	Create(ctx context.Context, addr *domain.ShippingAddress) error
	GetByID(ctx context.Context, id int64) (*domain.AddressWithUser, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]domain.ShippingAddress, int, error)
	ListAll(ctx context.Context, filter domain.AddressFilter, params pagination.Params) ([]domain.AddressWithUserDetail, int, error)
	// Update applies the non-nil fields of patch and re-reads the joined
	// record in one transaction.
	Update(ctx context.Context, id int64, patch domain.AddressPatch) (*domain.AddressWithUser, error)
	Delete(ctx context.Context, id int64) error
	// SetDefault clears the default flag on every address of userID and then
	// sets it on id, atomically.
	SetDefault(ctx context.Context, id, userID int64) error
	// BulkDelete removes the addresses in ids that belong to userID and
	// returns how many rows were deleted.
	BulkDelete(ctx context.Context, ids []int64, userID int64) (int64, error)
}

// ProfileCache is a read-through cache of user profiles.
type ProfileCache interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// NopProfileCache is used when caching is disabled. Every Get misses.
type NopProfileCache struct{}

func (NopProfileCache) Get(context.Context, int64) (*domain.User, error) { return nil, ErrCacheMiss }
func (NopProfileCache) Set(context.Context, *domain.User) error { return nil }
func (NopProfileCache) Delete(context.Context, int64) error { return nil }
