package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/internal/event"
	"github.com/utafrali/accounts/internal/repository"
	apperrors "github.com/utafrali/accounts/pkg/errors"
	"github.com/utafrali/accounts/pkg/pagination"
	"github.com/utafrali/accounts/pkg/validator"
)

// AddressService implements the shipping address lifecycle.
type AddressService struct {
	addressRepo repository.AddressRepository
	userRepo    repository.UserRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(
	addressRepo repository.AddressRepository,
	userRepo repository.UserRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *AddressService {
	return &AddressService{
		addressRepo: addressRepo,
		userRepo:    userRepo,
		producer:    producer,
		logger:      logger,
	}
}

// UserAddresses is one page of a user's addresses.
type UserAddresses struct {
	User       *domain.UserSummary      `json:"user"`
	Addresses  []domain.ShippingAddress `json:"addresses"`
	Pagination pagination.Meta          `json:"pagination"`
}

// AddressPage is one page of the filtered address listing.
type AddressPage struct {
	Addresses  []domain.AddressWithUserDetail `json:"addresses"`
	Pagination pagination.Meta                `json:"pagination"`
	Filters    map[string]string              `json:"filters"`
}

// DeletedAddress confirms a single delete.
type DeletedAddress struct {
	ID        int64                `json:"id"`
	DeletedBy domain.CallerContext `json:"deletedBy"`
}

// DefaultAddress confirms a default change.
type DefaultAddress struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"usuario_id"`
}

// BulkDeleteResult reports how many of the requested addresses were removed.
type BulkDeleteResult struct {
	DeletedCount   int64 `json:"deletedCount"`
	RequestedCount int   `json:"requestedCount"`
}

// Create validates input and stores a new, non-default address for its
// owner. Checks run in order: required fields, owner existence, the
// per-user limit, then the postal code format.
func (s *AddressService) Create(ctx context.Context, input domain.NewAddress) (*domain.AddressWithUser, error) {
	input.Normalize()
	if missing := input.MissingFields(); len(missing) > 0 {
		return nil, apperrors.MissingFields(missing)
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("get address owner: %w", err)
	}

	count, err := s.addressRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count addresses: %w", err)
	}
	if count >= domain.MaxAddressesPerUser {
		return nil, apperrors.LimitExceeded(
			fmt.Sprintf("user already has the maximum of %d addresses", domain.MaxAddressesPerUser),
			domain.MaxAddressesPerUser,
		).WithDetail("usuario_id", user.ID)
	}

	if !validator.IsPostalCode(input.PostalCode) {
		return nil, invalidPostalCode(input.PostalCode)
	}

	address := &domain.ShippingAddress{
		UserID:     user.ID,
		Street:     input.Street,
		City:       input.City,
		Region:     input.Region,
		PostalCode: input.PostalCode,
		Country:    input.Country,
	}
	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	if err := s.producer.PublishAddressCreated(ctx, address); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish address.created event",
			slog.Int64("address_id", address.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "address created",
		slog.Int64("user_id", user.ID),
		slog.Int64("address_id", address.ID),
	)

	return &domain.AddressWithUser{ShippingAddress: *address, User: user.Summary()}, nil
}

// ListByUser returns one page of a user's addresses, newest first. A user
// with no addresses yields a not-found error rather than an empty page.
func (s *AddressService) ListByUser(ctx context.Context, userID int64, params pagination.Params) (*UserAddresses, error) {
	if userID <= 0 {
		return nil, apperrors.MissingFields([]string{"usuario_id"})
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	addresses, total, err := s.addressRepo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("list user addresses: %w", err)
	}
	if total == 0 {
		return nil, apperrors.Empty("user has no shipping addresses").WithDetail("usuario_id", userID)
	}

	return &UserAddresses{
		User:       user.Summary(),
		Addresses:  addresses,
		Pagination: pagination.NewMeta(total, params),
	}, nil
}

// ListAll returns one page of every address matching filter. The active
// filters are echoed back, including on the not-found error returned when
// nothing matches.
func (s *AddressService) ListAll(ctx context.Context, filter domain.AddressFilter, params pagination.Params) (*AddressPage, error) {
	filter.Normalize()
	active := filter.Active()

	addresses, total, err := s.addressRepo.ListAll(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	if total == 0 {
		return nil, apperrors.Empty("no addresses match the given filters").WithDetail("filters", active)
	}

	return &AddressPage{
		Addresses:  addresses,
		Pagination: pagination.NewMeta(total, params),
		Filters:    active,
	}, nil
}

// GetByID returns an address with its owner's summary.
func (s *AddressService) GetByID(ctx context.Context, id int64) (*domain.AddressWithUser, error) {
	address, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	return address, nil
}

// Update applies the supplied fields of patch. Only the owner or an admin
// may update; the postal code is validated only when supplied.
func (s *AddressService) Update(ctx context.Context, id int64, caller domain.CallerContext, patch domain.AddressPatch) (*domain.AddressWithUser, error) {
	current, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get address for update: %w", err)
	}

	if !caller.CanModify(current.UserID) {
		return nil, apperrors.Forbidden("not allowed to modify this address").WithDetail("address_id", id)
	}

	patch.Normalize()
	if patch.PostalCode != nil && !validator.IsPostalCode(*patch.PostalCode) {
		return nil, invalidPostalCode(*patch.PostalCode)
	}

	updated, err := s.addressRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	if err := s.producer.PublishAddressUpdated(ctx, &updated.ShippingAddress, caller); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish address.updated event",
			slog.Int64("address_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "address updated",
		slog.Int64("address_id", id),
		slog.Int64("caller_id", caller.ID),
	)

	return updated, nil
}

// Delete removes an address. Only the owner or an admin may delete.
func (s *AddressService) Delete(ctx context.Context, id int64, caller domain.CallerContext) (*DeletedAddress, error) {
	current, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get address for delete: %w", err)
	}

	if !caller.CanModify(current.UserID) {
		return nil, apperrors.Forbidden("not allowed to delete this address").WithDetail("address_id", id)
	}

	if err := s.addressRepo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete address: %w", err)
	}

	if err := s.producer.PublishAddressDeleted(ctx, id, current.UserID, caller); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish address.deleted event",
			slog.Int64("address_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "address deleted",
		slog.Int64("address_id", id),
		slog.Int64("caller_id", caller.ID),
		slog.Bool("by_admin", caller.IsAdmin),
	)

	return &DeletedAddress{ID: id, DeletedBy: caller}, nil
}

// SetDefault makes id the only default address of userID. The address is
// not checked to belong to userID.
func (s *AddressService) SetDefault(ctx context.Context, id, userID int64) (*DefaultAddress, error) {
	if userID <= 0 {
		return nil, apperrors.MissingFields([]string{"usuario_id"})
	}

	if err := s.addressRepo.SetDefault(ctx, id, userID); err != nil {
		return nil, fmt.Errorf("set default address: %w", err)
	}

	if err := s.producer.PublishAddressDefaultChanged(ctx, id, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish address.default_changed event",
			slog.Int64("address_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "default address changed",
		slog.Int64("address_id", id),
		slog.Int64("user_id", userID),
	)

	return &DefaultAddress{ID: id, UserID: userID}, nil
}

// BulkDelete removes the caller's addresses among ids. Ids owned by anyone
// else are skipped without error.
func (s *AddressService) BulkDelete(ctx context.Context, ids []int64, caller domain.CallerContext) (*BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.InvalidInput("addressIds must contain at least one id").WithDetail("addressIds", ids)
	}

	deleted, err := s.addressRepo.BulkDelete(ctx, ids, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("bulk delete addresses: %w", err)
	}

	if deleted > 0 {
		if err := s.producer.PublishAddressBulkDeleted(ctx, caller.ID, ids, deleted); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish address.bulk_deleted event",
				slog.Int64("user_id", caller.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "addresses bulk deleted",
		slog.Int64("user_id", caller.ID),
		slog.Int("requested", len(ids)),
		slog.Int64("deleted", deleted),
	)

	return &BulkDeleteResult{DeletedCount: deleted, RequestedCount: len(ids)}, nil
}

func invalidPostalCode(code string) *apperrors.AppError {
	return apperrors.InvalidInput("codigo_postal must be 5 digits optionally followed by a hyphen and 4 digits").
		WithDetail("codigo_postal", code)
}
