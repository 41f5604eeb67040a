package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/internal/event"
	"github.com/utafrali/accounts/internal/repository"
	pkgkafka "github.com/utafrali/accounts/pkg/kafka"
	"github.com/utafrali/accounts/pkg/pagination"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Address Repository ---

type mockAddressRepository struct {
	mock.Mock
}

func (m *mockAddressRepository) Create(ctx context.Context, addr *domain.ShippingAddress) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}

func (m *mockAddressRepository) GetByID(ctx context.Context, id int64) (*domain.AddressWithUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddressWithUser), args.Error(1)
}

func (m *mockAddressRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockAddressRepository) ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]domain.ShippingAddress, int, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ShippingAddress), args.Int(1), args.Error(2)
}

func (m *mockAddressRepository) ListAll(ctx context.Context, filter domain.AddressFilter, params pagination.Params) ([]domain.AddressWithUserDetail, int, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.AddressWithUserDetail), args.Int(1), args.Error(2)
}

func (m *mockAddressRepository) Update(ctx context.Context, id int64, patch domain.AddressPatch) (*domain.AddressWithUser, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddressWithUser), args.Error(1)
}

func (m *mockAddressRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAddressRepository) SetDefault(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *mockAddressRepository) BulkDelete(ctx context.Context, ids []int64, userID int64) (int64, error) {
	args := m.Called(ctx, ids, userID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock Profile Cache ---

type mockProfileCache struct {
	mock.Mock
}

func (m *mockProfileCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockProfileCache) Set(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockProfileCache) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, e *pkgkafka.Event) error {
	args := m.Called(ctx, topic, e)
	return args.Error(0)
}

// --- Test Helpers ---

var (
	_ repository.UserRepository    = (*mockUserRepository)(nil)
	_ repository.AddressRepository = (*mockAddressRepository)(nil)
	_ repository.ProfileCache      = (*mockProfileCache)(nil)
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestProducer returns an event producer whose publisher accepts every
// event, and the publisher so tests can assert on topics.
func newTestProducer() (*event.Producer, *mockPublisher) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return event.NewProducer(pub, newTestLogger()), pub
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:               7,
		FirstName:        "Ana",
		PaternalLastName: "Lopez",
		MaternalLastName: "Garcia",
		Email:            "ana@example.com",
		PasswordHash:     "$2a$12$existing",
		Role:             domain.RoleCustomer,
	}
}

func strPtr(s string) *string { return &s }
