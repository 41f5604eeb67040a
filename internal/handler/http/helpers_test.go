package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/internal/event"
	"github.com/utafrali/accounts/internal/repository"
	"github.com/utafrali/accounts/internal/service"
	"github.com/utafrali/accounts/pkg/health"
	pkgkafka "github.com/utafrali/accounts/pkg/kafka"
	"github.com/utafrali/accounts/pkg/middleware"
	"github.com/utafrali/accounts/pkg/pagination"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAddressRepo struct {
	mock.Mock
}

func (m *mockAddressRepo) Create(ctx context.Context, addr *domain.ShippingAddress) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}

func (m *mockAddressRepo) GetByID(ctx context.Context, id int64) (*domain.AddressWithUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddressWithUser), args.Error(1)
}

func (m *mockAddressRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockAddressRepo) ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]domain.ShippingAddress, int, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ShippingAddress), args.Int(1), args.Error(2)
}

func (m *mockAddressRepo) ListAll(ctx context.Context, filter domain.AddressFilter, params pagination.Params) ([]domain.AddressWithUserDetail, int, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.AddressWithUserDetail), args.Int(1), args.Error(2)
}

func (m *mockAddressRepo) Update(ctx context.Context, id int64, patch domain.AddressPatch) (*domain.AddressWithUser, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddressWithUser), args.Error(1)
}

func (m *mockAddressRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAddressRepo) SetDefault(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *mockAddressRepo) BulkDelete(ctx context.Context, ids []int64, userID int64) (int64, error) {
	args := m.Called(ctx, ids, userID)
	return args.Get(0).(int64), args.Error(1)
}

var (
	_ repository.UserRepository    = (*mockUserRepo)(nil)
	_ repository.AddressRepository = (*mockAddressRepo)(nil)
)

// discardPublisher accepts every event.
type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

// ============================================================================
// Test router
// ============================================================================

// Bearer tokens understood by the stub validator.
const (
	ownerToken = "token-owner"
	otherToken = "token-other"
	adminToken = "token-admin"
)

var errBadToken = errors.New("bad token")

func stubValidator(token string) (*middleware.Claims, error) {
	switch token {
	case ownerToken:
		return &middleware.Claims{UserID: "7", Email: "ana@example.com", Role: domain.RoleCustomer}, nil
	case otherToken:
		return &middleware.Claims{UserID: "8", Email: "luis@example.com", Role: domain.RoleCustomer}, nil
	case adminToken:
		return &middleware.Claims{UserID: "1", Email: "admin@example.com", Role: domain.RoleAdmin}, nil
	}
	return nil, errBadToken
}

type testEnv struct {
	router    http.Handler
	users     *mockUserRepo
	addresses *mockAddressRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	users := &mockUserRepo{}
	addresses := &mockAddressRepo{}
	producer := event.NewProducer(discardPublisher{}, logger)

	addressSvc := service.NewAddressService(addresses, users, producer, logger)
	userSvc := service.NewUserService(users, nil, producer, logger)

	router := NewRouter(addressSvc, userSvc, stubValidator, health.NewHandler(), logger, RouterConfig{
		CORS: middleware.DefaultCORSConfig(),
	})

	t.Cleanup(func() {
		users.AssertExpectations(t)
		addresses.AssertExpectations(t)
	})

	return &testEnv{router: router, users: users, addresses: addresses}
}

// do sends a request through the router. body may be nil, a raw JSON
// string, or a value to be JSON encoded.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	switch b := body.(type) {
	case nil:
		return e.doRaw(t, method, path, token, "", "")
	case string:
		return e.doRaw(t, method, path, token, "application/json", b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		return e.doRaw(t, method, path, token, "application/json", string(raw))
	}
}

func (e *testEnv) doRaw(t *testing.T, method, path, token, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// envelope mirrors the response envelope with Data left raw for per-test decoding.
type envelope struct {
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Code      string          `json:"code"`
	Details   map[string]any  `json:"details"`
	RequestID string          `json:"request_id"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
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

func sampleAddress() *domain.AddressWithUser {
	return &domain.AddressWithUser{
		ShippingAddress: domain.ShippingAddress{
			ID:         11,
			UserID:     7,
			Street:     "Av. Reforma 10",
			City:       "CDMX",
			Region:     "CDMX",
			PostalCode: "06600",
			Country:    "Mexico",
		},
		User: sampleUser().Summary(),
	}
}
