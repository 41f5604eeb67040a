package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/internal/event"
	"github.com/utafrali/accounts/internal/repository"
	apperrors "github.com/utafrali/accounts/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// Password length bounds. bcrypt ignores input beyond 72 bytes.
const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

// UserService implements profile operations.
type UserService struct {
	userRepo repository.UserRepository
	cache    repository.ProfileCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewUserService creates a new user service. A nil cache disables caching.
func NewUserService(
	userRepo repository.UserRepository,
	cache repository.ProfileCache,
	producer *event.Producer,
	logger *slog.Logger,
) *UserService {
	if cache == nil {
		cache = repository.NopProfileCache{}
	}
	return &UserService{
		userRepo: userRepo,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// GetProfile returns a user, served from the profile cache when possible.
func (s *UserService) GetProfile(ctx context.Context, id int64) (*domain.User, error) {
	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "profile cache read failed",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}

	if err := s.cache.Set(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "profile cache write failed",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}

// UpdateProfile overwrites the supplied fields of a user. Only the user
// themself or an admin may update. A new password is stored as a bcrypt
// hash.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, caller domain.CallerContext, patch domain.UserPatch) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	if !caller.CanModify(user.ID) {
		return nil, apperrors.Forbidden("not allowed to modify this user").WithDetail("user_id", id)
	}

	if patch.FirstName != nil {
		v := strings.TrimSpace(*patch.FirstName)
		if v == "" {
			return nil, apperrors.InvalidInput("nombre must not be empty")
		}
		user.FirstName = v
	}
	if patch.PaternalLastName != nil {
		v := strings.TrimSpace(*patch.PaternalLastName)
		if v == "" {
			return nil, apperrors.InvalidInput("apellido_paterno must not be empty")
		}
		user.PaternalLastName = v
	}
	if patch.MaternalLastName != nil {
		user.MaternalLastName = strings.TrimSpace(*patch.MaternalLastName)
	}
	if patch.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*patch.Email))
		if v == "" {
			return nil, apperrors.InvalidInput("email must not be empty")
		}
		user.Email = v
	}

	passwordChanged := patch.Password != nil
	if passwordChanged {
		hash, err := HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.evict(ctx, id)

	if err := s.producer.PublishUserUpdated(ctx, user, passwordChanged); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user profile updated",
		slog.Int64("user_id", id),
		slog.Int64("caller_id", caller.ID),
		slog.Bool("password_changed", passwordChanged),
	)

	return user, nil
}

// DeleteUser hard-deletes a user and, through the foreign key cascade, their
// addresses. Only the user themself or an admin may delete.
func (s *UserService) DeleteUser(ctx context.Context, id int64, caller domain.CallerContext) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get user for delete: %w", err)
	}

	if !caller.CanModify(user.ID) {
		return apperrors.Forbidden("not allowed to delete this user").WithDetail("user_id", id)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.evict(ctx, id)

	if err := s.producer.PublishUserDeleted(ctx, id, caller); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.deleted event",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.Int64("user_id", id),
		slog.Int64("caller_id", caller.ID),
		slog.Bool("by_admin", caller.IsAdmin),
	)

	return nil
}

// ListUsers returns every user. The result is not paginated.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) evict(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "profile cache eviction failed",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// HashPassword validates the length of a plaintext password and returns its
// bcrypt hash. Each call generates a fresh salt.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return "", apperrors.InvalidInput(fmt.Sprintf("password must be at most %d bytes", maxPasswordLength))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
