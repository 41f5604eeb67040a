package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/pkg/database"
	apperrors "github.com/utafrali/accounts/pkg/errors"
)

const userColumns = `id, first_name, paternal_last_name, maternal_last_name, email, password_hash, role, created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and fills in the generated ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	query := `
		INSERT INTO users (first_name, paternal_last_name, maternal_last_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "CreateUser", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		u.FirstName,
		u.PaternalLastName,
		u.MaternalLastName,
		u.Email,
		u.PasswordHash,
		u.Role,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (_ *domain.User, err error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetUser", query)
	defer func() { end(err) }()

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// List returns every user ordered by ID.
func (r *UserRepository) List(ctx context.Context) (_ []domain.User, err error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListUsers", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, nil
}

// Update persists the profile fields of u and refreshes updated_at.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (err error) {
	query := `
		UPDATE users
		SET first_name = $1, paternal_last_name = $2, maternal_last_name = $3,
		    email = $4, password_hash = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	ctx, end := database.TraceQuery(ctx, "UpdateUser", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		u.FirstName,
		u.PaternalLastName,
		u.MaternalLastName,
		u.Email,
		u.PasswordHash,
		u.ID,
	).Scan(&u.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NotFound("user", u.ID)
		case database.IsUniqueViolation(err):
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}

	return nil
}

// Delete removes a user. Their addresses are removed by the foreign key
// cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) (err error) {
	query := `DELETE FROM users WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteUser", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}

	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.PaternalLastName,
		&u.MaternalLastName,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
