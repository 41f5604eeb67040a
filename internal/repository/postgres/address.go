package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/pkg/database"
	apperrors "github.com/utafrali/accounts/pkg/errors"
	"github.com/utafrali/accounts/pkg/pagination"
)

const (
	addressColumns = `a.id, a.user_id, a.street, a.city, a.region, a.postal_code, a.country, a.is_default, a.created_at, a.updated_at`

	addressWithUserSelect = `
		SELECT ` + addressColumns + `, u.first_name, u.paternal_last_name
		FROM shipping_addresses a
		JOIN users u ON u.id = a.user_id`

	addressWithUserDetailSelect = `
		SELECT ` + addressColumns + `, u.first_name, u.paternal_last_name, u.maternal_last_name
		FROM shipping_addresses a
		JOIN users u ON u.id = a.user_id`
)

// AddressRepository implements repository.AddressRepository using PostgreSQL.
type AddressRepository struct {
	db database.DBTX
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(db database.DBTX) *AddressRepository {
	return &AddressRepository{db: db}
}

// Create inserts a non-default address and fills in the generated ID and
// timestamps.
func (r *AddressRepository) Create(ctx context.Context, a *domain.ShippingAddress) (err error) {
	query := `
		INSERT INTO shipping_addresses (user_id, street, city, region, postal_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING id, created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "CreateAddress", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		a.UserID,
		a.Street,
		a.City,
		a.Region,
		a.PostalCode,
		a.Country,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("user", a.UserID)
		}
		return fmt.Errorf("insert address: %w", err)
	}
	a.IsDefault = false

	return nil
}

// GetByID retrieves an address joined with its owner's summary.
func (r *AddressRepository) GetByID(ctx context.Context, id int64) (_ *domain.AddressWithUser, err error) {
	query := addressWithUserSelect + ` WHERE a.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetAddress", query)
	defer func() { end(err) }()

	a, err := scanAddressWithUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("address", id)
		}
		return nil, fmt.Errorf("get address %d: %w", id, err)
	}
	return a, nil
}

// CountByUser returns how many addresses userID owns.
func (r *AddressRepository) CountByUser(ctx context.Context, userID int64) (_ int, err error) {
	query := `SELECT COUNT(*) FROM shipping_addresses WHERE user_id = $1`

	ctx, end := database.TraceQuery(ctx, "CountAddresses", query)
	defer func() { end(err) }()

	var n int
	if err = r.db.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count addresses for user %d: %w", userID, err)
	}
	return n, nil
}

// ListByUser returns one page of userID's addresses, newest first, together
// with the total number the user owns.
func (r *AddressRepository) ListByUser(ctx context.Context, userID int64, params pagination.Params) (_ []domain.ShippingAddress, _ int, err error) {
	query := `
		SELECT ` + addressColumns + `
		FROM shipping_addresses a
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $2 OFFSET $3`

	total, err := r.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	ctx, end := database.TraceQuery(ctx, "ListAddressesByUser", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, userID, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list addresses for user %d: %w", userID, err)
	}
	defer rows.Close()

	addresses := []domain.ShippingAddress{}
	for rows.Next() {
		var a domain.ShippingAddress
		if err := scanAddress(rows, &a); err != nil {
			return nil, 0, fmt.Errorf("scan address row: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate address rows: %w", err)
	}

	return addresses, total, nil
}

// ListAll returns one page of every address matching filter, newest first,
// joined with the owner's full projection, together with the filtered total.
func (r *AddressRepository) ListAll(ctx context.Context, filter domain.AddressFilter, params pagination.Params) (_ []domain.AddressWithUserDetail, _ int, err error) {
	where, args := filterClause(filter)

	countQuery := `SELECT COUNT(*) FROM shipping_addresses a` + where
	query := addressWithUserDetailSelect + where +
		fmt.Sprintf(` ORDER BY a.created_at DESC, a.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	ctx, end := database.TraceQuery(ctx, "ListAddresses", query)
	defer func() { end(err) }()

	var total int
	if err = r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count addresses: %w", err)
	}

	rows, err := r.db.Query(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []domain.AddressWithUserDetail{}
	for rows.Next() {
		var (
			a      domain.AddressWithUserDetail
			detail domain.UserDetail
		)
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Street, &a.City, &a.Region, &a.PostalCode,
			&a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
			&detail.FirstName, &detail.PaternalLastName, &detail.MaternalLastName,
		); err != nil {
			return nil, 0, fmt.Errorf("scan address row: %w", err)
		}
		detail.ID = a.UserID
		a.User = &detail
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate address rows: %w", err)
	}

	return addresses, total, nil
}

// Update applies the supplied fields of patch, refreshes updated_at and
// re-reads the joined record within one transaction. Nil patch fields keep
// the row's current value.
func (r *AddressRepository) Update(ctx context.Context, id int64, patch domain.AddressPatch) (_ *domain.AddressWithUser, err error) {
	query := `
		UPDATE shipping_addresses
		SET street = COALESCE($2, street),
			city = COALESCE($3, city),
			region = COALESCE($4, region),
			postal_code = COALESCE($5, postal_code),
			country = COALESCE($6, country),
			updated_at = NOW()
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "UpdateAddress", query)
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, query, id, patch.Street, patch.City, patch.Region, patch.PostalCode, patch.Country)
	if err != nil {
		return nil, fmt.Errorf("update address %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return nil, apperrors.NotFound("address", id)
	}

	updated, err := scanAddressWithUser(tx.QueryRow(ctx, addressWithUserSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("re-read address %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return updated, nil
}

// Delete removes an address inside a transaction.
func (r *AddressRepository) Delete(ctx context.Context, id int64) (err error) {
	query := `DELETE FROM shipping_addresses WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteAddress", query)
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete address %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("address", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// SetDefault marks id as the default address, unsetting every previous
// default of userID within a transaction. The address is not required to
// belong to userID.
func (r *AddressRepository) SetDefault(ctx context.Context, id, userID int64) (err error) {
	const (
		clearQuery = `UPDATE shipping_addresses SET is_default = false, updated_at = NOW() WHERE user_id = $1 AND is_default = true`
		setQuery   = `UPDATE shipping_addresses SET is_default = true, updated_at = NOW() WHERE id = $1`
	)

	ctx, end := database.TraceQuery(ctx, "SetDefaultAddress", setQuery)
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, clearQuery, userID)
	if err != nil {
		return fmt.Errorf("unset default address: %w", err)
	}

	ct, err := tx.Exec(ctx, setQuery, id)
	if err != nil {
		return fmt.Errorf("set default address: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("address", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// BulkDelete removes the addresses in ids owned by userID. Ids owned by
// anyone else are ignored.
func (r *AddressRepository) BulkDelete(ctx context.Context, ids []int64, userID int64) (_ int64, err error) {
	query := `DELETE FROM shipping_addresses WHERE id = ANY($1) AND user_id = $2`

	ctx, end := database.TraceQuery(ctx, "BulkDeleteAddresses", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, ids, userID)
	if err != nil {
		return 0, fmt.Errorf("bulk delete addresses: %w", err)
	}
	return ct.RowsAffected(), nil
}

// filterClause builds the WHERE clause and positional arguments for the
// non-empty fields of f.
func filterClause(f domain.AddressFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("a.%s = $%d", column, len(args)))
	}
	add("city", f.City)
	add("region", f.Region)
	add("country", f.Country)

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanAddress(row pgx.Row, a *domain.ShippingAddress) error {
	return row.Scan(
		&a.ID,
		&a.UserID,
		&a.Street,
		&a.City,
		&a.Region,
		&a.PostalCode,
		&a.Country,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}

func scanAddressWithUser(row pgx.Row) (*domain.AddressWithUser, error) {
	var (
		a       domain.AddressWithUser
		summary domain.UserSummary
	)
	if err := row.Scan(
		&a.ID, &a.UserID, &a.Street, &a.City, &a.Region, &a.PostalCode,
		&a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
		&summary.FirstName, &summary.PaternalLastName,
	); err != nil {
		return nil, err
	}
	summary.ID = a.UserID
	a.User = &summary
	return &a, nil
}
