package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pixmint/pixmint/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user violates a uniqueness constraint")
)

const userColumns = `id, external_id, COALESCE(email, ''), username, first_name, last_name, photo_url, credit_balance, created_at, updated_at`

// UserPatch describes a field-level merge over a stored user. Nil fields are
// left untouched; the empty string is a valid value for name fields.
type UserPatch struct {
	Email         *string
	Username      *string
	FirstName     *string
	LastName      *string
	PhotoURL      *string
	CreditBalance *int64
}

// CreateUser inserts a new user. It fails with ErrDuplicateUser when the
// email, username, or external id collides with an existing non-null value.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, external_id, email, username, first_name, last_name, photo_url, credit_balance, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.ExternalID,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PhotoURL,
		user.CreditBalance,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by its record id.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByExternalID retrieves a user by its identity-provider id.
func (r *Repository) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by external ID: %w", err)
	}

	return user, nil
}

// ListUsers returns the full user listing. The collection is expected to stay
// small; no pagination is applied.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateUser merges the given fields over the stored record and returns the
// result. It fails with ErrUserNotFound when the id is absent.
func (r *Repository) UpdateUser(ctx context.Context, id string, patch UserPatch) (*model.User, error) {
	query := `
		UPDATE users SET
			email = COALESCE(NULLIF($2, ''), email),
			username = COALESCE($3, username),
			first_name = COALESCE($4, first_name),
			last_name = COALESCE($5, last_name),
			photo_url = COALESCE($6, photo_url),
			credit_balance = COALESCE($7, credit_balance),
			updated_at = $8
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query,
		id,
		patch.Email,
		patch.Username,
		patch.FirstName,
		patch.LastName,
		patch.PhotoURL,
		patch.CreditBalance,
		time.Now().UTC(),
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user by record id.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpsertUserByExternalID creates or merges a record keyed by external id in a
// single statement. When no record with draft.ExternalID exists the draft is
// inserted as-is; otherwise the patch is merged over the stored record.
// Single-row atomicity of the statement is the only ordering guarantee for
// concurrent deliveries of the same external id.
func (r *Repository) UpsertUserByExternalID(ctx context.Context, draft *model.User, patch UserPatch) (*model.User, error) {
	query := `
		INSERT INTO users (id, external_id, email, username, first_name, last_name, photo_url, credit_balance, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (external_id) WHERE external_id IS NOT NULL DO UPDATE SET
			email = COALESCE(NULLIF($10, ''), users.email),
			username = COALESCE($11, users.username),
			first_name = COALESCE($12, users.first_name),
			last_name = COALESCE($13, users.last_name),
			photo_url = COALESCE($14, users.photo_url),
			updated_at = $9
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query,
		draft.ID,
		draft.ExternalID,
		draft.Email,
		draft.Username,
		draft.FirstName,
		draft.LastName,
		draft.PhotoURL,
		draft.CreditBalance,
		time.Now().UTC(),
		patch.Email,
		patch.Username,
		patch.FirstName,
		patch.LastName,
		patch.PhotoURL,
	))

	if err != nil {
		// A collision on email or username, not on the conflict target.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to upsert user by external ID: %w", err)
	}

	return user, nil
}

// DeleteUserByExternalID removes a record by external id. It reports whether
// a record was removed; absence is not an error.
func (r *Repository) DeleteUserByExternalID(ctx context.Context, externalID string) (bool, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE external_id = $1`, externalID)
	if err != nil {
		return false, fmt.Errorf("failed to delete user by external ID: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// scanUser scans a single row into a User model.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.PhotoURL,
		&user.CreditBalance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return &user, err
}

// isUniqueViolation checks for PostgreSQL error 23505 (unique_violation).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
