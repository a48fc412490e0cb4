package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"appupdate-service/internal/account/entity"
)

// ErrAccountNotFound is reported when a binding update matches zero rows.
var ErrAccountNotFound = errors.New("account not found")

// TokenSlot selects which half of the bound pair a query compares against.
type TokenSlot string

const (
	SlotAccess  TokenSlot = "access_token"
	SlotRefresh TokenSlot = "refresh_token"
)

// AccountRepo provides data access for the users table using sqlx.
type AccountRepo struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *AccountRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id UUID PRIMARY KEY,
  username TEXT UNIQUE NOT NULL,
  password TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  access_token TEXT NOT NULL DEFAULT '',
  refresh_token TEXT NOT NULL DEFAULT '',
  create_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  update_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  is_delete BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new account row.
func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) error {
	const q = `INSERT INTO users (id, username, password, full_name, access_token, refresh_token, create_time, update_time, is_delete)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.Username, a.Password, a.FullName,
		a.AccessToken, a.RefreshToken, a.CreateTime, a.UpdateTime, a.IsDelete)
	return err
}

// GetByUsername fetches an account by username or sql.ErrNoRows.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*entity.Account, error) {
	const q = `SELECT id, username, password, full_name, access_token, refresh_token, create_time, update_time, is_delete
FROM users WHERE username=$1`
	var row entity.Account
	if err := r.db.GetContext(ctx, &row, q, username); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByIDAndUsername fetches an account only when both id and username match
// the same row, the shape the authorization pipeline resolves claims with.
func (r *AccountRepo) GetByIDAndUsername(ctx context.Context, id uuid.UUID, username string) (*entity.Account, error) {
	const q = `SELECT id, username, password, full_name, access_token, refresh_token, create_time, update_time, is_delete
FROM users WHERE id=$1 AND username=$2`
	var row entity.Account
	if err := r.db.GetContext(ctx, &row, q, id, username); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateTokens overwrites the account's bound token pair in one statement.
// The last writer wins; any previously issued pair stops authorizing the
// moment this commits. Zero affected rows means the account row is gone.
func (r *AccountRepo) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string) error {
	const q = `UPDATE users SET access_token=$2, refresh_token=$3, update_time=NOW() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, accessToken, refreshToken)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// TokenBound reports whether the stored value in the given slot equals
// presented exactly. The database row is the source of truth for token
// liveness, so this is a query rather than an in-memory comparison.
func (r *AccountRepo) TokenBound(ctx context.Context, id uuid.UUID, presented string, slot TokenSlot) (bool, error) {
	var q string
	switch slot {
	case SlotAccess:
		q = `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1 AND access_token=$2)`
	case SlotRefresh:
		q = `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1 AND refresh_token=$2)`
	default:
		return false, fmt.Errorf("unknown token slot %q", slot)
	}
	var bound bool
	if err := r.db.GetContext(ctx, &bound, q, id, presented); err != nil {
		return false, err
	}
	return bound, nil
}
