package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"appupdate-service/internal/channel/entity"
)

// ChannelRepo provides data access for the app_channel table using sqlx.
type ChannelRepo struct {
	db *sqlx.DB
}

func NewChannelRepo(db *sqlx.DB) *ChannelRepo { return &ChannelRepo{db: db} }

// EnsureTable creates the app_channel table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *ChannelRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS app_channel (
  id UUID PRIMARY KEY,
  channel_name TEXT NOT NULL,
  create_user_id UUID NOT NULL,
  create_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  update_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  is_delete BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS idx_app_channel_owner ON app_channel(create_user_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new channel row.
func (r *ChannelRepo) Create(ctx context.Context, c *entity.Channel) error {
	const q = `INSERT INTO app_channel (id, channel_name, create_user_id, create_time, update_time, is_delete)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.ChannelName, c.CreateUserID, c.CreateTime, c.UpdateTime, c.IsDelete)
	return err
}

// GetByNameAndOwner fetches a live channel with this name owned by userID,
// or sql.ErrNoRows.
func (r *ChannelRepo) GetByNameAndOwner(ctx context.Context, name string, userID uuid.UUID) (*entity.Channel, error) {
	const q = `SELECT id, channel_name, create_user_id, create_time, update_time, is_delete
FROM app_channel WHERE channel_name=$1 AND create_user_id=$2 AND is_delete=false`
	var row entity.Channel
	if err := r.db.GetContext(ctx, &row, q, name, userID); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByOwner returns the caller's live channels, oldest first.
func (r *ChannelRepo) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*entity.Channel, error) {
	const q = `SELECT id, channel_name, create_user_id, create_time, update_time, is_delete
FROM app_channel WHERE create_user_id=$1 AND is_delete=false ORDER BY create_time`
	var rows []*entity.Channel
	if err := r.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, err
	}
	return rows, nil
}

// Rename updates the channel name and returns the number of affected rows.
func (r *ChannelRepo) Rename(ctx context.Context, id uuid.UUID, name string) (int64, error) {
	const q = `UPDATE app_channel SET channel_name=$2, update_time=NOW(), is_delete=false WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SoftDelete marks the channel deleted and returns the number of affected rows.
func (r *ChannelRepo) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	const q = `UPDATE app_channel SET is_delete=true, update_time=NOW() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Purge permanently removes the row and returns the number of affected rows.
func (r *ChannelRepo) Purge(ctx context.Context, id uuid.UUID) (int64, error) {
	const q = `DELETE FROM app_channel WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
