package entity

import (
	"time"

	"github.com/google/uuid"
)

// Channel is a row in the app_channel table. Channels are scoped to the
// account that created them; is_delete hides a channel without dropping the
// row.
type Channel struct {
	ID           uuid.UUID `db:"id"`
	ChannelName  string    `db:"channel_name"`
	CreateUserID uuid.UUID `db:"create_user_id"`
	CreateTime   time.Time `db:"create_time"`
	UpdateTime   time.Time `db:"update_time"`
	IsDelete     bool      `db:"is_delete"`
}
