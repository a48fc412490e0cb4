package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is a row in the users table. AccessToken/RefreshToken hold the
// currently bound token pair; empty until the first login. At most one live
// pair exists per account — binding a new pair replaces the old one.
type Account struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	Password     string    `db:"password"` // bcrypt hash
	FullName     string    `db:"full_name"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	CreateTime   time.Time `db:"create_time"`
	UpdateTime   time.Time `db:"update_time"`
	IsDelete     bool      `db:"is_delete"`
}
