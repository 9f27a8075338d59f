package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session backs the bearer-token auth. Token is what the client presents;
// a session is valid until it expires or is revoked.
type Session struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	Token     uuid.UUID  `db:"token"`
	UserAgent *string    `db:"user_agent"`
	IPAddress *string    `db:"ip_address"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}
