package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AccessToken stores the SHA-256 hash of an issued bearer token. The plaintext
// leaves the service exactly once, in the login response.
type AccessToken struct {
	bun.BaseModel `bun:"table:access_tokens"`

	ID         string    `bun:"id,pk" json:"id"`
	UserID     int64     `bun:"user_id,notnull" json:"user_id"`
	TokenHash  string    `bun:"token_hash,unique,notnull" json:"-"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	LastUsedAt time.Time `bun:"last_used_at,nullzero" json:"last_used_at,omitempty"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
}
