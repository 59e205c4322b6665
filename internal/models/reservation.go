package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Reservation struct {
	bun.BaseModel `bun:"table:reservations"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	EventID   int64     `bun:"event_id,notnull" json:"event_id"`
	Code      string    `bun:"code,unique,notnull" json:"code"`
	UserName  string    `bun:"user_name,notnull" json:"user_name"`
	UserEmail string    `bun:"user_email,notnull" json:"user_email"`
	Seats     int       `bun:"seats,notnull" json:"seats"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:"deleted_at,nullzero" json:"-"`

	Event *Event `bun:"rel:belongs-to,join:event_id=id" json:"-"`
}
