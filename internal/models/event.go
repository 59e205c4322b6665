package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event dates are calendar dates (YYYY-MM-DD), stored as-is so the exact-match
// date filter stays free of timezone conversions.
//
// DeletedAt is the soft-delete flag: a zero value means active. Every read
// path in the store filters on it explicitly; deletion only sets the flag.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Date        string    `bun:"date,notnull" json:"date"`
	Location    string    `bun:"location,notnull" json:"location"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt   time.Time `bun:"deleted_at,nullzero" json:"-"`

	Reservations []*Reservation `bun:"rel:has-many,join:id=event_id" json:"reservations,omitempty"`
}

// EventFilters narrows the event listing. Date is an exact match; Location
// and Search are case-sensitive substring matches (Search matches the name).
type EventFilters struct {
	Date     string
	Location string
	Search   string
}

// EventPage is the pagination envelope returned by the event listing.
type EventPage struct {
	Data        []*Event `json:"data"`
	Total       int      `json:"total"`
	PerPage     int      `json:"per_page"`
	CurrentPage int      `json:"current_page"`
	LastPage    int      `json:"last_page"`
}
