package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-reservations/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ListEvents applies the AND-combined filters and returns one page of events
// plus the total match count. Soft-deleted rows never show up; every read in
// this store carries the deleted_at IS NULL guard explicitly.
func (d *DB) ListEvents(ctx context.Context, filters models.EventFilters, limit, offset int) ([]*models.Event, int, error) {
	var events []*models.Event
	q := d.Bun.NewSelect().
		Model(&events).
		Where("deleted_at IS NULL").
		Order("id ASC")

	if filters.Date != "" {
		q = q.Where("date = ?", filters.Date)
	}
	if filters.Location != "" {
		q = q.Where("location LIKE ?", "%"+filters.Location+"%")
	}
	if filters.Search != "" {
		q = q.Where("name LIKE ?", "%"+filters.Search+"%")
	}

	total, err := q.Limit(limit).Offset(offset).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (d *DB) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("event.id = ?", id).
		Where("event.deleted_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventWithReservations loads the event together with its non-deleted
// reservations.
func (d *DB) GetEventWithReservations(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Relation("Reservations", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("deleted_at IS NULL")
		}).
		Where("event.id = ?", id).
		Where("event.deleted_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

// UpdateEvent writes only the given columns; the caller controls the
// allow-list of mutable fields.
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event, columns []string) error {
	_, err := d.Bun.NewUpdate().
		Model(event).
		Column(columns...).
		Where("id = ?", event.ID).
		Exec(ctx)
	return err
}

// SoftDeleteEvent flags the event as deleted; the row and its reservations
// stay in storage.
func (d *DB) SoftDeleteEvent(ctx context.Context, id int64) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("deleted_at = ?", time.Now()).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)
	return err
}
