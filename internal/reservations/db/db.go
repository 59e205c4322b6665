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

func (d *DB) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	now := time.Now()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	_, err := d.Bun.NewInsert().Model(reservation).Exec(ctx)
	return err
}

func (d *DB) GetReservationByID(ctx context.Context, id int64) (*models.Reservation, error) {
	var reservation models.Reservation
	err := d.Bun.NewSelect().
		Model(&reservation).
		Where("reservation.id = ?", id).
		Where("reservation.deleted_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// SoftDeleteReservation flags the reservation as deleted; the owning event is
// untouched.
func (d *DB) SoftDeleteReservation(ctx context.Context, id int64) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Reservation)(nil)).
		Set("deleted_at = ?", time.Now()).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)
	return err
}
