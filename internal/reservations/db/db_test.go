package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-reservations/internal/models"
	"ms-reservations/internal/reservations/db"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bunDB.ResetModel(context.Background(), (*models.Reservation)(nil)))

	return &db.DB{Bun: bunDB}
}

func TestCreateAndGetReservation(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	reservation := &models.Reservation{
		EventID:   1,
		Code:      "code-1",
		UserName:  "Bob",
		UserEmail: "bob@example.com",
		Seats:     2,
	}
	require.NoError(t, store.CreateReservation(ctx, reservation))
	require.NotZero(t, reservation.ID)
	assert.False(t, reservation.CreatedAt.IsZero())

	fetched, err := store.GetReservationByID(ctx, reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, "code-1", fetched.Code)
	assert.Equal(t, 2, fetched.Seats)

	_, err = store.GetReservationByID(ctx, 999)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSoftDeleteReservation(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	reservation := &models.Reservation{
		EventID:   1,
		Code:      "code-1",
		UserName:  "Bob",
		UserEmail: "bob@example.com",
		Seats:     2,
	}
	require.NoError(t, store.CreateReservation(ctx, reservation))
	require.NoError(t, store.SoftDeleteReservation(ctx, reservation.ID))

	// Hidden from reads, retained in storage with the flag set.
	_, err := store.GetReservationByID(ctx, reservation.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	var row models.Reservation
	err = store.Bun.NewSelect().
		Model(&row).
		Where("id = ?", reservation.ID).
		Scan(ctx)
	require.NoError(t, err)
	assert.False(t, row.DeletedAt.IsZero())
}
