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

	"ms-reservations/internal/auth/db"
	"ms-reservations/internal/models"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.User)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.AccessToken)(nil)))

	return &db.DB{Bun: bunDB}
}

func TestCreateAndGetUser(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$fakehash",
	}
	require.NoError(t, store.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)

	fetched, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.ID)
	assert.Equal(t, "Alice", fetched.Name)

	byID, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEmailTaken(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	taken, err := store.EmailTaken(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, store.CreateUser(ctx, &models.User{
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
	}))

	taken, err = store.EmailTaken(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestTokenLifecycle(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(ctx, user))

	token := &models.AccessToken{
		ID:        "token-id-1",
		UserID:    user.ID,
		TokenHash: "hash-1",
	}
	require.NoError(t, store.CreateToken(ctx, token))
	require.NoError(t, store.CreateToken(ctx, &models.AccessToken{
		ID:        "token-id-2",
		UserID:    user.ID,
		TokenHash: "hash-2",
	}))

	fetched, err := store.GetTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.UserID)
	require.NotNil(t, fetched.User)
	assert.Equal(t, "alice@example.com", fetched.User.Email)

	require.NoError(t, store.TouchToken(ctx, "token-id-1"))

	hashes, err := store.DeleteTokensByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hash-1", "hash-2"}, hashes)

	_, err = store.GetTokenByHash(ctx, "hash-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// No tokens left, still not an error.
	hashes, err = store.DeleteTokensByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, hashes)
}
