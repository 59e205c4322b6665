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

// ---------------- USERS ----------------

func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := d.Bun.NewInsert().Model(user).Exec(ctx)
	return err
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) EmailTaken(ctx context.Context, email string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("email = ?", email).
		Exists(ctx)
}

// ---------------- ACCESS TOKENS ----------------

func (d *DB) CreateToken(ctx context.Context, token *models.AccessToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	_, err := d.Bun.NewInsert().Model(token).Exec(ctx)
	return err
}

func (d *DB) GetTokenByHash(ctx context.Context, hash string) (*models.AccessToken, error) {
	var token models.AccessToken
	err := d.Bun.NewSelect().
		Model(&token).
		Relation("User").
		Where("access_token.token_hash = ?", hash).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (d *DB) TouchToken(ctx context.Context, id string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.AccessToken)(nil)).
		Set("last_used_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// DeleteTokensByUser removes every token the user owns and returns the deleted
// hashes so the cache entries can be purged too.
func (d *DB) DeleteTokensByUser(ctx context.Context, userID int64) ([]string, error) {
	var hashes []string
	err := d.Bun.NewSelect().
		Model((*models.AccessToken)(nil)).
		Column("token_hash").
		Where("user_id = ?", userID).
		Scan(ctx, &hashes)
	if err != nil {
		return nil, err
	}

	_, err = d.Bun.NewDelete().
		Model((*models.AccessToken)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return hashes, nil
}
