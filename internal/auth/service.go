package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ms-reservations/internal/apierror"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
	"ms-reservations/internal/validate"
)

type DBLayer interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	CreateToken(ctx context.Context, token *models.AccessToken) error
	GetTokenByHash(ctx context.Context, hash string) (*models.AccessToken, error)
	TouchToken(ctx context.Context, id string) error
	DeleteTokensByUser(ctx context.Context, userID int64) ([]string, error)
}

type TokenCacheLayer interface {
	Get(ctx context.Context, hash string) (int64, bool, error)
	Set(ctx context.Context, hash string, userID int64) error
	Delete(ctx context.Context, hashes ...string) error
}

type Service struct {
	DB         DBLayer
	Cache      TokenCacheLayer
	Logger     *logger.Logger
	BcryptCost int
}

func NewService(db DBLayer, cache TokenCacheLayer, log *logger.Logger, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{DB: db, Cache: cache, Logger: log, BcryptCost: bcryptCost}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a user with a bcrypt password hash. The plaintext password
// is never stored or returned.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if ve := validate.Struct(req); ve != nil {
		return nil, ve
	}

	taken, err := s.DB.EmailTaken(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, apierror.NewValidation().Add("email", "the email has already been taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.DB.CreateUser(ctx, user); err != nil {
		// Two concurrent registrations can both pass the EmailTaken check;
		// the unique constraint catches the loser.
		if isUniqueViolation(err) {
			return nil, apierror.NewValidation().Add("email", "the email has already been taken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and issues a fresh opaque token. The failure
// message never reveals whether the email or the password was wrong.
func (s *Service) Login(ctx context.Context, req LoginRequest) (string, error) {
	if ve := validate.Struct(req); ve != nil {
		return "", ve
	}

	user, err := s.DB.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apierror.Unauthenticated("invalid credentials")
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return "", apierror.Unauthenticated("invalid credentials")
	}

	plaintext, hash, err := GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	token := &models.AccessToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: hash,
		CreatedAt: time.Now(),
	}
	if err := s.DB.CreateToken(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	if err := s.Cache.Set(ctx, hash, user.ID); err != nil {
		s.warn("AUTH", fmt.Sprintf("token cache set failed: %v", err))
	}
	return plaintext, nil
}

// Logout revokes every token the user owns, not just the presented one.
// Calling it again with no tokens left still succeeds.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	hashes, err := s.DB.DeleteTokensByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	if err := s.Cache.Delete(ctx, hashes...); err != nil {
		s.warn("AUTH", fmt.Sprintf("token cache purge failed: %v", err))
	}
	return nil
}

// Authenticate resolves a plaintext bearer token to its user. It runs as a
// synchronous gate before every protected handler.
func (s *Service) Authenticate(ctx context.Context, plaintext string) (*models.User, error) {
	if plaintext == "" {
		return nil, apierror.Unauthenticated("unauthenticated")
	}
	hash := HashToken(plaintext)

	userID, hit, err := s.Cache.Get(ctx, hash)
	if err != nil {
		s.warn("AUTH", fmt.Sprintf("token cache get failed: %v", err))
	}
	if hit {
		user, err := s.DB.GetUserByID(ctx, userID)
		if err == nil {
			return user, nil
		}
		// Cached token for a vanished user, fall through to the store.
	}

	token, err := s.DB.GetTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.Unauthenticated("unauthenticated")
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if err := s.DB.TouchToken(ctx, token.ID); err != nil {
		s.warn("AUTH", fmt.Sprintf("failed to touch token %s: %v", token.ID, err))
	}
	if err := s.Cache.Set(ctx, hash, token.UserID); err != nil {
		s.warn("AUTH", fmt.Sprintf("token cache set failed: %v", err))
	}

	if token.User != nil {
		return token.User, nil
	}
	user, err := s.DB.GetUserByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load token owner: %w", err)
	}
	return user, nil
}

func (s *Service) warn(category, message string) {
	if s.Logger != nil {
		s.Logger.Warn(category, message)
	}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
