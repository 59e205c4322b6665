package auth_api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-reservations/internal/auth"
	"ms-reservations/internal/auth/auth_api"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
)

type MockAuthDB struct {
	usersByEmail map[string]*models.User
	usersByID    map[int64]*models.User
	tokensByHash map[string]*models.AccessToken
	nextUserID   int64
}

func NewMockAuthDB() *MockAuthDB {
	return &MockAuthDB{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[int64]*models.User),
		tokensByHash: make(map[string]*models.AccessToken),
		nextUserID:   1,
	}
}

func (m *MockAuthDB) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = m.nextUserID
	m.nextUserID++
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *MockAuthDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *MockAuthDB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *MockAuthDB) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, ok := m.usersByEmail[email]
	return ok, nil
}

func (m *MockAuthDB) CreateToken(ctx context.Context, token *models.AccessToken) error {
	m.tokensByHash[token.TokenHash] = token
	return nil
}

func (m *MockAuthDB) GetTokenByHash(ctx context.Context, hash string) (*models.AccessToken, error) {
	token, ok := m.tokensByHash[hash]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return token, nil
}

func (m *MockAuthDB) TouchToken(ctx context.Context, id string) error { return nil }

func (m *MockAuthDB) DeleteTokensByUser(ctx context.Context, userID int64) ([]string, error) {
	var hashes []string
	for hash, token := range m.tokensByHash {
		if token.UserID == userID {
			hashes = append(hashes, hash)
			delete(m.tokensByHash, hash)
		}
	}
	return hashes, nil
}

type MockTokenCache struct {
	entries map[string]int64
}

func (m *MockTokenCache) Get(ctx context.Context, hash string) (int64, bool, error) {
	userID, ok := m.entries[hash]
	return userID, ok, nil
}

func (m *MockTokenCache) Set(ctx context.Context, hash string, userID int64) error {
	m.entries[hash] = userID
	return nil
}

func (m *MockTokenCache) Delete(ctx context.Context, hashes ...string) error {
	for _, hash := range hashes {
		delete(m.entries, hash)
	}
	return nil
}

func setupTestRouter() (*chi.Mux, *MockAuthDB) {
	mockDB := NewMockAuthDB()
	cache := &MockTokenCache{entries: make(map[string]int64)}
	log := logger.NewTestLogger()
	svc := auth.NewService(mockDB, cache, log, 4)
	handler := auth_api.NewHandler(svc, log)

	r := chi.NewRouter()
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(svc, log))
		r.Post("/logout", handler.Logout)
	})
	return r, mockDB
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterHandler(t *testing.T) {
	t.Run("registered", func(t *testing.T) {
		router, mockDB := setupTestRouter()

		w := postJSON(router, "/register", `{"name":"Bob","email":"bob@example.com","password":"secret123"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user registered successfully")
		assert.Contains(t, mockDB.usersByEmail, "bob@example.com")

		// The password hash never leaks into a response.
		assert.NotContains(t, w.Body.String(), "secret123")
	})

	t.Run("duplicate email", func(t *testing.T) {
		router, _ := setupTestRouter()

		w := postJSON(router, "/register", `{"name":"Bob","email":"bob@example.com","password":"secret123"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = postJSON(router, "/register", `{"name":"Eve","email":"bob@example.com","password":"hunter22"}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "the email has already been taken")
	})

	t.Run("short password", func(t *testing.T) {
		router, _ := setupTestRouter()

		w := postJSON(router, "/register", `{"name":"Bob","email":"bob@example.com","password":"abc"}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Contains(t, resp.Errors, "password")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		router, _ := setupTestRouter()

		w := postJSON(router, "/register", `{"name": "broken`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "the request body must be valid JSON")
	})
}

func TestLoginHandler(t *testing.T) {
	router, _ := setupTestRouter()
	w := postJSON(router, "/register", `{"name":"Bob","email":"bob@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("token issued", func(t *testing.T) {
		w := postJSON(router, "/login", `{"email":"bob@example.com","password":"secret123"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postJSON(router, "/login", `{"email":"bob@example.com","password":"wrong-pass"}`)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid credentials")
	})

	t.Run("unknown email", func(t *testing.T) {
		w := postJSON(router, "/login", `{"email":"nobody@example.com","password":"secret123"}`)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid credentials")
	})
}

func TestLogoutHandler(t *testing.T) {
	router, mockDB := setupTestRouter()
	w := postJSON(router, "/register", `{"name":"Bob","email":"bob@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = postJSON(router, "/login", `{"email":"bob@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	token := resp["token"]

	t.Run("without token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/logout", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("with token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "logged out successfully")
		assert.Empty(t, mockDB.tokensByHash)

		// The revoked token no longer authenticates.
		req = httptest.NewRequest("POST", "/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
