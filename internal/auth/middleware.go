package auth

import (
	"context"
	"fmt"
	"net/http"

	"ms-reservations/internal/apierror"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
)

type contextKey string

const userKey contextKey = "current_user"

// Middleware gates protected routes behind a valid bearer token. The token is
// verified synchronously before the wrapped handler runs; the authenticated
// user lands in the request context for CurrentUser.
func Middleware(svc *Service, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				log.LogSecurity("AUTH", fmt.Sprintf("%s %s rejected: %v", r.Method, r.URL.Path, err))
				apierror.Write(w, apierror.Unauthenticated("unauthenticated"))
				return
			}

			user, err := svc.Authenticate(r.Context(), rawToken)
			if err != nil {
				log.LogSecurity("AUTH", fmt.Sprintf("%s %s rejected: %v", r.Method, r.URL.Path, err))
				apierror.Write(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the authenticated user, or nil outside the middleware.
func CurrentUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey).(*models.User); ok {
		return user
	}
	return nil
}
