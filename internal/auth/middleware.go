// Package auth provides authentication and authorization for the forum API.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// ContextKey is a custom type for context keys to prevent collisions.
type ContextKey string

// Context keys for storing authenticated user information.
const (
	UserIDContextKey   ContextKey = constants.UserIDContextKey
	UsernameContextKey ContextKey = constants.UsernameContextKey
	IsStaffContextKey  ContextKey = constants.IsStaffContextKey
)

// Identity is the authenticated user attached to a request.
type Identity struct {
	UserID   int64
	Username string
	IsStaff  bool
}

// Authenticate extracts and validates the bearer token of r.
func Authenticate(r *http.Request, validator JWTValidator) (*Identity, error) {
	authHeader := r.Header.Get(constants.HeaderAuthorization)
	if authHeader == "" || !strings.HasPrefix(authHeader, constants.BearerTokenPrefix) {
		return nil, utils.ErrUnauthorized
	}

	token := strings.TrimPrefix(authHeader, constants.BearerTokenPrefix)

	claims, err := validator.ValidateToken(token, constants.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		IsStaff:  claims.IsStaff,
	}, nil
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	ctx = context.WithValue(ctx, UserIDContextKey, id.UserID)
	ctx = context.WithValue(ctx, UsernameContextKey, id.Username)
	return context.WithValue(ctx, IsStaffContextKey, id.IsStaff)
}

// RequireAuth rejects requests without a valid access token and stores the
// identity of authenticated ones in the request context.
func RequireAuth(validator JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := Authenticate(r, validator)
			if err != nil {
				log.Info().
					Err(err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Authentication failed")

				var appErr *utils.AppError
				if errors.As(err, &appErr) {
					utils.ErrorFromAppError(w, appErr)
				} else {
					utils.Unauthorized(w, constants.MsgAuthRequired)
				}
				return
			}

			log.Debug().
				Int64("user_id", id.UserID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("User authenticated")

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireStaff rejects authenticated requests from non-staff users.
// It must run after RequireAuth.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserID(r); !ok {
			utils.Unauthorized(w, constants.MsgAuthRequired)
			return
		}
		if !IsStaff(r) {
			utils.Forbidden(w, constants.MsgStaffRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID extracts the user ID from the request context.
func GetUserID(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(UserIDContextKey).(int64)
	return userID, ok
}

// GetUsername extracts the username from the request context.
func GetUsername(r *http.Request) (string, bool) {
	username, ok := r.Context().Value(UsernameContextKey).(string)
	return username, ok
}

// IsStaff reports whether the authenticated user is a staff member.
func IsStaff(r *http.Request) bool {
	staff, _ := r.Context().Value(IsStaffContextKey).(bool)
	return staff
}

// IsAuthenticated checks if the request is authenticated.
func IsAuthenticated(r *http.Request) bool {
	_, ok := GetUserID(r)
	return ok
}
