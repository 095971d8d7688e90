// Package auth provides the session/credential core of the budget tracker:
// password hashing, session token issuance and verification, and the
// authentication and role-authorization middleware.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/acgeoffrey/budget-tracker-api/internal/constants"
	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// ContextKey is a custom type for context keys to prevent collisions.
type ContextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey ContextKey = "auth_user"

	// RequestIDContextKey is the context key for the unique request ID.
	RequestIDContextKey ContextKey = "request_id"
)

// PrincipalResolver resolves a user ID embedded in a token to the stored
// user. Implemented by the user repository.
type PrincipalResolver interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// TokenValidator validates a session token string and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*SessionClaims, error)
}

// Authenticate wraps a handler with bearer-token authentication.
//
// The check proceeds in four steps: extract the token from the
// Authorization header (absence and malformation are treated identically),
// validate signature and expiry, resolve the embedded user ID against the
// store, and finally reject tokens issued before the user's most recent
// password change. The resolved user is placed in the request context.
func Authenticate(validator TokenValidator, resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(constants.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
				r.Header.Set(constants.HeaderXRequestID, requestID)
			}
			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)

			token, ok := extractBearerToken(r)
			if !ok {
				respondUnauthenticated(w, r, requestID, utils.NewUnauthorizedError(constants.MsgAuthRequired))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				respondUnauthenticated(w, r, requestID, err)
				return
			}

			user, err := resolver.GetByID(ctx, claims.UserID)
			if err != nil {
				// A deleted account presents the same way as a bad token
				if utils.IsNotFoundError(err) {
					respondUnauthenticated(w, r, requestID, utils.NewUnauthorizedError("User belonging to this token does not exist"))
					return
				}
				utils.InternalServerError(w, err)
				return
			}

			// A password change invalidates every token issued before it
			if user.PasswordChangedAfter(claims.IssuedAt.Time) {
				respondUnauthenticated(w, r, requestID, utils.NewStaleTokenError())
				return
			}

			ctx = context.WithValue(ctx, UserContextKey, user)

			log.Debug().
				Int64("user_id", user.ID).
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("User authenticated")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthorizeOnlyTo restricts a route to users holding one of the given
// roles. It must be mounted after Authenticate; a request without an
// authenticated user is rejected as unauthenticated, an authenticated user
// outside the role set as forbidden.
func AuthorizeOnlyTo(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r)
			if !ok {
				utils.Unauthorized(w, constants.MsgAuthRequired)
				return
			}

			if !utils.ContainsString(roles, user.Role) {
				log.Warn().
					Int64("user_id", user.ID).
					Str("role", user.Role).
					Str("path", r.URL.Path).
					Msg("Role check failed")
				utils.Forbidden(w, constants.MsgAccessDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken pulls the token out of the Authorization header.
// A missing header, a non-Bearer scheme and an empty token all return false.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get(constants.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, constants.BearerTokenPrefix) {
		return "", false
	}

	token := strings.TrimPrefix(authHeader, constants.BearerTokenPrefix)
	if token == "" {
		return "", false
	}

	return token, true
}

// respondUnauthenticated logs and writes a 401 response for any
// authentication failure.
func respondUnauthenticated(w http.ResponseWriter, r *http.Request, requestID string, err error) {
	log.Info().
		Err(err).
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Authentication failed")

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		utils.ErrorFromAppError(w, appErr)
		return
	}
	utils.Unauthorized(w, constants.MsgAuthRequired)
}

// GetUser extracts the authenticated user from the request context.
func GetUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok
}

// GetRequestID extracts the request ID from the request context.
func GetRequestID(r *http.Request) (string, bool) {
	requestID, ok := r.Context().Value(RequestIDContextKey).(string)
	return requestID, ok
}
