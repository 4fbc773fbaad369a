package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ipquest/ipquest-be/internal/models"
)

// ErrInvalidToken is returned for any token that fails verification.
// Malformed, expired, forged and wrong-purpose tokens are deliberately
// indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid token")

const resetPurpose = "password_reset"

// Claims defines the JWT claims structure for session tokens.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ResetClaims defines the JWT claims structure for password-reset tokens.
// The registered ID carries the uuid of the backing password_resets row.
type ResetClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// UserClaimsKey is the context key for user claims.
type contextKey string

const UserClaimsKey = contextKey("userClaims")

// TokenManager issues and verifies signed tokens. The signing key and
// lifetimes are injected at construction, never read from globals.
type TokenManager struct {
	key        []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewTokenManager creates a TokenManager with the given signing secret.
func NewTokenManager(secret string, sessionTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		key:        []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}
}

// GenerateSession creates a new session JWT for a given user.
func (tm *TokenManager) GenerateSession(user models.User) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tm.sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.key)
}

// ValidateSession parses and validates a session JWT string.
func (tm *TokenManager) ValidateSession(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.key, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateReset creates a short-lived single-purpose reset token bound to
// an email. tokenID must match the id of the persisted password_resets row.
func (tm *TokenManager) GenerateReset(email, tokenID string) (string, error) {
	claims := &ResetClaims{
		Email:   email,
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tm.resetTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.key)
}

// ValidateReset parses a reset JWT and checks its purpose.
func (tm *TokenManager) ValidateReset(tokenStr string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.key, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Purpose != resetPurpose || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware creates a middleware for protecting routes.
func (tm *TokenManager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			// 1. Try to get the token from the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, "Bearer ")
				if len(parts) == 2 {
					tokenStr = parts[1]
				}
			}

			// 2. If not in header, fall back to the cookie
			if tokenStr == "" {
				if cookie, err := r.Cookie("token"); err == nil {
					tokenStr = cookie.Value
				}
			}

			// 3. If we still have no token, fail
			if tokenStr == "" {
				unauthorized(w)
				return
			}

			// 4. Validate the token
			claims, err := tm.ValidateSession(tokenStr)
			if err != nil {
				unauthorized(w)
				return
			}

			// 5. Pass claims down via context
			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// unauthorized writes the single Unauthorized error shape. The response is
// identical for missing, malformed and expired tokens.
func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
