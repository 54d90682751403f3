// Package middleware provides HTTP middleware for the ontology query API.
//
// This file implements AuthMiddleware, which validates a locally-signed
// JWT bearer token and extracts its claims into the request context. There
// is no external identity provider in this system: tokens are issued and
// verified with a single HMAC secret (AuthConfig.JWTSecret) rather than a
// federated SSO provider.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a type for context keys.
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims.
	ClaimsKey contextKey = "claims"
	// SubjectKey is the context key for the token subject.
	SubjectKey contextKey = "subject"
)

// Claims represents JWT claims stored in context.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenValidator validates a bearer token string and returns its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// HMACValidator validates tokens signed with a single shared secret,
// matching AuthConfig.JWTSecret/JWTIssuer.
type HMACValidator struct {
	Secret []byte
	Issuer string
}

// ValidateToken parses and verifies tokenString, checking signature,
// expiry, and issuer.
func (v *HMACValidator) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.Secret, nil
	}, jwt.WithIssuer(v.Issuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// AuthMiddleware validates a bearer JWT and adds its claims to context. It
// returns 401 Unauthorized for missing, malformed, or invalid tokens.
// Health, readiness, and metrics endpoints are exempt.
func AuthMiddleware(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/ready" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("missing authorization header", slog.String("path", r.URL.Path))
				writeUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				logger.Debug("invalid authorization header format", slog.String("path", r.URL.Path))
				writeUnauthorized(w, "invalid authorization header format")
				return
			}

			tokenString := parts[1]
			if tokenString == "" {
				writeUnauthorized(w, "empty bearer token")
				return
			}

			claims, err := validator.ValidateToken(r.Context(), tokenString)
			if err != nil {
				logger.Warn("token validation failed", slog.String("path", r.URL.Path), slog.Any("error", err))
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, SubjectKey, claims.Subject)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves claims from the request context.
func GetClaims(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*Claims); ok {
		return claims
	}
	return nil
}

// GetSubject retrieves the token subject from the request context.
func GetSubject(ctx context.Context) string {
	if subject, ok := ctx.Value(SubjectKey).(string); ok {
		return subject
	}
	return ""
}

// writeUnauthorized writes a 401 Unauthorized response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="ontology-processor"`)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"unauthorized","message":"` + message + `"}}`))
}
