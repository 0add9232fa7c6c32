// Package middleware provides the HTTP middleware chain: identity
// resolution, request logging and metrics.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/udhaar-app/udhaar/internal/auth"
	"github.com/udhaar-app/udhaar/internal/storage"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityKey is the context key for the resolved request identity.
const identityKey contextKey = "identity"

// GetIdentity extracts the resolved identity from the context. Requests
// that never passed through ResolveIdentity are Unauthenticated.
func GetIdentity(ctx context.Context) auth.Identity {
	if identity, ok := ctx.Value(identityKey).(auth.Identity); ok {
		return identity
	}
	return auth.Identity{Kind: auth.Unauthenticated}
}

// GetUserID extracts the authenticated user ID from the context.
// Returns empty string if the request is not authenticated.
func GetUserID(ctx context.Context) string {
	if user, ok := GetIdentity(ctx).AuthenticatedUser(); ok {
		return user.ID
	}
	return ""
}

// ResolveIdentity resolves the bearer token on every request into an
// Identity and stores it in the request context. It never rejects: handlers
// decide what each identity kind may do.
func ResolveIdentity(jwtManager *auth.JWTManager, store storage.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := jwtManager.Identify(r.Context(), store, bearerToken(r))
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
