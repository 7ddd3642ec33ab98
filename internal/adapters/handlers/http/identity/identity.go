// Package identity carries the authenticated user through a request.
// Authentication itself happens upstream; the gateway forwards the user id
// in a header.
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Header is the request header holding the authenticated user id
const Header = "X-User-ID"

type contextKey struct{}

// WithUser returns a context carrying the user id
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the user id of the request, or an empty string
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(contextKey{}).(string)
	return userID
}

// RequireUser rejects requests without a user id
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(Header))
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"errors":  []string{"authentication required"},
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
	})
}
