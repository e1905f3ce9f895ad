package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// UserKey is the context key for the caller's user ID.
const UserKey contextKey = "user"

// AnonymousUser is used when the request carries no identity.
const AnonymousUser = "anonymous"

// UserHeader carries the caller's user ID.
const UserHeader = "X-User-Id"

// Identity resolves the calling user from the X-User-Id header, then the
// user query parameter, falling back to AnonymousUser.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := strings.TrimSpace(r.Header.Get(UserHeader))
		if user == "" {
			user = strings.TrimSpace(r.URL.Query().Get("user"))
		}
		if user == "" {
			user = AnonymousUser
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser retrieves the user ID from the request context.
func GetUser(ctx context.Context) string {
	if v, ok := ctx.Value(UserKey).(string); ok && v != "" {
		return v
	}
	return AnonymousUser
}
