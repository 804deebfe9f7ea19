package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/qboard/qboard/internal/core/domain"
	"github.com/qboard/qboard/internal/core/ports"
	"github.com/qboard/qboard/internal/infrastructure/logging"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// CurrentUserKey is the key used to store the resolved user in the request context.
const CurrentUserKey contextKey = "currentUser"

// BearerToken extracts the token from the Authorization header. It
// returns "" when the header is absent or not in Bearer form.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Identity resolves the bearer credential into a user and stores it in
// the request context. Requests without a valid credential proceed
// anonymously; rejection is left to RequireUser or to the handlers.
func Identity(resolver ports.IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := resolver.Resolve(r.Context(), BearerToken(r))
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUserKey, user)
			ctx = logging.WithUserID(ctx, user.ID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that did not resolve to a user. It must
// be mounted after Identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Authentication required","code":"UNAUTHORIZED"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetUser retrieves the resolved user from the context.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(CurrentUserKey).(*domain.User)
	return user, ok
}
