package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

type contextKey struct{}

// UserFromContext returns the identity the gate resolved for this request.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(contextKey{}).(User)
	return user, ok
}

// Middleware is the access gate in front of every protected operation. It
// extracts the bearer token, validates signature and expiry, then
// re-resolves the user id against the store so tokens for deleted accounts
// stop working. Any failure short-circuits before next runs. Store
// connectivity faults are reported as 503, never masked as auth failures.
func Middleware(tokens *TokenIssuer, store UserStore, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			writeError(w, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		userID, err := tokens.Validate(strings.TrimSpace(parts[1]), time.Now().UTC())
		if err != nil {
			// Malformed, bad signature and expired stay distinct
			// internally but are one outcome at this boundary.
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := store.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			sentry.CaptureException(err)
			writeError(w, http.StatusServiceUnavailable, "service unavailable")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, user)))
	})
}
