package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/masiqhakaze/website/internal/auth"
)

type ctxKey struct{}

// SessionID returns the admin session id stored by RequireSession.
func SessionID(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(ctxKey{}).(string)
	return sid, ok
}

// RequireSession validates the bearer token or session cookie before
// calling next. Unauthenticated requests are redirected to loginPath, or
// get a 401 when loginPath is empty.
func RequireSession(sessions *auth.Sessions, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid, err := sessions.Check(r.Context(), auth.TokenFromRequest(r))
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidSession) {
					http.Error(w, `{"error":"session lookup failed"}`, http.StatusInternalServerError)
					return
				}
				if loginPath != "" {
					http.Redirect(w, r, loginPath, http.StatusSeeOther)
					return
				}
				http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
