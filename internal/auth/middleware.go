package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// CookieName is the HttpOnly cookie that carries the session token.
const CookieName = "token"

// OptionalAuth extracts the caller if a valid token is present, but never
// blocks the request.
//
// Every API route runs behind this middleware. Whether an anonymous request
// is acceptable is a policy decision, so it is made by the service layer
// (which returns apperror.ErrUnauthenticated), not here.
//
// A nil verifier (auth not configured) treats every request as anonymous.
func OptionalAuth(v Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v != nil {
				caller, err := v.Verify(r.Context(), tokenFromRequest(r))
				switch {
				case err == nil:
					r = r.WithContext(WithCaller(r.Context(), caller))
				case !errors.Is(err, ErrNoCredentials):
					logger.Debug("ignoring invalid session token",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tokenFromRequest reads the session token from the Authorization header
// ("Bearer <jwt>") or, failing that, from the session cookie.
// Returns "" when neither is present.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}
