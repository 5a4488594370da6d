package middleware

import (
	"net/http"
	"strings"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/auth"
	"github.com/rohits-web03/otadash/internal/utils"
)

// TokenCookie holds the session JWT.
const TokenCookie = "token"

// TokenFrom reads the session token from the cookie or a Bearer header.
func TokenFrom(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// Authenticator resolves request tokens into sessions.
type Authenticator struct {
	sessions *auth.Manager
}

func NewAuthenticator(sessions *auth.Manager) *Authenticator {
	return &Authenticator{sessions: sessions}
}

// Authenticate rejects requests without a valid session and injects the
// session into the request context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		s, err := a.sessions.Authenticate(r.Context(), TokenFrom(r))
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
	})
}

// Optional injects the session when the request carries a valid token and
// otherwise passes the request through anonymously.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFrom(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		s, err := a.sessions.Authenticate(r.Context(), token)
		if err != nil {
			if apperr.Is(err, apperr.ErrorTypeAuth) {
				next.ServeHTTP(w, r)
				return
			}
			utils.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
	})
}

// RequireAuthorized stops signed-in users whose account still awaits approval.
func RequireAuthorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.FromContext(r.Context())
		if !ok {
			utils.WriteError(w, r, apperr.NewAuthError("Unauthorized", nil))
			return
		}
		if s.State().Status != auth.StatusAuthorized {
			utils.WriteError(w, r, apperr.NewAwaitingApprovalError("Your account is awaiting approval from an administrator."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability wraps h so only roles granted action reach it.
func RequireCapability(action auth.Action, h http.HandlerFunc) http.Handler {
	return RequireAuthorized(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := auth.FromContext(r.Context())
		if !s.Can(action) {
			utils.WriteError(w, r, apperr.NewAuthorizationError("You do not have permission to perform this action", nil).
				WithDetails(map[string]any{"action": action}))
			return
		}
		h(w, r)
	}))
}
