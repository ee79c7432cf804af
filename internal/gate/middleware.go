package gate

import (
	"net/http"
	"strings"

	"github.com/noah-isme/backend-komisi/internal/common"
)

// SessionCookie is the cookie the unlock endpoint sets alongside the JSON token.
const SessionCookie = "komisi_session"

// Middleware guards routes behind an unlocked session.
type Middleware struct {
	Service *Service
}

// RequireSession rejects requests without a valid session token and stores the session id in the context.
func (m Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Service == nil {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "gate not configured", nil)
			return
		}
		token := extractToken(r)
		if token == "" {
			common.WriteError(w, ErrUnauthorized)
			return
		}
		claims, err := m.Service.ParseSession(r.Context(), token)
		if err != nil {
			common.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithSessionID(r.Context(), claims.SessionID)))
	})
}

func extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
