package gate

import (
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/backend-komisi/internal/common"
)

// Handler exposes the gate endpoints.
type Handler struct {
	Svc          *Service
	SecureCookie bool
}

type unlockRequest struct {
	Passphrase string `json:"passphrase" validate:"required"`
}

type changeRequest struct {
	Current string `json:"current" validate:"required"`
	Next    string `json:"next" validate:"required"`
}

// Unlock exchanges the passphrase for a session token.
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	sess, err := h.Svc.Unlock(r.Context(), common.ClientIP(r), req.Passphrase)
	if err != nil {
		writeGateError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	common.JSON(w, http.StatusOK, map[string]any{"data": sess})
}

// ChangePassphrase replaces the passphrase. Requires a session.
func (h *Handler) ChangePassphrase(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Svc.ChangePassphrase(r.Context(), common.ClientIP(r), req.Current, req.Next); err != nil {
		writeGateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session describes the caller's current session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Svc.ParseSession(r.Context(), extractToken(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": claims})
}

// writeGateError renders err, adding Retry-After to lockouts.
func writeGateError(w http.ResponseWriter, err error) {
	if wait, ok := IsLocked(err); ok {
		w.Header().Set("Retry-After", strconv.Itoa(int(wait/time.Second)))
	}
	common.WriteError(w, err)
}
