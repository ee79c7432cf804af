package settings

import (
	"net/http"

	"github.com/noah-isme/backend-komisi/internal/common"
)

// Handler exposes the settings endpoints.
type Handler struct {
	Svc *Service
}

// Get returns the current settings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cur, err := h.Svc.Get(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cur})
}

// Update changes the default rest percentage used for new invoices.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	cur, err := h.Svc.Update(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cur})
}
