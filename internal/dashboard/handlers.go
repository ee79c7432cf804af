package dashboard

import (
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/backend-komisi/internal/common"
)

// Handler exposes dashboard read endpoints.
type Handler struct {
	Svc *Service
}

// Summary returns the aggregates for ?from&to (YYYY-MM-DD) or the last ?days days, optionally per ?seller.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "DASHBOARD_NOT_CONFIGURED", "dashboard service not configured", nil)
		return
	}
	query := r.URL.Query()
	fromStr, toStr := query.Get("from"), query.Get("to")
	var f Filter
	if fromStr != "" || toStr != "" {
		if fromStr == "" || toStr == "" {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "from and to must be given together", nil)
			return
		}
		from, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid from date", nil)
			return
		}
		to, err := time.Parse(dateLayout, toStr)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid to date", nil)
			return
		}
		if to.Before(from) {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "from must not be after to", nil)
			return
		}
		f = Filter{From: from, To: to}
	} else {
		f = h.Svc.DefaultFilter(common.QueryInt(query, "days", 0))
	}
	f.Seller = strings.TrimSpace(query.Get("seller"))

	out, err := h.Svc.Summary(r.Context(), f)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
