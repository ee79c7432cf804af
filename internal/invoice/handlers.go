package invoice

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-komisi/internal/common"
)

// Handler exposes invoice and commission preview endpoints.
type Handler struct {
	Svc          *Service
	DefaultLimit int
	MaxLimit     int
}

// Routes mounts the invoice endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{invoiceID}", h.Get)
	r.Put("/{invoiceID}", h.Update)
	r.Delete("/{invoiceID}", h.Delete)
	r.Patch("/{invoiceID}/status", h.ChangeStatus)
}

// Preview recomputes the commission breakdown of an unsaved form.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var in PreviewInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	calc, err := h.Svc.Preview(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": calc})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	inv, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": inv})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	inv, err := h.Svc.Update(r.Context(), chi.URLParam(r, "invoiceID"), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": inv})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Svc.Get(r.Context(), chi.URLParam(r, "invoiceID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": inv})
}

// List supports ?status, ?seller, ?from, ?to (YYYY-MM-DD) plus limit/offset/page.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("from"))
	if err != nil {
		common.WriteError(w, ErrInvalidFilter.WithDetails(map[string]string{"from": "must be YYYY-MM-DD"}))
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		common.WriteError(w, ErrInvalidFilter.WithDetails(map[string]string{"to": "must be YYYY-MM-DD"}))
		return
	}
	limit, offset := common.ParsePagination(r, h.defaultLimit(), h.maxLimit())
	items, total, err := h.Svc.List(r.Context(), Filter{
		Status: strings.ToLower(strings.TrimSpace(q.Get("status"))),
		Seller: q.Get("seller"),
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": common.Pagination{Limit: limit, Offset: offset, Total: total},
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "invoiceID")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeStatus applies {"status": "pending"|"paid"|"cancelled"}.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var in StatusInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(in); err != nil {
		common.WriteError(w, err)
		return
	}
	inv, err := h.Svc.ChangeStatus(r.Context(), chi.URLParam(r, "invoiceID"), in.Status)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": inv})
}

func (h *Handler) defaultLimit() int {
	if h.DefaultLimit > 0 {
		return h.DefaultLimit
	}
	return 20
}

func (h *Handler) maxLimit() int {
	if h.MaxLimit > 0 {
		return h.MaxLimit
	}
	return 100
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, v)
}
