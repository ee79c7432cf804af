package audit

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/noah-isme/backend-komisi/internal/common"
	"github.com/noah-isme/backend-komisi/internal/db"
	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
)

// Handler exposes HTTP endpoints for working with audit logs.
type Handler struct {
	Store        Store
	DefaultLimit int
	MaxLimit     int
}

// LogEntry is the API representation of an audit log row.
type LogEntry struct {
	ID           string          `json:"id"`
	OccurredAt   time.Time       `json:"occurredAt"`
	ActorKind    string          `json:"actorKind"`
	SessionID    string          `json:"sessionId,omitempty"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resourceType"`
	ResourceID   *string         `json:"resourceId,omitempty"`
	Status       int32           `json:"status"`
	IP           *string         `json:"ip,omitempty"`
	RequestID    *string         `json:"requestId,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// List returns a paginated list of audit logs, newest first.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "AUDIT_NOT_CONFIGURED", "audit store not configured", nil)
		return
	}
	def, max := h.DefaultLimit, h.MaxLimit
	if def <= 0 {
		def = 50
	}
	if max <= 0 {
		max = 200
	}
	limit, offset := common.ParsePagination(r, def, max)

	rows, err := h.Store.ListAuditLogs(r.Context(), dbgen.ListAuditLogsParams{Limit: int32(limit), Offset: int32(offset)})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "AUDIT_QUERY_FAILED", "unable to fetch audit logs", nil)
		return
	}
	entries := make([]LogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toLogEntry(row))
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       entries,
		"pagination": common.Pagination{Limit: limit, Offset: offset, Total: int64(offset + len(entries))},
	})
}

func toLogEntry(row dbgen.AuditLog) LogEntry {
	e := LogEntry{
		ID:           db.UUIDString(row.ID),
		OccurredAt:   row.OccurredAt.Time,
		ActorKind:    row.ActorKind,
		SessionID:    db.UUIDString(row.ActorSessionID),
		Action:       row.Action,
		ResourceType: row.ResourceType,
		ResourceID:   db.StringPtr(row.ResourceID),
		Status:       row.Status,
		IP:           db.StringPtr(row.Ip),
		RequestID:    db.StringPtr(row.RequestID),
	}
	if len(row.Metadata) > 0 && json.Valid(row.Metadata) {
		e.Metadata = json.RawMessage(row.Metadata)
	}
	return e
}
