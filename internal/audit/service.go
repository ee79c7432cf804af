package audit

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-komisi/internal/common"
	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
	"github.com/noah-isme/backend-komisi/internal/obs"
)

// ActorKind represents the source of an audited action.
type ActorKind string

const (
	// ActorKindSession is a caller holding an unlocked gate session.
	ActorKindSession ActorKind = "session"
	// ActorKindSystem marks internal automated actions.
	ActorKindSystem ActorKind = "system"
	// ActorKindAnonymous covers callers without a session, such as failed unlock attempts.
	ActorKindAnonymous ActorKind = "anonymous"
)

// Actor describes who performed the action.
type Actor struct {
	Kind      ActorKind
	SessionID *string
}

// Store defines the database operations required for auditing.
type Store interface {
	InsertAuditLog(ctx context.Context, arg dbgen.InsertAuditLogParams) (dbgen.InsertAuditLogRow, error)
	ListAuditLogs(ctx context.Context, arg dbgen.ListAuditLogsParams) ([]dbgen.AuditLog, error)
}

// Entry is one audited mutation. Empty Action and ResourceType are derived from the route.
type Entry struct {
	Actor        Actor
	Action       string
	ResourceType string
	ResourceID   string
	Status       int
	Metadata     []byte
}

// Service persists audit logs for mutating requests. SamplingRate in (0,1) keeps that fraction of entries.
type Service struct {
	Store        Store
	Enabled      bool
	SamplingRate float64
}

var errNoStore = errors.New("audit: store not configured")

// Record persists e, enriched with the request's route, client and correlation data.
func (s Service) Record(ctx context.Context, req *http.Request, e Entry) error {
	if !s.Enabled || s.sampledOut() {
		return nil
	}
	if req == nil {
		return errors.New("audit: request is required")
	}
	if s.Store == nil {
		return errNoStore
	}
	_, err := s.Store.InsertAuditLog(ctx, insertParams(req, e))
	return err
}

func (s Service) sampledOut() bool {
	return s.SamplingRate > 0 && s.SamplingRate < 1 && rand.Float64() > s.SamplingRate
}

func insertParams(req *http.Request, e Entry) dbgen.InsertAuditLogParams {
	route := obs.RoutePatternFromContext(req.Context())
	if route == "" {
		route = strings.TrimSpace(req.URL.Path)
	}
	action := strings.TrimSpace(e.Action)
	if action == "" {
		action = strings.ToUpper(req.Method) + " " + valueOr(route, "/")
	}
	resource := strings.TrimSpace(e.ResourceType)
	if resource == "" {
		resource = resourceFromRoute(route)
	}
	status := e.Status
	if status == 0 {
		status = http.StatusOK
	}
	kind := e.Actor.Kind
	if kind != ActorKindSession && kind != ActorKindSystem {
		kind = ActorKindAnonymous
	}
	metadata := e.Metadata
	if len(metadata) == 0 && req.URL.RawQuery != "" {
		metadata, _ = json.Marshal(map[string]string{"query": req.URL.RawQuery})
	}

	return dbgen.InsertAuditLogParams{
		ActorKind:      string(kind),
		ActorSessionID: sessionUUID(e.Actor.SessionID),
		Action:         action,
		ResourceType:   resource,
		ResourceID:     text(e.ResourceID),
		Method:         req.Method,
		Path:           req.URL.Path,
		Route:          text(route),
		Status:         int32(status),
		Ip:             text(common.ClientIP(req)),
		UserAgent:      text(req.UserAgent()),
		RequestID:      text(req.Header.Get("X-Request-ID")),
		Metadata:       metadata,
	}
}

// resourceFromRoute turns "/api/v1/invoices/{invoiceID}/status" into "invoices.{invoiceID}.status".
func resourceFromRoute(route string) string {
	trimmed := strings.Trim(strings.TrimSpace(route), "/")
	if trimmed == "" {
		return "unknown"
	}
	trimmed = strings.TrimPrefix(trimmed, "api/v1/")
	return strings.ReplaceAll(trimmed, "/", ".")
}

func sessionUUID(id *string) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	parsed, err := uuid.Parse(strings.TrimSpace(*id))
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func text(v string) pgtype.Text {
	v = strings.TrimSpace(v)
	return pgtype.Text{String: v, Valid: v != ""}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
