package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
)

var (
	errNoStore     = errors.New("events: store not configured")
	errNoTopic     = errors.New("events: topic is required")
	errNoAggregate = errors.New("events: aggregate id is required")
	errBadPayload  = errors.New("events: payload is not valid json")
)

// EventStore persists the domain_events outbox.
type EventStore interface {
	InsertDomainEvent(ctx context.Context, arg dbgen.InsertDomainEventParams) (dbgen.DomainEvent, error)
}

// Scheduler hands a stored event to background processing.
type Scheduler interface {
	Schedule(ctx context.Context, event dbgen.DomainEvent) error
}

// Notifier reacts synchronously to a stored event, e.g. cache invalidation.
type Notifier interface {
	Notify(ctx context.Context, event dbgen.DomainEvent) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event dbgen.DomainEvent) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, event dbgen.DomainEvent) error { return f(ctx, event) }

// Publisher is the narrow interface services depend on.
type Publisher interface {
	Emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) (dbgen.DomainEvent, error)
}

// Bus stores each event first, then runs the scheduler and every notifier.
type Bus struct {
	Store     EventStore
	Scheduler Scheduler
	Notifiers []Notifier
}

// Emit stores the event and dispatches it. A stored event is returned even when
// dispatch fails; the error then joins every downstream failure.
func (b *Bus) Emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) (dbgen.DomainEvent, error) {
	if b == nil || b.Store == nil {
		return dbgen.DomainEvent{}, errNoStore
	}
	params, err := newEventParams(topic, aggregateID, payload)
	if err != nil {
		return dbgen.DomainEvent{}, err
	}
	ev, err := b.Store.InsertDomainEvent(ctx, params)
	if err != nil {
		return dbgen.DomainEvent{}, fmt.Errorf("events: persist %s: %w", params.Topic, err)
	}
	return ev, b.dispatch(ctx, ev)
}

func (b *Bus) dispatch(ctx context.Context, ev dbgen.DomainEvent) error {
	var errs []error
	if b.Scheduler != nil {
		if err := b.Scheduler.Schedule(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("events: schedule %s: %w", ev.Topic, err))
		}
	}
	for _, n := range b.Notifiers {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("events: notify %s: %w", ev.Topic, err))
		}
	}
	return errors.Join(errs...)
}

func newEventParams(topic string, aggregateID pgtype.UUID, payload any) (dbgen.InsertDomainEventParams, error) {
	topic = strings.TrimSpace(topic)
	switch {
	case topic == "":
		return dbgen.InsertDomainEventParams{}, errNoTopic
	case !aggregateID.Valid:
		return dbgen.InsertDomainEventParams{}, errNoAggregate
	}
	body, err := marshalPayload(payload)
	if err != nil {
		return dbgen.InsertDomainEventParams{}, err
	}
	return dbgen.InsertDomainEventParams{Topic: topic, AggregateID: aggregateID, Payload: body}, nil
}

// marshalPayload accepts raw JSON as []byte, json.RawMessage or string, and marshals
// anything else. Empty input becomes {}.
func marshalPayload(payload any) ([]byte, error) {
	var raw []byte
	switch v := payload.(type) {
	case nil:
		return []byte("{}"), nil
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	case string:
		raw = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("events: encode payload: %w", err)
		}
		return b, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []byte("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, errBadPayload
	}
	return bytes.Clone(raw), nil
}

// Publish emits through p when configured. Callers publish after commit, so failures are only logged.
func Publish(ctx context.Context, p Publisher, logger zerolog.Logger, topic string, aggregateID pgtype.UUID, payload any) {
	if p == nil {
		return
	}
	if bus, ok := p.(*Bus); ok && bus == nil {
		return
	}
	if _, err := p.Emit(ctx, topic, aggregateID, payload); err != nil {
		logger.Warn().Err(err).Str("topic", topic).Msg("emit domain event")
	}
}

// LogNotifier writes every event to the structured log.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event dbgen.DomainEvent) error {
	n.Logger.Info().
		Str("topic", event.Topic).
		Str("event_id", uuidString(event.ID)).
		Str("aggregate_id", uuidString(event.AggregateID)).
		RawJSON("payload", event.Payload).
		Msg("domain_event")
	return nil
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}
