package dashboard

import (
	"context"

	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
	"github.com/noah-isme/backend-komisi/internal/events"
)

// Invalidator drops cached summaries whenever an event changes invoice aggregates.
type Invalidator struct {
	Svc *Service
}

// Notify implements events.Notifier.
func (i Invalidator) Notify(ctx context.Context, ev dbgen.DomainEvent) error {
	if i.Svc == nil || !events.AffectsDashboard(ev.Topic) {
		return nil
	}
	return i.Svc.Invalidate(ctx)
}
