package scheduler

import (
	"context"

	"salesdesk_backend/internal/events"
)

// RegisterHandlers queues a company rescore for every account a conversion
// touched, so the probe never runs inside the conversion request.
func RegisterHandlers(bus events.Bus, enqueuer JobEnqueuer) {
	bus.Subscribe(events.NameLeadConverted, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadConverted)
		if !ok {
			return nil
		}
		return enqueuer.EnqueueCompanyScore(ctx, e.AccountID)
	}))
}
