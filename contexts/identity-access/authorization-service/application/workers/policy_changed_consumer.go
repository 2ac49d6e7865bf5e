package workers

import (
	"context"
	"log/slog"

	application "quarry/contexts/identity-access/authorization-service/application"
	"quarry/contexts/identity-access/authorization-service/ports"
	"quarry/internal/shared/events"
)

// PolicyChangedConsumer reacts to policy lifecycle events from the policy
// store by purging the decision cache. Stale allows are worse than a cold
// cache.
type PolicyChangedConsumer struct {
	Cache  ports.DecisionCache
	Logger *slog.Logger
}

func (c PolicyChangedConsumer) Handle(ctx context.Context, envelope events.Envelope) error {
	logger := application.ResolveLogger(c.Logger)

	if envelope.EventType != "policy.changed" {
		return nil
	}
	if c.Cache == nil {
		return nil
	}
	if err := c.Cache.Purge(ctx); err != nil {
		logger.Error("decision cache purge failed",
			"event", "authz_cache_purge_failed",
			"module", "identity-access/authorization-service",
			"layer", "worker",
			"event_id", envelope.EventID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("decision cache purged after policy change",
		"event", "authz_cache_purged",
		"module", "identity-access/authorization-service",
		"layer", "worker",
		"event_id", envelope.EventID,
		"entity_id", envelope.EntityID,
	)
	return nil
}
