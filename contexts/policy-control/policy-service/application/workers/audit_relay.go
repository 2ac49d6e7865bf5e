package workers

import (
	"context"
	"log/slog"
	"time"

	application "quarry/contexts/policy-control/policy-service/application"
	"quarry/contexts/policy-control/policy-service/ports"
)

// AuditRelay drains pending audit rows and publishes them to the bus.
type AuditRelay struct {
	Outbox    ports.AuditOutbox
	Publisher ports.AuditPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r AuditRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingAudit(ctx, limit)
	if err != nil {
		logger.Error("policy audit list failed",
			"event", "policy_audit_list_failed",
			"module", "policy-control/policy-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, message := range pending {
		if err := r.Publisher.PublishPolicyChanged(ctx, message); err != nil {
			logger.Error("policy audit publish failed",
				"event", "policy_audit_publish_failed",
				"module", "policy-control/policy-service",
				"layer", "worker",
				"audit_id", message.AuditID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkAuditPublished(ctx, message.AuditID, now); err != nil {
			return err
		}
	}
	return nil
}
