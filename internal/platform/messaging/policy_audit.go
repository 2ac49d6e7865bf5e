package messaging

import (
	"context"

	policyports "quarry/contexts/policy-control/policy-service/ports"
	"quarry/internal/shared/events"

	"github.com/google/uuid"
)

// TopicPolicyChanged carries policy lifecycle events. The authorization
// service subscribes to purge its decision cache.
const TopicPolicyChanged = "quarry.policy.changed"

// PolicyAuditPublisher adapts the bus to the policy-service audit port.
type PolicyAuditPublisher struct {
	Bus           *Kafka
	SourceService string
}

func (p PolicyAuditPublisher) PublishPolicyChanged(ctx context.Context, message policyports.AuditMessage) error {
	return p.Bus.Publish(ctx, TopicPolicyChanged, events.Envelope{
		EventID:        uuid.NewString(),
		EventType:      "policy.changed",
		SourceService:  p.SourceService,
		OccurredAtUTC:  message.OccurredAt.UTC(),
		CorrelationID:  message.AuditID,
		EntityType:     "Policy",
		EntityID:       message.PolicyID,
		PayloadVersion: 1,
		Payload: map[string]string{
			"policy_id": message.PolicyID,
			"action":    message.Action,
			"actor":     message.Actor,
		},
	})
}
