package ports

import (
	"context"
	"time"

	"quarry/contexts/identity-access/authorization-service/domain/entities"
	"quarry/contexts/identity-access/authorization-service/domain/services"
	"quarry/internal/shared/hrn"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts id generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// PolicyFinder returns the policy documents attached to a principal, ready
// for evaluation. An empty slice means the principal has no policies.
type PolicyFinder interface {
	FindPoliciesForPrincipal(ctx context.Context, principal hrn.Hrn) ([]services.Document, error)
}

// EffectiveScpProvider resolves the control policies governing a hierarchy
// node, in node-to-root order.
type EffectiveScpProvider interface {
	EffectiveScpsFor(ctx context.Context, target hrn.Hrn) ([]services.Document, error)
}

// DecisionCache stores evaluation decisions with TTL semantics. Purge drops
// everything; policy mutations are rare enough that finer invalidation is
// not worth tracking reverse indexes.
type DecisionCache interface {
	Get(ctx context.Context, key string, now time.Time) (entities.EvaluationDecision, bool, error)
	Set(ctx context.Context, key string, decision entities.EvaluationDecision, expiresAt time.Time) error
	InvalidatePrincipal(ctx context.Context, principal string) error
	Purge(ctx context.Context) error
}

// PolicyAttachmentStore records which policies are bound to which principals.
type PolicyAttachmentStore interface {
	AttachPolicy(ctx context.Context, principal hrn.Hrn, policyID string) error
	DetachPolicy(ctx context.Context, principal hrn.Hrn, policyID string) error
	ListAttachedPolicyIDs(ctx context.Context, principal hrn.Hrn) ([]string, error)
}

// PolicyContentProvider resolves a policy id to its current document text.
// The policy store behind it owns validation and versioning.
type PolicyContentProvider interface {
	GetPolicyContent(ctx context.Context, policyID string) (string, error)
}
