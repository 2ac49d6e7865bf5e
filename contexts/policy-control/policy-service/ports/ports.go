package ports

import (
	"context"
	"time"

	"quarry/contexts/policy-control/policy-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts audit/version row id generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// CreatePolicyInput is persisted atomically: the aggregate, its first
// version, and the audit row.
type CreatePolicyInput struct {
	Policy  entities.Policy
	Version entities.PolicyVersion
}

// PolicyCreator inserts a new aggregate. Implementations must re-check id
// uniqueness under the same exclusive lock (or unique index) used for the
// insert, so at most one of N concurrent creates with the same id succeeds;
// the rest observe ErrPolicyAlreadyExists.
type PolicyCreator interface {
	Create(ctx context.Context, input CreatePolicyInput) error
}

// UpdatePolicyInput carries the new content for an existing policy.
type UpdatePolicyInput struct {
	PolicyID    string
	Name        string
	Description string
	Content     string
	UpdatedBy   string
	UpdatedAt   time.Time
}

// PolicyUpdater appends a new version and advances current_version in one
// storage operation. Existing versions are never mutated.
type PolicyUpdater interface {
	AppendVersion(ctx context.Context, input UpdatePolicyInput) (entities.Policy, entities.PolicyVersion, error)
}

// PolicyDeleter exposes soft delete, version archival, and hard delete as
// distinct storage operations.
type PolicyDeleter interface {
	SoftDelete(ctx context.Context, policyID string, deletedAt time.Time) error
	ArchiveVersions(ctx context.Context, policyID string) error
	HardDelete(ctx context.Context, policyID string) error
}

// ListPoliciesFilter narrows a list query. Zero values mean "no filter".
type ListPoliciesFilter struct {
	Name         string
	NameContains string
	Status       entities.PolicyStatus
	CreatedBy    string
	Tags         []string
	Limit        int
	Offset       int
}

// PolicyReader is the read boundary over Policy/PolicyVersion.
type PolicyReader interface {
	Get(ctx context.Context, policyID string) (entities.Policy, entities.PolicyVersion, error)
	List(ctx context.Context, filter ListPoliciesFilter) ([]entities.Policy, error)
	GetVersion(ctx context.Context, policyID string, version int) (entities.PolicyVersion, error)
}

// DependencyChecker reports whether other resources still reference the
// policy (organization attachments, principal attachments).
type DependencyChecker interface {
	HasDependents(ctx context.Context, policyID string) (bool, error)
}

// AuditRecord captures one policy mutation for the audit trail.
type AuditRecord struct {
	AuditID    string
	PolicyID   string
	Action     string // created, updated, soft_deleted, hard_deleted
	Actor      string
	OccurredAt time.Time
}

// AuditRecorder appends an audit row. Implementations back it with the
// outbox table so the relay worker can publish it.
type AuditRecorder interface {
	RecordAudit(ctx context.Context, record AuditRecord) error
}

// AuditMessage is a pending audit row awaiting relay.
type AuditMessage struct {
	AuditID    string
	PolicyID   string
	Action     string
	Actor      string
	OccurredAt time.Time
}

// AuditOutbox supports worker relay polling and acknowledgement.
type AuditOutbox interface {
	ListPendingAudit(ctx context.Context, limit int) ([]AuditMessage, error)
	MarkAuditPublished(ctx context.Context, auditID string, publishedAt time.Time) error
}

// AuditPublisher emits policy change events to the platform bus.
type AuditPublisher interface {
	PublishPolicyChanged(ctx context.Context, message AuditMessage) error
}
