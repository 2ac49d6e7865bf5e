package ports

import (
	"context"
	"time"

	"quarry/contexts/organizations/hierarchy-service/domain/entities"
	"quarry/internal/shared/hrn"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts node id generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OuRepository stores organizational units keyed by hrn.
type OuRepository interface {
	FindOuByHrn(ctx context.Context, id hrn.Hrn) (entities.OrganizationalUnit, error)
	SaveOu(ctx context.Context, unit entities.OrganizationalUnit) error
}

// AccountRepository stores accounts keyed by hrn.
type AccountRepository interface {
	FindAccountByHrn(ctx context.Context, id hrn.Hrn) (entities.Account, error)
	SaveAccount(ctx context.Context, account entities.Account) error
}

// ScpRepository stores service control policies keyed by hrn.
type ScpRepository interface {
	FindScpByHrn(ctx context.Context, id hrn.Hrn) (entities.ServiceControlPolicy, error)
	SaveScp(ctx context.Context, scp entities.ServiceControlPolicy) error
}

// UnitOfWork scopes repositories to one atomic mutation. Either Commit or
// Rollback must be called exactly once; writes through the scoped
// repositories are invisible to other readers until Commit returns.
type UnitOfWork interface {
	Ous() OuRepository
	Accounts() AccountRepository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFactory begins a new unit of work.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
