package memory

import (
	"context"
	"sync"
	"time"

	"quarry/contexts/organizations/hierarchy-service/domain/entities"
	domainerrors "quarry/contexts/organizations/hierarchy-service/domain/errors"
	"quarry/contexts/organizations/hierarchy-service/ports"
	"quarry/internal/shared/hrn"

	"github.com/google/uuid"
)

// Store is the in-memory hierarchy adapter. Reads return deep copies so
// callers mutate nothing until they Save; the unit of work stages its writes
// and applies them under the store lock on Commit.
type Store struct {
	mu sync.RWMutex

	ous      map[string]entities.OrganizationalUnit
	accounts map[string]entities.Account
	scps     map[string]entities.ServiceControlPolicy

	// FailOuSaves forces SaveOu to fail for the named hrns. Tests use it to
	// exercise mid-move failures.
	FailOuSaves map[string]bool
}

func NewStore() *Store {
	return &Store{
		ous:         make(map[string]entities.OrganizationalUnit),
		accounts:    make(map[string]entities.Account),
		scps:        make(map[string]entities.ServiceControlPolicy),
		FailOuSaves: make(map[string]bool),
	}
}

func cloneSet(set map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(set))
	for key := range set {
		out[key] = struct{}{}
	}
	return out
}

func cloneOu(unit entities.OrganizationalUnit) entities.OrganizationalUnit {
	unit.ChildOus = cloneSet(unit.ChildOus)
	unit.ChildAccounts = cloneSet(unit.ChildAccounts)
	unit.AttachedScps = cloneSet(unit.AttachedScps)
	return unit
}

func cloneAccount(account entities.Account) entities.Account {
	account.AttachedScps = cloneSet(account.AttachedScps)
	return account
}

func (s *Store) FindOuByHrn(_ context.Context, id hrn.Hrn) (entities.OrganizationalUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unit, ok := s.ous[id.String()]
	if !ok {
		return entities.OrganizationalUnit{}, domainerrors.ErrOuNotFound
	}
	return cloneOu(unit), nil
}

func (s *Store) SaveOu(_ context.Context, unit entities.OrganizationalUnit) error {
	if s.FailOuSaves[unit.Hrn.String()] {
		return domainerrors.ErrStorageFailure
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ous[unit.Hrn.String()] = cloneOu(unit)
	return nil
}

func (s *Store) FindAccountByHrn(_ context.Context, id hrn.Hrn) (entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id.String()]
	if !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

func (s *Store) SaveAccount(_ context.Context, account entities.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.Hrn.String()] = cloneAccount(account)
	return nil
}

func (s *Store) FindScpByHrn(_ context.Context, id hrn.Hrn) (entities.ServiceControlPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scp, ok := s.scps[id.String()]
	if !ok {
		return entities.ServiceControlPolicy{}, domainerrors.ErrScpNotFound
	}
	return scp, nil
}

func (s *Store) SaveScp(_ context.Context, scp entities.ServiceControlPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scps[scp.Hrn.String()] = scp
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// Begin starts a staged unit of work over the store.
func (s *Store) Begin(_ context.Context) (ports.UnitOfWork, error) {
	return &unitOfWork{
		store:          s,
		stagedOus:      make(map[string]entities.OrganizationalUnit),
		stagedAccounts: make(map[string]entities.Account),
	}, nil
}

// unitOfWork buffers writes until Commit. Reads see staged values first so a
// use case observes its own writes.
type unitOfWork struct {
	store          *Store
	stagedOus      map[string]entities.OrganizationalUnit
	stagedAccounts map[string]entities.Account
	done           bool
}

func (u *unitOfWork) Ous() ports.OuRepository           { return u }
func (u *unitOfWork) Accounts() ports.AccountRepository { return u }

func (u *unitOfWork) FindOuByHrn(ctx context.Context, id hrn.Hrn) (entities.OrganizationalUnit, error) {
	if staged, ok := u.stagedOus[id.String()]; ok {
		return cloneOu(staged), nil
	}
	return u.store.FindOuByHrn(ctx, id)
}

func (u *unitOfWork) SaveOu(_ context.Context, unit entities.OrganizationalUnit) error {
	if u.store.FailOuSaves[unit.Hrn.String()] {
		return domainerrors.ErrStorageFailure
	}
	u.stagedOus[unit.Hrn.String()] = cloneOu(unit)
	return nil
}

func (u *unitOfWork) FindAccountByHrn(ctx context.Context, id hrn.Hrn) (entities.Account, error) {
	if staged, ok := u.stagedAccounts[id.String()]; ok {
		return cloneAccount(staged), nil
	}
	return u.store.FindAccountByHrn(ctx, id)
}

func (u *unitOfWork) SaveAccount(_ context.Context, account entities.Account) error {
	u.stagedAccounts[account.Hrn.String()] = cloneAccount(account)
	return nil
}

func (u *unitOfWork) Commit(_ context.Context) error {
	if u.done {
		return domainerrors.ErrStorageFailure
	}
	u.done = true

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for key, unit := range u.stagedOus {
		u.store.ous[key] = unit
	}
	for key, account := range u.stagedAccounts {
		u.store.accounts[key] = account
	}
	return nil
}

func (u *unitOfWork) Rollback(_ context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	u.stagedOus = nil
	u.stagedAccounts = nil
	return nil
}
