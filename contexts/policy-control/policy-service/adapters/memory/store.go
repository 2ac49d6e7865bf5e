package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quarry/contexts/policy-control/policy-service/domain/entities"
	domainerrors "quarry/contexts/policy-control/policy-service/domain/errors"
	"quarry/contexts/policy-control/policy-service/ports"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing every policy port. A single
// mutex covers the existence check and the insert, closing the TOCTOU window
// for concurrent creates of the same id.
type Store struct {
	mu sync.RWMutex

	policies map[string]entities.Policy
	versions map[string][]entities.PolicyVersion // append-only per policy
	archived map[string][]entities.PolicyVersion
	audits   map[string]auditRow
	// Dependents simulates external references (attachments) for tests.
	Dependents map[string]bool
}

type auditRow struct {
	ports.AuditMessage
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		policies:   make(map[string]entities.Policy),
		versions:   make(map[string][]entities.PolicyVersion),
		archived:   make(map[string][]entities.PolicyVersion),
		audits:     make(map[string]auditRow),
		Dependents: make(map[string]bool),
	}
}

func (s *Store) Create(_ context.Context, input ports.CreatePolicyInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[input.Policy.ID]; exists {
		return domainerrors.ErrPolicyAlreadyExists
	}
	s.policies[input.Policy.ID] = input.Policy
	s.versions[input.Policy.ID] = []entities.PolicyVersion{input.Version}
	return nil
}

func (s *Store) AppendVersion(_ context.Context, input ports.UpdatePolicyInput) (entities.Policy, entities.PolicyVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy, exists := s.policies[input.PolicyID]
	if !exists || policy.Status == entities.StatusDeleted {
		return entities.Policy{}, entities.PolicyVersion{}, domainerrors.ErrPolicyNotFound
	}

	version := entities.PolicyVersion{
		PolicyID:  input.PolicyID,
		Version:   policy.CurrentVersion + 1,
		Content:   input.Content,
		CreatedAt: input.UpdatedAt.UTC(),
		CreatedBy: input.UpdatedBy,
	}
	s.versions[input.PolicyID] = append(s.versions[input.PolicyID], version)

	policy.CurrentVersion = version.Version
	policy.UpdatedAt = input.UpdatedAt.UTC()
	if input.Name != "" {
		policy.Name = input.Name
	}
	if input.Description != "" {
		policy.Description = input.Description
	}
	s.policies[input.PolicyID] = policy
	return policy, version, nil
}

func (s *Store) SoftDelete(_ context.Context, policyID string, deletedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy, exists := s.policies[policyID]
	if !exists || policy.Status == entities.StatusDeleted {
		return domainerrors.ErrPolicyNotFound
	}
	policy.Status = entities.StatusDeleted
	policy.UpdatedAt = deletedAt.UTC()
	s.policies[policyID] = policy
	return nil
}

func (s *Store) ArchiveVersions(_ context.Context, policyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[policyID]; !exists {
		return domainerrors.ErrPolicyNotFound
	}
	s.archived[policyID] = append(s.archived[policyID], s.versions[policyID]...)
	delete(s.versions, policyID)
	return nil
}

func (s *Store) HardDelete(_ context.Context, policyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[policyID]; !exists {
		return domainerrors.ErrPolicyNotFound
	}
	delete(s.policies, policyID)
	delete(s.versions, policyID)
	return nil
}

func (s *Store) Get(_ context.Context, policyID string) (entities.Policy, entities.PolicyVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policy, exists := s.policies[policyID]
	if !exists {
		return entities.Policy{}, entities.PolicyVersion{}, domainerrors.ErrPolicyNotFound
	}
	for _, version := range s.versions[policyID] {
		if version.Version == policy.CurrentVersion {
			return policy, version, nil
		}
	}
	// Soft-deleted policies stay retrievable even after version archival.
	return policy, entities.PolicyVersion{}, nil
}

func (s *Store) GetVersion(_ context.Context, policyID string, versionNumber int) (entities.PolicyVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, version := range s.versions[policyID] {
		if version.Version == versionNumber {
			return version, nil
		}
	}
	return entities.PolicyVersion{}, domainerrors.ErrPolicyNotFound
}

func (s *Store) List(_ context.Context, filter ports.ListPoliciesFilter) ([]entities.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Policy, 0, len(s.policies))
	for _, policy := range s.policies {
		if !matches(policy, filter) {
			continue
		}
		items = append(items, policy)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	if filter.Offset >= len(items) {
		return []entities.Policy{}, nil
	}
	items = items[filter.Offset:]
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func matches(policy entities.Policy, filter ports.ListPoliciesFilter) bool {
	if filter.Name != "" && policy.Name != filter.Name {
		return false
	}
	if filter.NameContains != "" && !strings.Contains(policy.Name, filter.NameContains) {
		return false
	}
	if filter.Status != "" && policy.Status != filter.Status {
		return false
	}
	if filter.CreatedBy != "" && policy.CreatedBy != filter.CreatedBy {
		return false
	}
	for _, wanted := range filter.Tags {
		found := false
		for _, tag := range policy.Tags {
			if tag == wanted {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *Store) HasDependents(_ context.Context, policyID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dependents[policyID], nil
}

func (s *Store) RecordAudit(_ context.Context, record ports.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auditID := record.AuditID
	if auditID == "" {
		auditID = uuid.NewString()
	}
	s.audits[auditID] = auditRow{
		AuditMessage: ports.AuditMessage{
			AuditID:    auditID,
			PolicyID:   record.PolicyID,
			Action:     record.Action,
			Actor:      record.Actor,
			OccurredAt: record.OccurredAt.UTC(),
		},
	}
	return nil
}

func (s *Store) ListPendingAudit(_ context.Context, limit int) ([]ports.AuditMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]ports.AuditMessage, 0, len(s.audits))
	for _, row := range s.audits {
		if row.PublishedAt == nil {
			rows = append(rows, row.AuditMessage)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].OccurredAt.Before(rows[j].OccurredAt) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *Store) MarkAuditPublished(_ context.Context, auditID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.audits[auditID]
	if !ok {
		return domainerrors.ErrPolicyNotFound
	}
	value := publishedAt.UTC()
	row.PublishedAt = &value
	s.audits[auditID] = row
	return nil
}

// SetStatus overrides a policy's status. Bootstrap wiring uses it to mark
// seeded policies system or immutable.
func (s *Store) SetStatus(policyID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy, exists := s.policies[policyID]
	if !exists {
		return domainerrors.ErrPolicyNotFound
	}
	policy.Status = entities.PolicyStatus(status)
	s.policies[policyID] = policy
	return nil
}

// ArchivedVersions exposes archived rows for test assertions.
func (s *Store) ArchivedVersions(policyID string) []entities.PolicyVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.PolicyVersion(nil), s.archived[policyID]...)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
