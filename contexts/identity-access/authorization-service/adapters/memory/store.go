package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quarry/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quarry/contexts/identity-access/authorization-service/domain/errors"
	"quarry/contexts/identity-access/authorization-service/domain/services"
	"quarry/internal/shared/hrn"

	"github.com/google/uuid"
)

// Store is the in-memory adapter backing the decision engine's ports:
// principal attachments, policy contents, and the decision cache.
type Store struct {
	mu sync.RWMutex

	attachments map[string]map[string]struct{} // principal -> policy ids
	contents    map[string]string              // policy id -> document
	cache       map[string]cachedDecision
}

type cachedDecision struct {
	decision  entities.EvaluationDecision
	expiresAt time.Time
}

func NewStore() *Store {
	return &Store{
		attachments: make(map[string]map[string]struct{}),
		contents:    make(map[string]string),
		cache:       make(map[string]cachedDecision),
	}
}

// PutPolicyContent seeds a policy document, standing in for the policy
// store in tests and development wiring.
func (s *Store) PutPolicyContent(policyID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contents[policyID] = content
}

func (s *Store) GetPolicyContent(_ context.Context, policyID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.contents[policyID]
	if !ok {
		return "", domainerrors.ErrPolicyNotFound
	}
	return content, nil
}

func (s *Store) AttachPolicy(_ context.Context, principal hrn.Hrn, policyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := principal.String()
	if s.attachments[key] == nil {
		s.attachments[key] = make(map[string]struct{})
	}
	s.attachments[key][policyID] = struct{}{}
	return nil
}

func (s *Store) DetachPolicy(_ context.Context, principal hrn.Hrn, policyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attached, ok := s.attachments[principal.String()]
	if !ok {
		return domainerrors.ErrAttachmentNotFound
	}
	if _, ok := attached[policyID]; !ok {
		return domainerrors.ErrAttachmentNotFound
	}
	delete(attached, policyID)
	return nil
}

func (s *Store) ListAttachedPolicyIDs(_ context.Context, principal hrn.Hrn) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.attachments[principal.String()]))
	for id := range s.attachments[principal.String()] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// FindPoliciesForPrincipal joins attachments with stored contents. A policy
// id attached but missing a document is surfaced as ErrPolicyNotFound
// rather than silently shrinking the set.
func (s *Store) FindPoliciesForPrincipal(_ context.Context, principal hrn.Hrn) ([]services.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attached := s.attachments[principal.String()]
	ids := make([]string, 0, len(attached))
	for id := range attached {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	documents := make([]services.Document, 0, len(ids))
	for _, id := range ids {
		content, ok := s.contents[id]
		if !ok {
			return nil, domainerrors.ErrPolicyNotFound
		}
		documents = append(documents, services.Document{ID: id, Content: content})
	}
	return documents, nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (entities.EvaluationDecision, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[key]
	if !ok || now.After(entry.expiresAt) {
		return entities.EvaluationDecision{}, false, nil
	}
	return entry.decision, true, nil
}

func (s *Store) Set(_ context.Context, key string, decision entities.EvaluationDecision, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cachedDecision{decision: decision, expiresAt: expiresAt}
	return nil
}

func (s *Store) InvalidatePrincipal(_ context.Context, principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.cache {
		if len(key) >= len(principal) && key[:len(principal)] == principal {
			delete(s.cache, key)
		}
	}
	return nil
}

func (s *Store) Purge(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cachedDecision)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
