package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quarry/contexts/policy-control/schema-registry/domain/entities"
	domainerrors "quarry/contexts/policy-control/schema-registry/domain/errors"

	"github.com/google/uuid"
)

// Store is an in-memory schema storage adapter for tests and local wiring.
type Store struct {
	mu      sync.RWMutex
	schemas map[string]entities.Schema // keyed by schema id
	order   []string                   // save order, newest last
}

func NewStore() *Store {
	return &Store{
		schemas: make(map[string]entities.Schema),
	}
}

func (s *Store) SaveSchema(_ context.Context, schema entities.Schema) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schemas[schema.ID] = schema
	s.order = append(s.order, schema.ID)
	return schema.ID, nil
}

func (s *Store) GetLatestSchema(_ context.Context) (entities.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		if schema, ok := s.schemas[s.order[i]]; ok {
			return schema, nil
		}
	}
	return entities.Schema{}, domainerrors.ErrSchemaNotFound
}

func (s *Store) GetSchemaByVersion(_ context.Context, version string) (entities.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, schema := range s.schemas {
		if schema.Version == version {
			return schema, nil
		}
	}
	return entities.Schema{}, domainerrors.ErrSchemaNotFound
}

func (s *Store) DeleteSchema(_ context.Context, schemaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schemas[schemaID]; !ok {
		return domainerrors.ErrSchemaNotFound
	}
	delete(s.schemas, schemaID)
	return nil
}

func (s *Store) ListSchemaVersions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := make([]string, 0, len(s.schemas))
	for _, schema := range s.schemas {
		versions = append(versions, schema.Version)
	}
	sort.Strings(versions)
	return versions, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
