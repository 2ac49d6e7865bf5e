package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quarry/contexts/artifact-distribution/artifact-service/domain/entities"
	domainerrors "quarry/contexts/artifact-distribution/artifact-service/domain/errors"

	"github.com/google/uuid"
)

// Store is the in-memory artifact metadata adapter.
type Store struct {
	mu        sync.RWMutex
	artifacts map[string]entities.Artifact
}

func NewStore() *Store {
	return &Store{
		artifacts: make(map[string]entities.Artifact),
	}
}

func key(repository, name, version string) string {
	return repository + "/" + name + "@" + version
}

func (s *Store) SaveArtifact(_ context.Context, artifact entities.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := key(artifact.Repository, artifact.Name, artifact.Version)
	if _, exists := s.artifacts[id]; exists {
		return domainerrors.ErrArtifactAlreadyExists
	}
	s.artifacts[id] = artifact
	return nil
}

func (s *Store) GetArtifact(_ context.Context, repository, name, version string) (entities.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, ok := s.artifacts[key(repository, name, version)]
	if !ok {
		return entities.Artifact{}, domainerrors.ErrArtifactNotFound
	}
	return artifact, nil
}

func (s *Store) ListArtifacts(_ context.Context, repository string) ([]entities.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Artifact, 0)
	for _, artifact := range s.artifacts {
		if artifact.Repository == repository {
			items = append(items, artifact)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Version < items[j].Version
	})
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
