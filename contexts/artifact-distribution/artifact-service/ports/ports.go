package ports

import (
	"context"
	"time"

	"quarry/contexts/artifact-distribution/artifact-service/domain/entities"
	"quarry/internal/shared/hrn"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts artifact id generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Authorizer is the decision-engine boundary. Implementations fail closed.
type Authorizer interface {
	Authorize(ctx context.Context, principal hrn.Hrn, action string, resource hrn.Hrn) (bool, string, error)
}

// ArtifactRepository stores artifact metadata. Save rejects duplicate
// repository/name/version coordinates.
type ArtifactRepository interface {
	SaveArtifact(ctx context.Context, artifact entities.Artifact) error
	GetArtifact(ctx context.Context, repository, name, version string) (entities.Artifact, error)
	ListArtifacts(ctx context.Context, repository string) ([]entities.Artifact, error)
}
