package queries

import (
	"context"
	"log/slog"

	application "quarry/contexts/artifact-distribution/artifact-service/application"
	"quarry/contexts/artifact-distribution/artifact-service/domain/entities"
	domainerrors "quarry/contexts/artifact-distribution/artifact-service/domain/errors"
	"quarry/contexts/artifact-distribution/artifact-service/ports"
	"quarry/internal/shared/hrn"
)

// FetchArtifactQuery identifies one artifact version and the caller.
type FetchArtifactQuery struct {
	Principal  hrn.Hrn
	Repository string
	Name       string
	Version    string
}

// FetchArtifactUseCase authorizes the read against the decision engine
// before returning metadata.
type FetchArtifactUseCase struct {
	Authorizer ports.Authorizer
	Artifacts  ports.ArtifactRepository
	Logger     *slog.Logger
}

func (u FetchArtifactUseCase) Execute(ctx context.Context, query FetchArtifactQuery) (entities.Artifact, error) {
	logger := application.ResolveLogger(u.Logger)

	resource := hrn.New(hrn.DefaultPartition, "artifact", query.Principal.AccountID, "Artifact", query.Repository+"/"+query.Name)
	allowed, reason, err := u.Authorizer.Authorize(ctx, query.Principal, "ReadArtifact", resource)
	if err != nil {
		return entities.Artifact{}, err
	}
	if !allowed {
		logger.Warn("artifact fetch denied",
			"event", "artifact_fetch_denied",
			"module", "artifact-distribution/artifact-service",
			"layer", "application",
			"principal", query.Principal.String(),
			"repository", query.Repository,
			"name", query.Name,
			"reason", reason,
		)
		return entities.Artifact{}, domainerrors.ErrAccessDenied
	}

	return u.Artifacts.GetArtifact(ctx, query.Repository, query.Name, query.Version)
}

// ListArtifactsUseCase lists a repository's artifacts for an authorized
// caller.
type ListArtifactsUseCase struct {
	Authorizer ports.Authorizer
	Artifacts  ports.ArtifactRepository
	Logger     *slog.Logger
}

func (u ListArtifactsUseCase) Execute(ctx context.Context, principal hrn.Hrn, repository string) ([]entities.Artifact, error) {
	resource := hrn.New(hrn.DefaultPartition, "artifact", principal.AccountID, "Repository", repository)
	allowed, _, err := u.Authorizer.Authorize(ctx, principal, "ReadArtifact", resource)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domainerrors.ErrAccessDenied
	}
	return u.Artifacts.ListArtifacts(ctx, repository)
}
