package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "quarry/contexts/artifact-distribution/artifact-service/application"
	"quarry/contexts/artifact-distribution/artifact-service/domain/entities"
	domainerrors "quarry/contexts/artifact-distribution/artifact-service/domain/errors"
	"quarry/contexts/artifact-distribution/artifact-service/ports"
	"quarry/internal/shared/hrn"
)

// PublishArtifactCommand contains transport-agnostic input for publishing
// one artifact version's metadata.
type PublishArtifactCommand struct {
	Principal  hrn.Hrn
	Repository string
	Name       string
	Version    string
	Format     string
	Checksum   string
	SizeBytes  int64
}

// PublishArtifactUseCase authorizes the publish against the decision engine
// before persisting metadata.
type PublishArtifactUseCase struct {
	Authorizer  ports.Authorizer
	Artifacts   ports.ArtifactRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u PublishArtifactUseCase) Execute(ctx context.Context, cmd PublishArtifactCommand) (entities.Artifact, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.Repository) == "" || strings.TrimSpace(cmd.Name) == "" || strings.TrimSpace(cmd.Version) == "" {
		return entities.Artifact{}, domainerrors.ErrInvalidCoordinates
	}

	resource := hrn.New(hrn.DefaultPartition, "artifact", cmd.Principal.AccountID, "Artifact", cmd.Repository+"/"+cmd.Name)
	allowed, reason, err := u.Authorizer.Authorize(ctx, cmd.Principal, "PublishArtifact", resource)
	if err != nil {
		return entities.Artifact{}, err
	}
	if !allowed {
		logger.Warn("artifact publish denied",
			"event", "artifact_publish_denied",
			"module", "artifact-distribution/artifact-service",
			"layer", "application",
			"principal", cmd.Principal.String(),
			"repository", cmd.Repository,
			"name", cmd.Name,
			"reason", reason,
		)
		return entities.Artifact{}, domainerrors.ErrAccessDenied
	}

	id := cmd.Repository + "/" + cmd.Name + "@" + cmd.Version
	if u.IDGenerator != nil {
		if generated, err := u.IDGenerator.NewID(ctx); err == nil {
			id = generated
		}
	}
	artifact := entities.Artifact{
		Hrn:         resource,
		ID:          id,
		Repository:  cmd.Repository,
		Name:        cmd.Name,
		Version:     cmd.Version,
		Format:      cmd.Format,
		Checksum:    cmd.Checksum,
		SizeBytes:   cmd.SizeBytes,
		PublishedBy: cmd.Principal.String(),
		PublishedAt: u.now(),
	}
	if err := u.Artifacts.SaveArtifact(ctx, artifact); err != nil {
		return entities.Artifact{}, err
	}

	logger.Info("artifact published",
		"event", "artifact_published",
		"module", "artifact-distribution/artifact-service",
		"layer", "application",
		"repository", cmd.Repository,
		"name", cmd.Name,
		"version", cmd.Version,
		"published_by", cmd.Principal.String(),
	)
	return artifact, nil
}

func (u PublishArtifactUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
