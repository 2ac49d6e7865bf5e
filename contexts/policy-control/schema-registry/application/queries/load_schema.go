package queries

import (
	"context"
	"log/slog"
	"strings"

	application "quarry/contexts/policy-control/schema-registry/application"
	"quarry/contexts/policy-control/schema-registry/domain/entities"
	"quarry/contexts/policy-control/schema-registry/ports"
)

// LoadSchemaQuery selects which schema artifact to load. An empty version
// means the latest build.
type LoadSchemaQuery struct {
	Version string
}

// LoadSchemaUseCase reads persisted schema artifacts.
type LoadSchemaUseCase struct {
	Storage ports.SchemaStorage
	Logger  *slog.Logger
}

func (u LoadSchemaUseCase) Execute(ctx context.Context, query LoadSchemaQuery) (entities.Schema, error) {
	logger := application.ResolveLogger(u.Logger)

	var schema entities.Schema
	var err error
	if strings.TrimSpace(query.Version) == "" {
		schema, err = u.Storage.GetLatestSchema(ctx)
	} else {
		schema, err = u.Storage.GetSchemaByVersion(ctx, query.Version)
	}
	if err != nil {
		logger.Warn("schema load failed",
			"event", "schema_load_failed",
			"module", "policy-control/schema-registry",
			"layer", "application",
			"version", query.Version,
			"error", err.Error(),
		)
		return entities.Schema{}, err
	}
	return schema, nil
}

// ListSchemaVersionsUseCase enumerates stored schema versions.
type ListSchemaVersionsUseCase struct {
	Storage ports.SchemaStorage
	Logger  *slog.Logger
}

func (u ListSchemaVersionsUseCase) Execute(ctx context.Context) ([]string, error) {
	return u.Storage.ListSchemaVersions(ctx)
}
