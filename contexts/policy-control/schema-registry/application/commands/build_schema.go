package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	application "quarry/contexts/policy-control/schema-registry/application"
	"quarry/contexts/policy-control/schema-registry/domain/entities"
	"quarry/contexts/policy-control/schema-registry/domain/services"
	"quarry/contexts/policy-control/schema-registry/ports"
)

// BuildSchemaCommand configures one schema build.
type BuildSchemaCommand struct {
	Version  string // optional; defaults to a timestamp tag
	Validate bool
}

// BuildSchemaResult reports what the build produced.
type BuildSchemaResult struct {
	EntityCount int
	ActionCount int
	Version     string
	SchemaID    string
}

// BuildSchemaUseCase drains the accumulator into one immutable schema
// artifact and persists it. The accumulator lock is held only across the
// drain swap; rendering, validation, and the storage round-trip run on the
// drained snapshot.
type BuildSchemaUseCase struct {
	Accumulator *services.Accumulator
	Storage     ports.SchemaStorage
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u BuildSchemaUseCase) Execute(ctx context.Context, cmd BuildSchemaCommand) (BuildSchemaResult, error) {
	logger := application.ResolveLogger(u.Logger)

	snapshot, err := u.Accumulator.Drain()
	if err != nil {
		logger.Warn("schema build rejected",
			"event", "schema_build_rejected",
			"module", "policy-control/schema-registry",
			"layer", "application",
			"error", err.Error(),
		)
		return BuildSchemaResult{}, err
	}

	entityCount := len(snapshot.Entities)
	actionCount := len(snapshot.Actions)
	logger.Info("schema build started",
		"event", "schema_build_started",
		"module", "policy-control/schema-registry",
		"layer", "application",
		"entity_count", entityCount,
		"action_count", actionCount,
		"validate", cmd.Validate,
	)

	if cmd.Validate {
		if err := snapshot.Validate(); err != nil {
			return BuildSchemaResult{}, err
		}
	}

	now := u.now()
	version := cmd.Version
	if version == "" {
		version = "v" + strconv.FormatInt(now.Unix(), 10)
	}

	id, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return BuildSchemaResult{}, fmt.Errorf("generate schema id: %w", err)
	}

	schemaID, err := u.Storage.SaveSchema(ctx, entities.Schema{
		ID:          id,
		Version:     version,
		EntityCount: entityCount,
		ActionCount: actionCount,
		Content:     snapshot.Render(),
		BuiltAt:     now,
	})
	if err != nil {
		logger.Error("schema persistence failed",
			"event", "schema_build_persist_failed",
			"module", "policy-control/schema-registry",
			"layer", "application",
			"version", version,
			"error", err.Error(),
		)
		return BuildSchemaResult{}, err
	}

	logger.Info("schema build completed",
		"event", "schema_build_completed",
		"module", "policy-control/schema-registry",
		"layer", "application",
		"schema_id", schemaID,
		"version", version,
	)
	return BuildSchemaResult{
		EntityCount: entityCount,
		ActionCount: actionCount,
		Version:     version,
		SchemaID:    schemaID,
	}, nil
}

func (u BuildSchemaUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// ClearSchemaUseCase discards the accumulator without building. Test and
// reset flows only.
type ClearSchemaUseCase struct {
	Accumulator *services.Accumulator
	Logger      *slog.Logger
}

func (u ClearSchemaUseCase) Execute(_ context.Context) error {
	u.Accumulator.Clear()
	application.ResolveLogger(u.Logger).Info("schema accumulator cleared",
		"event", "schema_accumulator_cleared",
		"module", "policy-control/schema-registry",
		"layer", "application",
	)
	return nil
}
