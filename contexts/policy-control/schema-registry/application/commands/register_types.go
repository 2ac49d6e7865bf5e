package commands

import (
	"context"
	"log/slog"

	application "quarry/contexts/policy-control/schema-registry/application"
	"quarry/contexts/policy-control/schema-registry/domain/entities"
	"quarry/contexts/policy-control/schema-registry/domain/services"
)

// RegisterEntityTypeUseCase adds one entity type declaration to the shared
// accumulator. Duplicate registrations are no-ops.
type RegisterEntityTypeUseCase struct {
	Accumulator *services.Accumulator
	Logger      *slog.Logger
}

func (u RegisterEntityTypeUseCase) Execute(_ context.Context, declaration entities.EntityTypeDeclaration) error {
	logger := application.ResolveLogger(u.Logger)
	if err := u.Accumulator.RegisterEntity(declaration); err != nil {
		logger.Error("entity type registration rejected",
			"event", "schema_register_entity_rejected",
			"module", "policy-control/schema-registry",
			"layer", "application",
			"service", declaration.Service,
			"type_name", declaration.Name,
			"error", err.Error(),
		)
		return err
	}
	logger.Debug("entity type registered",
		"event", "schema_register_entity",
		"module", "policy-control/schema-registry",
		"layer", "application",
		"type", declaration.QualifiedName(),
		"principal", declaration.IsPrincipal,
	)
	return nil
}

// RegisterActionTypeUseCase adds one action type declaration with the same
// idempotency contract.
type RegisterActionTypeUseCase struct {
	Accumulator *services.Accumulator
	Logger      *slog.Logger
}

func (u RegisterActionTypeUseCase) Execute(_ context.Context, declaration entities.ActionTypeDeclaration) error {
	logger := application.ResolveLogger(u.Logger)
	if err := u.Accumulator.RegisterAction(declaration); err != nil {
		logger.Error("action type registration rejected",
			"event", "schema_register_action_rejected",
			"module", "policy-control/schema-registry",
			"layer", "application",
			"service", declaration.Service,
			"action_name", declaration.Name,
			"error", err.Error(),
		)
		return err
	}
	logger.Debug("action type registered",
		"event", "schema_register_action",
		"module", "policy-control/schema-registry",
		"layer", "application",
		"action", declaration.QualifiedName(),
	)
	return nil
}
