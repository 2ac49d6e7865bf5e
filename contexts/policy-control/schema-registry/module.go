package schemaregistry

import (
	"log/slog"

	"quarry/contexts/policy-control/schema-registry/adapters/memory"
	"quarry/contexts/policy-control/schema-registry/application/commands"
	"quarry/contexts/policy-control/schema-registry/application/queries"
	"quarry/contexts/policy-control/schema-registry/domain/services"
	"quarry/contexts/policy-control/schema-registry/ports"
)

// Module is the schema-registry composition root exposed to runtime wiring.
type Module struct {
	RegisterEntityType commands.RegisterEntityTypeUseCase
	RegisterActionType commands.RegisterActionTypeUseCase
	BuildSchema        commands.BuildSchemaUseCase
	ClearSchema        commands.ClearSchemaUseCase
	LoadSchema         queries.LoadSchemaUseCase
	ListVersions       queries.ListSchemaVersionsUseCase

	Accumulator *services.Accumulator
	Store       *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Storage     ports.SchemaStorage
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// NewModule wires schema-registry use-cases around one shared accumulator.
func NewModule(deps Dependencies) Module {
	accumulator := services.NewAccumulator()
	return Module{
		RegisterEntityType: commands.RegisterEntityTypeUseCase{
			Accumulator: accumulator,
			Logger:      deps.Logger,
		},
		RegisterActionType: commands.RegisterActionTypeUseCase{
			Accumulator: accumulator,
			Logger:      deps.Logger,
		},
		BuildSchema: commands.BuildSchemaUseCase{
			Accumulator: accumulator,
			Storage:     deps.Storage,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		ClearSchema: commands.ClearSchemaUseCase{
			Accumulator: accumulator,
			Logger:      deps.Logger,
		},
		LoadSchema: queries.LoadSchemaUseCase{
			Storage: deps.Storage,
			Logger:  deps.Logger,
		},
		ListVersions: queries.ListSchemaVersionsUseCase{
			Storage: deps.Storage,
			Logger:  deps.Logger,
		},
		Accumulator: accumulator,
	}
}

// NewInMemoryModule builds a development/testing module with the in-memory
// storage adapter.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Storage:     store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
