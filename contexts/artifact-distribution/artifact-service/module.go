package artifactservice

import (
	"log/slog"

	"quarry/contexts/artifact-distribution/artifact-service/adapters/memory"
	"quarry/contexts/artifact-distribution/artifact-service/application/commands"
	"quarry/contexts/artifact-distribution/artifact-service/application/queries"
	"quarry/contexts/artifact-distribution/artifact-service/ports"
)

// Module is the artifact-service composition root exposed to runtime wiring.
type Module struct {
	PublishArtifact commands.PublishArtifactUseCase
	FetchArtifact   queries.FetchArtifactUseCase
	ListArtifacts   queries.ListArtifactsUseCase

	Store *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Authorizer  ports.Authorizer
	Artifacts   ports.ArtifactRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// NewModule wires artifact use-cases over the supplied ports.
func NewModule(deps Dependencies) Module {
	return Module{
		PublishArtifact: commands.PublishArtifactUseCase{
			Authorizer:  deps.Authorizer,
			Artifacts:   deps.Artifacts,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		FetchArtifact: queries.FetchArtifactUseCase{
			Authorizer: deps.Authorizer,
			Artifacts:  deps.Artifacts,
			Logger:     deps.Logger,
		},
		ListArtifacts: queries.ListArtifactsUseCase{
			Authorizer: deps.Authorizer,
			Artifacts:  deps.Artifacts,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule builds a development/testing module with the in-memory
// metadata store.
func NewInMemoryModule(authorizer ports.Authorizer, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Authorizer:  authorizer,
		Artifacts:   store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
