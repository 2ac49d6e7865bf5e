package hierarchyservice

import (
	"log/slog"

	"quarry/contexts/organizations/hierarchy-service/adapters/memory"
	"quarry/contexts/organizations/hierarchy-service/application/commands"
	"quarry/contexts/organizations/hierarchy-service/application/queries"
	"quarry/contexts/organizations/hierarchy-service/ports"
)

// Module is the hierarchy-service composition root exposed to runtime wiring.
type Module struct {
	CreateOu         commands.CreateOuUseCase
	CreateAccount    commands.CreateAccountUseCase
	CreateScp        commands.CreateScpUseCase
	AttachScp        commands.AttachScpUseCase
	DetachScp        commands.DetachScpUseCase
	MoveAccount      commands.MoveAccountUseCase
	GetEffectiveScps queries.GetEffectiveScpsUseCase

	Store *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Ous         ports.OuRepository
	Accounts    ports.AccountRepository
	Scps        ports.ScpRepository
	UnitOfWork  ports.UnitOfWorkFactory
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// NewModule wires hierarchy use-cases over the supplied ports.
func NewModule(deps Dependencies) Module {
	return Module{
		CreateOu: commands.CreateOuUseCase{
			Ous:         deps.Ous,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		CreateAccount: commands.CreateAccountUseCase{
			UnitOfWork:  deps.UnitOfWork,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		CreateScp: commands.CreateScpUseCase{
			Scps:        deps.Scps,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		AttachScp: commands.AttachScpUseCase{
			Ous:      deps.Ous,
			Accounts: deps.Accounts,
			Scps:     deps.Scps,
			Logger:   deps.Logger,
		},
		DetachScp: commands.DetachScpUseCase{
			Ous:      deps.Ous,
			Accounts: deps.Accounts,
			Logger:   deps.Logger,
		},
		MoveAccount: commands.MoveAccountUseCase{
			UnitOfWork: deps.UnitOfWork,
			Logger:     deps.Logger,
		},
		GetEffectiveScps: queries.GetEffectiveScpsUseCase{
			Ous:      deps.Ous,
			Accounts: deps.Accounts,
			Scps:     deps.Scps,
			Logger:   deps.Logger,
		},
	}
}

// NewInMemoryModule builds a development/testing module with the in-memory
// store backing every port, including the unit of work.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ous:         store,
		Accounts:    store,
		Scps:        store,
		UnitOfWork:  store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
