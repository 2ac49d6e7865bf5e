package policyservice

import (
	"log/slog"

	"quarry/contexts/policy-control/policy-service/adapters/memory"
	"quarry/contexts/policy-control/policy-service/application/commands"
	"quarry/contexts/policy-control/policy-service/application/queries"
	"quarry/contexts/policy-control/policy-service/application/workers"
	"quarry/contexts/policy-control/policy-service/ports"
)

// Module is the policy-service composition root exposed to runtime wiring.
type Module struct {
	CreatePolicy commands.CreatePolicyUseCase
	UpdatePolicy commands.UpdatePolicyUseCase
	DeletePolicy commands.DeletePolicyUseCase
	GetPolicy    queries.GetPolicyUseCase
	ListPolicies queries.ListPoliciesUseCase
	AuditRelay   workers.AuditRelay

	Store *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Creator      ports.PolicyCreator
	Updater      ports.PolicyUpdater
	Deleter      ports.PolicyDeleter
	Reader       ports.PolicyReader
	Dependencies ports.DependencyChecker
	Auditor      ports.AuditRecorder
	Outbox       ports.AuditOutbox
	Publisher    ports.AuditPublisher
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	Logger       *slog.Logger
}

// NewModule wires policy-service use-cases over the supplied ports.
func NewModule(deps Dependencies) Module {
	return Module{
		CreatePolicy: commands.CreatePolicyUseCase{
			Creator:     deps.Creator,
			Auditor:     deps.Auditor,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		UpdatePolicy: commands.UpdatePolicyUseCase{
			Updater:     deps.Updater,
			Auditor:     deps.Auditor,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		DeletePolicy: commands.DeletePolicyUseCase{
			Reader:       deps.Reader,
			Deleter:      deps.Deleter,
			Dependencies: deps.Dependencies,
			Auditor:      deps.Auditor,
			Clock:        deps.Clock,
			IDGenerator:  deps.IDGenerator,
			Logger:       deps.Logger,
		},
		GetPolicy: queries.GetPolicyUseCase{
			Reader: deps.Reader,
			Logger: deps.Logger,
		},
		ListPolicies: queries.ListPoliciesUseCase{
			Reader: deps.Reader,
			Logger: deps.Logger,
		},
		AuditRelay: workers.AuditRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule builds a development/testing module with the in-memory
// storage adapter backing every port.
func NewInMemoryModule(publisher ports.AuditPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Creator:      store,
		Updater:      store,
		Deleter:      store,
		Reader:       store,
		Dependencies: store,
		Auditor:      store,
		Outbox:       store,
		Publisher:    publisher,
		Clock:        store,
		IDGenerator:  store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
