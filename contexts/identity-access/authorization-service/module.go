package authorization

import (
	"log/slog"
	"time"

	httpadapter "quarry/contexts/identity-access/authorization-service/adapters/http"
	"quarry/contexts/identity-access/authorization-service/adapters/memory"
	"quarry/contexts/identity-access/authorization-service/application/commands"
	"quarry/contexts/identity-access/authorization-service/application/queries"
	"quarry/contexts/identity-access/authorization-service/application/workers"
	"quarry/contexts/identity-access/authorization-service/ports"
)

// Module is the authorization-service composition root exposed to runtime wiring.
type Module struct {
	Evaluate      queries.EvaluatePoliciesUseCase
	AttachPolicy  commands.AttachPolicyUseCase
	DetachPolicy  commands.DetachPolicyUseCase
	PolicyChanged workers.PolicyChangedConsumer
	Handler       httpadapter.Handler

	Store *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Scps             ports.EffectiveScpProvider
	Policies         ports.PolicyFinder
	Attachments      ports.PolicyAttachmentStore
	Contents         ports.PolicyContentProvider
	Cache            ports.DecisionCache
	Clock            ports.Clock
	DecisionCacheTTL time.Duration
	Logger           *slog.Logger
}

// NewModule wires the decision engine's use-cases and transport handler.
func NewModule(deps Dependencies) Module {
	evaluate := queries.EvaluatePoliciesUseCase{
		Scps:             deps.Scps,
		Policies:         deps.Policies,
		Cache:            deps.Cache,
		Clock:            deps.Clock,
		DecisionCacheTTL: deps.DecisionCacheTTL,
		Logger:           deps.Logger,
	}
	attach := commands.AttachPolicyUseCase{
		Attachments: deps.Attachments,
		Contents:    deps.Contents,
		Cache:       deps.Cache,
		Logger:      deps.Logger,
	}
	detach := commands.DetachPolicyUseCase{
		Attachments: deps.Attachments,
		Cache:       deps.Cache,
		Logger:      deps.Logger,
	}

	return Module{
		Evaluate:     evaluate,
		AttachPolicy: attach,
		DetachPolicy: detach,
		PolicyChanged: workers.PolicyChangedConsumer{
			Cache:  deps.Cache,
			Logger: deps.Logger,
		},
		Handler: httpadapter.Handler{
			Evaluate:     evaluate,
			AttachPolicy: attach,
			DetachPolicy: detach,
			Logger:       deps.Logger,
		},
	}
}

// NewInMemoryModule builds a development/testing module with the in-memory
// store backing attachments, contents, and the decision cache.
func NewInMemoryModule(scps ports.EffectiveScpProvider, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Scps:             scps,
		Policies:         store,
		Attachments:      store,
		Contents:         store,
		Cache:            store,
		Clock:            store,
		DecisionCacheTTL: 5 * time.Minute,
		Logger:           logger,
	})
	module.Store = store
	return module
}
