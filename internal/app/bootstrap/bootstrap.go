package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	artifactservice "quarry/contexts/artifact-distribution/artifact-service"
	"quarry/contexts/artifact-distribution/artifact-service/adapters/authbridge"
	artifactpg "quarry/contexts/artifact-distribution/artifact-service/adapters/postgres"
	authorization "quarry/contexts/identity-access/authorization-service"
	authzmemory "quarry/contexts/identity-access/authorization-service/adapters/memory"
	"quarry/contexts/identity-access/authorization-service/adapters/orgbridge"
	"quarry/contexts/identity-access/authorization-service/adapters/policybridge"
	authzpg "quarry/contexts/identity-access/authorization-service/adapters/postgres"
	hierarchyservice "quarry/contexts/organizations/hierarchy-service"
	orgpg "quarry/contexts/organizations/hierarchy-service/adapters/postgres"
	policyservice "quarry/contexts/policy-control/policy-service"
	policypg "quarry/contexts/policy-control/policy-service/adapters/postgres"
	schemaregistry "quarry/contexts/policy-control/schema-registry"
	schemapg "quarry/contexts/policy-control/schema-registry/adapters/postgres"
	schemacommands "quarry/contexts/policy-control/schema-registry/application/commands"
	schemaentities "quarry/contexts/policy-control/schema-registry/domain/entities"
	"quarry/internal/platform/config"
	"quarry/internal/platform/db"
	"quarry/internal/platform/httpserver"
	"quarry/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

func (a *APIApp) Run() error {
	return a.server.Start()
}

func (a *APIApp) Close() error {
	return a.postgres.Close()
}

type WorkerApp struct {
	postgres      *db.Postgres
	bus           *messaging.Kafka
	policies      policyservice.Module
	authorization authorization.Module
	cfg           config.Config
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	var (
		pg            *db.Postgres
		schemas       schemaregistry.Module
		policies      policyservice.Module
		organizations hierarchyservice.Module
		authzModule   authorization.Module
		artifacts     artifactservice.Module
	)
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		logger.Warn("POSTGRES_DSN empty, wiring in-memory adapters",
			"event", "bootstrap_memory_wiring",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		schemas, policies, organizations, authzModule, artifacts = buildMemoryModules(bus, cfg, logger)
	} else {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		schemas, policies, organizations, authzModule, artifacts = buildModules(pg, bus, cfg, logger)
	}

	registerDeclarations(schemas)
	if cfg.EnableSchemaAutoBuild {
		if _, err := schemas.BuildSchema.Execute(context.Background(), schemacommands.BuildSchemaCommand{
			Validate: true,
		}); err != nil {
			logger.Warn("initial schema build failed",
				"event", "schema_bootstrap_build_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}

	server := httpserver.New(
		schemas,
		policies,
		organizations,
		authzModule,
		artifacts,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	_, policies, _, authzModule, _ := buildModules(pg, bus, cfg, logger)
	return &WorkerApp{
		postgres:      pg,
		bus:           bus,
		policies:      policies,
		authorization: authzModule,
		cfg:           cfg,
		logger:        logger,
	}, nil
}

// Run drives the relay loop and event consumers until the context ends.
func (w *WorkerApp) Run(ctx context.Context) error {
	if w.cfg.EnablePolicyChangedConsumer {
		err := w.bus.Subscribe(ctx, messaging.TopicPolicyChanged, "authorization-cache",
			w.authorization.PolicyChanged.Handle)
		if err != nil {
			return err
		}
	}

	if !w.cfg.EnableAuditRelay {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(w.cfg.AuditRelayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.policies.AuditRelay.RunOnce(ctx); err != nil {
				w.logger.Error("audit relay pass failed",
					"event", "audit_relay_pass_failed",
					"module", "internal/app/bootstrap",
					"layer", "worker",
					"error", err.Error(),
				)
			}
		}
	}
}

func (w *WorkerApp) Close() error {
	return w.postgres.Close()
}

// buildModules constructs every context module over postgres adapters and
// wires the cross-context bridges.
func buildModules(
	pg *db.Postgres,
	bus *messaging.Kafka,
	cfg config.Config,
	logger *slog.Logger,
) (
	schemaregistry.Module,
	policyservice.Module,
	hierarchyservice.Module,
	authorization.Module,
	artifactservice.Module,
) {
	schemaRepo := schemapg.NewRepository(pg.DB, logger)
	schemas := schemaregistry.NewModule(schemaregistry.Dependencies{
		Storage:     schemaRepo,
		Clock:       schemapg.SystemClock{},
		IDGenerator: schemapg.UUIDGenerator{},
		Logger:      logger,
	})

	policyRepo := policypg.NewRepository(pg.DB, logger)
	policies := policyservice.NewModule(policyservice.Dependencies{
		Creator:      policyRepo,
		Updater:      policyRepo,
		Deleter:      policyRepo,
		Reader:       policyRepo,
		Dependencies: policyRepo,
		Auditor:      policyRepo,
		Outbox:       policyRepo,
		Publisher: messaging.PolicyAuditPublisher{
			Bus:           bus,
			SourceService: cfg.ServiceName,
		},
		Clock:       policypg.SystemClock{},
		IDGenerator: policypg.UUIDGenerator{},
		Logger:      logger,
	})

	orgRepo := orgpg.NewRepository(pg.DB, logger)
	organizations := hierarchyservice.NewModule(hierarchyservice.Dependencies{
		Ous:         orgRepo,
		Accounts:    orgRepo,
		Scps:        orgRepo,
		UnitOfWork:  orgRepo,
		IDGenerator: orgpg.UUIDGenerator{},
		Logger:      logger,
	})

	authzRepo := authzpg.NewRepository(pg.DB, logger)
	decisionCache := authzmemory.NewStore()
	contents := policybridge.ContentProvider{GetPolicy: policies.GetPolicy}
	authzModule := authorization.NewModule(authorization.Dependencies{
		Scps: orgbridge.Provider{
			EffectiveScps: organizations.GetEffectiveScps,
		},
		Policies: policybridge.Finder{
			Attachments: authzRepo,
			Contents:    contents,
		},
		Attachments:      authzRepo,
		Contents:         contents,
		Cache:            decisionCache,
		Clock:            authzpg.SystemClock{},
		DecisionCacheTTL: cfg.DecisionCacheTTL,
		Logger:           logger,
	})

	artifactRepo := artifactpg.NewRepository(pg.DB, logger)
	artifacts := artifactservice.NewModule(artifactservice.Dependencies{
		Authorizer: authbridge.Authorizer{
			Evaluate: authzModule.Evaluate,
		},
		Artifacts:   artifactRepo,
		Clock:       artifactpg.SystemClock{},
		IDGenerator: artifactpg.UUIDGenerator{},
		Logger:      logger,
	})

	return schemas, policies, organizations, authzModule, artifacts
}

// buildMemoryModules mirrors buildModules over the in-memory adapters, with
// the same cross-context bridges. Used for local development without a
// database.
func buildMemoryModules(
	bus *messaging.Kafka,
	cfg config.Config,
	logger *slog.Logger,
) (
	schemaregistry.Module,
	policyservice.Module,
	hierarchyservice.Module,
	authorization.Module,
	artifactservice.Module,
) {
	schemas := schemaregistry.NewInMemoryModule(logger)
	policies := policyservice.NewInMemoryModule(messaging.PolicyAuditPublisher{
		Bus:           bus,
		SourceService: cfg.ServiceName,
	}, logger)
	organizations := hierarchyservice.NewInMemoryModule(logger)

	authzStore := authzmemory.NewStore()
	contents := policybridge.ContentProvider{GetPolicy: policies.GetPolicy}
	authzModule := authorization.NewModule(authorization.Dependencies{
		Scps: orgbridge.Provider{
			EffectiveScps: organizations.GetEffectiveScps,
		},
		Policies: policybridge.Finder{
			Attachments: authzStore,
			Contents:    contents,
		},
		Attachments:      authzStore,
		Contents:         contents,
		Cache:            authzStore,
		Clock:            authzStore,
		DecisionCacheTTL: cfg.DecisionCacheTTL,
		Logger:           logger,
	})
	authzModule.Store = authzStore

	artifacts := artifactservice.NewInMemoryModule(authbridge.Authorizer{
		Evaluate: authzModule.Evaluate,
	}, logger)

	return schemas, policies, organizations, authzModule, artifacts
}

// registerDeclarations seeds the schema accumulator with the entity and
// action types each context contributes.
func registerDeclarations(schemas schemaregistry.Module) {
	ctx := context.Background()

	_ = schemas.RegisterEntityType.Execute(ctx, schemaentities.EntityTypeDeclaration{
		Service:     "iam",
		Name:        "User",
		IsPrincipal: true,
		Attributes: []schemaentities.Attribute{
			{Name: "account_id", Type: schemaentities.StringType()},
		},
	})
	_ = schemas.RegisterEntityType.Execute(ctx, schemaentities.EntityTypeDeclaration{
		Service: "iam",
		Name:    "Policy",
	})
	_ = schemas.RegisterEntityType.Execute(ctx, schemaentities.EntityTypeDeclaration{
		Service: "organizations",
		Name:    "OrganizationalUnit",
		MemberOf: []string{
			"Organizations::OrganizationalUnit",
		},
	})
	_ = schemas.RegisterEntityType.Execute(ctx, schemaentities.EntityTypeDeclaration{
		Service: "organizations",
		Name:    "Account",
		MemberOf: []string{
			"Organizations::OrganizationalUnit",
		},
	})
	_ = schemas.RegisterEntityType.Execute(ctx, schemaentities.EntityTypeDeclaration{
		Service: "artifact",
		Name:    "Repository",
	})
	_ = schemas.RegisterEntityType.Execute(ctx, schemaentities.EntityTypeDeclaration{
		Service: "artifact",
		Name:    "Artifact",
		Attributes: []schemaentities.Attribute{
			{Name: "format", Type: schemaentities.StringType()},
			{Name: "size_bytes", Type: schemaentities.LongType()},
		},
		MemberOf: []string{
			"Artifact::Repository",
		},
	})

	_ = schemas.RegisterActionType.Execute(ctx, schemaentities.ActionTypeDeclaration{
		Service:       "artifact",
		Name:          "PublishArtifact",
		PrincipalType: "Iam::User",
		ResourceType:  "Artifact::Artifact",
	})
	_ = schemas.RegisterActionType.Execute(ctx, schemaentities.ActionTypeDeclaration{
		Service:       "artifact",
		Name:          "ReadArtifact",
		PrincipalType: "Iam::User",
		ResourceType:  "Artifact::Artifact",
	})
	_ = schemas.RegisterActionType.Execute(ctx, schemaentities.ActionTypeDeclaration{
		Service:       "artifact",
		Name:          "ListArtifacts",
		PrincipalType: "Iam::User",
		ResourceType:  "Artifact::Repository",
	})
	_ = schemas.RegisterActionType.Execute(ctx, schemaentities.ActionTypeDeclaration{
		Service:       "iam",
		Name:          "AttachPolicy",
		PrincipalType: "Iam::User",
		ResourceType:  "Iam::Policy",
	})
}

func normalizeAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
