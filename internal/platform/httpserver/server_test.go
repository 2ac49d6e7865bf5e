package httpserver

import (
	"context"
	"io"
	"log/slog"

	artifactservice "quarry/contexts/artifact-distribution/artifact-service"
	"quarry/contexts/artifact-distribution/artifact-service/adapters/authbridge"
	authorization "quarry/contexts/identity-access/authorization-service"
	"quarry/contexts/identity-access/authorization-service/adapters/orgbridge"
	hierarchyservice "quarry/contexts/organizations/hierarchy-service"
	policyservice "quarry/contexts/policy-control/policy-service"
	policyports "quarry/contexts/policy-control/policy-service/ports"
	schemaregistry "quarry/contexts/policy-control/schema-registry"
)

type nopAuditPublisher struct{}

func (nopAuditPublisher) PublishPolicyChanged(context.Context, policyports.AuditMessage) error {
	return nil
}

// newTestServer wires every module on in-memory adapters, with the same
// cross-context bridges the composition root uses.
func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	schemas := schemaregistry.NewInMemoryModule(logger)
	policies := policyservice.NewInMemoryModule(nopAuditPublisher{}, logger)
	organizations := hierarchyservice.NewInMemoryModule(logger)
	authz := authorization.NewInMemoryModule(orgbridge.Provider{
		EffectiveScps: organizations.GetEffectiveScps,
	}, logger)
	artifacts := artifactservice.NewInMemoryModule(authbridge.Authorizer{
		Evaluate: authz.Evaluate,
	}, logger)

	return New(schemas, policies, organizations, authz, artifacts, logger, ":0")
}
