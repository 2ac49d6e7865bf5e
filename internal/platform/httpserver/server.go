package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	artifactservice "quarry/contexts/artifact-distribution/artifact-service"
	authorization "quarry/contexts/identity-access/authorization-service"
	hierarchyservice "quarry/contexts/organizations/hierarchy-service"
	policyservice "quarry/contexts/policy-control/policy-service"
	schemaregistry "quarry/contexts/policy-control/schema-registry"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "quarry/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	schemas       schemaregistry.Module
	policies      policyservice.Module
	organizations hierarchyservice.Module
	authorization authorization.Module
	artifacts     artifactservice.Module
}

func New(
	schemas schemaregistry.Module,
	policies policyservice.Module,
	organizations hierarchyservice.Module,
	authorizationModule authorization.Module,
	artifacts artifactservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		schemas:       schemas,
		policies:      policies,
		organizations: organizations,
		authorization: authorizationModule,
		artifacts:     artifacts,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/schemas/v1/build", s.handleBuildSchema)
	s.mux.HandleFunc("GET /api/schemas/v1/schema", s.handleLoadSchema)
	s.mux.HandleFunc("GET /api/schemas/v1/versions", s.handleListSchemaVersions)
	s.mux.HandleFunc("DELETE /api/schemas/v1/accumulator", s.handleClearSchema)

	s.mux.HandleFunc("POST /api/policies/v1/policies", s.handleCreatePolicy)
	s.mux.HandleFunc("GET /api/policies/v1/policies", s.handleListPolicies)
	s.mux.HandleFunc("GET /api/policies/v1/policies/{policy_id}", s.handleGetPolicy)
	s.mux.HandleFunc("PUT /api/policies/v1/policies/{policy_id}", s.handleUpdatePolicy)
	s.mux.HandleFunc("DELETE /api/policies/v1/policies/{policy_id}", s.handleDeletePolicy)

	s.mux.HandleFunc("POST /api/orgs/v1/ous", s.handleCreateOu)
	s.mux.HandleFunc("POST /api/orgs/v1/accounts", s.handleCreateAccount)
	s.mux.HandleFunc("POST /api/orgs/v1/accounts/move", s.handleMoveAccount)
	s.mux.HandleFunc("POST /api/orgs/v1/scps", s.handleCreateScp)
	s.mux.HandleFunc("POST /api/orgs/v1/scps/attach", s.handleAttachScp)
	s.mux.HandleFunc("POST /api/orgs/v1/scps/detach", s.handleDetachScp)
	s.mux.HandleFunc("GET /api/orgs/v1/effective-scps", s.handleGetEffectiveScps)

	s.mux.HandleFunc("POST /api/authz/v1/evaluate", s.handleAuthzEvaluate)
	s.mux.HandleFunc("POST /api/authz/v1/policies/attach", s.handleAuthzAttachPolicy)
	s.mux.HandleFunc("POST /api/authz/v1/policies/detach", s.handleAuthzDetachPolicy)

	s.mux.HandleFunc("POST /api/artifacts/v1/repositories/{repository}/artifacts", s.handlePublishArtifact)
	s.mux.HandleFunc("GET /api/artifacts/v1/repositories/{repository}/artifacts", s.handleListArtifacts)
	s.mux.HandleFunc("GET /api/artifacts/v1/repositories/{repository}/artifacts/{name}/versions/{version}", s.handleFetchArtifact)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// resolveUserID identifies the acting user for audit attribution.
func resolveUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
