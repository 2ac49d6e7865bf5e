package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"quarry/contexts/artifact-distribution/artifact-service/application/commands"
	"quarry/contexts/artifact-distribution/artifact-service/application/queries"
	"quarry/contexts/artifact-distribution/artifact-service/domain/entities"
	artifacterrors "quarry/contexts/artifact-distribution/artifact-service/domain/errors"
	artifacthttp "quarry/contexts/artifact-distribution/artifact-service/transport/http"
	"quarry/internal/shared/hrn"
)

func writeArtifactError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, artifacthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeArtifactDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, artifacterrors.ErrInvalidCoordinates):
		writeArtifactError(w, http.StatusBadRequest, "INVALID_COORDINATES", err.Error())
	case errors.Is(err, artifacterrors.ErrAccessDenied):
		writeArtifactError(w, http.StatusForbidden, "ACCESS_DENIED", err.Error())
	case errors.Is(err, artifacterrors.ErrArtifactNotFound):
		writeArtifactError(w, http.StatusNotFound, "ARTIFACT_NOT_FOUND", err.Error())
	case errors.Is(err, artifacterrors.ErrArtifactAlreadyExists):
		writeArtifactError(w, http.StatusConflict, "ARTIFACT_ALREADY_EXISTS", err.Error())
	default:
		writeArtifactError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// requireArtifactPrincipal resolves the caller identity evaluated by the
// decision engine.
func requireArtifactPrincipal(w http.ResponseWriter, r *http.Request) (hrn.Hrn, bool) {
	raw := strings.TrimSpace(r.Header.Get("X-Principal"))
	if raw == "" {
		writeArtifactError(w, http.StatusUnauthorized, "PRINCIPAL_REQUIRED", "X-Principal header is required")
		return hrn.Hrn{}, false
	}
	principal, ok := hrn.Parse(raw)
	if !ok {
		writeArtifactError(w, http.StatusUnauthorized, "INVALID_PRINCIPAL", "X-Principal header must be a valid hrn")
		return hrn.Hrn{}, false
	}
	return principal, true
}

func artifactResponseOf(artifact entities.Artifact) artifacthttp.ArtifactResponse {
	return artifacthttp.ArtifactResponse{
		Hrn:         artifact.Hrn.String(),
		ArtifactID:  artifact.ID,
		Repository:  artifact.Repository,
		Name:        artifact.Name,
		Version:     artifact.Version,
		Format:      artifact.Format,
		Checksum:    artifact.Checksum,
		SizeBytes:   artifact.SizeBytes,
		PublishedBy: artifact.PublishedBy,
		PublishedAt: artifact.PublishedAt,
	}
}

func (s *Server) handlePublishArtifact(w http.ResponseWriter, r *http.Request) {
	principal, ok := requireArtifactPrincipal(w, r)
	if !ok {
		return
	}

	var req artifacthttp.PublishArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeArtifactError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	artifact, err := s.artifacts.PublishArtifact.Execute(r.Context(), commands.PublishArtifactCommand{
		Principal:  principal,
		Repository: r.PathValue("repository"),
		Name:       req.Name,
		Version:    req.Version,
		Format:     req.Format,
		Checksum:   req.Checksum,
		SizeBytes:  req.SizeBytes,
	})
	if err != nil {
		writeArtifactDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, artifactResponseOf(artifact))
}

func (s *Server) handleFetchArtifact(w http.ResponseWriter, r *http.Request) {
	principal, ok := requireArtifactPrincipal(w, r)
	if !ok {
		return
	}

	artifact, err := s.artifacts.FetchArtifact.Execute(r.Context(), queries.FetchArtifactQuery{
		Principal:  principal,
		Repository: r.PathValue("repository"),
		Name:       r.PathValue("name"),
		Version:    r.PathValue("version"),
	})
	if err != nil {
		writeArtifactDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifactResponseOf(artifact))
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	principal, ok := requireArtifactPrincipal(w, r)
	if !ok {
		return
	}

	repository := r.PathValue("repository")
	artifacts, err := s.artifacts.ListArtifacts.Execute(r.Context(), principal, repository)
	if err != nil {
		writeArtifactDomainError(w, err)
		return
	}

	items := make([]artifacthttp.ArtifactResponse, 0, len(artifacts))
	for _, artifact := range artifacts {
		items = append(items, artifactResponseOf(artifact))
	}
	writeJSON(w, http.StatusOK, artifacthttp.ListArtifactsResponse{
		Repository: repository,
		Artifacts:  items,
	})
}
