package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"quarry/contexts/policy-control/schema-registry/application/commands"
	"quarry/contexts/policy-control/schema-registry/application/queries"
	schemaerrors "quarry/contexts/policy-control/schema-registry/domain/errors"
	schemahttp "quarry/contexts/policy-control/schema-registry/transport/http"
)

func writeSchemaError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, schemahttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeSchemaDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schemaerrors.ErrEmptySchema):
		writeSchemaError(w, http.StatusConflict, "EMPTY_SCHEMA", err.Error())
	case errors.Is(err, schemaerrors.ErrInvalidSchema),
		errors.Is(err, schemaerrors.ErrInvalidEntity),
		errors.Is(err, schemaerrors.ErrInvalidAction):
		writeSchemaError(w, http.StatusUnprocessableEntity, "INVALID_SCHEMA", err.Error())
	case errors.Is(err, schemaerrors.ErrSchemaNotFound):
		writeSchemaError(w, http.StatusNotFound, "SCHEMA_NOT_FOUND", err.Error())
	default:
		writeSchemaError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func (s *Server) handleBuildSchema(w http.ResponseWriter, r *http.Request) {
	var req schemahttp.BuildSchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSchemaError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	result, err := s.schemas.BuildSchema.Execute(r.Context(), commands.BuildSchemaCommand{
		Version:  req.Version,
		Validate: req.Validate,
	})
	if err != nil {
		writeSchemaDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, schemahttp.BuildSchemaResponse{
		SchemaID:    result.SchemaID,
		Version:     result.Version,
		EntityCount: result.EntityCount,
		ActionCount: result.ActionCount,
	})
}

func (s *Server) handleLoadSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.schemas.LoadSchema.Execute(r.Context(), queries.LoadSchemaQuery{
		Version: r.URL.Query().Get("version"),
	})
	if err != nil {
		writeSchemaDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schemahttp.SchemaResponse{
		SchemaID:    schema.ID,
		Version:     schema.Version,
		EntityCount: schema.EntityCount,
		ActionCount: schema.ActionCount,
		Content:     schema.Content,
		BuiltAt:     schema.BuiltAt,
	})
}

func (s *Server) handleClearSchema(w http.ResponseWriter, r *http.Request) {
	if err := s.schemas.ClearSchema.Execute(r.Context()); err != nil {
		writeSchemaDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSchemaVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.schemas.ListVersions.Execute(r.Context())
	if err != nil {
		writeSchemaDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schemahttp.ListSchemaVersionsResponse{
		Versions: versions,
	})
}
