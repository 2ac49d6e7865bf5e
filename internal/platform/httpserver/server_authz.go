package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	authzerrors "quarry/contexts/identity-access/authorization-service/domain/errors"
	authzhttp "quarry/contexts/identity-access/authorization-service/transport/http"
)

func writeAuthzError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authzhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAuthzDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrInvalidPrincipal),
		errors.Is(err, authzerrors.ErrInvalidAction),
		errors.Is(err, authzerrors.ErrInvalidResource),
		errors.Is(err, authzerrors.ErrInvalidContext):
		writeAuthzError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, authzerrors.ErrPolicyNotFound):
		writeAuthzError(w, http.StatusNotFound, "POLICY_NOT_FOUND", err.Error())
	case errors.Is(err, authzerrors.ErrAttachmentNotFound):
		writeAuthzError(w, http.StatusNotFound, "ATTACHMENT_NOT_FOUND", err.Error())
	case errors.Is(err, authzerrors.ErrEvaluationFailed):
		writeAuthzError(w, http.StatusUnprocessableEntity, "EVALUATION_FAILED", err.Error())
	default:
		writeAuthzError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func (s *Server) handleAuthzEvaluate(w http.ResponseWriter, r *http.Request) {
	var req authzhttp.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	resp, err := s.authorization.Handler.EvaluateHandler(r.Context(), req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzAttachPolicy(w http.ResponseWriter, r *http.Request) {
	var req authzhttp.AttachPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	if err := s.authorization.Handler.AttachPolicyHandler(r.Context(), req); err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAuthzDetachPolicy(w http.ResponseWriter, r *http.Request) {
	var req authzhttp.DetachPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	if err := s.authorization.Handler.DetachPolicyHandler(r.Context(), req); err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
