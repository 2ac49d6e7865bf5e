package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"quarry/contexts/policy-control/policy-service/application/commands"
	"quarry/contexts/policy-control/policy-service/domain/entities"
	policyerrors "quarry/contexts/policy-control/policy-service/domain/errors"
	"quarry/contexts/policy-control/policy-service/ports"
	policyhttp "quarry/contexts/policy-control/policy-service/transport/http"
)

func writePolicyError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, policyhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writePolicyDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, policyerrors.ErrInvalidPolicyID):
		writePolicyError(w, http.StatusBadRequest, "INVALID_POLICY_ID", err.Error())
	case errors.Is(err, policyerrors.ErrEmptyPolicyContent),
		errors.Is(err, policyerrors.ErrPolicyContentTooLong),
		errors.Is(err, policyerrors.ErrInvalidPolicyContent):
		writePolicyError(w, http.StatusUnprocessableEntity, "INVALID_CONTENT", err.Error())
	case errors.Is(err, policyerrors.ErrPolicyAlreadyExists):
		writePolicyError(w, http.StatusConflict, "POLICY_ALREADY_EXISTS", err.Error())
	case errors.Is(err, policyerrors.ErrPolicyNotFound):
		writePolicyError(w, http.StatusNotFound, "POLICY_NOT_FOUND", err.Error())
	case errors.Is(err, policyerrors.ErrDeletionNotAllowed):
		writePolicyError(w, http.StatusForbidden, "DELETION_NOT_ALLOWED", err.Error())
	case errors.Is(err, policyerrors.ErrHasDependencies):
		writePolicyError(w, http.StatusConflict, "POLICY_HAS_DEPENDENCIES", err.Error())
	case errors.Is(err, policyerrors.ErrInvalidPagination):
		writePolicyError(w, http.StatusBadRequest, "INVALID_PAGINATION", err.Error())
	default:
		writePolicyError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func policyResponseOf(view entities.PolicyView) policyhttp.PolicyResponse {
	return policyhttp.PolicyResponse{
		Hrn:            view.Hrn.String(),
		PolicyID:       view.ID,
		Name:           view.Name,
		Description:    view.Description,
		Status:         string(view.Status),
		Tags:           view.Tags,
		Content:        view.Content,
		CurrentVersion: view.CurrentVersion,
		CreatedBy:      view.CreatedBy,
		CreatedAt:      view.CreatedAt,
		UpdatedAt:      view.UpdatedAt,
	}
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req policyhttp.CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePolicyError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	view, err := s.policies.CreatePolicy.Execute(r.Context(), commands.CreatePolicyCommand{
		PolicyID:    req.PolicyID,
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		Tags:        req.Tags,
		CreatedBy:   resolveUserID(r),
	})
	if err != nil {
		writePolicyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, policyResponseOf(view))
}

func (s *Server) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req policyhttp.UpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePolicyError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	view, err := s.policies.UpdatePolicy.Execute(r.Context(), commands.UpdatePolicyCommand{
		PolicyID:    r.PathValue("policy_id"),
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		UpdatedBy:   resolveUserID(r),
	})
	if err != nil {
		writePolicyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, policyResponseOf(view))
}

func (s *Server) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	hard := strings.EqualFold(r.URL.Query().Get("hard"), "true")

	err := s.policies.DeletePolicy.Execute(r.Context(), commands.DeletePolicyCommand{
		PolicyID:  r.PathValue("policy_id"),
		Hard:      hard,
		DeletedBy: resolveUserID(r),
	})
	if err != nil {
		writePolicyDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	view, err := s.policies.GetPolicy.Execute(r.Context(), r.PathValue("policy_id"))
	if err != nil {
		writePolicyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, policyResponseOf(view))
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := ports.ListPoliciesFilter{
		Name:         query.Get("name"),
		NameContains: query.Get("name_contains"),
		Status:       entities.PolicyStatus(query.Get("status")),
		CreatedBy:    query.Get("created_by"),
		Tags:         query["tag"],
		Limit:        50,
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writePolicyError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be an integer")
			return
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			writePolicyError(w, http.StatusBadRequest, "INVALID_PAGINATION", "offset must be an integer")
			return
		}
		filter.Offset = offset
	}

	policies, err := s.policies.ListPolicies.Execute(r.Context(), filter)
	if err != nil {
		writePolicyDomainError(w, err)
		return
	}

	summaries := make([]policyhttp.PolicySummary, 0, len(policies))
	for _, policy := range policies {
		summaries = append(summaries, policyhttp.PolicySummary{
			PolicyID:       policy.ID,
			Name:           policy.Name,
			Status:         string(policy.Status),
			Tags:           policy.Tags,
			CurrentVersion: policy.CurrentVersion,
			UpdatedAt:      policy.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, policyhttp.ListPoliciesResponse{
		Policies: summaries,
		Count:    len(summaries),
	})
}
