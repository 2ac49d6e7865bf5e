package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"quarry/contexts/organizations/hierarchy-service/application/commands"
	orgerrors "quarry/contexts/organizations/hierarchy-service/domain/errors"
	orghttp "quarry/contexts/organizations/hierarchy-service/transport/http"
	"quarry/internal/shared/hrn"
)

func writeOrgError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, orghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeOrgDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orgerrors.ErrInvalidName):
		writeOrgError(w, http.StatusBadRequest, "INVALID_NAME", err.Error())
	case errors.Is(err, orgerrors.ErrInvalidDocument):
		writeOrgError(w, http.StatusUnprocessableEntity, "INVALID_DOCUMENT", err.Error())
	case errors.Is(err, orgerrors.ErrOuAlreadyExists),
		errors.Is(err, orgerrors.ErrAccountAlreadyExists),
		errors.Is(err, orgerrors.ErrScpAlreadyExists):
		writeOrgError(w, http.StatusConflict, "ALREADY_EXISTS", err.Error())
	case errors.Is(err, orgerrors.ErrSourceOuNotFound):
		writeOrgError(w, http.StatusNotFound, "SOURCE_OU_NOT_FOUND", err.Error())
	case errors.Is(err, orgerrors.ErrTargetOuNotFound):
		writeOrgError(w, http.StatusNotFound, "TARGET_OU_NOT_FOUND", err.Error())
	case errors.Is(err, orgerrors.ErrOuNotFound),
		errors.Is(err, orgerrors.ErrAccountNotFound),
		errors.Is(err, orgerrors.ErrScpNotFound),
		errors.Is(err, orgerrors.ErrNodeNotFound):
		writeOrgError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, orgerrors.ErrAccountNotInSource):
		writeOrgError(w, http.StatusConflict, "ACCOUNT_NOT_IN_SOURCE", err.Error())
	default:
		writeOrgError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// parseOptionalHrn accepts an empty string as the zero Hrn.
func parseOptionalHrn(raw string) (hrn.Hrn, bool) {
	if raw == "" {
		return hrn.Hrn{}, true
	}
	return hrn.Parse(raw)
}

func (s *Server) handleCreateOu(w http.ResponseWriter, r *http.Request) {
	var req orghttp.CreateOuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOrgError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	parent, ok := parseOptionalHrn(req.ParentHrn)
	if !ok {
		writeOrgError(w, http.StatusBadRequest, "INVALID_HRN", "parent_hrn is not a valid hrn")
		return
	}

	ou, err := s.organizations.CreateOu.Execute(r.Context(), commands.CreateOuCommand{
		OuID:      req.OuID,
		Name:      req.Name,
		ParentHrn: parent,
	})
	if err != nil {
		writeOrgDomainError(w, err)
		return
	}

	resp := orghttp.OuResponse{Hrn: ou.Hrn.String(), Name: ou.Name}
	if !ou.ParentHrn.IsZero() {
		resp.ParentHrn = ou.ParentHrn.String()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req orghttp.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOrgError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	parent, ok := hrn.Parse(req.ParentHrn)
	if !ok {
		writeOrgError(w, http.StatusBadRequest, "INVALID_HRN", "parent_hrn is not a valid hrn")
		return
	}

	account, err := s.organizations.CreateAccount.Execute(r.Context(), commands.CreateAccountCommand{
		AccountID: req.AccountID,
		Name:      req.Name,
		ParentHrn: parent,
	})
	if err != nil {
		writeOrgDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orghttp.AccountResponse{
		Hrn:       account.Hrn.String(),
		Name:      account.Name,
		ParentHrn: account.ParentHrn.String(),
	})
}

func (s *Server) handleCreateScp(w http.ResponseWriter, r *http.Request) {
	var req orghttp.CreateScpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOrgError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	scp, err := s.organizations.CreateScp.Execute(r.Context(), commands.CreateScpCommand{
		ScpID:    req.ScpID,
		Name:     req.Name,
		Document: req.Document,
	})
	if err != nil {
		writeOrgDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orghttp.ScpResponse{
		Hrn:  scp.Hrn.String(),
		Name: scp.Name,
	})
}

func (s *Server) handleAttachScp(w http.ResponseWriter, r *http.Request) {
	var req orghttp.AttachScpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOrgError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	scpHrn, okScp := hrn.Parse(req.ScpHrn)
	targetHrn, okTarget := hrn.Parse(req.TargetHrn)
	if !okScp || !okTarget {
		writeOrgError(w, http.StatusBadRequest, "INVALID_HRN", "scp_hrn and target_hrn must be valid hrns")
		return
	}

	err := s.organizations.AttachScp.Execute(r.Context(), commands.AttachScpCommand{
		ScpHrn:    scpHrn,
		TargetHrn: targetHrn,
	})
	if err != nil {
		writeOrgDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDetachScp(w http.ResponseWriter, r *http.Request) {
	var req orghttp.DetachScpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOrgError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	scpHrn, okScp := hrn.Parse(req.ScpHrn)
	targetHrn, okTarget := hrn.Parse(req.TargetHrn)
	if !okScp || !okTarget {
		writeOrgError(w, http.StatusBadRequest, "INVALID_HRN", "scp_hrn and target_hrn must be valid hrns")
		return
	}

	err := s.organizations.DetachScp.Execute(r.Context(), commands.DetachScpCommand{
		ScpHrn:    scpHrn,
		TargetHrn: targetHrn,
	})
	if err != nil {
		writeOrgDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveAccount(w http.ResponseWriter, r *http.Request) {
	var req orghttp.MoveAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOrgError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	accountHrn, okAccount := hrn.Parse(req.AccountHrn)
	sourceHrn, okSource := hrn.Parse(req.SourceOuHrn)
	targetHrn, okTarget := hrn.Parse(req.TargetOuHrn)
	if !okAccount || !okSource || !okTarget {
		writeOrgError(w, http.StatusBadRequest, "INVALID_HRN", "account_hrn, source_ou_hrn and target_ou_hrn must be valid hrns")
		return
	}

	err := s.organizations.MoveAccount.Execute(r.Context(), commands.MoveAccountCommand{
		AccountHrn:  accountHrn,
		SourceOuHrn: sourceHrn,
		TargetOuHrn: targetHrn,
	})
	if err != nil {
		writeOrgDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetEffectiveScps(w http.ResponseWriter, r *http.Request) {
	target, ok := hrn.Parse(r.URL.Query().Get("target"))
	if !ok {
		writeOrgError(w, http.StatusBadRequest, "INVALID_HRN", "target query parameter must be a valid hrn")
		return
	}

	effective, err := s.organizations.GetEffectiveScps.Execute(r.Context(), target)
	if err != nil {
		writeOrgDomainError(w, err)
		return
	}

	scps := make([]orghttp.ScpResponse, 0, len(effective.Scps))
	for _, scp := range effective.Scps {
		scps = append(scps, orghttp.ScpResponse{
			Hrn:      scp.Hrn.String(),
			Name:     scp.Name,
			Document: scp.Document,
		})
	}
	writeJSON(w, http.StatusOK, orghttp.EffectiveScpsResponse{
		TargetHrn: effective.TargetHrn.String(),
		Scps:      scps,
	})
}
