package httpadapter

import (
	"context"
	"log/slog"

	application "quarry/contexts/identity-access/authorization-service/application"
	"quarry/contexts/identity-access/authorization-service/application/commands"
	"quarry/contexts/identity-access/authorization-service/application/queries"
	"quarry/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quarry/contexts/identity-access/authorization-service/domain/errors"
	httptransport "quarry/contexts/identity-access/authorization-service/transport/http"
	"quarry/internal/shared/hrn"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	Evaluate     queries.EvaluatePoliciesUseCase
	AttachPolicy commands.AttachPolicyUseCase
	DetachPolicy commands.DetachPolicyUseCase
	Logger       *slog.Logger
}

// EvaluateHandler answers one authorization question.
func (h Handler) EvaluateHandler(
	ctx context.Context,
	request httptransport.EvaluateRequest,
) (httptransport.EvaluateResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Debug("http evaluate received",
		"event", "authz_http_evaluate_received",
		"module", "identity-access/authorization-service",
		"layer", "transport",
		"principal", request.Principal,
		"action", request.Action,
		"resource", request.Resource,
	)

	principal, ok := hrn.Parse(request.Principal)
	if !ok {
		return httptransport.EvaluateResponse{}, domainerrors.ErrInvalidPrincipal
	}
	resource, ok := hrn.Parse(request.Resource)
	if !ok {
		return httptransport.EvaluateResponse{}, domainerrors.ErrInvalidResource
	}

	decision, err := h.Evaluate.Execute(ctx, entities.EvaluationRequest{
		Principal: principal,
		Action:    request.Action,
		Resource:  resource,
		Context:   request.Context,
	})
	if err != nil {
		logger.Error("http evaluate failed",
			"event", "authz_http_evaluate_failed",
			"module", "identity-access/authorization-service",
			"layer", "transport",
			"principal", request.Principal,
			"error", err.Error(),
		)
		return httptransport.EvaluateResponse{}, err
	}

	verdict := "Deny"
	if decision.Allowed {
		verdict = "Allow"
	}
	determining := decision.DeterminingPolicies
	if determining == nil {
		determining = []string{}
	}
	return httptransport.EvaluateResponse{
		Principal:           decision.Principal,
		Action:              decision.Action,
		Resource:            decision.Resource,
		Decision:            verdict,
		Reason:              decision.Reason,
		DeterminingPolicies: determining,
		EvaluatedAt:         decision.EvaluatedAt,
		CacheHit:            decision.CacheHit,
	}, nil
}

// AttachPolicyHandler binds a policy to a principal.
func (h Handler) AttachPolicyHandler(ctx context.Context, request httptransport.AttachPolicyRequest) error {
	principal, ok := hrn.Parse(request.Principal)
	if !ok {
		return domainerrors.ErrInvalidPrincipal
	}
	return h.AttachPolicy.Execute(ctx, commands.AttachPolicyCommand{
		Principal: principal,
		PolicyID:  request.PolicyID,
	})
}

// DetachPolicyHandler removes a policy binding from a principal.
func (h Handler) DetachPolicyHandler(ctx context.Context, request httptransport.DetachPolicyRequest) error {
	principal, ok := hrn.Parse(request.Principal)
	if !ok {
		return domainerrors.ErrInvalidPrincipal
	}
	return h.DetachPolicy.Execute(ctx, commands.DetachPolicyCommand{
		Principal: principal,
		PolicyID:  request.PolicyID,
	})
}
