package queries

import (
	"context"
	"log/slog"

	application "quarry/contexts/policy-control/policy-service/application"
	"quarry/contexts/policy-control/policy-service/domain/entities"
	"quarry/contexts/policy-control/policy-service/domain/services"
	"quarry/contexts/policy-control/policy-service/ports"
)

// GetPolicyUseCase returns one policy with its current version content.
type GetPolicyUseCase struct {
	Reader ports.PolicyReader
	Logger *slog.Logger
}

func (u GetPolicyUseCase) Execute(ctx context.Context, policyID string) (entities.PolicyView, error) {
	if err := services.ValidatePolicyID(policyID); err != nil {
		return entities.PolicyView{}, err
	}

	policy, version, err := u.Reader.Get(ctx, policyID)
	if err != nil {
		application.ResolveLogger(u.Logger).Warn("get policy failed",
			"event", "policy_get_failed",
			"module", "policy-control/policy-service",
			"layer", "application",
			"policy_id", policyID,
			"error", err.Error(),
		)
		return entities.PolicyView{}, err
	}
	return entities.ViewOf(policy, version), nil
}
