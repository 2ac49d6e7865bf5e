package queries

import (
	"context"
	"log/slog"

	application "quarry/contexts/policy-control/policy-service/application"
	"quarry/contexts/policy-control/policy-service/domain/entities"
	domainerrors "quarry/contexts/policy-control/policy-service/domain/errors"
	"quarry/contexts/policy-control/policy-service/ports"
)

// MaxListLimit bounds one page of list results.
const MaxListLimit = 100

// ListPoliciesUseCase filters and paginates stored policies. Pagination is
// validated before any storage round-trip.
type ListPoliciesUseCase struct {
	Reader ports.PolicyReader
	Logger *slog.Logger
}

func (u ListPoliciesUseCase) Execute(ctx context.Context, filter ports.ListPoliciesFilter) ([]entities.Policy, error) {
	if filter.Limit <= 0 || filter.Limit > MaxListLimit || filter.Offset < 0 {
		return nil, domainerrors.ErrInvalidPagination
	}

	items, err := u.Reader.List(ctx, filter)
	if err != nil {
		application.ResolveLogger(u.Logger).Error("list policies failed",
			"event", "policy_list_failed",
			"module", "policy-control/policy-service",
			"layer", "application",
			"error", err.Error(),
		)
		return nil, err
	}
	return items, nil
}
