// Package authbridge adapts the decision engine's evaluate use case to the
// artifact service's authorizer port.
package authbridge

import (
	"context"

	authzqueries "quarry/contexts/identity-access/authorization-service/application/queries"
	authzentities "quarry/contexts/identity-access/authorization-service/domain/entities"
	"quarry/internal/shared/hrn"
)

// Authorizer asks the decision engine. Evaluation and lookup errors surface
// to the caller as errors; only a successful evaluation yields a decision.
type Authorizer struct {
	Evaluate authzqueries.EvaluatePoliciesUseCase
}

func (a Authorizer) Authorize(ctx context.Context, principal hrn.Hrn, action string, resource hrn.Hrn) (bool, string, error) {
	decision, err := a.Evaluate.Execute(ctx, authzentities.EvaluationRequest{
		Principal: principal,
		Action:    action,
		Resource:  resource,
	})
	if err != nil {
		return false, "", err
	}
	return decision.Allowed, decision.Reason, nil
}
