// Package orgbridge adapts the organizations context's effective-policy
// resolver to the decision engine's provider port.
package orgbridge

import (
	"context"
	"errors"

	"quarry/contexts/identity-access/authorization-service/domain/services"
	hierarchyqueries "quarry/contexts/organizations/hierarchy-service/application/queries"
	hierarchyerrors "quarry/contexts/organizations/hierarchy-service/domain/errors"
	"quarry/internal/shared/hrn"
)

// Provider resolves control policies through the hierarchy service. Nodes
// outside the organization tree resolve to an empty set; absence of
// governance is not a failure.
type Provider struct {
	EffectiveScps hierarchyqueries.GetEffectiveScpsUseCase
}

func (p Provider) EffectiveScpsFor(ctx context.Context, target hrn.Hrn) ([]services.Document, error) {
	resolved, err := p.EffectiveScps.Execute(ctx, target)
	if err != nil {
		if errors.Is(err, hierarchyerrors.ErrAccountNotFound) || errors.Is(err, hierarchyerrors.ErrOuNotFound) {
			return nil, nil
		}
		return nil, err
	}

	documents := make([]services.Document, 0, len(resolved.Scps))
	for _, scp := range resolved.Scps {
		documents = append(documents, services.Document{
			ID:      scp.Hrn.ResourceID,
			Content: scp.Document,
		})
	}
	return documents, nil
}
