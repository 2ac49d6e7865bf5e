// Package policybridge adapts the policy store's read side to the decision
// engine's content and finder ports.
package policybridge

import (
	"context"
	"errors"

	domainerrors "quarry/contexts/identity-access/authorization-service/domain/errors"
	"quarry/contexts/identity-access/authorization-service/domain/services"
	"quarry/contexts/identity-access/authorization-service/ports"
	policyqueries "quarry/contexts/policy-control/policy-service/application/queries"
	policyentities "quarry/contexts/policy-control/policy-service/domain/entities"
	policyerrors "quarry/contexts/policy-control/policy-service/domain/errors"
	"quarry/internal/shared/hrn"
)

// ContentProvider resolves policy ids through the policy store. Deleted
// policies resolve as missing; their content must not reach evaluation.
type ContentProvider struct {
	GetPolicy policyqueries.GetPolicyUseCase
}

func (p ContentProvider) GetPolicyContent(ctx context.Context, policyID string) (string, error) {
	view, err := p.GetPolicy.Execute(ctx, policyID)
	if err != nil {
		if errors.Is(err, policyerrors.ErrPolicyNotFound) {
			return "", domainerrors.ErrPolicyNotFound
		}
		return "", err
	}
	if view.Status == policyentities.StatusDeleted {
		return "", domainerrors.ErrPolicyNotFound
	}
	return view.Content, nil
}

// Finder joins a principal's attachments with the policy store's current
// versions.
type Finder struct {
	Attachments ports.PolicyAttachmentStore
	Contents    ports.PolicyContentProvider
}

func (f Finder) FindPoliciesForPrincipal(ctx context.Context, principal hrn.Hrn) ([]services.Document, error) {
	ids, err := f.Attachments.ListAttachedPolicyIDs(ctx, principal)
	if err != nil {
		return nil, err
	}

	documents := make([]services.Document, 0, len(ids))
	for _, id := range ids {
		content, err := f.Contents.GetPolicyContent(ctx, id)
		if err != nil {
			if errors.Is(err, domainerrors.ErrPolicyNotFound) {
				// A dangling attachment to a deleted policy grants nothing.
				continue
			}
			return nil, err
		}
		documents = append(documents, services.Document{ID: id, Content: content})
	}
	return documents, nil
}
