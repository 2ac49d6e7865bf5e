package commands

import (
	"context"
	"log/slog"

	application "quarry/contexts/identity-access/authorization-service/application"
	domainerrors "quarry/contexts/identity-access/authorization-service/domain/errors"
	"quarry/contexts/identity-access/authorization-service/ports"
	"quarry/internal/shared/hrn"
)

// AttachPolicyCommand binds a stored policy to a principal.
type AttachPolicyCommand struct {
	Principal hrn.Hrn
	PolicyID  string
}

// AttachPolicyUseCase verifies the policy exists, records the attachment,
// and invalidates cached decisions for the principal.
type AttachPolicyUseCase struct {
	Attachments ports.PolicyAttachmentStore
	Contents    ports.PolicyContentProvider
	Cache       ports.DecisionCache
	Logger      *slog.Logger
}

func (u AttachPolicyUseCase) Execute(ctx context.Context, cmd AttachPolicyCommand) error {
	logger := application.ResolveLogger(u.Logger)

	if cmd.Principal.IsZero() {
		return domainerrors.ErrInvalidPrincipal
	}
	if cmd.PolicyID == "" {
		return domainerrors.ErrPolicyNotFound
	}
	if _, err := u.Contents.GetPolicyContent(ctx, cmd.PolicyID); err != nil {
		return err
	}

	if err := u.Attachments.AttachPolicy(ctx, cmd.Principal, cmd.PolicyID); err != nil {
		return err
	}
	if u.Cache != nil {
		_ = u.Cache.InvalidatePrincipal(ctx, cmd.Principal.String())
	}

	logger.Info("policy attached to principal",
		"event", "authz_policy_attached",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"principal", cmd.Principal.String(),
		"policy_id", cmd.PolicyID,
	)
	return nil
}

// DetachPolicyCommand removes a policy binding from a principal.
type DetachPolicyCommand struct {
	Principal hrn.Hrn
	PolicyID  string
}

// DetachPolicyUseCase removes the attachment and invalidates cached
// decisions for the principal.
type DetachPolicyUseCase struct {
	Attachments ports.PolicyAttachmentStore
	Cache       ports.DecisionCache
	Logger      *slog.Logger
}

func (u DetachPolicyUseCase) Execute(ctx context.Context, cmd DetachPolicyCommand) error {
	logger := application.ResolveLogger(u.Logger)

	if cmd.Principal.IsZero() {
		return domainerrors.ErrInvalidPrincipal
	}
	if err := u.Attachments.DetachPolicy(ctx, cmd.Principal, cmd.PolicyID); err != nil {
		return err
	}
	if u.Cache != nil {
		_ = u.Cache.InvalidatePrincipal(ctx, cmd.Principal.String())
	}

	logger.Info("policy detached from principal",
		"event", "authz_policy_detached",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"principal", cmd.Principal.String(),
		"policy_id", cmd.PolicyID,
	)
	return nil
}
