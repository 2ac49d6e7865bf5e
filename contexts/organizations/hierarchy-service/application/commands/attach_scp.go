package commands

import (
	"context"
	"log/slog"

	application "quarry/contexts/organizations/hierarchy-service/application"
	domainerrors "quarry/contexts/organizations/hierarchy-service/domain/errors"
	"quarry/contexts/organizations/hierarchy-service/ports"
	"quarry/internal/shared/hrn"
)

// AttachScpCommand binds a control policy to a unit or an account. The
// target's resource type selects which repository is touched.
type AttachScpCommand struct {
	ScpHrn    hrn.Hrn
	TargetHrn hrn.Hrn
}

// AttachScpUseCase attaches a control policy to a hierarchy node.
type AttachScpUseCase struct {
	Ous      ports.OuRepository
	Accounts ports.AccountRepository
	Scps     ports.ScpRepository
	Logger   *slog.Logger
}

func (u AttachScpUseCase) Execute(ctx context.Context, cmd AttachScpCommand) error {
	logger := application.ResolveLogger(u.Logger)

	if _, err := u.Scps.FindScpByHrn(ctx, cmd.ScpHrn); err != nil {
		return err
	}

	switch cmd.TargetHrn.ResourceType {
	case "OrganizationalUnit":
		unit, err := u.Ous.FindOuByHrn(ctx, cmd.TargetHrn)
		if err != nil {
			return err
		}
		unit.AttachScp(cmd.ScpHrn)
		if err := u.Ous.SaveOu(ctx, unit); err != nil {
			return err
		}
	case "Account":
		account, err := u.Accounts.FindAccountByHrn(ctx, cmd.TargetHrn)
		if err != nil {
			return err
		}
		account.AttachScp(cmd.ScpHrn)
		if err := u.Accounts.SaveAccount(ctx, account); err != nil {
			return err
		}
	default:
		return domainerrors.ErrNodeNotFound
	}

	logger.Info("service control policy attached",
		"event", "scp_attached",
		"module", "organizations/hierarchy-service",
		"layer", "application",
		"scp_hrn", cmd.ScpHrn.String(),
		"target_hrn", cmd.TargetHrn.String(),
	)
	return nil
}

// DetachScpCommand removes a control-policy binding from a unit or account.
type DetachScpCommand struct {
	ScpHrn    hrn.Hrn
	TargetHrn hrn.Hrn
}

// DetachScpUseCase detaches a control policy from a hierarchy node.
// Detaching a policy that was never attached is a no-op.
type DetachScpUseCase struct {
	Ous      ports.OuRepository
	Accounts ports.AccountRepository
	Logger   *slog.Logger
}

func (u DetachScpUseCase) Execute(ctx context.Context, cmd DetachScpCommand) error {
	logger := application.ResolveLogger(u.Logger)

	switch cmd.TargetHrn.ResourceType {
	case "OrganizationalUnit":
		unit, err := u.Ous.FindOuByHrn(ctx, cmd.TargetHrn)
		if err != nil {
			return err
		}
		unit.DetachScp(cmd.ScpHrn)
		if err := u.Ous.SaveOu(ctx, unit); err != nil {
			return err
		}
	case "Account":
		account, err := u.Accounts.FindAccountByHrn(ctx, cmd.TargetHrn)
		if err != nil {
			return err
		}
		account.DetachScp(cmd.ScpHrn)
		if err := u.Accounts.SaveAccount(ctx, account); err != nil {
			return err
		}
	default:
		return domainerrors.ErrNodeNotFound
	}

	logger.Info("service control policy detached",
		"event", "scp_detached",
		"module", "organizations/hierarchy-service",
		"layer", "application",
		"scp_hrn", cmd.ScpHrn.String(),
		"target_hrn", cmd.TargetHrn.String(),
	)
	return nil
}
