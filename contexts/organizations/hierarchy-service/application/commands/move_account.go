package commands

import (
	"context"
	"errors"
	"log/slog"

	application "quarry/contexts/organizations/hierarchy-service/application"
	domainerrors "quarry/contexts/organizations/hierarchy-service/domain/errors"
	"quarry/contexts/organizations/hierarchy-service/ports"
	"quarry/internal/shared/hrn"
)

// MoveAccountCommand relocates an account between two units.
type MoveAccountCommand struct {
	AccountHrn  hrn.Hrn
	SourceOuHrn hrn.Hrn
	TargetOuHrn hrn.Hrn
}

// MoveAccountUseCase performs the move inside one unit of work: the account's
// parent pointer, the source unit's member set, and the target unit's member
// set change together or not at all.
type MoveAccountUseCase struct {
	UnitOfWork ports.UnitOfWorkFactory
	Logger     *slog.Logger
}

func (u MoveAccountUseCase) Execute(ctx context.Context, cmd MoveAccountCommand) error {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("move account started",
		"event", "account_move_started",
		"module", "organizations/hierarchy-service",
		"layer", "application",
		"account_hrn", cmd.AccountHrn.String(),
		"source_hrn", cmd.SourceOuHrn.String(),
		"target_hrn", cmd.TargetOuHrn.String(),
	)

	uow, err := u.UnitOfWork.Begin(ctx)
	if err != nil {
		return err
	}

	if err := u.move(ctx, uow, cmd); err != nil {
		if rollbackErr := uow.Rollback(ctx); rollbackErr != nil {
			logger.Error("move account rollback failed",
				"event", "account_move_rollback_failed",
				"module", "organizations/hierarchy-service",
				"layer", "application",
				"account_hrn", cmd.AccountHrn.String(),
				"error", rollbackErr.Error(),
			)
		}
		logger.Warn("move account aborted",
			"event", "account_move_aborted",
			"module", "organizations/hierarchy-service",
			"layer", "application",
			"account_hrn", cmd.AccountHrn.String(),
			"error", err.Error(),
		)
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	logger.Info("move account completed",
		"event", "account_move_completed",
		"module", "organizations/hierarchy-service",
		"layer", "application",
		"account_hrn", cmd.AccountHrn.String(),
		"target_hrn", cmd.TargetOuHrn.String(),
	)
	return nil
}

func (u MoveAccountUseCase) move(ctx context.Context, uow ports.UnitOfWork, cmd MoveAccountCommand) error {
	account, err := uow.Accounts().FindAccountByHrn(ctx, cmd.AccountHrn)
	if err != nil {
		return err
	}

	source, err := uow.Ous().FindOuByHrn(ctx, cmd.SourceOuHrn)
	if err != nil {
		if errors.Is(err, domainerrors.ErrOuNotFound) {
			return domainerrors.ErrSourceOuNotFound
		}
		return err
	}
	if !source.HasChildAccount(cmd.AccountHrn) {
		return domainerrors.ErrAccountNotInSource
	}

	target, err := uow.Ous().FindOuByHrn(ctx, cmd.TargetOuHrn)
	if err != nil {
		if errors.Is(err, domainerrors.ErrOuNotFound) {
			return domainerrors.ErrTargetOuNotFound
		}
		return err
	}

	source.RemoveChildAccount(cmd.AccountHrn)
	target.AddChildAccount(cmd.AccountHrn)
	account.SetParent(cmd.TargetOuHrn)

	if err := uow.Ous().SaveOu(ctx, source); err != nil {
		return err
	}
	if err := uow.Ous().SaveOu(ctx, target); err != nil {
		return err
	}
	return uow.Accounts().SaveAccount(ctx, account)
}
