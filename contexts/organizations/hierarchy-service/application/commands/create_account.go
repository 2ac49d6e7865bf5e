package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "quarry/contexts/organizations/hierarchy-service/application"
	"quarry/contexts/organizations/hierarchy-service/domain/entities"
	domainerrors "quarry/contexts/organizations/hierarchy-service/domain/errors"
	"quarry/contexts/organizations/hierarchy-service/ports"
	"quarry/internal/shared/hrn"
)

// CreateAccountCommand contains transport-agnostic input for account
// creation. ParentHrn must name an existing unit.
type CreateAccountCommand struct {
	AccountID string
	Name      string
	ParentHrn hrn.Hrn
}

// CreateAccountUseCase creates an account under its parent unit. The account
// row and the parent's membership change commit together or not at all.
type CreateAccountUseCase struct {
	UnitOfWork  ports.UnitOfWorkFactory
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u CreateAccountUseCase) Execute(ctx context.Context, cmd CreateAccountCommand) (entities.Account, error) {
	logger := application.ResolveLogger(u.Logger)

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.Account{}, domainerrors.ErrInvalidName
	}

	accountID := cmd.AccountID
	if accountID == "" {
		generated, err := u.IDGenerator.NewID(ctx)
		if err != nil {
			return entities.Account{}, err
		}
		accountID = generated
	}
	selfHrn := hrn.New(hrn.DefaultPartition, "organizations", "default", "Account", accountID)

	uow, err := u.UnitOfWork.Begin(ctx)
	if err != nil {
		return entities.Account{}, err
	}

	account, err := u.create(ctx, uow, cmd, selfHrn, name)
	if err != nil {
		if rollbackErr := uow.Rollback(ctx); rollbackErr != nil {
			logger.Error("create account rollback failed",
				"event", "account_create_rollback_failed",
				"module", "organizations/hierarchy-service",
				"layer", "application",
				"account_hrn", selfHrn.String(),
				"error", rollbackErr.Error(),
			)
		}
		return entities.Account{}, err
	}

	if err := uow.Commit(ctx); err != nil {
		return entities.Account{}, err
	}

	logger.Info("account created",
		"event", "account_created",
		"module", "organizations/hierarchy-service",
		"layer", "application",
		"account_hrn", selfHrn.String(),
		"parent_hrn", cmd.ParentHrn.String(),
	)
	return account, nil
}

func (u CreateAccountUseCase) create(
	ctx context.Context,
	uow ports.UnitOfWork,
	cmd CreateAccountCommand,
	selfHrn hrn.Hrn,
	name string,
) (entities.Account, error) {
	parent, err := uow.Ous().FindOuByHrn(ctx, cmd.ParentHrn)
	if err != nil {
		return entities.Account{}, err
	}

	if _, err := uow.Accounts().FindAccountByHrn(ctx, selfHrn); err == nil {
		return entities.Account{}, domainerrors.ErrAccountAlreadyExists
	} else if !errors.Is(err, domainerrors.ErrAccountNotFound) {
		return entities.Account{}, err
	}

	account := entities.NewAccount(selfHrn, cmd.ParentHrn, name)
	if err := uow.Accounts().SaveAccount(ctx, account); err != nil {
		return entities.Account{}, err
	}
	parent.AddChildAccount(selfHrn)
	if err := uow.Ous().SaveOu(ctx, parent); err != nil {
		return entities.Account{}, err
	}
	return account, nil
}
