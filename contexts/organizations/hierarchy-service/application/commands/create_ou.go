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

// CreateOuCommand contains transport-agnostic input for unit creation. A
// zero ParentHrn creates a root unit.
type CreateOuCommand struct {
	OuID      string
	Name      string
	ParentHrn hrn.Hrn
}

// CreateOuUseCase creates a unit and registers it as a child of its parent.
type CreateOuUseCase struct {
	Ous         ports.OuRepository
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u CreateOuUseCase) Execute(ctx context.Context, cmd CreateOuCommand) (entities.OrganizationalUnit, error) {
	logger := application.ResolveLogger(u.Logger)

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.OrganizationalUnit{}, domainerrors.ErrInvalidName
	}

	ouID := cmd.OuID
	if ouID == "" {
		generated, err := u.IDGenerator.NewID(ctx)
		if err != nil {
			return entities.OrganizationalUnit{}, err
		}
		ouID = generated
	}
	selfHrn := hrn.New(hrn.DefaultPartition, "organizations", "default", "OrganizationalUnit", ouID)

	if _, err := u.Ous.FindOuByHrn(ctx, selfHrn); err == nil {
		return entities.OrganizationalUnit{}, domainerrors.ErrOuAlreadyExists
	} else if !errors.Is(err, domainerrors.ErrOuNotFound) {
		return entities.OrganizationalUnit{}, err
	}

	var parent entities.OrganizationalUnit
	if !cmd.ParentHrn.IsZero() {
		found, err := u.Ous.FindOuByHrn(ctx, cmd.ParentHrn)
		if err != nil {
			return entities.OrganizationalUnit{}, err
		}
		parent = found
	}

	unit := entities.NewOrganizationalUnit(selfHrn, cmd.ParentHrn, name)
	if err := u.Ous.SaveOu(ctx, unit); err != nil {
		return entities.OrganizationalUnit{}, err
	}
	if !cmd.ParentHrn.IsZero() {
		parent.AddChildOu(selfHrn)
		if err := u.Ous.SaveOu(ctx, parent); err != nil {
			return entities.OrganizationalUnit{}, err
		}
	}

	logger.Info("organizational unit created",
		"event", "ou_created",
		"module", "organizations/hierarchy-service",
		"layer", "application",
		"ou_hrn", selfHrn.String(),
		"parent_hrn", cmd.ParentHrn.String(),
	)
	return unit, nil
}
