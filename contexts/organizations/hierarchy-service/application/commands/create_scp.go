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

	cedar "github.com/cedar-policy/cedar-go"
)

// CreateScpCommand contains transport-agnostic input for control-policy
// creation.
type CreateScpCommand struct {
	ScpID    string
	Name     string
	Document string
}

// CreateScpUseCase validates the document as Cedar text and stores the
// control policy.
type CreateScpUseCase struct {
	Scps        ports.ScpRepository
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u CreateScpUseCase) Execute(ctx context.Context, cmd CreateScpCommand) (entities.ServiceControlPolicy, error) {
	logger := application.ResolveLogger(u.Logger)

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.ServiceControlPolicy{}, domainerrors.ErrInvalidName
	}
	document := strings.TrimSpace(cmd.Document)
	if document == "" {
		return entities.ServiceControlPolicy{}, domainerrors.ErrInvalidDocument
	}
	if policies, err := cedar.NewPolicyListFromBytes("scp.cedar", []byte(document)); err != nil || len(policies) == 0 {
		return entities.ServiceControlPolicy{}, domainerrors.ErrInvalidDocument
	}

	scpID := cmd.ScpID
	if scpID == "" {
		generated, err := u.IDGenerator.NewID(ctx)
		if err != nil {
			return entities.ServiceControlPolicy{}, err
		}
		scpID = generated
	}
	selfHrn := hrn.New(hrn.DefaultPartition, "organizations", "default", "ServiceControlPolicy", scpID)

	if _, err := u.Scps.FindScpByHrn(ctx, selfHrn); err == nil {
		return entities.ServiceControlPolicy{}, domainerrors.ErrScpAlreadyExists
	} else if !errors.Is(err, domainerrors.ErrScpNotFound) {
		return entities.ServiceControlPolicy{}, err
	}

	scp := entities.ServiceControlPolicy{
		Hrn:      selfHrn,
		Name:     name,
		Document: cmd.Document,
	}
	if err := u.Scps.SaveScp(ctx, scp); err != nil {
		return entities.ServiceControlPolicy{}, err
	}

	logger.Info("service control policy created",
		"event", "scp_created",
		"module", "organizations/hierarchy-service",
		"layer", "application",
		"scp_hrn", selfHrn.String(),
	)
	return scp, nil
}
