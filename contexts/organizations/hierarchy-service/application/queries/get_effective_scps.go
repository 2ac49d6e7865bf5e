package queries

import (
	"context"
	"log/slog"
	"sort"

	application "quarry/contexts/organizations/hierarchy-service/application"
	"quarry/contexts/organizations/hierarchy-service/domain/entities"
	domainerrors "quarry/contexts/organizations/hierarchy-service/domain/errors"
	"quarry/contexts/organizations/hierarchy-service/ports"
	"quarry/internal/shared/hrn"
)

// EffectiveScps is the resolved control-policy set for one hierarchy node,
// ordered from the node itself up to the root, duplicates removed at first
// occurrence.
type EffectiveScps struct {
	TargetHrn hrn.Hrn
	Scps      []entities.ServiceControlPolicy
}

// GetEffectiveScpsUseCase walks the tree from the target node to the root
// and unions the attachments found along the way. A missing node anywhere on
// the path is terminal; no partial set is returned.
type GetEffectiveScpsUseCase struct {
	Ous      ports.OuRepository
	Accounts ports.AccountRepository
	Scps     ports.ScpRepository
	Logger   *slog.Logger
}

func (u GetEffectiveScpsUseCase) Execute(ctx context.Context, target hrn.Hrn) (EffectiveScps, error) {
	logger := application.ResolveLogger(u.Logger)

	seen := make(map[string]struct{})
	var ordered []string

	collect := func(attached map[string]struct{}) {
		batch := make([]string, 0, len(attached))
		for id := range attached {
			batch = append(batch, id)
		}
		// Attachment sets are unordered; sorting keeps the result stable.
		sort.Strings(batch)
		for _, id := range batch {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ordered = append(ordered, id)
		}
	}

	var current hrn.Hrn
	switch target.ResourceType {
	case "Account":
		account, err := u.Accounts.FindAccountByHrn(ctx, target)
		if err != nil {
			return EffectiveScps{}, err
		}
		collect(account.AttachedScps)
		current = account.ParentHrn
	case "OrganizationalUnit":
		unit, err := u.Ous.FindOuByHrn(ctx, target)
		if err != nil {
			return EffectiveScps{}, err
		}
		collect(unit.AttachedScps)
		current = unit.ParentHrn
	default:
		return EffectiveScps{}, domainerrors.ErrNodeNotFound
	}

	for !current.IsZero() {
		unit, err := u.Ous.FindOuByHrn(ctx, current)
		if err != nil {
			return EffectiveScps{}, err
		}
		collect(unit.AttachedScps)
		current = unit.ParentHrn
	}

	result := EffectiveScps{TargetHrn: target}
	for _, id := range ordered {
		scpHrn, ok := hrn.Parse(id)
		if !ok {
			return EffectiveScps{}, domainerrors.ErrScpNotFound
		}
		scp, err := u.Scps.FindScpByHrn(ctx, scpHrn)
		if err != nil {
			return EffectiveScps{}, err
		}
		result.Scps = append(result.Scps, scp)
	}

	logger.Debug("effective scps resolved",
		"event", "effective_scps_resolved",
		"module", "organizations/hierarchy-service",
		"layer", "application",
		"target_hrn", target.String(),
		"scp_count", len(result.Scps),
	)
	return result, nil
}
