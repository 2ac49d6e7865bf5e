package queries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "quarry/contexts/identity-access/authorization-service/application"
	"quarry/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quarry/contexts/identity-access/authorization-service/domain/errors"
	"quarry/contexts/identity-access/authorization-service/domain/services"
	"quarry/contexts/identity-access/authorization-service/ports"
	"quarry/internal/shared/hrn"
)

// EvaluatePoliciesUseCase orchestrates the two-layer decision: organization
// control policies first, then the principal's own policies. A Deny is always
// the outcome of a successful evaluation; retrieval failures surface as
// ErrEvaluationFailed and never produce (or cache) a decision.
type EvaluatePoliciesUseCase struct {
	Scps             ports.EffectiveScpProvider
	Policies         ports.PolicyFinder
	Cache            ports.DecisionCache
	Clock            ports.Clock
	DecisionCacheTTL time.Duration
	Logger           *slog.Logger
}

func (u EvaluatePoliciesUseCase) Execute(ctx context.Context, request entities.EvaluationRequest) (entities.EvaluationDecision, error) {
	if request.Principal.IsZero() {
		return entities.EvaluationDecision{}, domainerrors.ErrInvalidPrincipal
	}
	if strings.TrimSpace(request.Action) == "" {
		return entities.EvaluationDecision{}, domainerrors.ErrInvalidAction
	}
	if request.Resource.IsZero() {
		return entities.EvaluationDecision{}, domainerrors.ErrInvalidResource
	}

	logger := application.ResolveLogger(u.Logger)
	now := u.now()
	logger.Debug("policy evaluation started",
		"event", "authz_evaluation_started",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"principal", request.Principal.String(),
		"action", request.Action,
		"resource", request.Resource.String(),
	)

	// Context attributes are not part of the cache key, so requests carrying
	// them bypass the cache entirely.
	cacheKey := ""
	if u.Cache != nil && len(request.Context) == 0 {
		cacheKey = request.Principal.String() + "|" + request.Action + "|" + request.Resource.String()
		if cached, hit, err := u.Cache.Get(ctx, cacheKey, now); err == nil && hit {
			cached.CacheHit = true
			return cached, nil
		}
	}

	decision, err := u.evaluate(ctx, logger, request, now)
	if err != nil {
		return entities.EvaluationDecision{}, err
	}

	if cacheKey != "" {
		_ = u.Cache.Set(ctx, cacheKey, decision, now.Add(u.cacheTTL()))
	}
	return decision, nil
}

func (u EvaluatePoliciesUseCase) evaluate(
	ctx context.Context,
	logger *slog.Logger,
	request entities.EvaluationRequest,
	now time.Time,
) (entities.EvaluationDecision, error) {
	cedarRequest, err := services.BuildRequest(request)
	if err != nil {
		return entities.EvaluationDecision{}, err
	}

	scpDocuments, err := u.loadScps(ctx, request)
	if err != nil {
		logger.Error("control policy resolution failed",
			"event", "authz_scp_resolution_failed",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"principal", request.Principal.String(),
			"error", err.Error(),
		)
		return entities.EvaluationDecision{}, fmt.Errorf("%w: %w: %v", domainerrors.ErrEvaluationFailed, domainerrors.ErrScpResolutionFailed, err)
	}

	if len(scpDocuments) > 0 {
		scpSet, err := services.CompilePolicySet(scpDocuments)
		if err != nil {
			return entities.EvaluationDecision{}, err
		}
		verdict := services.Evaluate(scpSet, cedarRequest)
		if verdict.ForbidFired {
			logger.Warn("request denied by control policy",
				"event", "authz_denied_by_scp",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"principal", request.Principal.String(),
				"action", request.Action,
				"resource", request.Resource.String(),
				"determining", strings.Join(verdict.Determining, ","),
			)
			return u.deny(request, "explicit_forbid_scp", verdict.Determining, now), nil
		}
	}

	principalDocuments, err := u.Policies.FindPoliciesForPrincipal(ctx, request.Principal)
	if err != nil {
		logger.Error("principal policy lookup failed",
			"event", "authz_policy_lookup_failed",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"principal", request.Principal.String(),
			"error", err.Error(),
		)
		return entities.EvaluationDecision{}, fmt.Errorf("%w: principal policy lookup: %v", domainerrors.ErrEvaluationFailed, err)
	}
	if len(principalDocuments) == 0 {
		return u.deny(request, "no_policies_found", nil, now), nil
	}

	principalSet, err := services.CompilePolicySet(principalDocuments)
	if err != nil {
		return entities.EvaluationDecision{}, err
	}
	verdict := services.Evaluate(principalSet, cedarRequest)
	if !verdict.Allowed {
		reason := "no_matching_permit"
		if verdict.ForbidFired {
			reason = "explicit_forbid"
		}
		return u.deny(request, reason, verdict.Determining, now), nil
	}

	logger.Debug("policy evaluation allowed",
		"event", "authz_evaluation_allowed",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"principal", request.Principal.String(),
		"action", request.Action,
		"resource", request.Resource.String(),
		"determining", strings.Join(verdict.Determining, ","),
	)
	return entities.EvaluationDecision{
		Principal:           request.Principal.String(),
		Action:              request.Action,
		Resource:            request.Resource.String(),
		Allowed:             true,
		Reason:              "explicit_permit",
		DeterminingPolicies: verdict.Determining,
		EvaluatedAt:         now,
	}, nil
}

// loadScps unions the control policies governing the principal's and the
// resource's accounts. Either side may live outside the organization tree;
// only genuine resolution failures propagate.
func (u EvaluatePoliciesUseCase) loadScps(ctx context.Context, request entities.EvaluationRequest) ([]services.Document, error) {
	if u.Scps == nil {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var documents []services.Document
	for _, target := range []string{request.Principal.AccountID, request.Resource.AccountID} {
		if target == "" {
			continue
		}
		accountHrn := hrn.New(hrn.DefaultPartition, "organizations", "default", "Account", target)

		resolved, err := u.Scps.EffectiveScpsFor(ctx, accountHrn)
		if err != nil {
			return nil, err
		}
		for _, document := range resolved {
			if _, dup := seen[document.ID]; dup {
				continue
			}
			seen[document.ID] = struct{}{}
			documents = append(documents, document)
		}
	}
	return documents, nil
}

func (u EvaluatePoliciesUseCase) deny(
	request entities.EvaluationRequest,
	reason string,
	determining []string,
	now time.Time,
) entities.EvaluationDecision {
	return entities.EvaluationDecision{
		Principal:           request.Principal.String(),
		Action:              request.Action,
		Resource:            request.Resource.String(),
		Allowed:             false,
		Reason:              reason,
		DeterminingPolicies: determining,
		EvaluatedAt:         now,
	}
}

func (u EvaluatePoliciesUseCase) cacheTTL() time.Duration {
	if u.DecisionCacheTTL <= 0 {
		return 5 * time.Minute
	}
	return u.DecisionCacheTTL
}

func (u EvaluatePoliciesUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
