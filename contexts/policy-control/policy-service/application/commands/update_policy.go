package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "quarry/contexts/policy-control/policy-service/application"
	"quarry/contexts/policy-control/policy-service/domain/entities"
	"quarry/contexts/policy-control/policy-service/domain/services"
	"quarry/contexts/policy-control/policy-service/ports"
)

// UpdatePolicyCommand contains transport-agnostic input for a policy update.
type UpdatePolicyCommand struct {
	PolicyID    string
	Name        string
	Description string
	Content     string
	UpdatedBy   string
}

// UpdatePolicyUseCase re-validates new content exactly as create does, then
// appends a new version and advances the current version pointer. Existing
// versions are never mutated.
type UpdatePolicyUseCase struct {
	Updater     ports.PolicyUpdater
	Auditor     ports.AuditRecorder
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u UpdatePolicyUseCase) Execute(ctx context.Context, cmd UpdatePolicyCommand) (entities.PolicyView, error) {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("update policy started",
		"event", "policy_update_started",
		"module", "policy-control/policy-service",
		"layer", "application",
		"policy_id", cmd.PolicyID,
		"updated_by", cmd.UpdatedBy,
	)

	if err := services.ValidatePolicyID(cmd.PolicyID); err != nil {
		return entities.PolicyView{}, err
	}
	if err := services.ValidateDocument(cmd.Content); err != nil {
		return entities.PolicyView{}, err
	}

	now := u.now()
	policy, version, err := u.Updater.AppendVersion(ctx, ports.UpdatePolicyInput{
		PolicyID:    cmd.PolicyID,
		Name:        strings.TrimSpace(cmd.Name),
		Description: strings.TrimSpace(cmd.Description),
		Content:     cmd.Content,
		UpdatedBy:   cmd.UpdatedBy,
		UpdatedAt:   now,
	})
	if err != nil {
		logger.Warn("update policy persist failed",
			"event", "policy_update_persist_failed",
			"module", "policy-control/policy-service",
			"layer", "application",
			"policy_id", cmd.PolicyID,
			"error", err.Error(),
		)
		return entities.PolicyView{}, err
	}

	u.recordAudit(ctx, logger, cmd.PolicyID, "updated", cmd.UpdatedBy, now)
	logger.Info("update policy completed",
		"event", "policy_update_completed",
		"module", "policy-control/policy-service",
		"layer", "application",
		"policy_id", cmd.PolicyID,
		"version", version.Version,
	)
	return entities.ViewOf(policy, version), nil
}

func (u UpdatePolicyUseCase) recordAudit(ctx context.Context, logger *slog.Logger, policyID, action, actor string, at time.Time) {
	if u.Auditor == nil {
		return
	}
	auditID := ""
	if u.IDGenerator != nil {
		if id, err := u.IDGenerator.NewID(ctx); err == nil {
			auditID = id
		}
	}
	err := u.Auditor.RecordAudit(ctx, ports.AuditRecord{
		AuditID:    auditID,
		PolicyID:   policyID,
		Action:     action,
		Actor:      actor,
		OccurredAt: at,
	})
	if err != nil {
		logger.Error("policy audit record failed",
			"event", "policy_audit_failed",
			"module", "policy-control/policy-service",
			"layer", "application",
			"policy_id", policyID,
			"action", action,
			"error", err.Error(),
		)
	}
}

func (u UpdatePolicyUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
