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
	"quarry/internal/shared/hrn"
)

// CreatePolicyCommand contains transport-agnostic input for policy creation.
type CreatePolicyCommand struct {
	PolicyID    string
	Name        string
	Description string
	Content     string
	Tags        []string
	CreatedBy   string
}

// CreatePolicyUseCase validates and persists a new policy with its initial
// version, then records an audit row.
type CreatePolicyUseCase struct {
	Creator     ports.PolicyCreator
	Auditor     ports.AuditRecorder
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u CreatePolicyUseCase) Execute(ctx context.Context, cmd CreatePolicyCommand) (entities.PolicyView, error) {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("create policy started",
		"event", "policy_create_started",
		"module", "policy-control/policy-service",
		"layer", "application",
		"policy_id", cmd.PolicyID,
		"created_by", cmd.CreatedBy,
	)

	if err := services.ValidatePolicyID(cmd.PolicyID); err != nil {
		return entities.PolicyView{}, err
	}
	if err := services.ValidateDocument(cmd.Content); err != nil {
		logger.Warn("create policy content rejected",
			"event", "policy_create_content_rejected",
			"module", "policy-control/policy-service",
			"layer", "application",
			"policy_id", cmd.PolicyID,
			"error", err.Error(),
		)
		return entities.PolicyView{}, err
	}

	now := u.now()
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		name = cmd.PolicyID
	}
	policy := entities.Policy{
		Hrn:            hrn.New(hrn.DefaultPartition, "iam", "default", "Policy", cmd.PolicyID),
		ID:             cmd.PolicyID,
		Name:           name,
		Description:    strings.TrimSpace(cmd.Description),
		Status:         entities.StatusActive,
		Tags:           append([]string(nil), cmd.Tags...),
		CreatedBy:      cmd.CreatedBy,
		CurrentVersion: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	version := entities.PolicyVersion{
		PolicyID:  cmd.PolicyID,
		Version:   1,
		Content:   cmd.Content,
		CreatedAt: now,
		CreatedBy: cmd.CreatedBy,
	}

	// Uniqueness is re-checked by the creator under its own write lock; the
	// pre-validation above never touches storage.
	if err := u.Creator.Create(ctx, ports.CreatePolicyInput{Policy: policy, Version: version}); err != nil {
		logger.Warn("create policy persist failed",
			"event", "policy_create_persist_failed",
			"module", "policy-control/policy-service",
			"layer", "application",
			"policy_id", cmd.PolicyID,
			"error", err.Error(),
		)
		return entities.PolicyView{}, err
	}

	u.recordAudit(ctx, logger, cmd.PolicyID, "created", cmd.CreatedBy, now)
	logger.Info("create policy completed",
		"event", "policy_create_completed",
		"module", "policy-control/policy-service",
		"layer", "application",
		"policy_id", cmd.PolicyID,
	)
	return entities.ViewOf(policy, version), nil
}

func (u CreatePolicyUseCase) recordAudit(ctx context.Context, logger *slog.Logger, policyID, action, actor string, at time.Time) {
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

func (u CreatePolicyUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
