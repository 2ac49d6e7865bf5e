package commands

import (
	"context"
	"log/slog"
	"time"

	application "quarry/contexts/policy-control/policy-service/application"
	domainerrors "quarry/contexts/policy-control/policy-service/domain/errors"
	"quarry/contexts/policy-control/policy-service/domain/services"
	"quarry/contexts/policy-control/policy-service/ports"
)

// DeletePolicyCommand selects the target and the delete mode.
type DeletePolicyCommand struct {
	PolicyID  string
	Hard      bool
	DeletedBy string
}

// DeletePolicyUseCase guards protected statuses and dependency references,
// then soft-deletes (status flip, retrievable for audit) or hard-deletes
// (version archival, then row removal).
type DeletePolicyUseCase struct {
	Reader       ports.PolicyReader
	Deleter      ports.PolicyDeleter
	Dependencies ports.DependencyChecker
	Auditor      ports.AuditRecorder
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	Logger       *slog.Logger
}

func (u DeletePolicyUseCase) Execute(ctx context.Context, cmd DeletePolicyCommand) error {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("delete policy started",
		"event", "policy_delete_started",
		"module", "policy-control/policy-service",
		"layer", "application",
		"policy_id", cmd.PolicyID,
		"hard", cmd.Hard,
	)

	if err := services.ValidatePolicyID(cmd.PolicyID); err != nil {
		return err
	}

	policy, _, err := u.Reader.Get(ctx, cmd.PolicyID)
	if err != nil {
		return err
	}
	if policy.Status.Protected() {
		logger.Warn("delete policy blocked by status",
			"event", "policy_delete_blocked",
			"module", "policy-control/policy-service",
			"layer", "application",
			"policy_id", cmd.PolicyID,
			"status", string(policy.Status),
		)
		return domainerrors.ErrDeletionNotAllowed
	}

	if u.Dependencies != nil {
		dependent, err := u.Dependencies.HasDependents(ctx, cmd.PolicyID)
		if err != nil {
			return err
		}
		if dependent {
			return domainerrors.ErrHasDependencies
		}
	}

	now := u.now()
	if cmd.Hard {
		if err := u.Deleter.ArchiveVersions(ctx, cmd.PolicyID); err != nil {
			return err
		}
		if err := u.Deleter.HardDelete(ctx, cmd.PolicyID); err != nil {
			return err
		}
		u.recordAudit(ctx, logger, cmd.PolicyID, "hard_deleted", cmd.DeletedBy, now)
	} else {
		if err := u.Deleter.SoftDelete(ctx, cmd.PolicyID, now); err != nil {
			return err
		}
		u.recordAudit(ctx, logger, cmd.PolicyID, "soft_deleted", cmd.DeletedBy, now)
	}

	logger.Info("delete policy completed",
		"event", "policy_delete_completed",
		"module", "policy-control/policy-service",
		"layer", "application",
		"policy_id", cmd.PolicyID,
		"hard", cmd.Hard,
	)
	return nil
}

func (u DeletePolicyUseCase) recordAudit(ctx context.Context, logger *slog.Logger, policyID, action, actor string, at time.Time) {
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

func (u DeletePolicyUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
