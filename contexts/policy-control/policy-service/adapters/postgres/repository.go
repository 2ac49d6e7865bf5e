package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quarry/contexts/policy-control/policy-service/domain/entities"
	domainerrors "quarry/contexts/policy-control/policy-service/domain/errors"
	"quarry/contexts/policy-control/policy-service/ports"
	"quarry/internal/shared/hrn"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository is the gorm-backed policy storage adapter. Id uniqueness is
// enforced by the primary key on iam_policies; a 23505 violation maps to
// ErrPolicyAlreadyExists so concurrent creates resolve the same way the
// in-memory store does.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

type policyModel struct {
	PolicyID       string    `gorm:"column:policy_id;primaryKey"`
	Hrn            string    `gorm:"column:hrn;uniqueIndex"`
	Name           string    `gorm:"column:name;index"`
	Description    string    `gorm:"column:description"`
	Status         string    `gorm:"column:status;index"`
	Tags           string    `gorm:"column:tags"`
	CreatedBy      string    `gorm:"column:created_by;index"`
	CurrentVersion int       `gorm:"column:current_version"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (policyModel) TableName() string { return "iam_policies" }

type policyVersionModel struct {
	PolicyID  string    `gorm:"column:policy_id;primaryKey"`
	Version   int       `gorm:"column:version;primaryKey"`
	Content   string    `gorm:"column:content"`
	CreatedAt time.Time `gorm:"column:created_at"`
	CreatedBy string    `gorm:"column:created_by"`
}

func (policyVersionModel) TableName() string { return "iam_policy_versions" }

type archivedVersionModel struct {
	PolicyID   string    `gorm:"column:policy_id;primaryKey"`
	Version    int       `gorm:"column:version;primaryKey"`
	Content    string    `gorm:"column:content"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	CreatedBy  string    `gorm:"column:created_by"`
	ArchivedAt time.Time `gorm:"column:archived_at"`
}

func (archivedVersionModel) TableName() string { return "iam_policy_versions_archive" }

type auditModel struct {
	AuditID     string     `gorm:"column:audit_id;primaryKey"`
	PolicyID    string     `gorm:"column:policy_id;index"`
	Action      string     `gorm:"column:action"`
	Actor       string     `gorm:"column:actor"`
	OccurredAt  time.Time  `gorm:"column:occurred_at"`
	PublishedAt *time.Time `gorm:"column:published_at;index"`
}

func (auditModel) TableName() string { return "iam_policy_audit" }

func toPolicyModel(policy entities.Policy) policyModel {
	return policyModel{
		PolicyID:       policy.ID,
		Hrn:            policy.Hrn.String(),
		Name:           policy.Name,
		Description:    policy.Description,
		Status:         string(policy.Status),
		Tags:           strings.Join(policy.Tags, ","),
		CreatedBy:      policy.CreatedBy,
		CurrentVersion: policy.CurrentVersion,
		CreatedAt:      policy.CreatedAt.UTC(),
		UpdatedAt:      policy.UpdatedAt.UTC(),
	}
}

func (m policyModel) toEntity() entities.Policy {
	parsed, _ := hrn.Parse(m.Hrn)
	var tags []string
	if m.Tags != "" {
		tags = strings.Split(m.Tags, ",")
	}
	return entities.Policy{
		Hrn:            parsed,
		ID:             m.PolicyID,
		Name:           m.Name,
		Description:    m.Description,
		Status:         entities.PolicyStatus(m.Status),
		Tags:           tags,
		CreatedBy:      m.CreatedBy,
		CurrentVersion: m.CurrentVersion,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func (m policyVersionModel) toEntity() entities.PolicyVersion {
	return entities.PolicyVersion{
		PolicyID:  m.PolicyID,
		Version:   m.Version,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (r *Repository) Create(ctx context.Context, input ports.CreatePolicyInput) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := toPolicyModel(input.Policy)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrPolicyAlreadyExists
			}
			return err
		}
		versionRow := policyVersionModel{
			PolicyID:  input.Version.PolicyID,
			Version:   input.Version.Version,
			Content:   input.Version.Content,
			CreatedAt: input.Version.CreatedAt.UTC(),
			CreatedBy: input.Version.CreatedBy,
		}
		return tx.Create(&versionRow).Error
	})
}

func (r *Repository) AppendVersion(ctx context.Context, input ports.UpdatePolicyInput) (entities.Policy, entities.PolicyVersion, error) {
	var (
		policy  entities.Policy
		version entities.PolicyVersion
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row policyModel
		err := tx.
			Where("policy_id = ? AND status <> ?", input.PolicyID, string(entities.StatusDeleted)).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPolicyNotFound
			}
			return err
		}

		versionRow := policyVersionModel{
			PolicyID:  input.PolicyID,
			Version:   row.CurrentVersion + 1,
			Content:   input.Content,
			CreatedAt: input.UpdatedAt.UTC(),
			CreatedBy: input.UpdatedBy,
		}
		if err := tx.Create(&versionRow).Error; err != nil {
			return err
		}

		row.CurrentVersion = versionRow.Version
		row.UpdatedAt = input.UpdatedAt.UTC()
		if input.Name != "" {
			row.Name = input.Name
		}
		if input.Description != "" {
			row.Description = input.Description
		}
		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		policy = row.toEntity()
		version = versionRow.toEntity()
		return nil
	})
	if err != nil {
		return entities.Policy{}, entities.PolicyVersion{}, err
	}
	return policy, version, nil
}

func (r *Repository) SoftDelete(ctx context.Context, policyID string, deletedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&policyModel{}).
		Where("policy_id = ? AND status <> ?", policyID, string(entities.StatusDeleted)).
		Updates(map[string]any{
			"status":     string(entities.StatusDeleted),
			"updated_at": deletedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPolicyNotFound
	}
	return nil
}

func (r *Repository) ArchiveVersions(ctx context.Context, policyID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []policyVersionModel
		if err := tx.Where("policy_id = ?", policyID).Find(&rows).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, row := range rows {
			archive := archivedVersionModel{
				PolicyID:   row.PolicyID,
				Version:    row.Version,
				Content:    row.Content,
				CreatedAt:  row.CreatedAt,
				CreatedBy:  row.CreatedBy,
				ArchivedAt: now,
			}
			if err := tx.Create(&archive).Error; err != nil {
				return err
			}
		}
		return tx.Where("policy_id = ?", policyID).Delete(&policyVersionModel{}).Error
	})
}

func (r *Repository) HardDelete(ctx context.Context, policyID string) error {
	result := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Delete(&policyModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPolicyNotFound
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, policyID string) (entities.Policy, entities.PolicyVersion, error) {
	var row policyModel
	err := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Policy{}, entities.PolicyVersion{}, domainerrors.ErrPolicyNotFound
		}
		return entities.Policy{}, entities.PolicyVersion{}, err
	}

	var versionRow policyVersionModel
	err = r.db.WithContext(ctx).
		Where("policy_id = ? AND version = ?", policyID, row.CurrentVersion).
		First(&versionRow).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Soft-deleted policies may have archived versions only.
			return row.toEntity(), entities.PolicyVersion{}, nil
		}
		return entities.Policy{}, entities.PolicyVersion{}, err
	}
	return row.toEntity(), versionRow.toEntity(), nil
}

func (r *Repository) GetVersion(ctx context.Context, policyID string, version int) (entities.PolicyVersion, error) {
	var row policyVersionModel
	err := r.db.WithContext(ctx).
		Where("policy_id = ? AND version = ?", policyID, version).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PolicyVersion{}, domainerrors.ErrPolicyNotFound
		}
		return entities.PolicyVersion{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListPoliciesFilter) ([]entities.Policy, error) {
	query := r.db.WithContext(ctx).Model(&policyModel{})
	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}
	if filter.NameContains != "" {
		query = query.Where("name LIKE ?", "%"+filter.NameContains+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	for _, tag := range filter.Tags {
		query = query.Where("tags LIKE ?", "%"+tag+"%")
	}

	var rows []policyModel
	err := query.
		Order("policy_id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	items := make([]entities.Policy, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// HasDependents satisfies ports.DependencyChecker. The schema has no table
// recording external references to a policy, so no dependents are ever
// reported — the same default the in-memory store yields when nothing has
// been registered in its Dependents map.
func (r *Repository) HasDependents(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (r *Repository) RecordAudit(ctx context.Context, record ports.AuditRecord) error {
	row := auditModel{
		AuditID:    record.AuditID,
		PolicyID:   record.PolicyID,
		Action:     record.Action,
		Actor:      record.Actor,
		OccurredAt: record.OccurredAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListPendingAudit(ctx context.Context, limit int) ([]ports.AuditMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []auditModel
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("occurred_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	messages := make([]ports.AuditMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.AuditMessage{
			AuditID:    row.AuditID,
			PolicyID:   row.PolicyID,
			Action:     row.Action,
			Actor:      row.Actor,
			OccurredAt: row.OccurredAt,
		})
	}
	return messages, nil
}

func (r *Repository) MarkAuditPublished(ctx context.Context, auditID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&auditModel{}).
		Where("audit_id = ?", auditID).
		Update("published_at", publishedAt.UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPolicyNotFound
	}
	return nil
}
