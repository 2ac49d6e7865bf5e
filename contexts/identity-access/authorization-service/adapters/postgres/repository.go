package postgresadapter

import (
	"context"
	"errors"
	"log/slog"

	domainerrors "quarry/contexts/identity-access/authorization-service/domain/errors"
	"quarry/internal/shared/hrn"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository is the gorm-backed attachment store. Attaching the same policy
// twice is a no-op; the composite primary key absorbs the conflict.
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

type attachmentModel struct {
	PrincipalHrn string `gorm:"column:principal_hrn;primaryKey"`
	PolicyID     string `gorm:"column:policy_id;primaryKey"`
}

func (attachmentModel) TableName() string { return "authz_principal_policies" }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (r *Repository) AttachPolicy(ctx context.Context, principal hrn.Hrn, policyID string) error {
	row := attachmentModel{
		PrincipalHrn: principal.String(),
		PolicyID:     policyID,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (r *Repository) DetachPolicy(ctx context.Context, principal hrn.Hrn, policyID string) error {
	result := r.db.WithContext(ctx).
		Where("principal_hrn = ? AND policy_id = ?", principal.String(), policyID).
		Delete(&attachmentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAttachmentNotFound
	}
	return nil
}

func (r *Repository) ListAttachedPolicyIDs(ctx context.Context, principal hrn.Hrn) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&attachmentModel{}).
		Where("principal_hrn = ?", principal.String()).
		Order("policy_id ASC").
		Pluck("policy_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
