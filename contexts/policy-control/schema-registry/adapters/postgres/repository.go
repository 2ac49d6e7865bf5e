package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quarry/contexts/policy-control/schema-registry/domain/entities"
	domainerrors "quarry/contexts/policy-control/schema-registry/domain/errors"

	"gorm.io/gorm"
)

// Repository is the gorm-backed schema storage adapter.
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

type schemaModel struct {
	SchemaID    string    `gorm:"column:schema_id;primaryKey"`
	Version     string    `gorm:"column:version;uniqueIndex"`
	EntityCount int       `gorm:"column:entity_count"`
	ActionCount int       `gorm:"column:action_count"`
	Content     string    `gorm:"column:content"`
	BuiltAt     time.Time `gorm:"column:built_at"`
}

func (schemaModel) TableName() string { return "authz_schemas" }

func (m schemaModel) toEntity() entities.Schema {
	return entities.Schema{
		ID:          m.SchemaID,
		Version:     m.Version,
		EntityCount: m.EntityCount,
		ActionCount: m.ActionCount,
		Content:     m.Content,
		BuiltAt:     m.BuiltAt,
	}
}

func (r *Repository) SaveSchema(ctx context.Context, schema entities.Schema) (string, error) {
	row := schemaModel{
		SchemaID:    schema.ID,
		Version:     schema.Version,
		EntityCount: schema.EntityCount,
		ActionCount: schema.ActionCount,
		Content:     schema.Content,
		BuiltAt:     schema.BuiltAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return row.SchemaID, nil
}

func (r *Repository) GetLatestSchema(ctx context.Context) (entities.Schema, error) {
	var row schemaModel
	err := r.db.WithContext(ctx).
		Order("built_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Schema{}, domainerrors.ErrSchemaNotFound
		}
		return entities.Schema{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetSchemaByVersion(ctx context.Context, version string) (entities.Schema, error) {
	var row schemaModel
	err := r.db.WithContext(ctx).
		Where("version = ?", version).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Schema{}, domainerrors.ErrSchemaNotFound
		}
		return entities.Schema{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) DeleteSchema(ctx context.Context, schemaID string) error {
	result := r.db.WithContext(ctx).
		Where("schema_id = ?", schemaID).
		Delete(&schemaModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSchemaNotFound
	}
	return nil
}

func (r *Repository) ListSchemaVersions(ctx context.Context) ([]string, error) {
	var versions []string
	err := r.db.WithContext(ctx).
		Model(&schemaModel{}).
		Order("built_at ASC").
		Pluck("version", &versions).
		Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}
