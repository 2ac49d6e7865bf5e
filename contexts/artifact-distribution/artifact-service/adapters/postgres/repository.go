package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quarry/contexts/artifact-distribution/artifact-service/domain/entities"
	domainerrors "quarry/contexts/artifact-distribution/artifact-service/domain/errors"
	"quarry/internal/shared/hrn"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository is the gorm-backed artifact metadata adapter. Coordinate
// uniqueness is enforced by the composite primary key.
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

type artifactModel struct {
	Repository  string    `gorm:"column:repository;primaryKey"`
	Name        string    `gorm:"column:name;primaryKey"`
	Version     string    `gorm:"column:version;primaryKey"`
	ArtifactID  string    `gorm:"column:artifact_id;uniqueIndex"`
	Hrn         string    `gorm:"column:hrn"`
	Format      string    `gorm:"column:format"`
	Checksum    string    `gorm:"column:checksum"`
	SizeBytes   int64     `gorm:"column:size_bytes"`
	PublishedBy string    `gorm:"column:published_by"`
	PublishedAt time.Time `gorm:"column:published_at"`
}

func (artifactModel) TableName() string { return "dist_artifacts" }

func (m artifactModel) toEntity() entities.Artifact {
	parsed, _ := hrn.Parse(m.Hrn)
	return entities.Artifact{
		Hrn:         parsed,
		ID:          m.ArtifactID,
		Repository:  m.Repository,
		Name:        m.Name,
		Version:     m.Version,
		Format:      m.Format,
		Checksum:    m.Checksum,
		SizeBytes:   m.SizeBytes,
		PublishedBy: m.PublishedBy,
		PublishedAt: m.PublishedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (r *Repository) SaveArtifact(ctx context.Context, artifact entities.Artifact) error {
	row := artifactModel{
		Repository:  artifact.Repository,
		Name:        artifact.Name,
		Version:     artifact.Version,
		ArtifactID:  artifact.ID,
		Hrn:         artifact.Hrn.String(),
		Format:      artifact.Format,
		Checksum:    artifact.Checksum,
		SizeBytes:   artifact.SizeBytes,
		PublishedBy: artifact.PublishedBy,
		PublishedAt: artifact.PublishedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrArtifactAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repository) GetArtifact(ctx context.Context, repository, name, version string) (entities.Artifact, error) {
	var row artifactModel
	err := r.db.WithContext(ctx).
		Where("repository = ? AND name = ? AND version = ?", repository, name, version).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Artifact{}, domainerrors.ErrArtifactNotFound
		}
		return entities.Artifact{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListArtifacts(ctx context.Context, repository string) ([]entities.Artifact, error) {
	var rows []artifactModel
	err := r.db.WithContext(ctx).
		Where("repository = ?", repository).
		Order("name ASC, version ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Artifact, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}
