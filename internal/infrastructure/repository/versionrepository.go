package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/infrastructure/persistence/mappers"
	"github.com/drover-dev/drover/internal/infrastructure/persistence/models"
	"github.com/drover-dev/drover/internal/shared/db"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// VersionRepositoryImpl implements the release.Repository interface.
type VersionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.VersionMapper
	logger logger.Interface
}

// NewVersionRepository creates a new version repository instance.
func NewVersionRepository(gormDB *gorm.DB, logger logger.Interface) release.Repository {
	return &VersionRepositoryImpl{
		db:     gormDB,
		mapper: mappers.NewVersionMapper(),
		logger: logger,
	}
}

// Create creates a new version in the database.
func (r *VersionRepositoryImpl) Create(ctx context.Context, version *release.Version) error {
	model, err := r.mapper.ToModel(version)
	if err != nil {
		r.logger.Errorw("failed to map version entity to model", "error", err)
		return fmt.Errorf("failed to map version entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return release.ErrVersionExists
		}
		r.logger.Errorw("failed to create version in database", "error", err)
		return fmt.Errorf("failed to create version: %w", err)
	}

	if err := version.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set version ID", "error", err)
		return fmt.Errorf("failed to set version ID: %w", err)
	}

	r.logger.Infow("version created", "id", model.ID, "sid", model.SID, "version", model.Version)
	return nil
}

// GetByID retrieves a version by its internal ID.
func (r *VersionRepositoryImpl) GetByID(ctx context.Context, id uint) (*release.Version, error) {
	var model models.VersionModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get version by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get version: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetBySID retrieves a version by its public identifier.
func (r *VersionRepositoryImpl) GetBySID(ctx context.Context, sid string) (*release.Version, error) {
	var model models.VersionModel

	if err := db.GetTxFromContext(ctx, r.db).Where("sid = ?", sid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get version by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get version: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetByVersion retrieves a version by its canonical version string.
func (r *VersionRepositoryImpl) GetByVersion(ctx context.Context, version string) (*release.Version, error) {
	var model models.VersionModel

	if err := db.GetTxFromContext(ctx, r.db).Where("version = ?", version).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get version by version string", "version", version, "error", err)
		return nil, fmt.Errorf("failed to get version: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// Update updates an existing version.
func (r *VersionRepositoryImpl) Update(ctx context.Context, version *release.Version) error {
	model, err := r.mapper.ToModel(version)
	if err != nil {
		r.logger.Errorw("failed to map version entity to model", "error", err)
		return fmt.Errorf("failed to map version entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).Model(&models.VersionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"release_notes": model.ReleaseNotes,
			"is_active":     model.IsActive,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update version", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update version: %w", result.Error)
	}

	return nil
}

// List retrieves a paginated list of versions, newest release first.
func (r *VersionRepositoryImpl) List(ctx context.Context, filter release.ListFilter) ([]*release.Version, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.VersionModel{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count versions", "error", err)
		return nil, 0, fmt.Errorf("failed to count versions: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	query = query.Order("created_at DESC").Offset(offset).Limit(filter.PageSize)

	var versionModels []*models.VersionModel
	if err := query.Find(&versionModels).Error; err != nil {
		r.logger.Errorw("failed to list versions", "error", err)
		return nil, 0, fmt.Errorf("failed to list versions: %w", err)
	}

	entities, err := r.mapper.ToEntities(versionModels)
	if err != nil {
		r.logger.Errorw("failed to map version models to entities", "error", err)
		return nil, 0, fmt.Errorf("failed to map versions: %w", err)
	}

	return entities, total, nil
}

// ExistsByVersion checks if a version with the given version string exists.
func (r *VersionRepositoryImpl) ExistsByVersion(ctx context.Context, version string) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).Model(&models.VersionModel{}).
		Where("version = ?", version).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to check version existence", "version", version, "error", err)
		return false, fmt.Errorf("failed to check version existence: %w", err)
	}
	return count > 0, nil
}
