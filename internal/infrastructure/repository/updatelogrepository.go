package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/drover-dev/drover/internal/domain/rollout"
	"github.com/drover-dev/drover/internal/infrastructure/persistence/mappers"
	"github.com/drover-dev/drover/internal/infrastructure/persistence/models"
	"github.com/drover-dev/drover/internal/shared/db"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// UpdateLogRepositoryImpl implements the rollout.Repository interface.
type UpdateLogRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.UpdateLogMapper
	logger logger.Interface
}

// NewUpdateLogRepository creates a new update log repository instance.
func NewUpdateLogRepository(gormDB *gorm.DB, logger logger.Interface) rollout.Repository {
	return &UpdateLogRepositoryImpl{
		db:     gormDB,
		mapper: mappers.NewUpdateLogMapper(),
		logger: logger,
	}
}

// Create creates a new update log entry in the database.
func (r *UpdateLogRepositoryImpl) Create(ctx context.Context, log *rollout.UpdateLog) error {
	model, err := r.mapper.ToModel(log)
	if err != nil {
		r.logger.Errorw("failed to map update log entity to model", "error", err)
		return fmt.Errorf("failed to map update log entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create update log in database", "error", err)
		return fmt.Errorf("failed to create update log: %w", err)
	}

	if err := log.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set update log ID", "error", err)
		return fmt.Errorf("failed to set update log ID: %w", err)
	}

	r.logger.Infow("update log created",
		"id", model.ID,
		"sid", model.SID,
		"client_id", model.ClientID,
		"to_version", model.ToVersion,
		"rollback", model.IsRollback,
	)
	return nil
}

// GetByID retrieves an update log entry by its internal ID.
func (r *UpdateLogRepositoryImpl) GetByID(ctx context.Context, id uint) (*rollout.UpdateLog, error) {
	var model models.UpdateLogModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get update log by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get update log: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetBySID retrieves an update log entry by its public identifier.
func (r *UpdateLogRepositoryImpl) GetBySID(ctx context.Context, sid string) (*rollout.UpdateLog, error) {
	var model models.UpdateLogModel

	if err := db.GetTxFromContext(ctx, r.db).Where("sid = ?", sid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get update log by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get update log: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetOpenByClientID retrieves the single pending or in_progress entry for a
// client, or nil when the client has no update in flight.
func (r *UpdateLogRepositoryImpl) GetOpenByClientID(ctx context.Context, clientID uint) (*rollout.UpdateLog, error) {
	var model models.UpdateLogModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("client_id = ? AND status IN ?", clientID, []string{
			string(rollout.StatusPending),
			string(rollout.StatusInProgress),
		}).
		Order("started_at DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get open update log", "client_id", clientID, "error", err)
		return nil, fmt.Errorf("failed to get open update log: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetLatestTerminalByClientID retrieves the most recently completed entry for
// a client, or nil when no update has reached a terminal status yet.
func (r *UpdateLogRepositoryImpl) GetLatestTerminalByClientID(ctx context.Context, clientID uint) (*rollout.UpdateLog, error) {
	var model models.UpdateLogModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("client_id = ? AND status IN ?", clientID, []string{
			string(rollout.StatusSuccess),
			string(rollout.StatusFailed),
			string(rollout.StatusRolledBack),
		}).
		Order("completed_at DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get latest terminal update log", "client_id", clientID, "error", err)
		return nil, fmt.Errorf("failed to get latest terminal update log: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// Update updates an existing update log entry.
func (r *UpdateLogRepositoryImpl) Update(ctx context.Context, log *rollout.UpdateLog) error {
	model, err := r.mapper.ToModel(log)
	if err != nil {
		r.logger.Errorw("failed to map update log entity to model", "error", err)
		return fmt.Errorf("failed to map update log entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).Model(&models.UpdateLogModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"status":        model.Status,
			"error_message": model.ErrorMessage,
			"completed_at":  model.CompletedAt,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update update log", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update update log: %w", result.Error)
	}

	return nil
}

// List retrieves a paginated list of update log entries, newest first.
func (r *UpdateLogRepositoryImpl) List(ctx context.Context, filter rollout.ListFilter) ([]*rollout.UpdateLog, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.UpdateLogModel{})

	if filter.ClientID != 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count update logs", "error", err)
		return nil, 0, fmt.Errorf("failed to count update logs: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	query = query.Order("started_at DESC").Offset(offset).Limit(filter.PageSize)

	var logModels []*models.UpdateLogModel
	if err := query.Find(&logModels).Error; err != nil {
		r.logger.Errorw("failed to list update logs", "error", err)
		return nil, 0, fmt.Errorf("failed to list update logs: %w", err)
	}

	entities, err := r.mapper.ToEntities(logModels)
	if err != nil {
		r.logger.Errorw("failed to map update log models to entities", "error", err)
		return nil, 0, fmt.Errorf("failed to map update logs: %w", err)
	}

	return entities, total, nil
}
