package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/infrastructure/persistence/mappers"
	"github.com/drover-dev/drover/internal/infrastructure/persistence/models"
	"github.com/drover-dev/drover/internal/shared/db"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// ClientRepositoryImpl implements the fleet.Repository interface.
type ClientRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ClientMapper
	logger logger.Interface
}

// NewClientRepository creates a new client repository instance.
func NewClientRepository(gormDB *gorm.DB, logger logger.Interface) fleet.Repository {
	return &ClientRepositoryImpl{
		db:     gormDB,
		mapper: mappers.NewClientMapper(),
		logger: logger,
	}
}

// Create creates a new client in the database.
func (r *ClientRepositoryImpl) Create(ctx context.Context, client *fleet.Client) error {
	model, err := r.mapper.ToModel(client)
	if err != nil {
		r.logger.Errorw("failed to map client entity to model", "error", err)
		return fmt.Errorf("failed to map client entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return fleet.ErrNameTaken
		}
		r.logger.Errorw("failed to create client in database", "error", err)
		return fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set client ID", "error", err)
		return fmt.Errorf("failed to set client ID: %w", err)
	}

	r.logger.Infow("client created", "id", model.ID, "sid", model.SID, "name", model.Name)
	return nil
}

// GetByID retrieves a client by its internal ID.
func (r *ClientRepositoryImpl) GetByID(ctx context.Context, id uint) (*fleet.Client, error) {
	var model models.ClientModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get client by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetByIDForUpdate retrieves a client by its internal ID with a row lock.
// Inside a transaction this serializes all concurrent update flows for the
// same client; outside one row locks do not exist, so it degrades to a
// plain read.
func (r *ClientRepositoryImpl) GetByIDForUpdate(ctx context.Context, id uint) (*fleet.Client, error) {
	var model models.ClientModel

	query := db.GetTxFromContext(ctx, r.db)
	if db.HasTx(ctx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	if err := query.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get client for update", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get client for update: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetBySID retrieves a client by its public identifier.
func (r *ClientRepositoryImpl) GetBySID(ctx context.Context, sid string) (*fleet.Client, error) {
	var model models.ClientModel

	if err := db.GetTxFromContext(ctx, r.db).Where("sid = ?", sid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get client by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetByTokenHash retrieves a client by bearer token hash.
func (r *ClientRepositoryImpl) GetByTokenHash(ctx context.Context, tokenHash string) (*fleet.Client, error) {
	var model models.ClientModel

	if err := db.GetTxFromContext(ctx, r.db).Where("token_hash = ?", tokenHash).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get client by token hash", "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// Update updates an existing client.
func (r *ClientRepositoryImpl) Update(ctx context.Context, client *fleet.Client) error {
	model, err := r.mapper.ToModel(client)
	if err != nil {
		r.logger.Errorw("failed to map client entity to model", "error", err)
		return fmt.Errorf("failed to map client entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).Model(&models.ClientModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":            model.Name,
			"token_hash":      model.TokenHash,
			"current_version": model.CurrentVersion,
			"target_version":  model.TargetVersion,
			"last_seen_at":    model.LastSeenAt,
			"config":          model.Config,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		if errors.IsDuplicateError(result.Error) {
			return fleet.ErrNameTaken
		}
		r.logger.Errorw("failed to update client", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update client: %w", result.Error)
	}

	// Note: RowsAffected may be 0 when updated values are identical to existing values.

	return nil
}

// Delete soft deletes a client. Update history rows are kept.
func (r *ClientRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.ClientModel{}, id)

	if result.Error != nil {
		r.logger.Errorw("failed to delete client", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete client: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fleet.ErrClientNotFound
	}

	r.logger.Infow("client deleted", "id", id)
	return nil
}

// List retrieves a paginated list of clients with filtering.
func (r *ClientRepositoryImpl) List(ctx context.Context, filter fleet.ListFilter) ([]*fleet.Client, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ClientModel{})

	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count clients", "error", err)
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	query = query.Order("created_at DESC").Offset(offset).Limit(filter.PageSize)

	var clientModels []*models.ClientModel
	if err := query.Find(&clientModels).Error; err != nil {
		r.logger.Errorw("failed to list clients", "error", err)
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	entities, err := r.mapper.ToEntities(clientModels)
	if err != nil {
		r.logger.Errorw("failed to map client models to entities", "error", err)
		return nil, 0, fmt.Errorf("failed to map clients: %w", err)
	}

	return entities, total, nil
}

// UpdateLastSeen persists check-in recency for a client. The reported version
// only overwrites current_version when the agent actually sent one.
func (r *ClientRepositoryImpl) UpdateLastSeen(ctx context.Context, id uint, seenAt time.Time, currentVersion *string) error {
	updates := map[string]any{
		"last_seen_at": seenAt,
	}
	if currentVersion != nil {
		updates["current_version"] = *currentVersion
	}

	result := db.GetTxFromContext(ctx, r.db).Model(&models.ClientModel{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		r.logger.Errorw("failed to update client last_seen_at", "id", id, "error", result.Error)
		return fmt.Errorf("failed to update last_seen_at: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fleet.ErrClientNotFound
	}

	r.logger.Debugw("client last_seen_at updated", "id", id)
	return nil
}
