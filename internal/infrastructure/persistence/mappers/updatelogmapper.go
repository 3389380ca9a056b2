package mappers

import (
	"fmt"

	"github.com/drover-dev/drover/internal/domain/rollout"
	"github.com/drover-dev/drover/internal/infrastructure/persistence/models"
)

// UpdateLogMapper handles the conversion between domain entities and persistence models.
type UpdateLogMapper interface {
	// ToEntity converts a persistence model to a domain entity.
	ToEntity(model *models.UpdateLogModel) (*rollout.UpdateLog, error)

	// ToModel converts a domain entity to a persistence model.
	ToModel(entity *rollout.UpdateLog) (*models.UpdateLogModel, error)

	// ToEntities converts multiple persistence models to domain entities.
	ToEntities(models []*models.UpdateLogModel) ([]*rollout.UpdateLog, error)
}

// UpdateLogMapperImpl is the concrete implementation of UpdateLogMapper.
type UpdateLogMapperImpl struct{}

// NewUpdateLogMapper creates a new update log mapper.
func NewUpdateLogMapper() UpdateLogMapper {
	return &UpdateLogMapperImpl{}
}

// ToEntity converts a persistence model to a domain entity.
func (m *UpdateLogMapperImpl) ToEntity(model *models.UpdateLogModel) (*rollout.UpdateLog, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := rollout.ReconstructUpdateLog(
		model.ID,
		model.SID,
		model.ClientID,
		model.FromVersion,
		model.ToVersion,
		rollout.Status(model.Status),
		model.IsRollback,
		model.ErrorMessage,
		model.StartedAt,
		model.CompletedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct update log entity: %w", err)
	}

	return entity, nil
}

// ToModel converts a domain entity to a persistence model.
func (m *UpdateLogMapperImpl) ToModel(entity *rollout.UpdateLog) (*models.UpdateLogModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.UpdateLogModel{
		ID:           entity.ID(),
		SID:          entity.SID(),
		ClientID:     entity.ClientID(),
		FromVersion:  entity.FromVersion(),
		ToVersion:    entity.ToVersion(),
		Status:       string(entity.Status()),
		IsRollback:   entity.IsRollback(),
		ErrorMessage: entity.ErrorMessage(),
		StartedAt:    entity.StartedAt(),
		CompletedAt:  entity.CompletedAt(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities.
func (m *UpdateLogMapperImpl) ToEntities(logModels []*models.UpdateLogModel) ([]*rollout.UpdateLog, error) {
	entities := make([]*rollout.UpdateLog, 0, len(logModels))
	for _, model := range logModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		if entity != nil {
			entities = append(entities, entity)
		}
	}
	return entities, nil
}
