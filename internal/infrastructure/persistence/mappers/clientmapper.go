package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/infrastructure/persistence/models"
)

// ClientMapper handles the conversion between domain entities and persistence models.
type ClientMapper interface {
	// ToEntity converts a persistence model to a domain entity.
	ToEntity(model *models.ClientModel) (*fleet.Client, error)

	// ToModel converts a domain entity to a persistence model.
	ToModel(entity *fleet.Client) (*models.ClientModel, error)

	// ToEntities converts multiple persistence models to domain entities.
	ToEntities(models []*models.ClientModel) ([]*fleet.Client, error)
}

// ClientMapperImpl is the concrete implementation of ClientMapper.
type ClientMapperImpl struct{}

// NewClientMapper creates a new client mapper.
func NewClientMapper() ClientMapper {
	return &ClientMapperImpl{}
}

// ToEntity converts a persistence model to a domain entity.
func (m *ClientMapperImpl) ToEntity(model *models.ClientModel) (*fleet.Client, error) {
	if model == nil {
		return nil, nil
	}

	var config fleet.Config
	if len(model.Config) > 0 {
		if err := json.Unmarshal(model.Config, &config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal client config: %w", err)
		}
	}

	entity, err := fleet.ReconstructClient(
		model.ID,
		model.SID,
		model.Name,
		model.TokenHash,
		model.CurrentVersion,
		model.TargetVersion,
		model.LastSeenAt,
		config,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct client entity: %w", err)
	}

	return entity, nil
}

// ToModel converts a domain entity to a persistence model.
func (m *ClientMapperImpl) ToModel(entity *fleet.Client) (*models.ClientModel, error) {
	if entity == nil {
		return nil, nil
	}

	configJSON, err := json.Marshal(entity.Config())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal client config: %w", err)
	}

	return &models.ClientModel{
		ID:             entity.ID(),
		SID:            entity.SID(),
		Name:           entity.Name(),
		TokenHash:      entity.TokenHash(),
		CurrentVersion: entity.CurrentVersion(),
		TargetVersion:  entity.TargetVersion(),
		LastSeenAt:     entity.LastSeenAt(),
		Config:         datatypes.JSON(configJSON),
		CreatedAt:      entity.CreatedAt(),
		UpdatedAt:      entity.UpdatedAt(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities.
func (m *ClientMapperImpl) ToEntities(clientModels []*models.ClientModel) ([]*fleet.Client, error) {
	entities := make([]*fleet.Client, 0, len(clientModels))
	for _, model := range clientModels {
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
