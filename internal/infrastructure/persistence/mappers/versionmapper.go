package mappers

import (
	"fmt"

	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/infrastructure/persistence/models"
)

// VersionMapper handles the conversion between domain entities and persistence models.
type VersionMapper interface {
	// ToEntity converts a persistence model to a domain entity.
	ToEntity(model *models.VersionModel) (*release.Version, error)

	// ToModel converts a domain entity to a persistence model.
	ToModel(entity *release.Version) (*models.VersionModel, error)

	// ToEntities converts multiple persistence models to domain entities.
	ToEntities(models []*models.VersionModel) ([]*release.Version, error)
}

// VersionMapperImpl is the concrete implementation of VersionMapper.
type VersionMapperImpl struct{}

// NewVersionMapper creates a new version mapper.
func NewVersionMapper() VersionMapper {
	return &VersionMapperImpl{}
}

// ToEntity converts a persistence model to a domain entity.
func (m *VersionMapperImpl) ToEntity(model *models.VersionModel) (*release.Version, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := release.ReconstructVersion(
		model.ID,
		model.SID,
		model.Version,
		model.Checksum,
		model.Size,
		model.ArtifactPath,
		model.ReleaseNotes,
		model.IsActive,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct version entity: %w", err)
	}

	return entity, nil
}

// ToModel converts a domain entity to a persistence model.
func (m *VersionMapperImpl) ToModel(entity *release.Version) (*models.VersionModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.VersionModel{
		ID:           entity.ID(),
		SID:          entity.SID(),
		Version:      entity.Version(),
		Checksum:     entity.Checksum(),
		Size:         entity.Size(),
		ArtifactPath: entity.ArtifactPath(),
		ReleaseNotes: entity.ReleaseNotes(),
		IsActive:     entity.IsActive(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities.
func (m *VersionMapperImpl) ToEntities(versionModels []*models.VersionModel) ([]*release.Version, error) {
	entities := make([]*release.Version, 0, len(versionModels))
	for _, model := range versionModels {
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
