package migration

import (
	"github.com/drover-dev/drover/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.ClientModel{},
		&models.VersionModel{},
		&models.UpdateLogModel{},
	}
}
