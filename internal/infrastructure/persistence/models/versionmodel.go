package models

import (
	"time"

	"github.com/drover-dev/drover/internal/shared/constants"
)

// VersionModel represents the database persistence model for published versions.
// Rows are immutable except for the is_active flag.
type VersionModel struct {
	ID           uint   `gorm:"primarykey"`
	SID          string `gorm:"column:sid;not null;size:20;uniqueIndex:idx_version_sid"` // Stripe-style prefixed ID (ver_xxx)
	Version      string `gorm:"not null;size:64;uniqueIndex:idx_version_version"`
	Checksum     string `gorm:"not null;size:64"` // hex SHA-256 of the artifact bytes
	Size         int64  `gorm:"not null"`
	ArtifactPath string `gorm:"not null;size:255"`
	ReleaseNotes string `gorm:"type:text"`
	IsActive     bool   `gorm:"not null;default:true;index:idx_version_is_active"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM.
func (VersionModel) TableName() string {
	return constants.TableVersions
}
