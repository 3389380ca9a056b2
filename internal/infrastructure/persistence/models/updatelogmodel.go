package models

import (
	"time"

	"github.com/drover-dev/drover/internal/shared/constants"
)

// UpdateLogModel represents the database persistence model for update ledger
// entries. Terminal rows are never edited.
type UpdateLogModel struct {
	ID           uint    `gorm:"primarykey"`
	SID          string  `gorm:"column:sid;not null;size:20;uniqueIndex:idx_update_log_sid"` // Stripe-style prefixed ID (upd_xxx)
	ClientID     uint    `gorm:"not null;index:idx_update_log_client_status,priority:1"`
	FromVersion  *string `gorm:"size:64"`
	ToVersion    string  `gorm:"not null;size:64"`
	Status       string  `gorm:"not null;default:pending;size:20;index:idx_update_log_client_status,priority:2"`
	IsRollback   bool    `gorm:"not null;default:false"`
	ErrorMessage *string `gorm:"type:text"`
	StartedAt    time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM.
func (UpdateLogModel) TableName() string {
	return constants.TableUpdateLogs
}
