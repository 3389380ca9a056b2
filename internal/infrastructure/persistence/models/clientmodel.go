package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/drover-dev/drover/internal/shared/constants"
)

// ClientModel represents the database persistence model for managed clients.
type ClientModel struct {
	ID             uint           `gorm:"primarykey"`
	SID            string         `gorm:"column:sid;not null;size:20;uniqueIndex:idx_client_sid"` // Stripe-style prefixed ID (cl_xxx)
	Name           string         `gorm:"not null;size:100;uniqueIndex:idx_client_name"`
	TokenHash      string         `gorm:"not null;size:64;uniqueIndex:idx_client_token_hash"`
	CurrentVersion *string        `gorm:"size:64"` // last version the client reported running
	TargetVersion  *string        `gorm:"size:64"` // version an operator aimed at the client
	LastSeenAt     *time.Time     `gorm:"index:idx_client_last_seen_at"`
	Config         datatypes.JSON `gorm:"column:config"` // client-side apply configuration bag
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM.
func (ClientModel) TableName() string {
	return constants.TableClients
}
