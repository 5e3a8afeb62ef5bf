package models

import (
	"time"

	"github.com/google/uuid"
)

// Courier is a delivery man with unsettled earnings and collected cash.
type Courier struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID               uuid.UUID `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	Name                 string    `gorm:"column:name;not null" json:"name"`
	Phone                string    `gorm:"column:phone;not null;default:''" json:"phone"`
	IsActive             bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	BaseFeeCents         int       `gorm:"column:base_fee_cents;not null;default:0" json:"base_fee_cents"`
	PendingEarningsCents int       `gorm:"column:pending_earnings_cents;not null;default:0" json:"pending_earnings_cents"`
	PendingCODCents      int       `gorm:"column:pending_cod_cents;not null;default:0" json:"pending_cod_cents"`
	TotalDeliveries      int       `gorm:"column:total_deliveries;not null;default:0" json:"total_deliveries"`
	SuccessfulDeliveries int       `gorm:"column:successful_deliveries;not null;default:0" json:"successful_deliveries"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
