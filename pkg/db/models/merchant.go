package models

import (
	"time"

	"github.com/google/uuid"
)

// Merchant holds the running balance owed to (positive) or by (negative) the merchant.
type Merchant struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	Name             string    `gorm:"column:name;not null" json:"name"`
	BalanceCents     int       `gorm:"column:balance_cents;not null;default:0" json:"balance_cents"`
	TotalEarnedCents int       `gorm:"column:total_earned_cents;not null;default:0" json:"total_earned_cents"`
	BaseFeeCents     int       `gorm:"column:base_fee_cents;not null;default:0" json:"base_fee_cents"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
