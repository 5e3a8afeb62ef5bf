package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem captures a product line within an order. Free items are
// promotional and never touch stock or billing.
type OrderLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Qty            int       `gorm:"column:qty;not null" json:"qty"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	IsFree         bool      `gorm:"column:is_free;not null;default:false" json:"is_free"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
