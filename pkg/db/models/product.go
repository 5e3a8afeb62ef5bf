package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a merchant listing with its stock counters.
type Product struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MerchantID        uuid.UUID `gorm:"column:merchant_id;type:uuid;not null" json:"merchant_id"`
	SKU               string    `gorm:"column:sku;not null" json:"sku"`
	Name              string    `gorm:"column:name;not null" json:"name"`
	StockQty          int       `gorm:"column:stock_qty;not null;default:0" json:"stock_qty"`
	DeliveredCount    int       `gorm:"column:delivered_count;not null;default:0" json:"delivered_count"`
	LowStockThreshold int       `gorm:"column:low_stock_threshold;not null;default:0" json:"low_stock_threshold"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
