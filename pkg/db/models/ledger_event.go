package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
)

// LedgerEvent records an immutable balance movement tied to a delivery crossing.
type LedgerEvent struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID             `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	MerchantID  uuid.UUID             `gorm:"column:merchant_id;type:uuid;not null" json:"merchant_id"`
	CourierID   *uuid.UUID            `gorm:"column:courier_id;type:uuid" json:"courier_id,omitempty"`
	ActorUserID *uuid.UUID            `gorm:"column:actor_user_id;type:uuid" json:"actor_user_id,omitempty"`
	Type        enums.LedgerEventType `gorm:"column:type;type:ledger_event_type;not null" json:"type"`
	AmountCents int                   `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Metadata    json.RawMessage       `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
