package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
)

// Order is the aggregate root driven through the delivery lifecycle.
type Order struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code                 string              `gorm:"column:code;not null" json:"code"`
	CustomerName         string              `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerPhone        string              `gorm:"column:customer_phone;not null" json:"customer_phone"`
	CustomerAddress      string              `gorm:"column:customer_address;not null" json:"customer_address"`
	CityID               *uuid.UUID          `gorm:"column:city_id;type:uuid" json:"city_id,omitempty"`
	TotalCents           int                 `gorm:"column:total_cents;not null" json:"total_cents"`
	PaymentMethod        enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null" json:"payment_method"`
	Status               enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'" json:"status"`
	MerchantID           uuid.UUID           `gorm:"column:merchant_id;type:uuid;not null" json:"merchant_id"`
	CourierID            *uuid.UUID          `gorm:"column:courier_id;type:uuid" json:"courier_id,omitempty"`
	DeliveredAt          *time.Time          `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	DeliveryDate         *time.Time          `gorm:"column:delivery_date" json:"delivery_date,omitempty"`
	PreviousDeliveryDate *time.Time          `gorm:"column:previous_delivery_date" json:"previous_delivery_date,omitempty"`
	RescheduleReason     *string             `gorm:"column:reschedule_reason" json:"reschedule_reason,omitempty"`
	Version              int                 `gorm:"column:version;not null;default:1" json:"version"`

	// Settlement snapshot, present only while the order is delivered.
	SettledTotalCents       *int                 `gorm:"column:settled_total_cents" json:"settled_total_cents,omitempty"`
	SettledPaymentMethod    *enums.PaymentMethod `gorm:"column:settled_payment_method;type:payment_method" json:"settled_payment_method,omitempty"`
	SettledMerchantFeeCents *int                 `gorm:"column:settled_merchant_fee_cents" json:"settled_merchant_fee_cents,omitempty"`
	SettledCourierID        *uuid.UUID           `gorm:"column:settled_courier_id;type:uuid" json:"settled_courier_id,omitempty"`
	SettledCourierFeeCents  *int                 `gorm:"column:settled_courier_fee_cents" json:"settled_courier_fee_cents,omitempty"`

	Items     []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Merchant  *Merchant       `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
	Courier   *Courier        `gorm:"foreignKey:CourierID" json:"courier,omitempty"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
