package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
)

// Notification stores in-app notification payloads addressed to a user.
type Notification struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecipientUserID uuid.UUID              `gorm:"column:recipient_user_id;type:uuid;not null" json:"recipient_user_id"`
	Type            enums.NotificationType `gorm:"column:type;type:notification_type;not null" json:"type"`
	Title           string                 `gorm:"column:title;type:text;not null" json:"title"`
	Message         string                 `gorm:"column:message;type:text;not null" json:"message"`
	OrderID         *uuid.UUID             `gorm:"column:order_id;type:uuid" json:"order_id,omitempty"`
	ReadAt          *time.Time             `gorm:"column:read_at;type:timestamptz" json:"read_at,omitempty"`
	CreatedAt       time.Time              `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
}
