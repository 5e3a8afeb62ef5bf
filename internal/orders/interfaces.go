package orders

import (
	"context"

	"github.com/angelmondragon/courierdesk-backend/internal/inventory"
	"github.com/angelmondragon/courierdesk-backend/internal/ledger"
	"github.com/angelmondragon/courierdesk-backend/internal/notifications"
	"github.com/angelmondragon/courierdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindCourier(ctx context.Context, courierID uuid.UUID) (*models.Courier, error)
	CompareAndSwap(ctx context.Context, orderID uuid.UUID, version int, updates map[string]any) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LedgerApplier writes balance effects inside the order transaction.
type LedgerApplier interface {
	Apply(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, actorID *uuid.UUID, eff ledger.Effects) (*models.LedgerEvent, error)
}

// StockAdjuster moves product stock inside the order transaction.
type StockAdjuster interface {
	Apply(ctx context.Context, tx *gorm.DB, items []models.OrderLineItem, d ledger.Direction) ([]inventory.LowStock, error)
}

// Notifier receives notices once the order transaction has committed.
type Notifier interface {
	Notify(ctx context.Context, notices ...notifications.Notice)
}
