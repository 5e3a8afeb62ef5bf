package ledger

import (
	"context"
	"time"

	"github.com/angelmondragon/courierdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for balances and ledger events. Nothing
// outside this package writes merchant or courier balance columns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	AdjustMerchant(ctx context.Context, delta MerchantDelta, now time.Time) (bool, error)
	AdjustCourier(ctx context.Context, delta CourierDelta, now time.Time) (bool, error)
	CreateEvent(ctx context.Context, event *models.LedgerEvent) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// AdjustMerchant adds the delta in place and reports whether the merchant exists.
func (r *repository) AdjustMerchant(ctx context.Context, delta MerchantDelta, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Merchant{}).
		Where("id = ?", delta.MerchantID).
		UpdateColumns(map[string]any{
			"balance_cents":      gorm.Expr("balance_cents + ?", delta.BalanceCents),
			"total_earned_cents": gorm.Expr("total_earned_cents + ?", delta.TotalEarnedCents),
			"updated_at":         now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AdjustCourier adds the delta in place and reports whether the courier exists.
func (r *repository) AdjustCourier(ctx context.Context, delta CourierDelta, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ?", delta.CourierID).
		UpdateColumns(map[string]any{
			"pending_earnings_cents": gorm.Expr("pending_earnings_cents + ?", delta.PendingEarningsCents),
			"pending_cod_cents":      gorm.Expr("pending_cod_cents + ?", delta.PendingCODCents),
			"total_deliveries":       gorm.Expr("total_deliveries + ?", delta.TotalDeliveries),
			"successful_deliveries":  gorm.Expr("successful_deliveries + ?", delta.SuccessfulDeliveries),
			"updated_at":             now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CreateEvent(ctx context.Context, event *models.LedgerEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEvent, error) {
	var events []models.LedgerEvent
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
