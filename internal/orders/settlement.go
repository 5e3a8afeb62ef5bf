package orders

import (
	"github.com/angelmondragon/courierdesk-backend/internal/ledger"
	"github.com/angelmondragon/courierdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/courierdesk-backend/pkg/errors"
)

// currentSettlement reads the amounts in force right now: the order total and
// payment method plus the merchant and courier fees from their records.
func currentSettlement(order *models.Order) (ledger.Settlement, error) {
	if order.Merchant == nil {
		return ledger.Settlement{}, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found").
			WithDetails(map[string]any{"merchant_id": order.MerchantID})
	}
	s := ledger.Settlement{
		TotalCents:       order.TotalCents,
		PaymentMethod:    order.PaymentMethod,
		MerchantID:       order.MerchantID,
		MerchantFeeCents: order.Merchant.BaseFeeCents,
		Courier:          ledger.Unassigned{},
	}
	if order.CourierID != nil {
		if order.Courier == nil {
			return ledger.Settlement{}, pkgerrors.New(pkgerrors.CodeNotFound, "courier not found").
				WithDetails(map[string]any{"courier_id": *order.CourierID})
		}
		s.Courier = ledger.Assigned{CourierID: *order.CourierID, BaseFeeCents: order.Courier.BaseFeeCents}
	}
	return s, nil
}

// snapshotSettlement rebuilds the settlement captured when the order entered
// delivered. ok is false for orders delivered before snapshots were recorded.
func snapshotSettlement(order *models.Order) (ledger.Settlement, bool) {
	if order.SettledTotalCents == nil || order.SettledPaymentMethod == nil || order.SettledMerchantFeeCents == nil {
		return ledger.Settlement{}, false
	}
	s := ledger.Settlement{
		TotalCents:       *order.SettledTotalCents,
		PaymentMethod:    *order.SettledPaymentMethod,
		MerchantID:       order.MerchantID,
		MerchantFeeCents: *order.SettledMerchantFeeCents,
		Courier:          ledger.Unassigned{},
	}
	if order.SettledCourierID != nil {
		fee := 0
		if order.SettledCourierFeeCents != nil {
			fee = *order.SettledCourierFeeCents
		}
		s.Courier = ledger.Assigned{CourierID: *order.SettledCourierID, BaseFeeCents: fee}
	}
	return s, true
}

func snapshotColumns(s ledger.Settlement) map[string]any {
	cols := map[string]any{
		"settled_total_cents":        s.TotalCents,
		"settled_payment_method":     s.PaymentMethod,
		"settled_merchant_fee_cents": s.MerchantFeeCents,
		"settled_courier_id":         nil,
		"settled_courier_fee_cents":  nil,
	}
	if c, ok := s.Courier.(ledger.Assigned); ok {
		cols["settled_courier_id"] = c.CourierID
		cols["settled_courier_fee_cents"] = c.BaseFeeCents
	}
	return cols
}

func clearedSnapshotColumns() map[string]any {
	return map[string]any{
		"settled_total_cents":        nil,
		"settled_payment_method":     nil,
		"settled_merchant_fee_cents": nil,
		"settled_courier_id":         nil,
		"settled_courier_fee_cents":  nil,
	}
}

// applySnapshot mirrors snapshotColumns onto the in-memory order.
func applySnapshot(order *models.Order, s *ledger.Settlement) {
	if s == nil {
		order.SettledTotalCents = nil
		order.SettledPaymentMethod = nil
		order.SettledMerchantFeeCents = nil
		order.SettledCourierID = nil
		order.SettledCourierFeeCents = nil
		return
	}
	total, method, fee := s.TotalCents, s.PaymentMethod, s.MerchantFeeCents
	order.SettledTotalCents = &total
	order.SettledPaymentMethod = &method
	order.SettledMerchantFeeCents = &fee
	order.SettledCourierID = nil
	order.SettledCourierFeeCents = nil
	if c, ok := s.Courier.(ledger.Assigned); ok {
		id, courierFee := c.CourierID, c.BaseFeeCents
		order.SettledCourierID = &id
		order.SettledCourierFeeCents = &courierFee
	}
}
