package notifications

import (
	"fmt"

	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CourierCredit describes what a courier earned (or lost) on a crossing.
type CourierCredit struct {
	UserID   uuid.UUID
	FeeCents int
	CODCents int
}

// DeliveryNoticeInput carries the settled amounts of a delivery crossing.
type DeliveryNoticeInput struct {
	OrderID              uuid.UUID
	OrderCode            string
	PaymentMethod        enums.PaymentMethod
	TotalCents           int
	MerchantUserID       uuid.UUID
	MerchantFeeCents     int
	MerchantBalanceDelta int
	Courier              *CourierCredit
}

// DeliveredNotices builds the notices sent when an order enters delivered.
func DeliveredNotices(in DeliveryNoticeInput) []Notice {
	orderID := in.OrderID
	var notices []Notice

	merchant := Notice{
		RecipientUserID: in.MerchantUserID,
		Type:            enums.NotificationTypeOrderAlert,
		Title:           fmt.Sprintf("Order %s delivered", in.OrderCode),
		OrderID:         &orderID,
	}
	switch in.PaymentMethod {
	case enums.PaymentMethodCashOnDelivery:
		merchant.Message = fmt.Sprintf("Order %s was delivered. Your balance was credited %s.", in.OrderCode, FormatCents(in.MerchantBalanceDelta))
	case enums.PaymentMethodPrepaid:
		merchant.Message = fmt.Sprintf("Order %s was delivered. A platform fee of %s was charged to your balance.", in.OrderCode, FormatCents(in.MerchantFeeCents))
	}
	if merchant.Message != "" {
		notices = append(notices, merchant)
	}

	if in.Courier != nil {
		msg := fmt.Sprintf("Delivery of order %s was successful. Pending earnings +%s.", in.OrderCode, FormatCents(in.Courier.FeeCents))
		if in.Courier.CODCents > 0 {
			msg += fmt.Sprintf(" Collected cash on delivery: %s.", FormatCents(in.Courier.CODCents))
		}
		notices = append(notices, Notice{
			RecipientUserID: in.Courier.UserID,
			Type:            enums.NotificationTypeOrderAlert,
			Title:           fmt.Sprintf("Order %s delivered", in.OrderCode),
			Message:         msg,
			OrderID:         &orderID,
		})
	}
	return notices
}

// ReversedNotices builds the notices sent when a delivered order is reverted.
func ReversedNotices(in DeliveryNoticeInput, newStatus enums.OrderStatus) []Notice {
	orderID := in.OrderID
	title := fmt.Sprintf("Order %s delivery reverted", in.OrderCode)
	merchantMsg := fmt.Sprintf("Order %s moved back to %s. Balance adjustment of %s was reversed.",
		in.OrderCode, newStatus, FormatCents(in.MerchantBalanceDelta))

	notices := []Notice{{
		RecipientUserID: in.MerchantUserID,
		Type:            enums.NotificationTypeOrderAlert,
		Title:           title,
		Message:         merchantMsg,
		OrderID:         &orderID,
	}}
	if in.Courier != nil {
		courierMsg := fmt.Sprintf("Order %s moved back to %s. Pending earnings -%s.",
			in.OrderCode, newStatus, FormatCents(in.Courier.FeeCents))
		notices = append(notices, Notice{
			RecipientUserID: in.Courier.UserID,
			Type:            enums.NotificationTypeOrderAlert,
			Title:           title,
			Message:         courierMsg,
			OrderID:         &orderID,
		})
	}
	return notices
}

// AssignedNotice tells a courier about a new order.
func AssignedNotice(orderID uuid.UUID, orderCode string, courierUserID uuid.UUID, deliveryDate string) Notice {
	return Notice{
		RecipientUserID: courierUserID,
		Type:            enums.NotificationTypeAssignment,
		Title:           "New order assigned",
		Message:         fmt.Sprintf("Order %s was assigned to you. Delivery date: %s.", orderCode, deliveryDate),
		OrderID:         &orderID,
	}
}

// LowStockNotice warns a merchant that a product is running out.
func LowStockNotice(merchantUserID uuid.UUID, productName string, stock, threshold int) Notice {
	return Notice{
		RecipientUserID: merchantUserID,
		Type:            enums.NotificationTypeStockAlert,
		Title:           fmt.Sprintf("%s is low on stock", productName),
		Message:         fmt.Sprintf("%s has %d units left (threshold %d).", productName, stock, threshold),
	}
}

// FormatCents renders an amount in cents as a decimal string, e.g. 1234 -> "12.34".
func FormatCents(cents int) string {
	return decimal.New(int64(cents), -2).StringFixed(2)
}
