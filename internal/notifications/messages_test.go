package notifications

import (
	"strings"
	"testing"

	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestFormatCents(t *testing.T) {
	require.Equal(t, "12.34", FormatCents(1234))
	require.Equal(t, "0.05", FormatCents(5))
	require.Equal(t, "-0.10", FormatCents(-10))
	require.Equal(t, "90.00", FormatCents(9000))
}

func TestDeliveredNotices_CashOnDelivery(t *testing.T) {
	merchantUser := uuid.New()
	courierUser := uuid.New()
	notices := DeliveredNotices(DeliveryNoticeInput{
		OrderID:              uuid.New(),
		OrderCode:            "ORD-1",
		PaymentMethod:        enums.PaymentMethodCashOnDelivery,
		TotalCents:           10000,
		MerchantUserID:       merchantUser,
		MerchantFeeCents:     1000,
		MerchantBalanceDelta: 9000,
		Courier:              &CourierCredit{UserID: courierUser, FeeCents: 1500, CODCents: 10000},
	})
	require.Len(t, notices, 2)
	require.Equal(t, merchantUser, notices[0].RecipientUserID)
	require.Contains(t, notices[0].Message, "credited 90.00")
	require.Equal(t, courierUser, notices[1].RecipientUserID)
	require.Contains(t, notices[1].Message, "+15.00")
	require.Contains(t, notices[1].Message, "100.00")
	require.NotNil(t, notices[1].OrderID)
}

func TestDeliveredNotices_PrepaidWithoutCourier(t *testing.T) {
	notices := DeliveredNotices(DeliveryNoticeInput{
		OrderID:              uuid.New(),
		OrderCode:            "ORD-2",
		PaymentMethod:        enums.PaymentMethodPrepaid,
		TotalCents:           10000,
		MerchantUserID:       uuid.New(),
		MerchantFeeCents:     1000,
		MerchantBalanceDelta: -1000,
	})
	require.Len(t, notices, 1)
	require.Contains(t, notices[0].Message, "platform fee of 10.00")
}

func TestDeliveredNotices_PrepaidCourierHasNoCashLine(t *testing.T) {
	notices := DeliveredNotices(DeliveryNoticeInput{
		OrderID:        uuid.New(),
		OrderCode:      "ORD-3",
		PaymentMethod:  enums.PaymentMethodPrepaid,
		MerchantUserID: uuid.New(),
		Courier:        &CourierCredit{UserID: uuid.New(), FeeCents: 500},
	})
	require.Len(t, notices, 2)
	require.False(t, strings.Contains(notices[1].Message, "cash"))
}

func TestReversedNotices(t *testing.T) {
	notices := ReversedNotices(DeliveryNoticeInput{
		OrderID:              uuid.New(),
		OrderCode:            "ORD-4",
		MerchantUserID:       uuid.New(),
		MerchantBalanceDelta: 9000,
		Courier:              &CourierCredit{UserID: uuid.New(), FeeCents: 1500},
	}, enums.OrderStatusReported)
	require.Len(t, notices, 2)
	require.Contains(t, notices[0].Message, "reported")
	require.Contains(t, notices[1].Message, "-15.00")
}

func TestAssignedAndLowStockNotices(t *testing.T) {
	courierUser := uuid.New()
	assigned := AssignedNotice(uuid.New(), "ORD-5", courierUser, "2026-03-01")
	require.Equal(t, enums.NotificationTypeAssignment, assigned.Type)
	require.Equal(t, courierUser, assigned.RecipientUserID)
	require.Contains(t, assigned.Message, "2026-03-01")

	low := LowStockNotice(uuid.New(), "Widget", 2, 5)
	require.Equal(t, enums.NotificationTypeStockAlert, low.Type)
	require.Nil(t, low.OrderID)
	require.Contains(t, low.Message, "2 units left")
}
