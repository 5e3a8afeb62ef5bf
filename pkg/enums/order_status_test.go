package enums

import "testing"

func TestOrderStatusClassCoversEveryStatus(t *testing.T) {
	for _, status := range AllOrderStatuses() {
		class := status.Class()
		if status == OrderStatusDelivered && class != Delivered {
			t.Fatalf("expected delivered class for %s", status)
		}
		if status != OrderStatusDelivered && class != NotDelivered {
			t.Fatalf("expected not_delivered class for %s, got %s", status, class)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus("assigned_to_delivery")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != OrderStatusAssignedToDelivery {
		t.Fatalf("unexpected status %q", got)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
	if OrderStatus("shipped").IsValid() {
		t.Fatal("unknown status should be invalid")
	}
}

func TestOrderStatusClassPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unclassified status")
		}
	}()
	_ = OrderStatus("teleported").Class()
}

func TestParsePaymentMethod(t *testing.T) {
	if _, err := ParsePaymentMethod("cash_on_delivery"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParsePaymentMethod("cash"); err == nil {
		t.Fatal("expected legacy value to be rejected")
	}
}
