package enums

import "fmt"

// OrderStatus tracks the lifecycle of a delivery order.
type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "pending"
	OrderStatusAccepted           OrderStatus = "accepted"
	OrderStatusAssignedToDelivery OrderStatus = "assigned_to_delivery"
	OrderStatusInTransit          OrderStatus = "in_transit"
	OrderStatusDelivered          OrderStatus = "delivered"
	OrderStatusReported           OrderStatus = "reported"
	OrderStatusRejected           OrderStatus = "rejected"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAccepted,
	OrderStatusAssignedToDelivery,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusReported,
	OrderStatusRejected,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// DeliveryClass buckets statuses by whether delivery side effects are in force.
type DeliveryClass int

const (
	NotDelivered DeliveryClass = iota
	Delivered
)

func (c DeliveryClass) String() string {
	if c == Delivered {
		return "delivered"
	}
	return "not_delivered"
}

// Class maps every status onto its delivery class. The switch is exhaustive
// so adding a status without classifying it panics in tests.
func (s OrderStatus) Class() DeliveryClass {
	switch s {
	case OrderStatusDelivered:
		return Delivered
	case OrderStatusPending,
		OrderStatusAccepted,
		OrderStatusAssignedToDelivery,
		OrderStatusInTransit,
		OrderStatusReported,
		OrderStatusRejected,
		OrderStatusCancelled:
		return NotDelivered
	default:
		panic(fmt.Sprintf("unclassified order status %q", string(s)))
	}
}

// AllOrderStatuses returns a copy of the canonical status list.
func AllOrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
}
