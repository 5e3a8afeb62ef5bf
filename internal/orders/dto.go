package orders

import (
	"time"

	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// TransitionInput requests a status change on an order. When ExpectedVersion
// is set the change only applies if the locked order still carries that
// version; otherwise it is CONCURRENT_MODIFICATION.
type TransitionInput struct {
	OrderID         uuid.UUID
	TargetStatus    enums.OrderStatus
	ActorUserID     uuid.UUID
	ExpectedVersion *int
}

// AssignCourierInput hands an order to a courier for a delivery date.
type AssignCourierInput struct {
	OrderID      uuid.UUID
	CourierID    uuid.UUID
	DeliveryDate time.Time
	ActorUserID  uuid.UUID
}

// RescheduleInput moves the delivery date of an order.
type RescheduleInput struct {
	OrderID      uuid.UUID
	DeliveryDate time.Time
	Reason       *string
	ActorUserID  uuid.UUID
}

// Crossing labels how a transition relates to the delivered boundary.
type Crossing string

const (
	CrossingNone    Crossing = "none"
	CrossingForward Crossing = "forward"
	CrossingReverse Crossing = "reverse"
)
