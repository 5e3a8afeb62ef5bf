package ledger

import (
	"fmt"

	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// Direction says whether an order is entering or leaving the delivered state.
type Direction int

const (
	Forward Direction = iota + 1
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// Opposite returns the direction that undoes d.
func (d Direction) Opposite() Direction {
	if d == Forward {
		return Reverse
	}
	return Forward
}

// CourierAssignment is either Assigned or Unassigned.
type CourierAssignment interface {
	isCourierAssignment()
}

// Assigned carries the courier and the per delivery fee credited to them.
type Assigned struct {
	CourierID    uuid.UUID
	BaseFeeCents int
}

// Unassigned means no courier takes part in the settlement.
type Unassigned struct{}

func (Assigned) isCourierAssignment()   {}
func (Unassigned) isCourierAssignment() {}

// Settlement holds the amounts a delivery is settled with. Reversals must use
// the settlement captured at delivery time.
type Settlement struct {
	TotalCents       int
	PaymentMethod    enums.PaymentMethod
	MerchantID       uuid.UUID
	MerchantFeeCents int
	Courier          CourierAssignment
}

type MerchantDelta struct {
	MerchantID       uuid.UUID `json:"merchant_id"`
	BalanceCents     int       `json:"balance_cents"`
	TotalEarnedCents int       `json:"total_earned_cents"`
}

type CourierDelta struct {
	CourierID            uuid.UUID `json:"courier_id"`
	PendingEarningsCents int       `json:"pending_earnings_cents"`
	PendingCODCents      int       `json:"pending_cod_cents"`
	TotalDeliveries      int       `json:"total_deliveries"`
	SuccessfulDeliveries int       `json:"successful_deliveries"`
}

// Effects is the signed balance bundle applied on a delivery boundary crossing.
// Courier is nil when nobody was assigned.
type Effects struct {
	Direction  Direction
	Settlement Settlement
	Merchant   MerchantDelta
	Courier    *CourierDelta
}

// ComputeEffects derives the balance deltas for a crossing. It has no side effects.
func ComputeEffects(s Settlement, d Direction) (Effects, error) {
	if d != Forward && d != Reverse {
		return Effects{}, fmt.Errorf("invalid direction %d", d)
	}
	if s.TotalCents < 0 || s.MerchantFeeCents < 0 {
		return Effects{}, fmt.Errorf("settlement amounts must not be negative")
	}

	merchant := MerchantDelta{
		MerchantID:       s.MerchantID,
		TotalEarnedCents: s.TotalCents,
	}
	switch s.PaymentMethod {
	case enums.PaymentMethodCashOnDelivery:
		merchant.BalanceCents = s.TotalCents - s.MerchantFeeCents
	case enums.PaymentMethodPrepaid:
		merchant.BalanceCents = -s.MerchantFeeCents
	default:
		return Effects{}, fmt.Errorf("invalid payment method %q", s.PaymentMethod)
	}

	var courier *CourierDelta
	switch c := s.Courier.(type) {
	case Assigned:
		if c.BaseFeeCents < 0 {
			return Effects{}, fmt.Errorf("courier fee must not be negative")
		}
		courier = &CourierDelta{
			CourierID:            c.CourierID,
			PendingEarningsCents: c.BaseFeeCents,
			TotalDeliveries:      1,
			SuccessfulDeliveries: 1,
		}
		if s.PaymentMethod == enums.PaymentMethodCashOnDelivery {
			courier.PendingCODCents = s.TotalCents
		}
	case Unassigned, nil:
	default:
		return Effects{}, fmt.Errorf("unsupported courier assignment %T", c)
	}

	eff := Effects{
		Direction:  Forward,
		Settlement: s,
		Merchant:   merchant,
		Courier:    courier,
	}
	if d == Reverse {
		return eff.Negate(), nil
	}
	return eff, nil
}

// Negate returns the exact inverse bundle.
func (e Effects) Negate() Effects {
	out := Effects{
		Direction:  e.Direction.Opposite(),
		Settlement: e.Settlement,
		Merchant: MerchantDelta{
			MerchantID:       e.Merchant.MerchantID,
			BalanceCents:     -e.Merchant.BalanceCents,
			TotalEarnedCents: -e.Merchant.TotalEarnedCents,
		},
	}
	if e.Courier != nil {
		out.Courier = &CourierDelta{
			CourierID:            e.Courier.CourierID,
			PendingEarningsCents: -e.Courier.PendingEarningsCents,
			PendingCODCents:      -e.Courier.PendingCODCents,
			TotalDeliveries:      -e.Courier.TotalDeliveries,
			SuccessfulDeliveries: -e.Courier.SuccessfulDeliveries,
		}
	}
	return out
}

// EventType maps the direction onto the audit event recorded for it.
func (e Effects) EventType() enums.LedgerEventType {
	if e.Direction == Reverse {
		return enums.LedgerEventTypeDeliveryReversed
	}
	return enums.LedgerEventTypeDeliverySettled
}
