package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/courierdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/courierdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Applier writes an effect bundle inside the caller's transaction.
type Applier struct {
	repo Repository
	now  func() time.Time
}

// NewApplier wires an applier on top of the ledger repository.
func NewApplier(repo Repository) (*Applier, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &Applier{repo: repo, now: time.Now}, nil
}

type eventMetadata struct {
	Direction        string        `json:"direction"`
	PaymentMethod    string        `json:"payment_method"`
	TotalCents       int           `json:"total_cents"`
	MerchantFeeCents int           `json:"merchant_fee_cents"`
	Merchant         MerchantDelta `json:"merchant"`
	Courier          *CourierDelta `json:"courier,omitempty"`
}

// Apply adjusts the merchant and (when assigned) the courier, then records the
// audit event. tx must be the transaction that also writes the order status.
func (a *Applier) Apply(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, actorID *uuid.UUID, eff Effects) (*models.LedgerEvent, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	repo := a.repo.WithTx(tx)
	now := a.now().UTC()

	found, err := repo.AdjustMerchant(ctx, eff.Merchant, now)
	if err != nil {
		return nil, fmt.Errorf("adjust merchant balance: %w", err)
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found").
			WithDetails(map[string]any{"merchant_id": eff.Merchant.MerchantID})
	}

	var courierID *uuid.UUID
	if eff.Courier != nil {
		found, err := repo.AdjustCourier(ctx, *eff.Courier, now)
		if err != nil {
			return nil, fmt.Errorf("adjust courier balance: %w", err)
		}
		if !found {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "courier not found").
				WithDetails(map[string]any{"courier_id": eff.Courier.CourierID})
		}
		id := eff.Courier.CourierID
		courierID = &id
	}

	metadata, err := json.Marshal(eventMetadata{
		Direction:        eff.Direction.String(),
		PaymentMethod:    string(eff.Settlement.PaymentMethod),
		TotalCents:       eff.Settlement.TotalCents,
		MerchantFeeCents: eff.Settlement.MerchantFeeCents,
		Merchant:         eff.Merchant,
		Courier:          eff.Courier,
	})
	if err != nil {
		return nil, fmt.Errorf("encode ledger metadata: %w", err)
	}

	event := &models.LedgerEvent{
		ID:          uuid.New(),
		OrderID:     orderID,
		MerchantID:  eff.Merchant.MerchantID,
		CourierID:   courierID,
		ActorUserID: actorID,
		Type:        eff.EventType(),
		AmountCents: eff.Merchant.BalanceCents,
		Metadata:    metadata,
		CreatedAt:   now,
	}
	if err := repo.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("record ledger event: %w", err)
	}
	return event, nil
}
