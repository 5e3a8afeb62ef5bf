package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/courierdesk-backend/internal/ledger"
	"github.com/angelmondragon/courierdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/courierdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LowStock describes a product whose stock fell to or below its threshold.
type LowStock struct {
	ProductID  uuid.UUID
	MerchantID uuid.UUID
	Name       string
	StockQty   int
	Threshold  int
}

// Adjuster applies line item quantities to product stock.
type Adjuster struct {
	repo Repository
	now  func() time.Time
}

func NewAdjuster(repo Repository) (*Adjuster, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &Adjuster{repo: repo, now: time.Now}, nil
}

// Apply moves stock for every billable line item in the given direction using
// tx. Free items are skipped. Products are updated in ascending id order so
// concurrent deliveries lock rows in the same sequence. On a forward crossing
// the products that just reached their low stock threshold are returned.
func (a *Adjuster) Apply(ctx context.Context, tx *gorm.DB, items []models.OrderLineItem, d ledger.Direction) ([]LowStock, error) {
	totals, err := aggregate(items)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	repo := a.repo.WithTx(tx)
	now := a.now().UTC()

	for _, id := range ids {
		qty := totals[id]
		switch d {
		case ledger.Forward:
			ok, err := repo.Deduct(ctx, id, qty, now)
			if err != nil {
				return nil, fmt.Errorf("deduct stock: %w", err)
			}
			if !ok {
				return nil, a.deductFailure(ctx, repo, id, qty)
			}
		case ledger.Reverse:
			ok, err := repo.Restore(ctx, id, qty, now)
			if err != nil {
				return nil, fmt.Errorf("restore stock: %w", err)
			}
			if !ok {
				return nil, productNotFound(id)
			}
		default:
			return nil, fmt.Errorf("invalid direction %d", d)
		}
	}

	if d != ledger.Forward {
		return nil, nil
	}

	products, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load adjusted products: %w", err)
	}
	var low []LowStock
	for _, p := range products {
		if p.LowStockThreshold <= 0 {
			continue
		}
		before := p.StockQty + totals[p.ID]
		if p.StockQty <= p.LowStockThreshold && before > p.LowStockThreshold {
			low = append(low, LowStock{
				ProductID:  p.ID,
				MerchantID: p.MerchantID,
				Name:       p.Name,
				StockQty:   p.StockQty,
				Threshold:  p.LowStockThreshold,
			})
		}
	}
	return low, nil
}

func (a *Adjuster) deductFailure(ctx context.Context, repo Repository, id uuid.UUID, qty int) error {
	product, err := repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return productNotFound(id)
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"product_id": id,
			"requested":  qty,
			"available":  product.StockQty,
		})
}

func aggregate(items []models.OrderLineItem) (map[uuid.UUID]int, error) {
	totals := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if item.IsFree {
			continue
		}
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be positive").
				WithDetails(map[string]any{"line_item_id": item.ID})
		}
		totals[item.ProductID] += item.Qty
	}
	return totals, nil
}

func productNotFound(id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
		WithDetails(map[string]any{"product_id": id})
}
