package orders

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/courierdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindForUpdate loads the order with its line items, merchant and courier and
// holds a row lock on the order until the surrounding transaction ends.
// Returns nil when the order does not exist.
func (r *repository) FindForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Preload("Merchant").
		Preload("Courier").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Merchant").
		Preload("Courier").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindCourier(ctx context.Context, courierID uuid.UUID) (*models.Courier, error) {
	var courier models.Courier
	err := r.db.WithContext(ctx).Where("id = ?", courierID).First(&courier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &courier, nil
}

// CompareAndSwap applies updates only if the stored version still equals
// version, bumping it by one. It reports false when another writer got there
// first.
func (r *repository) CompareAndSwap(ctx context.Context, orderID uuid.UUID, version int, updates map[string]any) (bool, error) {
	values := make(map[string]any, len(updates)+2)
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")
	if _, ok := values["updated_at"]; !ok {
		values["updated_at"] = time.Now().UTC()
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", orderID, version).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
