package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/courierdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the only writer of product stock columns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Deduct(ctx context.Context, productID uuid.UUID, qty int, now time.Time) (bool, error)
	Restore(ctx context.Context, productID uuid.UUID, qty int, now time.Time) (bool, error)
	FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Deduct moves qty units from stock into the delivered count. It reports false
// when the product is missing or holds fewer than qty units.
func (r *repository) Deduct(ctx context.Context, productID uuid.UUID, qty int, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_qty >= ?", productID, qty).
		UpdateColumns(map[string]any{
			"stock_qty":       gorm.Expr("stock_qty - ?", qty),
			"delivered_count": gorm.Expr("delivered_count + ?", qty),
			"updated_at":      now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Restore moves qty units from the delivered count back into stock.
func (r *repository) Restore(ctx context.Context, productID uuid.UUID, qty int, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]any{
			"stock_qty":       gorm.Expr("stock_qty + ?", qty),
			"delivered_count": gorm.Expr("delivered_count - ?", qty),
			"updated_at":      now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByIDs(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", productIDs).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
