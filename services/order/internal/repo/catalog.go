package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) SetProductApproval(ctx context.Context, id uuid.UUID, approved, active bool) (*models.Product, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_approved": approved,
			"is_active":   active,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetProduct(ctx, id)
}

func (r *GormRepo) UpdateProductPricing(ctx context.Context, id uuid.UUID, dealerPrice, customerPrice, commission decimal.Decimal) (*models.Product, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"dealer_price":   dealerPrice,
			"customer_price": customerPrice,
			"commission":     commission,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetProduct(ctx, id)
}

// ListProductsByDealers loads the catalogs of several dealers in one query,
// grouped by dealer and in each dealer's catalog order.
func (r *GormRepo) ListProductsByDealers(ctx context.Context, dealerIDs []uuid.UUID) (map[uuid.UUID][]models.Product, error) {
	out := make(map[uuid.UUID][]models.Product, len(dealerIDs))
	if len(dealerIDs) == 0 {
		return out, nil
	}

	var products []models.Product
	if err := r.DB.WithContext(ctx).
		Where("dealer_id IN ?", dealerIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.DealerID] = append(out[p.DealerID], p)
	}
	return out, nil
}
