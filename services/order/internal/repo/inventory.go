package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

// DecrementStock subtracts qty from the product's stock in one conditional
// UPDATE. It reports false when the row did not qualify: missing, inactive,
// unapproved, or short on stock. No read-modify-write happens in Go.
func (r *GormRepo) DecrementStock(ctx context.Context, productID uuid.UUID, qty int64) (bool, error) {
	if qty < 1 {
		return false, fmt.Errorf("decrement stock: quantity %d must be positive", qty)
	}
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ? AND is_active = ? AND is_approved = ?", productID, qty, true, true).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
