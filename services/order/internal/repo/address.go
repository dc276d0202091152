package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

func (r *GormRepo) CreateAddress(ctx context.Context, addr *models.Address) (*models.Address, error) {
	if err := r.DB.WithContext(ctx).Create(addr).Error; err != nil {
		return nil, err
	}
	return addr, nil
}

func (r *GormRepo) GetAddress(ctx context.Context, customerID, id uuid.UUID) (*models.Address, error) {
	var addr models.Address
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

func (r *GormRepo) GetDefaultAddress(ctx context.Context, customerID uuid.UUID) (*models.Address, error) {
	var addr models.Address
	if err := r.DB.WithContext(ctx).
		Where("customer_id = ? AND is_default = ?", customerID, true).
		First(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

func (r *GormRepo) ListAddresses(ctx context.Context, customerID uuid.UUID) ([]models.Address, error) {
	var addrs []models.Address
	if err := r.DB.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&addrs).Error; err != nil {
		return nil, err
	}
	return addrs, nil
}

// ClearDefaultAddresses unsets the default flag on every address of the
// customer. Pair it with MarkDefaultAddress inside one transaction.
func (r *GormRepo) ClearDefaultAddresses(ctx context.Context, customerID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Address{}).
		Where("customer_id = ? AND is_default = ?", customerID, true).
		Update("is_default", false).Error
}

func (r *GormRepo) MarkDefaultAddress(ctx context.Context, customerID, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&models.Address{}).
		Where("id = ? AND customer_id = ?", id, customerID).
		Update("is_default", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
