package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

func (r *GormRepo) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var acc models.Account
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// CreateAccountIfNotExists reports created=false when the email is taken.
func (r *GormRepo) CreateAccountIfNotExists(ctx context.Context, acc *models.Account) (bool, error) {
	res := r.DB.WithContext(ctx).Where("email = ?", acc.Email).FirstOrCreate(acc)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) ActivateAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	res := r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": true, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetAccount(ctx, id)
}

// ListActiveDealersByPinCode orders by name then id so repeated lookups
// return the same sequence.
func (r *GormRepo) ListActiveDealersByPinCode(ctx context.Context, pinCode string) ([]models.Account, error) {
	var dealers []models.Account
	if err := r.DB.WithContext(ctx).
		Where("role = ? AND is_active = ? AND pin_code = ?", models.RoleDealer, true, pinCode).
		Order("name ASC").
		Order("id ASC").
		Find(&dealers).Error; err != nil {
		return nil, err
	}
	return dealers, nil
}
