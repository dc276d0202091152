package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(models.All()...)
}

// Transaction runs fn against a repo bound to a single database transaction.
// Everything fn does is committed together or rolled back together.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}
