package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

type OrderFilter struct {
	CustomerID *uuid.UUID
	DealerID   *uuid.UUID
	Status     models.OrderStatus
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") })
}

// CreateOrder inserts the order together with its embedded items and the
// timeline entries already attached to it.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := withDetails(r.DB.WithContext(ctx)).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if len(ids) == 0 {
		return orders, nil
	}
	if err := withDetails(r.DB.WithContext(ctx)).Where("id IN ?", ids).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// LockOrder takes the row lock that makes this transaction the only writer
// of the order until it commits. Must be called inside Transaction.
func (r *GormRepo) LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) UpdateOrderFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendTimeline inserts the entry at the next position of the order's
// timeline. Existing entries are never touched.
func (r *GormRepo) AppendTimeline(ctx context.Context, entry *models.TimelineEntry) error {
	var last int
	if err := r.DB.WithContext(ctx).Model(&models.TimelineEntry{}).
		Where("order_id = ?", entry.OrderID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error; err != nil {
		return err
	}
	entry.Seq = last + 1
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (f OrderFilter) scope(db *gorm.DB) *gorm.DB {
	if f.CustomerID != nil {
		db = db.Where("customer_id = ?", *f.CustomerID)
	}
	if f.DealerID != nil {
		db = db.Where("assignment_dealer_id = ?", *f.DealerID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	return db
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := withDetails(r.DB.WithContext(ctx)).
		Scopes(f.scope).
		Order("created_at DESC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// SearchOrders is the database fallback for order search: a prefix match on
// the order number or an exact delivery postal code.
func (r *GormRepo) SearchOrders(ctx context.Context, query string, limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := withDetails(r.DB.WithContext(ctx)).
		Where("UPPER(order_number) LIKE ? OR delivery_pin_code = ?", strings.ToUpper(query)+"%", query).
		Order("created_at DESC").
		Order("id ASC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
