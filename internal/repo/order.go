package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/models"
)

// CreateOrder inserts the order together with its items.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Omit("User").Create(order).Error
}

// DecrementStock lowers the stock of a stock-managed product. With guarded
// set the update only applies while enough stock remains; the caller reads
// zero affected rows as a shortage.
func (r *GormRepo) DecrementStock(ctx context.Context, productID uint, qty int, guarded bool) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ? AND manage_stock = ?", productID, true)
	if guarded {
		q = q.Where("stock_quantity >= ?", qty)
	}
	res := q.Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ListUserOrders(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Preload("User").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

type OrderFilter struct {
	Status string
	Search string
}

func (f OrderFilter) scope(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if strings.TrimSpace(f.Search) != "" {
		like := likePattern(f.Search)
		users := q.Session(&gorm.Session{NewDB: true}).
			Model(&models.User{}).
			Select("id").
			Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
		q = q.Where("(LOWER(orders.order_number) LIKE ? OR orders.user_id IN (?))", like, users)
	}
	return q
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Scopes(f.scope).
		Preload("User").
		Preload("Items").
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

type StatusChange struct {
	Status      string
	ShippedAt   *time.Time
	DeliveredAt *time.Time
}

// UpdateOrderStatus applies the change only if the order still has status
// from. It reports whether a row was updated.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, from string, ch StatusChange) (bool, error) {
	values := map[string]any{"status": ch.Status}
	if ch.ShippedAt != nil {
		values["shipped_at"] = *ch.ShippedAt
	}
	if ch.DeliveredAt != nil {
		values["delivered_at"] = *ch.DeliveredAt
	}

	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	orders := make([]models.Order, 0, limit)
	err := r.DB.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *GormRepo) UserOrders(ctx context.Context, userID uint, limit int) ([]models.Order, error) {
	orders := make([]models.Order, 0, limit)
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *GormRepo) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}
