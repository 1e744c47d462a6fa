package repo

import (
	"context"

	"github.com/appdotbuilder/pc-part-shop/internal/models"
)

type DashboardStats struct {
	TotalOrders    int64            `json:"total_orders"`
	TotalProducts  int64            `json:"total_products"`
	TotalCustomers int64            `json:"total_customers"`
	RecentOrders   []models.Order   `json:"recent_orders"`
	LowStock       []models.Product `json:"low_stock_products"`
}

const (
	recentOrdersLimit = 5
	lowStockLimit     = 5
	LowStockThreshold = 10
)

func (r *GormRepo) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var st DashboardStats
	var err error

	if st.TotalOrders, err = r.CountOrders(ctx); err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&st.TotalProducts).Error; err != nil {
		return nil, err
	}
	if st.TotalCustomers, err = r.CountUsersByRole(ctx, models.RoleCustomer); err != nil {
		return nil, err
	}
	if st.RecentOrders, err = r.RecentOrders(ctx, recentOrdersLimit); err != nil {
		return nil, err
	}

	st.LowStock = make([]models.Product, 0, lowStockLimit)
	if err := r.DB.WithContext(ctx).
		Preload("Category").
		Where("manage_stock = ? AND stock_quantity <= ?", true, LowStockThreshold).
		Order("stock_quantity ASC").
		Order("id ASC").
		Limit(lowStockLimit).
		Find(&st.LowStock).Error; err != nil {
		return nil, err
	}
	return &st, nil
}
