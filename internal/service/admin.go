package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/db"
	"github.com/appdotbuilder/pc-part-shop/internal/logging"
	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/mykafka"
	"github.com/appdotbuilder/pc-part-shop/internal/repo"
	"github.com/appdotbuilder/pc-part-shop/internal/transport"
	"github.com/appdotbuilder/pc-part-shop/internal/util"
)

const (
	AdminPageSize      = 15
	userRecentOrders   = 10
	defaultProductSlug = "product"

	StatusPolicyStrict     = "strict"
	StatusPolicyPermissive = "permissive"
)

var allowedTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
}

// CanTransition reports whether the strict policy lets an order move from
// one status to another. Repeating the current status is allowed.
func CanTransition(from, to string) bool {
	if !models.IsOrderStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type AdminService struct {
	Repo         *repo.GormRepo
	Cache        Cache
	Events       Publisher
	StatusPolicy string
	Now          func() time.Time
}

func (s *AdminService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AdminService) Dashboard(ctx context.Context) (*repo.DashboardStats, error) {
	st, err := s.Repo.Dashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return st, nil
}

type AdminProductListing struct {
	Products   util.Page[models.Product] `json:"products"`
	Categories []models.Category         `json:"categories"`
	Filters    map[string]string         `json:"filters"`
}

func (s *AdminService) ListProducts(ctx context.Context, q transport.AdminProductQuery) (*AdminProductListing, error) {
	page := max(q.Page, 1)
	offset, limit := util.Calculate(page, AdminPageSize)
	f := repo.ProductFilter{Search: q.Search, CategoryID: q.CategoryID, Sort: "created_at", Desc: true}

	total, items, err := s.Repo.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	cats, err := s.Repo.AllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	filters := map[string]string{}
	if q.Search != "" {
		filters["search"] = q.Search
	}
	if q.CategoryID != 0 {
		filters["category"] = strconv.FormatUint(uint64(q.CategoryID), 10)
	}
	return &AdminProductListing{
		Products:   util.NewPage(items, page, limit, total),
		Categories: cats,
		Filters:    filters,
	}, nil
}

func (s *AdminService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// checkProduct applies the tag rules plus the product-specific messages.
func checkProduct(req transport.ProductRequest) error {
	fields := map[string]string{}
	var verr *ValidationError
	if err := validateStruct(req); errors.As(err, &verr) {
		fields = verr.Fields
	} else if err != nil {
		return err
	}

	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Product name is required."
	}
	if strings.TrimSpace(req.SKU) == "" {
		fields["sku"] = "SKU is required."
	}
	if strings.TrimSpace(req.Brand) == "" {
		fields["brand"] = "Brand is required."
	}
	if req.CategoryID == 0 {
		fields["category_id"] = "Category is required."
	}

	switch {
	case req.Price == nil:
		fields["price"] = "Price is required."
	case req.Price.IsNegative():
		fields["price"] = "Price must be at least $0.00."
	}
	if req.SalePrice != nil {
		switch {
		case req.SalePrice.IsNegative():
			fields["sale_price"] = "Sale price must be at least $0.00."
		case req.Price != nil && !req.SalePrice.LessThan(*req.Price):
			fields["sale_price"] = "Sale price must be less than regular price."
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *AdminService) uniqueSlug(ctx context.Context, name string, exceptID uint) (string, error) {
	base := util.Slugify(name)
	if base == "" {
		base = defaultProductSlug
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := s.Repo.SlugTaken(ctx, slug, exceptID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// prepareProduct runs the checks that need the database and fills p from req.
func (s *AdminService) prepareProduct(ctx context.Context, p *models.Product, req transport.ProductRequest) error {
	if err := checkProduct(req); err != nil {
		return err
	}

	ok, err := s.Repo.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return fieldError("category_id", "Selected category does not exist.")
	}

	sku := strings.TrimSpace(req.SKU)
	taken, err := s.Repo.SKUTaken(ctx, sku, p.ID)
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if taken {
		return conflictError("sku", "This SKU is already in use.")
	}

	slug, err := s.uniqueSlug(ctx, req.Name, p.ID)
	if err != nil {
		return fmt.Errorf("slug: %w", err)
	}

	p.Name = strings.TrimSpace(req.Name)
	p.Slug = slug
	p.Description = req.Description
	p.ShortDescription = req.ShortDescription
	p.SKU = sku
	p.Price = *req.Price
	p.SalePrice = req.SalePrice
	p.Brand = strings.TrimSpace(req.Brand)
	p.Images = req.Images
	p.Specifications = req.Specifications
	p.StockQuantity = *req.StockQuantity
	p.CategoryID = req.CategoryID
	p.Category = nil
	if req.ManageStock != nil {
		p.ManageStock = *req.ManageStock
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}
	return nil
}

type productEvent struct {
	Type      string    `json:"type"`
	ProductID uint      `json:"product_id"`
	SKU       string    `json:"sku"`
	Slug      string    `json:"slug"`
	At        time.Time `json:"at"`
}

func (s *AdminService) productChanged(ctx context.Context, typ string, p *models.Product) {
	invalidate(ctx, s.Cache)
	publish(ctx, s.Events, mykafka.TopicProductEvents, p.SKU, productEvent{
		Type: typ, ProductID: p.ID, SKU: p.SKU, Slug: p.Slug, At: s.now(),
	})
}

func (s *AdminService) CreateProduct(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	p := &models.Product{ManageStock: true, IsActive: true}
	if err := s.prepareProduct(ctx, p, req); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, conflictError("sku", "This SKU is already in use.")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.productChanged(ctx, "product_created", p)
	logging.FromContext(ctx).Info("product_created", "product_id", p.ID, "sku", p.SKU)
	return s.GetProduct(ctx, p.ID)
}

func (s *AdminService) UpdateProduct(ctx context.Context, id uint, req transport.ProductRequest) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.prepareProduct(ctx, p, req); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, conflictError("sku", "This SKU is already in use.")
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.productChanged(ctx, "product_updated", p)
	return s.GetProduct(ctx, p.ID)
}

func (s *AdminService) DeleteProduct(ctx context.Context, id uint) error {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	err = s.Repo.DeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.productChanged(ctx, "product_deleted", p)
	return nil
}

type AdminOrderListing struct {
	Orders  util.Page[models.Order] `json:"orders"`
	Filters map[string]string       `json:"filters"`
}

func (s *AdminService) ListOrders(ctx context.Context, q transport.AdminOrderQuery) (*AdminOrderListing, error) {
	page := max(q.Page, 1)
	offset, limit := util.Calculate(page, AdminPageSize)
	total, orders, err := s.Repo.ListOrders(ctx, repo.OrderFilter{Status: q.Status, Search: q.Search}, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	filters := map[string]string{}
	if q.Status != "" {
		filters["status"] = q.Status
	}
	if q.Search != "" {
		filters["search"] = q.Search
	}
	return &AdminOrderListing{Orders: util.NewPage(orders, page, limit, total), Filters: filters}, nil
}

func (s *AdminService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// UpdateOrderStatus moves an order to a new status. Shipped and delivered
// stamp their timestamp with the current time on every call.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, id uint, req transport.UpdateOrderStatusRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "admin.order_status")

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	from, to := o.Status, req.Status
	if s.StatusPolicy != StatusPolicyPermissive && !CanTransition(from, to) {
		l.Warn("status_transition_rejected", "order_id", id, "from", from, "to", to)
		return nil, fieldError("status", fmt.Sprintf("Cannot change order status from %s to %s.", from, to))
	}

	now := s.now()
	ch := repo.StatusChange{Status: to}
	switch to {
	case models.OrderStatusShipped:
		ch.ShippedAt = &now
	case models.OrderStatusDelivered:
		ch.DeliveredAt = &now
	}

	ok, err := s.Repo.UpdateOrderStatus(ctx, id, from, ch)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("order %d changed concurrently: %w", id, ErrConflict)
	}

	publish(ctx, s.Events, mykafka.TopicOrderEvents, o.OrderNumber, orderEvent{
		Type:        "order_status_changed",
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      to,
		PrevStatus:  from,
		TotalAmount: o.TotalAmount,
		At:          now,
	})
	l.Info("order_status_changed", "order_id", id, "from", from, "to", to)
	return s.GetOrder(ctx, id)
}

func (s *AdminService) ListUsers(ctx context.Context, q transport.AdminUserQuery) (*util.Page[models.User], error) {
	page := max(q.Page, 1)
	offset, limit := util.Calculate(page, AdminPageSize)
	total, users, err := s.Repo.ListUsers(ctx, repo.UserFilter{Role: q.Role, Search: q.Search}, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	p := util.NewPage(users, page, limit, total)
	return &p, nil
}

type UserDetail struct {
	User   *models.User   `json:"user"`
	Orders []models.Order `json:"orders"`
}

func (s *AdminService) GetUser(ctx context.Context, id uint) (*UserDetail, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	orders, err := s.Repo.UserOrders(ctx, id, userRecentOrders)
	if err != nil {
		return nil, fmt.Errorf("user orders: %w", err)
	}
	return &UserDetail{User: u, Orders: orders}, nil
}
