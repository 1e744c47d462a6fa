package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/cache"
	"github.com/appdotbuilder/pc-part-shop/internal/db"
	"github.com/appdotbuilder/pc-part-shop/internal/logging"
	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/mykafka"
	"github.com/appdotbuilder/pc-part-shop/internal/repo"
	"github.com/appdotbuilder/pc-part-shop/internal/transport"
	"github.com/appdotbuilder/pc-part-shop/internal/util"
)

const (
	OrderNumberPrefix  = "ORD-"
	orderNumberLength  = 8
	orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	OrderHistoryPage   = 10
	checkoutAttempts   = 5
	cartPath           = "/cart"
)

func GenerateOrderNumber() (string, error) {
	buf := make([]byte, orderNumberLength)
	max := big.NewInt(int64(len(orderNumberCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = orderNumberCharset[n.Int64()]
	}
	return OrderNumberPrefix + string(buf), nil
}

type Pricing struct {
	TaxRate  decimal.Decimal
	Shipping decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:  decimal.RequireFromString("0.08"),
		Shipping: decimal.RequireFromString("10.00"),
	}
}

type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// Quote prices a subtotal. Tax is rounded to cents, shipping is flat.
func (p Pricing) Quote(subtotal decimal.Decimal) Quote {
	tax := subtotal.Mul(p.TaxRate).Round(2)
	return Quote{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		ShippingAmount: p.Shipping,
		TotalAmount:    subtotal.Add(tax).Add(p.Shipping),
	}
}

type OrderService struct {
	Repo       *repo.GormRepo
	Events     Publisher
	Cache      Cache
	Pricing    Pricing
	StockGuard bool
	// NewOrderNumber defaults to GenerateOrderNumber.
	NewOrderNumber func() (string, error)
	RetryBackoff   time.Duration
}

type CheckoutPreview struct {
	Cart  *CartView `json:"cart"`
	Quote Quote     `json:"totals"`
}

type orderEvent struct {
	Type        string          `json:"type"`
	OrderID     uint            `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      uint            `json:"user_id"`
	Status      string          `json:"status"`
	PrevStatus  string          `json:"previous_status,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count,omitempty"`
	At          time.Time       `json:"at"`
}

func emptyCart() error {
	return &Rejection{Message: MsgCartEmpty, Redirect: cartPath}
}

func (s *OrderService) userOwner(caller Caller) (repo.CartOwner, error) {
	if !caller.Authenticated() {
		return repo.CartOwner{}, ErrUnauthorized
	}
	return repo.CartOwner{UserID: caller.UserID}, nil
}

// Preview shows the caller's cart with the totals checkout would charge.
func (s *OrderService) Preview(ctx context.Context, caller Caller) (*CheckoutPreview, error) {
	owner, err := s.userOwner(caller)
	if err != nil {
		return nil, err
	}
	cart, err := s.Repo.FindCart(ctx, owner)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, emptyCart()
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, emptyCart()
	}
	view := newCartView(cart)
	return &CheckoutPreview{Cart: view, Quote: s.Pricing.Quote(view.Total)}, nil
}

func snapshotItems(items []models.CartItem) ([]models.OrderItem, error) {
	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Product == nil {
			return nil, reject(MsgProductUnavailable)
		}
		out = append(out, models.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			ProductSKU:  it.Product.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
			TotalPrice:  it.Subtotal(),
		})
	}
	return out, nil
}

func toBilling(a transport.BillingAddress) models.BillingAddress {
	return models.BillingAddress{
		Name: a.Name, Email: a.Email, Phone: a.Phone, Address: a.Address,
		City: a.City, State: a.State, Zip: a.Zip,
	}
}

func toShipping(a transport.ShippingAddress) models.ShippingAddress {
	return models.ShippingAddress{
		Name: a.Name, Address: a.Address, City: a.City, State: a.State, Zip: a.Zip,
	}
}

// checkoutRetryable limits reruns to order number collisions.
func checkoutRetryable(err error) bool {
	return db.IsUniqueViolation(err)
}

// PlaceOrder converts the caller's cart into a pending order. Totals, the
// order, its item snapshots, stock decrements and cart removal commit as one
// transaction. A duplicate order number reruns the whole transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, caller Caller, req transport.CheckoutRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "orders.place")

	owner, err := s.userOwner(caller)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	gen := s.NewOrderNumber
	if gen == nil {
		gen = GenerateOrderNumber
	}
	opts := db.RetryOptions{MaxAttempts: checkoutAttempts, Backoff: s.RetryBackoff, Retryable: checkoutRetryable}

	var (
		order  *models.Order
		slugs  []string
		tryNum int
	)
	err = s.Repo.InTx(ctx, opts, func(tx *repo.GormRepo) error {
		tryNum++
		cart, err := tx.FindCart(ctx, owner)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyCart()
		}
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		if len(cart.Items) == 0 {
			return emptyCart()
		}

		items, err := snapshotItems(cart.Items)
		if err != nil {
			return err
		}
		number, err := gen()
		if err != nil {
			return fmt.Errorf("order number: %w", err)
		}

		q := s.Pricing.Quote(cart.Total())
		o := &models.Order{
			OrderNumber:     number,
			UserID:          *caller.UserID,
			Status:          models.OrderStatusPending,
			Subtotal:        q.Subtotal,
			TaxAmount:       q.TaxAmount,
			ShippingAmount:  q.ShippingAmount,
			TotalAmount:     q.TotalAmount,
			BillingAddress:  toBilling(req.BillingAddress),
			ShippingAddress: toShipping(req.ShippingAddress),
			Items:           items,
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			if db.IsUniqueViolation(err) {
				l.Warn("order_number_collision", "attempt", tryNum, "order_number", number)
			}
			return err
		}

		touched := make([]string, 0, len(cart.Items))
		for _, it := range cart.Items {
			touched = append(touched, it.Product.Slug)
			if !it.Product.ManageStock {
				continue
			}
			n, err := tx.DecrementStock(ctx, it.ProductID, it.Quantity, s.StockGuard)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if s.StockGuard && n == 0 {
				return insufficientStock(it.Product.Name)
			}
		}

		if err := tx.DeleteCart(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		order, slugs = o, touched
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(slugs)+1)
	for _, slug := range slugs {
		keys = append(keys, cache.ProductKey(slug))
	}
	invalidate(ctx, s.Cache, append(keys, cache.KeyHome)...)

	publish(ctx, s.Events, mykafka.TopicOrderEvents, order.OrderNumber, orderEvent{
		Type:        "order_created",
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		At:          time.Now().UTC(),
	})

	l.Info("order_placed", "order_id", order.ID, "order_number", order.OrderNumber, "attempts", tryNum)
	return s.Repo.GetOrder(ctx, order.ID)
}

func (s *OrderService) ListOrders(ctx context.Context, caller Caller, page int) (*util.Page[models.Order], error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	if page < 1 {
		page = 1
	}
	offset, limit := util.Calculate(page, OrderHistoryPage)
	total, orders, err := s.Repo.ListUserOrders(ctx, *caller.UserID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	p := util.NewPage(orders, page, limit, total)
	return &p, nil
}

// GetOrder returns an order owned by the caller.
func (s *OrderService) GetOrder(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	o, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o.UserID != *caller.UserID {
		return nil, fmt.Errorf("order %d: %w", id, ErrForbidden)
	}
	return o, nil
}
