package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/mykafka"
	"github.com/appdotbuilder/pc-part-shop/internal/repo"
	"github.com/appdotbuilder/pc-part-shop/internal/transport"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events Publisher
}

// CartView is a cart with its derived totals.
type CartView struct {
	Cart          *models.Cart      `json:"cart"`
	Items         []models.CartItem `json:"items"`
	Total         decimal.Decimal   `json:"total"`
	TotalQuantity int               `json:"total_quantity"`
}

func newCartView(c *models.Cart) *CartView {
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return &CartView{Cart: c, Items: c.Items, Total: c.Total(), TotalQuantity: c.TotalQuantity()}
}

type cartEvent struct {
	Type      string `json:"type"`
	CartID    uint   `json:"cart_id"`
	UserID    *uint  `json:"user_id,omitempty"`
	ProductID uint   `json:"product_id,omitempty"`
	ItemID    uint   `json:"item_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

func (s *CartService) event(ctx context.Context, caller Caller, ev cartEvent) {
	ev.UserID = caller.UserID
	publish(ctx, s.Events, mykafka.TopicCartEvents, strconv.FormatUint(uint64(ev.CartID), 10), ev)
}

// GetCart returns the caller's cart, creating an empty one on first use.
func (s *CartService) GetCart(ctx context.Context, caller Caller) (*CartView, error) {
	owner, err := caller.cartOwner()
	if err != nil {
		return nil, err
	}
	cart, err := s.Repo.GetOrCreateCart(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return newCartView(cart), nil
}

func (s *CartService) AddItem(ctx context.Context, caller Caller, req transport.AddToCartRequest) (*CartView, error) {
	owner, err := caller.cartOwner()
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	product, err := s.Repo.GetProduct(ctx, req.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fieldError("product_id", "The selected product id is invalid.")
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if !product.Available() {
		return nil, reject(MsgProductUnavailable)
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	item, err := s.Repo.AddOrIncrement(ctx, cart.ID, product.ID, req.Quantity, product.EffectivePrice())
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	s.event(ctx, caller, cartEvent{Type: "cart_item_added", CartID: cart.ID, ProductID: product.ID, ItemID: item.ID, Quantity: req.Quantity})
	return s.reload(ctx, owner)
}

// ownedItem loads the item and checks that it sits in the caller's cart.
func (s *CartService) ownedItem(ctx context.Context, owner repo.CartOwner, itemID uint) (*models.CartItem, error) {
	item, err := s.Repo.GetCartItem(ctx, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load cart item: %w", err)
	}

	cart, err := s.Repo.FindCart(ctx, owner)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reject(MsgCartItemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if item.CartID != cart.ID {
		return nil, reject(MsgCartItemNotFound)
	}
	return item, nil
}

func (s *CartService) UpdateItem(ctx context.Context, caller Caller, itemID uint, req transport.UpdateCartItemRequest) (*CartView, error) {
	owner, err := caller.cartOwner()
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	item, err := s.ownedItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateCartItemQuantity(ctx, item.ID, req.Quantity); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	s.event(ctx, caller, cartEvent{Type: "cart_item_updated", CartID: item.CartID, ProductID: item.ProductID, ItemID: item.ID, Quantity: req.Quantity})
	return s.reload(ctx, owner)
}

func (s *CartService) RemoveItem(ctx context.Context, caller Caller, itemID uint) (*CartView, error) {
	owner, err := caller.cartOwner()
	if err != nil {
		return nil, err
	}

	item, err := s.ownedItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.DeleteCartItem(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}

	s.event(ctx, caller, cartEvent{Type: "cart_item_removed", CartID: item.CartID, ProductID: item.ProductID, ItemID: item.ID})
	return s.reload(ctx, owner)
}

func (s *CartService) reload(ctx context.Context, owner repo.CartOwner) (*CartView, error) {
	cart, err := s.Repo.FindCart(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("reload cart: %w", err)
	}
	return newCartView(cart), nil
}
