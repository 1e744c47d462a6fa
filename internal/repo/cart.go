package repo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/db"
	"github.com/appdotbuilder/pc-part-shop/internal/models"
)

// CartOwner identifies a cart by user id or, for guests, by session id.
type CartOwner struct {
	UserID    *uint
	SessionID string
}

func (o CartOwner) where(q *gorm.DB) *gorm.DB {
	if o.UserID != nil {
		return q.Where("user_id = ?", *o.UserID)
	}
	return q.Where("session_id = ? AND user_id IS NULL", o.SessionID)
}

// FindCart loads the owner's cart with items and their products.
func (r *GormRepo) FindCart(ctx context.Context, owner CartOwner) (*models.Cart, error) {
	var cart models.Cart
	err := owner.where(r.DB.WithContext(ctx)).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("cart_items.id ASC") }).
		Preload("Items.Product.Category").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) GetOrCreateCart(ctx context.Context, owner CartOwner) (*models.Cart, error) {
	cart, err := r.FindCart(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := models.Cart{UserID: owner.UserID}
	if owner.UserID == nil {
		sid := owner.SessionID
		fresh.SessionID = &sid
	}
	if err := r.DB.WithContext(ctx).Create(&fresh).Error; err != nil {
		if db.IsUniqueViolation(err) {
			// lost a create race, the other request's cart wins
			return r.FindCart(ctx, owner)
		}
		return nil, err
	}
	fresh.Items = []models.CartItem{}
	return &fresh, nil
}

// AddOrIncrement bumps the quantity of an existing line for the product or
// inserts a new line priced at price. The price of an existing line is kept.
func (r *GormRepo) AddOrIncrement(ctx context.Context, cartID, productID uint, qty int, price decimal.Decimal) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			Update("quantity", gorm.Expr("quantity + ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
		}

		item = models.CartItem{CartID: cartID, ProductID: productID, Quantity: qty, Price: price}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, id uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) UpdateCartItemQuantity(ctx context.Context, id uint, qty int) error {
	return r.DB.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).Update("quantity", qty).Error
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.CartItem{}, id).Error
}

// DeleteCart removes the items first, then the cart row.
func (r *GormRepo) DeleteCart(ctx context.Context, cartID uint) error {
	if err := r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	res := r.DB.WithContext(ctx).Delete(&models.Cart{}, cartID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
