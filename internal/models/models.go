package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"         json:"id"`
	Name         string    `gorm:"size:255;not null"                json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"    json:"email"`
	PasswordHash string    `gorm:"not null"                         json:"-"`
	Role         string    `gorm:"size:20;not null;index"           json:"role"`
	CreatedAt    time.Time `gorm:"index"                            json:"created_at"`
	UpdatedAt    time.Time `                                        json:"updated_at"`
	Orders       []Order   `gorm:"foreignKey:UserID"                json:"orders,omitempty"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"                    json:"id"`
	JTI       string    `gorm:"size:64;uniqueIndex;not null"  json:"jti"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"  json:"-"`
	UserID    uint      `gorm:"index;not null"                json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"                      json:"expires_at"`
	Revoked   bool      `gorm:"not null"                      json:"revoked"`
	CreatedAt time.Time `                                     json:"created_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name        string    `gorm:"size:255;not null"              json:"name"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null"  json:"slug"`
	Description string    `gorm:"type:text"                      json:"description"`
	SortOrder   int       `gorm:"not null;default:0"             json:"sort_order"`
	IsActive    bool      `gorm:"not null;index"                 json:"is_active"`
	CreatedAt   time.Time `                                      json:"created_at"`
	UpdatedAt   time.Time `                                      json:"updated_at"`
}

// Product bools carry no gorm default: a default would swallow an explicit false on insert.
type Product struct {
	ID               uint             `gorm:"primaryKey;autoIncrement"                                        json:"id"`
	Name             string           `gorm:"size:255;not null"                                               json:"name"`
	Slug             string           `gorm:"size:255;uniqueIndex;not null"                                   json:"slug"`
	Description      string           `gorm:"type:text"                                                       json:"description"`
	ShortDescription string           `gorm:"type:text"                                                       json:"short_description"`
	SKU              string           `gorm:"column:sku;size:100;uniqueIndex;not null"                        json:"sku"`
	Price            decimal.Decimal  `gorm:"type:decimal(10,2);not null;index"                               json:"price"`
	SalePrice        *decimal.Decimal `gorm:"type:decimal(10,2)"                                              json:"sale_price"`
	Brand            string           `gorm:"size:255;not null;index"                                         json:"brand"`
	Images           []string         `gorm:"type:text;serializer:json"                                       json:"images"`
	Specifications   map[string]any   `gorm:"type:text;serializer:json"                                       json:"specifications"`
	StockQuantity    int              `gorm:"not null;default:0"                                              json:"stock_quantity"`
	ManageStock      bool             `gorm:"not null"                                                        json:"manage_stock"`
	IsActive         bool             `gorm:"not null;index;index:idx_products_category_active,priority:2"   json:"is_active"`
	IsFeatured       bool             `gorm:"not null;index"                                                  json:"is_featured"`
	CategoryID       uint             `gorm:"not null;index;index:idx_products_category_active,priority:1"   json:"category_id"`
	Category         *Category        `gorm:"constraint:OnDelete:CASCADE"                                     json:"category,omitempty"`
	CreatedAt        time.Time        `gorm:"index"                                                           json:"created_at"`
	UpdatedAt        time.Time        `                                                                       json:"updated_at"`
}

// EffectivePrice is the sale price when it undercuts the regular price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}

func (p Product) InStock() bool {
	return !p.ManageStock || p.StockQuantity > 0
}

func (p Product) Available() bool {
	return p.IsActive && p.InStock()
}

// Cart is owned by exactly one of UserID or SessionID.
type Cart struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID    *uint      `gorm:"uniqueIndex"                 json:"user_id"`
	SessionID *string    `gorm:"size:64;uniqueIndex"         json:"session_id,omitempty"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time  `                                   json:"created_at"`
	UpdatedAt time.Time  `                                   json:"updated_at"`
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c Cart) TotalQuantity() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

type CartItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"                 json:"id"`
	CartID    uint            `gorm:"not null;uniqueIndex:idx_cart_product"    json:"cart_id"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_cart_product"    json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity > 0"              json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"              json:"price"`
	Product   *Product        `gorm:"constraint:OnDelete:CASCADE"              json:"product,omitempty"`
	CreatedAt time.Time       `                                                json:"created_at"`
	UpdatedAt time.Time       `                                                json:"updated_at"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
