package transport

import (
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type BillingAddress struct {
	Name    string `json:"name"    validate:"required,max=255"`
	Email   string `json:"email"   validate:"required,email,max=255"`
	Phone   string `json:"phone"   validate:"required,max=20"`
	Address string `json:"address" validate:"required,max=500"`
	City    string `json:"city"    validate:"required,max=255"`
	State   string `json:"state"   validate:"required,max=255"`
	Zip     string `json:"zip"     validate:"required,max=10"`
}

type ShippingAddress struct {
	Name    string `json:"name"    validate:"required,max=255"`
	Address string `json:"address" validate:"required,max=500"`
	City    string `json:"city"    validate:"required,max=255"`
	State   string `json:"state"   validate:"required,max=255"`
	Zip     string `json:"zip"     validate:"required,max=10"`
}

type CheckoutRequest struct {
	BillingAddress  BillingAddress  `json:"billing_address"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
}

// ProductRequest is used for both create and update. Pointer fields tell
// "absent" from zero.
type ProductRequest struct {
	Name             string           `json:"name"              validate:"required,max=255"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description" validate:"max=500"`
	SKU              string           `json:"sku"               validate:"required,max=100"`
	Price            *decimal.Decimal `json:"price"`
	SalePrice        *decimal.Decimal `json:"sale_price"`
	Brand            string           `json:"brand"             validate:"required,max=255"`
	Images           []string         `json:"images"            validate:"omitempty,dive,max=2048"`
	Specifications   map[string]any   `json:"specifications"`
	StockQuantity    *int             `json:"stock_quantity"    validate:"required,min=0"`
	ManageStock      *bool            `json:"manage_stock"`
	IsActive         *bool            `json:"is_active"`
	IsFeatured       *bool            `json:"is_featured"`
	CategoryID       uint             `json:"category_id"       validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// ProductQuery is the storefront listing query string.
type ProductQuery struct {
	Category string `query:"category"`
	Brand    string `query:"brand"`
	MinPrice string `query:"min_price"`
	MaxPrice string `query:"max_price"`
	Search   string `query:"search"`
	Sort     string `query:"sort"`
	Order    string `query:"order"`
	Page     int    `query:"page"`
}

type AdminProductQuery struct {
	Search     string `query:"search"`
	CategoryID uint   `query:"category"`
	Page       int    `query:"page"`
}

type AdminOrderQuery struct {
	Status string `query:"status"`
	Search string `query:"search"`
	Page   int    `query:"page"`
}

type AdminUserQuery struct {
	Role   string `query:"role"`
	Search string `query:"search"`
	Page   int    `query:"page"`
}
