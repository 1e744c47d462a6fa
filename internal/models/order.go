package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func IsOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type BillingAddress struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

type ShippingAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"            json:"id"`
	OrderNumber     string          `gorm:"size:32;uniqueIndex;not null"        json:"order_number"`
	UserID          uint            `gorm:"index;not null"                      json:"user_id"`
	User            *User           `                                           json:"user,omitempty"`
	Status          string          `gorm:"size:20;not null;index"              json:"status"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2);not null"         json:"subtotal"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null"         json:"tax_amount"`
	ShippingAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null"         json:"shipping_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null"         json:"total_amount"`
	BillingAddress  BillingAddress  `gorm:"type:text;serializer:json;not null"  json:"billing_address"`
	ShippingAddress ShippingAddress `gorm:"type:text;serializer:json;not null"  json:"shipping_address"`
	ShippedAt       *time.Time      `                                           json:"shipped_at"`
	DeliveredAt     *time.Time      `                                           json:"delivered_at"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE"         json:"items,omitempty"`
	CreatedAt       time.Time       `gorm:"index"                               json:"created_at"`
	UpdatedAt       time.Time       `                                           json:"updated_at"`
}

// OrderItem is a snapshot. ProductID is kept for reference only and is not a foreign key.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	OrderID     uint            `gorm:"index;not null"                json:"order_id"`
	ProductID   uint            `gorm:"index;not null"                json:"product_id"`
	ProductName string          `gorm:"size:255;not null"             json:"product_name"`
	ProductSKU  string          `gorm:"column:product_sku;size:100"   json:"product_sku"`
	Quantity    int             `gorm:"not null"                      json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"   json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"   json:"total_price"`
	CreatedAt   time.Time       `                                     json:"created_at"`
}
