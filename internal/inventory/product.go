// Package inventory defines the product model shared by the view controller
// and the remote gateway client.
package inventory

import "github.com/shopspring/decimal"

// Product represents a single catalog entry as returned by the inventory service.
// The identifier is assigned remotely; the console never generates ids.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	SKU         string          `json:"sku"`
	ImageURL    string          `json:"image_url,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// ProductCreate represents the payload for creating a new product.
// SKU uniqueness is enforced by the inventory service, not here.
type ProductCreate struct {
	Name        string          `json:"name"                  validate:"required,max=255"`
	Type        string          `json:"type"                  validate:"required,max=100"`
	SKU         string          `json:"sku"                   validate:"required,max=100"`
	ImageURL    string          `json:"image_url,omitempty"   validate:"omitempty,url,max=500"`
	Description string          `json:"description,omitempty" validate:"max=1000"`
	Quantity    int             `json:"quantity"              validate:"min=0"`
	Price       decimal.Decimal `json:"price"`
}

// LowStock reports whether the product's quantity is below the restock threshold.
func (p Product) LowStock() bool {
	return p.Quantity < LowStockThreshold
}
